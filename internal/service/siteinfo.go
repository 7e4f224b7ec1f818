package service

import (
	"context"
	"sync"
	"time"

	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/logger"
)

type SiteInfoStorage interface {
	SiteInfo() (domain.SiteInfo, error)
	SaveSiteInfo(info domain.SiteInfo) error
}

// SiteInfo caches the singleton site-information record in memory and
// refreshes it on an interval. Reads never touch the database, so a
// burst of notifications does not turn into a burst of queries; a
// refresh failure keeps serving the last good snapshot.
type SiteInfo struct {
	storage  SiteInfoStorage
	interval time.Duration

	mu      sync.RWMutex
	current domain.SiteInfo
}

func NewSiteInfo(storage SiteInfoStorage, refreshInterval time.Duration) (*SiteInfo, error) {
	s := &SiteInfo{storage: storage, interval: refreshInterval}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the cached snapshot.
func (s *SiteInfo) Current() domain.SiteInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update persists the new record and refreshes the cache immediately,
// so admin edits are visible without waiting for the next tick.
func (s *SiteInfo) Update(info domain.SiteInfo) error {
	if err := s.storage.SaveSiteInfo(info); err != nil {
		return err
	}
	return s.refresh()
}

// StartRefresh re-reads the record on every tick until ctx is done.
func (s *SiteInfo) StartRefresh(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.refresh(); err != nil {
					logger.Log.Warn("site info refresh failed", "error", err)
				}
			}
		}
	}()
}

func (s *SiteInfo) refresh() error {
	info, err := s.storage.SiteInfo()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = info
	s.mu.Unlock()
	return nil
}
