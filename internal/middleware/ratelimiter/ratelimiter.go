// Package ratelimiter implements a per-identity token bucket.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *Limiter
}

// Limiter tracks one token bucket per identity (IP, account id, email).
// Buckets idle longer than expiration are dropped to bound memory.
type Limiter struct {
	buckets    map[string]*bucket
	mu         sync.RWMutex
	rate       float64
	capacity   float64
	expiration time.Duration
}

// New creates a Limiter refilling rate tokens per second up to capacity.
func New(rate, capacity float64, expiration time.Duration) *Limiter {
	return &Limiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
	}
}

func (l *Limiter) cleanup(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

func (b *bucket) resetTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.expiration, func() {
		b.parent.cleanup(b.identity)
	})
}

func (l *Limiter) getBucket(identity string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[identity]
	l.mu.RUnlock()
	if exists {
		b.resetTimer()
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check: another goroutine may have created it meanwhile.
	if b, exists = l.buckets[identity]; exists {
		b.resetTimer()
		return b
	}

	b = &bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     l,
	}
	l.buckets[identity] = b
	b.resetTimer()
	return b
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow reports whether a request from identity may proceed now.
func (l *Limiter) Allow(identity string) bool {
	return l.getBucket(identity).allow()
}

// Stop cancels every pending expiration timer.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
	}
}

// Presets used by the router. The slow one guards endpoints that send
// email; the fast one guards everything mutating.
var (
	OnceInMinute = New(1.0/60, 1, time.Hour)
	OnceInSecond = New(1, 3, time.Hour)
)
