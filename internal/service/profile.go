package service

import (
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

type ProfileStorage interface {
	EnsureProfile(accountId domain.AccountId) error
	Profile(accountId domain.AccountId) (domain.Profile, error)
	SaveProfile(p domain.Profile) error
}

// Profile manages the per-account profile record. Profiles are created
// lazily on account activation, so a read can legitimately find nothing
// for accounts that predate that subscriber; Get papers over that by
// returning an empty record.
type Profile struct {
	storage ProfileStorage
}

func NewProfile(storage ProfileStorage) *Profile {
	return &Profile{storage: storage}
}

func (p *Profile) Get(accountId domain.AccountId) (domain.Profile, error) {
	profile, err := p.storage.Profile(accountId)
	if err != nil {
		if apperr.IsNotFound(err) {
			return domain.Profile{AccountId: accountId}, nil
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

func (p *Profile) Update(profile domain.Profile) error {
	return p.storage.SaveProfile(profile)
}

// OnActivated is the event subscriber creating the empty profile once
// an account becomes active.
func (p *Profile) OnActivated(e domain.Event) error {
	return p.storage.EnsureProfile(e.AccountId)
}
