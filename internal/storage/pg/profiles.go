package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

// EnsureProfile creates an empty profile for the account if none
// exists. Called from the activation event subscriber, so it must be
// idempotent.
func (s *Storage) EnsureProfile(accountId domain.AccountId) error {
	_, err := s.db.Exec(`
        INSERT INTO profiles (account_id) VALUES ($1)
        ON CONFLICT (account_id) DO NOTHING`, accountId)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

func (s *Storage) Profile(accountId domain.AccountId) (domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRow(`
        SELECT account_id, first_name, last_name, phone, about, updated_at
        FROM profiles WHERE account_id = $1`, accountId,
	).Scan(&p.AccountId, &p.FirstName, &p.LastName, &p.Phone, &p.About, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, apperr.NotFound("Profile")
		}
		return domain.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

func (s *Storage) SaveProfile(p domain.Profile) error {
	_, err := s.db.Exec(`
        INSERT INTO profiles (account_id, first_name, last_name, phone, about, updated_at)
        VALUES ($1, $2, $3, $4, $5, now())
        ON CONFLICT (account_id) DO UPDATE
        SET first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            phone = EXCLUDED.phone,
            about = EXCLUDED.about,
            updated_at = now()`,
		p.AccountId, p.FirstName, p.LastName, p.Phone, p.About)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
