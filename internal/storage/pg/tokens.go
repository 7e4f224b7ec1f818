package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

// SaveToken stores a pending token, replacing any previous token of the
// same kind for the account. One pending transition of each kind per
// account.
func (s *Storage) SaveToken(token domain.Token) error {
	return s.saveToken(s.db, token)
}

// TokenById fetches a stored token. The caller compares the presented
// secret against SecretHash; the lookup itself reveals nothing.
func (s *Storage) TokenById(id string) (domain.Token, error) {
	var t domain.Token
	err := s.db.QueryRow(`
        SELECT id, account_id, kind, secret_hash, new_value, expires_at, created_at
        FROM tokens WHERE id = $1`, id,
	).Scan(&t.Id, &t.AccountId, &t.Kind, &t.SecretHash, &t.NewValue, &t.Expires, &t.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Token{}, apperr.InvalidToken()
		}
		return domain.Token{}, fmt.Errorf("failed to query token: %w", err)
	}
	return t, nil
}

// DeleteToken removes a token outside of a lifecycle transaction
// (cleanup of expired tokens).
func (s *Storage) DeleteToken(id string) error {
	return s.consumeToken(s.db, id)
}

func (s *Storage) saveToken(q Querier, token domain.Token) error {
	_, err := q.Exec(`
        INSERT INTO tokens (id, account_id, kind, secret_hash, new_value, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (account_id, kind) DO UPDATE
        SET id = EXCLUDED.id,
            secret_hash = EXCLUDED.secret_hash,
            new_value = EXCLUDED.new_value,
            expires_at = EXCLUDED.expires_at,
            created_at = now()`,
		token.Id, token.AccountId, token.Kind, token.SecretHash, token.NewValue, token.Expires,
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// consumeToken deletes the token row. Zero rows means someone else
// redeemed it first; the single-use guarantee rides on this delete.
func (s *Storage) consumeToken(q Querier, id string) error {
	result, err := q.Exec("DELETE FROM tokens WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for token deletion: %w", err)
	}
	if deleted == 0 {
		return apperr.InvalidToken()
	}
	return nil
}
