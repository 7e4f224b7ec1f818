package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

const uniqueViolation = "23505"

// mapUniqueViolation translates a postgres unique-constraint error into
// the duplicate-identity error the service layer expects. Uniqueness is
// enforced here, at the storage layer, not in application checks.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if strings.Contains(pqErr.Constraint, "handle") {
			return apperr.DuplicateIdentity("handle")
		}
		return apperr.DuplicateIdentity("email")
	}
	return err
}

const accountColumns = "id, handle, email, password_hash, role, is_active, is_admin, created_at, updated_at, last_login_at"

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var lastLogin sql.NullTime
	err := row.Scan(&a.Id, &a.Handle, &a.Email, &a.PassHash, &a.Role, &a.Active, &a.Admin, &a.CreatedAt, &a.UpdatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, apperr.NotFound("Account")
		}
		return domain.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	return a, nil
}

// =========================================================================
// Public methods (satisfy the service.AccountStorage interface)
// =========================================================================

// CreateAccount inserts a new account in PendingActivation state and
// stores its activation token in the same transaction.
func (s *Storage) CreateAccount(account domain.Account, token domain.Token) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var created domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRow(`
            INSERT INTO accounts (handle, email, password_hash, role, is_active, is_admin)
            VALUES ($1, $2, $3, $4, FALSE, $5)
            RETURNING `+accountColumns,
			account.Handle, account.Email, account.PassHash, account.Role, account.Admin)
		var err error
		created, err = scanAccount(row)
		if err != nil {
			return mapUniqueViolation(err)
		}
		token.AccountId = created.Id
		return s.saveToken(tx, token)
	})
	if err != nil {
		return domain.Account{}, err
	}
	return created, nil
}

func (s *Storage) AccountById(id domain.AccountId) (domain.Account, error) {
	return scanAccount(s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
}

func (s *Storage) AccountByEmail(email domain.Email) (domain.Account, error) {
	return scanAccount(s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower($1)", email))
}

// ActivateAccount consumes the activation token and flips the account
// to active in one transaction. The row lock serializes this against
// any other in-flight transition on the same account.
func (s *Storage) ActivateAccount(id domain.AccountId, tokenId string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var account domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.lockAccount(tx, id)
		if err != nil {
			return err
		}
		if locked.Active {
			return apperr.InvalidState("Account is already active")
		}
		if err := s.consumeToken(tx, tokenId); err != nil {
			return err
		}
		account, err = scanAccount(tx.QueryRow(`
            UPDATE accounts SET is_active = TRUE, updated_at = now()
            WHERE id = $1
            RETURNING `+accountColumns, id))
		return err
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// DeactivateForEmailChange bars the account from authenticating while
// the change is pending and stores the email-change token, replacing
// any previous one.
func (s *Storage) DeactivateForEmailChange(id domain.AccountId, token domain.Token) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.lockAccount(tx, id)
		if err != nil {
			return err
		}
		if !locked.Active {
			return apperr.InvalidState("Account must be active to request an email change")
		}
		if _, err := tx.Exec("UPDATE accounts SET is_active = FALSE, updated_at = now() WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to deactivate account: %w", err)
		}
		return s.saveToken(tx, token)
	})
}

// CommitEmailChange writes the new address, reactivates the account and
// consumes the token, all in one transaction.
func (s *Storage) CommitEmailChange(id domain.AccountId, newEmail domain.Email, tokenId string) (domain.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var account domain.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockAccount(tx, id); err != nil {
			return err
		}
		if err := s.consumeToken(tx, tokenId); err != nil {
			return err
		}
		var err error
		account, err = scanAccount(tx.QueryRow(`
            UPDATE accounts SET email = $2, is_active = TRUE, updated_at = now()
            WHERE id = $1
            RETURNING `+accountColumns, id, newEmail))
		return mapUniqueViolation(err)
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *Storage) UpdatePassword(id domain.AccountId, passHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockAccount(tx, id); err != nil {
			return err
		}
		_, err := tx.Exec("UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1", id, passHash)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}

// ResetPassword consumes a password-reset token and stores the new hash.
func (s *Storage) ResetPassword(id domain.AccountId, passHash, tokenId string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockAccount(tx, id); err != nil {
			return err
		}
		if err := s.consumeToken(tx, tokenId); err != nil {
			return err
		}
		_, err := tx.Exec("UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1", id, passHash)
		if err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}
		return nil
	})
}

func (s *Storage) UpdateHandle(id domain.AccountId, handle domain.Handle) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.lockAccount(tx, id); err != nil {
			return err
		}
		_, err := tx.Exec("UPDATE accounts SET handle = $2, updated_at = now() WHERE id = $1", id, handle)
		return mapUniqueViolation(err)
	})
}

func (s *Storage) UpdateLastLogin(id domain.AccountId) error {
	_, err := s.db.Exec("UPDATE accounts SET last_login_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// DeleteAccount purges the record. Tokens and the profile go with it
// via ON DELETE CASCADE.
func (s *Storage) DeleteAccount(id domain.AccountId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM accounts WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows for account deletion: %w", err)
		}
		if deleted == 0 {
			return apperr.NotFound("Account")
		}
		return nil
	})
}

// =========================================================================
// Internal methods (core database logic)
// =========================================================================

// lockAccount takes a row lock so concurrent transitions on the same
// account serialize instead of racing on the activity flag.
func (s *Storage) lockAccount(q Querier, id domain.AccountId) (domain.Account, error) {
	return scanAccount(q.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = $1 FOR UPDATE", id))
}
