package domain

import "time"

// TokenKind binds a token to exactly one pending transition.
type TokenKind string

const (
	TokenActivation    TokenKind = "activation"
	TokenEmailChange   TokenKind = "email_change"
	TokenPasswordReset TokenKind = "password_reset"
)

// Token is the stored half of an issued token: only the bcrypt hash of
// the secret is persisted. The value handed to the user is
// "<id>.<secret>"; the id locates the row, the secret is compared
// against SecretHash.
type Token struct {
	Id         string
	AccountId  AccountId
	Kind       TokenKind
	SecretHash string
	// NewValue carries the pending email address for email-change tokens.
	NewValue string
	Expires  time.Time
	Created  time.Time
}
