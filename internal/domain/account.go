package domain

import "time"

// Role mirrors the platform's coarse account classification. Admin is
// reserved for staff accounts created out-of-band.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCompany  Role = "company"
	RoleOther    Role = "other"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCompany, RoleOther, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	Id       AccountId
	Handle   Handle
	Email    Email
	PassHash string
	Role     Role
	// Active is false between registration and activation, and again
	// while an email change is pending. Inactive accounts cannot log in.
	Active      bool
	Admin       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

type Credentials struct {
	Email    Email
	Password Password
}
