package domain

import "time"

// Profile holds the mutable personal data attached to an account.
// Created empty when the account activates.
type Profile struct {
	AccountId AccountId `json:"account_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	About     string    `json:"about"`
	UpdatedAt time.Time `json:"updated_at"`
}
