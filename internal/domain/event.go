package domain

import "time"

// EventKind enumerates completed account-state transitions.
type EventKind string

const (
	EventRegistered         EventKind = "registered"
	EventActivated          EventKind = "activated"
	EventEmailChangeRequest EventKind = "email_change_requested"
	EventDeactivated        EventKind = "deactivated"
	EventReactivated        EventKind = "reactivated"
	EventPasswordChanged    EventKind = "password_changed"
	EventUsernameChanged    EventKind = "username_changed"
	EventDeleted            EventKind = "deleted"
)

// Event is an immutable record of a completed transition. Events are
// fire-and-forget: they exist only for the duration of the synchronous
// fan-out to subscribers.
type Event struct {
	Kind          EventKind
	AccountId     AccountId
	Email         Email
	NewValue      string
	CorrelationId string
	At            time.Time
}
