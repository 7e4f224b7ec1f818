// Package notification builds and delivers the transactional emails
// tied to account lifecycle transitions.
package notification

// Kind selects the template for a message.
type Kind string

const (
	KindActivation      Kind = "activation"
	KindConfirmation    Kind = "confirmation"
	KindEmailChange     Kind = "email_change"
	KindPasswordReset   Kind = "password_reset"
	KindPasswordChanged Kind = "password_changed"
	KindUsernameChanged Kind = "username_changed"
	KindDelete          Kind = "delete"
)

// Message is a fully rendered notification, ready for the sender.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message to an address.
type Sender interface {
	Send(to, subject, body string) error
}
