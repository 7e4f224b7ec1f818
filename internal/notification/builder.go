package notification

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

// Context is everything a template may reference. Site is always set:
// every outbound email carries the same site-information block no
// matter which transition produced it.
type Context struct {
	Handle   string
	Token    string
	NewValue string
	Site     domain.SiteInfo
}

var subjects = map[Kind]string{
	KindActivation:      "Activate your account",
	KindConfirmation:    "Your account is active",
	KindEmailChange:     "Confirm your new email address",
	KindPasswordReset:   "Reset your password",
	KindPasswordChanged: "Your password was changed",
	KindUsernameChanged: "Your username was changed",
	KindDelete:          "Your account was deleted",
}

const footerTmpl = `
--
Questions? Write to {{.Site.ContactEmail}}.
{{- if .Site.Whatsapp}}
WhatsApp: {{.Site.Whatsapp}}
{{- end}}
{{- if .Site.Facebook}}
Facebook: {{.Site.Facebook}}
{{- end}}
{{- if .Site.Instagram}}
Instagram: {{.Site.Instagram}}
{{- end}}
{{- if .Site.Twitter}}
Twitter: {{.Site.Twitter}}
{{- end}}
{{- if .Site.Telegram}}
Telegram: {{.Site.Telegram}}
{{- end}}
{{- if .Site.WhyUs}}

{{.Site.WhyUs}}
{{- end}}
`

var bodies = map[Kind]string{
	KindActivation: `Hello {{.Handle}},

Welcome! Use the code below to activate your account:

{{.Token}}

If you did not register, please ignore this email.
{{template "footer" .}}`,

	KindConfirmation: `Hello {{.Handle}},

Your account is now active. You can sign in.
{{template "footer" .}}`,

	KindEmailChange: `Hello {{.Handle}},

You asked to change your email address to {{.NewValue}}. Your account
is deactivated until you confirm with the code below:

{{.Token}}

If you did not request this, contact support immediately.
{{template "footer" .}}`,

	KindPasswordReset: `Hello {{.Handle}},

Use the code below to reset your password:

{{.Token}}

If you did not request this, please ignore this email.
{{template "footer" .}}`,

	KindPasswordChanged: `Hello {{.Handle}},

Your password was just changed. If this wasn't you, contact support.
{{template "footer" .}}`,

	KindUsernameChanged: `Hello {{.Handle}},

Your username is now {{.NewValue}}.
{{template "footer" .}}`,

	KindDelete: `Hello {{.Handle}},

Your account and all associated data have been deleted. We're sorry to
see you go.
{{template "footer" .}}`,
}

var templates = func() map[Kind]*template.Template {
	out := make(map[Kind]*template.Template, len(bodies))
	for kind, body := range bodies {
		t := template.Must(template.New(string(kind)).Parse(body))
		template.Must(t.New("footer").Parse(footerTmpl))
		out[kind] = t
	}
	return out
}()

// Build renders the message for one transition. Pure: no I/O, the
// caller supplies the site info and hands the result to a Sender.
func Build(kind Kind, to string, ctx Context) (Message, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, ctx); err != nil {
		return Message{}, fmt.Errorf("render %s notification: %w", kind, err)
	}

	return Message{
		Kind:    kind,
		To:      to,
		Subject: subjects[kind],
		Body:    sb.String(),
	}, nil
}
