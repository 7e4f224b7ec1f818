package domain

import "time"

// SiteInfo is the singleton site-information record. Every outbound
// notification embeds it so emails stay self-consistent no matter
// which transition produced them.
type SiteInfo struct {
	ContactEmail Email     `json:"contact_email"`
	Facebook     string    `json:"facebook"`
	Instagram    string    `json:"instagram"`
	Twitter      string    `json:"twitter"`
	Telegram     string    `json:"telegram"`
	Whatsapp     string    `json:"whatsapp"`
	WhyUs        string    `json:"why_us"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FAQ struct {
	Id        int64     `json:"id"`
	Quote     string    `json:"quote"`
	Answer    string    `json:"answer"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamMember struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	About     string    `json:"about"`
	PhotoURL  string    `json:"photo_url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type News struct {
	Id    int64  `json:"id"`
	Title string `json:"title"`
	// Body is the markdown source; BodyHTML is the rendered and
	// sanitized version served to clients.
	Body        string    `json:"body"`
	BodyHTML    string    `json:"body_html"`
	Active      bool      `json:"active"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Partner struct {
	Id          int64     `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	LogoURL     string    `json:"logo_url"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
