package service

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type InfoStorage interface {
	ListFAQs(filter domain.ListFilter) ([]domain.FAQ, error)
	SaveFAQ(f domain.FAQ) (domain.FAQ, error)
	UpdateFAQ(f domain.FAQ) error
	DeleteFAQ(id int64) error

	ListTeamMembers(filter domain.ListFilter) ([]domain.TeamMember, error)
	SaveTeamMember(m domain.TeamMember) (domain.TeamMember, error)
	UpdateTeamMember(m domain.TeamMember) error
	DeleteTeamMember(id int64) error

	ListNews(filter domain.ListFilter) ([]domain.News, error)
	NewsById(id int64) (domain.News, error)
	SaveNews(n domain.News) (domain.News, error)
	UpdateNews(n domain.News) error
	DeleteNews(id int64) error

	ListPartners(filter domain.ListFilter) ([]domain.Partner, error)
	SavePartner(p domain.Partner) (domain.Partner, error)
	UpdatePartner(p domain.Partner) error
	DeletePartner(id int64) error
}

// Info serves the public content catalog: FAQs, team members, news and
// partners. News bodies are markdown; they are rendered and sanitized
// once on write, never on read.
type Info struct {
	storage  InfoStorage
	cfg      *config.Config
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewInfo(storage InfoStorage, cfg *config.Config) *Info {
	return &Info{
		storage:  storage,
		cfg:      cfg,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		// UGC policy strips scripts and event handlers but keeps the
		// formatting tags markdown produces.
		policy: bluemonday.UGCPolicy(),
	}
}

// clamp applies the configured page-size bounds. Public listings always
// hide inactive rows; admin listings pass onlyActive=false.
func (i *Info) clamp(filter domain.ListFilter, onlyActive bool) domain.ListFilter {
	if filter.Limit <= 0 {
		filter.Limit = i.cfg.Public.DefaultPageSize
	}
	if filter.Limit > i.cfg.Public.MaxPageSize {
		filter.Limit = i.cfg.Public.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.OnlyActive = onlyActive
	return filter
}

func (i *Info) FAQs(filter domain.ListFilter, admin bool) ([]domain.FAQ, error) {
	return i.storage.ListFAQs(i.clamp(filter, !admin))
}

func (i *Info) SaveFAQ(f domain.FAQ) (domain.FAQ, error) {
	if strings.TrimSpace(f.Quote) == "" {
		return domain.FAQ{}, &apperr.Error{Message: "Question is required", StatusCode: http.StatusBadRequest}
	}
	if f.Id == 0 {
		return i.storage.SaveFAQ(f)
	}
	return f, i.storage.UpdateFAQ(f)
}

func (i *Info) DeleteFAQ(id int64) error {
	return i.storage.DeleteFAQ(id)
}

func (i *Info) TeamMembers(filter domain.ListFilter, admin bool) ([]domain.TeamMember, error) {
	return i.storage.ListTeamMembers(i.clamp(filter, !admin))
}

func (i *Info) SaveTeamMember(m domain.TeamMember) (domain.TeamMember, error) {
	if strings.TrimSpace(m.Name) == "" {
		return domain.TeamMember{}, &apperr.Error{Message: "Name is required", StatusCode: http.StatusBadRequest}
	}
	if m.Id == 0 {
		return i.storage.SaveTeamMember(m)
	}
	return m, i.storage.UpdateTeamMember(m)
}

func (i *Info) DeleteTeamMember(id int64) error {
	return i.storage.DeleteTeamMember(id)
}

func (i *Info) News(filter domain.ListFilter, admin bool) ([]domain.News, error) {
	return i.storage.ListNews(i.clamp(filter, !admin))
}

// NewsItem returns one article. Inactive articles are visible to admins
// only.
func (i *Info) NewsItem(id int64, admin bool) (domain.News, error) {
	n, err := i.storage.NewsById(id)
	if err != nil {
		return domain.News{}, err
	}
	if !n.Active && !admin {
		return domain.News{}, apperr.NotFound("News item")
	}
	return n, nil
}

func (i *Info) SaveNews(n domain.News) (domain.News, error) {
	if strings.TrimSpace(n.Title) == "" {
		return domain.News{}, &apperr.Error{Message: "Title is required", StatusCode: http.StatusBadRequest}
	}

	html, err := i.renderMarkdown(n.Body)
	if err != nil {
		return domain.News{}, err
	}
	n.BodyHTML = html

	if n.Id == 0 {
		return i.storage.SaveNews(n)
	}
	return n, i.storage.UpdateNews(n)
}

func (i *Info) DeleteNews(id int64) error {
	return i.storage.DeleteNews(id)
}

func (i *Info) Partners(filter domain.ListFilter, admin bool) ([]domain.Partner, error) {
	return i.storage.ListPartners(i.clamp(filter, !admin))
}

func (i *Info) SavePartner(p domain.Partner) (domain.Partner, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Partner{}, &apperr.Error{Message: "Name is required", StatusCode: http.StatusBadRequest}
	}
	if p.Id == 0 {
		return i.storage.SavePartner(p)
	}
	return p, i.storage.UpdatePartner(p)
}

func (i *Info) DeletePartner(id int64) error {
	return i.storage.DeletePartner(id)
}

func (i *Info) renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := i.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return i.policy.Sanitize(buf.String()), nil
}
