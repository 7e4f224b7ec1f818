package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

// SiteInfo returns the singleton site-information record. A zero record
// is returned when the row was never created, so notifications still
// render.
func (s *Storage) SiteInfo() (domain.SiteInfo, error) {
	var info domain.SiteInfo
	err := s.db.QueryRow(`
        SELECT contact_email, facebook, instagram, twitter, telegram, whatsapp, why_us, updated_at
        FROM site_info WHERE id`,
	).Scan(&info.ContactEmail, &info.Facebook, &info.Instagram, &info.Twitter, &info.Telegram, &info.Whatsapp, &info.WhyUs, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SiteInfo{}, nil
		}
		return domain.SiteInfo{}, fmt.Errorf("failed to query site info: %w", err)
	}
	return info, nil
}

func (s *Storage) SaveSiteInfo(info domain.SiteInfo) error {
	_, err := s.db.Exec(`
        INSERT INTO site_info (id, contact_email, facebook, instagram, twitter, telegram, whatsapp, why_us, updated_at)
        VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, now())
        ON CONFLICT (id) DO UPDATE
        SET contact_email = EXCLUDED.contact_email,
            facebook = EXCLUDED.facebook,
            instagram = EXCLUDED.instagram,
            twitter = EXCLUDED.twitter,
            telegram = EXCLUDED.telegram,
            whatsapp = EXCLUDED.whatsapp,
            why_us = EXCLUDED.why_us,
            updated_at = now()`,
		info.ContactEmail, info.Facebook, info.Instagram, info.Twitter, info.Telegram, info.Whatsapp, info.WhyUs,
	)
	if err != nil {
		return fmt.Errorf("failed to save site info: %w", err)
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func (s *Storage) ListFAQs(filter domain.ListFilter) ([]domain.FAQ, error) {
	rows, err := s.db.Query(`
        SELECT id, quote, answer, is_active, created_at FROM faqs
        WHERE ($1 = '' OR quote ILIKE '%' || $1 || '%' OR answer ILIKE '%' || $1 || '%')
          AND (NOT $2 OR is_active)
        ORDER BY id
        LIMIT $3 OFFSET $4`,
		filter.Search, filter.OnlyActive, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query faqs: %w", err)
	}
	defer rows.Close()

	var out []domain.FAQ
	for rows.Next() {
		var f domain.FAQ
		if err := rows.Scan(&f.Id, &f.Quote, &f.Answer, &f.Active, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Storage) SaveFAQ(f domain.FAQ) (domain.FAQ, error) {
	err := s.db.QueryRow(`
        INSERT INTO faqs (quote, answer, is_active) VALUES ($1, $2, $3)
        RETURNING id, created_at`,
		f.Quote, f.Answer, f.Active).Scan(&f.Id, &f.CreatedAt)
	if err != nil {
		return domain.FAQ{}, fmt.Errorf("failed to insert faq: %w", err)
	}
	return f, nil
}

func (s *Storage) UpdateFAQ(f domain.FAQ) error {
	return s.execExpectingRow(
		"UPDATE faqs SET quote = $2, answer = $3, is_active = $4 WHERE id = $1",
		"FAQ", f.Id, f.Quote, f.Answer, f.Active)
}

func (s *Storage) DeleteFAQ(id int64) error {
	return s.execExpectingRow("DELETE FROM faqs WHERE id = $1", "FAQ", id)
}

func (s *Storage) ListTeamMembers(filter domain.ListFilter) ([]domain.TeamMember, error) {
	rows, err := s.db.Query(`
        SELECT id, name, position, about, photo_url, is_active, created_at FROM team_members
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR position ILIKE '%' || $1 || '%' OR about ILIKE '%' || $1 || '%')
          AND (NOT $2 OR is_active)
        ORDER BY id
        LIMIT $3 OFFSET $4`,
		filter.Search, filter.OnlyActive, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var out []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.Id, &m.Name, &m.Position, &m.About, &m.PhotoURL, &m.Active, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Storage) SaveTeamMember(m domain.TeamMember) (domain.TeamMember, error) {
	err := s.db.QueryRow(`
        INSERT INTO team_members (name, position, about, photo_url, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		m.Name, m.Position, m.About, m.PhotoURL, m.Active).Scan(&m.Id, &m.CreatedAt)
	if err != nil {
		return domain.TeamMember{}, fmt.Errorf("failed to insert team member: %w", err)
	}
	return m, nil
}

func (s *Storage) UpdateTeamMember(m domain.TeamMember) error {
	return s.execExpectingRow(
		"UPDATE team_members SET name = $2, position = $3, about = $4, photo_url = $5, is_active = $6 WHERE id = $1",
		"Team member", m.Id, m.Name, m.Position, m.About, m.PhotoURL, m.Active)
}

func (s *Storage) DeleteTeamMember(id int64) error {
	return s.execExpectingRow("DELETE FROM team_members WHERE id = $1", "Team member", id)
}

func (s *Storage) ListNews(filter domain.ListFilter) ([]domain.News, error) {
	rows, err := s.db.Query(`
        SELECT id, title, body, body_html, is_active, published_at, created_at FROM news
        WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR body ILIKE '%' || $1 || '%')
          AND (NOT $2 OR is_active)
        ORDER BY published_at DESC
        LIMIT $3 OFFSET $4`,
		filter.Search, filter.OnlyActive, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var out []domain.News
	for rows.Next() {
		var n domain.News
		if err := rows.Scan(&n.Id, &n.Title, &n.Body, &n.BodyHTML, &n.Active, &n.PublishedAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Storage) NewsById(id int64) (domain.News, error) {
	var n domain.News
	err := s.db.QueryRow(`
        SELECT id, title, body, body_html, is_active, published_at, created_at
        FROM news WHERE id = $1`, id,
	).Scan(&n.Id, &n.Title, &n.Body, &n.BodyHTML, &n.Active, &n.PublishedAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.News{}, apperr.NotFound("News item")
		}
		return domain.News{}, fmt.Errorf("failed to query news item: %w", err)
	}
	return n, nil
}

func (s *Storage) SaveNews(n domain.News) (domain.News, error) {
	err := s.db.QueryRow(`
        INSERT INTO news (title, body, body_html, is_active, published_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		n.Title, n.Body, n.BodyHTML, n.Active, n.PublishedAt).Scan(&n.Id, &n.CreatedAt)
	if err != nil {
		return domain.News{}, fmt.Errorf("failed to insert news: %w", err)
	}
	return n, nil
}

func (s *Storage) UpdateNews(n domain.News) error {
	return s.execExpectingRow(
		"UPDATE news SET title = $2, body = $3, body_html = $4, is_active = $5, published_at = $6 WHERE id = $1",
		"News item", n.Id, n.Title, n.Body, n.BodyHTML, n.Active, n.PublishedAt)
}

func (s *Storage) DeleteNews(id int64) error {
	return s.execExpectingRow("DELETE FROM news WHERE id = $1", "News item", id)
}

func (s *Storage) ListPartners(filter domain.ListFilter) ([]domain.Partner, error) {
	rows, err := s.db.Query(`
        SELECT id, name, url, logo_url, description, is_active, created_at FROM partners
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
          AND (NOT $2 OR is_active)
        ORDER BY id
        LIMIT $3 OFFSET $4`,
		filter.Search, filter.OnlyActive, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	var out []domain.Partner
	for rows.Next() {
		var p domain.Partner
		if err := rows.Scan(&p.Id, &p.Name, &p.URL, &p.LogoURL, &p.Description, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Storage) SavePartner(p domain.Partner) (domain.Partner, error) {
	err := s.db.QueryRow(`
        INSERT INTO partners (name, url, logo_url, description, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		p.Name, p.URL, p.LogoURL, p.Description, p.Active).Scan(&p.Id, &p.CreatedAt)
	if err != nil {
		return domain.Partner{}, fmt.Errorf("failed to insert partner: %w", err)
	}
	return p, nil
}

func (s *Storage) UpdatePartner(p domain.Partner) error {
	return s.execExpectingRow(
		"UPDATE partners SET name = $2, url = $3, logo_url = $4, description = $5, is_active = $6 WHERE id = $1",
		"Partner", p.Id, p.Name, p.URL, p.LogoURL, p.Description, p.Active)
}

func (s *Storage) DeletePartner(id int64) error {
	return s.execExpectingRow("DELETE FROM partners WHERE id = $1", "Partner", id)
}

// execExpectingRow runs a statement that must touch exactly one row.
func (s *Storage) execExpectingRow(query, what string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("statement failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound(what)
	}
	return nil
}
