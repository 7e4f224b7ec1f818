package pg

import (
	"fmt"
	"time"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

func (s *Storage) AccountCountsByRole() ([]domain.RoleCount, error) {
	rows, err := s.db.Query("SELECT role, count(*) FROM accounts GROUP BY role ORDER BY role")
	if err != nil {
		return nil, fmt.Errorf("failed to query role counts: %w", err)
	}
	defer rows.Close()

	var out []domain.RoleCount
	for rows.Next() {
		var rc domain.RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (s *Storage) AccountActivityCounts() (active, inactive int64, err error) {
	err = s.db.QueryRow(`
        SELECT count(*) FILTER (WHERE is_active), count(*) FILTER (WHERE NOT is_active)
        FROM accounts`,
	).Scan(&active, &inactive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query activity counts: %w", err)
	}
	return active, inactive, nil
}

// RegistrationsByMonth returns per-month registration counts since the
// given time, oldest first. Months with no registrations are absent.
func (s *Storage) RegistrationsByMonth(since time.Time) ([]domain.MonthCount, error) {
	rows, err := s.db.Query(`
        SELECT date_trunc('month', created_at) AS month, count(*)
        FROM accounts WHERE created_at >= $1
        GROUP BY month ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations by month: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthCount
	for rows.Next() {
		var mc domain.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan month count: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// ContentCounts reports how many active rows each content type has.
func (s *Storage) ContentCounts() (map[string]int64, error) {
	out := make(map[string]int64, 4)
	for _, table := range []string{"faqs", "team_members", "news", "partners"} {
		var n int64
		if err := s.db.QueryRow("SELECT count(*) FROM " + table + " WHERE is_active").Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
