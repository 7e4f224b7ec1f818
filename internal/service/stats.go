package service

import (
	"time"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

type StatsStorage interface {
	AccountCountsByRole() ([]domain.RoleCount, error)
	AccountActivityCounts() (active, inactive int64, err error)
	RegistrationsByMonth(since time.Time) ([]domain.MonthCount, error)
	ContentCounts() (map[string]int64, error)
}

// Stats folds storage aggregates into the chart payloads the admin
// dashboard renders directly.
type Stats struct {
	storage StatsStorage
}

func NewStats(storage StatsStorage) *Stats {
	return &Stats{storage: storage}
}

func (s *Stats) AccountsByRole() (domain.ChartData, error) {
	counts, err := s.storage.AccountCountsByRole()
	if err != nil {
		return domain.ChartData{}, err
	}

	chart := domain.ChartData{Type: domain.ChartPie}
	dataset := domain.Dataset{Label: "Accounts by role"}
	for _, rc := range counts {
		chart.Labels = append(chart.Labels, string(rc.Role))
		dataset.Data = append(dataset.Data, float64(rc.Count))
	}
	chart.Datasets = []domain.Dataset{dataset}
	return chart, nil
}

func (s *Stats) AccountActivity() (domain.ChartData, error) {
	active, inactive, err := s.storage.AccountActivityCounts()
	if err != nil {
		return domain.ChartData{}, err
	}
	return domain.ChartData{
		Type:   domain.ChartDoughnut,
		Labels: []string{"active", "inactive"},
		Datasets: []domain.Dataset{
			{Label: "Account activity", Data: []float64{float64(active), float64(inactive)}},
		},
	}, nil
}

// Registrations charts the last twelve months of signups. Months with
// no registrations appear as zero so the x-axis stays contiguous.
func (s *Stats) Registrations() (domain.ChartData, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	counts, err := s.storage.RegistrationsByMonth(start)
	if err != nil {
		return domain.ChartData{}, err
	}
	byMonth := make(map[string]int64, len(counts))
	for _, mc := range counts {
		byMonth[mc.Month.Format("2006-01")] = mc.Count
	}

	chart := domain.ChartData{Type: domain.ChartLine}
	dataset := domain.Dataset{Label: "Registrations"}
	for month := start; !month.After(now); month = month.AddDate(0, 1, 0) {
		key := month.Format("2006-01")
		chart.Labels = append(chart.Labels, key)
		dataset.Data = append(dataset.Data, float64(byMonth[key]))
	}
	chart.Datasets = []domain.Dataset{dataset}
	return chart, nil
}

func (s *Stats) Content() (domain.ChartData, error) {
	counts, err := s.storage.ContentCounts()
	if err != nil {
		return domain.ChartData{}, err
	}

	chart := domain.ChartData{Type: domain.ChartBar}
	dataset := domain.Dataset{Label: "Published content"}
	for _, table := range []string{"faqs", "team_members", "news", "partners"} {
		chart.Labels = append(chart.Labels, table)
		dataset.Data = append(dataset.Data, float64(counts[table]))
	}
	chart.Datasets = []domain.Dataset{dataset}
	return chart, nil
}
