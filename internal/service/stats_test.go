package service

import (
	"testing"
	"time"

	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStatsStorage struct {
	roles  []domain.RoleCount
	months []domain.MonthCount
}

func (m *mockStatsStorage) AccountCountsByRole() ([]domain.RoleCount, error) {
	return m.roles, nil
}

func (m *mockStatsStorage) AccountActivityCounts() (int64, int64, error) {
	return 7, 3, nil
}

func (m *mockStatsStorage) RegistrationsByMonth(since time.Time) ([]domain.MonthCount, error) {
	return m.months, nil
}

func (m *mockStatsStorage) ContentCounts() (map[string]int64, error) {
	return map[string]int64{"faqs": 4, "team_members": 2, "news": 9, "partners": 1}, nil
}

func TestStats_AccountsByRole(t *testing.T) {
	svc := NewStats(&mockStatsStorage{roles: []domain.RoleCount{
		{Role: domain.RoleCustomer, Count: 10},
		{Role: domain.RoleCompany, Count: 3},
	}})

	chart, err := svc.AccountsByRole()
	require.NoError(t, err)
	assert.Equal(t, domain.ChartPie, chart.Type)
	assert.Equal(t, []string{"customer", "company"}, chart.Labels)
	require.Len(t, chart.Datasets, 1)
	assert.Equal(t, []float64{10, 3}, chart.Datasets[0].Data)
}

func TestStats_AccountActivity(t *testing.T) {
	chart, err := NewStats(&mockStatsStorage{}).AccountActivity()
	require.NoError(t, err)
	assert.Equal(t, domain.ChartDoughnut, chart.Type)
	assert.Equal(t, []float64{7, 3}, chart.Datasets[0].Data)
}

func TestStats_RegistrationsFillsEmptyMonths(t *testing.T) {
	now := time.Now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	svc := NewStats(&mockStatsStorage{months: []domain.MonthCount{
		{Month: thisMonth, Count: 5},
	}})

	chart, err := svc.Registrations()
	require.NoError(t, err)
	assert.Equal(t, domain.ChartLine, chart.Type)
	require.Len(t, chart.Labels, 12, "twelve months, zero-filled")
	data := chart.Datasets[0].Data
	assert.Equal(t, float64(5), data[len(data)-1])
	assert.Equal(t, float64(0), data[0])
}

func TestStats_Content(t *testing.T) {
	chart, err := NewStats(&mockStatsStorage{}).Content()
	require.NoError(t, err)
	assert.Equal(t, domain.ChartBar, chart.Type)
	assert.Equal(t, []string{"faqs", "team_members", "news", "partners"}, chart.Labels)
	assert.Equal(t, []float64{4, 2, 9, 1}, chart.Datasets[0].Data)
}
