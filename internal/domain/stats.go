package domain

import "time"

// Chart types understood by the admin dashboard.
const (
	ChartLine     = "line"
	ChartBar      = "bar"
	ChartPie      = "pie"
	ChartDoughnut = "doughnut"
)

// RoleCount and MonthCount are aggregation rows produced by the
// storage layer and folded into ChartData by the stats service.
type RoleCount struct {
	Role  Role
	Count int64
}

type MonthCount struct {
	Month time.Time
	Count int64
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is the chart-shaped payload returned by stats endpoints.
type ChartData struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}
