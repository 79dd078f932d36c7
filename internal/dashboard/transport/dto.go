package transport

import "github.com/google/uuid"

type RepStat struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	WonCount int       `json:"wonCount"`
	Revenue  int64     `json:"revenue"`
}

// DashboardResponse holds the figures of one user's dashboard. Values are
// expected-value sums in the organization currency.
type DashboardResponse struct {
	TotalLeads       int       `json:"totalLeads"`
	Revenue          int64     `json:"revenue"`
	WonCount         int       `json:"wonCount"`
	LostCount        int       `json:"lostCount"`
	ActiveCount      int       `json:"activeCount"`
	PipelineValue    int64     `json:"pipelineValue"`
	ConversionRate   float64   `json:"conversionRate"`
	TodayFollowups   int       `json:"todayFollowups"`
	OverdueFollowups int       `json:"overdueFollowups"`
	TopReps          []RepStat `json:"topReps"`
	Year             int       `json:"year"`
	Monthly          []int64   `json:"monthly"`
	ChartBars        []float64 `json:"chartBars"`
}
