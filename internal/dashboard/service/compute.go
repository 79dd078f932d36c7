package service

import (
	"math"
	"sort"
	"time"

	"crm_backend/internal/dashboard/transport"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/scheduling"
	leadtransport "crm_backend/internal/leads/transport"

	"github.com/google/uuid"
)

const topRepLimit = 5

// Input is everything a dashboard is computed from. Users is empty for reps.
type Input struct {
	Leads     []leadtransport.LeadResponse
	Followups []leadtransport.FollowupResponse
	Users     []ports.UserInfo
}

// Compute derives the dashboard figures at now. Months are calendar months
// of now's year in now's location.
func Compute(in Input, now time.Time) transport.DashboardResponse {
	out := transport.DashboardResponse{
		TotalLeads: len(in.Leads),
		TopReps:    []transport.RepStat{},
		Year:       now.Year(),
		Monthly:    make([]int64, 12),
		ChartBars:  make([]float64, 12),
	}

	for _, lead := range in.Leads {
		switch lead.Status {
		case domain.StageWon:
			out.WonCount++
			out.Revenue += lead.ExpectedValue
		case domain.StageLost:
			out.LostCount++
		default:
			out.ActiveCount++
			out.PipelineValue += lead.ExpectedValue
		}

		created := lead.CreatedAt.In(now.Location())
		if created.Year() == now.Year() {
			out.Monthly[created.Month()-1] += lead.ExpectedValue
		}
	}

	if out.TotalLeads > 0 {
		out.ConversionRate = math.Round(float64(out.WonCount)/float64(out.TotalLeads)*1000) / 10
	}

	for _, f := range in.Followups {
		if scheduling.IsDueToday(f.Status, f.DateTime, now) {
			out.TodayFollowups++
		}
		if scheduling.IsOverdue(f.Status, f.DateTime, now) {
			out.OverdueFollowups++
		}
	}

	out.TopReps = topReps(in.Users, in.Leads)

	maxValue := int64(1)
	for _, v := range out.Monthly {
		maxValue = max(maxValue, v)
	}
	for i, v := range out.Monthly {
		out.ChartBars[i] = float64(v) / float64(maxValue) * 100
	}

	return out
}

func topReps(users []ports.UserInfo, leads []leadtransport.LeadResponse) []transport.RepStat {
	if len(users) == 0 {
		return []transport.RepStat{}
	}

	byRep := make(map[uuid.UUID]*transport.RepStat, len(users))
	stats := make([]transport.RepStat, len(users))
	for i, u := range users {
		stats[i] = transport.RepStat{ID: u.ID, Name: u.Name}
		byRep[u.ID] = &stats[i]
	}
	for _, lead := range leads {
		if lead.Status != domain.StageWon || lead.AssignedRep == nil {
			continue
		}
		if stat, ok := byRep[*lead.AssignedRep]; ok {
			stat.WonCount++
			stat.Revenue += lead.ExpectedValue
		}
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Revenue > stats[j].Revenue })
	if len(stats) > topRepLimit {
		stats = stats[:topRepLimit]
	}
	return stats
}
