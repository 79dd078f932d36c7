package scheduling

import (
	"time"

	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
)

// Group buckets follow-ups relative to now. A pending follow-up is overdue
// when it is before now on an earlier calendar day, due today when it falls
// on now's calendar day, and upcoming otherwise. Overdue is never stored.
// Calendar days are taken in now's location.
func Group(items []transport.FollowupResponse, now time.Time) transport.GroupedFollowupsResponse {
	out := transport.GroupedFollowupsResponse{
		Overdue:  []transport.FollowupResponse{},
		Today:    []transport.FollowupResponse{},
		Upcoming: []transport.FollowupResponse{},
		Done:     []transport.FollowupResponse{},
	}

	for _, item := range items {
		if item.Status == domain.FollowupDone {
			out.Done = append(out.Done, item)
			continue
		}

		today := sameDay(item.DateTime, now)
		switch {
		case today:
			out.Today = append(out.Today, item)
		case item.DateTime.Before(now):
			out.Overdue = append(out.Overdue, item)
		default:
			out.Upcoming = append(out.Upcoming, item)
		}
	}
	return out
}

// IsOverdue reports whether a pending follow-up at dateTime is overdue at now.
func IsOverdue(status string, dateTime, now time.Time) bool {
	return status == domain.FollowupPending && dateTime.Before(now) && !sameDay(dateTime, now)
}

// IsDueToday reports whether a pending follow-up falls on now's calendar day.
func IsDueToday(status string, dateTime, now time.Time) bool {
	return status == domain.FollowupPending && sameDay(dateTime, now)
}

func sameDay(t, now time.Time) bool {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func ToFollowupResponse(f repository.Followup) transport.FollowupResponse {
	return transport.FollowupResponse{
		ID:            f.ID,
		LeadID:        f.LeadID,
		LeadName:      f.LeadName,
		DateTime:      f.DateTime,
		Description:   f.Description,
		Status:        f.Status,
		CreatedBy:     f.CreatedBy,
		CreatedByName: f.CreatedByName,
		CreatedAt:     f.CreatedAt,
	}
}

func ToFollowupResponses(items []repository.Followup) []transport.FollowupResponse {
	out := make([]transport.FollowupResponse, len(items))
	for i, item := range items {
		out[i] = ToFollowupResponse(item)
	}
	return out
}
