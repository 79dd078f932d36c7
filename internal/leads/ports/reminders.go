package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReminderScheduler enqueues a delayed follow-up reminder.
// Implemented by the scheduler module on top of the job queue.
type ReminderScheduler interface {
	ScheduleFollowupReminder(ctx context.Context, organizationID, followupID uuid.UUID, at time.Time) error
}
