package scheduler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskFollowupReminder = "followups.reminder"

type FollowupReminderPayload struct {
	FollowupID     string `json:"followupId"`
	OrganizationID string `json:"organizationId"`
}

func NewFollowupReminderTask(payload FollowupReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupReminder, data), nil
}

func ParseFollowupReminderPayload(task *asynq.Task) (FollowupReminderPayload, error) {
	var payload FollowupReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowupReminderPayload{}, err
	}
	return payload, nil
}

// followupTaskID is unique per follow-up and run time, so enqueuing the same
// reminder twice is a no-op while a rescheduled reminder gets its own task.
func followupTaskID(followupID uuid.UUID, runAt time.Time) string {
	return TaskFollowupReminder + ":" + followupID.String() + ":" + strconv.FormatInt(runAt.Unix(), 10)
}
