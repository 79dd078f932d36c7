package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type raised struct{ org, followup uuid.UUID }

type fakeRaiser struct {
	calls []raised
	err   error
}

func (f *fakeRaiser) RaiseReminder(_ context.Context, org, followup uuid.UUID) error {
	f.calls = append(f.calls, raised{org, followup})
	return f.err
}

func TestFollowupReminderTaskRoundTrip(t *testing.T) {
	payload := FollowupReminderPayload{FollowupID: uuid.NewString(), OrganizationID: uuid.NewString()}
	task, err := NewFollowupReminderTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TaskFollowupReminder, task.Type())
	assert.JSONEq(t, `{"followupId":"`+payload.FollowupID+`","organizationId":"`+payload.OrganizationID+`"}`, string(task.Payload()))

	parsed, err := ParseFollowupReminderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, payload, parsed)
}

func TestHandleFollowupReminder(t *testing.T) {
	raiser := &fakeRaiser{}
	w := &Worker{reminders: raiser, log: logger.Discard()}
	org, followup := uuid.New(), uuid.New()

	task, err := NewFollowupReminderTask(FollowupReminderPayload{FollowupID: followup.String(), OrganizationID: org.String()})
	require.NoError(t, err)

	require.NoError(t, w.handleFollowupReminder(context.Background(), task))
	assert.Equal(t, []raised{{org, followup}}, raiser.calls)

	raiser.err = errors.New("db down")
	assert.ErrorIs(t, w.handleFollowupReminder(context.Background(), task), raiser.err, "transient errors are retried")
}

func TestHandleFollowupReminderBadPayloadSkipsRetry(t *testing.T) {
	w := &Worker{reminders: &fakeRaiser{}, log: logger.Discard()}

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"bad followup id", `{"followupId":"x","organizationId":"` + uuid.NewString() + `"}`},
		{"bad organization id", `{"followupId":"` + uuid.NewString() + `","organizationId":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.handleFollowupReminder(context.Background(), asynq.NewTask(TaskFollowupReminder, []byte(tt.payload)))
			assert.ErrorIs(t, err, asynq.SkipRetry)
		})
	}
}

func TestFollowupTaskID(t *testing.T) {
	id := uuid.New()
	at := time.Unix(1_780_000_000, 0)
	assert.Equal(t, followupTaskID(id, at), followupTaskID(id, at))
	assert.NotEqual(t, followupTaskID(id, at), followupTaskID(id, at.Add(time.Minute)))
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.ScheduleFollowupReminder(context.Background(), uuid.New(), uuid.New(), time.Now()))
	assert.NoError(t, c.Close())
}
