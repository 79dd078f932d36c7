package scheduler

import (
	"context"
	"fmt"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ReminderRaiser turns a due reminder task into a FollowupReminderDue event.
type ReminderRaiser interface {
	RaiseReminder(ctx context.Context, organizationID, followupID uuid.UUID) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	reminders ReminderRaiser
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reminders ReminderRaiser, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("scheduler task failed", "task", task.Type(), "error", err)
		}),
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		reminders: reminders,
		log:       log,
	}
	w.mux.HandleFunc(TaskFollowupReminder, w.handleFollowupReminder)

	return w, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleFollowupReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowupReminderPayload(task)
	if err != nil {
		return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	followupID, err := uuid.Parse(payload.FollowupID)
	if err != nil {
		return fmt.Errorf("followup id: %v: %w", err, asynq.SkipRetry)
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return fmt.Errorf("organization id: %v: %w", err, asynq.SkipRetry)
	}

	return w.reminders.RaiseReminder(ctx, orgID, followupID)
}
