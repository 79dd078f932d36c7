package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	authadapter "crm_backend/internal/auth/adapter"
	authrepo "crm_backend/internal/auth/repository"
	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/internal/leads"
	"crm_backend/internal/notification"
	"crm_backend/internal/scheduler"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/retry"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	users := authadapter.NewUserDirectoryAdapter(authrepo.New(pool))

	// Reminders raised by the worker are mailed from this process.
	notificationModule := notification.New(email.NewSender(cfg), users, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// The worker only raises reminders, so the leads module needs no queue or metrics.
	leadsModule := leads.NewModule(pool, users, eventBus, nil, cfg, nil, validator.New(), log)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Scheduling(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	log.Info("scheduler stopped")
}
