package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm_backend/internal/adapters/storage"
	"crm_backend/internal/auth"
	"crm_backend/internal/dashboard"
	"crm_backend/internal/email"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/http/router"
	"crm_backend/internal/leads"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/notification"
	"crm_backend/internal/pipeline"
	"crm_backend/internal/scheduler"
	"crm_backend/internal/templates"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"
	"crm_backend/platform/redis"
	"crm_backend/platform/retry"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := retry.Do(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	registry := metrics.NewRegistry()
	val := validator.New()
	sender := email.NewSender(cfg)
	if email.IsNoop(sender) {
		log.Warn("SMTP not configured; emails are logged but not delivered")
	}

	reminders, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// Storage service for avatars (MinIO). Optional.
	var store storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := retry.Do(ctx, log, "ensure avatars bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketAvatars())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketAvatars())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		store = minioSvc
		log.Info("storage service initialized", "avatarsBucket", cfg.GetMinioBucketAvatars())
	} else {
		log.Warn("MinIO not configured; avatar uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule, err := auth.NewModule(pool, cfg, store, cfg.GetMinioBucketAvatars(), eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	users := authModule.Directory()

	leadsModule := leads.NewModule(pool, users, eventBus, reminders, cfg, registry, val, log)
	pipelineModule := pipeline.NewModule(pool, leadsModule.Management(), val, log)
	templatesModule := templates.NewModule(pool, leadsModule.Management(), leadsModule.Activities(), users, sender, eventBus, val, log)

	dashboardModule := dashboard.NewModule(leadsModule.Management(), leadsModule.Scheduling(), users, rdb, cfg, log)
	dashboardModule.RegisterHandlers(eventBus)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, users, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Metrics:  registry,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			pipelineModule,
			templatesModule,
			dashboardModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (ports.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Warn("redis unavailable; dashboard cache disabled", "error", err)
		return nil
	}
	if client == nil {
		log.Warn("REDIS_URL not configured; dashboard cache disabled")
	}
	return client
}
