// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"time"

	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/leads/activities"
	"crm_backend/internal/leads/handler"
	"crm_backend/internal/leads/management"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/scheduling"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Config is the subset of settings the leads module reads.
type Config interface {
	config.PhoneConfig
	GetFollowupReminderLead() time.Duration
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	management *management.Service
	activities *activities.Service
	scheduling *scheduling.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// reminders may be nil when no job queue is configured; reg may be nil to
// skip metrics.
func NewModule(pool *pgxpool.Pool, users ports.UserProvider, eventBus events.Bus, reminders ports.ReminderScheduler, cfg Config, reg prometheus.Registerer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)

	var metrics *management.Metrics
	if reg != nil {
		metrics = management.NewMetrics(reg)
	}

	// Create focused services (vertical slices)
	mgmtSvc := management.New(repo, users, eventBus, phone.Normalizer{Region: cfg.GetPhoneDefaultRegion()}, metrics, log)
	activitiesSvc := activities.New(repo, users)
	schedulingSvc := scheduling.New(repo, users, eventBus, reminders, cfg.GetFollowupReminderLead(), log)

	return &Module{
		handler:    handler.New(mgmtSvc, activitiesSvc, schedulingSvc, val),
		management: mgmtSvc,
		activities: activitiesSvc,
		scheduling: schedulingSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Management exposes lead CRUD to the pipeline, dashboard and templates modules.
func (m *Module) Management() *management.Service {
	return m.management
}

// Activities exposes the lead timeline to modules that log touchpoints.
func (m *Module) Activities() *activities.Service {
	return m.activities
}

// Scheduling exposes follow-ups to the dashboard.
func (m *Module) Scheduling() *scheduling.Service {
	return m.scheduling
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterFollowupRoutes(ctx.Protected.Group("/followups"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
