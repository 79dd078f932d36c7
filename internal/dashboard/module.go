// Package dashboard provides the per-user dashboard module.
package dashboard

import (
	"context"

	"crm_backend/internal/dashboard/cache"
	"crm_backend/internal/dashboard/handler"
	"crm_backend/internal/dashboard/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/leads/ports"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule builds the dashboard. A nil redis client disables caching.
func NewModule(leads service.Leads, followups service.Followups, users ports.UserLister, rdb *redis.Client, cfg config.CacheConfig, log *logger.Logger) *Module {
	var c service.Cache
	if rdb != nil {
		c = cache.NewRedisCache(rdb, cfg.GetDashboardCacheTTL())
	}
	svc := service.New(leads, followups, users, c, log)
	return &Module{handler: handler.New(svc), service: svc, log: log}
}

func (m *Module) Name() string {
	return "dashboard"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dashboard"))
}

// RegisterHandlers drops cached dashboards whenever the tenant's leads or
// follow-ups change.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadUpdated{}.EventName(), m)
	bus.Subscribe(events.LeadDeleted{}.EventName(), m)
	bus.Subscribe(events.LeadsRescored{}.EventName(), m)
	bus.Subscribe(events.FollowupScheduled{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	tenantID := tenantOf(event)
	if tenantID == nil {
		return nil
	}
	if err := m.service.Invalidate(ctx, *tenantID); err != nil {
		m.log.Warn("dashboard cache invalidation failed", "event", event.EventName(), "error", err)
		return err
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)
