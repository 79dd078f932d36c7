// Package templates provides the email template and email log bounded context.
package templates

import (
	"crm_backend/internal/email"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/leads/ports"
	"crm_backend/internal/templates/handler"
	"crm_backend/internal/templates/repository"
	"crm_backend/internal/templates/service"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(
	pool *pgxpool.Pool,
	leads service.Leads,
	activities service.Activities,
	users ports.UserProvider,
	sender email.Sender,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(repository.New(pool), leads, activities, users, sender, eventBus, log)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "templates"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
