// Package pipeline provides the kanban pipeline bounded context module.
package pipeline

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/pipeline/handler"
	"crm_backend/internal/pipeline/repository"
	"crm_backend/internal/pipeline/service"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, leads service.Leads, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), leads, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "pipeline"
}

// Service exposes stage listing to other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/pipeline"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/pipeline"))
}

var _ apphttp.Module = (*Module)(nil)
