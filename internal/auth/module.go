// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"crm_backend/internal/adapters/storage"
	"crm_backend/internal/auth/adapter"
	"crm_backend/internal/auth/handler"
	"crm_backend/internal/auth/repository"
	"crm_backend/internal/auth/service"
	authvalidator "crm_backend/internal/auth/validator"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	directory *adapter.UserDirectoryAdapter
}

// NewModule creates and initializes the auth module with all its dependencies.
// store may be nil when object storage is not configured.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, store storage.StorageService, avatarBucket string, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := authvalidator.Register(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)
	if store != nil {
		svc.SetAvatarStorage(store, avatarBucket)
	}

	return &Module{
		handler:   handler.New(svc, val),
		service:   svc,
		directory: adapter.NewUserDirectoryAdapter(repo),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Directory exposes tenant members to other modules.
func (m *Module) Directory() *adapter.UserDirectoryAdapter {
	return m.directory
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.POST("/users/me/avatar", m.handler.UploadAvatar)

	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.POST("/users", m.handler.CreateUser)
	ctx.Admin.PUT("/users/:id/role", m.handler.SetRole)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
