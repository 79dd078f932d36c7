// Package http wires the CRM modules into one gin engine.
package http

import (
	"context"

	"crm_backend/internal/events"
	"crm_backend/platform/config"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Module is one bounded context with its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups they mount on. Protected
// requires a valid access token; Admin additionally requires the admin role.
type RouterContext struct {
	V1              *gin.RouterGroup
	Protected       *gin.RouterGroup
	Admin           *gin.RouterGroup
	AuthRateLimiter *httpkit.AuthRateLimiter
}

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness probe.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything the router needs, assembled in cmd/api.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Metrics is served on /metrics when set.
	Metrics *prometheus.Registry
	Modules []Module
}
