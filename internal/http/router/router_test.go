package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"

	"github.com/gin-gonic/gin"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"http://localhost:3000"} }
func (testConfig) GetCORSAllowCreds() bool    { return true }
func (testConfig) GetJWTAccessSecret() string { return "secret" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
	ctx.Admin.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func newApp(health apphttp.HealthChecker) *apphttp.App {
	gin.SetMode(gin.TestMode)
	return &apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Metrics: metrics.NewRegistry(),
		Modules: []apphttp.Module{echoModule{}},
	}
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	engine := New(newApp(pinger{}))
	if w := serve(engine, "/api/health"); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w := serve(engine, "/api/ready"); w.Code != http.StatusOK {
		t.Fatalf("ready: %d", w.Code)
	}

	down := New(newApp(pinger{err: errors.New("db down")}))
	if w := serve(down, "/api/ready"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when db is down, got %d", w.Code)
	}
}

func TestProtectedAndAdminGroupsRequireToken(t *testing.T) {
	engine := New(newApp(pinger{}))
	for _, path := range []string{"/api/v1/echo", "/api/v1/admin/echo"} {
		if w := serve(engine, path); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestMetricsEndpointAndSecurityHeaders(t *testing.T) {
	engine := New(newApp(pinger{}))
	serve(engine, "/api/health")

	w := serve(engine, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id")
	}
}
