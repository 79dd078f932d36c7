package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testJWTConfig struct{ secret string }

func (c testJWTConfig) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func newTestRouter(cfg testJWTConfig, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired(cfg)}, handlers...)
	r.GET("/protected", chain...)
	return r
}

func TestAuthRequiredSetsIdentity(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	userID := uuid.New()
	tenantID := uuid.New()

	var got Identity
	r := newTestRouter(cfg, func(c *gin.Context) {
		got = GetIdentity(c)
		c.Status(http.StatusOK)
	})

	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":       userID.String(),
		"tenant_id": tenantID.String(),
		"roles":     []string{RoleAdmin},
		"type":      "access",
		"exp":       time.Now().Add(time.Minute).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID() != userID || got.TenantID() != tenantID || !got.IsAdmin() {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthRequiredRejects(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	r := newTestRouter(cfg, func(c *gin.Context) { c.Status(http.StatusOK) })

	valid := jwt.MapClaims{
		"sub":       uuid.NewString(),
		"tenant_id": uuid.NewString(),
		"type":      "access",
		"exp":       time.Now().Add(time.Minute).Unix(),
	}
	refresh := jwt.MapClaims{}
	noTenant := jwt.MapClaims{}
	expired := jwt.MapClaims{}
	for k, v := range valid {
		refresh[k], noTenant[k], expired[k] = v, v, v
	}
	refresh["type"] = "refresh"
	delete(noTenant, "tenant_id")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	cases := map[string]string{
		"missing":      "",
		"wrong secret": "Bearer " + signToken(t, "other", valid),
		"wrong type":   "Bearer " + signToken(t, cfg.secret, refresh),
		"no tenant":    "Bearer " + signToken(t, cfg.secret, noTenant),
		"expired":      "Bearer " + signToken(t, cfg.secret, expired),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testJWTConfig{secret: "s3cret"}
	r := newTestRouter(cfg, RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":       uuid.NewString(),
		"tenant_id": uuid.NewString(),
		"roles":     []string{RoleRep},
		"type":      "access",
		"exp":       time.Now().Add(time.Minute).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("lead not found"), http.StatusNotFound},
		{"wrapped validation", errors.Join(errors.New("ctx"), apperr.Validation("bad")), http.StatusBadRequest},
		{"plain", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			if !HandleError(c, tc.err) {
				t.Fatalf("expected error to be handled")
			}
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}
