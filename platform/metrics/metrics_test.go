package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	m := NewHTTP(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/leads/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/leads/1", "/leads/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/leads/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewHTTP(reg).Requests.WithLabelValues("GET", "/x", "200").Inc()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "crm_http_requests_total"))
}
