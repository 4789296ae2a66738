package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordDecision("will-navigate", "open-external")
	m.RecordDecision("will-navigate", "open-external")
	m.RecordExternalOpen("dropped")
	m.RecordTransition("online", "offline")
	m.IncWindowsCreated()
	m.RecordActivation("second-instance")
	m.RecordStaleWindowOp("zoom")
	m.RecordEvent("ready", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues("will-navigate", "open-external")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExternalOpens.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Offline))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WindowsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Activations.WithLabelValues("second-instance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("ready")))

	m.RecordTransition("offline", "online")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Offline))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `webshell_instance_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, body, "webshell_uptime_seconds")
}
