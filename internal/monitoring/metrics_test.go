package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	globalMetrics.mu.Lock()
	globalMetrics.RequestCount = 0
	globalMetrics.ActiveRequests = 0
	globalMetrics.ErrorCount = 0
	globalMetrics.totalDuration = 0
	globalMetrics.RequestDuration = 0
	globalMetrics.StatusCodes = make(map[string]int64)
	globalMetrics.Endpoints = make(map[string]int64)
	globalMetrics.mu.Unlock()

	globalHealthChecker.mu.Lock()
	globalHealthChecker.checks = make(map[string]HealthCheckFunc)
	globalHealthChecker.mu.Unlock()

	sourcesMu.Lock()
	sources = make(map[string]Source)
	sourcesMu.Unlock()
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/todos", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/health", HealthHandler())
	router.GET("/health/ready", ReadinessHandler())
	router.GET("/health/live", LivenessHandler())
	router.GET("/metrics", MetricsHandler())
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	reset()
	router := setupRouter()

	get(router, "/todos")
	get(router, "/todos")
	get(router, "/broken")

	metrics := GetMetrics()
	assert.Equal(t, int64(3), metrics.RequestCount)
	assert.Equal(t, int64(1), metrics.ErrorCount)
	assert.Equal(t, int64(0), metrics.ActiveRequests)
	assert.Equal(t, int64(2), metrics.Endpoints["GET /todos"])
	assert.Equal(t, int64(1), metrics.StatusCodes[http.StatusText(http.StatusInternalServerError)])
}

func TestHealthHandler(t *testing.T) {
	reset()
	router := setupRouter()

	RegisterHealthCheck("store", func(ctx context.Context) error { return nil })
	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	RegisterHealthCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	w = get(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string                 `json:"status"`
		Checks map[string]HealthCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["store"].Status)
	assert.Equal(t, "connection refused", body.Checks["redis"].Message)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
}

func TestHealthChecksRunEachTime(t *testing.T) {
	reset()

	calls := 0
	RegisterHealthCheck("store", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})

	RunHealthChecks(context.Background())
	RunHealthChecks(context.Background())
	assert.Equal(t, 2, calls)
}

func TestMetricsHandler_IncludesSources(t *testing.T) {
	reset()
	router := setupRouter()

	RegisterSource("cache", func() interface{} {
		return map[string]int{"hits": 3}
	})

	w := get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "application")
	assert.Contains(t, body, "system")
	assert.JSONEq(t, `{"hits":3}`, string(body["cache"]))
}
