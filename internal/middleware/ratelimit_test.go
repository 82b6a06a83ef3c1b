package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"serverless-todo/backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_PerClient(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 1, Burst: 2})

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if rl.Allow("a") {
		t.Error("Expected third request to be limited")
	}
	if !rl.Allow("b") {
		t.Error("Expected other client to have its own bucket")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RateLimit(middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 1, Burst: 1})))
	router.GET("/todos", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", "/todos", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK {
		t.Errorf("Expected first request status %d, got %d", http.StatusOK, codes[0])
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected second request status %d, got %d", http.StatusTooManyRequests, codes[1])
	}
}
