// Package server exposes the to-do handlers over plain HTTP with gin, for
// local development and container deployments.
package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"serverless-todo/backend/internal/handlers"
	"serverless-todo/backend/internal/middleware"
	"serverless-todo/backend/internal/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	Auth      middleware.AuthConfig
	RateLimit *middleware.RateLimitConfig
	Logger    *slog.Logger
}

func NewRouter(h *handlers.TodoHandler, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))
	if opts.RateLimit != nil {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(*opts.RateLimit)))
	}

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/health/live", monitoring.LivenessHandler())
	router.GET("/health/ready", monitoring.ReadinessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	todos := router.Group("/todos")
	todos.Use(middleware.AuthMiddleware(opts.Auth))
	{
		todos.GET("", adapt(h.List))
		todos.POST("", adapt(h.Submit))
		todos.PUT("/:taskId/:status", adapt(h.Update))
		todos.POST("/clear-completed", adapt(h.ClearCompleted))
	}

	return router
}

// adapt runs a transport-neutral handler inside gin, building the same
// Request shape API Gateway would deliver.
func adapt(fn handlers.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requestFromGin(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "could not read request body"})
			return
		}

		resp := fn(c.Request.Context(), req)
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
	}
}

func requestFromGin(c *gin.Context) (*handlers.Request, error) {
	req := &handlers.Request{}

	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		req.Body = string(body)
	}

	if len(c.Params) > 0 {
		req.PathParameters = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			req.PathParameters[p.Key] = p.Value
		}
	}

	if query := c.Request.URL.Query(); len(query) > 0 {
		req.QueryStringParameters = make(map[string]string, len(query))
		for k := range query {
			req.QueryStringParameters[k] = query.Get(k)
		}
	}

	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		req.Claims, _ = claims.(map[string]interface{})
	}

	return req, nil
}
