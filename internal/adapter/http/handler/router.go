package handler

import (
	"payment-webhook-engine/internal/adapter/http/middleware"
	redisStore "payment-webhook-engine/internal/adapter/storage/redis"
	"payment-webhook-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Processor      ports.WebhookProcessor
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Gateway-facing webhook ingress (signature-authenticated) ---
	webhookHandler := NewWebhookHandler(deps.Processor, deps.Logger)
	r.POST("/webhooks/payments/:provider", rl("webhooks"), webhookHandler.Handle)

	// --- JWT-authenticated ops API ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)

	v1 := r.Group("/api/v1", jwtAuth)
	{
		v1.GET("/transactions", rl("ops"), dashboardHandler.ListTransactions)
		v1.GET("/transactions/:id/notifications", rl("ops"), dashboardHandler.ListNotifications)
		v1.GET("/dashboard/stats", rl("ops"), dashboardHandler.GetStats)
	}

	return r
}
