package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/config"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/handlers"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Sessions *usecase.SessionService
	Audit    *usecase.AuditService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Gate        *middleware.PermissionGate
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	requireAuth := deps.Gate.RequireAuth()

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1/admin")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Sessions, deps.Services.Audit, deps.Logger)

		authGroup := api.Group("/auth")
		authGroup.Use(requireAuth)
		if loginLimit := buildLoginRateLimit(deps); loginLimit != nil {
			authGroup.POST("/login", loginLimit, authHandler.Login)
		} else {
			authGroup.POST("/login", authHandler.Login)
		}
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)

		sessionHandler := handlers.NewSessionHandler(deps.Services.Sessions)
		sessionGroup := api.Group("/sessions")
		sessionGroup.Use(requireAuth)
		sessionHandler.RegisterRoutes(sessionGroup)

		auditHandler := handlers.NewAuditHandler(deps.Services.Audit)
		auditGroup := api.Group("/audit")
		auditGroup.Use(requireAuth)
		auditGroup.Use(deps.Gate.RequirePermission(domain.ResourceAuditLog, domain.ActionRead))
		auditHandler.RegisterRoutes(auditGroup)
	}

	return r
}

// ActionLimits builds the fixed-window middleware for each configured
// sensitive admin action, keyed by action name. Domain route handlers mount
// these on the endpoints that perform the action; limits are scoped to the
// authenticated administrator, so they must run after RequireAuth.
func ActionLimits(cfg *config.AppConfig, limiter *middleware.RateLimiter) map[string]gin.HandlerFunc {
	if cfg == nil || limiter == nil {
		return nil
	}

	window := cfg.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	limits := make(map[string]gin.HandlerFunc)
	for _, rule := range []middleware.RateLimitRule{
		{Action: "approve_join", Limit: cfg.RateLimit.ApproveJoinMax, Window: window, Identifier: middleware.AdminIdentifier()},
		{Action: "deactivate_user", Limit: cfg.RateLimit.DeactivateUserMax, Window: window, Identifier: middleware.AdminIdentifier()},
		{Action: "broadcast", Limit: cfg.RateLimit.BroadcastMax, Window: window, Identifier: middleware.AdminIdentifier()},
	} {
		if rule.Limit <= 0 {
			continue
		}
		limits[rule.Action] = limiter.Limit(rule)
	}

	return limits
}

func buildLoginRateLimit(deps Dependencies) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Action:     "login",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return deps.RateLimiter.Limit(rule)
}
