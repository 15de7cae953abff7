package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/config"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/database"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/kafka"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/logger"
	infraredis "github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/redis"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/security"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/telemetry"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/memory"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/postgres"
	redisrepo "github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/redis"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/routes"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

// App owns the wired dependency graph and the HTTP server lifecycle.
type App struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	server *http.Server

	pool        *pgxpool.Pool
	redisClient *infraredis.Client
	producer    *kafka.Producer

	memSessions *memory.SessionStore
	memBuckets  *memory.RateLimitStore

	audit *usecase.AuditService

	// RateLimits exposes the programmatic check surface for embedding
	// services that guard actions outside the HTTP middleware.
	RateLimits *usecase.RateLimitService
}

// New wires the full dependency graph from configuration. Redis is selected
// for session and rate-limit state when a host is configured; otherwise the
// in-memory stores serve a single-instance deployment. Kafka falls back to a
// logging stub when no brokers are configured.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("attach telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: log,
		pool:   pool,
	}

	var (
		sessionStore   port.SessionStore
		rateLimitStore port.RateLimitStore
	)

	if cfg.Redis.Host != "" {
		client, err := infraredis.NewClient(cfg.Redis, log)
		if err != nil {
			a.closePartial()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redisClient = client

		sessionStore = redisrepo.NewSessionStore(client.Client(), redisrepo.SessionStoreConfig{
			KeyPrefix: cfg.Redis.SessionPrefix,
			TTL:       cfg.Session.TTL + cfg.Session.InactiveRetention,
		})
		rateLimitStore = redisrepo.NewRateLimitStore(client.Client(), redisrepo.FixedWindowConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
		})
	} else {
		a.memSessions = memory.NewSessionStore()
		a.memSessions.StartJanitor(cfg.Session.SweepInterval, cfg.Session.InactiveRetention)

		a.memBuckets = memory.NewRateLimitStore()
		a.memBuckets.StartJanitor(cfg.Session.SweepInterval, cfg.RateLimit.WindowDuration)

		sessionStore = a.memSessions
		rateLimitStore = a.memBuckets

		log.Info("using in-memory session and rate-limit stores")
	}

	var events port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("kafka unavailable, falling back to logging publisher", zap.Error(err))
			events = kafka.NewStubPublisher(log)
		} else {
			a.producer = producer
			events = kafka.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		events = kafka.NewStubPublisher(log)
	}

	verifier, err := security.NewJWTVerifier(security.VerifierConfig{
		Secret:    cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		ClockSkew: cfg.Auth.ClockSkew,
	})
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	admins := postgres.NewAdminRepository(pool)
	auditStore := postgres.NewAuditStore(pool)

	authService := usecase.NewAuthService(verifier, admins, domain.DefaultPermissionMatrix(), log).
		WithResolveTimeout(cfg.Auth.ResolveTimeout)

	sessionService := usecase.NewSessionService(sessionStore, events, log).
		WithTTL(cfg.Session.TTL)

	a.audit = usecase.NewAuditService(auditStore, events, log, usecase.AuditConfig{
		QueueSize:    cfg.Audit.QueueSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}).WithFailureCounter(provider.AuditDrops())

	a.RateLimits = usecase.NewRateLimitService(rateLimitStore)

	gate := middleware.NewPermissionGate(authService).
		WithDenialCounter(provider.AuthzDenials())

	limiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Gate:        gate,
		RateLimiter: limiter,
		Metrics:     httpMetrics,
		Services: routes.ServiceSet{
			Auth:     authService,
			Sessions: sessionService,
			Audit:    a.audit,
		},
		Database: pool,
	}
	if a.redisClient != nil {
		deps.Cache = a.redisClient
	}

	engine := routes.Register(deps)

	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is cancelled, then
// shuts down gracefully: the listener stops accepting, in-flight requests
// finish, and the audit queue drains before stores close.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown(context.Background())
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", zap.Error(err))
	}

	a.shutdown(shutdownCtx)

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) shutdown(ctx context.Context) {
	if a.audit != nil {
		drainCtx, cancel := context.WithTimeout(ctx, a.cfg.Audit.DrainTimeout)
		if err := a.audit.Close(drainCtx); err != nil {
			a.logger.Warn("audit drain incomplete", zap.Error(err))
		}
		cancel()
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka close failed", zap.Error(err))
		}
	}

	a.closePartial()
}

func (a *App) closePartial() {
	if a.memSessions != nil {
		a.memSessions.Close()
	}
	if a.memBuckets != nil {
		a.memBuckets.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
