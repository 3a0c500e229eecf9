package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/platinummonkey/coursebook/pkg/api"
	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/config"
	"github.com/platinummonkey/coursebook/pkg/courses"
	"github.com/platinummonkey/coursebook/pkg/enrollments"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/session"
	"github.com/platinummonkey/coursebook/pkg/storage"
	"github.com/platinummonkey/coursebook/pkg/storage/memory"
	"github.com/platinummonkey/coursebook/pkg/storage/postgres"
	"github.com/platinummonkey/coursebook/pkg/users"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coursebook: %v\n", err)
		os.Exit(1)
	}
}

// cleanupStack collects close funcs for resources opened during start-up
type cleanupStack struct {
	funcs []observability.ShutdownFunc
}

func (c *cleanupStack) push(fn observability.ShutdownFunc) {
	c.funcs = append(c.funcs, fn)
}

// unwind closes everything pushed so far, newest first
func (c *cleanupStack) unwind(ctx context.Context) error {
	var errs []error
	for i := len(c.funcs) - 1; i >= 0; i-- {
		if err := c.funcs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.funcs = nil
	return errors.Join(errs...)
}

func run() (err error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.Level(), os.Stdout)
	defer observability.RecoverPanic(logger, "main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelCfg := cfg.Observability.OTel()
	if otelCfg.ServiceVersion == "" {
		otelCfg.ServiceVersion = version
	}
	providers, err := observability.InitOTel(ctx, otelCfg, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	// on a failed start everything opened so far is closed; once the servers
	// run, the shutdown manager owns the stack
	var (
		opened  cleanupStack
		serving bool
	)
	defer func() {
		if err != nil && !serving {
			if cerr := opened.unwind(context.Background()); cerr != nil {
				logger.WithError(cerr).Error("Cleanup after failed start")
			}
		}
	}()
	opened.push(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	auditLogger, err := openAudit(cfg.Audit, logger)
	if err != nil {
		return err
	}
	opened.push(func(context.Context) error { return auditLogger.Close() })

	store, err := openStore(ctx, cfg.Storage, metrics, logger)
	if err != nil {
		return err
	}
	opened.push(func(context.Context) error { return store.Close() })
	logger.WithField("backend", store.Backend()).Info("Storage initialized")

	sessions, redisClient, err := openSessions(ctx, cfg.Session, logger)
	if err != nil {
		return err
	}
	if closer, ok := sessions.(*session.RedisStore); ok {
		opened.push(func(context.Context) error { return closer.Close() })
	}

	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenExpiry)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	server := api.NewServer(api.Dependencies{
		Courses:       courses.NewService(store),
		Users:         users.NewService(store, hasher, tokens),
		Enrollments:   enrollments.NewService(store, metrics),
		Authenticator: middleware.NewAuthenticator(tokens, metrics),
		Sessions:      sessions,
		SessionCookie: cfg.Session.CookieName,
		Metrics:       metrics,
		Audit:         auditLogger,
	})

	apiServer := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.Handler(api.HandlerOptions{
			Logger:       logger,
			CORSOrigins:  cfg.Server.CORSOrigins,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			Tracing:      otelCfg.Enabled,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(store, redisClient, version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddr(),
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		cancel()
		return opened.unwind(ctx)
	})

	logger.WithFields(map[string]interface{}{
		"addr":        apiServer.Addr,
		"health_addr": healthServer.Addr,
		"version":     version,
	}).Info("Starting coursebook")

	serving = true
	return shutdown.Run(ctx)
}

func openStore(ctx context.Context, cfg storage.Config, metrics *observability.Metrics, logger *observability.Logger) (storage.Store, error) {
	switch cfg.Type {
	case "postgres":
		pg, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		observability.StartDBStatsCollector(ctx, metrics, pg, 0, logger)
		return storage.NewInstrumentedStore(pg, metrics), nil
	default:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return storage.NewInstrumentedStore(memory.NewStore(), metrics), nil
	}
}

func openSessions(ctx context.Context, cfg config.SessionConfig, logger *observability.Logger) (session.Store, *redis.Client, error) {
	if !cfg.UseRedis() {
		return session.NewMemoryStore(cfg.TTL), nil, nil
	}

	store, err := session.NewRedisStore(ctx, cfg.RedisConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("connect session redis: %w", err)
	}
	logger.Info("Sessions stored in Redis")
	return store, store.Client(), nil
}

func openAudit(cfg config.AuditConfig, logger *observability.Logger) (audit.Logger, error) {
	if !cfg.Enabled {
		return audit.NopLogger{}, nil
	}

	structured := audit.NewStructuredLogger(logger)
	if cfg.Dir == "" {
		return structured, nil
	}

	file, err := audit.NewFileLogger(cfg.FileLogger())
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	multi := audit.NewMultiLogger(structured, file)
	multi.SetAsync(true)
	return multi, nil
}
