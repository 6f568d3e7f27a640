// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/pawmart/go-backend/internal/admin"
	"github.com/pawmart/go-backend/internal/auth"
	"github.com/pawmart/go-backend/internal/config"
	"github.com/pawmart/go-backend/internal/core"
	"github.com/pawmart/go-backend/internal/health"
	"github.com/pawmart/go-backend/internal/middleware"
	"github.com/pawmart/go-backend/internal/server"
	"github.com/pawmart/go-backend/internal/user"
)

const drainDelay = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	//nolint:errcheck // .env is optional, real env vars win either way
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// deps holds everything run wires together, so route assembly and
// shutdown can live in their own functions.
type deps struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *core.Telemetry
	db        *core.Database
	redis     *core.Redis
	issuer    *auth.TokenIssuer
	authSvc   *auth.Service
	userSvc   *user.Service
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}

	healthHandler := health.NewHandler(
		health.Probe{Name: "database", Check: d.db.Ping},
		health.Probe{Name: "redis", Check: d.redis.Ping},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	assembleRoutes(srv.Router(), d, healthHandler)
	healthHandler.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	gracefulStop(srv, d)
	logger.Info("application stopped")
	return nil
}

func buildDeps(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*deps, error) {
	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if err != nil {
			logger.Warn("failed to initialize telemetry", "error", err)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}
	logger.Info("token issuer initialized",
		"algorithm", "HS256",
		"access_ttl", issuer.AccessTTL(),
		"refresh_ttl", issuer.RefreshTTL(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, userRepo, logger)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		userSvc,
		userSvc,
		core.NewArgon2Hasher(),
		issuer,
		auth.NewValidator(cfg.Auth.BlockedEmailDomains),
		logger,
	)

	return &deps{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry,
		db:        db,
		redis:     redis,
		issuer:    issuer,
		authSvc:   authSvc,
		userSvc:   userSvc,
	}, nil
}

func assembleRoutes(router chi.Router, d *deps, healthHandler *health.Handler) {
	router.Use(middleware.RequestID)
	if d.telemetry != nil {
		router.Use(middleware.Tracing(d.telemetry.Tracer))
	}
	router.Use(middleware.Logger(d.logger))
	router.Use(
		middleware.NewRateLimiter(d.redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				d.cfg.RateLimit.Requests,
				d.cfg.RateLimit.Burst,
			),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(d.cfg.App.Environment == "production"))
	router.Use(middleware.CORS(d.cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(d.issuer)
	adminOnly := middleware.RequireAdmin

	roleLimiter := middleware.RoleRateLimiter(
		d.redis.Client,
		middleware.DefaultRoleLimits,
	)
	authedAndLimited := func(next http.Handler) http.Handler {
		return authenticator(roleLimiter(next))
	}

	authHandler := auth.NewHandler(d.authSvc)
	userHandler := user.NewHandler(d.userSvc)
	adminHandler := admin.NewHandler(d.db, d.redis, d.authSvc)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authedAndLimited)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})
}

func gracefulStop(srv *server.Server, d *deps) {
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		d.cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		d.logger.Error("server shutdown error", "error", err)
	}

	if d.telemetry != nil {
		if err := d.telemetry.Shutdown(shutdownCtx); err != nil {
			d.logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := d.redis.Close(); err != nil {
		d.logger.Error("redis close error", "error", err)
	}

	if err := d.db.Close(); err != nil {
		d.logger.Error("database close error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
