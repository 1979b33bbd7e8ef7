// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carterperez-dev/stackit/internal/admin"
	"github.com/carterperez-dev/stackit/internal/answer"
	"github.com/carterperez-dev/stackit/internal/auth"
	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/health"
	"github.com/carterperez-dev/stackit/internal/middleware"
	"github.com/carterperez-dev/stackit/internal/notification"
	"github.com/carterperez-dev/stackit/internal/question"
	"github.com/carterperez-dev/stackit/internal/server"
	"github.com/carterperez-dev/stackit/internal/user"
	"github.com/carterperez-dev/stackit/internal/vote"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

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

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
			"sample_rate", cfg.Otel.SampleRate,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database migrated")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := auth.NewVerifier(ctx, cfg.Identity)
	if err != nil {
		return err
	}
	logger.Info("identity verifier initialized",
		"issuer", cfg.Identity.Issuer,
		"remote_jwks", cfg.Identity.JWKSURL != "",
	)

	userSvc := user.NewService(user.NewRepository(db.DB), cfg.Identity)
	userHandler := user.NewHandler(userSvc)

	broker := notification.NewBroker(redis)
	notificationRepo := notification.NewRepository(db.DB)
	dispatcher := notification.NewDispatcher(notificationRepo, broker, cfg.Notification, logger)
	notificationHandler := notification.NewHandler(
		notification.NewService(notificationRepo),
		broker,
		logger,
		cfg.CORS.AllowedOrigins,
	)

	voteSvc := vote.NewService(vote.NewRepository(db.DB), dispatcher)
	voteHandler := vote.NewHandler(voteSvc)

	questionSvc := question.NewService(question.NewRepository(db.DB), voteSvc)
	questionHandler := question.NewHandler(questionSvc, voteHandler)

	answerSvc := answer.NewService(answer.NewRepository(db.DB), dispatcher)
	answerHandler := answer.NewHandler(answerSvc, voteHandler)

	healthHandler := health.NewHandler(
		health.Probe{Name: "database", Checker: db},
		health.Probe{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Repository:        admin.NewRepository(db.DB),
		Questions:         questionSvc,
		Answers:           answerSvc,
		DBStats:           db.Stats,
		RedisStats:        redis.PoolStats,
		DBPing:            db.Ping,
		RedisPing:         redis.Ping,
		NotificationStats: dispatcher.Stats,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(verifier, userSvc)
	guards := middleware.Guards{
		Authenticate: authenticator,
		Optional:     middleware.OptionalAuth(verifier, userSvc),
		PostLimit: middleware.NewScopedRateLimiter(
			redis.Client,
			"post",
			middleware.PerMinute(cfg.RateLimit.PostRequests, cfg.RateLimit.PostRequests),
		).Handler,
		VoteLimit: middleware.NewScopedRateLimiter(
			redis.Client,
			"vote",
			middleware.PerMinute(cfg.RateLimit.VoteRequests, cfg.RateLimit.VoteRequests),
		).Handler,
		AdminOnly: middleware.RequireAdmin,
	}

	router.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r, authenticator)
		questionHandler.RegisterRoutes(r, guards)
		answerHandler.RegisterRoutes(r, guards)
		notificationHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, guards, userHandler.RegisterAdminRoutes)
	})

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("notification dispatcher shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

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
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
