package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chasedovey/tokencounter/internal/auth"
	"github.com/chasedovey/tokencounter/internal/config"
	"github.com/chasedovey/tokencounter/internal/counting"
	"github.com/chasedovey/tokencounter/internal/handler"
	"github.com/chasedovey/tokencounter/internal/ratelimit"
	"github.com/chasedovey/tokencounter/internal/server"
	"github.com/chasedovey/tokencounter/internal/storage"
	"github.com/chasedovey/tokencounter/internal/storage/memory"
	"github.com/chasedovey/tokencounter/internal/storage/sqlite"
	"github.com/chasedovey/tokencounter/internal/telemetry"
	"github.com/chasedovey/tokencounter/internal/tokens"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("tokencounter", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	// Tokenizer registry
	registry := tokens.NewRegistry()
	registry.Register(tokens.NewOpenAICounter())
	registry.SetAllowedModels(cfg.Tokens.Models)
	if cfg.Tokens.EnableEstimatorFallback {
		registry.SetFallback(tokens.NewEstimator())
	}

	service := counting.NewService(registry, cfg.Tokens.BatchConcurrency)

	// Usage store
	var store storage.UsageStore
	switch cfg.Storage.Type {
	case "sqlite":
		path := cfg.Storage.SQLite.Path
		if path == "" {
			path = "./data/usage.db"
		}
		store, err = sqlite.New(path)
		if err != nil {
			log.Fatalf("Failed to open usage store: %v", err)
		}
	case "none":
		store = storage.Noop{}
	default:
		store = memory.New()
	}
	defer store.Close()

	verifier := auth.NewVerifier(cfg.Auth.Username, cfg.Auth.Password)

	limiter := ratelimit.NewClientLimiter(
		cfg.RateLimit.Requests,
		cfg.RateLimit.WindowDuration(),
		cfg.RateLimit.IdleTTLDuration(),
	)
	janitorStop := make(chan struct{})
	defer close(janitorStop)
	limiter.StartJanitor(cfg.RateLimit.IdleTTLDuration(), janitorStop)

	srv := server.New(cfg.Server.Port, cfg.Server.Timeout(), logger)
	handler.New(service, store, logger).Mount(srv.Router, verifier, limiter)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("token counter ready",
		slog.Int("port", cfg.Server.Port),
		slog.Int("rate_limit_requests", cfg.RateLimit.Requests),
		slog.String("rate_limit_window", cfg.RateLimit.WindowDuration().String()),
		slog.String("storage", cfg.Storage.Type),
	)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("shutdown complete")
}
