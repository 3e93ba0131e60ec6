package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/kyokan/config"
	"github.com/spacesedan/kyokan/internal/analysis"
	"github.com/spacesedan/kyokan/internal/api"
	"github.com/spacesedan/kyokan/internal/clients"
	"github.com/spacesedan/kyokan/internal/db"
	"github.com/spacesedan/kyokan/internal/imaging"
	"github.com/spacesedan/kyokan/internal/logging"
	"github.com/spacesedan/kyokan/internal/monitoring"
	"github.com/spacesedan/kyokan/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newResultStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize result store",
			slog.String("backend", cfg.Persistence.Backend),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	model, err := clients.NewOpenAIClient(cfg.AI)
	if err != nil {
		slog.Error("Failed to initialize OpenAI client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	encoder := imaging.NewEncoder(imaging.Options{
		MaxWidth:    cfg.Image.MaxWidth,
		MaxPixels:   cfg.Image.MaxPixels,
		Format:      cfg.Image.Format,
		JPEGQuality: cfg.Image.JPEGQuality,
	})

	service := analysis.NewService(model, encoder, store, analysis.Options{
		Table:          cfg.Scoring.Table,
		AITimeout:      cfg.AI.Timeout,
		IncludeRawText: cfg.Scoring.IncludeRawText,
	})

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(service, cfg.Upload.MaxBytes)
	if pinger, ok := store.(monitoring.Pinger); ok {
		var storeHealthy atomic.Bool
		go monitoring.MonitorStoreHealth(ctx, pinger, &storeHealthy, monitoring.HEALTHCHECK_INTERVAL)
		handler.WithStoreHealth(&storeHealthy)
	}
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Kyokan API listening",
			slog.String("addr", srv.Addr),
			slog.String("persistence", cfg.Persistence.Backend),
			slog.String("tier_table", string(cfg.Scoring.Table)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("Shutdown complete.")
}

// newResultStore returns a nil store when persistence is disabled.
func newResultStore(ctx context.Context, cfg *config.Config) (analysis.ResultStore, func(), error) {
	noop := func() {}

	switch cfg.Persistence.Backend {
	case config.PersistenceFile:
		store, err := storage.NewFileStore(cfg.Persistence.ResultsDir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.PersistenceValkey:
		vc, err := clients.NewValkeyClient(ctx, cfg.Valkey)
		if err != nil {
			return nil, noop, err
		}
		return vc, vc.Close, nil
	case config.PersistenceDynamoDB:
		awsCfg, err := clients.NewAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, noop, err
		}
		client := clients.NewDynamoDBClient(awsCfg, cfg.AWS.Endpoint)
		return db.NewResultTable(client, cfg.AWS.ResultTable), noop, nil
	default:
		slog.Info("Result persistence disabled")
		return nil, noop, nil
	}
}
