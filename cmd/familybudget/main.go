package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"familybudget/internal/advice"
	"familybudget/internal/backend"
	"familybudget/internal/budget"
	"familybudget/internal/cache"
	"familybudget/internal/cli"
	apphttp "familybudget/internal/http"
	"familybudget/internal/log"
	"familybudget/internal/narration"
	"familybudget/internal/report"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	advisor := advice.New(cfg.GeminiAPIKey, cfg.GeminiModel, advice.WithLogger(logger))

	clips := cache.NewClipStore(cfg.AudioCacheSize, cfg.AudioCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(clips)
	cacheManager.StartCleanup(5 * time.Minute)

	ctrl, err := budget.New(ctx, res.Store,
		budget.WithAdvisor(advisor),
		budget.WithNarrator(narration.New(cfg.ElevenLabsBaseURL, narration.WithLogger(logger))),
		budget.WithExporter(report.New(report.WithLogger(logger))),
		budget.WithHistoryPublisher(res.Publisher),
		budget.WithClipStore(clips),
		budget.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Failed to load budget state", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ctrl,
		apphttp.WithLogger(logger),
		apphttp.WithReadiness(res.Ping),
		apphttp.WithClipStats(clips),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
	)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting family budget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"advice_enabled", cfg.AdviceEnabled(),
		"history_mirroring", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
