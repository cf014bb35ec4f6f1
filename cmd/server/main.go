package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentiwatch/config"
	"github.com/spacesedan/sentiwatch/internal/app"
	"github.com/spacesedan/sentiwatch/internal/logging"
	"github.com/spacesedan/sentiwatch/internal/monitoring"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/server"
)

func main() {
	config.LoadEnv(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	var opts []processing.Option
	if cfg.KafkaEnabled() {
		producer, err := a.NewProducer()
		if err != nil {
			slog.Warn("[Main] Kafka unavailable, results will not be published",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, processing.WithPublisher(producer))
		}
	}

	translatorHealthy := &atomic.Bool{}
	translatorHealthy.Store(true)
	if a.Language.TranslationEnabled() {
		go monitoring.MonitorTranslatorHealth(ctx, a.Language, translatorHealthy, 0)
	}

	srv := server.NewServer(a.Pipeline(opts...), server.Options{
		Port:              cfg.Port,
		TranslatorHealthy: translatorHealthy,
		VaderAvailable:    a.Engine.ValenceAvailable(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		slog.Info("[Main] Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
