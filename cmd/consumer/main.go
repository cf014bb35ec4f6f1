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
	"github.com/spacesedan/sentiwatch/internal/clients/kafka_client"
	"github.com/spacesedan/sentiwatch/internal/consumers"
	"github.com/spacesedan/sentiwatch/internal/logging"
	"github.com/spacesedan/sentiwatch/internal/monitoring"
)

func main() {
	config.LoadEnv(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if !cfg.KafkaEnabled() {
		slog.Error("[Main] KAFKA_BROKER is required for the ticket consumer")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	var producer *kafka_client.Producer
	for {
		producer, err = a.NewProducer()
		if err == nil {
			break
		}

		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}

	var translatorHealthy *atomic.Bool
	if a.Language.TranslationEnabled() {
		translatorHealthy = &atomic.Bool{}
		translatorHealthy.Store(true)
		go monitoring.MonitorTranslatorHealth(ctx, a.Language, translatorHealthy, 0)
	}

	kafkaCfg := a.KafkaConfig()
	kafka_client.RegisterConsumer(kafkaCfg.TicketsTopic,
		consumers.TicketConsumerFunc(a.Pipeline(), producer, translatorHealthy))

	if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
