// Package app wires configuration into the components shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentiwatch/config"
	"github.com/spacesedan/sentiwatch/internal/clients"
	"github.com/spacesedan/sentiwatch/internal/clients/kafka_client"
	"github.com/spacesedan/sentiwatch/internal/db"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
	"github.com/spacesedan/sentiwatch/internal/translate"
)

// App holds the long-lived components built from a Config. Close releases them
// in reverse order of creation.
type App struct {
	Config     *config.Config
	Engine     *sentiment.Engine
	Store      db.TicketRepository
	Translator translate.Translator
	Language   *translate.Service

	closers []func()
}

// New builds the engine, ticket store and language service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	engine, err := sentiment.NewDefaultEngine(cfg.Sentiment(), cfg.VaderEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to build sentiment engine: %w", err)
	}
	a.Engine = engine

	store, err := a.newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	translator, err := a.newTranslator()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Translator = translator
	a.Language = translate.NewService(translate.NewDetector(cfg.DetectMinConfidence), translator)

	slog.Info("[App] Components ready",
		slog.String("store", cfg.TicketStore),
		slog.String("translation_provider", cfg.TranslationProvider),
		slog.Bool("translation_cache", cfg.CacheEnabled()),
		slog.Bool("vader_available", engine.ValenceAvailable()))

	return a, nil
}

// Pipeline returns a ticket pipeline over the app's components.
func (a *App) Pipeline(opts ...processing.Option) *processing.Pipeline {
	base := []processing.Option{
		processing.WithDefaultMethod(a.Config.Method()),
		processing.WithMarkupStripping(a.Config.StripMarkup),
	}
	return processing.NewPipeline(a.Engine, a.Language, a.Store, append(base, opts...)...)
}

// KafkaConfig maps the app configuration onto the Kafka client settings.
func (a *App) KafkaConfig() kafka_client.KafkaConfig {
	return kafka_client.KafkaConfig{
		Broker:       a.Config.KafkaBroker,
		GroupID:      a.Config.KafkaConsumerGroup,
		TicketsTopic: a.Config.KafkaTopicTickets,
		ResultsTopic: a.Config.KafkaTopicResults,
	}
}

// NewProducer connects a result producer and registers it for Close.
func (a *App) NewProducer() (*kafka_client.Producer, error) {
	producer, err := kafka_client.NewProducer(a.KafkaConfig())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, producer.Close)
	return producer, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) newStore(ctx context.Context) (db.TicketRepository, error) {
	cfg := a.Config
	switch cfg.TicketStore {
	case config.StoreDynamoDB:
		client, err := clients.GetDynamoDBClient(ctx, clients.AWSOptions{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		return db.NewDynamoStore(client, cfg.DynamoDBTable), nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		store := db.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return db.NewFileStore(cfg.TicketsPath), nil
	}
}

func (a *App) newTranslator() (translate.Translator, error) {
	cfg := a.Config

	var translator translate.Translator
	switch cfg.TranslationProvider {
	case config.ProviderLibre:
		translator = translate.NewLibreTranslator(cfg.TranslationURL, cfg.TranslationAPIKey, cfg.TranslationTimeout)
	case config.ProviderOpenAI:
		translator = translate.NewOpenAITranslator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.TranslationURL, cfg.TranslationTimeout)
	default:
		return nil, nil
	}

	if !cfg.CacheEnabled() {
		return translator, nil
	}

	cache, err := clients.InitValkey(clients.ValkeyOptions{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPassword,
		TLS:      cfg.ValkeyTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}
	a.closers = append(a.closers, clients.CloseValkey)

	return translate.NewCachedTranslator(translator, cache, cfg.TranslationCacheTTL), nil
}
