package config

import (
	"errors"
	"fmt"
	"time"

	"go-simpler.org/env"

	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

const (
	ProviderNone   = "none"
	ProviderLibre  = "libre"
	ProviderOpenAI = "openai"

	StoreFile     = "file"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"dev"`
	Port      string `env:"PORT" default:"5001"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	SentimentMethod   string  `env:"SENTIMENT_METHOD" default:"combined"`
	PolarityThreshold float64 `env:"POLARITY_THRESHOLD" default:"0.2"`
	ValenceThreshold  float64 `env:"VALENCE_THRESHOLD" default:"0.05"`
	CombinedThreshold float64 `env:"COMBINED_THRESHOLD" default:"0.15"`
	PolarityWeight    float64 `env:"POLARITY_WEIGHT" default:"0.4"`
	ValenceWeight     float64 `env:"VALENCE_WEIGHT" default:"0.6"`
	VaderEnabled      bool    `env:"VADER_ENABLED" default:"true"`
	StripMarkup       bool    `env:"STRIP_MARKUP" default:"true"`

	TranslationProvider string        `env:"TRANSLATION_PROVIDER" default:"none"`
	TranslationURL      string        `env:"TRANSLATION_URL"`
	TranslationAPIKey   string        `env:"TRANSLATION_API_KEY"`
	TranslationTimeout  time.Duration `env:"TRANSLATION_TIMEOUT" default:"10s"`
	DetectMinConfidence float64       `env:"DETECT_MIN_CONFIDENCE" default:"0.5"`
	OpenAIAPIKey        string        `env:"OPENAI_API_KEY"`
	OpenAIModel         string        `env:"OPENAI_MODEL" default:"gpt-4o-mini"`

	ValkeyAddress       string        `env:"VALKEY_INIT_ADDRESS"`
	ValkeyPassword      string        `env:"VALKEY_PASSWORD"`
	ValkeyTLS           bool          `env:"VALKEY_TLS" default:"false"`
	TranslationCacheTTL time.Duration `env:"TRANSLATION_CACHE_TTL" default:"24h"`

	TicketStore   string `env:"TICKET_STORE" default:"file"`
	TicketsPath   string `env:"TICKETS_PATH" default:"data/tickets.json"`
	DynamoDBTable string `env:"DYNAMODB_TABLE" default:"Tickets"`
	AWSRegion     string `env:"AWS_REGION" default:"us-west-2"`
	AWSEndpoint   string `env:"AWS_ENDPOINT"`
	DatabaseURL   string `env:"DATABASE_URL"`

	KafkaBroker        string `env:"KAFKA_BROKER"`
	KafkaConsumerGroup string `env:"KAFKA_CONSUMER_GROUP_ID" default:"sentiwatch-tickets"`
	KafkaTopicTickets  string `env:"KAFKA_TOPIC_TICKETS" default:"tickets.incoming"`
	KafkaTopicResults  string `env:"KAFKA_TOPIC_RESULTS" default:"tickets.analyzed"`
}

// Load decodes the configuration from the environment and validates it. Call
// LoadEnv first to pick up a .env file.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Sentiment returns the engine thresholds and weights.
func (c *Config) Sentiment() sentiment.Config {
	return sentiment.Config{
		Thresholds: sentiment.Thresholds{
			Polarity: c.PolarityThreshold,
			Valence:  c.ValenceThreshold,
			Combined: c.CombinedThreshold,
		},
		Weights: sentiment.Weights{
			Polarity: c.PolarityWeight,
			Valence:  c.ValenceWeight,
		},
	}
}

// Method returns the default analysis method.
func (c *Config) Method() sentiment.Method {
	m, err := sentiment.ParseMethod(c.SentimentMethod)
	if err != nil {
		return sentiment.MethodCombined
	}
	return m
}

// KafkaEnabled reports whether a broker is configured.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBroker != ""
}

// CacheEnabled reports whether a valkey address is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyAddress != ""
}

func validate(cfg *Config) error {
	if _, err := sentiment.ParseMethod(cfg.SentimentMethod); err != nil {
		return fmt.Errorf("SENTIMENT_METHOD: %w", err)
	}

	if err := cfg.Sentiment().Validate(); err != nil {
		return err
	}

	if cfg.DetectMinConfidence < 0 || cfg.DetectMinConfidence > 1 {
		return errors.New("DETECT_MIN_CONFIDENCE must be between 0 and 1")
	}

	switch cfg.TranslationProvider {
	case ProviderNone:
	case ProviderLibre:
		if cfg.TranslationURL == "" {
			return errors.New("TRANSLATION_URL is required when TRANSLATION_PROVIDER=libre")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required when TRANSLATION_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("TRANSLATION_PROVIDER must be one of none, libre, openai, got %q", cfg.TranslationProvider)
	}

	switch cfg.TicketStore {
	case StoreFile:
		if cfg.TicketsPath == "" {
			return errors.New("TICKETS_PATH is required when TICKET_STORE=file")
		}
	case StoreDynamoDB:
		if cfg.DynamoDBTable == "" {
			return errors.New("DYNAMODB_TABLE is required when TICKET_STORE=dynamodb")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when TICKET_STORE=postgres")
		}
	default:
		return fmt.Errorf("TICKET_STORE must be one of file, dynamodb, postgres, got %q", cfg.TicketStore)
	}

	if cfg.TranslationTimeout <= 0 {
		return errors.New("TRANSLATION_TIMEOUT must be positive")
	}

	return nil
}
