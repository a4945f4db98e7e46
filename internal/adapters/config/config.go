package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"polyalpha/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	AI            AIConfig
	Polymarket    PolymarketConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"polyalpha"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port         int           `envconfig:"PORT" default:"3000"`
	FrontendURL  string        `envconfig:"FRONTEND_URL"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"150s"` // covers both provider ceilings
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	MaxBodyBytes int64         `envconfig:"HTTP_MAX_BODY_BYTES" default:"5242880"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigin is the CORS origin; "*" when no frontend is pinned.
func (c HTTPConfig) AllowedOrigin() string {
	if c.FrontendURL == "" {
		return "*"
	}
	return c.FrontendURL
}

type AIConfig struct {
	ClaudeKey     string        `envconfig:"ANTHROPIC_API_KEY"`
	ClaudeModel   string        `envconfig:"CLAUDE_MODEL" default:"claude-3-5-sonnet-20241022"`
	ClaudeBaseURL string        `envconfig:"CLAUDE_BASE_URL" default:"https://api.anthropic.com"`
	OpenAIKey     string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4-turbo-preview"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	MaxTokens     int           `envconfig:"AI_MAX_TOKENS" default:"4096"`
	Temperature   float64       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	CallTimeout   time.Duration `envconfig:"AI_CALL_TIMEOUT" default:"60s"`
	// PromptDir overrides the embedded prompt templates when set.
	PromptDir string `envconfig:"PROMPT_TEMPLATES_DIR"`
}

type PolymarketConfig struct {
	BaseURL        string        `envconfig:"POLYMARKET_API_URL" default:"https://gamma-api.polymarket.com"`
	Timeout        time.Duration `envconfig:"POLYMARKET_TIMEOUT" default:"10s"`
	UserAgent      string        `envconfig:"POLYMARKET_USER_AGENT" default:"PolymarketAnalyzer/1.0"`
	SlugCacheTTL   time.Duration `envconfig:"POLYMARKET_SLUG_CACHE_TTL" default:"1h"`
	MarketCacheTTL time.Duration `envconfig:"POLYMARKET_MARKET_CACHE_TTL" default:"1m"`
	MinVolume      float64       `envconfig:"POLYMARKET_MIN_VOLUME" default:"1000"`
}

// RedisConfig is optional; an empty host disables the upstream cache.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig is optional; without brokers attempt traces only go to the log.
type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	TraceTopic string   `envconfig:"KAFKA_TRACE_TOPIC" default:"analysis.provider_attempts"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AI.CallTimeout <= 0 {
		return errors.NewValidationError("AI_CALL_TIMEOUT", "must be positive")
	}
	if c.AI.MaxTokens <= 0 {
		return errors.NewValidationError("AI_MAX_TOKENS", "must be positive")
	}
	if c.Polymarket.Timeout <= 0 {
		return errors.NewValidationError("POLYMARKET_TIMEOUT", "must be positive")
	}
	return nil
}
