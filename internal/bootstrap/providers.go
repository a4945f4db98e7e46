package bootstrap

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"polyalpha/internal/adapters/ai"
	"polyalpha/internal/adapters/config"
	errnoop "polyalpha/internal/adapters/errors/noop"
	"polyalpha/internal/adapters/errors/sentry"
	"polyalpha/internal/adapters/kafka"
	"polyalpha/internal/adapters/polymarket"
	redisclient "polyalpha/internal/adapters/redis"
	"polyalpha/internal/api"
	"polyalpha/internal/api/health"
	"polyalpha/internal/api/rest"
	"polyalpha/internal/metrics"
	analysissvc "polyalpha/internal/services/analysis"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/templates"
)

const attemptTraceBuffer = 512

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	// Initialize logger
	if err := logger.Init(logger.Options{
		Level:   cfg.App.LogLevel,
		Env:     cfg.App.Env,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	// Initialize error tracker
	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the optional Redis cache. A cache that
// cannot be reached is logged and skipped; upstream calls then go uncached.
func (c *Container) MustInitInfrastructure() {
	c.Redis = provideRedis(c.Context, c.Config.Redis, c.Log)
}

// ========================================
// Phase 3: External Adapters
// ========================================

// MustInitAdapters builds the AI providers, Polymarket client and Kafka producer
func (c *Container) MustInitAdapters() {
	c.Adapters.Providers = ai.BuildProviders(c.Config.AI)
	for _, p := range c.Adapters.Providers.All() {
		if p.Configured() {
			c.Log.Infow("AI provider configured", "provider", p.Name(), "model", p.Model())
		} else {
			c.Log.Warnw("AI provider missing API key", "provider", p.Name())
		}
	}
	if !c.Adapters.Providers.AnyConfigured() {
		c.Log.Warn("No AI provider configured, analysis requests will fail")
	}

	var cache polymarket.Cache
	if c.Redis != nil {
		cache = c.Redis
	}
	c.Adapters.Polymarket = polymarket.NewClient(c.Config.Polymarket, cache)

	c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
}

// ========================================
// Phase 4: Services
// ========================================

// MustInitServices wires the prompt builder, orchestrator and analysis service
func (c *Container) MustInitServices() {
	reg, err := provideTemplates(c.Config.AI.PromptDir, c.Log)
	if err != nil {
		c.Log.Fatalf("failed to load prompt templates: %v", err)
	}
	c.Services.Templates = reg

	tracers := analysissvc.MultiTracer{
		analysissvc.NewLogTracer(c.Log),
		analysissvc.NewBreadcrumbTracer(c.ErrorTracker),
	}
	if c.Adapters.KafkaProducer != nil {
		c.Services.AttemptTracer = analysissvc.NewKafkaTracer(c.Adapters.KafkaProducer, c.Config.Kafka.TraceTopic, attemptTraceBuffer)
		tracers = append(tracers, c.Services.AttemptTracer)
	}

	c.Services.Orchestrator = analysissvc.NewOrchestrator(
		c.Adapters.Providers.Primary,
		c.Adapters.Providers.Fallback,
		c.Config.AI.CallTimeout,
		tracers,
	)

	c.Services.Analysis = analysissvc.NewService(analysissvc.NewPromptBuilder(reg), c.Services.Orchestrator)
	c.Log.Info("✓ Analysis service initialized")
}

// ========================================
// Phase 5: Application Layer
// ========================================

// MustInitApplication builds HTTP handlers, the server and scrape-time metrics
func (c *Container) MustInitApplication() {
	var pinger health.Pinger
	var metricsPinger metrics.Pinger
	if c.Redis != nil {
		pinger = c.Redis
		metricsPinger = c.Redis
	}

	providers := c.Adapters.Providers.All()
	healthProviders := make([]health.Provider, 0, len(providers))
	metricProviders := make([]metrics.ProviderState, 0, len(providers))
	for _, p := range providers {
		healthProviders = append(healthProviders, p)
		metricProviders = append(metricProviders, p)
	}

	c.Application.HealthHandler = health.New(c.Log, health.Config{
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
		Environment: c.Config.App.Env,
	}, pinger, healthProviders...)

	c.Application.RESTHandler = rest.NewHandler(
		c.Services.Analysis,
		c.Adapters.Polymarket,
		c.Log,
		c.Config.HTTP.MaxBodyBytes,
	)

	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, metricProviders, metricsPinger))

	c.Application.HTTPServer = provideHTTPServer(c.Config, c.Application.HealthHandler, c.Application.RESTHandler, c.Log)
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redisclient.Client {
	if !cfg.Enabled() {
		log.Info("Redis not configured, upstream cache disabled")
		return nil
	}

	log.Info("Connecting to Redis...")
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := redisclient.NewClient(connectCtx, cfg)
	if err != nil {
		log.Warnw("Redis unavailable, continuing without cache", "addr", cfg.Addr(), "error", err)
		return nil
	}

	log.Info("✓ Redis connected")
	return client
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if !cfg.Kafka.Enabled() {
		log.Info("Kafka brokers not configured, attempt traces stay in the log")
		return nil
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Async:   true,
	})
	log.Infow("✓ Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.TraceTopic)
	return producer
}

func provideTemplates(dir string, log *logger.Logger) (*templates.Registry, error) {
	if dir == "" {
		return templates.Get(), nil
	}

	reg, err := templates.NewRegistry(dir)
	if err != nil {
		return nil, err
	}
	if err := reg.Require(analysissvc.PromptTemplateID); err != nil {
		return nil, err
	}
	log.Infow("Loaded prompt templates from disk", "dir", dir, "templates", reg.List())
	return reg, nil
}

func provideHTTPServer(
	cfg *config.Config,
	healthHandler *health.Handler,
	restHandler *rest.Handler,
	log *logger.Logger,
) *api.Server {
	log.Infow("HTTP limits",
		"max_body", humanize.IBytes(uint64(cfg.HTTP.MaxBodyBytes)),
		"write_timeout", cfg.HTTP.WriteTimeout,
		"cors_origin", cfg.HTTP.AllowedOrigin(),
	)

	return api.NewServer(api.ServerConfig{
		Addr:          cfg.HTTP.Addr(),
		AllowedOrigin: cfg.HTTP.AllowedOrigin(),
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		IdleTimeout:   cfg.HTTP.IdleTimeout,
	}, healthHandler, restHandler, log)
}
