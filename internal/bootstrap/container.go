package bootstrap

import (
	"context"
	"sync"

	"polyalpha/internal/adapters/ai"
	"polyalpha/internal/adapters/config"
	"polyalpha/internal/adapters/kafka"
	"polyalpha/internal/adapters/polymarket"
	redisclient "polyalpha/internal/adapters/redis"
	"polyalpha/internal/api"
	"polyalpha/internal/api/health"
	"polyalpha/internal/api/rest"
	analysissvc "polyalpha/internal/services/analysis"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/templates"
)

// Container wires the analysis backend. Fields appear in the order
// MustInit fills them.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	Redis *redisclient.Client

	Adapters    *Adapters
	Services    *Services
	Application *Application

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters are the clients for AI providers, Polymarket and Kafka.
type Adapters struct {
	KafkaProducer *kafka.Producer // nil without brokers
	Providers     ai.Providers
	Polymarket    *polymarket.Client
}

// Services groups the analysis pipeline
type Services struct {
	Templates     *templates.Registry
	Orchestrator  *analysissvc.Orchestrator
	AttemptTracer *analysissvc.KafkaTracer // nil without brokers
	Analysis      *analysissvc.Service
}

// Application is the HTTP surface.
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	RESTHandler   *rest.Handler
}

func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Adapters:    &Adapters{},
		Services:    &Services{},
		Application: &Application{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit builds every component. A missing prerequisite aborts startup.
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitApplication()
}

// Start serves HTTP in the background. A serve failure cancels c.Context.
func (c *Container) Start() error {

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorw("HTTP server failed", "error", err)
			c.Cancel()
		}
	}()

	c.Log.Infow("Analysis backend listening",
		"addr", c.Config.HTTP.Addr(),
		"claude", c.Adapters.Providers.Primary.Configured(),
		"openai", c.Adapters.Providers.Fallback.Configured(),
	)
	return nil
}

func (c *Container) Shutdown() {
	c.Log.Info("Shutting down analysis backend")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.Services.AttemptTracer,
		c.Adapters.KafkaProducer,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}
