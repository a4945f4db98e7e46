package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"polyalpha/pkg/logger"
)

// ProviderState reports whether an AI provider has credentials.
type ProviderState interface {
	Name() string
	Configured() bool
}

// Pinger is anything with a health check, e.g. the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CustomCollector exposes configuration-derived gauges at scrape time
type CustomCollector struct {
	log       *logger.Logger
	providers []ProviderState
	cache     Pinger

	providerConfigured *prometheus.Desc
	cacheUp            *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector. cache may be nil.
func NewCustomCollector(log *logger.Logger, providers []ProviderState, cache Pinger) *CustomCollector {
	return &CustomCollector{
		log:       log,
		providers: providers,
		cache:     cache,

		providerConfigured: prometheus.NewDesc(
			"polyalpha_ai_provider_configured",
			"Whether the AI provider has an API key (1) or not (0)",
			[]string{"provider"}, nil,
		),
		cacheUp: prometheus.NewDesc(
			"polyalpha_cache_up",
			"Whether the upstream cache answered a ping",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.providerConfigured
	ch <- c.cacheUp
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.providers {
		v := 0.0
		if p.Configured() {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.providerConfigured, prometheus.GaugeValue, v, p.Name())
	}

	if c.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	up := 1.0
	if err := c.cache.Ping(ctx); err != nil {
		c.log.Debugw("cache ping failed during scrape", "error", err)
		up = 0
	}
	ch <- prometheus.MustNewConstMetric(c.cacheUp, prometheus.GaugeValue, up)
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
