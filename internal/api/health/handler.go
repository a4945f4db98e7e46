package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"polyalpha/pkg/logger"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Pinger is a dependency with a connectivity check (the Redis cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider reports whether an AI provider has credentials.
type Provider interface {
	Name() string
	Configured() bool
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	cache       Pinger
	providers   []Provider
	startTime   time.Time
	serviceName string
	version     string
	environment string
	now         func() time.Time
}

// Config describes the service for health responses.
type Config struct {
	ServiceName string
	Version     string
	Environment string
}

// New creates a new health check handler. cache may be nil when no
// cache is configured.
func New(log *logger.Logger, cfg Config, cache Pinger, providers ...Provider) *Handler {
	return &Handler{
		log:         log.With("component", "health"),
		cache:       cache,
		providers:   providers,
		startTime:   time.Now(),
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		environment: cfg.Environment,
		now:         time.Now,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp   string                     `json:"timestamp"`
	Environment string                     `json:"environment"`
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Uptime      string                     `json:"uptime"`
	Providers   map[string]bool            `json:"providers"`
	Checks      map[string]ComponentHealth `json:"checks,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic: at least
// one AI provider is configured and the cache, if any, answers.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.snapshot()
	status.Checks = h.checks(ctx)

	ready := status.Checks["cache"].Status != statusUnhealthy && h.anyProviderConfigured()

	statusCode := http.StatusOK
	if !ready {
		status.Status = statusUnhealthy
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", status.Checks, "providers", status.Providers)
	}

	writeStatus(w, statusCode, status)
}

// HandleHealth always answers 200 while the process runs; a failing
// cache only degrades the status. Provider credentials are reported,
// not judged here; readiness does that.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := h.snapshot()
	status.Checks = h.checks(ctx)

	if status.Checks["cache"].Status == statusUnhealthy {
		status.Status = statusDegraded
	}

	writeStatus(w, http.StatusOK, status)
}

func (h *Handler) snapshot() HealthStatus {
	providers := make(map[string]bool, len(h.providers))
	for _, p := range h.providers {
		providers[p.Name()] = p.Configured()
	}

	return HealthStatus{
		Status:      statusHealthy,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Environment: h.environment,
		Service:     h.serviceName,
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Providers:   providers,
	}
}

func (h *Handler) checks(ctx context.Context) map[string]ComponentHealth {
	if h.cache == nil {
		return nil
	}
	return map[string]ComponentHealth{"cache": h.checkCache(ctx)}
}

func (h *Handler) anyProviderConfigured() bool {
	for _, p := range h.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

// checkCache verifies Redis connectivity
func (h *Handler) checkCache(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := h.cache.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Warnw("Cache health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       statusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       statusHealthy,
		ResponseTime: elapsed.String(),
	}
}

func writeStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
