package bootstrap

import (
	"context"
	"sync"
	"time"

	"polyalpha/internal/adapters/kafka"
	redisclient "polyalpha/internal/adapters/redis"
	"polyalpha/internal/api"
	analysissvc "polyalpha/internal/services/analysis"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
	httpTimeout     time.Duration
}

// NewLifecycle creates a new lifecycle manager. The HTTP drain window
// covers an in-flight analysis that falls back after a full primary timeout.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 150 * time.Second,
		httpTimeout:     130 * time.Second,
	}
}

// Shutdown performs coordinated cleanup in order:
// 1. Stop accepting requests and drain in-flight analyses
// 2. Flush queued attempt traces to Kafka, then close the producer
// 3. Flush the error tracker and logs
// 4. Close the cache last
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	attemptTracer *analysissvc.KafkaTracer,
	kafkaProducer *kafka.Producer,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/5] Stopping HTTP server...")
	httpCtx, httpCancel := context.WithTimeout(shutdownCtx, l.httpTimeout)
	defer httpCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Warnw("HTTP server shutdown failed", "error", err)
		}
	}
	l.waitForGoroutines(wg, 5*time.Second, log)

	log.Info("[2/5] Draining attempt traces...")
	if attemptTracer != nil {
		attemptTracer.Close()
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Warnw("Kafka producer close failed", "error", err)
		} else {
			log.Info("✓ Kafka producer closed")
		}
	}

	log.Info("[3/5] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)

	log.Info("[4/5] Syncing logs...")
	_ = logger.Sync()

	log.Info("[5/5] Closing cache...")
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Redis close failed", "error", err)
		} else {
			log.Info("✓ Redis closed")
		}
	}

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}
