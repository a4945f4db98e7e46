package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"polyalpha/internal/services/analysis"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
)

type countingTracker struct {
	flushed int
}

func (c *countingTracker) CaptureError(context.Context, error, map[string]string) error { return nil }
func (c *countingTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}
func (c *countingTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}
func (c *countingTracker) Flush(context.Context) error {
	c.flushed++
	return nil
}

type slowPublisher struct {
	mu        sync.Mutex
	published int
}

func (p *slowPublisher) Publish(context.Context, string, string, interface{}) error {
	time.Sleep(5 * time.Millisecond)
	p.mu.Lock()
	p.published++
	p.mu.Unlock()
	return nil
}

func TestShutdownWithOptionalComponentsMissing(t *testing.T) {
	tracker := &countingTracker{}

	assert.NotPanics(t, func() {
		NewLifecycle().Shutdown(&sync.WaitGroup{}, nil, nil, nil, nil, tracker, logger.NewNop())
	})
	assert.Equal(t, 1, tracker.flushed)
}

func TestShutdownDrainsAttemptTraces(t *testing.T) {
	pub := &slowPublisher{}
	tracer := analysis.NewKafkaTracer(pub, "analysis.provider_attempts", 8)
	for i := 0; i < 3; i++ {
		tracer.TraceAttempt(context.Background(), analysis.AttemptEvent{Provider: "claude"})
	}

	NewLifecycle().Shutdown(&sync.WaitGroup{}, nil, tracer, nil, nil, nil, logger.NewNop())

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, 3, pub.published)
}
