package analysis

import (
	"context"
	"sync"
	"time"

	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/metrics"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
)

// AttemptEvent describes one provider attempt.
type AttemptEvent struct {
	RequestID     string                 `json:"requestId,omitempty"`
	Provider      string                 `json:"provider"`
	Model         string                 `json:"model"`
	Status        analysis.AttemptStatus `json:"status"`
	DurationMs    int64                  `json:"durationMs"`
	Error         string                 `json:"error,omitempty"`
	PromptChars   int                    `json:"promptChars"`
	ResponseChars int                    `json:"responseChars"`
	Timestamp     time.Time              `json:"timestamp"`
}

// AttemptTracer observes provider attempts. Implementations must not block
// and must never fail the analysis.
type AttemptTracer interface {
	TraceAttempt(ctx context.Context, ev AttemptEvent)
}

// NopTracer discards events.
type NopTracer struct{}

func (NopTracer) TraceAttempt(context.Context, AttemptEvent) {}

// MultiTracer fans an event out to several tracers.
type MultiTracer []AttemptTracer

func (m MultiTracer) TraceAttempt(ctx context.Context, ev AttemptEvent) {
	for _, t := range m {
		t.TraceAttempt(ctx, ev)
	}
}

// LogTracer writes one structured line per attempt.
type LogTracer struct {
	log *logger.Logger
}

func NewLogTracer(log *logger.Logger) *LogTracer {
	return &LogTracer{log: log.With("component", "attempt_trace")}
}

func (t *LogTracer) TraceAttempt(_ context.Context, ev AttemptEvent) {
	kv := []interface{}{
		"request_id", ev.RequestID,
		"provider", ev.Provider,
		"model", ev.Model,
		"status", ev.Status,
		"duration_ms", ev.DurationMs,
		"prompt_chars", ev.PromptChars,
		"response_chars", ev.ResponseChars,
	}
	if ev.Error != "" {
		t.log.Warnw("provider attempt", append(kv, "error", ev.Error)...)
		return
	}
	t.log.Infow("provider attempt", kv...)
}

// BreadcrumbTracer leaves a breadcrumb on the error tracker so a later
// failure report shows which providers were tried.
type BreadcrumbTracer struct {
	tracker errors.Tracker
}

func NewBreadcrumbTracer(tracker errors.Tracker) *BreadcrumbTracer {
	return &BreadcrumbTracer{tracker: tracker}
}

func (t *BreadcrumbTracer) TraceAttempt(ctx context.Context, ev AttemptEvent) {
	level := errors.LevelInfo
	if ev.Status != analysis.AttemptSucceeded {
		level = errors.LevelWarning
	}
	t.tracker.AddBreadcrumb(ctx, "ai provider "+string(ev.Status), "ai", level, map[string]interface{}{
		"provider":    ev.Provider,
		"model":       ev.Model,
		"duration_ms": ev.DurationMs,
		"error":       ev.Error,
	})
}

// EventPublisher is satisfied by the Kafka producer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

// KafkaTracer publishes attempt events from a background goroutine.
// When the buffer is full events are dropped.
type KafkaTracer struct {
	pub   EventPublisher
	topic string
	log   *logger.Logger

	mu     sync.RWMutex
	closed bool
	events chan AttemptEvent
	done   chan struct{}
}

// NewKafkaTracer starts the publishing goroutine. Call Close to drain it.
func NewKafkaTracer(pub EventPublisher, topic string, buffer int) *KafkaTracer {
	if buffer <= 0 {
		buffer = 256
	}
	t := &KafkaTracer{
		pub:    pub,
		topic:  topic,
		log:    logger.Get().With("component", "kafka_attempt_tracer"),
		events: make(chan AttemptEvent, buffer),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *KafkaTracer) TraceAttempt(_ context.Context, ev AttemptEvent) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}

	select {
	case t.events <- ev:
	default:
		metrics.KafkaMessages.WithLabelValues(t.topic, "dropped").Inc()
	}
}

func (t *KafkaTracer) run() {
	defer close(t.done)
	for ev := range t.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		key := ev.RequestID
		if key == "" {
			key = ev.Provider
		}
		if err := t.pub.Publish(ctx, t.topic, key, ev); err != nil {
			t.log.Warnw("failed to publish attempt event", "provider", ev.Provider, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be published.
func (t *KafkaTracer) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	t.mu.Unlock()
	<-t.done
}
