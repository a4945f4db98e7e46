package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"polyalpha/internal/adapters/ai"
	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/metrics"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/requestid"
)

// Completion is the tagged outcome of a successful orchestration.
type Completion struct {
	Provider string
	Model    string
	Text     string
	Attempts []analysis.Attempt
}

// UsedFallback reports whether the answer came from a later provider.
func (c *Completion) UsedFallback() bool {
	return len(c.Attempts) > 1
}

// ExhaustedError is returned when no provider produced text.
// It unwraps to errors.ErrProvidersExhausted and to every attempt's cause.
type ExhaustedError struct {
	Attempts []analysis.Attempt
	causes   errors.MultiError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Error))
	}
	return fmt.Sprintf("%v (%s)", errors.ErrProvidersExhausted, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() []error {
	return append([]error{errors.ErrProvidersExhausted}, e.causes.Errors...)
}

// Orchestrator tries the primary provider and falls back to the secondary
// one on any failure, provided the secondary has credentials.
type Orchestrator struct {
	primary     ai.TextProvider
	fallback    ai.TextProvider
	callTimeout time.Duration
	tracer      AttemptTracer
	log         *logger.Logger
}

// NewOrchestrator creates an orchestrator. Each provider call is bounded by
// callTimeout independently. tracer may be nil.
func NewOrchestrator(primary, fallback ai.TextProvider, callTimeout time.Duration, tracer AttemptTracer) *Orchestrator {
	if callTimeout <= 0 {
		callTimeout = ai.DefaultTimeout
	}
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Orchestrator{
		primary:     primary,
		fallback:    fallback,
		callTimeout: callTimeout,
		tracer:      tracer,
		log:         logger.Get().With("component", "ai_orchestrator"),
	}
}

// Complete sends the identical prompt to primary, then fallback.
func (o *Orchestrator) Complete(ctx context.Context, prompt string) (*Completion, error) {
	exhausted := &ExhaustedError{}

	for i, provider := range []ai.TextProvider{o.primary, o.fallback} {
		if i > 0 {
			if provider.Configured() {
				o.log.Warnw("primary provider failed, trying fallback",
					"request_id", requestid.FromContext(ctx),
					"primary", o.primary.Name(),
					"fallback", provider.Name(),
				)
			} else {
				o.log.Warnw("primary provider failed, no fallback configured",
					"request_id", requestid.FromContext(ctx),
					"primary", o.primary.Name(),
					"fallback", provider.Name(),
				)
			}
		}

		text, attempt, err := o.attempt(ctx, provider, prompt)
		exhausted.Attempts = append(exhausted.Attempts, attempt)
		if err == nil {
			return &Completion{
				Provider: provider.Name(),
				Model:    provider.Model(),
				Text:     text,
				Attempts: exhausted.Attempts,
			}, nil
		}
		exhausted.causes.Add(err)
	}

	return nil, exhausted
}

func (o *Orchestrator) attempt(ctx context.Context, provider ai.TextProvider, prompt string) (string, analysis.Attempt, error) {
	attempt := analysis.Attempt{Provider: provider.Name()}

	if !provider.Configured() {
		err := errors.Wrapf(errors.ErrProviderNotConfigured, "%s", provider.Name())
		attempt.Status = analysis.AttemptSkipped
		attempt.Error = err.Error()
		o.trace(ctx, provider, attempt, len(prompt), 0)
		return "", attempt, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	start := time.Now()
	text, err := provider.Complete(callCtx, prompt)
	elapsed := time.Since(start)
	attempt.DurationMs = elapsed.Milliseconds()

	if err != nil {
		attempt.Status = analysis.AttemptFailed
		attempt.Error = err.Error()
	} else {
		attempt.Status = analysis.AttemptSucceeded
	}

	o.trace(ctx, provider, attempt, len(prompt), len(text))
	return text, attempt, err
}

func (o *Orchestrator) trace(ctx context.Context, provider ai.TextProvider, a analysis.Attempt, promptChars, responseChars int) {
	metrics.RecordProviderAttempt(a.Provider, string(a.Status), time.Duration(a.DurationMs)*time.Millisecond)

	o.tracer.TraceAttempt(ctx, AttemptEvent{
		RequestID:     requestid.FromContext(ctx),
		Provider:      a.Provider,
		Model:         provider.Model(),
		Status:        a.Status,
		DurationMs:    a.DurationMs,
		Error:         a.Error,
		PromptChars:   promptChars,
		ResponseChars: responseChars,
		Timestamp:     time.Now().UTC(),
	})
}
