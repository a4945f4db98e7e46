package ai

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"polyalpha/pkg/errors"
)

// TextProvider turns a single user prompt into raw model text.
// Implementations must be safe for concurrent use.
type TextProvider interface {
	// Name is the identifier reported back to clients ("claude", "openai").
	Name() string

	// Model is the provider-specific model id used for completions.
	Model() string

	// Configured reports whether an API key is present.
	Configured() bool

	// Complete sends prompt as the only user message and returns the text answer.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options are the generation settings shared by every provider.
type Options struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration

	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

func (o Options) withDefaults(model, baseURL string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	return o
}

// classifyTransportErr maps context and transport failures onto sentinels.
func classifyTransportErr(provider ProviderName, err error) error {
	switch {
	case isTimeout(err):
		return errors.Wrapf(errors.ErrTimeout, "%s request: %v", provider, err)
	case errors.Is(err, context.Canceled):
		return errors.Wrapf(err, "%s request canceled", provider)
	default:
		return errors.Wrapf(errors.ErrUnavailable, "%s request: %v", provider, err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
