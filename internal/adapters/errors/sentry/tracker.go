package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"polyalpha/pkg/errors"
	"polyalpha/pkg/requestid"
)

const flushTimeout = 2 * time.Second

var levels = map[errors.Level]sentry.Level{
	errors.LevelDebug:   sentry.LevelDebug,
	errors.LevelInfo:    sentry.LevelInfo,
	errors.LevelWarning: sentry.LevelWarning,
	errors.LevelError:   sentry.LevelError,
	errors.LevelFatal:   sentry.LevelFatal,
}

// Tracker reports analysis failures and provider breadcrumbs to Sentry.
type Tracker struct {
	hub *sentry.Hub
}

func New(dsn, environment, release string) (*Tracker, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return nil, errors.Wrap(err, "init sentry")
	}
	return &Tracker{hub: sentry.CurrentHub()}, nil
}

// scoped clones the hub so per-event tags never leak between requests.
func (t *Tracker) scoped(ctx context.Context, tags map[string]string, configure func(*sentry.Scope)) *sentry.Hub {
	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if id := requestid.FromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		if configure != nil {
			configure(scope)
		}
	})
	return hub
}

func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	t.scoped(ctx, tags, nil).CaptureException(err)
	return nil
}

func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	t.scoped(ctx, tags, func(scope *sentry.Scope) {
		scope.SetLevel(convertLevel(level))
	}).CaptureMessage(message)
	return nil
}

// AddBreadcrumb goes on the shared hub so the next captured error carries it.
func (t *Tracker) AddBreadcrumb(_ context.Context, message, category string, level errors.Level, data map[string]interface{}) {
	t.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Message:  message,
		Category: category,
		Level:    convertLevel(level),
		Data:     data,
	}, nil)
}

// Flush waits for queued events, bounded by ctx and flushTimeout.
func (t *Tracker) Flush(ctx context.Context) error {
	timeout := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if !sentry.Flush(timeout) {
		return errors.Wrap(errors.ErrTimeout, "sentry flush")
	}
	return nil
}

func convertLevel(level errors.Level) sentry.Level {
	if l, ok := levels[level]; ok {
		return l
	}
	return sentry.LevelInfo
}
