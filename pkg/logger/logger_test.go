package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"polyalpha/pkg/errors"
)

type captured struct {
	err  error
	tags map[string]string
}

type fakeTracker struct {
	errs []captured
}

func (f *fakeTracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	f.errs = append(f.errs, captured{err: err, tags: tags})
	return nil
}

func (f *fakeTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (f *fakeTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (f *fakeTracker) Flush(context.Context) error { return nil }

func TestErrorwForwardsCauseToTracker(t *testing.T) {
	tracker := &fakeTracker{}
	l := NewNop()
	l.errorTracker = tracker

	child := l.With("component", "analysis")
	child.Errorw("analysis failed", "error", errors.ErrProvidersExhausted, "comments", 3)

	require.Len(t, tracker.errs, 1)
	assert.True(t, errors.Is(tracker.errs[0].err, errors.ErrProvidersExhausted))
	assert.Equal(t, "analysis", tracker.errs[0].tags["component"])
}

func TestErrorwWithoutCause(t *testing.T) {
	tracker := &fakeTracker{}
	l := NewNop()
	l.errorTracker = tracker

	l.Errorw("something odd")

	require.Len(t, tracker.errs, 1)
	assert.True(t, errors.Is(tracker.errs[0].err, errors.ErrInternal))
	assert.Equal(t, "logger", tracker.errs[0].tags["component"])
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	require.NoError(t, Init(Options{Level: "not-a-level", Env: "development", Service: "polyalpha"}))
	assert.True(t, Get().Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Get().Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInitHonoursLevel(t *testing.T) {
	require.NoError(t, Init(Options{Level: "warn", Env: "production"}))
	assert.False(t, Get().Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestSetErrorTrackerKeepsBaseLogger(t *testing.T) {
	require.NoError(t, Init(Options{Level: "info"}))
	before := Get().SugaredLogger

	tracker := &fakeTracker{}
	SetErrorTracker(tracker)
	t.Cleanup(func() { SetErrorTracker(nil) })

	assert.Same(t, before, Get().SugaredLogger)
	Get().With("component", "rest").Errorw("boom", "error", errors.ErrExternal)
	require.Len(t, tracker.errs, 1)
	assert.Equal(t, "rest", tracker.errs[0].tags["component"])
}
