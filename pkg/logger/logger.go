package logger

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"polyalpha/pkg/errors"
)

var global atomic.Pointer[Logger]

// Logger is a sugared zap logger that also reports errors to a Tracker.
type Logger struct {
	*zap.SugaredLogger
	errorTracker errors.Tracker
	tags         map[string]string
}

// Options configures the process-wide logger.
type Options struct {
	Level   string // zap level name; unknown values mean info
	Env     string // "production" selects JSON output
	Service string
	Version string
}

// Init builds the process-wide logger. Every entry carries service and version.
func Init(opts Options) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if opts.Env == "production" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))

	var fields []zap.Field
	if opts.Service != "" {
		fields = append(fields, zap.String("service", opts.Service))
	}
	if opts.Version != "" {
		fields = append(fields, zap.String("version", opts.Version))
	}

	base, err := cfg.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(fields...),
	)
	if err != nil {
		return errors.Wrap(err, "build zap logger")
	}

	global.Store(&Logger{SugaredLogger: base.Sugar()})
	return nil
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// SetErrorTracker attaches tracker to the process-wide logger.
// Children created afterwards inherit it.
func SetErrorTracker(tracker errors.Tracker) {
	l := *Get()
	l.errorTracker = tracker
	global.Store(&l)
}

// Get returns the process-wide logger, or a development logger before Init.
func Get() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	base, _ := zap.NewDevelopment()
	global.CompareAndSwap(nil, &Logger{SugaredLogger: base.Sugar()})
	return global.Load()
}

func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// With returns a child logger. A "component" field doubles as a tracker tag.
func (l *Logger) With(args ...interface{}) *Logger {
	tags := l.trackerTags()
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key == "component" {
			tags[key] = fmt.Sprint(args[i+1])
		}
	}
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		errorTracker:  l.errorTracker,
		tags:          tags,
	}
}

// Errorw logs and reports. The first error value among keysAndValues
// becomes the reported cause.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
	if l.errorTracker == nil {
		return
	}

	cause := errors.ErrInternal
	for _, v := range keysAndValues {
		if err, ok := v.(error); ok {
			cause = err
			break
		}
	}
	_ = l.errorTracker.CaptureError(context.Background(), errors.Wrap(cause, msg), l.trackerTags())
}

// ErrorWithContext logs err and reports it with the request scoped ctx.
func (l *Logger) ErrorWithContext(ctx context.Context, err error, tags map[string]string) {
	l.SugaredLogger.Errorw(err.Error(), "tags", tags)
	if l.errorTracker == nil {
		return
	}

	merged := l.trackerTags()
	for k, v := range tags {
		merged[k] = v
	}
	_ = l.errorTracker.CaptureError(ctx, err, merged)
}

func (l *Logger) trackerTags() map[string]string {
	tags := make(map[string]string, len(l.tags)+1)
	tags["component"] = "logger"
	for k, v := range l.tags {
		tags[k] = v
	}
	return tags
}

// Sync flushes the process-wide logger.
func Sync() error {
	if l := global.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
