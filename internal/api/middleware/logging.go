package middleware

import (
	"net/http"
	"time"

	"polyalpha/internal/metrics"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/requestid"
)

// LoggingMiddleware writes one access log line and the HTTP metrics per request
type LoggingMiddleware struct {
	log *logger.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(log *logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		log: log.With("component", "http"),
	}
}

// Handler wraps next
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, r.Method, wrapped.statusCode, duration)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
			"bytes", wrapped.written,
			"request_id", requestid.FromContext(r.Context()),
		}
		if wrapped.statusCode >= http.StatusInternalServerError {
			m.log.Warnw("HTTP request failed", fields...)
			return
		}
		m.log.Infow("HTTP request", fields...)
	})
}

// statusRecorder captures the status code and body size
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	written     int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
