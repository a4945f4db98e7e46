package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
)

type stubProvider struct {
	name       string
	configured bool
}

func (p stubProvider) Name() string     { return p.name }
func (p stubProvider) Configured() bool { return p.configured }

type stubCache struct{ err error }

func (c stubCache) Ping(context.Context) error { return c.err }

func newTestHandler(cache Pinger, providers ...Provider) *Handler {
	h := New(logger.NewNop(), Config{ServiceName: "polyalpha", Version: "test", Environment: "development"}, cache, providers...)
	h.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }
	return h
}

func serve(t *testing.T, fn http.HandlerFunc) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return rec.Code, status
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(nil, stubProvider{"claude", true}, stubProvider{"openai", false})

	code, status := serve(t, h.HandleHealth)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "2026-05-06T07:08:09Z", status.Timestamp)
	assert.Equal(t, "development", status.Environment)
	assert.Equal(t, map[string]bool{"claude": true, "openai": false}, status.Providers)
	assert.Empty(t, status.Checks)
}

func TestHandleHealthDegradedWhenCacheDown(t *testing.T) {
	h := newTestHandler(stubCache{err: errors.ErrUnavailable}, stubProvider{"claude", true})

	code, status := serve(t, h.HandleHealth)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Checks["cache"].Status)
}

func TestHandleHealthWithoutProviderKeys(t *testing.T) {
	h := newTestHandler(nil, stubProvider{"claude", false}, stubProvider{"openai", false})

	code, status := serve(t, h.HandleHealth)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)

	code, _ = serve(t, h.HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHandleReadiness(t *testing.T) {
	code, status := serve(t, newTestHandler(stubCache{}, stubProvider{"openai", true}).HandleReadiness)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Checks["cache"].Status)

	code, status = serve(t, newTestHandler(stubCache{err: errors.ErrTimeout}, stubProvider{"openai", true}).HandleReadiness)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Status)
	assert.NotEmpty(t, status.Checks["cache"].Error)
}

func TestHandleLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil).HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
