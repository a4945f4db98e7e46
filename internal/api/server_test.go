package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyalpha/internal/adapters/polymarket"
	"polyalpha/internal/api/health"
	"polyalpha/internal/api/rest"
	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	"polyalpha/internal/metrics"
	analysissvc "polyalpha/internal/services/analysis"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/requestid"
)

type panickingAnalyzer struct{}

func (panickingAnalyzer) AnalyzeComments(context.Context, []comment.Raw, analysis.Options) (*analysissvc.Output, error) {
	panic("analyzer exploded")
}

type noMarkets struct{}

func (noMarkets) ResolveConditionID(_ context.Context, id string) (string, error) { return id, nil }
func (noMarkets) FetchComments(context.Context, string, int, int) ([]json.RawMessage, error) {
	return nil, nil
}
func (noMarkets) ListMarkets(context.Context, int, int) ([]polymarket.Market, error) { return nil, nil }
func (noMarkets) GetMarket(context.Context, string) (json.RawMessage, error)          { return nil, nil }

type keyed struct{ name string }

func (k keyed) Name() string     { return k.name }
func (k keyed) Configured() bool { return true }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	metrics.Init()

	log := logger.NewNop()
	hh := health.New(log, health.Config{ServiceName: "polyalpha", Environment: "test"}, nil, keyed{"claude"}, keyed{"openai"})
	rh := rest.NewHandler(panickingAnalyzer{}, noMarkets{}, log, 0)

	return NewServer(ServerConfig{AllowedOrigin: "*"}, hh, rh, log).Handler()
}

func TestServerHealthCarriesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"claude": true, "openai": true}, body["providers"])
}

func TestServerRecoversPanics(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/comments", strings.NewReader(`{"comments": []}`))
	newTestServer(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
}

func TestServerPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/analyze/comments", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServerMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/live", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "polyalpha_http_requests_total")
}
