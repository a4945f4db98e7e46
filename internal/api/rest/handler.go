package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"polyalpha/internal/adapters/polymarket"
	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	analysissvc "polyalpha/internal/services/analysis"
	"polyalpha/pkg/logger"
)

const (
	defaultCommentLimit = 100
	defaultMarketLimit  = 50
	defaultMaxBodyBytes = 5 << 20
)

// Analyzer runs the comment analysis pipeline.
type Analyzer interface {
	AnalyzeComments(ctx context.Context, raws []comment.Raw, opts analysis.Options) (*analysissvc.Output, error)
}

// MarketSource reads markets and comments from Polymarket.
type MarketSource interface {
	ResolveConditionID(ctx context.Context, marketID string) (string, error)
	FetchComments(ctx context.Context, conditionID string, limit, offset int) ([]json.RawMessage, error)
	ListMarkets(ctx context.Context, limit, offset int) ([]polymarket.Market, error)
	GetMarket(ctx context.Context, marketID string) (json.RawMessage, error)
}

// Handler serves the analysis and Polymarket proxy endpoints.
type Handler struct {
	analyzer     Analyzer
	markets      MarketSource
	log          *logger.Logger
	maxBodyBytes int64
}

// NewHandler creates the REST handler. maxBodyBytes <= 0 uses 5 MiB.
func NewHandler(analyzer Analyzer, markets MarketSource, log *logger.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{
		analyzer:     analyzer,
		markets:      markets,
		log:          log.With("component", "rest"),
		maxBodyBytes: maxBodyBytes,
	}
}

// Endpoints lists the public routes, in the form reported by the 404 body.
var Endpoints = []string{
	"GET /health",
	"GET /api/polymarket/markets",
	"GET /api/polymarket/comments/:marketId",
	"GET /api/polymarket/market/:marketId",
	"POST /api/analyze/comments",
	"POST /api/analyze/market/:marketId",
}

// Register mounts every route on mux, including the catch-all 404.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analyze/comments", h.AnalyzeComments)
	mux.HandleFunc("POST /api/analyze/market/{marketId}", h.AnalyzeMarket)
	mux.HandleFunc("GET /api/polymarket/comments/{marketId}", h.GetComments)
	mux.HandleFunc("GET /api/polymarket/markets", h.ListMarkets)
	mux.HandleFunc("GET /api/polymarket/market/{marketId}", h.GetMarket)
	mux.HandleFunc("/", NotFound)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, body{
		"success":            false,
		"error":              "Endpoint not found",
		"availableEndpoints": Endpoints,
	})
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
