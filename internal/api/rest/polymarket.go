package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"polyalpha/internal/adapters/polymarket"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/requestid"
)

// GetComments handles GET /api/polymarket/comments/{marketId}.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultCommentLimit)
	offset := queryInt(r, "offset", 0)

	items, conditionID, ok := h.fetchComments(w, r, r.PathValue("marketId"), limit, offset)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success":  true,
		"data":     items,
		"count":    len(items),
		"marketId": conditionID,
	})
}

// fetchComments resolves marketID and loads its comments. When it returns
// false the response has already been written.
func (h *Handler) fetchComments(w http.ResponseWriter, r *http.Request, marketID string, limit, offset int) ([]json.RawMessage, string, bool) {
	ctx := r.Context()
	log := h.log.With("market_id", marketID, "request_id", requestid.FromContext(ctx))

	conditionID, err := h.markets.ResolveConditionID(ctx, marketID)
	if err != nil {
		log.Warnw("market lookup failed", "error", err)
		writeJSON(w, http.StatusNotFound, body{
			"success":      false,
			"error":        "Market not found",
			"message":      fmt.Sprintf("Could not find market %q. Please check the market slug or try the Browse Markets button.", marketID),
			"originalSlug": marketID,
			"suggestion":   "Use the Browse Markets button to see available markets with comments.",
		})
		return nil, "", false
	}

	items, err := h.markets.FetchComments(ctx, conditionID, limit, offset)
	if err != nil {
		log.Warnw("failed to fetch comments", "condition_id", conditionID, "error", err)
		h.commentsFailed(w, conditionID, err)
		return nil, "", false
	}

	log.Debugw("fetched comments", "condition_id", conditionID, "count", len(items))

	if len(items) == 0 {
		writeJSON(w, http.StatusOK, body{
			"success":  false,
			"error":    "No comments found",
			"message":  "This market exists but has no comments yet. Try a more active market with discussions.",
			"count":    0,
			"marketId": conditionID,
		})
		return nil, "", false
	}

	return items, conditionID, true
}

func (h *Handler) commentsFailed(w http.ResponseWriter, conditionID string, err error) {
	var upstream *polymarket.UpstreamError
	if !errors.As(err, &upstream) {
		resp := failure("Failed to fetch comments from Polymarket", err.Error())
		resp["details"] = nil
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	if upstream.StatusCode == http.StatusUnprocessableEntity {
		writeJSON(w, http.StatusUnprocessableEntity, body{
			"success":  false,
			"error":    "Cannot fetch comments",
			"message":  "This market may not have comments, or the market ID format is incorrect. Try browsing markets with the Browse button.",
			"marketId": conditionID,
		})
		return
	}

	resp := failure("Failed to fetch comments from Polymarket", err.Error())
	resp["details"] = upstream.Body
	writeJSON(w, upstreamStatus(err), resp)
}

// ListMarkets handles GET /api/polymarket/markets.
func (h *Handler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultMarketLimit)
	offset := queryInt(r, "offset", 0)

	markets, err := h.markets.ListMarkets(r.Context(), limit, offset)
	if err != nil {
		h.log.Warnw("failed to list markets", "error", err, "request_id", requestid.FromContext(r.Context()))
		writeJSON(w, upstreamStatus(err), failure("Failed to fetch markets", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success": true,
		"data":    markets,
		"count":   len(markets),
	})
}

// GetMarket handles GET /api/polymarket/market/{marketId}.
func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	market, err := h.markets.GetMarket(r.Context(), r.PathValue("marketId"))
	if err != nil {
		h.log.Warnw("failed to fetch market", "error", err, "request_id", requestid.FromContext(r.Context()))
		writeJSON(w, upstreamStatus(err), failure("Failed to fetch market data", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, body{
		"success": true,
		"data":    market,
	})
}

// upstreamStatus passes the gamma API status code through, 500 otherwise.
func upstreamStatus(err error) int {
	var upstream *polymarket.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode >= 400 {
		return upstream.StatusCode
	}
	return http.StatusInternalServerError
}
