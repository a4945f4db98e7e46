package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/requestid"
)

const (
	labelInvalidRequest  = "Invalid request: comments array is required"
	labelAnalysisFailed  = "Failed to analyze comments"
	messageNoProviders   = "Both Claude and OpenAI APIs unavailable"
	messageAnalysisRetry = "Analysis could not be completed. Please try again."
)

type analyzeCommentsRequest struct {
	Comments json.RawMessage   `json:"comments"`
	Options  *analysis.Options `json:"options"`
}

type analyzeMarketRequest struct {
	Options *analysis.Options `json:"options"`
	Limit   *int              `json:"limit"`
}

type analyzeResponse struct {
	Success  bool              `json:"success"`
	Data     analysis.Result   `json:"data"`
	Metadata analysis.Metadata `json:"metadata"`
	MarketID string            `json:"marketId,omitempty"`
}

// AnalyzeComments handles POST /api/analyze/comments.
func (h *Handler) AnalyzeComments(w http.ResponseWriter, r *http.Request) {
	var req analyzeCommentsRequest
	if err := h.decode(w, r, &req, false); err != nil {
		h.badRequest(w, r, err)
		return
	}

	raws, err := decodeComments(req.Comments)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.analyze(w, r, raws, optionsOrDefault(req.Options), "")
}

// AnalyzeMarket handles POST /api/analyze/market/{marketId}: it fetches the
// market's comments and runs the same pipeline as AnalyzeComments.
func (h *Handler) AnalyzeMarket(w http.ResponseWriter, r *http.Request) {
	var req analyzeMarketRequest
	if err := h.decode(w, r, &req, true); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request body", err.Error()))
		return
	}

	limit := defaultCommentLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}

	marketID := r.PathValue("marketId")
	items, conditionID, ok := h.fetchComments(w, r, marketID, limit, 0)
	if !ok {
		return
	}

	h.analyze(w, r, comment.FromJSON(items), optionsOrDefault(req.Options), conditionID)
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request, raws []comment.Raw, opts analysis.Options, marketID string) {
	// Provider calls outlive a disconnected client; each has its own timeout.
	ctx := context.WithoutCancel(r.Context())

	out, err := h.analyzer.AnalyzeComments(ctx, raws, opts)
	if err != nil {
		h.log.ErrorWithContext(r.Context(), errors.Wrap(err, "analyze comments"), map[string]string{
			"request_id": requestid.FromContext(r.Context()),
		})
		writeJSON(w, http.StatusInternalServerError, failure(labelAnalysisFailed, analysisFailureMessage(err)))
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:  true,
		Data:     out.Result,
		Metadata: out.Metadata,
		MarketID: marketID,
	})
}

// analysisFailureMessage is what the client sees; the wrapped detail is only logged.
func analysisFailureMessage(err error) string {
	if errors.Is(err, errors.ErrProvidersExhausted) {
		return messageNoProviders
	}
	return messageAnalysisRetry
}

// decode reads a JSON body under the size limit. With allowEmpty an
// empty body leaves dest untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dest)
	switch {
	case err == nil:
		return nil
	case allowEmpty && errors.Is(err, io.EOF):
		return nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.NewValidationError("body", "request body too large")
		}
		return errors.NewValidationError("body", "request body is not valid JSON: "+err.Error())
	}
}

func decodeComments(raw json.RawMessage) ([]comment.Raw, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.NewValidationError("comments", "comments is required")
	}
	if trimmed[0] != '[' {
		return nil, errors.NewValidationError("comments", "comments must be an array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.NewValidationError("comments", "comments must be an array")
	}
	return comment.FromJSON(items), nil
}

func optionsOrDefault(opts *analysis.Options) analysis.Options {
	if opts == nil {
		return analysis.DefaultOptions()
	}
	return *opts
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Debugw("rejected analysis request",
		"error", err,
		"request_id", requestid.FromContext(r.Context()),
	)

	var ve *errors.ValidationError
	message := err.Error()
	if errors.As(err, &ve) {
		message = ve.Message
	}
	writeJSON(w, http.StatusBadRequest, failure(labelInvalidRequest, message))
}
