package analysis

import (
	"context"
	"time"

	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	"polyalpha/internal/metrics"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/requestid"
)

// Completer is the orchestration step; *Orchestrator implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Output is a finished analysis.
type Output struct {
	Result   analysis.Result
	Metadata analysis.Metadata
}

// Service runs normalize → prompt → complete → parse for one request.
type Service struct {
	prompts   *PromptBuilder
	completer Completer
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates the analysis service
func NewService(prompts *PromptBuilder, completer Completer) *Service {
	return &Service{
		prompts:   prompts,
		completer: completer,
		log:       logger.Get().With("component", "comment_analysis"),
		now:       time.Now,
	}
}

// AnalyzeComments analyzes raws. The only error it returns is provider
// exhaustion (*ExhaustedError) or a prompt rendering failure; unusable
// model output is recovered into analysis.UnparsedResult.
func (s *Service) AnalyzeComments(ctx context.Context, raws []comment.Raw, opts analysis.Options) (*Output, error) {
	normalized := comment.NormalizeAll(raws, opts.FilterHolders)
	holders := comment.CountHolders(normalized)

	log := s.log.With("request_id", requestid.FromContext(ctx))
	log.Infow("analyzing comments",
		"received", len(raws),
		"analyzed", len(normalized),
		"holders", holders,
		"filter_holders", opts.FilterHolders,
	)

	prompt, err := s.prompts.Build(normalized, opts)
	if err != nil {
		return nil, err
	}

	metrics.CommentsAnalyzed.Observe(float64(len(normalized)))

	completion, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.AnalysesFailed.Inc()
		return nil, err
	}
	if completion.UsedFallback() {
		metrics.ProviderFallbacks.Inc()
	}

	result, ok := ParseResponse(completion.Text)
	if !ok {
		metrics.ResponseParseFailures.WithLabelValues(completion.Provider).Inc()
		log.Warnw("failed to parse AI response",
			"provider", completion.Provider,
			"raw_content", completion.Text,
		)
	}

	return &Output{
		Result: result,
		Metadata: analysis.Metadata{
			CommentsAnalyzed: len(normalized),
			CommentsReceived: len(raws),
			HoldersAnalyzed:  holders,
			AIProvider:       completion.Provider,
			Timestamp:        s.now().UTC(),
			Attempts:         completion.Attempts,
		},
	}, nil
}
