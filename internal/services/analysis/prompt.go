package analysis

import (
	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/templates"
)

// PromptTemplateID is the registry id of the comment analysis prompt.
const PromptTemplateID = "prompts/comment_analysis"

// Requirement lines, in the order they appear in the prompt.
const (
	RequirementSentiment  = "Perform sentiment analysis (bullish/bearish/neutral) for each comment"
	RequirementDivergence = "Detect divergence between large position holders and smaller traders"
	RequirementInsiders   = "Identify potential insider information or unique alpha signals"
	RequirementAlphaScore = `Assign an "alpha score" (1-10) to each comment based on information value`
	RequirementInsights   = "Extract key insights and trading implications"
)

// PromptBuilder renders the analysis prompt. Rendering is deterministic:
// equal inputs always give byte-identical prompts.
type PromptBuilder struct {
	templates *templates.Registry
}

// NewPromptBuilder uses reg, or the embedded templates when reg is nil.
func NewPromptBuilder(reg *templates.Registry) *PromptBuilder {
	if reg == nil {
		reg = templates.Get()
	}
	return &PromptBuilder{templates: reg}
}

type promptData struct {
	Total        int
	Comments     []comment.Normalized
	Requirements []string
}

// Build renders the prompt for already normalized (and filtered) comments.
func (b *PromptBuilder) Build(comments []comment.Normalized, opts analysis.Options) (string, error) {
	if comments == nil {
		comments = []comment.Normalized{}
	}

	prompt, err := b.templates.Render(PromptTemplateID, promptData{
		Total:        len(comments),
		Comments:     comments,
		Requirements: Requirements(opts),
	})
	if err != nil {
		return "", errors.Wrap(err, "build analysis prompt")
	}
	return prompt, nil
}

// Requirements lists the enabled requirement lines. Disabled ones are
// omitted entirely; the alpha score and insights lines are always present.
func Requirements(opts analysis.Options) []string {
	reqs := make([]string, 0, 5)
	if opts.AnalyzeSentiment {
		reqs = append(reqs, RequirementSentiment)
	}
	if opts.DetectDivergence {
		reqs = append(reqs, RequirementDivergence)
	}
	if opts.FindInsiders {
		reqs = append(reqs, RequirementInsiders)
	}
	return append(reqs, RequirementAlphaScore, RequirementInsights)
}
