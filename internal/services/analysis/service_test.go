package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyalpha/internal/domain/analysis"
	"polyalpha/internal/domain/comment"
	"polyalpha/pkg/errors"
)

type fakeCompleter struct {
	completion *Completion
	err        error
	prompt     string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (*Completion, error) {
	f.prompt = prompt
	return f.completion, f.err
}

func rawComments(t *testing.T) []comment.Raw {
	t.Helper()
	var raws []comment.Raw
	require.NoError(t, json.Unmarshal([]byte(`[
		{"body": "buying more yes", "profile": {"pseudonym": "whale", "positions": [{"positionSize": "2500"}]}},
		{"body": "no way", "profile": {"name": "bob"}},
		{"body": "flat", "profile": {"positions": [{"positionSize": "0"}]}}
	]`), &raws))
	return raws
}

func newTestService(c Completer) *Service {
	s := NewService(NewPromptBuilder(nil), c)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)) }
	return s
}

func TestAnalyzeComments(t *testing.T) {
	fc := &fakeCompleter{completion: &Completion{
		Provider: "claude",
		Text:     "```json\n" + validResult + "\n```",
		Attempts: []analysis.Attempt{{Provider: "claude", Status: analysis.AttemptSucceeded}},
	}}

	out, err := newTestService(fc).AnalyzeComments(context.Background(), rawComments(t), analysis.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, analysis.SentimentBullish, out.Result.Summary.OverallSentiment)
	assert.Equal(t, 3, out.Metadata.CommentsAnalyzed)
	assert.Equal(t, 3, out.Metadata.CommentsReceived)
	assert.Equal(t, 1, out.Metadata.HoldersAnalyzed)
	assert.Equal(t, "claude", out.Metadata.AIProvider)
	assert.Equal(t, time.UTC, out.Metadata.Timestamp.Location())
	assert.Equal(t, 2, out.Metadata.Timestamp.Hour())

	assert.Contains(t, fc.prompt, "[1] whale (Position: $2500): buying more yes")
	assert.Contains(t, fc.prompt, "[2] bob (No position): no way")
	assert.Contains(t, fc.prompt, "[3] Anonymous (No position): flat")
}

func TestAnalyzeCommentsFilterHolders(t *testing.T) {
	fc := &fakeCompleter{completion: &Completion{Provider: "openai", Text: validResult}}
	opts := analysis.DefaultOptions()
	opts.FilterHolders = true

	out, err := newTestService(fc).AnalyzeComments(context.Background(), rawComments(t), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Metadata.CommentsAnalyzed)
	assert.Equal(t, 3, out.Metadata.CommentsReceived)
	assert.True(t, strings.HasPrefix(fc.prompt, "You are analyzing 2 comments"))
	assert.Contains(t, fc.prompt, `"totalComments": 2,`)
	assert.NotContains(t, fc.prompt, "bob")
}

func TestAnalyzeCommentsRecoversUnparsable(t *testing.T) {
	fc := &fakeCompleter{completion: &Completion{Provider: "claude", Text: "not json at all"}}

	out, err := newTestService(fc).AnalyzeComments(context.Background(), rawComments(t), analysis.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, analysis.UnparsedResult(), out.Result)
	assert.Equal(t, "claude", out.Metadata.AIProvider)
}

func TestAnalyzeCommentsExhausted(t *testing.T) {
	fc := &fakeCompleter{err: &ExhaustedError{}}

	out, err := newTestService(fc).AnalyzeComments(context.Background(), rawComments(t), analysis.DefaultOptions())
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, errors.ErrProvidersExhausted))
}
