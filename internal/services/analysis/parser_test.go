package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyalpha/internal/domain/analysis"
)

const validResult = `{
  "summary": {
    "totalComments": 3,
    "holdersCount": 1,
    "overallSentiment": "bullish",
    "sentimentDistribution": {"bullish": 2, "bearish": 0, "neutral": 1}
  },
  "insights": ["Holders are accumulating"],
  "divergenceAlerts": [{"severity": "high", "description": "whales disagree"}],
  "topComments": [{"commentIndex": 1, "username": "whale", "sentiment": "bullish", "alphaScore": 9, "positionSize": "1500", "reasoning": "specific"}],
  "insiderMentions": [{"comment": "my cousin works there", "significance": "possible leak"}]
}`

func TestParseResponseFenced(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json tag", "```json\n" + validResult + "\n```"},
		{"no tag", "```\n" + validResult + "\n```"},
		{"surrounding whitespace", "\n\n  ```json\n" + validResult + "\n```  \n"},
		{"plain", validResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseResponse(tt.input)
			require.True(t, ok)

			assert.Equal(t, analysis.Int(3), result.Summary.TotalComments)
			assert.Equal(t, analysis.SentimentBullish, result.Summary.OverallSentiment)
			assert.Equal(t, 3, result.Summary.SentimentDistribution.Total())
			require.Len(t, result.TopComments, 1)
			assert.Equal(t, analysis.Int(9), result.TopComments[0].AlphaScore)
			assert.Equal(t, analysis.SeverityHigh, result.DivergenceAlerts[0].Severity)
		})
	}
}

func TestStripCodeFenceLeavesPlainJSON(t *testing.T) {
	plain := "{\"a\": \"```inner```\"}"
	assert.Equal(t, plain, StripCodeFence(plain))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json {\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}\n```"))
}

func TestParseResponseNotJSON(t *testing.T) {
	for _, input := range []string{"not json at all", "", "null", "[1,2]", "```json\n{broken\n```", `{"insights": "a string"}`} {
		result, ok := ParseResponse(input)
		assert.False(t, ok, input)
		assert.Equal(t, analysis.UnparsedResult(), result, input)
		assert.Equal(t, []string{analysis.UnparsedInsight}, result.Insights)
		assert.Zero(t, result.Summary.TotalComments)
	}
}

func TestParseResponseIdempotent(t *testing.T) {
	fallback, _ := ParseResponse("garbage")
	encoded, err := json.Marshal(fallback)
	require.NoError(t, err)

	again, ok := ParseResponse(string(encoded))
	require.True(t, ok)
	assert.Equal(t, fallback, again)

	first, _ := ParseResponse(validResult)
	second, _ := ParseResponse(validResult)
	assert.Equal(t, first, second)
}

func TestParseResponsePartialObjectIsNeutral(t *testing.T) {
	for _, input := range []string{`{}`, `{"insights":["x"]}`, `{"summary":{"totalComments":2}}`} {
		result, ok := ParseResponse(input)
		require.True(t, ok, input)
		assert.Equal(t, analysis.SentimentNeutral, result.Summary.OverallSentiment, input)
		assert.True(t, result.Summary.OverallSentiment.Valid(), input)
	}
}

func TestParseResponseFillsMissingArrays(t *testing.T) {
	result, ok := ParseResponse(`{"summary": {"totalComments": 1, "overallSentiment": "neutral"}}`)
	require.True(t, ok)

	assert.NotNil(t, result.Insights)
	assert.NotNil(t, result.DivergenceAlerts)
	assert.NotNil(t, result.TopComments)
	assert.NotNil(t, result.InsiderMentions)
}
