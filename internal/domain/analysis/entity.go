package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// UnparsedInsight is the only insight of a result recovered from unusable model output.
const UnparsedInsight = "AI response could not be parsed. Please try again."

// Sentiment values the model is asked to use.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Valid checks if sentiment is one of the enumerated values
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// Severity of a divergence alert.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid checks if severity is one of the enumerated values
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Result is the structured analysis returned to the client.
type Result struct {
	Summary          Summary          `json:"summary"`
	Insights         []string         `json:"insights"`
	DivergenceAlerts []DivergenceAlert `json:"divergenceAlerts"`
	TopComments      []TopComment     `json:"topComments"`
	InsiderMentions  []InsiderMention `json:"insiderMentions"`
}

type Summary struct {
	TotalComments         Int                   `json:"totalComments"`
	HoldersCount          Int                   `json:"holdersCount"`
	OverallSentiment      Sentiment             `json:"overallSentiment"`
	SentimentDistribution SentimentDistribution `json:"sentimentDistribution"`
}

type SentimentDistribution struct {
	Bullish Int `json:"bullish"`
	Bearish Int `json:"bearish"`
	Neutral Int `json:"neutral"`
}

// Total sums the three buckets. Models are asked to make it equal TotalComments
// but nothing enforces that.
func (d SentimentDistribution) Total() int {
	return int(d.Bullish + d.Bearish + d.Neutral)
}

type DivergenceAlert struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

type TopComment struct {
	CommentIndex Int       `json:"commentIndex"`
	Username     string    `json:"username"`
	Sentiment    Sentiment `json:"sentiment"`
	AlphaScore   Int       `json:"alphaScore"`
	PositionSize string    `json:"positionSize"`
	Reasoning    string    `json:"reasoning"`
}

type InsiderMention struct {
	Comment      string `json:"comment"`
	Significance string `json:"significance"`
}

// EnsureSlices replaces nil slices with empty ones so they encode as [].
func (r *Result) EnsureSlices() {
	if r.Insights == nil {
		r.Insights = []string{}
	}
	if r.DivergenceAlerts == nil {
		r.DivergenceAlerts = []DivergenceAlert{}
	}
	if r.TopComments == nil {
		r.TopComments = []TopComment{}
	}
	if r.InsiderMentions == nil {
		r.InsiderMentions = []InsiderMention{}
	}
}

// ApplyDefaults fills what a partial model answer may leave out: nil
// slices and an empty overall sentiment, which becomes neutral.
func (r *Result) ApplyDefaults() {
	r.EnsureSlices()
	if r.Summary.OverallSentiment == "" {
		r.Summary.OverallSentiment = SentimentNeutral
	}
}

// UnparsedResult is the fixed result used when the model output is not valid JSON.
func UnparsedResult() Result {
	return Result{
		Summary: Summary{
			OverallSentiment: SentimentNeutral,
		},
		Insights:         []string{UnparsedInsight},
		DivergenceAlerts: []DivergenceAlert{},
		TopComments:      []TopComment{},
		InsiderMentions:  []InsiderMention{},
	}
}

// Int is an integer that also accepts fractional numbers (rounded) and
// numeric strings, which models produce now and then.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return &json.UnmarshalTypeError{Value: "number " + text, Type: reflect.TypeOf(*i)}
	}
	*i = Int(math.Round(f))
	return nil
}

// Provider attempt outcome.
type AttemptStatus string

const (
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptSkipped   AttemptStatus = "skipped"
)

// Attempt records one provider call made for a request.
type Attempt struct {
	Provider   string        `json:"provider"`
	Status     AttemptStatus `json:"status"`
	DurationMs int64         `json:"durationMs"`
	Error      string        `json:"error,omitempty"`
}

// Metadata accompanies every successful analysis.
type Metadata struct {
	CommentsAnalyzed int       `json:"commentsAnalyzed"`
	CommentsReceived int       `json:"commentsReceived"`
	HoldersAnalyzed  int       `json:"holdersAnalyzed"`
	AIProvider       string    `json:"aiProvider"`
	Timestamp        time.Time `json:"timestamp"`
	Attempts         []Attempt `json:"attempts"`
}
