package analysis

import (
	"bytes"
	"encoding/json"
)

// Options selects which analysis requirements go into the prompt.
type Options struct {
	AnalyzeSentiment bool `json:"analyzeSentiment"`
	DetectDivergence bool `json:"detectDivergence"`
	FindInsiders     bool `json:"findInsiders"`
	FilterHolders    bool `json:"filterHolders"`
}

// DefaultOptions enables every requirement and keeps all commenters.
func DefaultOptions() Options {
	return Options{
		AnalyzeSentiment: true,
		DetectDivergence: true,
		FindInsiders:     true,
	}
}

// UnmarshalJSON applies defaults for absent or null flags.
func (o *Options) UnmarshalJSON(data []byte) error {
	*o = DefaultOptions()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var wire struct {
		AnalyzeSentiment *bool `json:"analyzeSentiment"`
		DetectDivergence *bool `json:"detectDivergence"`
		FindInsiders     *bool `json:"findInsiders"`
		FilterHolders    *bool `json:"filterHolders"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.AnalyzeSentiment != nil {
		o.AnalyzeSentiment = *wire.AnalyzeSentiment
	}
	if wire.DetectDivergence != nil {
		o.DetectDivergence = *wire.DetectDivergence
	}
	if wire.FindInsiders != nil {
		o.FindInsiders = *wire.FindInsiders
	}
	if wire.FilterHolders != nil {
		o.FilterHolders = *wire.FilterHolders
	}
	return nil
}
