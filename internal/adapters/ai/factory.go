package ai

import (
	"polyalpha/internal/adapters/config"
)

// Providers is the ordered pair used for analysis.
type Providers struct {
	Primary  TextProvider
	Fallback TextProvider
}

// All returns primary then fallback.
func (p Providers) All() []TextProvider {
	return []TextProvider{p.Primary, p.Fallback}
}

// AnyConfigured reports whether at least one provider has an API key.
func (p Providers) AnyConfigured() bool {
	return p.Primary.Configured() || p.Fallback.Configured()
}

// BuildProviders wires Claude as primary and OpenAI as fallback.
// Both are always constructed; a missing key only marks a provider unconfigured.
func BuildProviders(cfg config.AIConfig) Providers {
	base := Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.CallTimeout,
	}

	claudeOpts := base
	claudeOpts.Model = cfg.ClaudeModel
	claudeOpts.BaseURL = cfg.ClaudeBaseURL

	openaiOpts := base
	openaiOpts.Model = cfg.OpenAIModel
	openaiOpts.BaseURL = cfg.OpenAIBaseURL

	return Providers{
		Primary:  NewClaudeProvider(cfg.ClaudeKey, claudeOpts),
		Fallback: NewOpenAIProvider(cfg.OpenAIKey, openaiOpts),
	}
}
