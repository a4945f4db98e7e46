package ai

import "time"

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants. These values are reported as aiProvider.
const (
	ProviderNameClaude ProviderName = "claude"
	ProviderNameOpenAI ProviderName = "openai"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// Model name constants
const (
	ModelClaude35Sonnet = "claude-3-5-sonnet-20241022"
	ModelGPT4Turbo      = "gpt-4-turbo-preview"
)

const (
	DefaultClaudeBaseURL = "https://api.anthropic.com"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	claudeAPIVersion = "2023-06-01"

	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second

	// Size cap on error bodies copied into error messages.
	maxErrorBody = 512
)

// analystSystemPrompt is sent to OpenAI only; Claude gets the bare user prompt.
const analystSystemPrompt = "You are an expert financial analyst specializing in prediction markets and sentiment analysis. Provide structured, actionable insights."
