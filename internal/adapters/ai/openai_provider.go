package ai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider calls the chat completions API through the official SDK.
type OpenAIProvider struct {
	apiKey string
	opts   Options
	client openai.Client // NewClient returns Client (not *Client)
}

var _ TextProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider. An empty apiKey yields an
// unconfigured provider whose Complete always fails.
func NewOpenAIProvider(apiKey string, opts Options) *OpenAIProvider {
	opts = opts.withDefaults(ModelGPT4Turbo, DefaultOpenAIBaseURL)

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithHTTPClient(opts.HTTPClient),
		// the orchestrator owns retry policy
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		apiKey: apiKey,
		opts:   opts,
		client: client,
	}
}

// Name returns provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderNameOpenAI.String()
}

// Model returns the configured model id.
func (p *OpenAIProvider) Model() string {
	return p.opts.Model
}

// Configured reports whether an API key is set.
func (p *OpenAIProvider) Configured() bool {
	return p.apiKey != ""
}
