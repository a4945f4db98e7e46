package ai

// ClaudeProvider calls the Anthropic messages API over plain HTTP.
type ClaudeProvider struct {
	apiKey string
	opts   Options
}

var _ TextProvider = (*ClaudeProvider)(nil)

// NewClaudeProvider creates a new Claude provider. An empty apiKey yields an
// unconfigured provider whose Complete always fails.
func NewClaudeProvider(apiKey string, opts Options) *ClaudeProvider {
	return &ClaudeProvider{
		apiKey: apiKey,
		opts:   opts.withDefaults(ModelClaude35Sonnet, DefaultClaudeBaseURL),
	}
}

// Name returns provider name.
func (p *ClaudeProvider) Name() string {
	return ProviderNameClaude.String()
}

// Model returns the configured model id.
func (p *ClaudeProvider) Model() string {
	return p.opts.Model
}

// Configured reports whether an API key is set.
func (p *ClaudeProvider) Configured() bool {
	return p.apiKey != ""
}
