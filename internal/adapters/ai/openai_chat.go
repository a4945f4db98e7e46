package ai

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"

	"polyalpha/pkg/errors"
)

// Complete sends the analyst system message followed by prompt as the user message.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.Configured() {
		return "", errors.Wrap(errors.ErrProviderNotConfigured, "openai API key not configured")
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analystSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(p.opts.Temperature),
		MaxTokens:   openai.Int(int64(p.opts.MaxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", errors.Wrapf(errors.ErrExternal, "openai API error (%d): %s - %s",
				apiErr.StatusCode, apiErr.Type, truncate(apiErr.Message, maxErrorBody))
		}
		return "", classifyTransportErr(ProviderNameOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrEmptyCompletion, "openai returned no choices")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrapf(errors.ErrEmptyCompletion, "openai finish_reason=%s", resp.Choices[0].FinishReason)
	}

	return text, nil
}
