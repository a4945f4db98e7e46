package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"polyalpha/pkg/errors"
)

// Complete sends prompt to the Claude messages API as a single user message.
func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.Configured() {
		return "", errors.Wrap(errors.ErrProviderNotConfigured, "claude API key not configured")
	}

	claudeReq := claudeRequest{
		Model:       p.opts.Model,
		MaxTokens:   p.opts.MaxTokens,
		Temperature: p.opts.Temperature,
		Messages: []claudeMessage{{
			Role:    "user",
			Content: prompt,
		}},
	}

	body, err := json.Marshal(claudeReq)
	if err != nil {
		return "", errors.Wrap(err, "marshal claude request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := p.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportErr(ProviderNameClaude, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportErr(ProviderNameClaude, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp claudeErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", errors.Wrapf(errors.ErrExternal, "claude API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", errors.Wrapf(errors.ErrExternal, "claude API error (%d): %s",
			resp.StatusCode, truncate(string(respBody), maxErrorBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return "", errors.Wrapf(errors.ErrExternal, "unmarshal claude response: %v", err)
	}

	text := claudeResp.text()
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrapf(errors.ErrEmptyCompletion, "claude stop_reason=%s", claudeResp.StopReason)
	}

	return text, nil
}

// Claude API types
type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Model      string          `json:"model"`
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
	Usage      claudeUsage     `json:"usage"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// text concatenates every text block; other block types are ignored.
func (r *claudeResponse) text() string {
	var parts []string
	for _, c := range r.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "")
}
