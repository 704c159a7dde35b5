package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mwd-agent/internal/model"
)

const defaultBaseURL = "https://api.anthropic.com/v1"

// Config for the Anthropic client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the public API, overridable in tests
}

// Client calls the Anthropic Messages API. It backs the four strategy
// generators (branding, website, social, copywriting).
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a single user prompt and returns the uniform envelope.
// All transport failures are folded into the envelope.
func (c *Client) Complete(ctx context.Context, prompt string) model.GenResult {
	if !c.Configured() {
		return model.GenFailure(model.ErrNotConfigured)
	}
	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: 4096,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return model.GenFailure(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return model.GenFailure(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.GenFailure(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.GenFailure(fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return model.GenFailure(fmt.Errorf("anthropic api error: %s %s", resp.Status, string(data)))
	}
	var mr messagesResponse
	if err := json.Unmarshal(data, &mr); err != nil {
		return model.GenFailure(fmt.Errorf("unmarshal response: %w", err))
	}
	if len(mr.Content) == 0 {
		return model.GenFailure(fmt.Errorf("empty content"))
	}
	return model.GenResult{
		Success:  true,
		Response: mr.Content[0].Text,
		Model:    c.cfg.Model,
		Usage: &model.Usage{
			InputTokens:  mr.Usage.InputTokens,
			OutputTokens: mr.Usage.OutputTokens,
		},
	}
}
