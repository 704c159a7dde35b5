package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

// Config for the OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls the OpenAI chat-completions API for internal team
// communication drafting.
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
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

var toneGuides = map[string]string{
	"professional": "formal but friendly, clear and concise",
	"casual":       "relaxed and conversational, using informal language",
	"urgent":       "direct and action-oriented, emphasizing priority",
}

var typeGuides = map[string]string{
	"update":       "project status update or progress report",
	"request":      "asking for input, resources, or action",
	"announcement": "sharing news or important information",
	"feedback":     "providing constructive feedback or suggestions",
}

// DraftTeamMessage drafts an internal team message for the given context.
func (c *Client) DraftTeamMessage(ctx context.Context, msgContext, msgType, tone string) model.GenResult {
	if !c.Configured() {
		return model.GenFailure(model.ErrNotConfigured)
	}
	typeGuide, ok := typeGuides[msgType]
	if !ok {
		typeGuide = "general communication"
	}
	toneGuide, ok := toneGuides[tone]
	if !ok {
		toneGuide = toneGuides["professional"]
	}
	prompt := fmt.Sprintf(`Draft an internal team message.

Type: %s
Tone: %s

Context:
%s

Create a well-structured message that:
1. Has a clear subject line
2. Gets to the point quickly
3. Includes any necessary action items
4. Ends with clear next steps

Format:
Subject: [subject line]

[message body]`, typeGuide, toneGuide, msgContext)

	return c.chat(ctx, "You are a professional communication assistant helping draft clear, effective internal team messages.", prompt, 0.7, 1024)
}

func (c *Client) chat(ctx context.Context, system, prompt string, temperature float64, maxTokens int) model.GenResult {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return model.GenFailure(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return model.GenFailure(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

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
		return model.GenFailure(fmt.Errorf("openai api error: %s %s", resp.Status, string(data)))
	}
	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return model.GenFailure(fmt.Errorf("unmarshal response: %w", err))
	}
	if len(cr.Choices) == 0 {
		return model.GenFailure(fmt.Errorf("empty choices"))
	}
	return model.GenResult{
		Success:  true,
		Response: cr.Choices[0].Message.Content,
		Model:    c.cfg.Model,
		Usage: &model.Usage{
			InputTokens:  cr.Usage.PromptTokens,
			OutputTokens: cr.Usage.CompletionTokens,
			TotalTokens:  cr.Usage.TotalTokens,
		},
	}
}
