package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mwd-agent/internal/model"
)

const defaultBaseURL = "https://api.perplexity.ai"

// Config for the Perplexity client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls Perplexity's OpenAI-compatible chat-completions endpoint for
// web-grounded research and client-facing email drafts.
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

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

var depthTokens = map[string]int{
	"quick":         1024,
	"moderate":      2048,
	"comprehensive": 4096,
}

// ResearchTopic runs general research on a topic. Depth is one of quick,
// moderate or comprehensive.
func (c *Client) ResearchTopic(ctx context.Context, topic, depth string) model.GenResult {
	if !c.Configured() {
		return model.GenFailure(model.ErrNotConfigured)
	}
	scope := "comprehensive analysis"
	if depth == "quick" {
		scope = "brief overview"
	}
	maxTokens, ok := depthTokens[depth]
	if !ok {
		maxTokens = 2048
	}
	prompt := fmt.Sprintf(`Research: %s

Provide a %s including:
1. Key facts and background
2. Current state and recent developments
3. Different perspectives or approaches
4. Practical applications or implications
5. Expert opinions and sources

Cite all sources.`, topic, scope)

	return c.chat(ctx,
		"You are a research assistant. Provide accurate, well-sourced information.",
		prompt, maxTokens)
}

// ResearchCompetitors analyzes a company's competitive landscape.
func (c *Client) ResearchCompetitors(ctx context.Context, company string, competitors []string, industry string) model.GenResult {
	if !c.Configured() {
		return model.GenFailure(model.ErrNotConfigured)
	}
	known := "Identify the main competitors first."
	if len(competitors) > 0 {
		known = "Known competitors: " + strings.Join(competitors, ", ")
	}
	prompt := fmt.Sprintf(`Competitive analysis for %s in the %s industry.
%s

Cover for each competitor:
1. Positioning and key differentiators
2. Pricing and packaging where public
3. Marketing channels and brand voice
4. Strengths and weaknesses relative to %s

Cite all sources.`, company, industry, known, company)

	return c.chat(ctx,
		"You are a market research analyst. Provide accurate, well-sourced competitive intelligence.",
		prompt, 4096)
}

// DraftClientEmail drafts a client-facing email for the given context.
func (c *Client) DraftClientEmail(ctx context.Context, emailContext, emailType, clientName string) model.GenResult {
	if !c.Configured() {
		return model.GenFailure(model.ErrNotConfigured)
	}
	prompt := fmt.Sprintf(`Draft a professional client email.

Type: %s
Client: %s

Context:
%s

The email should be warm but professional, concise, and end with a clear
next step. Include a subject line.`, emailType, clientName, emailContext)

	return c.chat(ctx,
		"You are a client communication specialist at a creative agency.",
		prompt, 1024)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

func (c *Client) chat(ctx context.Context, system, prompt string, maxTokens int) model.GenResult {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
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
		return model.GenFailure(fmt.Errorf("perplexity api error: %s %s", resp.Status, string(data)))
	}
	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return model.GenFailure(fmt.Errorf("unmarshal response: %w", err))
	}
	if len(cr.Choices) == 0 {
		return model.GenFailure(fmt.Errorf("empty choices"))
	}
	return model.GenResult{
		Success:   true,
		Response:  cr.Choices[0].Message.Content,
		Model:     c.cfg.Model,
		Citations: cr.Citations,
	}
}
