package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"mwd-agent/internal/model"
)

// Config for the Gemini client.
type Config struct {
	APIKey string
	Model  string
}

// Client wraps the Gemini API. It drives plan/response generation for the
// chat orchestrator and the meeting-notes action.
type Client struct {
	cfg    Config
	client *genai.Client
}

// NewClient creates a Gemini client. An empty API key yields an unconfigured
// client whose operations fail with "not configured" instead of erroring out
// at startup.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{cfg: cfg}
	if cfg.APIKey == "" {
		return c, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.client = gc
	return c, nil
}

// Configured reports whether the client can reach the API.
func (c *Client) Configured() bool {
	return c.client != nil
}

// GenerateRequest is one text-generation call.
type GenerateRequest struct {
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Generate performs a single generation call and returns the raw text.
// Transport errors propagate to the caller; the planner treats them as a
// hard failure for the request.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini: %w", model.ErrNotConfigured)
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model,
		genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// GenerateMeetingNotes turns a raw transcript into structured meeting notes.
func (c *Client) GenerateMeetingNotes(ctx context.Context, transcript string, participants []string) model.GenResult {
	if c.client == nil {
		return model.GenFailure(model.ErrNotConfigured)
	}
	names := "Not specified"
	if len(participants) > 0 {
		names = strings.Join(participants, ", ")
	}
	prompt := fmt.Sprintf(`Analyze this meeting transcript and create structured notes.

Participants: %s

Transcript:
%s

Create a JSON response with:
1. "summary": Brief overview (2-3 sentences)
2. "key_points": List of main discussion points
3. "action_items": List of tasks with assignee and deadline if mentioned
4. "decisions": List of decisions made
5. "follow_ups": Items needing follow-up
6. "next_meeting": Any mentioned next steps or meeting dates

Return only valid JSON.`, names, transcript)

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model,
		genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.3),
			MaxOutputTokens: 4096,
		})
	if err != nil {
		return model.GenFailure(err)
	}
	out := model.GenResult{
		Success:  true,
		Response: resp.Text(),
		Model:    c.cfg.Model,
	}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = &model.Usage{
			InputTokens:  int(um.PromptTokenCount),
			OutputTokens: int(um.CandidatesTokenCount),
		}
	}
	return out
}
