package gchat

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mwd-agent/internal/model"
)

const apiBase = "https://chat.googleapis.com/v1"

// Config for the Google Chat client. Credential issuance is handled outside
// this service; the client takes a pre-issued bearer token.
type Config struct {
	BotToken          string
	VerificationToken string
	BotName           string
	BaseURL           string // overridable in tests
}

// Client is a minimal Google Chat REST client: send messages into a space
// and list a thread's messages for conversation context.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = apiBase
	}
	if cfg.BotName == "" {
		cfg.BotName = "MWD Assistant"
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.BotToken != ""
}

// BotName is the display name users mention to address the bot.
func (c *Client) BotName() string {
	return c.cfg.BotName
}

// VerifyToken compares the event's verification token in constant time.
// With no expected token configured, verification is skipped (insecure
// default for local development).
func (c *Client) VerifyToken(token string) bool {
	if c.cfg.VerificationToken == "" {
		return true
	}
	return hmac.Equal([]byte(token), []byte(c.cfg.VerificationToken))
}

// Message is one entry of a space or thread listing.
type Message struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Sender struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Type        string `json:"type"` // HUMAN | BOT
	} `json:"sender"`
}

// CreateMessage posts text into a space, replying into thread when set.
func (c *Client) CreateMessage(ctx context.Context, space, thread, text string) error {
	if !c.Configured() {
		return fmt.Errorf("gchat: %w", model.ErrNotConfigured)
	}
	payload := map[string]any{"text": text}
	if thread != "" {
		payload["thread"] = map[string]string{"name": thread}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gchat: marshal request: %w", err)
	}
	u := fmt.Sprintf("%s/%s/messages?messageReplyOption=REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD",
		c.cfg.BaseURL, space)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gchat create message: %s %s", resp.Status, string(body))
	}
	return nil
}

// ListThreadMessages fetches up to limit messages belonging to a thread.
func (c *Client) ListThreadMessages(ctx context.Context, space, thread string, limit int) ([]Message, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("gchat: %w", model.ErrNotConfigured)
	}
	q := url.Values{}
	q.Set("filter", fmt.Sprintf("thread.name = %q", thread))
	q.Set("pageSize", strconv.Itoa(limit))
	u := fmt.Sprintf("%s/%s/messages?%s", c.cfg.BaseURL, space, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gchat list messages: %s %s", resp.Status, string(data))
	}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("gchat: unmarshal response: %w", err)
	}
	return out.Messages, nil
}
