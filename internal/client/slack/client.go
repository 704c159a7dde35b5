package slack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"mwd-agent/internal/model"
)

const apiBase = "https://slack.com/api"

// Maximum age of a signed request before it is treated as a replay.
const signatureMaxAge = 5 * time.Minute

// Config for the Slack client.
type Config struct {
	BotToken      string
	SigningSecret string
	BotUserID     string // resolved via auth.test when empty
	BaseURL       string // overridable in tests
}

// Client is a minimal Slack Web API client covering the operations the
// assistant needs: posting, thread history, reactions and identity.
type Client struct {
	cfg    Config
	client *http.Client

	idOnce    sync.Once
	botUserID string
	idErr     error
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = apiBase
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.BotToken != ""
}

// VerifySignature checks the v0 request signature over the raw body.
// With no signing secret configured, verification is skipped and every
// request is treated as valid (insecure default for local development).
func (c *Client) VerifySignature(timestamp, signature string, body []byte) bool {
	if c.cfg.SigningSecret == "" {
		return true
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(ts, 0))
	if age > signatureMaxAge || age < -signatureMaxAge {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.SigningSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// BotUserID returns the bot's own user id, resolving it through auth.test
// on first use and caching it for the process lifetime.
func (c *Client) BotUserID(ctx context.Context) (string, error) {
	if c.cfg.BotUserID != "" {
		return c.cfg.BotUserID, nil
	}
	c.idOnce.Do(func() {
		var resp struct {
			apiError
			UserID string `json:"user_id"`
		}
		c.idErr = c.call(ctx, "auth.test", map[string]string{}, &resp)
		if c.idErr == nil {
			c.botUserID = resp.UserID
		}
	})
	return c.botUserID, c.idErr
}

// PostMessage sends text to a channel, threading when threadTS is set.
// Returns the timestamp of the posted message.
func (c *Client) PostMessage(ctx context.Context, channel, threadTS, text string) (string, error) {
	body := map[string]string{
		"channel": channel,
		"text":    text,
	}
	if threadTS != "" {
		body["thread_ts"] = threadTS
	}
	var resp struct {
		apiError
		TS string `json:"ts"`
	}
	if err := c.call(ctx, "chat.postMessage", body, &resp); err != nil {
		return "", err
	}
	return resp.TS, nil
}

// Message is one entry of a thread history.
type Message struct {
	User  string `json:"user"`
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
	TS    string `json:"ts"`
}

// ThreadReplies fetches up to limit messages of the thread rooted at ts.
func (c *Client) ThreadReplies(ctx context.Context, channel, ts string, limit int) ([]Message, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("slack: %w", model.ErrNotConfigured)
	}
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("ts", ts)
	q.Set("limit", strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/conversations.replies?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var resp struct {
		apiError
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("slack: unmarshal response: %w", err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack conversations.replies: %s", resp.Err)
	}
	return resp.Messages, nil
}

// AddReaction attaches an emoji reaction to a message. Reaction failures
// are non-fatal for the request flow; callers usually ignore the error.
func (c *Client) AddReaction(ctx context.Context, channel, timestamp, emoji string) error {
	var resp apiError
	return c.call(ctx, "reactions.add", map[string]string{
		"channel":   channel,
		"timestamp": timestamp,
		"name":      emoji,
	}, &resp)
}

// RemoveReaction removes an emoji reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, channel, timestamp, emoji string) error {
	var resp apiError
	return c.call(ctx, "reactions.remove", map[string]string{
		"channel":   channel,
		"timestamp": timestamp,
		"name":      emoji,
	}, &resp)
}

type apiError struct {
	OK  bool   `json:"ok"`
	Err string `json:"error"`
}

type apiChecker interface {
	ok() (bool, string)
}

func (e *apiError) ok() (bool, string) { return e.OK, e.Err }

func (c *Client) call(ctx context.Context, method string, body map[string]string, out apiChecker) error {
	if !c.Configured() {
		return fmt.Errorf("slack: %w", model.ErrNotConfigured)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("slack: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
	httpResp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("slack: unmarshal %s response: %w", method, err)
	}
	if ok, apiErr := out.ok(); !ok {
		return fmt.Errorf("slack %s: %s", method, apiErr)
	}
	return nil
}
