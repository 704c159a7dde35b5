package tracker

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
	"strings"
	"time"

	"mwd-agent/internal/model"
)

// Config for the MWD Invoice System client.
type Config struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

// Client talks to the MWD Invoice System: leads, deliverables, projects,
// and inbound webhook signature verification.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// VerifySignature checks the hex HMAC-SHA256 of the raw webhook body
// delivered in X-MWD-Signature. With no secret configured, verification is
// skipped and every request is treated as valid (insecure default for
// local development).
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	if c.cfg.WebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Result is the uniform envelope for every invoice-system operation. Raw
// carries the vendor's full response for callers that need more than ids.
type Result struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	LeadID  string         `json:"lead_id,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// CreateLead registers a new lead from intake data with its AI assessment.
func (c *Client) CreateLead(ctx context.Context, intake model.IntakeData, assessment *model.Assessment) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	payload := map[string]any{
		"source":             "mwd_agent_intake",
		"company_name":       intake.CompanyName,
		"contact_name":       intake.ContactName,
		"contact_email":      intake.ContactEmail,
		"phone":              intake.Phone,
		"industry":           intake.Industry,
		"budget":             intake.Budget,
		"services_requested": intake.KeyServices,
		"intake_form_data":   intake.Raw,
	}
	if assessment != nil {
		payload["agent_assessment"] = assessment
	}
	return c.do(ctx, http.MethodPost, "/api/v1/leads", payload)
}

// AttachDeliverable attaches an AI-generated deliverable to a lead.
func (c *Client) AttachDeliverable(ctx context.Context, leadID string, deliverable map[string]any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	return c.do(ctx, http.MethodPut, "/api/v1/leads/"+leadID+"/deliverables", deliverable)
}

// CreateProject creates a project in the invoice system.
func (c *Client) CreateProject(ctx context.Context, project map[string]any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/projects", project)
}

// UpdateProjectStatus pushes a status update for a project.
func (c *Client) UpdateProjectStatus(ctx context.Context, projectID string, update map[string]any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	return c.do(ctx, http.MethodPut, "/api/v1/projects/"+projectID+"/status", update)
}

// GetLead fetches a lead by id.
func (c *Client) GetLead(ctx context.Context, leadID string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	return c.do(ctx, http.MethodGet, "/api/v1/leads/"+leadID, nil)
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, projectID string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	return c.do(ctx, http.MethodGet, "/api/v1/projects/"+projectID, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) Result {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return failure(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failure(fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(fmt.Errorf("invoice system api error: %s %s", resp.Status, string(raw)))
	}
	res := Result{Success: true}
	if len(raw) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			res.Raw = parsed
			if id, ok := parsed["lead_id"].(string); ok {
				res.LeadID = id
			}
		}
	}
	return res
}
