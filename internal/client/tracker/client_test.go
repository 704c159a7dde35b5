package tracker

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mwd-agent/internal/model"
)

func hexSign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "wh-secret"
	payload := []byte(`{"event_type":"client.intake.submitted"}`)
	c := NewClient(Config{WebhookSecret: secret})

	assert.True(t, c.VerifySignature(payload, hexSign(secret, payload)))
	assert.False(t, c.VerifySignature(payload, hexSign("other", payload)))
	assert.False(t, c.VerifySignature([]byte("tampered"), hexSign(secret, payload)))
	assert.False(t, c.VerifySignature(payload, ""))
}

func TestVerifySignatureSkippedWithoutSecret(t *testing.T) {
	c := NewClient(Config{})
	assert.True(t, c.VerifySignature([]byte("anything"), "junk"))
}

func TestUnconfiguredClientMakesNoRequests(t *testing.T) {
	c := NewClient(Config{})
	res := c.CreateLead(context.Background(), model.IntakeData{CompanyName: "Acme"}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, model.ErrNotConfigured.Error(), res.Error)
}

func TestCreateLeadExtractsLeadID(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/leads", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"lead_id": "lead-99", "status": "created"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"})
	assessment := &model.Assessment{ComplexityScore: 7, RecommendedPackage: "premium"}
	res := c.CreateLead(context.Background(), model.IntakeData{
		CompanyName: "Acme",
		KeyServices: []string{"branding"},
	}, assessment)

	require.True(t, res.Success)
	assert.Equal(t, "lead-99", res.LeadID)
	assert.Equal(t, "created", res.Raw["status"])
	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, "mwd_agent_intake", gotPayload["source"])
	assert.NotNil(t, gotPayload["agent_assessment"])
}

func TestDoReportsHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "duplicate lead"}`, http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"})
	res := c.CreateLead(context.Background(), model.IntakeData{CompanyName: "Acme"}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "409")
	assert.Contains(t, res.Error, "duplicate lead")
}

func TestAttachDeliverablePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key-1"})
	res := c.AttachDeliverable(context.Background(), "lead-7", map[string]any{
		"deliverable_type": "branding_strategy",
	})
	require.True(t, res.Success)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/leads/lead-7/deliverables", gotPath)
}
