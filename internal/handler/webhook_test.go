package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mwd-agent/internal/client/tracker"
	"mwd-agent/internal/model"
	"mwd-agent/internal/service"
)

type staticVerifier struct{ valid bool }

func (v staticVerifier) VerifySignature([]byte, string) bool { return v.valid }

type countingStrategist struct {
	calls atomic.Int64
}

func (s *countingStrategist) gen() model.GenResult {
	s.calls.Add(1)
	return model.GenResult{Success: true, Response: "deliverable", Model: "claude-sonnet-4-5"}
}

func (s *countingStrategist) Branding(context.Context, map[string]any) model.GenResult {
	return s.gen()
}
func (s *countingStrategist) Website(context.Context, map[string]any) model.GenResult {
	return s.gen()
}
func (s *countingStrategist) Social(context.Context, map[string]any) model.GenResult {
	return s.gen()
}
func (s *countingStrategist) Copywriting(context.Context, map[string]any) model.GenResult {
	return s.gen()
}

type noopLeads struct{}

func (noopLeads) Configured() bool { return false }
func (noopLeads) CreateLead(context.Context, model.IntakeData, *model.Assessment) tracker.Result {
	return tracker.Result{}
}
func (noopLeads) AttachDeliverable(context.Context, string, map[string]any) tracker.Result {
	return tracker.Result{}
}

func newWebhookRig(valid bool) (*gin.Engine, *countingStrategist) {
	gin.SetMode(gin.TestMode)
	strategist := &countingStrategist{}
	intake := service.NewIntake(strategist, noopLeads{}, zap.NewNop())
	h := NewWebhookHandler(staticVerifier{valid: valid}, intake, zap.NewNop())

	r := gin.New()
	r.POST("/api/intake", h.Intake)
	r.POST("/api/project/status", h.ProjectStatus)
	r.POST("/api/contact", h.Contact)
	return r, strategist
}

func TestIntakeRejectsBadSignatureBeforeProcessing(t *testing.T) {
	r, strategist := newWebhookRig(false)

	body := []byte(`{"event_type": "client.intake.submitted", "intake_data": {"company_name": "Acme"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/intake", bytes.NewReader(body))
	req.Header.Set("X-MWD-Signature", "forged")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	// No deliverable generation may happen for a forged payload.
	assert.Zero(t, strategist.calls.Load())
}

func TestIntakeProcessesVerifiedPayload(t *testing.T) {
	r, strategist := newWebhookRig(true)

	body := []byte(`{
		"event_type": "client.intake.submitted",
		"event_id": "evt-1",
		"intake_data": {"company_name": "Acme", "key_services": ["branding", "website", "social"]}
	}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/intake", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), strategist.calls.Load())

	var outcome model.IntakeOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Success)
	assert.Equal(t, "evt-1", outcome.EventID)
	assert.Equal(t, 4, outcome.DeliverablesCount)
	assert.Equal(t, "premium", outcome.Assessment.RecommendedPackage)
}

func TestIntakeRejectsMalformedJSON(t *testing.T) {
	r, _ := newWebhookRig(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/intake", bytes.NewReader([]byte("{broken"))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectStatusAcknowledgesTransition(t *testing.T) {
	r, _ := newWebhookRig(true)

	body := []byte(`{
		"event_type": "project.status.changed",
		"event_id": "evt-2",
		"project_data": {"project_id": "prj-1", "new_status": "contract_signed"}
	}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/project/status", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var outcome model.StatusOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, []string{"project_kickoff_initialized"}, outcome.ActionsTaken)
}

func TestContactAccepted(t *testing.T) {
	r, _ := newWebhookRig(true)

	body := []byte(`{"name": "Sam", "email": "sam@example.com", "company": "Fieldworks"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	var outcome model.ContactOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.EventID)
}
