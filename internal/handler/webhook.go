package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mwd-agent/internal/model"
	"mwd-agent/internal/service"
)

const signatureHeader = "X-MWD-Signature"

// SignatureVerifier checks a webhook body against its signature header.
type SignatureVerifier interface {
	VerifySignature(payload []byte, signature string) bool
}

// WebhookHandler receives events from the MWD Invoice System.
type WebhookHandler struct {
	verifier SignatureVerifier
	intake   *service.Intake
	logger   *zap.Logger
}

func NewWebhookHandler(verifier SignatureVerifier, intake *service.Intake, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, intake: intake, logger: logger}
}

// Intake handles POST /api/intake: a client intake form submission.
func (h *WebhookHandler) Intake(c *gin.Context) {
	body, ok := h.verifiedBody(c)
	if !ok {
		return
	}
	var event model.IntakeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.intake.ProcessIntake(c.Request.Context(), event))
}

// ProjectStatus handles POST /api/project/status.
func (h *WebhookHandler) ProjectStatus(c *gin.Context) {
	body, ok := h.verifiedBody(c)
	if !ok {
		return
	}
	var event model.ProjectStatusEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.intake.HandleProjectStatus(c.Request.Context(), event))
}

// Contact handles POST /api/contact: a bare contact-form submission.
func (h *WebhookHandler) Contact(c *gin.Context) {
	body, ok := h.verifiedBody(c)
	if !ok {
		return
	}
	var event model.ContactEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.intake.HandleContact(c.Request.Context(), event))
}

// verifiedBody reads the raw body and checks its signature. Verification
// happens before any parsing so a forged payload never reaches downstream
// services.
func (h *WebhookHandler) verifiedBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return nil, false
	}
	if !h.verifier.VerifySignature(body, c.GetHeader(signatureHeader)) {
		h.logger.Warn("invalid webhook signature",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return nil, false
	}
	return body, true
}
