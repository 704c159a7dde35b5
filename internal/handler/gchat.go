package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mwd-agent/internal/client/gchat"
	"mwd-agent/internal/model"
	"mwd-agent/internal/service"
)

// GChatHandler receives Google Chat events. Unlike Slack, replies travel
// synchronously in the HTTP response body.
type GChatHandler struct {
	client  *gchat.Client
	surface service.Surface
	orch    *service.Orchestrator
	logger  *zap.Logger
}

func NewGChatHandler(client *gchat.Client, surface service.Surface, orch *service.Orchestrator, logger *zap.Logger) *GChatHandler {
	return &GChatHandler{client: client, surface: surface, orch: orch, logger: logger}
}

type gchatEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Space struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"space"`
	Message struct {
		Name         string `json:"name"`
		Text         string `json:"text"`
		ArgumentText string `json:"argumentText"`
		Thread       struct {
			Name string `json:"name"`
		} `json:"thread"`
	} `json:"message"`
	User struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
}

// Events handles POST /gchat/events.
func (h *GChatHandler) Events(c *gin.Context) {
	var event gchatEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if !h.client.VerifyToken(event.Token) {
		h.logger.Warn("invalid gchat verification token", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
		return
	}

	switch event.Type {
	case "ADDED_TO_SPACE":
		c.JSON(http.StatusOK, gin.H{"text": fmt.Sprintf(
			"Hi, I'm %s. Mention me with a request and I'll take it from there.",
			h.client.BotName())})
	case "REMOVED_FROM_SPACE":
		h.logger.Info("removed from space", zap.String("space", event.Space.Name))
		c.Status(http.StatusOK)
	case "MESSAGE":
		c.JSON(http.StatusOK, gin.H{"text": h.reply(c, event)})
	default:
		c.Status(http.StatusOK)
	}
}

func (h *GChatHandler) reply(c *gin.Context, event gchatEvent) string {
	msg := model.IncomingMessage{
		Surface:    "gchat",
		Text:       h.messageText(event),
		SenderID:   event.User.Name,
		SenderName: event.User.DisplayName,
		ChannelID:  event.Space.Name,
		ThreadID:   event.Message.Thread.Name,
		MessageTS:  event.Message.Name,
	}
	reply, err := h.orch.HandleMessage(c.Request.Context(), h.surface, msg)
	if err != nil {
		h.logger.Error("gchat turn failed", zap.Error(err), zap.String("space", event.Space.Name))
		return service.ApologyReply
	}
	return reply.Message
}

// messageText prefers argumentText, which Google Chat delivers with the
// bot mention already removed. The fallback strips the mention by name.
func (h *GChatHandler) messageText(event gchatEvent) string {
	if text := strings.TrimSpace(event.Message.ArgumentText); text != "" {
		return text
	}
	text := strings.ReplaceAll(event.Message.Text, "@"+h.client.BotName(), "")
	return strings.TrimSpace(text)
}
