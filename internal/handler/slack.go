package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mwd-agent/internal/client/slack"
	"mwd-agent/internal/model"
	"mwd-agent/internal/service"
)

// Time budget for one background chat turn, reactions included.
const slackTurnTimeout = 3 * time.Minute

var slackMentionPattern = regexp.MustCompile(`<@[^>]+>`)

// SlackHandler receives Slack Events API callbacks. Slack retries anything
// not acknowledged within 3 seconds, so events are acked immediately and
// processed in the background.
type SlackHandler struct {
	client  *slack.Client
	surface service.Surface
	orch    *service.Orchestrator
	logger  *zap.Logger
}

func NewSlackHandler(client *slack.Client, surface service.Surface, orch *service.Orchestrator, logger *zap.Logger) *SlackHandler {
	return &SlackHandler{client: client, surface: surface, orch: orch, logger: logger}
}

type slackEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge"`
	Event     slackEvent `json:"event"`
}

type slackEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	User     string `json:"user"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
}

// Events handles POST /slack/events.
func (h *SlackHandler) Events(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return
	}
	if !h.client.VerifySignature(
		c.GetHeader("X-Slack-Request-Timestamp"),
		c.GetHeader("X-Slack-Signature"), body) {
		h.logger.Warn("invalid slack signature", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	var envelope slackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	switch envelope.Type {
	case "url_verification":
		c.JSON(http.StatusOK, gin.H{"challenge": envelope.Challenge})
	case "event_callback":
		if h.shouldProcess(c.Request.Context(), envelope.Event) {
			go h.process(envelope.Event)
		}
		c.Status(http.StatusOK)
	default:
		c.Status(http.StatusOK)
	}
}

// shouldProcess filters out the bot's own messages and message edits so a
// reply never triggers another turn.
func (h *SlackHandler) shouldProcess(ctx context.Context, ev slackEvent) bool {
	if ev.Type != "app_mention" && ev.Type != "message" {
		return false
	}
	if ev.BotID != "" || ev.Subtype != "" {
		return false
	}
	if botID, err := h.client.BotUserID(ctx); err == nil && ev.User == botID {
		return false
	}
	return true
}

func (h *SlackHandler) process(ev slackEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), slackTurnTimeout)
	defer cancel()

	msg := model.IncomingMessage{
		Surface:   "slack",
		Text:      strings.TrimSpace(slackMentionPattern.ReplaceAllString(ev.Text, "")),
		SenderID:  ev.User,
		ChannelID: ev.Channel,
		ThreadID:  ev.ThreadTS,
		MessageTS: ev.TS,
	}
	if msg.ThreadID == "" {
		msg.ThreadID = ev.TS
	}

	// Reactions mark progress; their failures never affect the turn.
	_ = h.client.AddReaction(ctx, ev.Channel, ev.TS, "thinking_face")

	reply, err := h.orch.HandleMessage(ctx, h.surface, msg)
	_ = h.client.RemoveReaction(ctx, ev.Channel, ev.TS, "thinking_face")
	if err != nil {
		h.logger.Error("slack turn failed", zap.Error(err), zap.String("channel", ev.Channel))
		_ = h.client.AddReaction(ctx, ev.Channel, ev.TS, "x")
		if sendErr := h.surface.SendMessage(ctx, msg, service.ApologyReply); sendErr != nil {
			h.logger.Error("apology delivery failed", zap.Error(sendErr))
		}
		return
	}
	if sendErr := h.surface.SendMessage(ctx, msg, reply.Message); sendErr != nil {
		h.logger.Error("reply delivery failed", zap.Error(sendErr), zap.String("channel", ev.Channel))
		_ = h.client.AddReaction(ctx, ev.Channel, ev.TS, "x")
		return
	}
	_ = h.client.AddReaction(ctx, ev.Channel, ev.TS, "white_check_mark")
}
