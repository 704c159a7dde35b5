package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mwd-agent/internal/model"
)

// Surface is a chat platform the orchestrator can converse on. Implemented
// for Slack and Google Chat.
type Surface interface {
	// Name identifies the surface in logs and replies ("slack", "gchat").
	Name() string
	// ThreadHistory returns prior turns of the thread, oldest first.
	ThreadHistory(ctx context.Context, msg model.IncomingMessage) ([]model.Turn, error)
	// SendMessage posts text into the thread the message came from.
	SendMessage(ctx context.Context, msg model.IncomingMessage, text string) error
	// MarkupGuide describes the formatting dialect for the responder prompt.
	MarkupGuide() string
}

// Canned replies for turns the pipeline cannot serve. Handlers deliver
// ApologyReply themselves since delivery differs per surface.
const (
	ClarifyReply = "I didn't catch that. How can I help you today?"
	ApologyReply = "Sorry, I encountered an error processing your request. Please try again."
)

// Orchestrator runs the plan, dispatch, respond loop shared by every chat
// surface.
type Orchestrator struct {
	planner    *Planner
	dispatcher *Dispatcher
	responder  *Responder
	logger     *zap.Logger
}

func NewOrchestrator(planner *Planner, dispatcher *Dispatcher, responder *Responder, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		planner:    planner,
		dispatcher: dispatcher,
		responder:  responder,
		logger:     logger,
	}
}

// HandleMessage runs one chat turn and returns the reply to post. An empty
// message short-circuits to a clarifying question without touching the
// planner. History fetch failures degrade to planning without context. A
// planner or responder transport error returns the error; callers post the
// apology themselves since delivery differs per surface.
func (o *Orchestrator) HandleMessage(ctx context.Context, surface Surface, msg model.IncomingMessage) (model.ChatReply, error) {
	requestID := uuid.NewString()
	logger := o.logger.With(
		zap.String("request_id", requestID),
		zap.String("surface", surface.Name()),
		zap.String("channel", msg.ChannelID))

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return model.ChatReply{Message: ClarifyReply}, nil
	}

	history, err := surface.ThreadHistory(ctx, msg)
	if err != nil {
		logger.Warn("thread history unavailable, planning without context", zap.Error(err))
		history = nil
	}

	plan, err := o.planner.Plan(ctx, text, history, msg.SenderName)
	if err != nil {
		logger.Error("planning failed", zap.Error(err))
		return model.ChatReply{}, err
	}
	logger.Info("plan ready",
		zap.String("understanding", plan.Understanding),
		zap.Int("actions", len(plan.Actions)))

	if plan.Direct() {
		return model.ChatReply{Message: plan.DirectResponse, Plan: &plan}, nil
	}

	results := o.dispatcher.Execute(ctx, plan.Actions)
	actionsTaken := make([]string, 0, len(results))
	for _, res := range results {
		actionsTaken = append(actionsTaken, res.Action)
	}

	reply, err := o.responder.Summarize(ctx, text, plan, results, surface.MarkupGuide())
	if err != nil {
		return model.ChatReply{}, err
	}
	return model.ChatReply{
		Message:      reply,
		ActionsTaken: actionsTaken,
		Results:      results,
		Plan:         &plan,
	}, nil
}
