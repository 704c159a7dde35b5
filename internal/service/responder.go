package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mwd-agent/internal/client/gemini"
	"mwd-agent/internal/model"
)

const responderSystemPrompt = `You are the MWD Assistant summarizing completed work for the MW Design Studio team.
You are given the original request, the orchestration plan, and the raw results of each action.
Write the reply that will be posted back to the team chat.

Guidelines:
- Lead with the outcome, then the useful detail. Keep it scannable.
- Surface real content from the results (links, ids, key findings), not meta commentary.
- If an action failed, say so plainly and point at what did work.
- Stay casual yet professional, you are talking to teammates.`

// Responder turns raw action results into the message posted back to chat.
type Responder struct {
	gen    Generator
	logger *zap.Logger
}

func NewResponder(gen Generator, logger *zap.Logger) *Responder {
	return &Responder{gen: gen, logger: logger}
}

// Summarize composes the final chat reply. markupGuide tells the model which
// formatting dialect the destination surface understands. A model error here
// is a hard failure; the caller falls back to its apology message.
func (r *Responder) Summarize(ctx context.Context, originalRequest string, plan model.Plan, results []model.ActionResult, markupGuide string) (string, error) {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	prompt := fmt.Sprintf(`Original request: %s

Understanding: %s

Response plan: %s

Action results:
%s

Formatting: %s

Write the reply now.`, originalRequest, plan.Understanding, plan.ResponsePlan, resultsJSON, markupGuide)

	reply, err := r.gen.Generate(ctx, gemini.GenerateRequest{
		System:          responderSystemPrompt,
		Prompt:          prompt,
		Temperature:     0.7,
		MaxOutputTokens: 2048,
	})
	if err != nil {
		r.logger.Error("responder generation failed", zap.Error(err))
		return "", err
	}
	return reply, nil
}
