package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mwd-agent/internal/client/gemini"
	"mwd-agent/internal/model"
)

type stubGenerator struct {
	reply     string
	err       error
	lastReq   gemini.GenerateRequest
	callCount int
}

func (s *stubGenerator) Generate(_ context.Context, req gemini.GenerateRequest) (string, error) {
	s.callCount++
	s.lastReq = req
	return s.reply, s.err
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantParsed  bool
		wantActions int
		wantDirect  string
	}{
		{
			name:       "direct response",
			raw:        `{"understanding": "greeting", "actions": [], "direct_response": "Hey!"}`,
			wantParsed: true,
			wantDirect: "Hey!",
		},
		{
			name: "actions with surrounding prose",
			raw: "Here is the plan:\n```json\n" +
				`{"understanding": "research request", "actions": [{"type": "RESEARCH", "params": {"topic": "fintech"}}], "response_plan": "summarize"}` +
				"\n```",
			wantParsed:  true,
			wantActions: 1,
		},
		{
			name:       "no json at all",
			raw:        "Sure, happy to help with that!",
			wantParsed: false,
		},
		{
			name:       "malformed json",
			raw:        `{"understanding": "broken`,
			wantParsed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, parsed := ParsePlan(tt.raw)
			assert.Equal(t, tt.wantParsed, parsed)
			if tt.wantParsed {
				assert.Len(t, plan.Actions, tt.wantActions)
				if tt.wantDirect != "" {
					assert.Equal(t, tt.wantDirect, plan.DirectResponse)
				}
			} else {
				// Unparseable output degrades to a direct response carrying
				// the model's text verbatim.
				assert.Equal(t, "Could not parse plan", plan.Understanding)
				assert.Equal(t, tt.raw, plan.DirectResponse)
				assert.True(t, plan.Direct())
			}
		})
	}
}

func TestPlannerTransportErrorIsHardFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	p := NewPlanner(gen, zap.NewNop())

	_, err := p.Plan(context.Background(), "research fintech", nil, "Dana")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlannerUnavailable)
}

func TestPlannerPromptIncludesHistoryAndSender(t *testing.T) {
	gen := &stubGenerator{reply: `{"understanding": "ok", "actions": [], "direct_response": "hi"}`}
	p := NewPlanner(gen, zap.NewNop())

	history := []model.Turn{
		{Role: "user", Content: "what packages do we offer?"},
		{Role: "assistant", Content: "standard and premium"},
	}
	plan, err := p.Plan(context.Background(), "and pricing?", history, "Dana")
	require.NoError(t, err)
	assert.Equal(t, "hi", plan.DirectResponse)

	prompt := gen.lastReq.Prompt
	assert.Contains(t, prompt, "what packages do we offer?")
	assert.Contains(t, prompt, "assistant: standard and premium")
	assert.Contains(t, prompt, "Current request from Dana: and pricing?")
	assert.Equal(t, plannerSystemPrompt, gen.lastReq.System)
}

func TestPlannerPromptCapsHistory(t *testing.T) {
	gen := &stubGenerator{reply: `{"actions": []}`}
	p := NewPlanner(gen, zap.NewNop())

	history := make([]model.Turn, 0, 25)
	for i := 0; i < 25; i++ {
		history = append(history, model.Turn{Role: "user", Content: "turn"})
	}
	_, err := p.Plan(context.Background(), "hello", history, "")
	require.NoError(t, err)
	assert.Equal(t, historyLimit, strings.Count(gen.lastReq.Prompt, "user: turn"))
}
