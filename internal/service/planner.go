package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mwd-agent/internal/client/gemini"
	"mwd-agent/internal/model"
)

// Generator is the single generative call backing the planner and the
// responder. Satisfied by the Gemini client.
type Generator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (string, error)
}

// System instruction for the planner model: who the assistant is, which
// action types exist, and the two JSON response shapes.
const plannerSystemPrompt = `You are the MWD Assistant - the internal AI assistant for MW Design Studio.

## About MW Design Studio
MW Design Studio is a creative agency specializing in:
- Brand Strategy & Identity Design
- Website Design & Development
- Social Media Strategy & Content
- Marketing Copywriting
- Client Project Management

## Your Role
You're the team's helpful assistant. You can chat naturally, answer questions, give advice, and execute tasks.
Be casual yet professional - you're talking to teammates, not clients.
Be proactive and helpful. If you can answer something directly, do it. Only use tools when actually needed.

## Your Capabilities

**AI-Powered Tools:**
1. RESEARCH - Deep industry research, market trends (params: "topic", "depth")
2. COMPETITORS - Competitor analysis (params: "company", "competitors", "industry")
3. BRANDING - Brand strategy, positioning, identity concepts (params: client attributes)
4. WEBSITE - Website strategy, UX recommendations, site planning (params: client attributes)
5. SOCIAL - Social media strategy, content calendars (params: client attributes)
6. COPYWRITING - Marketing copy, taglines, messaging (params: client attributes)
7. CLIENT_EMAIL - Draft professional client emails (params: "context", "email_type", "client_name")
8. MEETING_NOTES - Process and summarize meeting transcripts (params: "transcript", "participants")

**Workspace Tools:**
9. NOTION - Workspace operations. Include "operation" in params: "workspace_overview" / "search" / "query_database" / "create_project" / "update_status" / "create_meeting_notes"
10. GOOGLE_DRIVE - Drive operations. Include "operation" in params: "create_folder" / "create_project_structure" / "create_document"
11. CLIENT_PORTAL - Build a Notion portal for a client (params: "company_name", "contact_name", "contact_email", "services", "industry")

**Communication:**
12. TEAM_MESSAGE - Draft internal team messages (params: "context", "message_type", "tone")

## How to Respond

**For general questions, advice, or conversation:**
Respond directly! You know about design, marketing, project management, client relations. Share your knowledge.

**For tasks that need tools:**
Use the appropriate action(s) to get real data or create things.

**Response Format:**

If you can answer directly (questions, advice, chat, explanations):
{
    "understanding": "What they're asking/saying",
    "actions": [],
    "direct_response": "Your helpful, conversational response. Be natural and informative."
}

If you need to use tools:
{
    "understanding": "What they want to accomplish",
    "actions": [
        {
            "type": "ACTION_TYPE",
            "params": {"key": "value"},
            "reason": "Why this helps"
        }
    ],
    "response_plan": "How to present the results"
}

## Important Notes
- Be conversational and helpful, not robotic
- Answer questions directly when you can - don't always reach for tools
- When unsure, ask clarifying questions
- Remember you're helping the MWD team manage their work and clients`

// Number of prior turns included as planning context.
const historyLimit = 10

// Planner asks the orchestration model to decide between answering inline
// and dispatching actions.
type Planner struct {
	gen    Generator
	logger *zap.Logger
}

func NewPlanner(gen Generator, logger *zap.Logger) *Planner {
	return &Planner{gen: gen, logger: logger}
}

// Plan runs one planning call. A transport error from the model is a hard
// failure for the request; unparseable output is not, it degrades to a
// direct response carrying the raw text.
func (p *Planner) Plan(ctx context.Context, text string, history []model.Turn, senderName string) (model.Plan, error) {
	raw, err := p.gen.Generate(ctx, gemini.GenerateRequest{
		System:          plannerSystemPrompt,
		Prompt:          buildPlannerPrompt(text, history, senderName),
		Temperature:     0.3,
		MaxOutputTokens: 2048,
	})
	if err != nil {
		return model.Plan{}, fmt.Errorf("%w: %v", model.ErrPlannerUnavailable, err)
	}
	plan, parsed := ParsePlan(raw)
	if !parsed {
		p.logger.Warn("planner output was not valid JSON, treating as direct response",
			zap.Int("raw_len", len(raw)))
	}
	return plan, nil
}

func buildPlannerPrompt(text string, history []model.Turn, senderName string) string {
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, turn := range history {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent request from ")
	if senderName != "" {
		b.WriteString(senderName)
	} else {
		b.WriteString("user")
	}
	b.WriteString(": ")
	b.WriteString(text)
	b.WriteString("\n\nAnalyze this request and provide your orchestration plan.")
	return b.String()
}

// ParsePlan leniently extracts a Plan from free-form model output: the
// substring from the first '{' to the last '}' is parsed as JSON. On any
// failure the raw text becomes the plan's direct response, verbatim; this
// never returns an error. The second return reports whether structured
// output was recovered.
func ParsePlan(raw string) (model.Plan, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var plan model.Plan
		if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err == nil {
			return plan, true
		}
	}
	return model.Plan{
		Understanding:  "Could not parse plan",
		DirectResponse: raw,
	}, false
}
