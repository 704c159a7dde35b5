package service

import (
	"context"
	"encoding/json"
	"fmt"

	"mwd-agent/internal/model"
)

// Completer is the generative call backing the strategy deliverables.
// Satisfied by the Anthropic client.
type Completer interface {
	Complete(ctx context.Context, prompt string) model.GenResult
}

const brandingPrompt = `You are a branding expert helping create a comprehensive brand identity.

Based on the client information provided, create:
1. Brand positioning statement
2. Target audience definition
3. Brand personality (3-5 traits)
4. Color palette suggestions (primary, secondary, accent colors)
5. Typography recommendations
6. Key messaging points

Client Info:
%s

Return your response as a structured JSON object.`

const websitePrompt = `You are a website design strategist creating a website plan.

Based on the client information and branding, create:
1. Sitemap (main pages and structure)
2. Homepage layout description
3. Key page descriptions
4. Call-to-action strategy
5. User journey map

Client Info:
%s

Return your response as a structured JSON object.`

const socialPrompt = `You are a social media strategist creating a content plan.

Based on the client information and branding, create:
1. Platform recommendations (which social media platforms and why)
2. Content pillars (3-5 main themes)
3. Posting frequency recommendations
4. Sample post ideas (5 examples)
5. Hashtag strategy

Client Info:
%s

Return your response as a structured JSON object.`

const copywritingPrompt = `You are a professional copywriter creating marketing copy.

Based on the client information and branding, create:
1. Tagline options (3-5 variations)
2. About section copy
3. Value proposition statement
4. Service/Product descriptions
5. Email welcome sequence outline

Client Info:
%s

Return your response as a structured JSON object.`

// Strategy generates the four client-facing strategy deliverables.
type Strategy struct {
	completer Completer
}

func NewStrategy(completer Completer) *Strategy {
	return &Strategy{completer: completer}
}

func (s *Strategy) Branding(ctx context.Context, client map[string]any) model.GenResult {
	return s.run(ctx, brandingPrompt, client)
}

func (s *Strategy) Website(ctx context.Context, client map[string]any) model.GenResult {
	return s.run(ctx, websitePrompt, client)
}

func (s *Strategy) Social(ctx context.Context, client map[string]any) model.GenResult {
	return s.run(ctx, socialPrompt, client)
}

func (s *Strategy) Copywriting(ctx context.Context, client map[string]any) model.GenResult {
	return s.run(ctx, copywritingPrompt, client)
}

func (s *Strategy) run(ctx context.Context, prompt string, client map[string]any) model.GenResult {
	info, err := json.Marshal(client)
	if err != nil {
		return model.GenFailure(fmt.Errorf("marshal client info: %w", err))
	}
	return s.completer.Complete(ctx, fmt.Sprintf(prompt, info))
}
