package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mwd-agent/internal/model"
)

func TestResearchTopicUnconfigured(t *testing.T) {
	c := NewClient(Config{})
	res := c.ResearchTopic(context.Background(), "fintech", "quick")
	assert.False(t, res.Success)
	assert.Equal(t, model.ErrNotConfigured.Error(), res.Error)
}

func TestResearchTopicDepthControlsTokenBudget(t *testing.T) {
	tests := []struct {
		depth string
		want  int
	}{
		{"quick", 1024},
		{"moderate", 2048},
		{"comprehensive", 4096},
		{"", 2048},
	}
	for _, tt := range tests {
		t.Run("depth "+tt.depth, func(t *testing.T) {
			var got chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				fmt.Fprint(w, `{"choices": [{"message": {"content": "findings"}}]}`)
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Model: "sonar-pro"})
			res := c.ResearchTopic(context.Background(), "fintech trends", tt.depth)
			require.True(t, res.Success)
			assert.Equal(t, tt.want, got.MaxTokens)
		})
	}
}

func TestResearchTopicCarriesCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"choices": [{"message": {"content": "findings"}}],
			"citations": ["https://example.com/a", "https://example.com/b"]
		}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Model: "sonar-pro"})
	res := c.ResearchTopic(context.Background(), "fintech", "quick")
	require.True(t, res.Success)
	assert.Equal(t, "findings", res.Response)
	assert.Len(t, res.Citations, 2)
}

func TestResearchCompetitorsPromptListsKnownCompetitors(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "analysis"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL, Model: "sonar-pro"})
	res := c.ResearchCompetitors(context.Background(), "Acme", []string{"Globex", "Initech"}, "coffee")
	require.True(t, res.Success)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Known competitors: Globex, Initech")
	assert.Contains(t, got.Messages[1].Content, "coffee industry")
}
