package service

import (
	"context"

	"mwd-agent/internal/client/gchat"
	"mwd-agent/internal/model"
)

const gchatHistoryFetchLimit = 20

// GChatSurface adapts the Google Chat client to the orchestrator. Replies
// are normally delivered synchronously in the webhook response; SendMessage
// exists for out-of-band posts.
type GChatSurface struct {
	client *gchat.Client
}

func NewGChatSurface(client *gchat.Client) *GChatSurface {
	return &GChatSurface{client: client}
}

func (s *GChatSurface) Name() string { return "gchat" }

func (s *GChatSurface) ThreadHistory(ctx context.Context, msg model.IncomingMessage) ([]model.Turn, error) {
	if msg.ThreadID == "" {
		return nil, nil
	}
	messages, err := s.client.ListThreadMessages(ctx, msg.ChannelID, msg.ThreadID, gchatHistoryFetchLimit)
	if err != nil {
		return nil, err
	}
	turns := make([]model.Turn, 0, len(messages))
	for _, m := range messages {
		if m.Name == msg.MessageTS || m.Text == "" {
			continue
		}
		role := "user"
		if m.Sender.Type == "BOT" {
			role = "assistant"
		}
		turns = append(turns, model.Turn{Role: role, Content: m.Text})
	}
	return turns, nil
}

func (s *GChatSurface) SendMessage(ctx context.Context, msg model.IncomingMessage, text string) error {
	return s.client.CreateMessage(ctx, msg.ChannelID, msg.ThreadID, text)
}

func (s *GChatSurface) MarkupGuide() string {
	return "Google Chat formatting: *bold*, _italic_, `code`, bullet lists with '-'. No markdown headers or tables."
}
