package service

import (
	"context"

	"mwd-agent/internal/client/slack"
	"mwd-agent/internal/model"
)

const slackHistoryFetchLimit = 20

// SlackSurface adapts the Slack client to the orchestrator.
type SlackSurface struct {
	client *slack.Client
}

func NewSlackSurface(client *slack.Client) *SlackSurface {
	return &SlackSurface{client: client}
}

func (s *SlackSurface) Name() string { return "slack" }

// ThreadHistory maps the Slack thread into planner turns. The triggering
// message itself is excluded so it is not fed back as context.
func (s *SlackSurface) ThreadHistory(ctx context.Context, msg model.IncomingMessage) ([]model.Turn, error) {
	if msg.ThreadID == "" {
		return nil, nil
	}
	botID, err := s.client.BotUserID(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.client.ThreadReplies(ctx, msg.ChannelID, msg.ThreadID, slackHistoryFetchLimit)
	if err != nil {
		return nil, err
	}
	turns := make([]model.Turn, 0, len(messages))
	for _, m := range messages {
		if m.TS == msg.MessageTS || m.Text == "" {
			continue
		}
		role := "user"
		if m.BotID != "" || m.User == botID {
			role = "assistant"
		}
		turns = append(turns, model.Turn{Role: role, Content: m.Text})
	}
	return turns, nil
}

func (s *SlackSurface) SendMessage(ctx context.Context, msg model.IncomingMessage, text string) error {
	thread := msg.ThreadID
	if thread == "" {
		thread = msg.MessageTS
	}
	_, err := s.client.PostMessage(ctx, msg.ChannelID, thread, text)
	return err
}

func (s *SlackSurface) MarkupGuide() string {
	return "Slack mrkdwn: *bold*, _italic_, `code`, bullet lists with '-'. No markdown headers or tables."
}
