package telegram

import (
	"context"

	"Cadence/internal/articulation"
	"Cadence/internal/domain"
)

// Sink renders an action stream into one Telegram chat. Message actions
// become sendMessage calls; every other kind re-arms the composing
// indicator so the pause until the next message reads as typing.
type Sink struct {
	client *Client
	chatID int64
}

var _ articulation.Sink = (*Sink)(nil)

// NewSink binds a client to a destination chat.
func NewSink(client *Client, chatID int64) *Sink {
	return &Sink{client: client, chatID: chatID}
}

func (s *Sink) Deliver(ctx context.Context, action domain.ActionEvent) error {
	if action.Kind == domain.ActionMessage {
		return s.client.SendMessage(ctx, s.chatID, action.Content)
	}
	return s.client.SendChatAction(ctx, s.chatID, "typing")
}
