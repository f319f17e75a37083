package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Handler consumes one incoming chat line.
type Handler func(ctx context.Context, chatID int64, text string)

// Poller long-polls getUpdates and feeds text messages to the handler.
// Updates are handled synchronously in arrival order, so playback for one
// turn finishes before the next update is consumed.
type Poller struct {
	client  *Client
	handler Handler
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
}

// NewPoller wires a client to a handler.
func NewPoller(client *Client, handler Handler, logger *slog.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		timeout: 30 * time.Second,
		backoff: 3 * time.Second,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled and returns the context's error.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("telegram poll failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}
			p.handler(ctx, update.Message.Chat.ID, update.Message.Text)
		}
	}
}
