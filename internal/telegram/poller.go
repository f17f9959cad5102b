package telegram

import (
	"context"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/app"
	"github.com/rs/zerolog"
)

// BotAPI is the slice of the client the poller needs.
type BotAPI interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, options []string) error
}

// MessageHandler advances a conversation for one inbound message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, sessionID int64, text string) app.Reply
}

const (
	pollTimeoutSeconds = 30
	pollErrorBackoff   = 3 * time.Second
)

// Poller drives the intake dialogue off Telegram long polling. Updates in a
// batch are handled sequentially, which keeps each chat's messages in arrival
// order.
type Poller struct {
	api     BotAPI
	handler MessageHandler
	log     zerolog.Logger
	backoff time.Duration
}

func NewPoller(api BotAPI, handler MessageHandler, log zerolog.Logger) *Poller {
	return &Poller{api: api, handler: handler, log: log, backoff: pollErrorBackoff}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried after a
// backoff; the offset only advances past updates that were dispatched, so a
// failed fetch re-delivers rather than drops.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.api.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn().Err(err).Msg("poll failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}

			reply := p.handler.HandleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
			if reply.Text == "" {
				continue
			}
			if err := p.api.SendMessage(ctx, u.Message.Chat.ID, reply.Text, reply.Options); err != nil {
				p.log.Warn().Err(err).Int64("chat_id", u.Message.Chat.ID).Msg("failed to send reply")
			}
		}
	}
}
