package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/domain"
	"github.com/ipakeev/words-fan-bot/internal/transport/chat"
)

// pollTimeout is the long-poll hold time in seconds.
const pollTimeout = 25

type update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *message       `json:"message"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

type message struct {
	MessageID int64   `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      chatRef `json:"chat"`
	Text      string  `json:"text"`
}

type chatRef struct {
	ID int64 `json:"id"`
}

type callbackQuery struct {
	ID      string   `json:"id"`
	From    tgUser   `json:"from"`
	Message *message `json:"message"`
	Data    string   `json:"data"`
}

type tgUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
}

func (u tgUser) domain() domain.User {
	return domain.User{
		ID:           u.ID,
		IsBot:        u.IsBot,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LanguageCode: u.LanguageCode,
	}
}

type eventHandler interface {
	Handle(ev chat.Event)
}

// Poller is the update intake: it long-polls getUpdates and feeds each
// update into the handler as a chat.Event.
type Poller struct {
	client *Client
	bot    eventHandler
	log    *slog.Logger
}

// NewPoller creates a Poller over the client.
func NewPoller(client *Client, bot eventHandler, logger *slog.Logger) *Poller {
	return &Poller{
		client: client,
		bot:    bot,
		log:    logger.With("component", "poller"),
	}
}

// Run polls until ctx is cancelled. Transient poll failures back off
// and retry; cancellation is a clean exit.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := p.poll(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.ErrorContext(ctx, "poll updates", slog.String("error", err.Error()))
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			ev, ok := toEvent(upd)
			if !ok {
				continue
			}
			p.bot.Handle(ev)
		}
	}
}

func (p *Poller) poll(ctx context.Context, offset int64) ([]update, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(pollTimeout))
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}

	pollCtx, cancel := context.WithTimeout(ctx, (pollTimeout+10)*time.Second)
	defer cancel()

	var updates []update
	if err := p.client.call(pollCtx, "getUpdates", params, &updates); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil
		}
		return nil, err
	}
	return updates, nil
}

func toEvent(upd update) (chat.Event, bool) {
	switch {
	case upd.Message != nil && upd.Message.From != nil && !upd.Message.From.IsBot:
		return chat.Event{
			User:      upd.Message.From.domain(),
			ChatID:    upd.Message.Chat.ID,
			MessageID: upd.Message.MessageID,
			Text:      upd.Message.Text,
		}, true
	case upd.CallbackQuery != nil && !upd.CallbackQuery.From.IsBot:
		ev := chat.Event{
			User:       upd.CallbackQuery.From.domain(),
			CallbackID: upd.CallbackQuery.ID,
			Payload:    upd.CallbackQuery.Data,
		}
		if upd.CallbackQuery.Message != nil {
			ev.ChatID = upd.CallbackQuery.Message.Chat.ID
			ev.MessageID = upd.CallbackQuery.Message.MessageID
		}
		return ev, true
	}
	return chat.Event{}, false
}
