package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// maxTextLen is the transport's caption limit; longer renders are cut.
const maxTextLen = 1024

// previousMessageStore is the slice of session state the messenger
// needs: where the last rendered message lives.
type previousMessageStore interface {
	SetPreviousMessage(ctx context.Context, msg domain.PreviousMessage) error
	PreviousMessage(ctx context.Context, userID int64) (*domain.PreviousMessage, error)
	DeletePreviousMessage(ctx context.Context, userID int64) error
}

// Messenger renders each step of a conversation into a single chat
// message, editing it in place when possible. The previous-message
// info is cached in process and falls back to the state store after a
// restart.
type Messenger struct {
	sender Sender
	states previousMessageStore
	log    *slog.Logger

	mu    sync.Mutex
	cache map[int64]*domain.PreviousMessage
}

// NewMessenger creates a Messenger.
func NewMessenger(sender Sender, states previousMessageStore, logger *slog.Logger) *Messenger {
	return &Messenger{
		sender: sender,
		states: states,
		log:    logger.With("component", "messenger"),
		cache:  make(map[int64]*domain.PreviousMessage),
	}
}

// Send posts a fresh message, deleting the previous rendered one first.
func (m *Messenger) Send(ctx context.Context, userID int64, text, audioID string, kb *Keyboard) error {
	text = truncate(text)
	if err := m.deletePrevious(ctx, userID); err != nil {
		// Losing the old message is cosmetic; the new one still goes out.
		m.log.WarnContext(ctx, "delete previous message",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}

	var (
		messageID int64
		err       error
	)
	if audioID != "" {
		messageID, err = m.sender.SendAudio(ctx, userID, audioID, text, kb)
	} else {
		messageID, err = m.sender.SendMessage(ctx, userID, text, kb)
	}
	if err != nil {
		return fmt.Errorf("send to %d: %w", userID, err)
	}
	return m.rememberPrevious(ctx, userID, messageID, audioID)
}

// Edit rewrites the previous rendered message in place. A missing
// previous message or a different audio attachment forces a fresh send
// instead: the transport cannot swap an attachment by editing.
func (m *Messenger) Edit(ctx context.Context, userID int64, text, audioID string, kb *Keyboard) error {
	text = truncate(text)
	info, err := m.previous(ctx, userID)
	if err != nil {
		return err
	}
	if info == nil || info.AudioID != audioID {
		return m.Send(ctx, userID, text, audioID, kb)
	}

	if audioID != "" {
		err = m.sender.EditMessageCaption(ctx, userID, info.MessageID, text, kb)
	} else {
		err = m.sender.EditMessageText(ctx, userID, info.MessageID, text, kb)
	}
	if errors.Is(err, ErrNotModified) {
		m.log.WarnContext(ctx, "message is not modified", slog.Int64("user_id", userID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("edit for %d: %w", userID, err)
	}
	return nil
}

func (m *Messenger) previous(ctx context.Context, userID int64) (*domain.PreviousMessage, error) {
	m.mu.Lock()
	info := m.cache[userID]
	m.mu.Unlock()
	if info != nil {
		return info, nil
	}
	info, err := m.states.PreviousMessage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("previous message of %d: %w", userID, err)
	}
	return info, nil
}

func (m *Messenger) rememberPrevious(ctx context.Context, userID, messageID int64, audioID string) error {
	info := domain.PreviousMessage{
		UserID:    userID,
		MessageID: messageID,
		AudioID:   audioID,
		PostedAt:  time.Now().UTC(),
	}
	m.mu.Lock()
	m.cache[userID] = &info
	m.mu.Unlock()
	if err := m.states.SetPreviousMessage(ctx, info); err != nil {
		return fmt.Errorf("remember previous message of %d: %w", userID, err)
	}
	return nil
}

func (m *Messenger) deletePrevious(ctx context.Context, userID int64) error {
	info, err := m.previous(ctx, userID)
	if err != nil || info == nil {
		return err
	}
	if err := m.sender.DeleteMessage(ctx, userID, info.MessageID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.cache, userID)
	m.mu.Unlock()
	return m.states.DeletePreviousMessage(ctx, userID)
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTextLen {
		return text
	}
	return string(runes[:maxTextLen])
}
