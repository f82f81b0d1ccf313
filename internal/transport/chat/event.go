// Package chat implements the conversational surface of the bot: the
// transport contract, callback payloads, message rendering and the
// update handlers. The concrete messenger API client stays behind the
// Sender interface.
package chat

import (
	"context"
	"errors"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

var (
	// ErrStaleCallback marks a callback query the transport no longer
	// accepts an answer for (too old, or the message is gone). Handlers
	// treat it as noise, not as a failure.
	ErrStaleCallback = errors.New("stale callback query")

	// ErrNotModified comes back from an edit that changes nothing.
	ErrNotModified = errors.New("message is not modified")
)

// Event is a single incoming update: either a user message (Text set)
// or a callback-button press (CallbackID and Payload set).
type Event struct {
	User       domain.User
	ChatID     int64
	MessageID  int64
	Text       string
	CallbackID string
	Payload    string
}

// IsCallback reports whether the event is a callback-button press.
func (e Event) IsCallback() bool { return e.CallbackID != "" }

// Sender is the outgoing half of the chat transport. Implementations
// return ErrStaleCallback and ErrNotModified for the corresponding
// transport conditions so handlers can tell them from real failures.
type Sender interface {
	// SendMessage posts a text message and returns its message id.
	SendMessage(ctx context.Context, chatID int64, text string, kb *Keyboard) (int64, error)
	// SendAudio posts an audio attachment with a caption and returns
	// the message id.
	SendAudio(ctx context.Context, chatID int64, audioID, caption string, kb *Keyboard) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, kb *Keyboard) error
	EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, kb *Keyboard) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	// AnswerCallback acknowledges a callback query, optionally with a
	// short toast text.
	AnswerCallback(ctx context.Context, callbackID, text string) error
	// UploadAudio posts a local audio file to the chat and returns the
	// reusable attachment id.
	UploadAudio(ctx context.Context, chatID int64, path string) (string, error)
}
