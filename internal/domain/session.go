package domain

import "time"

// Ephemeral per-user UI state. These records live in the fast key-value
// store, are overwritten on every step of a walkthrough and carry no
// durability guarantee beyond the session.

// PreviousMessage identifies the last rendered message so the next step
// can edit it in place instead of posting a new one.
type PreviousMessage struct {
	UserID    int64     `json:"user_id"`
	MessageID int64     `json:"message_id"`
	AudioID   string    `json:"audio_id"`
	PostedAt  time.Time `json:"posted_at"`
}

// SessionOptions are the remember-session parameters the user toggles
// before starting a walkthrough.
type SessionOptions struct {
	Swap    bool `json:"swap"`    // show the translation side first
	Shuffle bool `json:"shuffle"` // randomize the word order
}

// RecallItem is one step of a recall session: which word to show and in
// which direction.
type RecallItem struct {
	WordID int64 `json:"word_id"`
	Swap   bool  `json:"swap"`
}
