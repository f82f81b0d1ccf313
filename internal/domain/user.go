package domain

import "time"

// User holds the identity attributes reported by the chat transport.
// The ID is the transport's user id, not a generated one.
type User struct {
	ID           int64
	IsBot        bool
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	JoinedAt     time.Time
}

// UserLang is an active translation pair selected by a user.
// A user may hold several pairs at once.
type UserLang struct {
	UserID          int64
	TranslationCode string
}

// UserWord is the per-user learning record for one Word.
//
// The record starts in the learning phase (RememberedAt nil, both show
// clocks nil). MarkRemembered moves it to the recallable phase: both
// clocks are set and from then on each direction advances independently
// through the recall delay table.
type UserWord struct {
	ID                  int64
	UserID              int64
	TranslationCode     string
	WordID              int64
	AddedAt             time.Time
	RememberedAt        *time.Time
	NextShowOriginal    *time.Time
	NextShowTranslation *time.Time
	NShownOriginal      int
	NShownTranslation   int
}

// IsLearning reports whether the word has never been marked remembered.
func (uw *UserWord) IsLearning() bool { return uw.RememberedAt == nil }

// IsDueOriginal reports whether the original-direction clock has elapsed.
func (uw *UserWord) IsDueOriginal(now time.Time) bool {
	return uw.RememberedAt != nil && uw.NextShowOriginal != nil && !uw.NextShowOriginal.After(now)
}

// IsDueTranslation reports whether the translation-direction clock has elapsed.
func (uw *UserWord) IsDueTranslation(now time.Time) bool {
	return uw.RememberedAt != nil && uw.NextShowTranslation != nil && !uw.NextShowTranslation.After(now)
}

// IsDue reports whether either direction is due. A word due on both
// clocks is still a single due word.
func (uw *UserWord) IsDue(now time.Time) bool {
	return uw.IsDueOriginal(now) || uw.IsDueTranslation(now)
}
