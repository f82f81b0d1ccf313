package vocab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/domain"
	"github.com/ipakeev/words-fan-bot/pkg/ctxutil"
)

// AddResult is the outcome of AddWord.
type AddResult struct {
	Word *domain.Word
	// AlreadyAdded reports that the user was tracking the word before
	// this call; re-adding never resets the learning record.
	AlreadyAdded bool
}

// AddWord validates the raw message text, resolves it to a dictionary
// word (fetching profile and audio on first encounter) and attaches it
// to the user's study list. The word itself is shared between users;
// the learning record is per user.
func (s *Service) AddWord(ctx context.Context, userID int64, translationCode, text string) (*AddResult, error) {
	original, err := normalizeOriginal(text)
	if err != nil {
		return nil, err
	}

	word, err := s.words.GetByText(ctx, translationCode, original)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		word, err = s.fetchWord(ctx, translationCode, original)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("get word %q: %w", original, err)
	}

	// A cached word may carry an empty profile; it is as unknown to the
	// user as a fresh dictionary miss.
	if len(word.Translations) == 0 {
		return nil, fmt.Errorf("word %q: %w", original, domain.ErrTranslationNotFound)
	}

	addedAt := s.now()
	var stored *domain.UserWord
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if word.ID == 0 {
			word, err = s.words.Upsert(ctx, *word)
			if err != nil {
				return fmt.Errorf("upsert word %q: %w", original, err)
			}
		}
		stored, err = s.userWords.Upsert(ctx, domain.UserWord{
			UserID:          userID,
			TranslationCode: word.TranslationCode,
			WordID:          word.ID,
			AddedAt:         addedAt,
		})
		if err != nil {
			return fmt.Errorf("upsert user word %q: %w", original, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Timestamps lose precision on the database round trip, so the
	// freshness check allows a small tolerance instead of equality.
	return &AddResult{
		Word:         word,
		AlreadyAdded: addedAt.Sub(stored.AddedAt) > time.Second,
	}, nil
}

// fetchWord pulls the word profile from the dictionary and synthesizes
// pronunciation audio. Audio is best effort: the word is usable
// without it.
func (s *Service) fetchWord(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	word, err := s.dict.Lookup(ctx, translationCode, original)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", original, err)
	}
	if len(word.Translations) == 0 {
		return nil, fmt.Errorf("word %q: %w", original, domain.ErrTranslationNotFound)
	}

	audioID, err := s.audio.Pronounce(ctx, s.langs.ForeignCode(translationCode), word.Original)
	if err != nil {
		attrs := []any{slog.String("original", word.Original), slog.String("error", err.Error())}
		if userID, ok := ctxutil.UserIDFromCtx(ctx); ok {
			attrs = append(attrs, slog.Int64("user_id", userID))
		}
		s.log.WarnContext(ctx, "pronunciation unavailable", attrs...)
	} else {
		word.AudioID = audioID
	}

	word.AddedAt = s.now()
	return word, nil
}

// GetWord returns a dictionary word by its (pair, text) key.
func (s *Service) GetWord(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	return s.words.GetByText(ctx, translationCode, original)
}

// GetWordByID returns a dictionary word by primary key.
func (s *Service) GetWordByID(ctx context.Context, id int64) (*domain.Word, error) {
	return s.words.GetByID(ctx, id)
}

// CountDictionary returns the total size of the shared dictionary.
func (s *Service) CountDictionary(ctx context.Context) (int64, error) {
	return s.words.Count(ctx)
}
