package vocab

import (
	"context"
	"fmt"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// MarkRemembered moves the word out of the learning phase and starts
// both show clocks. The translation direction is staggered a day after
// the original so the two questions never land in the same session.
// Marking an already remembered word yields domain.ErrNotFound.
func (s *Service) MarkRemembered(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	now := s.now()
	firstDelay := domain.RecallDelay(0)
	uw, err := s.userWords.MarkRemembered(ctx, userID, wordID,
		now,
		now.Add(firstDelay),
		now.Add(firstDelay+domain.TranslationStagger),
	)
	if err != nil {
		return nil, fmt.Errorf("mark remembered %d/%d: %w", userID, wordID, err)
	}
	return uw, nil
}

// RecordShownOriginal advances the original-direction clock to the next
// recall delay. The translation clock is untouched.
func (s *Service) RecordShownOriginal(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	uw, next, err := s.nextShown(ctx, userID, wordID, func(uw *domain.UserWord) int { return uw.NShownOriginal })
	if err != nil {
		return nil, err
	}
	out, err := s.userWords.UpdateShownOriginal(ctx, uw.ID, s.now().Add(domain.RecallDelay(next)), next)
	if err != nil {
		return nil, fmt.Errorf("update shown original %d/%d: %w", userID, wordID, err)
	}
	return out, nil
}

// RecordShownTranslation advances the translation-direction clock.
func (s *Service) RecordShownTranslation(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	uw, next, err := s.nextShown(ctx, userID, wordID, func(uw *domain.UserWord) int { return uw.NShownTranslation })
	if err != nil {
		return nil, err
	}
	out, err := s.userWords.UpdateShownTranslation(ctx, uw.ID, s.now().Add(domain.RecallDelay(next)), next)
	if err != nil {
		return nil, fmt.Errorf("update shown translation %d/%d: %w", userID, wordID, err)
	}
	return out, nil
}

// nextShown loads the record and computes the next shown count for one
// direction, guarding both state-machine invariants: the record must be
// recallable and the recall table must not be exhausted.
func (s *Service) nextShown(ctx context.Context, userID, wordID int64, count func(*domain.UserWord) int) (*domain.UserWord, int, error) {
	uw, err := s.userWords.Get(ctx, userID, wordID)
	if err != nil {
		return nil, 0, fmt.Errorf("get user word %d/%d: %w", userID, wordID, err)
	}
	if uw.IsLearning() {
		return nil, 0, domain.NewValidationError("word", "not remembered yet")
	}
	next := count(uw) + 1
	if next >= domain.RecallSteps {
		return nil, 0, domain.NewValidationError("word", "recall schedule exhausted")
	}
	return uw, next, nil
}

// DeleteWord removes the word from the user's study list. The shared
// dictionary entry stays.
func (s *Service) DeleteWord(ctx context.Context, userID, wordID int64) error {
	if err := s.userWords.Delete(ctx, userID, wordID); err != nil {
		return fmt.Errorf("delete user word %d/%d: %w", userID, wordID, err)
	}
	return nil
}

// CountWords returns how many words the user tracks under the pair.
func (s *Service) CountWords(ctx context.Context, userID int64, translationCode string) (int, error) {
	return s.userWords.Count(ctx, userID, translationCode)
}

// CountLearning returns the number of words still in the learning phase.
func (s *Service) CountLearning(ctx context.Context, userID int64, translationCode string) (int, error) {
	return s.userWords.CountLearning(ctx, userID, translationCode)
}

// CountRecallable returns the number of distinct words due on either
// show clock.
func (s *Service) CountRecallable(ctx context.Context, userID int64, translationCode string) (int, error) {
	return s.userWords.CountRecallable(ctx, userID, translationCode, s.now())
}

// IDsLearning returns learning-phase word ids in insertion order.
func (s *Service) IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return s.userWords.IDsLearning(ctx, userID, translationCode)
}

// IDsDueOriginal returns word ids due in the original direction.
func (s *Service) IDsDueOriginal(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return s.userWords.IDsDueOriginal(ctx, userID, translationCode, s.now())
}

// IDsDueTranslation returns word ids due in the translation direction.
func (s *Service) IDsDueTranslation(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return s.userWords.IDsDueTranslation(ctx, userID, translationCode, s.now())
}

// WordsDue returns the full learning records due on either clock.
func (s *Service) WordsDue(ctx context.Context, userID int64, translationCode string) ([]domain.UserWord, error) {
	return s.userWords.ListDue(ctx, userID, translationCode, s.now())
}
