// Package vocab implements the word scheduling engine: adding words to
// a user's study list, the learning/recallable state machine and the
// queries the chat flow renders from.
package vocab

import (
	"context"
	"log/slog"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type wordRepo interface {
	Upsert(ctx context.Context, w domain.Word) (*domain.Word, error)
	GetByText(ctx context.Context, translationCode, original string) (*domain.Word, error)
	GetByID(ctx context.Context, id int64) (*domain.Word, error)
	Count(ctx context.Context) (int64, error)
}

type userWordRepo interface {
	Upsert(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error)
	Get(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	MarkRemembered(ctx context.Context, userID, wordID int64, rememberedAt, nextOriginal, nextTranslation time.Time) (*domain.UserWord, error)
	UpdateShownOriginal(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error)
	UpdateShownTranslation(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error)
	Delete(ctx context.Context, userID, wordID int64) error
	Count(ctx context.Context, userID int64, translationCode string) (int, error)
	CountLearning(ctx context.Context, userID int64, translationCode string) (int, error)
	CountRecallable(ctx context.Context, userID int64, translationCode string, now time.Time) (int, error)
	IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueOriginal(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error)
	IDsDueTranslation(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error)
	ListDue(ctx context.Context, userID int64, translationCode string, now time.Time) ([]domain.UserWord, error)
}

type userRepo interface {
	Upsert(ctx context.Context, u domain.User) (*domain.User, error)
	UpsertLang(ctx context.Context, l domain.UserLang) (*domain.UserLang, error)
	Langs(ctx context.Context, userID int64) ([]domain.UserLang, error)
}

type translator interface {
	Lookup(ctx context.Context, translationCode, original string) (*domain.Word, error)
}

// audioProvider synthesizes pronunciation audio and returns the chat
// attachment id the word card is rendered with.
type audioProvider interface {
	Pronounce(ctx context.Context, langCode, text string) (string, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the vocabulary business logic.
type Service struct {
	words     wordRepo
	userWords userWordRepo
	users     userRepo
	dict      translator
	audio     audioProvider
	tx        txManager
	langs     config.Langs
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a new vocabulary service.
func NewService(
	log *slog.Logger,
	words wordRepo,
	userWords userWordRepo,
	users userRepo,
	dict translator,
	audio audioProvider,
	tx txManager,
	langs config.Langs,
) *Service {
	return &Service{
		words:     words,
		userWords: userWords,
		users:     users,
		dict:      dict,
		audio:     audio,
		tx:        tx,
		langs:     langs,
		log:       log.With("service", "vocab"),
		now:       time.Now,
	}
}
