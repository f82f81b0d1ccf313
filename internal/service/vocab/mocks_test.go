package vocab

import (
	"context"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// Hand-rolled func-field mocks for the consumer-defined interfaces.
// A nil func means the test does not expect that call.

type wordRepoMock struct {
	UpsertFunc    func(ctx context.Context, w domain.Word) (*domain.Word, error)
	GetByTextFunc func(ctx context.Context, translationCode, original string) (*domain.Word, error)
	GetByIDFunc   func(ctx context.Context, id int64) (*domain.Word, error)
	CountFunc     func(ctx context.Context) (int64, error)
}

func (m *wordRepoMock) Upsert(ctx context.Context, w domain.Word) (*domain.Word, error) {
	return m.UpsertFunc(ctx, w)
}

func (m *wordRepoMock) GetByText(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	return m.GetByTextFunc(ctx, translationCode, original)
}

func (m *wordRepoMock) GetByID(ctx context.Context, id int64) (*domain.Word, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *wordRepoMock) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

type userWordRepoMock struct {
	UpsertFunc                 func(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error)
	GetFunc                    func(ctx context.Context, userID, wordID int64) (*domain.UserWord, error)
	MarkRememberedFunc         func(ctx context.Context, userID, wordID int64, rememberedAt, nextOriginal, nextTranslation time.Time) (*domain.UserWord, error)
	UpdateShownOriginalFunc    func(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error)
	UpdateShownTranslationFunc func(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error)
	DeleteFunc                 func(ctx context.Context, userID, wordID int64) error
	CountFunc                  func(ctx context.Context, userID int64, translationCode string) (int, error)
	CountLearningFunc          func(ctx context.Context, userID int64, translationCode string) (int, error)
	CountRecallableFunc        func(ctx context.Context, userID int64, translationCode string, now time.Time) (int, error)
	IDsLearningFunc            func(ctx context.Context, userID int64, translationCode string) ([]int64, error)
	IDsDueOriginalFunc         func(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error)
	IDsDueTranslationFunc      func(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error)
	ListDueFunc                func(ctx context.Context, userID int64, translationCode string, now time.Time) ([]domain.UserWord, error)
}

func (m *userWordRepoMock) Upsert(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
	return m.UpsertFunc(ctx, uw)
}

func (m *userWordRepoMock) Get(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	return m.GetFunc(ctx, userID, wordID)
}

func (m *userWordRepoMock) MarkRemembered(ctx context.Context, userID, wordID int64, rememberedAt, nextOriginal, nextTranslation time.Time) (*domain.UserWord, error) {
	return m.MarkRememberedFunc(ctx, userID, wordID, rememberedAt, nextOriginal, nextTranslation)
}

func (m *userWordRepoMock) UpdateShownOriginal(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error) {
	return m.UpdateShownOriginalFunc(ctx, id, nextShow, nShown)
}

func (m *userWordRepoMock) UpdateShownTranslation(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error) {
	return m.UpdateShownTranslationFunc(ctx, id, nextShow, nShown)
}

func (m *userWordRepoMock) Delete(ctx context.Context, userID, wordID int64) error {
	return m.DeleteFunc(ctx, userID, wordID)
}

func (m *userWordRepoMock) Count(ctx context.Context, userID int64, translationCode string) (int, error) {
	return m.CountFunc(ctx, userID, translationCode)
}

func (m *userWordRepoMock) CountLearning(ctx context.Context, userID int64, translationCode string) (int, error) {
	return m.CountLearningFunc(ctx, userID, translationCode)
}

func (m *userWordRepoMock) CountRecallable(ctx context.Context, userID int64, translationCode string, now time.Time) (int, error) {
	return m.CountRecallableFunc(ctx, userID, translationCode, now)
}

func (m *userWordRepoMock) IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return m.IDsLearningFunc(ctx, userID, translationCode)
}

func (m *userWordRepoMock) IDsDueOriginal(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error) {
	return m.IDsDueOriginalFunc(ctx, userID, translationCode, now)
}

func (m *userWordRepoMock) IDsDueTranslation(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error) {
	return m.IDsDueTranslationFunc(ctx, userID, translationCode, now)
}

func (m *userWordRepoMock) ListDue(ctx context.Context, userID int64, translationCode string, now time.Time) ([]domain.UserWord, error) {
	return m.ListDueFunc(ctx, userID, translationCode, now)
}

type userRepoMock struct {
	UpsertFunc     func(ctx context.Context, u domain.User) (*domain.User, error)
	UpsertLangFunc func(ctx context.Context, l domain.UserLang) (*domain.UserLang, error)
	LangsFunc      func(ctx context.Context, userID int64) ([]domain.UserLang, error)
}

func (m *userRepoMock) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	return m.UpsertFunc(ctx, u)
}

func (m *userRepoMock) UpsertLang(ctx context.Context, l domain.UserLang) (*domain.UserLang, error) {
	return m.UpsertLangFunc(ctx, l)
}

func (m *userRepoMock) Langs(ctx context.Context, userID int64) ([]domain.UserLang, error) {
	return m.LangsFunc(ctx, userID)
}

type translatorMock struct {
	LookupFunc func(ctx context.Context, translationCode, original string) (*domain.Word, error)
}

func (m *translatorMock) Lookup(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	return m.LookupFunc(ctx, translationCode, original)
}

type audioProviderMock struct {
	PronounceFunc func(ctx context.Context, langCode, text string) (string, error)
}

func (m *audioProviderMock) Pronounce(ctx context.Context, langCode, text string) (string, error) {
	return m.PronounceFunc(ctx, langCode, text)
}

// txManagerMock runs the function inline, without a transaction.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
