package vocab

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService() *Service {
	return &Service{
		tx:    txManagerMock{},
		langs: config.Langs{},
		log:   newTestLogger(),
		now:   fixedNow,
	}
}

func TestService_AddWord_CachedWord(t *testing.T) {
	t.Parallel()

	cached := &domain.Word{
		ID:              7,
		TranslationCode: "en-ru",
		Original:        "apple",
		Translations:    []string{"яблоко"},
	}

	svc := newTestService()
	svc.words = &wordRepoMock{
		GetByTextFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			if code != "en-ru" || original != "apple" {
				t.Errorf("GetByText(%q, %q), want en-ru/apple", code, original)
			}
			return cached, nil
		},
	}
	svc.userWords = &userWordRepoMock{
		UpsertFunc: func(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
			if uw.UserID != 42 || uw.WordID != 7 {
				t.Errorf("Upsert user word %d/%d, want 42/7", uw.UserID, uw.WordID)
			}
			out := uw
			out.ID = 1
			return &out, nil
		},
	}
	// The dictionary and audio must not be hit for a cached word.
	svc.dict = &translatorMock{}
	svc.audio = &audioProviderMock{}

	result, err := svc.AddWord(context.Background(), 42, "en-ru", "Apple ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Word.ID != 7 {
		t.Errorf("Word.ID = %d, want 7", result.Word.ID)
	}
	if result.AlreadyAdded {
		t.Error("AlreadyAdded = true, want false for a fresh record")
	}
}

func TestService_AddWord_FetchesAndStoresNewWord(t *testing.T) {
	t.Parallel()

	fetched := &domain.Word{
		TranslationCode: "en-ru",
		Original:        "window",
		Translations:    []string{"окно"},
	}

	var upserted *domain.Word
	svc := newTestService()
	svc.words = &wordRepoMock{
		GetByTextFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, w domain.Word) (*domain.Word, error) {
			out := w
			out.ID = 9
			upserted = &out
			return &out, nil
		},
	}
	svc.dict = &translatorMock{
		LookupFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return fetched, nil
		},
	}
	svc.audio = &audioProviderMock{
		PronounceFunc: func(ctx context.Context, langCode, text string) (string, error) {
			if langCode != "en" {
				t.Errorf("Pronounce lang = %q, want %q", langCode, "en")
			}
			if text != "window" {
				t.Errorf("Pronounce text = %q, want %q", text, "window")
			}
			return "audio-123", nil
		},
	}
	svc.userWords = &userWordRepoMock{
		UpsertFunc: func(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
			if uw.WordID != 9 {
				t.Errorf("user word WordID = %d, want the stored word id 9", uw.WordID)
			}
			out := uw
			out.ID = 1
			return &out, nil
		},
	}

	result, err := svc.AddWord(context.Background(), 42, "en-ru", "window")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upserted == nil {
		t.Fatal("fetched word was not persisted")
	}
	if upserted.AudioID != "audio-123" {
		t.Errorf("stored AudioID = %q, want %q", upserted.AudioID, "audio-123")
	}
	if upserted.AddedAt != fixedNow() {
		t.Errorf("stored AddedAt = %v, want %v", upserted.AddedAt, fixedNow())
	}
	if result.Word.ID != 9 {
		t.Errorf("result Word.ID = %d, want 9", result.Word.ID)
	}
}

func TestService_AddWord_AudioFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.words = &wordRepoMock{
		GetByTextFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return nil, domain.ErrNotFound
		},
		UpsertFunc: func(ctx context.Context, w domain.Word) (*domain.Word, error) {
			if w.AudioID != "" {
				t.Errorf("AudioID = %q, want empty after synthesis failure", w.AudioID)
			}
			out := w
			out.ID = 3
			return &out, nil
		},
	}
	svc.dict = &translatorMock{
		LookupFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return &domain.Word{TranslationCode: code, Original: original, Translations: []string{"окно"}}, nil
		},
	}
	svc.audio = &audioProviderMock{
		PronounceFunc: func(ctx context.Context, langCode, text string) (string, error) {
			return "", errors.New("flood detected")
		},
	}
	svc.userWords = &userWordRepoMock{
		UpsertFunc: func(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
			out := uw
			out.ID = 1
			return &out, nil
		},
	}

	if _, err := svc.AddWord(context.Background(), 42, "en-ru", "window"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_AddWord_TranslationNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.words = &wordRepoMock{
		GetByTextFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc.dict = &translatorMock{
		LookupFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return &domain.Word{TranslationCode: code, Original: original}, nil
		},
	}
	svc.audio = &audioProviderMock{}

	_, err := svc.AddWord(context.Background(), 42, "en-ru", "qqqqq")
	if !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("err = %v, want ErrTranslationNotFound", err)
	}
}

func TestService_AddWord_ValidationRejectsBeforeAnyCall(t *testing.T) {
	t.Parallel()

	// No mocks are wired: any repo or dictionary call would panic.
	svc := newTestService()

	_, err := svc.AddWord(context.Background(), 42, "en-ru", "catch22")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestService_AddWord_AlreadyAdded(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.words = &wordRepoMock{
		GetByTextFunc: func(ctx context.Context, code, original string) (*domain.Word, error) {
			return &domain.Word{ID: 7, TranslationCode: code, Original: original, Translations: []string{"яблоко"}}, nil
		},
	}
	svc.userWords = &userWordRepoMock{
		UpsertFunc: func(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
			// The stored record predates this call: the upsert kept it.
			out := uw
			out.ID = 1
			out.AddedAt = fixedNow().Add(-48 * time.Hour)
			return &out, nil
		},
	}

	result, err := svc.AddWord(context.Background(), 42, "en-ru", "apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyAdded {
		t.Error("AlreadyAdded = false, want true for a pre-existing record")
	}
}
