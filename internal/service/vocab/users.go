package vocab

import (
	"context"
	"fmt"

	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// EnsureUser registers the user on /start (refreshing identity
// attributes on repeat visits) and activates the default translation
// pair for first-time users. It returns the user's active pairs.
func (s *Service) EnsureUser(ctx context.Context, u domain.User, defaultCode string) ([]domain.UserLang, error) {
	if u.JoinedAt.IsZero() {
		u.JoinedAt = s.now()
	}
	if _, err := s.users.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", u.ID, err)
	}

	langs, err := s.users.Langs(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("get user langs %d: %w", u.ID, err)
	}
	if len(langs) == 0 {
		lang, err := s.users.UpsertLang(ctx, domain.UserLang{UserID: u.ID, TranslationCode: defaultCode})
		if err != nil {
			return nil, fmt.Errorf("add default lang %d: %w", u.ID, err)
		}
		langs = append(langs, *lang)
	}
	return langs, nil
}

// AddUserLang activates a translation pair built from the two language
// codes the user picked.
func (s *Service) AddUserLang(ctx context.Context, userID int64, nativeCode, foreignCode string) (*domain.UserLang, error) {
	lang, err := s.users.UpsertLang(ctx, domain.UserLang{
		UserID:          userID,
		TranslationCode: s.langs.TranslationCode(nativeCode, foreignCode),
	})
	if err != nil {
		return nil, fmt.Errorf("add lang %d: %w", userID, err)
	}
	return lang, nil
}

// UserLangs returns the user's active translation pairs.
func (s *Service) UserLangs(ctx context.Context, userID int64) ([]domain.UserLang, error) {
	return s.users.Langs(ctx, userID)
}
