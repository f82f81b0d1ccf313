// Package user implements the User and UserLang repositories using PostgreSQL.
package user

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ipakeev/words-fan-bot/internal/adapter/postgres"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{"id", "is_bot", "username", "first_name", "last_name", "language_code", "joined_at"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Upsert inserts the user or refreshes its identity attributes on /start.
// The joined_at of the first insert wins.
func (r *Repo) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	sql, args, err := qb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.IsBot, u.Username, u.FirstName, u.LastName, u.LanguageCode, u.JoinedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			is_bot = EXCLUDED.is_bot,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			language_code = EXCLUDED.language_code`).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user %d: build query: %w", u.ID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	var out domain.User
	err = q.QueryRow(ctx, sql, args...).Scan(
		&out.ID, &out.IsBot, &out.Username, &out.FirstName, &out.LastName, &out.LanguageCode, &out.JoinedAt)
	if err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}
	return &out, nil
}

// List returns every registered user.
func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	sql, args, err := qb.Select(userColumns...).From("users").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("users: build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "users", "list")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.IsBot, &u.Username, &u.FirstName, &u.LastName, &u.LanguageCode, &u.JoinedAt); err != nil {
			return nil, postgres.MapError(err, "users", "list")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpsertLang activates a translation pair for the user; re-selecting an
// active pair is a no-op.
func (r *Repo) UpsertLang(ctx context.Context, l domain.UserLang) (*domain.UserLang, error) {
	sql, args, err := qb.Insert("user_langs").
		Columns("user_id", "translation_code").
		Values(l.UserID, l.TranslationCode).
		Suffix(`ON CONFLICT (user_id, translation_code)
			DO UPDATE SET translation_code = EXCLUDED.translation_code`).
		Suffix("RETURNING user_id, translation_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user lang %d: build query: %w", l.UserID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	var out domain.UserLang
	if err := q.QueryRow(ctx, sql, args...).Scan(&out.UserID, &out.TranslationCode); err != nil {
		return nil, postgres.MapError(err, "user lang", l.UserID)
	}
	return &out, nil
}

// Langs returns the user's active translation pairs.
func (r *Repo) Langs(ctx context.Context, userID int64) ([]domain.UserLang, error) {
	sql, args, err := qb.Select("user_id", "translation_code").
		From("user_langs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("translation_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user langs %d: build query: %w", userID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "user langs", userID)
	}
	defer rows.Close()

	var langs []domain.UserLang
	for rows.Next() {
		var l domain.UserLang
		if err := rows.Scan(&l.UserID, &l.TranslationCode); err != nil {
			return nil, postgres.MapError(err, "user langs", userID)
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}
