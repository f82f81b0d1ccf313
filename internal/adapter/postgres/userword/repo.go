// Package userword implements the UserWord repository using PostgreSQL.
// It persists the per-user learning record and its two independent show
// clocks; the state machine itself lives in service/vocab.
package userword

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ipakeev/words-fan-bot/internal/adapter/postgres"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "user_words"

var columns = []string{
	"id", "user_id", "translation_code", "word_id", "added_at",
	"remembered_at", "next_show_original", "next_show_translation",
	"n_shown_original", "n_shown_translation",
}

// Repo provides user-word persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user-word repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Upsert inserts the learning record or returns the existing one
// untouched: re-adding a word must not reset counters or the
// remembered state. The no-op conflict update exists only to make
// RETURNING yield the stored row.
func (r *Repo) Upsert(ctx context.Context, uw domain.UserWord) (*domain.UserWord, error) {
	sql, args, err := qb.Insert(table).
		Columns("user_id", "translation_code", "word_id", "added_at",
			"remembered_at", "next_show_original", "next_show_translation",
			"n_shown_original", "n_shown_translation").
		Values(uw.UserID, uw.TranslationCode, uw.WordID, uw.AddedAt,
			uw.RememberedAt, uw.NextShowOriginal, uw.NextShowTranslation,
			uw.NShownOriginal, uw.NShownTranslation).
		Suffix(`ON CONFLICT (user_id, word_id)
			DO UPDATE SET translation_code = EXCLUDED.translation_code`).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user word %d/%d: build query: %w", uw.UserID, uw.WordID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	out, err := scanUserWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user word", uw.WordID)
	}
	return out, nil
}

// Get returns the learning record for (user, word).
func (r *Repo) Get(ctx context.Context, userID, wordID int64) (*domain.UserWord, error) {
	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID, "word_id": wordID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user word %d/%d: build query: %w", userID, wordID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	out, err := scanUserWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user word", wordID)
	}
	return out, nil
}

// MarkRemembered moves the record out of the learning phase. The
// conditional WHERE clause makes the transition race-safe: a record
// already marked remembered is left alone and domain.ErrNotFound comes
// back instead.
func (r *Repo) MarkRemembered(ctx context.Context, userID, wordID int64, rememberedAt, nextOriginal, nextTranslation time.Time) (*domain.UserWord, error) {
	sql, args, err := qb.Update(table).
		Set("remembered_at", rememberedAt).
		Set("next_show_original", nextOriginal).
		Set("next_show_translation", nextTranslation).
		Where(sq.Eq{"user_id": userID, "word_id": wordID}).
		Where("remembered_at IS NULL").
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user word %d/%d: build query: %w", userID, wordID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	out, err := scanUserWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user word", wordID)
	}
	return out, nil
}

// UpdateShownOriginal advances the original-direction clock only.
func (r *Repo) UpdateShownOriginal(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error) {
	return r.updateClock(ctx, id, "next_show_original", "n_shown_original", nextShow, nShown)
}

// UpdateShownTranslation advances the translation-direction clock only.
func (r *Repo) UpdateShownTranslation(ctx context.Context, id int64, nextShow time.Time, nShown int) (*domain.UserWord, error) {
	return r.updateClock(ctx, id, "next_show_translation", "n_shown_translation", nextShow, nShown)
}

func (r *Repo) updateClock(ctx context.Context, id int64, showColumn, countColumn string, nextShow time.Time, nShown int) (*domain.UserWord, error) {
	sql, args, err := qb.Update(table).
		Set(showColumn, nextShow).
		Set(countColumn, nShown).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("user word %d: build query: %w", id, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	out, err := scanUserWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user word", id)
	}
	return out, nil
}

// Delete removes the learning record. Deleting an absent record is not
// an error.
func (r *Repo) Delete(ctx context.Context, userID, wordID int64) error {
	sql, args, err := qb.Delete(table).
		Where(sq.Eq{"user_id": userID, "word_id": wordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("user word %d/%d: build query: %w", userID, wordID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "user word", wordID)
	}
	return nil
}

// Count returns the number of words the user tracks under the pair.
func (r *Repo) Count(ctx context.Context, userID int64, translationCode string) (int, error) {
	return r.count(ctx, userID, qb.Select("count(*)").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}))
}

// CountLearning returns the number of words still in the learning phase.
func (r *Repo) CountLearning(ctx context.Context, userID int64, translationCode string) (int, error) {
	return r.count(ctx, userID, qb.Select("count(*)").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NULL"))
}

// CountRecallable returns the number of words due on either show clock.
// A word due on both clocks at once still counts as one.
func (r *Repo) CountRecallable(ctx context.Context, userID int64, translationCode string, now time.Time) (int, error) {
	return r.count(ctx, userID, qb.Select("count(*)").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NOT NULL").
		Where(sq.Or{
			sq.LtOrEq{"next_show_original": now},
			sq.LtOrEq{"next_show_translation": now},
		}))
}

func (r *Repo) count(ctx context.Context, userID int64, builder sq.SelectBuilder) (int, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("user words %d: build query: %w", userID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "user words", userID)
	}
	return n, nil
}

// IDsLearning returns word ids still in the learning phase, in
// insertion order.
func (r *Repo) IDsLearning(ctx context.Context, userID int64, translationCode string) ([]int64, error) {
	return r.ids(ctx, userID, qb.Select("word_id").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NULL").
		OrderBy("id"))
}

// IDsDueOriginal returns word ids whose original-direction clock has elapsed.
func (r *Repo) IDsDueOriginal(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error) {
	return r.ids(ctx, userID, qb.Select("word_id").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NOT NULL").
		Where(sq.LtOrEq{"next_show_original": now}).
		OrderBy("id"))
}

// IDsDueTranslation returns word ids whose translation-direction clock has elapsed.
func (r *Repo) IDsDueTranslation(ctx context.Context, userID int64, translationCode string, now time.Time) ([]int64, error) {
	return r.ids(ctx, userID, qb.Select("word_id").From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NOT NULL").
		Where(sq.LtOrEq{"next_show_translation": now}).
		OrderBy("id"))
}

func (r *Repo) ids(ctx context.Context, userID int64, builder sq.SelectBuilder) ([]int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("user words %d: build query: %w", userID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "user words", userID)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, postgres.MapError(err, "user words", userID)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns every learning record the user tracks under the pair.
func (r *Repo) List(ctx context.Context, userID int64, translationCode string) ([]domain.UserWord, error) {
	return r.list(ctx, userID, qb.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		OrderBy("id"))
}

// ListDue returns the full records due on either clock.
func (r *Repo) ListDue(ctx context.Context, userID int64, translationCode string, now time.Time) ([]domain.UserWord, error) {
	return r.list(ctx, userID, qb.Select(columns...).From(table).
		Where(sq.Eq{"user_id": userID, "translation_code": translationCode}).
		Where("remembered_at IS NOT NULL").
		Where(sq.Or{
			sq.LtOrEq{"next_show_original": now},
			sq.LtOrEq{"next_show_translation": now},
		}).
		OrderBy("id"))
}

func (r *Repo) list(ctx context.Context, userID int64, builder sq.SelectBuilder) ([]domain.UserWord, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("user words %d: build query: %w", userID, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "user words", userID)
	}
	defer rows.Close()

	var items []domain.UserWord
	for rows.Next() {
		uw, err := scanUserWord(rows)
		if err != nil {
			return nil, postgres.MapError(err, "user words", userID)
		}
		items = append(items, *uw)
	}
	return items, rows.Err()
}

func scanUserWord(row pgx.Row) (*domain.UserWord, error) {
	var uw domain.UserWord
	err := row.Scan(
		&uw.ID, &uw.UserID, &uw.TranslationCode, &uw.WordID, &uw.AddedAt,
		&uw.RememberedAt, &uw.NextShowOriginal, &uw.NextShowTranslation,
		&uw.NShownOriginal, &uw.NShownTranslation,
	)
	if err != nil {
		return nil, err
	}
	return &uw, nil
}
