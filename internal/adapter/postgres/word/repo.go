// Package word implements the Word repository using PostgreSQL.
// The linguistic profile (transcriptions, translations, verb forms,
// examples, idioms) lives in a single JSONB column; the upsert key is
// (translation_code, original).
package word

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ipakeev/words-fan-bot/internal/adapter/postgres"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "words"

var columns = []string{"id", "translation_code", "original", "profile", "audio_id", "added_at"}

// profile is the JSONB payload of a word row.
type profile struct {
	Transcriptions []string              `json:"transcription"`
	Translations   []string              `json:"translations"`
	PastIndefinite []string              `json:"past_indefinite"`
	PastParticiple []string              `json:"past_participle"`
	NounPlural     []string              `json:"noun_plural"`
	Examples       []domain.SentencePair `json:"examples"`
	Idioms         []domain.SentencePair `json:"idioms"`
}

// Repo provides word persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new word repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Upsert inserts the word or, when another user already added it,
// refreshes its profile and audio handle. Concurrent first-time inserts
// of the same word converge to a single row; the stored row is returned
// either way.
func (r *Repo) Upsert(ctx context.Context, w domain.Word) (*domain.Word, error) {
	payload, err := json.Marshal(profile{
		Transcriptions: w.Transcriptions,
		Translations:   w.Translations,
		PastIndefinite: w.PastIndefinite,
		PastParticiple: w.PastParticiple,
		NounPlural:     w.NounPlural,
		Examples:       w.Examples,
		Idioms:         w.Idioms,
	})
	if err != nil {
		return nil, fmt.Errorf("word %s: marshal profile: %w", w.Original, err)
	}

	sql, args, err := qb.Insert(table).
		Columns("translation_code", "original", "profile", "audio_id", "added_at").
		Values(w.TranslationCode, w.Original, payload, nullable(w.AudioID), w.AddedAt).
		Suffix(`ON CONFLICT (translation_code, original)
			DO UPDATE SET profile = EXCLUDED.profile, audio_id = EXCLUDED.audio_id`).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("word %s: build query: %w", w.Original, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	word, err := scanWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "word", w.Original)
	}
	return word, nil
}

// GetByText returns a word by its (translation pair, original text) key.
func (r *Repo) GetByText(ctx context.Context, translationCode, original string) (*domain.Word, error) {
	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"translation_code": translationCode, "original": original}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("word %s: build query: %w", original, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	word, err := scanWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "word", original)
	}
	return word, nil
}

// GetByID returns a word by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Word, error) {
	sql, args, err := qb.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("word %d: build query: %w", id, err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	word, err := scanWord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "word", id)
	}
	return word, nil
}

// Count returns the total number of words in the shared dictionary.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	sql, args, err := qb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("count words: build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	var count int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "word", "count")
	}
	return count, nil
}

func scanWord(row pgx.Row) (*domain.Word, error) {
	var (
		w       domain.Word
		payload []byte
		audioID *string
	)
	if err := row.Scan(&w.ID, &w.TranslationCode, &w.Original, &payload, &audioID, &w.AddedAt); err != nil {
		return nil, err
	}

	var p profile
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	w.Transcriptions = p.Transcriptions
	w.Translations = p.Translations
	w.PastIndefinite = p.PastIndefinite
	w.PastParticiple = p.PastParticiple
	w.NounPlural = p.NounPlural
	w.Examples = p.Examples
	w.Idioms = p.Idioms

	if audioID != nil {
		w.AudioID = *audioID
	}
	return &w, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
