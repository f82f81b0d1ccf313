// Package state keeps per-user conversational state in Redis: the last
// rendered message, session options, and the fixed word orders of the
// remember and recall walkthroughs.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ipakeev/words-fan-bot/internal/config"
	"github.com/ipakeev/words-fan-bot/internal/domain"
)

// Key prefixes. Each user's state lives under prefix+userID.
const (
	keyPreviousMessage = "words_pmi"
	keySessionOptions  = "words_nav"
	keyRememberOrder   = "words_mem_idx"
	keyRecallOrder     = "words_rec_idx"
)

// Store is a Redis-backed session-state store.
type Store struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func key(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// getJSON unmarshals the value at key into v. It reports whether the
// key was present.
func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetPreviousMessage records the last message rendered to the user.
func (s *Store) SetPreviousMessage(ctx context.Context, msg domain.PreviousMessage) error {
	return s.setJSON(ctx, key(keyPreviousMessage, msg.UserID), msg)
}

// PreviousMessage returns the last rendered message, or nil when none
// is recorded.
func (s *Store) PreviousMessage(ctx context.Context, userID int64) (*domain.PreviousMessage, error) {
	var msg domain.PreviousMessage
	ok, err := s.getJSON(ctx, key(keyPreviousMessage, userID), &msg)
	if err != nil || !ok {
		return nil, err
	}
	return &msg, nil
}

// DeletePreviousMessage forgets the last rendered message, forcing the
// next render to post a fresh one.
func (s *Store) DeletePreviousMessage(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, key(keyPreviousMessage, userID)).Err(); err != nil {
		return fmt.Errorf("del previous message: %w", err)
	}
	return nil
}

// SetSessionOptions stores the user's remember-session toggles.
func (s *Store) SetSessionOptions(ctx context.Context, userID int64, opts domain.SessionOptions) error {
	return s.setJSON(ctx, key(keySessionOptions, userID), opts)
}

// SessionOptions returns the user's toggles, zero-valued when unset.
func (s *Store) SessionOptions(ctx context.Context, userID int64) (domain.SessionOptions, error) {
	var opts domain.SessionOptions
	_, err := s.getJSON(ctx, key(keySessionOptions, userID), &opts)
	return opts, err
}

// SetRememberOrder freezes the word order of a remember session.
func (s *Store) SetRememberOrder(ctx context.Context, userID int64, wordIDs []int64) error {
	return s.setJSON(ctx, key(keyRememberOrder, userID), wordIDs)
}

// RememberOrder returns the frozen remember-session order, nil when no
// session is active.
func (s *Store) RememberOrder(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	ok, err := s.getJSON(ctx, key(keyRememberOrder, userID), &ids)
	if err != nil || !ok {
		return nil, err
	}
	return ids, nil
}

// SetRecallOrder freezes the step sequence of a recall session.
func (s *Store) SetRecallOrder(ctx context.Context, userID int64, items []domain.RecallItem) error {
	return s.setJSON(ctx, key(keyRecallOrder, userID), items)
}

// RecallOrder returns the frozen recall-session sequence, nil when no
// session is active.
func (s *Store) RecallOrder(ctx context.Context, userID int64) ([]domain.RecallItem, error) {
	var items []domain.RecallItem
	ok, err := s.getJSON(ctx, key(keyRecallOrder, userID), &items)
	if err != nil || !ok {
		return nil, err
	}
	return items, nil
}
