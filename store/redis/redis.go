package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/showgate/policy"
)

var _ policy.StateStore = &Store{}

const (
	fieldFirstShowRequestedAt = "first_show_requested_at"
	fieldLastShownAt          = "last_shown_at"
	fieldNextShowAt           = "next_show_at"
	fieldBlocked              = "blocked"
)

// Store keeps each state in a redis hash named prefix + key.
type Store struct {
	c      *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		c:      client,
		prefix: prefix,
	}
}

func (s *Store) hashKey(key string) string {
	return s.prefix + "state:" + key
}

func (s *Store) Get(ctx context.Context, key string) (policy.State, error) {
	var state policy.State
	values, err := s.c.HGetAll(ctx, s.hashKey(key)).Result()
	if err != nil {
		return state, err
	}

	if state.FirstShowRequestedAt, err = parseTime(values[fieldFirstShowRequestedAt]); err != nil {
		return state, err
	}
	if state.LastShownAt, err = parseTime(values[fieldLastShownAt]); err != nil {
		return state, err
	}
	if state.NextShowAt, err = parseTime(values[fieldNextShowAt]); err != nil {
		return state, err
	}
	state.Blocked = values[fieldBlocked] == "1"
	return state, nil
}

func (s *Store) setTime(ctx context.Context, key string, field string, t *time.Time) error {
	if t == nil {
		return s.c.HDel(ctx, s.hashKey(key), field).Err()
	}
	return s.c.HSet(ctx, s.hashKey(key), field, t.Format(time.RFC3339Nano)).Err()
}

func (s *Store) SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error {
	return s.setTime(ctx, key, fieldFirstShowRequestedAt, t)
}

func (s *Store) SetLastShownAt(ctx context.Context, key string, t *time.Time) error {
	return s.setTime(ctx, key, fieldLastShownAt, t)
}

func (s *Store) SetNextShowAt(ctx context.Context, key string, t *time.Time) error {
	return s.setTime(ctx, key, fieldNextShowAt, t)
}

func (s *Store) SetBlocked(ctx context.Context, key string, blocked bool) error {
	if !blocked {
		return s.c.HDel(ctx, s.hashKey(key), fieldBlocked).Err()
	}
	return s.c.HSet(ctx, s.hashKey(key), fieldBlocked, "1").Err()
}

func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
