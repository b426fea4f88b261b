package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/webhookx-io/showgate/db/entities"
	"github.com/webhookx-io/showgate/policy"
)

var _ policy.StateStore = &Store{}

// Store persists states in the showable_states table.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (policy.State, error) {
	entity, err := s.db.States.Get(ctx, key)
	if err != nil {
		return policy.State{}, errors.Wrap(err, "failed to query state")
	}
	if entity == nil {
		return policy.State{}, nil
	}
	return entity.ToState(), nil
}

func (s *Store) upsert(ctx context.Context, key string, column string, value interface{}) error {
	err := s.db.States.Upsert(ctx, key, column, value)
	return errors.Wrapf(err, "failed to update %s", column)
}

func (s *Store) SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error {
	return s.upsert(ctx, key, "first_show_requested_at", entities.NullTime(t))
}

func (s *Store) SetLastShownAt(ctx context.Context, key string, t *time.Time) error {
	return s.upsert(ctx, key, "last_shown_at", entities.NullTime(t))
}

func (s *Store) SetNextShowAt(ctx context.Context, key string, t *time.Time) error {
	return s.upsert(ctx, key, "next_show_at", entities.NullTime(t))
}

func (s *Store) SetBlocked(ctx context.Context, key string, blocked bool) error {
	return s.upsert(ctx, key, "blocked", blocked)
}
