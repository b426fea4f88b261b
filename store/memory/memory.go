package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/webhookx-io/showgate/policy"
)

var _ policy.StateStore = &Store{}

// Store keeps states in process memory. It is safe for concurrent use.
type Store struct {
	mux    sync.RWMutex
	states map[string]policy.State
}

func New() *Store {
	return &Store{
		states: make(map[string]policy.State),
	}
}

// Get looks up a key's state, the zero state if absent
func (s *Store) Get(ctx context.Context, key string) (policy.State, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return Clone(s.states[key]), nil
}

func (s *Store) update(key string, fn func(state *policy.State)) {
	s.mux.Lock()
	defer s.mux.Unlock()
	state := s.states[key]
	fn(&state)
	s.states[key] = state
}

func (s *Store) SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error {
	s.update(key, func(state *policy.State) { state.FirstShowRequestedAt = clone(t) })
	return nil
}

func (s *Store) SetLastShownAt(ctx context.Context, key string, t *time.Time) error {
	s.update(key, func(state *policy.State) { state.LastShownAt = clone(t) })
	return nil
}

func (s *Store) SetNextShowAt(ctx context.Context, key string, t *time.Time) error {
	s.update(key, func(state *policy.State) { state.NextShowAt = clone(t) })
	return nil
}

func (s *Store) SetBlocked(ctx context.Context, key string, blocked bool) error {
	s.update(key, func(state *policy.State) { state.Blocked = blocked })
	return nil
}

// Keys returns the stored keys in order
func (s *Store) Keys() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	keys := make([]string, 0, len(s.states))
	for key := range s.states {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every stored state.
func (s *Store) Snapshot() map[string]policy.State {
	s.mux.RLock()
	defer s.mux.RUnlock()
	snapshot := make(map[string]policy.State, len(s.states))
	for key, state := range s.states {
		snapshot[key] = Clone(state)
	}
	return snapshot
}

// Restore replaces all states with the snapshot.
func (s *Store) Restore(snapshot map[string]policy.State) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.states = make(map[string]policy.State, len(snapshot))
	for key, state := range snapshot {
		s.states[key] = Clone(state)
	}
}

// Clone deep copies a state so callers never share time pointers with the store.
func Clone(state policy.State) policy.State {
	return policy.State{
		FirstShowRequestedAt: clone(state.FirstShowRequestedAt),
		LastShownAt:          clone(state.LastShownAt),
		NextShowAt:           clone(state.NextShowAt),
		Blocked:              state.Blocked,
	}
}

func clone(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
