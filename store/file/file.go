package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/webhookx-io/showgate/pkg/serializer"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/store/memory"
)

var _ policy.StateStore = &Store{}

// Store persists every state into a single file, rewritten on each change.
type Store struct {
	mux  sync.Mutex
	path string
	s    serializer.Serializer
	mem  *memory.Store
}

// Open loads the states stored at path, a missing file is an empty store.
func Open(path string, s serializer.Serializer) (*Store, error) {
	store := &Store{
		path: path,
		s:    s,
		mem:  memory.New(),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return store, nil
	}

	snapshot := make(map[string]policy.State)
	if err := s.Deserialize(b, &snapshot); err != nil {
		return nil, err
	}
	store.mem.Restore(snapshot)
	return store, nil
}

func (s *Store) Get(ctx context.Context, key string) (policy.State, error) {
	return s.mem.Get(ctx, key)
}

func (s *Store) SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(func() error { return s.mem.SetFirstShowRequestedAt(ctx, key, t) })
}

func (s *Store) SetLastShownAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(func() error { return s.mem.SetLastShownAt(ctx, key, t) })
}

func (s *Store) SetNextShowAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(func() error { return s.mem.SetNextShowAt(ctx, key, t) })
}

func (s *Store) SetBlocked(ctx context.Context, key string, blocked bool) error {
	return s.write(func() error { return s.mem.SetBlocked(ctx, key, blocked) })
}

func (s *Store) Keys() []string {
	return s.mem.Keys()
}

// write applies fn and flushes, the in-memory state is rolled back when the
// flush fails so memory never runs ahead of the file.
func (s *Store) write(fn func() error) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	before := s.mem.Snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mem.Restore(before)
		return err
	}
	return nil
}

func (s *Store) flush() error {
	b, err := s.s.Serialize(s.mem.Snapshot())
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
