package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/webhookx-io/showgate/eventbus"
	"github.com/webhookx-io/showgate/mcache"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/store/memory"
	"go.uber.org/zap"
)

var (
	_ policy.StateStore   = &Store{}
	_ policy.DirectReader = &Store{}
)

// Store is a read-through cache in front of another StateStore. Writes go
// to the backend first, then invalidate the cache locally and, through the
// bus, on every other node. Remote invalidations arrive asynchronously, so
// committing checks bypass the cache through GetDirect.
type Store struct {
	next  policy.StateStore
	cache *mcache.MCache
	bus   eventbus.Bus
	log   *zap.SugaredLogger
}

func New(next policy.StateStore, cache *mcache.MCache, bus eventbus.Bus, log *zap.SugaredLogger) *Store {
	s := &Store{
		next:  next,
		cache: cache,
		bus:   bus,
		log:   log.Named("cache"),
	}
	if bus != nil {
		bus.ClusteringSubscribe(eventbus.EventStateInvalidate, s.onInvalidate)
	}
	return s
}

func cacheKey(key string) string {
	return "state:" + key
}

func (s *Store) onInvalidate(data []byte) {
	var msg eventbus.InvalidateData
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Errorf("failed to unmarshal invalidation: %v", err)
		return
	}
	// L2 is shared and was invalidated by the sender
	_ = s.cache.InvalidateL1(context.TODO(), cacheKey(msg.Key))
}

func (s *Store) Get(ctx context.Context, key string) (policy.State, error) {
	state, err := mcache.Load(ctx, s.cache, cacheKey(key), func(ctx context.Context, _ string) (*policy.State, error) {
		state, err := s.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return &state, nil
	})
	if err != nil {
		return policy.State{}, err
	}
	return memory.Clone(*state), nil
}

// GetDirect reads key from the backend and drops the cached copy.
func (s *Store) GetDirect(ctx context.Context, key string) (policy.State, error) {
	state, err := s.next.Get(ctx, key)
	if err != nil {
		return policy.State{}, err
	}
	_ = s.cache.InvalidateL1(ctx, cacheKey(key))
	return state, nil
}

func (s *Store) SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(ctx, key, s.next.SetFirstShowRequestedAt(ctx, key, t))
}

func (s *Store) SetLastShownAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(ctx, key, s.next.SetLastShownAt(ctx, key, t))
}

func (s *Store) SetNextShowAt(ctx context.Context, key string, t *time.Time) error {
	return s.write(ctx, key, s.next.SetNextShowAt(ctx, key, t))
}

func (s *Store) SetBlocked(ctx context.Context, key string, blocked bool) error {
	return s.write(ctx, key, s.next.SetBlocked(ctx, key, blocked))
}

// write invalidates key whether or not the backend write succeeded, a failed
// write may still have been partially applied.
func (s *Store) write(ctx context.Context, key string, err error) error {
	if invalidateErr := s.cache.Invalidate(ctx, cacheKey(key)); invalidateErr != nil && err == nil {
		err = invalidateErr
	}
	if s.bus != nil {
		if broadcastErr := s.bus.ClusteringBroadcast(eventbus.EventStateInvalidate, &eventbus.InvalidateData{Key: key}); broadcastErr != nil {
			s.log.Warnf("failed to broadcast invalidation for %s: %v", key, broadcastErr)
		}
	}
	return err
}
