package mcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/webhookx-io/showgate/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultL1TTL = time.Second * 10
	DefaultL2TTL = time.Second * 60
)

// MCache is multiple levels cache, the L2 layer is optional
type MCache struct {
	group singleflight.Group
	// version is bumped by every invalidation, a load that overlaps one
	// does not fill the cache.
	version atomic.Uint64
	l1      *expirable.LRU[string, any]
	l2      cache.Cache
	l2TTL   time.Duration
}

type Options struct {
	L1Size int
	L1TTL  time.Duration
	L2     cache.Cache
	L2TTL  time.Duration
}

func NewMCache(opts *Options) *MCache {
	l1TTL := opts.L1TTL
	if l1TTL == 0 {
		l1TTL = DefaultL1TTL
	}
	l2TTL := opts.L2TTL
	if l2TTL == 0 {
		l2TTL = DefaultL2TTL
	}
	return &MCache{
		l1:    expirable.NewLRU[string, any](opts.L1Size, nil, l1TTL),
		l2:    opts.L2,
		l2TTL: l2TTL,
	}
}

func (c *MCache) InvalidateL1(ctx context.Context, key string) error {
	c.version.Add(1)
	c.group.Forget(key)
	c.l1.Remove(key)
	return nil
}

func (c *MCache) InvalidateL2(ctx context.Context, key string) error {
	if c.l2 == nil {
		return nil
	}
	c.version.Add(1)
	return c.l2.Remove(ctx, key)
}

func (c *MCache) Invalidate(ctx context.Context, key string) error {
	zap.S().Debugf("invalidating cache %s", key)
	if err := c.InvalidateL2(ctx, key); err != nil {
		return err
	}
	if err := c.InvalidateL1(ctx, key); err != nil {
		return err
	}
	return nil
}

type Callback[T any] func(ctx context.Context, key string) (*T, error)

// Load looks key up in L1, then L2, then loads it through cb.
func Load[T any](ctx context.Context, mcache *MCache, key string, cb Callback[T]) (*T, error) {
	// L1 looks up
	if v, ok := mcache.l1.Get(key); ok {
		return v.(*T), nil
	}

	version := mcache.version.Load()

	// L2 looks up
	if mcache.l2 != nil {
		value := new(T)
		exist, err := mcache.l2.Get(ctx, key, value)
		if err != nil {
			return nil, err
		}
		if exist {
			if mcache.version.Load() == version {
				mcache.l1.Add(key, value)
			}
			return value, nil
		}
	}

	// L3(IO/DB) looks up, concurrent loads of the same key share one call
	v, err, _ := mcache.group.Do(key, func() (interface{}, error) {
		if v, ok := mcache.l1.Get(key); ok {
			return v, nil
		}
		value, err := cb(ctx, key)
		if err != nil || value == nil {
			return value, err
		}
		if mcache.version.Load() != version {
			return value, nil
		}

		if mcache.l2 != nil {
			if err := mcache.l2.Put(ctx, key, value, mcache.l2TTL); err != nil {
				return nil, err
			}
		}

		mcache.l1.Add(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
