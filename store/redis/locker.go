package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/showgate/policy"
)

var _ policy.Locker = &Locker{}

// Locker is a redsync mutex per key.
type Locker struct {
	rs     *redsync.Redsync
	prefix string
	expiry time.Duration
	tries  int
}

func NewLocker(client *redis.Client, prefix string, expiry time.Duration, tries int) *Locker {
	return &Locker{
		rs:     redsync.New(goredis.NewPool(client)),
		prefix: prefix,
		expiry: expiry,
		tries:  tries,
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (func() error, error) {
	mutex := l.rs.NewMutex(l.prefix+"lock:"+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() error {
		_, err := mutex.UnlockContext(context.WithoutCancel(ctx))
		return err
	}, nil
}
