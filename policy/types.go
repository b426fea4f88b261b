package policy

import (
	"context"
	"time"
)

// Precision is the resolution times are compared and stored at, the finest
// resolution every backend keeps.
const Precision = time.Microsecond

type Mode string

const (
	// ModeSchedule governs eligibility by elapsed time only
	ModeSchedule Mode = "schedule"
	// ModeDate additionally requires NextShowAt to be set and reached
	ModeDate Mode = "date"
)

// State is the persisted record of a showable item. The zero value is the
// state of an item that has never been requested.
type State struct {
	FirstShowRequestedAt *time.Time `json:"first_show_requested_at" msgpack:"first_show_requested_at"`
	LastShownAt          *time.Time `json:"last_shown_at" msgpack:"last_shown_at"`
	NextShowAt           *time.Time `json:"next_show_at" msgpack:"next_show_at"`
	Blocked              bool       `json:"blocked" msgpack:"blocked"`
}

// StateStore persists State per item key. A key that was never written must
// read as the zero State. Implementations report backend failures as errors,
// never as an empty state.
type StateStore interface {
	Get(ctx context.Context, key string) (State, error)
	SetFirstShowRequestedAt(ctx context.Context, key string, t *time.Time) error
	SetLastShownAt(ctx context.Context, key string, t *time.Time) error
	SetNextShowAt(ctx context.Context, key string, t *time.Time) error
	SetBlocked(ctx context.Context, key string, blocked bool) error
}

// DirectReader is implemented by stores that serve Get from a cache.
// Committing checks read through GetDirect instead of Get.
type DirectReader interface {
	GetDirect(ctx context.Context, key string) (State, error)
}

// Presenter performs the actual display once showing is permitted.
type Presenter interface {
	Present(ctx context.Context, sender any) error
}

type PresenterFunc func(ctx context.Context, sender any) error

func (fn PresenterFunc) Present(ctx context.Context, sender any) error {
	return fn(ctx, sender)
}

// Locker provides mutual exclusion per key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func() error, err error)
}

// Config is the caller supplied configuration of a showable item.
type Config struct {
	Mode                         Mode
	MinimumTimeBetweenShows      time.Duration
	MinimumTimeSinceFirstRequest time.Duration
}
