package policy

import (
	"context"
	"time"

	"github.com/webhookx-io/showgate/eventbus"
	"github.com/webhookx-io/showgate/pkg/calendar"
	"github.com/webhookx-io/showgate/pkg/errs"
	"go.uber.org/zap"
)

// Policy decides whether and when a showable item may be shown.
//
// A Policy performs no locking of its own: two concurrent CanShow calls with
// immediateCommit on the same key may both observe an eligible state before
// either commits. Callers sharing a backend across goroutines or processes
// must serialize per key, or install a Locker with WithLocker.
type Policy struct {
	key         string
	cfg         Config
	store       StateStore
	presenter   Presenter
	alwaysBlock func(ctx context.Context) bool
	locker      Locker
	bus         eventbus.Bus
	log         *zap.SugaredLogger
}

func New(key string, store StateStore, cfg Config, opts ...Option) *Policy {
	if cfg.Mode == "" {
		cfg.Mode = ModeSchedule
	}
	p := &Policy{
		key:   key,
		cfg:   cfg,
		store: store,
		log:   zap.S(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("policy")
	return p
}

func (p *Policy) Key() string {
	return p.key
}

func (p *Policy) Config() Config {
	return p.cfg
}

// CanShow reports whether the item may be shown at now. The first check ever
// made for an item records now as its first request time, even when the
// result is false. When immediateCommit is set and the item is eligible, the
// show is committed before returning. Times are truncated to Precision.
func (p *Policy) CanShow(ctx context.Context, now time.Time, immediateCommit bool) (bool, error) {
	now = now.Truncate(Precision)
	if immediateCommit && p.locker != nil {
		unlock, err := p.locker.Lock(ctx, p.key)
		if err != nil {
			return false, errs.NewStateError("lock", p.key, err)
		}
		defer func() {
			if err := unlock(); err != nil {
				p.log.Warnf("failed to unlock %s: %v", p.key, err)
			}
		}()
	}

	return p.canShow(ctx, now, immediateCommit)
}

func (p *Policy) canShow(ctx context.Context, now time.Time, immediateCommit bool) (bool, error) {
	if p.alwaysBlock != nil && p.alwaysBlock(ctx) {
		return p.deny("always blocked")
	}

	state, err := p.get(ctx, immediateCommit)
	if err != nil {
		return false, errs.NewStateError("get", p.key, err)
	}

	if state.Blocked {
		return p.deny("blocked")
	}

	firstRequestedAt := state.FirstShowRequestedAt
	if firstRequestedAt == nil {
		if err := p.store.SetFirstShowRequestedAt(ctx, p.key, &now); err != nil {
			return false, errs.NewStateError("set first_show_requested_at", p.key, err)
		}
		firstRequestedAt = &now
	}

	if !p.sufficientTimeElapsed(state.LastShownAt, *firstRequestedAt, now) {
		return p.deny("insufficient time elapsed")
	}

	if p.cfg.Mode == ModeDate && !nextShowAtReached(state.NextShowAt, now) {
		return p.deny("next show date not reached")
	}

	if immediateCommit {
		if err := p.commitShown(ctx, now); err != nil {
			return false, err
		}
	}

	p.log.Debugw("showing allowed", "key", p.key, "committed", immediateCommit)
	return true, nil
}

func (p *Policy) get(ctx context.Context, direct bool) (State, error) {
	if reader, ok := p.store.(DirectReader); ok && direct {
		return reader.GetDirect(ctx, p.key)
	}
	return p.store.Get(ctx, p.key)
}

func (p *Policy) deny(reason string) (bool, error) {
	p.log.Debugw("showing denied", "key", p.key, "reason", reason)
	return false, nil
}

// sufficientTimeElapsed compares against the last show when there is one
// (strictly greater), otherwise against the first request (inclusive).
func (p *Policy) sufficientTimeElapsed(lastShownAt *time.Time, firstRequestedAt time.Time, now time.Time) bool {
	if lastShownAt == nil {
		return now.Sub(firstRequestedAt) >= p.cfg.MinimumTimeSinceFirstRequest
	}
	return now.Sub(*lastShownAt) > p.cfg.MinimumTimeBetweenShows
}

func nextShowAtReached(nextShowAt *time.Time, now time.Time) bool {
	if nextShowAt == nil {
		return false
	}
	return now.Sub(*nextShowAt) >= 0
}

// ShowIfNeeded presents the item when CanShow permits it, committing the
// show first. It reports whether the presenter was invoked.
func (p *Policy) ShowIfNeeded(ctx context.Context, now time.Time, sender any) (bool, error) {
	ok, err := p.CanShow(ctx, now, true)
	if err != nil || !ok {
		return false, err
	}
	if p.presenter == nil {
		return true, nil
	}
	if err := p.presenter.Present(ctx, sender); err != nil {
		return true, err
	}
	return true, nil
}

// CommitShown records that the item was shown at now and clears the next
// show date.
func (p *Policy) CommitShown(ctx context.Context, now time.Time) error {
	return p.commitShown(ctx, now.Truncate(Precision))
}

func (p *Policy) commitShown(ctx context.Context, now time.Time) error {
	if err := p.store.SetLastShownAt(ctx, p.key, &now); err != nil {
		return errs.NewStateError("set last_shown_at", p.key, err)
	}
	if err := p.store.SetNextShowAt(ctx, p.key, nil); err != nil {
		return errs.NewStateError("set next_show_at", p.key, err)
	}
	p.publish(eventbus.EventShown, now, nil)
	return nil
}

// SetNextShowAt sets the date before which the item is not shown in date
// mode. nil clears it.
func (p *Policy) SetNextShowAt(ctx context.Context, at *time.Time) error {
	return p.setNextShowAt(ctx, time.Time{}, at)
}

func (p *Policy) setNextShowAt(ctx context.Context, now time.Time, at *time.Time) error {
	if at != nil {
		truncated := at.Truncate(Precision)
		at = &truncated
	}
	if err := p.store.SetNextShowAt(ctx, p.key, at); err != nil {
		return errs.NewStateError("set next_show_at", p.key, err)
	}
	p.publish(eventbus.EventNextShow, now, at)
	return nil
}

// SetNextShowIn sets the next show date to now shifted by offset.
func (p *Policy) SetNextShowIn(ctx context.Context, now time.Time, offset calendar.Offset) error {
	now = now.Truncate(Precision)
	at := offset.AddTo(now)
	return p.setNextShowAt(ctx, now, &at)
}

func (p *Policy) SetNextShowInSeconds(ctx context.Context, now time.Time, n int) error {
	return p.SetNextShowIn(ctx, now, calendar.Seconds(n))
}

func (p *Policy) SetNextShowInMinutes(ctx context.Context, now time.Time, n int) error {
	return p.SetNextShowIn(ctx, now, calendar.Minutes(n))
}

func (p *Policy) SetNextShowInHours(ctx context.Context, now time.Time, n int) error {
	return p.SetNextShowIn(ctx, now, calendar.Hours(n))
}

func (p *Policy) SetNextShowInDays(ctx context.Context, now time.Time, n int) error {
	return p.SetNextShowIn(ctx, now, calendar.Days(n))
}

func (p *Policy) SetNextShowInMonths(ctx context.Context, now time.Time, n int) error {
	return p.SetNextShowIn(ctx, now, calendar.Months(n))
}

func (p *Policy) ShowAgainTomorrow(ctx context.Context, now time.Time) error {
	return p.SetNextShowIn(ctx, now, calendar.Days(1))
}

// Block prevents all future shows until Unblock.
func (p *Policy) Block(ctx context.Context) error {
	if err := p.store.SetBlocked(ctx, p.key, true); err != nil {
		return errs.NewStateError("set blocked", p.key, err)
	}
	p.publish(eventbus.EventBlocked, time.Time{}, nil)
	return nil
}

func (p *Policy) Unblock(ctx context.Context) error {
	if err := p.store.SetBlocked(ctx, p.key, false); err != nil {
		return errs.NewStateError("set blocked", p.key, err)
	}
	p.publish(eventbus.EventUnblocked, time.Time{}, nil)
	return nil
}

// Reset clears the last show, the first request and the block flag.
// NextShowAt is left untouched, use ResetAll to clear it too.
func (p *Policy) Reset(ctx context.Context) error {
	if err := p.store.SetLastShownAt(ctx, p.key, nil); err != nil {
		return errs.NewStateError("set last_shown_at", p.key, err)
	}
	if err := p.store.SetFirstShowRequestedAt(ctx, p.key, nil); err != nil {
		return errs.NewStateError("set first_show_requested_at", p.key, err)
	}
	if err := p.store.SetBlocked(ctx, p.key, false); err != nil {
		return errs.NewStateError("set blocked", p.key, err)
	}
	p.publish(eventbus.EventReset, time.Time{}, nil)
	return nil
}

// ResetAll returns the item to the never requested state.
func (p *Policy) ResetAll(ctx context.Context) error {
	if err := p.store.SetNextShowAt(ctx, p.key, nil); err != nil {
		return errs.NewStateError("set next_show_at", p.key, err)
	}
	return p.Reset(ctx)
}

func (p *Policy) State(ctx context.Context) (State, error) {
	state, err := p.store.Get(ctx, p.key)
	if err != nil {
		return State{}, errs.NewStateError("get", p.key, err)
	}
	return state, nil
}

func (p *Policy) FirstShowRequestedAt(ctx context.Context) (*time.Time, error) {
	state, err := p.State(ctx)
	return state.FirstShowRequestedAt, err
}

func (p *Policy) LastShownAt(ctx context.Context) (*time.Time, error) {
	state, err := p.State(ctx)
	return state.LastShownAt, err
}

func (p *Policy) NextShowAt(ctx context.Context) (*time.Time, error) {
	state, err := p.State(ctx)
	return state.NextShowAt, err
}

// IsBlocked reports the stored block flag or the host veto.
func (p *Policy) IsBlocked(ctx context.Context) (bool, error) {
	if p.alwaysBlock != nil && p.alwaysBlock(ctx) {
		return true, nil
	}
	state, err := p.State(ctx)
	return state.Blocked, err
}

// publish sends event stamped with t, the caller's now. Operations that take
// no now leave it zero.
func (p *Policy) publish(event string, t time.Time, at *time.Time) {
	if p.bus == nil {
		return
	}
	p.bus.Broadcast(event, &eventbus.ShowableData{
		Key:  p.key,
		Time: t,
		At:   at,
	})
}
