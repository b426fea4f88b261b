package policy

import (
	"context"

	"github.com/webhookx-io/showgate/eventbus"
	"go.uber.org/zap"
)

type Option func(p *Policy)

func WithPresenter(presenter Presenter) Option {
	return func(p *Policy) {
		p.presenter = presenter
	}
}

// WithAlwaysBlock installs a host veto evaluated before the stored flag,
// e.g. never show the paywall to subscribers.
func WithAlwaysBlock(fn func(ctx context.Context) bool) Option {
	return func(p *Policy) {
		p.alwaysBlock = fn
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Policy) {
		p.log = log
	}
}

func WithBus(bus eventbus.Bus) Option {
	return func(p *Policy) {
		p.bus = bus
	}
}

// WithLocker serializes committing checks on the same key.
func WithLocker(locker Locker) Option {
	return func(p *Policy) {
		p.locker = locker
	}
}
