// Package storetest provides the contract every policy.StateStore must honor.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/policy"
)

// Base is a timestamp every backend can represent exactly.
var Base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Run runs the contract against stores built by factory.
func Run(t *testing.T, factory func(t *testing.T) policy.StateStore) {
	t.Run("unknown key reads as zero state", func(t *testing.T) {
		s := factory(t)
		state, err := s.Get(context.TODO(), "unknown")
		require.NoError(t, err)
		assert.Equal(t, policy.State{}, state)
	})

	t.Run("fields are independent", func(t *testing.T) {
		s := factory(t)
		ctx := context.TODO()
		first, last, next := Base, Base.Add(time.Hour), Base.Add(48*time.Hour)

		require.NoError(t, s.SetFirstShowRequestedAt(ctx, "item", &first))
		require.NoError(t, s.SetLastShownAt(ctx, "item", &last))
		require.NoError(t, s.SetNextShowAt(ctx, "item", &next))
		require.NoError(t, s.SetBlocked(ctx, "item", true))

		state, err := s.Get(ctx, "item")
		require.NoError(t, err)
		AssertTime(t, &first, state.FirstShowRequestedAt)
		AssertTime(t, &last, state.LastShownAt)
		AssertTime(t, &next, state.NextShowAt)
		assert.True(t, state.Blocked)

		require.NoError(t, s.SetLastShownAt(ctx, "item", nil))
		require.NoError(t, s.SetBlocked(ctx, "item", false))
		state, err = s.Get(ctx, "item")
		require.NoError(t, err)
		AssertTime(t, &first, state.FirstShowRequestedAt)
		assert.Nil(t, state.LastShownAt)
		AssertTime(t, &next, state.NextShowAt)
		assert.False(t, state.Blocked)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		s := factory(t)
		ctx := context.TODO()
		require.NoError(t, s.SetBlocked(ctx, "a", true))
		require.NoError(t, s.SetLastShownAt(ctx, "a", &Base))

		state, err := s.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, policy.State{}, state)
	})

	t.Run("policy scenario", func(t *testing.T) {
		s := factory(t)
		ctx := context.TODO()
		p := policy.New("rating", s, policy.Config{MinimumTimeBetweenShows: time.Minute})

		ok, err := p.CanShow(ctx, Base, true)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.CanShow(ctx, Base.Add(time.Minute), false)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = p.CanShow(ctx, Base.Add(70*time.Second), false)
		require.NoError(t, err)
		assert.True(t, ok)

		last, err := p.LastShownAt(ctx)
		require.NoError(t, err)
		AssertTime(t, &Base, last)
	})

	t.Run("sub-microsecond now", func(t *testing.T) {
		s := factory(t)
		ctx := context.TODO()
		p := policy.New("rating", s, policy.Config{})
		now := Base.Add(123456789 * time.Nanosecond)

		ok, err := p.CanShow(ctx, now, true)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.CanShow(ctx, now, true)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = p.CanShow(ctx, now.Add(time.Microsecond), true)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

// AssertTime compares instants regardless of location.
func AssertTime(t *testing.T, expected *time.Time, actual *time.Time) {
	t.Helper()
	if expected == nil {
		assert.Nil(t, actual)
		return
	}
	if assert.NotNil(t, actual) {
		assert.True(t, expected.Equal(*actual), "expected %s got %s", expected, actual)
	}
}
