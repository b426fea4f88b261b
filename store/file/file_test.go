package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/pkg/serializer"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/store/storetest"
)

func TestContract(t *testing.T) {
	for name, s := range map[string]serializer.Serializer{
		"msgpack": serializer.MsgPack,
		"json":    serializer.JSON,
	} {
		t.Run(name, func(t *testing.T) {
			storetest.Run(t, func(t *testing.T) policy.StateStore {
				store, err := Open(filepath.Join(t.TempDir(), "state"), s)
				require.NoError(t, err)
				return store
			})
		})
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	ctx := context.TODO()

	store, err := Open(path, serializer.MsgPack)
	require.NoError(t, err)
	require.NoError(t, store.SetLastShownAt(ctx, "rating", &storetest.Base))
	require.NoError(t, store.SetBlocked(ctx, "paywall", true))

	reopened, err := Open(path, serializer.MsgPack)
	require.NoError(t, err)
	assert.Equal(t, []string{"paywall", "rating"}, reopened.Keys())

	state, err := reopened.Get(ctx, "rating")
	require.NoError(t, err)
	storetest.AssertTime(t, &storetest.Base, state.LastShownAt)

	state, err = reopened.Get(ctx, "paywall")
	require.NoError(t, err)
	assert.True(t, state.Blocked)
}

func TestOpenCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path, serializer.JSON)
	assert.Error(t, err)
}

func TestFlushFailureRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o700))
	store, err := Open(filepath.Join(dir, "state"), serializer.JSON)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	ctx := context.TODO()
	err = store.SetBlocked(ctx, "rating", true)
	assert.Error(t, err)

	state, err := store.Get(ctx, "rating")
	require.NoError(t, err)
	assert.False(t, state.Blocked)
}
