package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/utils"
)

type entry struct {
	Name string `json:"name"`
}

func TestRedisCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	defer client.Close()
	if err := client.Ping(context.TODO()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	c := NewRedisCache(client, "showgate-test:"+utils.ShortID()+":")
	ctx := context.TODO()

	var v entry
	exist, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, exist)

	require.NoError(t, c.Put(ctx, "k", &entry{Name: "rating"}, time.Minute))
	exist, err = c.Exist(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exist)

	exist, err = c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.True(t, exist)
	assert.Equal(t, "rating", v.Name)

	require.NoError(t, c.Remove(ctx, "k"))
	exist, err = c.Exist(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exist)
}
