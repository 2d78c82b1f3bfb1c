package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Email string `json:"email"`
}

func TestClient_StoreLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	c := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}), zerolog.Nop())
	defer c.Close()
	ctx := context.Background()

	var got entry
	assert.False(t, c.Load(ctx, "user:a", &got))

	c.Store(ctx, "user:a", entry{Email: "a@x.io"}, time.Minute)
	require.True(t, c.Load(ctx, "user:a", &got))
	assert.Equal(t, "a@x.io", got.Email)

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.Load(ctx, "user:a", &got), "expired")

	c.Set(ctx, "user:b", []byte("{"), time.Minute)
	assert.False(t, c.Load(ctx, "user:b", &got))
	assert.False(t, mr.Exists("user:b"), "unreadable entry is evicted")

	c.Store(ctx, "user:c", entry{}, time.Minute)
	c.Delete(ctx, "user:c")
	assert.Nil(t, c.Get(ctx, "user:c"))
}

func TestClient_FailSafe(t *testing.T) {
	mr := miniredis.RunT(t)
	c := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), zerolog.Nop())
	defer c.Close()
	mr.Close()
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "user:a"))
	assert.NotPanics(t, func() {
		c.Store(ctx, "user:a", entry{}, time.Minute)
		c.Delete(ctx, "user:a")
	})

	var nilClient *Client
	assert.Nil(t, nilClient.Get(ctx, "k"))
	assert.NoError(t, nilClient.Close())
}
