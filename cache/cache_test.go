package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, time.Minute), mr
}

func TestRedisRoundTrip(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	var got item
	require.ErrorIs(t, c.GetJSON(ctx, "medicines:1", &got), ErrMiss)

	require.NoError(t, c.SetJSON(ctx, "medicines:1", item{Name: "Paracetamol", Stock: 4}))
	require.NoError(t, c.GetJSON(ctx, "medicines:1", &got))
	assert.Equal(t, item{Name: "Paracetamol", Stock: 4}, got)

	mr.FastForward(2 * time.Minute)
	require.ErrorIs(t, c.GetJSON(ctx, "medicines:1", &got), ErrMiss)
}

func TestRedisDeletePrefix(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "medicines:list:a", 1))
	require.NoError(t, c.SetJSON(ctx, "medicines:list:b", 2))
	require.NoError(t, c.SetJSON(ctx, "categories", 3))

	require.NoError(t, c.DeletePrefix(ctx, "medicines:"))
	assert.False(t, mr.Exists("medicines:list:a"))
	assert.False(t, mr.Exists("medicines:list:b"))
	assert.True(t, mr.Exists("categories"))

	require.NoError(t, c.DeletePrefix(ctx, "nothing:"))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	var got item
	assert.ErrorIs(t, c.GetJSON(context.Background(), "k", &got), ErrMiss)
	assert.NoError(t, c.SetJSON(context.Background(), "k", got))
	assert.NoError(t, c.DeletePrefix(context.Background(), "k"))
}
