package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
)

type profileSnapshot struct {
	UserUID   string `json:"user_uid"`
	DayNumber int    `json:"day_number"`
}

const testPrefix = "test:"

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := InitServer(context.Background(), config.RedisConnection{
		AddressRedis: mr.Addr(),
		KeyPrefix:    testPrefix,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetUsesPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	want := profileSnapshot{UserUID: "u1", DayNumber: 15}
	require.NoError(t, c.Set(ctx, "profile:u1", want, time.Minute))

	assert.True(t, mr.Exists(testPrefix+"profile:u1"))
	assert.False(t, mr.Exists("profile:u1"))
	assert.Equal(t, time.Minute, mr.TTL(testPrefix+"profile:u1"))

	var got profileSnapshot
	found, err := c.Get(ctx, "profile:u1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestCache_Misses(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(ctx context.Context, c *Cache, mr *miniredis.Miniredis)
	}{
		{
			name:    "absent key",
			prepare: func(context.Context, *Cache, *miniredis.Miniredis) {},
		},
		{
			name: "expired key",
			prepare: func(ctx context.Context, c *Cache, mr *miniredis.Miniredis) {
				require.NoError(t, c.Set(ctx, "k", profileSnapshot{UserUID: "u1"}, time.Minute))
				mr.FastForward(2 * time.Minute)
			},
		},
		{
			name: "invalidated key",
			prepare: func(ctx context.Context, c *Cache, _ *miniredis.Miniredis) {
				require.NoError(t, c.Set(ctx, "k", profileSnapshot{UserUID: "u1"}, time.Minute))
				require.NoError(t, c.Invalidate(ctx, "k"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mr := newTestCache(t)
			ctx := context.Background()
			tt.prepare(ctx, c, mr)

			var out profileSnapshot
			found, err := c.Get(ctx, "k", &out)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestCache_TakeIsSingleUse(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "handoff:ABC123", profileSnapshot{UserUID: "u1"}, time.Minute))

	var first profileSnapshot
	found, err := c.Take(ctx, "handoff:ABC123", &first)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u1", first.UserUID)

	found, err = c.Take(ctx, "handoff:ABC123", &first)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Claim(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Claim(ctx, "stripe:event:evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Claim(ctx, "stripe:event:evt_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	mr.FastForward(2 * time.Hour)
	ok, err = c.Claim(ctx, "stripe:event:evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "claim is free again after ttl")
}

func TestCache_GetInvalidJSON(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(testPrefix+"bad", "not-json"))

	var out profileSnapshot
	found, err := c.Get(context.Background(), "bad", &out)
	assert.False(t, found)
	assert.ErrorContains(t, err, "cache.Get")
}

func TestCache_ErrorsWhenRedisGone(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))
	_, err := c.Claim(ctx, "k", time.Minute)
	assert.ErrorContains(t, err, "cache.Claim")
}

func TestInitServer_Unreachable(t *testing.T) {
	c, err := InitServer(context.Background(), config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	})
	assert.Nil(t, c)
	assert.ErrorContains(t, err, "cache.InitServer")
}
