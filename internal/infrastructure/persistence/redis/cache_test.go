package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/infrastructure/monitoring"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	conn := NewConnectionFromClient(client, monitoring.NewNopLogger())
	return NewCache(conn, time.Minute, monitoring.NewNopLogger()), mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "thing:1", cachedThing{Name: "widget", Count: 3}, time.Minute))

	var out cachedThing
	hit, err := cache.Get(ctx, "thing:1", &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "widget", out.Name)
	assert.Equal(t, 3, out.Count)
}

func TestCache_MissReturnsFalse(t *testing.T) {
	cache, _ := newTestCache(t)

	var out cachedThing
	hit, err := cache.Get(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_DeleteInvalidatesBothLevels(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "thing:1", cachedThing{Name: "widget"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "thing:1"))

	var out cachedThing
	hit, err := cache.Get(ctx, "thing:1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("thing:1"))
}

func TestCache_CorruptRedisEntryBehavesLikeMiss(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, mr.Set("thing:1", "{not json"))

	var out cachedThing
	hit, err := cache.Get(context.Background(), "thing:1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	// The corrupt entry was dropped so the caller's repopulation sticks.
	assert.False(t, mr.Exists("thing:1"))
}

func TestCache_ServesFromLocalAfterRedisLoss(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "thing:1", cachedThing{Name: "widget"}, time.Minute))
	mr.Close()

	var out cachedThing
	hit, err := cache.Get(ctx, "thing:1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "widget", out.Name)
}
