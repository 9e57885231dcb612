package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/kvstore/redisstore"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a Store pointing at it
func setupTestRedis(t *testing.T, ttl time.Duration) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := redisstore.New(client, ttl)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, 0)

	_, err := s.Get(ctx, "checkoutArtwork")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "checkoutArtwork", `{"name":"Dusk"}`))
	v, err := s.Get(ctx, "checkoutArtwork")
	require.NoError(t, err)
	require.Equal(t, `{"name":"Dusk"}`, v)
	require.Equal(t, time.Duration(0), mr.TTL("checkoutArtwork"))

	require.NoError(t, s.Remove(ctx, "checkoutArtwork"))
	require.False(t, mr.Exists("checkoutArtwork"))
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, time.Hour)

	require.NoError(t, s.Set(ctx, "authToken", "demo-token"))
	require.Equal(t, time.Hour, mr.TTL("authToken"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "authToken")
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := redisstore.Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
