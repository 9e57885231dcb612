package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/kvstore/memory"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.Get(ctx, "authToken")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "authToken", "demo-token"))
	v, err := s.Get(ctx, "authToken")
	require.NoError(t, err)
	require.Equal(t, "demo-token", v)

	require.NoError(t, s.Remove(ctx, "authToken"))
	require.NoError(t, s.Remove(ctx, "authToken"), "removing twice is not an error")
	require.Equal(t, 0, s.Len())
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	a := kvstore.NewScoped(backend, "tab-a")
	b := kvstore.NewScoped(backend, "tab-b")

	require.NoError(t, a.Set(ctx, "username", "alice"))

	_, err := b.Get(ctx, "username")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	v, err := backend.Get(ctx, "tab-a:username")
	require.NoError(t, err)
	require.Equal(t, "alice", v)

	require.NoError(t, a.Remove(ctx, "username"))
	require.Equal(t, 0, backend.Len())
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s := memory.New(memory.WithTTL(time.Hour), memory.WithClock(func() time.Time { return now }))

	require.NoError(t, s.Set(ctx, "tab-a:authView", "a"))
	require.NoError(t, s.Set(ctx, "tab-b:authView", "b"))

	t.Run("reads keep an entry alive", func(t *testing.T) {
		now = now.Add(45 * time.Minute)
		v, err := s.Get(ctx, "tab-a:authView")
		require.NoError(t, err)
		require.Equal(t, "a", v)
	})

	t.Run("idle entries expire", func(t *testing.T) {
		now = now.Add(30 * time.Minute)
		_, err := s.Get(ctx, "tab-b:authView")
		require.ErrorIs(t, err, kvstore.ErrNotFound)
		require.Equal(t, 1, s.Len())
	})

	t.Run("sweep drops expired entries", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "tab-c:flash", "c"))
		now = now.Add(61 * time.Minute)
		require.NoError(t, s.Set(ctx, "tab-d:flash", "d"))

		require.Equal(t, 2, s.Sweep())
		require.Equal(t, 1, s.Len())
		v, err := s.Get(ctx, "tab-d:flash")
		require.NoError(t, err)
		require.Equal(t, "d", v)
	})
}

func TestSweepWithoutTTL(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	require.Equal(t, 0, s.Sweep())
	require.Equal(t, 1, s.Len())
}
