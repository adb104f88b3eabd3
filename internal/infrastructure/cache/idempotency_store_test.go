package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyStore_ReserveCompleteReplay(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	orderID, reserved, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, orderID)

	// segundo intento mientras el primero sigue en curso
	orderID, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, orderID)

	require.NoError(t, store.Complete(ctx, "k1", "order-1"))
	orderID, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-1", orderID)

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"k1"))
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	_, reserved, err := store.Reserve(ctx, "k2")
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, store.Release(ctx, "k2"))
	assert.False(t, mr.Exists(keyPrefix+"k2"))

	_, reserved, err = store.Reserve(ctx, "k2")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_ExpiredKeyCanBeReserved(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	_, _, err := store.Reserve(ctx, "k3")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, "k3", "order-3"))

	mr.FastForward(2 * time.Hour)

	_, reserved, err := store.Reserve(ctx, "k3")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Reserve(ctx, "k4")
	assert.Error(t, err)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "::no-es-url")
	assert.Error(t, err)
}

func TestNewClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
