package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	mr.Set("cart:session-1", `[{"quantity":2}]`)

	data, err := store.Get(ctx, "cart:session-1")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":2}]`, string(data))
}

func TestGet_NotFound(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	data, err := store.Get(context.Background(), "cart:missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, data)
}

func TestSet_ThenGet(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	err := store.Set(ctx, "cart:session-2", []byte(`[]`))
	require.NoError(t, err)

	data, err := store.Get(ctx, "cart:session-2")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestSet_NoExpiry(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	err := store.Set(context.Background(), "cart:session-3", []byte(`[]`))
	require.NoError(t, err)

	// Durable snapshot, not a cache: the key must not expire.
	assert.Zero(t, mr.TTL("cart:session-3"))
}

func TestDelete(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	mr.Set("cart:session-4", `[]`)

	err := store.Delete(ctx, "cart:session-4")
	require.NoError(t, err)

	_, err = store.Get(ctx, "cart:session-4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_MissingKeyIsNoop(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	err := store.Delete(context.Background(), "cart:never-existed")
	assert.NoError(t, err)
}
