package kv

import (
	"context"
	"errors"
)

// Store is the durable client-side key-value contract the cart persists
// snapshots through. Consumers define this interface, not the Redis
// implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
