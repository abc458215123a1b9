// Package kvstore abstracts the TTL key-value store backing the list cache.
// The interface matches what a remote store (Redis, Cloudflare KV) offers so
// the in-memory implementation can be swapped without touching callers.
package kvstore

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the stored value and whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key for ttl. A zero ttl means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
