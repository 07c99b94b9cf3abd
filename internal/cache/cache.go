// Package cache defines the key-value store interface and its implementations.
//
// The cache holds the feed pipeline's dedup state: last-seen identifiers,
// normalized content snapshots, and outbound message-id slots. A missing key
// means "never seen" or "no active incident" and is reported as found=false,
// never as an error.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for all dedup-state persistence.
type Cache interface {
	// Get returns the value for key. found is false when the key is absent
	// or its TTL has elapsed.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key with no expiry.
	Set(ctx context.Context, key, value string) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Expire sets the remaining time-to-live for an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Close() error
}

// Save stores value under key and applies the given TTL.
func Save(ctx context.Context, c Cache, key, value string, ttl time.Duration) error {
	if err := c.Set(ctx, key, value); err != nil {
		return err
	}
	return c.Expire(ctx, key, ttl)
}
