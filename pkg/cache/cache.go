// Package cache provides byte caches for downloaded templates and exports.
//
// Two implementations are provided:
//   - [FileCache]: entries stored as files under a directory (CLI default,
//     ~/.cache/ringtower)
//   - [NullCache]: never stores anything (tests, --no-cache)
//
// Keys are built by a [Keyer] so that every producer namespaces its entries
// the same way.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or when the
	// entry has expired.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
