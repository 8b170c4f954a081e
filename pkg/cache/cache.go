// Package cache stores computed transmission values across runs.
//
// A [Cache] is a byte-oriented key-value store with optional expiry. Keys are
// produced by a [Keyer] from everything a transport query depends on, so a
// cached value is valid for as long as the model fingerprint, energy,
// parameter assignment and lead pair match.
//
// Three backends are provided:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// Cache failures never fail a sweep; callers treat errors as misses.
package cache

import (
	"context"
	"time"
)

// TTLPoint is how long a transmission value stays cached.
const TTLPoint = 30 * 24 * time.Hour

// Cache is a key-value store for cached results.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
