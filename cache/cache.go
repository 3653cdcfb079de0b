// Package cache provides the response cache used to deduplicate identical
// upstream calls within a short window. Two backends implement the same
// Store interface: a process-local TTL map and a shared Redis store. The
// backend is picked at startup and injected into the request handlers.
package cache

import (
	"context"
	"time"
)

// Store is a keyed cache with per-entry time-to-live. Lookups past expiry
// are misses. Entries are idempotently overwritable, so no locking is
// required around read-then-write update patterns at the call sites.
type Store interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// a live entry was found.
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete drops the entry for key, if any.
	Delete(ctx context.Context, key string)
}
