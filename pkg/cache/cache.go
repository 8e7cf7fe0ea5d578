// Package cache stores built flow graphs and rendered artifacts.
//
// Building a graph from a large dataset and rasterising a page through a
// headless browser are the expensive steps of a flowatlas run. Results are
// cached under content-derived keys (see [Keyer]) so an unchanged dataset
// with unchanged options is served without recomputation.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under ~/.cache/flowatlas, for the CLI
//   - [RedisCache]: shared cache for several `flowatlas serve` instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// Use [Open] to construct a backend from [Options].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	TTLHTTP     = 24 * time.Hour
	TTLGraph    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
