// Package cache stores rendered call-graph artifacts.
//
// Laying out a large call graph with Graphviz is the slowest step of the
// pipeline, and the same DOT document is often rendered repeatedly (CI runs,
// repeated API requests). Artifacts are keyed by the hash of the DOT document
// and the output format, so any change to the graph, coverage or ranking
// produces a new key.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multiple API instances
//   - [MemoryCache]: bounded in-process LRU
//   - [NullCache]: disables caching
//
// [Tiered] puts a fast cache (usually a MemoryCache) in front of a slower one.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the cached data and whether the key was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a document rendered in format.
	ArtifactKey(docHash, format string) string
}

// DefaultKeyer builds keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the document hash together with the format.
func (DefaultKeyer) ArtifactKey(docHash, format string) string {
	return hashKey("artifact", docHash, format)
}
