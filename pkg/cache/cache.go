// Package cache stores rendered topology artifacts.
//
// Rendering a DOT document is by far the slowest step of the pipeline, and a
// media graph rarely changes between runs. Artifacts are therefore keyed by
// the hash of the DOT text plus the output format and engine, so an
// unchanged topology is served from the cache.
//
// Backends:
//
//   - [FileCache]: per-user cache directory, snappy-compressed entries
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer]. [ScopedKeyer] separates the namespaces of
// different media devices.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies a rendered artifact of the DOT text with the
	// given hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256 of hash and options>".
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dotHash, opts)
}
