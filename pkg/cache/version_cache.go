// Package cache holds the process-wide memoized master-copy version lookup.
// The cache is lazily populated on lookup and mutated only by explicit
// invalidation; registry writes clear it wholesale so subsequent lookups
// recompute from durable storage.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// VersionLoader resolves a master-copy version from durable storage.
type VersionLoader func(ctx context.Context, address string) (string, error)

// VersionCache memoizes per-address master-copy versions.
type VersionCache struct {
	mu       sync.RWMutex
	versions map[string]string
	load     VersionLoader
}

func NewVersionCache(load VersionLoader) *VersionCache {
	return &VersionCache{
		versions: make(map[string]string),
		load:     load,
	}
}

// VersionForAddress returns the memoized version for the address, loading and
// caching it on a miss. Loader errors are not cached.
func (c *VersionCache) VersionForAddress(ctx context.Context, address string) (string, error) {
	c.mu.RLock()
	v, ok := c.versions[address]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := c.load(ctx, address)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.versions[address] = v
	c.mu.Unlock()
	return v, nil
}

// AtLeast reports whether the master copy at address carries a version >= min.
// Used by indexer feature gates keyed on contract capabilities.
func (c *VersionCache) AtLeast(ctx context.Context, address, min string) (bool, error) {
	raw, err := c.VersionForAddress(ctx, address)
	if err != nil {
		return false, err
	}
	have, err := semver.NewVersion(raw)
	if err != nil {
		return false, fmt.Errorf("invalid master copy version %q for %s: %w", raw, address, err)
	}
	want, err := semver.NewVersion(min)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %q: %w", min, err)
	}
	return !have.LessThan(want), nil
}

// Invalidate drops a single memoized entry.
func (c *VersionCache) Invalidate(address string) {
	c.mu.Lock()
	delete(c.versions, address)
	c.mu.Unlock()
}

// Clear drops every memoized entry. Called on any master-copy registry write.
func (c *VersionCache) Clear() {
	c.mu.Lock()
	c.versions = make(map[string]string)
	c.mu.Unlock()
}

// Len returns the number of memoized entries, for tests and introspection.
func (c *VersionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.versions)
}
