package wildcardstore

import (
	"context"
	"sync"
	"time"

	"github.com/imagegen/paramweave/paramcore"
)

// CacheConfig configures a CachedStore.
type CacheConfig struct {
	// TTL is how long a cached file list or wildcard file stays fresh
	// before the next lookup re-fetches it from Backing. Zero means
	// entries never expire on their own.
	TTL time.Duration

	// MaxItems caps how many wildcard files are held in memory at once
	// (default 1000). The least recently touched entry is evicted first.
	MaxItems int
}

type cacheEntry struct {
	file    paramcore.WildcardFile
	expires time.Time
	touched time.Time
}

// CachedStore wraps a paramcore.WildcardStore with an in-memory, TTL- and
// LRU-bounded cache, so a request that touches the same wildcard twice
// (once to estimate length, once to expand it) only reads through Backing
// once. Mutations are serialized with a single RWMutex, since wildcard
// lookups are small and infrequent enough that finer-grained locking
// would not pay for its own complexity.
type CachedStore struct {
	Backing paramcore.WildcardStore
	config  CacheConfig

	mu       sync.RWMutex
	files    map[string]*cacheEntry
	fileList []string
	listedAt time.Time
}

// NewCachedStore wraps backing with an in-memory cache.
func NewCachedStore(backing paramcore.WildcardStore, config CacheConfig) *CachedStore {
	if config.MaxItems == 0 {
		config.MaxItems = 1000
	}
	return &CachedStore{
		Backing: backing,
		config:  config,
		files:   make(map[string]*cacheEntry),
	}
}

// ListFiles returns the cached file-name list, refreshing it from Backing
// once the TTL elapses.
func (c *CachedStore) ListFiles(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	fresh := c.fileList != nil && !c.listingExpired()
	names := c.fileList
	c.mu.RUnlock()
	if fresh {
		return names, nil
	}

	names, err := c.Backing.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.fileList = names
	c.listedAt = time.Now()
	c.mu.Unlock()
	return names, nil
}

// Get returns the cached wildcard file, refreshing it from Backing once
// the TTL elapses or it has never been fetched.
func (c *CachedStore) Get(ctx context.Context, name string) (paramcore.WildcardFile, error) {
	c.mu.RLock()
	entry, ok := c.files[name]
	c.mu.RUnlock()
	if ok && !c.expired(entry.expires) {
		c.mu.Lock()
		entry.touched = time.Now()
		c.mu.Unlock()
		return entry.file, nil
	}

	file, err := c.Backing.Get(ctx, name)
	if err != nil {
		return paramcore.WildcardFile{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	expires := time.Time{}
	if c.config.TTL > 0 {
		expires = now.Add(c.config.TTL)
	}
	c.files[name] = &cacheEntry{file: file, expires: expires, touched: now}
	c.evictIfOverCapLocked()
	return file, nil
}

// expired reports whether a precomputed expiry timestamp has passed. A
// zero timestamp means "never expires" (TTL was 0 when it was stored).
func (c *CachedStore) expired(expires time.Time) bool {
	return !expires.IsZero() && time.Now().After(expires)
}

// listingExpired reports whether the cached file-name list is past its
// TTL, computed from when it was last fetched.
func (c *CachedStore) listingExpired() bool {
	if c.config.TTL == 0 {
		return false
	}
	return time.Now().After(c.listedAt.Add(c.config.TTL))
}

// evictIfOverCapLocked drops the least-recently-touched entry until the
// cache is back within MaxItems. Callers must hold c.mu.
func (c *CachedStore) evictIfOverCapLocked() {
	for len(c.files) > c.config.MaxItems {
		var oldestName string
		var oldestTime time.Time
		for name, e := range c.files {
			if oldestName == "" || e.touched.Before(oldestTime) {
				oldestName = name
				oldestTime = e.touched
			}
		}
		if oldestName == "" {
			return
		}
		delete(c.files, oldestName)
	}
}
