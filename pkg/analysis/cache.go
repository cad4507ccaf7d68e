package analysis

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/zeebo/blake3"

	"github.com/l3aro/rdflow/pkg/cache"
)

// CacheFileName is the file ResultCache persists to inside its directory.
const CacheFileName = "results.msgpack"

// AnalysisVersion is part of every cache key. Bump it whenever a change to
// the classifiers, leader rules, linkers or solver alters results, so stale
// entries in persisted caches are never served.
const AnalysisVersion = 2

// ResultCache keeps analysis results keyed by source content and options.
// Cached results are shared between callers and must not be modified.
type ResultCache struct {
	lru  *cache.LRU[*Result]
	path string
}

// NewResultCache creates an in-memory cache holding at most maxEntries
// results. It is not persisted.
func NewResultCache(maxEntries int) *ResultCache {
	return &ResultCache{lru: cache.New(cache.Options[*Result]{MaxSize: maxEntries})}
}

// OpenCache loads the cache stored in dir, starting empty when there is none.
func OpenCache(dir string, maxEntries int) (*ResultCache, error) {
	c := NewResultCache(maxEntries)
	c.path = filepath.Join(dir, CacheFileName)
	if err := c.lru.LoadFromFile(c.path); err != nil {
		return nil, fmt.Errorf("loading analysis cache: %w", err)
	}
	return c, nil
}

// Key derives the cache key of src analysed with opts. An empty key means
// the options could not be hashed and the result is not cacheable.
func (c *ResultCache) Key(src string, opts Options) string {
	return cacheKey(AnalysisVersion, src, opts)
}

func cacheKey(version int, src string, opts Options) string {
	h, err := hashstructure.Hash(opts, hashstructure.FormatV2, nil)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256([]byte(src))
	return fmt.Sprintf("v%d-%s-%016x", version, hex.EncodeToString(sum[:]), h)
}

// Get returns the cached result for key.
func (c *ResultCache) Get(key string) (*Result, bool) {
	return c.lru.Get(key)
}

// Set stores r under key.
func (c *ResultCache) Set(key string, r *Result) {
	c.lru.Set(key, r)
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Stats returns the hit and miss counters.
func (c *ResultCache) Stats() cache.Stats {
	return c.lru.Stats()
}

// Path returns the file the cache persists to, or "" for a memory-only cache.
func (c *ResultCache) Path() string {
	return c.path
}

// Save writes the cache back to disk. A memory-only cache is left alone.
func (c *ResultCache) Save() error {
	if c.path == "" {
		return nil
	}
	if err := c.lru.PersistToFile(c.path); err != nil {
		return fmt.Errorf("saving analysis cache: %w", err)
	}
	return nil
}
