package viewstate

import lru "github.com/hashicorp/golang-lru/v2"

// DefaultCacheCapacity is used when a RenderCache is built with capacity <= 0.
const DefaultCacheCapacity = 1000

// RenderKey identifies one rendering of one entry. It carries every input
// that changes the output, so a stale rendering can never be looked up and
// nothing needs explicit invalidation.
type RenderKey struct {
	EntryID  string
	Width    int
	Expanded bool
	Wrap     WrapMode
}

// RenderCache is a bounded store of pre-rendered entry lines with
// least-recently-used eviction. It belongs to the rendering shell, not to
// the view-state tree, since its keys span conversations.
type RenderCache struct {
	lru      *lru.Cache[RenderKey, []string]
	capacity int
	hits     uint64
	misses   uint64
}

// NewRenderCache returns a cache holding at most capacity renderings.
func NewRenderCache(capacity int) *RenderCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[RenderKey, []string](capacity)
	return &RenderCache{lru: c, capacity: capacity}
}

// Get returns the cached lines for key and marks them most recently used.
func (c *RenderCache) Get(key RenderKey) ([]string, bool) {
	lines, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return lines, ok
}

// Put stores lines under key, evicting the least recently used entry when
// the cache is full. Returns whether an eviction happened.
func (c *RenderCache) Put(key RenderKey, lines []string) bool {
	return c.lru.Add(key, lines)
}

// GetOrRender returns the cached lines for key, calling render and storing
// its result on a miss.
func (c *RenderCache) GetOrRender(key RenderKey, render func() []string) []string {
	if lines, ok := c.Get(key); ok {
		return lines
	}
	lines := render()
	c.Put(key, lines)
	return lines
}

// Contains reports whether key is cached without touching its recency.
func (c *RenderCache) Contains(key RenderKey) bool { return c.lru.Contains(key) }

// Len returns the number of cached renderings.
func (c *RenderCache) Len() int { return c.lru.Len() }

// Capacity returns the maximum number of cached renderings.
func (c *RenderCache) Capacity() int { return c.capacity }

// Purge drops every cached rendering, e.g. after a theme change.
func (c *RenderCache) Purge() { c.lru.Purge() }

// Stats returns the hit and miss counts since creation.
func (c *RenderCache) Stats() (hits, misses uint64) { return c.hits, c.misses }
