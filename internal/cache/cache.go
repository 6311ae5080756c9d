// Package cache holds source entities read on the dispatch hot path.
//
// Entries expire after a TTL and can be dropped early by tag, so an edit to
// an operator invalidates every cached vehicle snapshot that embedded it.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a key/value store with expiry and tag-based invalidation.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, tags ...string)
	InvalidateTag(tag string)
	Flush()
}

// TagCache implements Cache on top of go-cache.
type TagCache struct {
	items *gocache.Cache

	mu      sync.Mutex
	byTag   map[string]map[string]struct{}
	keyTags map[string][]string
}

// NewTagCache creates a cache whose entries live for ttl.
func NewTagCache(ttl, cleanupInterval time.Duration) *TagCache {
	c := &TagCache{
		items:   gocache.New(ttl, cleanupInterval),
		byTag:   make(map[string]map[string]struct{}),
		keyTags: make(map[string][]string),
	}
	c.items.OnEvicted(func(key string, _ interface{}) {
		c.forget(key)
	})
	return c
}

func (c *TagCache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

func (c *TagCache) Set(key string, value any, tags ...string) {
	c.mu.Lock()
	c.unlinkLocked(key)
	for _, tag := range tags {
		keys, ok := c.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
	if len(tags) > 0 {
		c.keyTags[key] = append([]string(nil), tags...)
	}
	c.mu.Unlock()

	c.items.Set(key, value, gocache.DefaultExpiration)
}

// InvalidateTag drops every entry stored with the tag.
func (c *TagCache) InvalidateTag(tag string) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.byTag[tag]))
	for key := range c.byTag[tag] {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	// go-cache calls OnEvicted outside its own lock, which re-enters forget.
	for _, key := range keys {
		c.items.Delete(key)
	}
}

func (c *TagCache) Flush() {
	c.items.Flush()
	c.mu.Lock()
	c.byTag = make(map[string]map[string]struct{})
	c.keyTags = make(map[string][]string)
	c.mu.Unlock()
}

func (c *TagCache) forget(key string) {
	c.mu.Lock()
	c.unlinkLocked(key)
	c.mu.Unlock()
}

func (c *TagCache) unlinkLocked(key string) {
	for _, tag := range c.keyTags[key] {
		if keys, ok := c.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
	delete(c.keyTags, key)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) (any, bool)     { return nil, false }
func (Nop) Set(string, any, ...string) {}
func (Nop) InvalidateTag(string)       {}
func (Nop) Flush()                     {}

// Tag helpers keep tag spelling in one place.
func VehicleTag(id string) string  { return "vehicle:" + id }
func OperatorTag(id string) string { return "operator:" + id }
func RouteTag(id string) string    { return "route:" + id }
func LocationTag(id string) string { return "location:" + id }
func DriverTag(id string) string   { return "driver:" + id }
