package query

import (
	"strings"
	"sync"
)

// invalidatable is the part of a Resource the cache registry needs.
type invalidatable interface {
	Invalidate()
}

// Cache is the process-wide registry of resources by key. Mutation success
// callbacks invalidate keys here so dependent screens refetch on their next
// tick. One Cache is created at startup and threaded through the
// composition root; nothing imports a global.
type Cache struct {
	mu        sync.Mutex
	resources map[string][]invalidatable
}

// NewCache creates an empty registry.
func NewCache() *Cache {
	return &Cache{resources: make(map[string][]invalidatable)}
}

func (c *Cache) register(key string, r invalidatable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[key] = append(c.resources[key], r)
}

// Invalidate marks every resource registered under the given keys stale.
// Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		for _, r := range c.resources[key] {
			r.Invalidate()
		}
	}
}

// InvalidatePrefix marks every resource whose key starts with prefix stale.
// Used for schema families ("schemas/source/").
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, resources := range c.resources {
		if strings.HasPrefix(key, prefix) {
			for _, r := range resources {
				r.Invalidate()
			}
		}
	}
}
