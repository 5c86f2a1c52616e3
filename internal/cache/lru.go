// Package cache provides the bounded recency cache used for resolved word
// tooltips.
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is the entry-count bound used when no capacity is
// configured.
const DefaultCapacity = 1000

type entry struct {
	key   string
	value string
}

// LRU is a capacity-bounded key/value store with least-recently-used
// eviction. There is no time-based expiry and no byte bound, only an entry
// count bound. A single instance is shared by all pages for the lifetime of
// the process; it is safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

// NewLRU creates an LRU cache bounded to capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the value for key. A hit moves the entry to the
// most-recently-used position.
func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Set inserts or overwrites the value for key and marks it most recently
// used. If the insertion pushes the size above capacity, the single
// least-recently-used entry is evicted.
func (c *LRU) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the configured capacity bound.
func (c *LRU) Cap() int {
	return c.capacity
}
