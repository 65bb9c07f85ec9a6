package cache

import (
	"math"
	"sync"
)

// DefaultMaxSize is the per-key cap used when no explicit size is given.
const DefaultMaxSize = 20

// Cache is a keyed, insertion-ordered, size-capped sequence store.
// When an append would exceed the cap the oldest items are evicted first.
// All methods are safe for concurrent use.
type Cache[T any] struct {
	mu      sync.RWMutex
	maxSize int
	data    map[string][]T
}

// Stats summarizes cache occupancy.
type Stats struct {
	TotalKeys          int
	TotalItems         int
	MaxSize            int
	AverageItemsPerKey float64
}

// New creates a cache with the given per-key cap. A cap of zero or less
// falls back to DefaultMaxSize.
func New[T any](maxSize int) *Cache[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache[T]{
		maxSize: maxSize,
		data:    make(map[string][]T),
	}
}

// Add appends item under key, evicting the oldest items beyond the cap.
func (c *Cache[T]) Add(key string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated := append(c.data[key], item)
	if len(updated) > c.maxSize {
		updated = updated[len(updated)-c.maxSize:]
	}
	c.data[key] = updated
}

// Set replaces the sequence for key with a trimmed copy of items,
// keeping the newest (last) entries when items exceeds the cap.
func (c *Cache[T]) Set(key string, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(items) > c.maxSize {
		items = items[len(items)-c.maxSize:]
	}
	copied := make([]T, len(items))
	copy(copied, items)
	c.data[key] = copied
}

// Get returns a copy of the sequence for key, or an empty slice if the
// key is unknown. Never returns nil.
func (c *Cache[T]) Get(key string) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := c.data[key]
	copied := make([]T, len(items))
	copy(copied, items)
	return copied
}

// Has reports whether key exists and holds at least one item.
func (c *Cache[T]) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items, ok := c.data[key]
	return ok && len(items) > 0
}

// Size returns the number of items cached under key.
func (c *Cache[T]) Size(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data[key])
}

// Keys returns all cached keys.
func (c *Cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	return keys
}

// TotalSize returns the total number of items across all keys.
func (c *Cache[T]) TotalSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalSizeLocked()
}

func (c *Cache[T]) totalSizeLocked() int {
	total := 0
	for _, items := range c.data {
		total += len(items)
	}
	return total
}

// Clear removes the sequence for key.
func (c *Cache[T]) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// ClearAll removes every key.
func (c *Cache[T]) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]T)
}

// SetMaxSize changes the per-key cap and immediately retrims any key
// currently exceeding it.
func (c *Cache[T]) SetMaxSize(maxSize int) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSize = maxSize
	for key, items := range c.data {
		if len(items) > maxSize {
			c.data[key] = items[len(items)-maxSize:]
		}
	}
}

// MaxSize returns the current per-key cap.
func (c *Cache[T]) MaxSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxSize
}

// GetStats returns occupancy statistics. The average is rounded to two
// decimals.
func (c *Cache[T]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalKeys := len(c.data)
	totalItems := c.totalSizeLocked()
	average := 0.0
	if totalKeys > 0 {
		average = math.Round(float64(totalItems)/float64(totalKeys)*100) / 100
	}

	return Stats{
		TotalKeys:          totalKeys,
		TotalItems:         totalItems,
		MaxSize:            c.maxSize,
		AverageItemsPerKey: average,
	}
}
