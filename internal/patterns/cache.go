// internal/patterns/cache.go

package patterns

import (
	"sync"
	"time"
)

const (
	DefaultCacheSize = 10000
	DefaultCacheTTL  = 15 * time.Minute
)

type cacheEntry struct {
	key       string
	value     *UserPreferences
	expiresAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

// PreferenceCache is a bounded LRU of user preferences with a per-entry TTL.
// Expired entries are dropped lazily on access.
type PreferenceCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*cacheEntry
	// head.next is the most recently used entry, tail.prev the least.
	head *cacheEntry
	tail *cacheEntry

	hits   int64
	misses int64
}

func NewPreferenceCache(capacity int, ttl time.Duration) *PreferenceCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &PreferenceCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*cacheEntry),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns a copy of the cached preferences for userID.
func (c *PreferenceCache) Get(userID string) (*UserPreferences, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[userID]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.remove(entry)
		c.misses++
		return nil, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.value.Clone(), true
}

// Add stores a copy of prefs, evicting the least recently used entry when
// the cache is full.
func (c *PreferenceCache) Add(userID string, prefs *UserPreferences) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if entry, ok := c.items[userID]; ok {
		entry.value = prefs.Clone()
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{key: userID, value: prefs.Clone(), expiresAt: expiresAt}
	c.addToFront(entry)
	c.items[userID] = entry

	for len(c.items) > c.capacity {
		c.remove(c.tail.prev)
	}
}

func (c *PreferenceCache) Remove(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[userID]; ok {
		c.remove(entry)
	}
}

func (c *PreferenceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counts since creation.
func (c *PreferenceCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *PreferenceCache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *PreferenceCache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *PreferenceCache) remove(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}
