package cache

import (
	"sync"
	"time"
)

// Cache is a TTL key-value cache.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Clear()
	Size() int
}

// InMemoryCache is the in-process Cache implementation. Expired items
// are dropped lazily on Get and swept once a minute.
type InMemoryCache[K comparable, V any] struct {
	items      map[K]*cacheItem[V]
	mu         sync.RWMutex
	defaultTTL time.Duration
}

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

// NewInMemoryCache builds a cache whose Set uses defaultTTL when called
// with a zero ttl.
func NewInMemoryCache[K comparable, V any](defaultTTL time.Duration) *InMemoryCache[K, V] {
	cache := &InMemoryCache[K, V]{
		items:      make(map[K]*cacheItem[V]),
		defaultTTL: defaultTTL,
	}
	go cache.startCleanup()
	return cache
}

func (c *InMemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}
	if time.Now().After(item.expiresAt) {
		go c.Delete(key)
		var zero V
		return zero, false
	}
	return item.value, true
}

func (c *InMemoryCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.items[key] = &cacheItem[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *InMemoryCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *InMemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*cacheItem[V])
}

func (c *InMemoryCache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *InMemoryCache[K, V]) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.cleanup()
	}
}

func (c *InMemoryCache[K, V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// ResponseCache holds rendered API responses keyed by route, so bursts
// of dashboard refreshes hit the venue once per window.
type ResponseCache struct {
	cache *InMemoryCache[string, []byte]
	ttl   time.Duration
}

// NewResponseCache builds a response cache with the given window. Zero
// means 5 seconds.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = 5 * time.Second
	}
	return &ResponseCache{
		cache: NewInMemoryCache[string, []byte](ttl),
		ttl:   ttl,
	}
}

// Fetch returns the cached body for key, or fills it. A fill error is
// returned uncached so the next request retries.
func (rc *ResponseCache) Fetch(key string, fill func() ([]byte, error)) ([]byte, error) {
	if body, ok := rc.cache.Get(key); ok {
		return body, nil
	}
	body, err := fill()
	if err != nil {
		return nil, err
	}
	rc.cache.Set(key, body, rc.ttl)
	return body, nil
}

// Invalidate drops one cached response.
func (rc *ResponseCache) Invalidate(key string) {
	rc.cache.Delete(key)
}
