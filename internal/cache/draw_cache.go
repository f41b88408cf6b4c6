package cache

import (
	"sync"
	"time"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

// DrawCache memoizes latest-draw lookups for the public results page. Draws
// are append-only, so a short TTL is enough to keep reads fresh.
type DrawCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]cached
}

type cached struct {
	draw    *models.Draw
	expires time.Time
}

func NewDrawCache(ttl time.Duration) *DrawCache {
	return &DrawCache{
		ttl:   ttl,
		store: make(map[string]cached),
	}
}

func (c *DrawCache) Get(key string) (*models.Draw, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.store[key]
	if !ok || time.Now().After(item.expires) {
		return nil, false
	}
	return item.draw, true
}

func (c *DrawCache) Set(key string, draw *models.Draw) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = cached{draw: draw, expires: time.Now().Add(c.ttl)}
}

// Invalidate drops every cached value; called after a draw is conducted.
func (c *DrawCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cached)
}
