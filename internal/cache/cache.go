// Package cache keeps recently fetched source results in memory so scheduled
// runs inside the TTL window do not re-hit unchanged feeds.
package cache

import (
	"sync"
	"time"

	"github.com/alaamer12/DevCurator/internal/post"
)

type item struct {
	posts     []post.Post
	expiresAt time.Time
}

type FeedCache struct {
	mu    sync.RWMutex
	items map[string]item
}

func New() *FeedCache {
	c := &FeedCache{
		items: make(map[string]item),
	}

	// Cleanup expired entries every hour
	go c.cleanupLoop()

	return c
}

func (c *FeedCache) Set(key string, posts []post.Post, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		posts:     posts,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *FeedCache) Get(key string) ([]post.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(it.expiresAt) {
		return nil, false
	}

	return it.posts, true
}

func (c *FeedCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *FeedCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}
