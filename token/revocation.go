package token

import (
	"sync"
	"time"
)

// RevokedSessionCache remembers login sessions ended by logout until their last access
// token would have expired anyway.
type RevokedSessionCache interface {
	Add(sessionID string, until time.Time) error
	IsRevoked(sessionID string) bool
	Cleanup() // Remove expired entries
}

// InMemoryRevokedSessionCache is a simple in-memory implementation
type InMemoryRevokedSessionCache struct {
	revoked map[string]time.Time
	now     func() time.Time
	mu      sync.RWMutex
}

func NewInMemoryRevokedSessionCache(now func() time.Time) *InMemoryRevokedSessionCache {
	if now == nil {
		now = time.Now
	}
	return &InMemoryRevokedSessionCache{
		revoked: make(map[string]time.Time),
		now:     now,
	}
}

func (c *InMemoryRevokedSessionCache) Add(sessionID string, until time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.revoked[sessionID]; ok && existing.After(until) {
		return nil
	}
	c.revoked[sessionID] = until
	return nil
}

func (c *InMemoryRevokedSessionCache) IsRevoked(sessionID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[sessionID]
	return exists
}

func (c *InMemoryRevokedSessionCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for sessionID, until := range c.revoked {
		if now.After(until) {
			delete(c.revoked, sessionID)
		}
	}
}
