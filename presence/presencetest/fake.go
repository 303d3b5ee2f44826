// Package presencetest provides a hand-written in-memory TxPresenceCache
// for tests.
package presencetest

import (
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/ordergate/presence"
)

// Cache is an in-memory presence.Cache; hashes default to Unknown until
// marked.
type Cache struct {
	mu     sync.Mutex
	status map[ids.ID]presence.Status
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{status: make(map[ids.ID]presence.Status)}
}

// MarkCommitted marks hash as committed.
func (c *Cache) MarkCommitted(hash ids.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[hash] = presence.Committed
}

// MarkRejected marks hash as rejected.
func (c *Cache) MarkRejected(hash ids.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[hash] = presence.Rejected
}

// Check implements presence.Cache.
func (c *Cache) Check(hash ids.ID) presence.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status[hash]
}
