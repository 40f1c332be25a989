package transport

import (
	"fmt"
	"sync"
)

// connectionCache maps an alias to an accepted Connection, adapted from
// the server's ROA cache: the same mutex-guarded map idiom, repurposed
// to hold live connections instead of routing data (spec.md §5 "Shared
// resources").
type connectionCache struct {
	mu      sync.RWMutex
	byAlias map[string]*Connection
	order   []string // insertion order, for get("") "most recently added"
	counter int
}

func newConnectionCache() *connectionCache {
	return &connectionCache{byAlias: make(map[string]*Connection)}
}

// add stores conn under alias, generating "connection<n>" if alias is
// empty (spec.md §5).
func (c *connectionCache) add(alias string, conn *Connection) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if alias == "" {
		c.counter++
		alias = fmt.Sprintf("connection%d", c.counter)
	}
	c.byAlias[alias] = conn
	c.order = append(c.order, alias)
	return alias
}

// get returns the connection for alias, or — when alias is empty — the
// most recently added connection still present in the cache.
func (c *connectionCache) get(alias string) (*Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if alias != "" {
		conn, ok := c.byAlias[alias]
		return conn, ok
	}
	for i := len(c.order) - 1; i >= 0; i-- {
		if conn, ok := c.byAlias[c.order[i]]; ok {
			return conn, true
		}
	}
	return nil, false
}

// remove drops alias from the cache, returning the connection it held.
func (c *connectionCache) remove(alias string) (*Connection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.byAlias[alias]
	if ok {
		delete(c.byAlias, alias)
	}
	return conn, ok
}

func (c *connectionCache) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byAlias)
}
