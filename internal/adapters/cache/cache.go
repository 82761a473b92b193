// Package cache keeps rendered charts in memory.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize bounds the in-memory cache when no size is configured.
const DefaultMaxSize = 256

// Key identifies one rendered chart.
type Key struct {
	Chart string
	Site  string
	Min   float64
	Max   float64
}

// String renders the key in a stable, log-friendly form.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Chart, k.Site,
		strconv.FormatFloat(k.Min, 'g', -1, 64), strconv.FormatFloat(k.Max, 'g', -1, 64))
}

// Cache stores rendered chart bytes. Implementations must be safe for
// concurrent use; the bytes returned by Get must not be modified.
type Cache interface {
	Get(ctx context.Context, k Key) ([]byte, bool)
	Put(ctx context.Context, k Key, v []byte)
	Size() int64
}

// node is one entry in the insertion-ordered list.
type node struct {
	key        Key
	val        []byte
	prev, next *node
}

// inMemoryCache evicts the oldest insertion once maxSize entries are held.
type inMemoryCache struct {
	mu         sync.Mutex
	entries    map[Key]*node
	head, tail *node // head is newest
	maxSize    int
	size       atomic.Int64
}

// NewInMemoryCache creates a new in-memory cache with configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[Key]*node)
	return c
}

func (c *inMemoryCache) Get(_ context.Context, k Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	return n.val, true
}

// Put stores v under k. Replacing an existing key keeps its position.
func (c *inMemoryCache) Put(_ context.Context, k Key, v []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[k]; ok {
		n.val = v
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := &node{key: k, val: v, next: c.head}
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[k] = n
	c.size.Add(1)
}

// evictOldest removes the tail. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	n := c.tail
	if n == nil {
		return
	}
	c.tail = n.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
	delete(c.entries, n.key)
	c.size.Add(-1)
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}

// noopCache never stores anything.
type noopCache struct{}

// NewNoopCache returns a Cache that disables caching.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, Key) ([]byte, bool) { return nil, false }
func (noopCache) Put(context.Context, Key, []byte)        {}
func (noopCache) Size() int64                             { return 0 }
