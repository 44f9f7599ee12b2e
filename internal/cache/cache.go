// Package cache provides the small bounded TTL+LRU cache used for
// classifier drafts and completed preview results.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache is a TTL + LRU bounded cache. Values are stored as-is; callers
// must treat cached pointers as immutable.
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
}

func New[V any](ttl time.Duration, maxSize int) *TTLCache[V] {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &TTLCache[V]{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if time.Now().After(ent.expires) {
		c.order.Remove(el)
		delete(c.entries, key)
		return zero, false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.expires = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry[V]{
		key:     key,
		value:   value,
		expires: time.Now().Add(c.ttl),
	})
	c.entries[key] = el

	for len(c.entries) > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[V]).key)
	}
}

func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
