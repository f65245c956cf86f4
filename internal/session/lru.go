package session

import (
	"container/list"
	"sync"
	"time"
)

// lru is a size-bounded map whose entries expire ttl after their last use.
type lru[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRU[T any](maxSize int, ttl time.Duration, now func() time.Time) *lru[T] {
	return &lru[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// getOrCreate returns the live entry for key, creating it with create when
// missing or expired. Access refreshes the expiry.
func (c *lru[T]) getOrCreate(key string, create func() T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[T])
		if now.Before(e.expiresAt) {
			e.expiresAt = now.Add(c.ttl)
			c.order.MoveToFront(elem)
			return e.data, false
		}
		c.remove(elem)
	}

	e := &entry[T]{key: key, data: create(), expiresAt: now.Add(c.ttl)}
	c.items[key] = c.order.PushFront(e)

	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
	return e.data, true
}

func (c *lru[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *lru[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

// cleanExpired removes expired entries and returns how many were dropped.
func (c *lru[T]) cleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if !now.Before(elem.Value.(*entry[T]).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.remove(elem)
	}
	return len(expired)
}

func (c *lru[T]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
