// seehuhn.de/go/pdfraster - a library for rendering PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package lru implements a least-recently-used cache for values which can
// be recomputed on demand.
//
// Entries can disappear at any time, either because the cache is full or
// because [Cache.Evict] was called to release memory.  Callers must be
// prepared to recompute a missing value.
package lru

import "sync"

// Cache is a size-bounded LRU cache.  A Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu          sync.Mutex
	capacity    int
	entries     map[K]*entry[K, V]
	first, last *entry[K, V]
}

type entry[K comparable, V any] struct {
	prev, next *entry[K, V]
	key        K
	val        V
}

// New creates a new cache which holds at most capacity entries.
// A cache with capacity zero stores nothing.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]*entry[K, V]),
	}
}

// Put adds a value to the cache.
func (c *Cache[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}

	if ent, ok := c.entries[key]; ok {
		ent.val = val
		c.moveToFront(ent)
		return
	}

	ent := &entry[K, V]{key: key, val: val}
	c.entries[key] = ent
	c.moveToFront(ent)

	for len(c.entries) > c.capacity {
		c.removeLast()
	}
}

// Get returns a value from the cache and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(ent)
	return ent.val, true
}

// GetOrCompute returns the cached value for key.  On a miss, compute is
// called and a successful result is stored.  The lock is not held while
// compute runs.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}
	val, err := compute()
	if err != nil {
		return val, err
	}
	c.Put(key, val)
	return val, nil
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evict removes the n least recently used entries.
func (c *Cache[K, V]) Evict(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for range n {
		if c.last == nil {
			break
		}
		c.removeLast()
	}
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.first = nil
	c.last = nil
}

func (c *Cache[K, V]) moveToFront(ent *entry[K, V]) {
	if ent == c.first {
		return
	}

	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if ent == c.last {
		c.last = ent.prev
	}

	ent.prev = nil
	ent.next = c.first
	if c.first != nil {
		c.first.prev = ent
	}
	c.first = ent
	if c.last == nil {
		c.last = ent
	}
}

func (c *Cache[K, V]) removeLast() {
	last := c.last
	if last == nil {
		return
	}

	delete(c.entries, last.key)
	c.last = last.prev
	if c.last != nil {
		c.last.next = nil
	} else {
		c.first = nil
	}
}
