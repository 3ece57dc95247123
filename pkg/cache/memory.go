package cache

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Memory keeps entries in process memory, shared by every request the
// process serves. Its contents do not survive a restart.
//
// Entries are queued by expiration so the janitor only visits what is due.
// With a capacity set, a full cache drops the entry that would expire
// soonest; entries without expiration go last.
type Memory[V any] struct {
	items  map[string]*memoryItem[V]
	queue  expiryQueue[V]
	opts   *memoryOptions
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

type memoryItem[V any] struct {
	expiresAt time.Time
	value     V
	key       string
	index     int
}

// NewMemory creates an in-memory cache.
//
// Example:
//
//	windows := cache.NewMemory[ratelimit.Window](cache.WithMaxEntries(10000))
//	defer windows.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items: make(map[string]*memoryItem[V]),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.sweepEvery(o.cleanupInterval)
	}
	return m
}

// Get returns the value stored under key, or ErrNotFound.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.live(key)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return item.value, nil
}

// Set stores value under key until expiresAt.
func (m *Memory[V]) Set(_ context.Context, key string, value V, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if item, ok := m.items[key]; ok {
		item.value = value
		item.expiresAt = expiresAt
		heap.Fix(&m.queue, item.index)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		m.remove(m.queue[0])
	}

	item := &memoryItem[V]{key: key, value: value, expiresAt: expiresAt}
	heap.Push(&m.queue, item)
	m.items[key] = item
	return nil
}

// Delete removes key. Missing keys are not an error.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if item, ok := m.items[key]; ok {
		m.remove(item)
	}
	return nil
}

// Has reports whether key holds a live entry.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.live(key)
	return ok, nil
}

// Clear drops every entry.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]*memoryItem[V])
	m.queue = nil
	return nil
}

// Len returns the number of stored entries, including expired ones the
// janitor has not reached yet.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor. Further writes fail with ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// live returns the entry under key, dropping it if it has expired.
// Caller must hold the mutex.
func (m *Memory[V]) live(key string) (*memoryItem[V], bool) {
	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if expired(item.expiresAt, m.opts.now()) {
		m.remove(item)
		return nil, false
	}
	return item, true
}

// remove drops item. Caller must hold the mutex.
func (m *Memory[V]) remove(item *memoryItem[V]) {
	heap.Remove(&m.queue, item.index)
	delete(m.items, item.key)
}

func (m *Memory[V]) sweepEvery(d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep drops expired entries from the head of the queue.
func (m *Memory[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	for len(m.queue) > 0 && expired(m.queue[0].expiresAt, now) {
		m.remove(m.queue[0])
	}
}

// expiryQueue is a heap of entries ordered by expiration, soonest first.
type expiryQueue[V any] []*memoryItem[V]

func (q expiryQueue[V]) Len() int { return len(q) }

func (q expiryQueue[V]) Less(i, j int) bool {
	a, b := q[i].expiresAt, q[j].expiresAt
	if a.IsZero() || b.IsZero() {
		return !a.IsZero() && b.IsZero()
	}
	return a.Before(b)
}

func (q expiryQueue[V]) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *expiryQueue[V]) Push(x any) {
	item := x.(*memoryItem[V])
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *expiryQueue[V]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ Cache[any] = (*Memory[any])(nil)
