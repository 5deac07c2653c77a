package pagecache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Reads take the read lock; expired entries
// are evicted lazily on access.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	pages map[string]Page
}

// NewMemory creates a memory store with the given TTL (DefaultTTL when
// zero).
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:   ttl,
		now:   time.Now,
		pages: make(map[string]Page),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, url string) (*Page, bool, error) {
	m.mu.RLock()
	page, ok := m.pages[url]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(page.FetchedAt) > m.ttl {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// refreshed the entry.
		if cur, ok := m.pages[url]; ok && m.now().Sub(cur.FetchedAt) > m.ttl {
			delete(m.pages, url)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return &page, true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, page Page) error {
	if page.FetchedAt.IsZero() {
		page.FetchedAt = m.now()
	}
	m.mu.Lock()
	m.pages[page.URL] = page
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
