// Package pagecache caches fetched page text keyed by URL with a fixed TTL,
// so repeated research runs inside the window issue no external calls.
package pagecache

import (
	"context"
	"time"
)

// DefaultTTL is how long a cached page stays fresh.
const DefaultTTL = 24 * time.Hour

// Page is one cached fetch.
type Page struct {
	URL       string
	Content   string
	FetchedAt time.Time
}

// Store persists cached pages. Implementations must allow concurrent reads
// and idempotent writes; concurrent misses for the same URL may both fetch
// and both write (last write wins).
type Store interface {
	// Get returns the cached page and true on a fresh hit. Expired
	// entries behave as misses.
	Get(ctx context.Context, url string) (*Page, bool, error)
	// Put upserts a page.
	Put(ctx context.Context, page Page) error
	Close() error
}
