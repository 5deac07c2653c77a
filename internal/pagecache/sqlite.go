package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite is a persistent Store backed by modernc.org/sqlite, so page
// fetches survive process restarts within the TTL window.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS page_cache (
	url        TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_cache_fetched_at ON page_cache(fetched_at);
`

// NewSQLite opens (creating if needed) a page cache at the given path and
// configures WAL mode. TTL defaults to DefaultTTL when zero.
func NewSQLite(dsn string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "pagecache: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "pagecache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "pagecache: migrate")
	}
	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, url string) (*Page, bool, error) {
	var page Page
	var fetchedAt string
	row := s.db.QueryRowContext(ctx,
		"SELECT url, content, fetched_at FROM page_cache WHERE url = ?", url)
	if err := row.Scan(&page.URL, &page.Content, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "pagecache: get")
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, false, eris.Wrap(err, "pagecache: parse fetched_at")
	}
	page.FetchedAt = t
	if s.now().Sub(page.FetchedAt) > s.ttl {
		return nil, false, nil
	}
	return &page, true, nil
}

// Put implements Store.
func (s *SQLite) Put(ctx context.Context, page Page) error {
	if page.FetchedAt.IsZero() {
		page.FetchedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_cache (url, content, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			content = excluded.content,
			fetched_at = excluded.fetched_at`,
		page.URL, page.Content, page.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrap(err, "pagecache: put")
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
