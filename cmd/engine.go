package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/eol-research/internal/fetch"
	"github.com/sells-group/eol-research/internal/pagecache"
	"github.com/sells-group/eol-research/internal/research"
	"github.com/sells-group/eol-research/internal/trust"
	"github.com/sells-group/eol-research/pkg/websearch"
)

// engine bundles the constructed research components and their cleanup.
type engine struct {
	Orchestrator *research.Orchestrator
	cache        pagecache.Store
}

// Close releases the page cache.
func (e *engine) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// initEngine wires the orchestrator from configuration. A missing search
// key is fatal here, before any batch starts.
func initEngine() (*engine, error) {
	registry, err := trust.NewRegistry()
	if err != nil {
		return nil, eris.Wrap(err, "init vendor registry")
	}

	searcher, err := websearch.NewClient(cfg.Search.Key,
		websearch.WithBaseURL(cfg.Search.BaseURL),
		websearch.WithMinInterval(cfg.Search.MinInterval()),
		websearch.WithMaxAttempts(cfg.Search.MaxAttempts),
	)
	if err != nil {
		return nil, err
	}

	var cache pagecache.Store
	switch cfg.Cache.Driver {
	case "sqlite":
		cache, err = pagecache.NewSQLite(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite page cache")
		}
	default:
		cache = pagecache.NewMemory(cfg.Cache.TTL())
	}

	fetchOpts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		}),
	}
	if cfg.Fetch.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.Fetch.UserAgent))
	}
	fetcher := fetch.New(cache, fetchOpts...)

	orch := research.New(searcher, fetcher, registry,
		research.WithMaxHitsPerQuery(cfg.Research.MaxHitsPerQuery),
	)

	return &engine{Orchestrator: orch, cache: cache}, nil
}
