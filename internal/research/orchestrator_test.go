package research

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/trust"
	"github.com/sells-group/eol-research/pkg/websearch"
)

const vendorBulletin = `WS-C2960-24TT-L End-of-Sale Bulletin
End-of-Sale Date: January 31, 2015
Last Day of Support: January 31, 2020`

const currentProductPage = `Cisco WS-C2960-24TT-L Switch
Buy now. 24 ports, PoE options available.`

type fakeSearcher struct {
	mu    sync.Mutex
	hits  func(q string) []websearch.Hit
	err   error
	calls []string
}

func (s *fakeSearcher) Search(_ context.Context, q string) ([]websearch.Hit, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.hits == nil {
		return nil, nil
	}
	return s.hits(q), nil
}

func (s *fakeSearcher) genericCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.calls {
		if !strings.HasPrefix(q, "site:") {
			n++
		}
	}
	return n
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
	calls []string
}

func (f *fakeFetcher) Page(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func newOrchestrator(t *testing.T, s Searcher, f PageFetcher) *Orchestrator {
	t.Helper()
	reg, err := trust.NewRegistry()
	require.NoError(t, err)
	return New(s, f, reg)
}

func ciscoQuery() model.ProductQuery {
	return model.ProductQuery{ProductID: "WS-C2960-24TT-L", Manufacturer: "cisco"}
}

func vendorHit(url string) func(string) []websearch.Hit {
	return func(q string) []websearch.Hit {
		if strings.HasPrefix(q, "site:") {
			return []websearch.Hit{{URL: url, Title: "EOL notice"}}
		}
		return nil
	}
}

func TestResearch_VendorDatesFound(t *testing.T) {
	const url = "https://www.cisco.com/eol/ws-c2960.html"
	searcher := &fakeSearcher{hits: vendorHit(url)}
	fetcher := &fakeFetcher{pages: map[string]string{url: vendorBulletin}}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, res.Status)
	assert.Equal(t, "cisco", res.Manufacturer)
	assert.False(t, res.IsCurrentProduct)
	assert.True(t, res.SpacingValidated)

	assert.Equal(t, "2015-01-31", res.Milestones[model.FieldEndOfSale].Date.String())
	assert.Equal(t, "2020-01-31", res.Milestones[model.FieldLastDayOfSupport].Date.String())

	// Family profile: maintenance and vulnerability support run to the
	// last day of support, scored as a known convention.
	maint := res.Milestones[model.FieldEndOfSwMaintenance]
	assert.Equal(t, "2020-01-31", maint.Date.String())
	assert.True(t, maint.Copied)

	assert.Equal(t, 90, res.LifecycleConfidence)
	assert.Equal(t, 90, res.OverallConfidence)

	require.Len(t, res.Sources, 1)
	assert.Equal(t, url, res.Sources[0].URL)
	assert.Equal(t, model.TierVendor, res.Sources[0].Tier)

	// Same URL from every vendor query, fetched once.
	assert.Len(t, fetcher.calls, 1)
	// Vendor results sufficed; no generic fallback queries.
	assert.Equal(t, 0, searcher.genericCalls())
}

func TestResearch_VendorPageNoEOL(t *testing.T) {
	const url = "https://www.cisco.com/products/ws-c2960.html"
	searcher := &fakeSearcher{hits: vendorHit(url)}
	fetcher := &fakeFetcher{pages: map[string]string{url: currentProductPage}}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusCurrentNoEOL, res.Status)
	assert.True(t, res.IsCurrentProduct)
	assert.Equal(t, 90, res.LifecycleConfidence)
	assert.Equal(t, 90, res.OverallConfidence)
	assert.Empty(t, res.Milestones)
	// Still-sold products skip the third-party pass entirely.
	assert.Equal(t, 0, searcher.genericCalls())
}

func TestResearch_NotFound(t *testing.T) {
	searcher := &fakeSearcher{}
	o := newOrchestrator(t, searcher, &fakeFetcher{})

	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusNotFound, res.Status)
	assert.Equal(t, 0, res.LifecycleConfidence)
	assert.Equal(t, 0, res.OverallConfidence)
	assert.Empty(t, res.Milestones)
	assert.False(t, res.IsCurrentProduct)
	// Both passes ran.
	assert.Greater(t, searcher.genericCalls(), 0)
}

func TestResearch_ThirdPartyAggregatorFallback(t *testing.T) {
	const url = "https://endoflife.date/cisco-catalyst"
	searcher := &fakeSearcher{hits: func(q string) []websearch.Hit {
		if strings.HasPrefix(q, "site:") {
			return nil
		}
		return []websearch.Hit{{URL: url, Title: "endoflife.date"}}
	}}
	fetcher := &fakeFetcher{pages: map[string]string{url: vendorBulletin}}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, res.Status)
	assert.Equal(t, "2015-01-31", res.Milestones[model.FieldEndOfSale].Date.String())

	require.Len(t, res.Sources, 1)
	assert.Equal(t, model.TierThirdParty, res.Sources[0].Tier)
	// Third-party base, both core anchors extracted, both copies credited.
	assert.Equal(t, 70, res.LifecycleConfidence)

	// Allow-listed aggregators get a full fetch.
	assert.Len(t, fetcher.calls, 1)
	// Both anchors known after the first page: remaining queries skipped.
	assert.Equal(t, 1, searcher.genericCalls())
}

func TestResearch_FallbackVendorHitOutranksThirdParty(t *testing.T) {
	// Generic queries routinely surface vendor domains. When a third-party
	// snippet arrives before the vendor page in the same hit list, the
	// vendor page's date must still win the field.
	const vendorURL = "https://www.cisco.com/eol/ws-c2960.html"
	searcher := &fakeSearcher{hits: func(q string) []websearch.Hit {
		if strings.HasPrefix(q, "site:") {
			return nil
		}
		return []websearch.Hit{
			{
				URL:     "https://reseller.example.com/eol-list",
				Snippet: "WS-C2960-24TT-L End of Sale: March 1, 2015",
			},
			{URL: vendorURL, Title: "EOL notice"},
		}
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		vendorURL: "WS-C2960-24TT-L End-of-Sale Date: June 30, 2016",
	}}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, res.Status)
	assert.Equal(t, "2016-06-30", res.Milestones[model.FieldEndOfSale].Date.String())

	// The third-party snippet contributed nothing and is not a source.
	require.Len(t, res.Sources, 1)
	assert.Equal(t, vendorURL, res.Sources[0].URL)
	assert.Equal(t, model.TierVendor, res.Sources[0].Tier)
}

func TestResearch_ThirdPartySnippetOnly(t *testing.T) {
	const url = "https://reseller.example.com/eol-list"
	searcher := &fakeSearcher{hits: func(q string) []websearch.Hit {
		if strings.HasPrefix(q, "site:") {
			return nil
		}
		return []websearch.Hit{{
			URL:     url,
			Snippet: "WS-C2960-24TT-L End-of-Sale Date: January 31, 2015",
		}}
	}}
	fetcher := &fakeFetcher{}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, res.Status)
	assert.Equal(t, "2015-01-31", res.Milestones[model.FieldEndOfSale].Date.String())
	assert.False(t, res.Milestones[model.FieldEndOfSale].Estimated)

	ldos := res.Milestones[model.FieldLastDayOfSupport]
	require.False(t, ldos.Date.IsZero())
	assert.Equal(t, "2020-01-31", ldos.Date.String())
	assert.True(t, ldos.Estimated)

	// Non-aggregator third-party URLs are never fetched.
	assert.Empty(t, fetcher.calls)
}

func TestResearch_DisallowedURLSkipped(t *testing.T) {
	searcher := &fakeSearcher{hits: vendorHit("ftp://cisco.com/eol.txt")}
	fetcher := &fakeFetcher{}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusNotFound, res.Status)
	assert.Empty(t, fetcher.calls)
}

func TestResearch_FetchFailureFallsBackToSnippet(t *testing.T) {
	const url = "https://www.cisco.com/eol/ws-c2960.html"
	searcher := &fakeSearcher{hits: func(q string) []websearch.Hit {
		if strings.HasPrefix(q, "site:") {
			return []websearch.Hit{{
				URL:     url,
				Snippet: "WS-C2960-24TT-L End-of-Sale Date: January 31, 2015",
			}}
		}
		return nil
	}}
	fetcher := &fakeFetcher{err: assert.AnError}

	o := newOrchestrator(t, searcher, fetcher)
	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, res.Status)
	assert.Equal(t, "2015-01-31", res.Milestones[model.FieldEndOfSale].Date.String())
}

func TestResearch_SearchFailureDegrades(t *testing.T) {
	searcher := &fakeSearcher{err: assert.AnError}
	o := newOrchestrator(t, searcher, &fakeFetcher{})

	res, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotFound, res.Status)
}

func TestResearch_Cancellation(t *testing.T) {
	searcher := &fakeSearcher{}
	o := newOrchestrator(t, searcher, &fakeFetcher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := o.Research(ctx, ciscoQuery())
	require.Error(t, err)
	assert.Equal(t, model.StatusError, res.Status)
}

func TestResearch_Idempotent(t *testing.T) {
	const url = "https://www.cisco.com/eol/ws-c2960.html"
	pages := map[string]string{url: vendorBulletin}

	run := func() model.Result {
		o := newOrchestrator(t,
			&fakeSearcher{hits: vendorHit(url)},
			&fakeFetcher{pages: pages})
		res, err := o.Research(context.Background(), ciscoQuery())
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, run(), run())
}

func TestResearch_MaxHitsPerQuery(t *testing.T) {
	var urls []string
	searcher := &fakeSearcher{hits: func(q string) []websearch.Hit {
		if !strings.HasPrefix(q, "site:") {
			return nil
		}
		return []websearch.Hit{
			{URL: "https://www.cisco.com/1"},
			{URL: "https://www.cisco.com/2"},
			{URL: "https://www.cisco.com/3"},
		}
	}}
	fetcher := &fakeFetcher{}

	o := newOrchestrator(t, searcher, fetcher)
	o.maxHits = 1
	_, err := o.Research(context.Background(), ciscoQuery())
	require.NoError(t, err)

	for _, u := range fetcher.calls {
		urls = append(urls, u)
	}
	assert.Equal(t, []string{"https://www.cisco.com/1"}, urls)
}
