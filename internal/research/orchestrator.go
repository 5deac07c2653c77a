// Package research drives the lifecycle research pipeline for a product:
// a manufacturer-site search pass, a third-party fallback pass, then
// estimation and confidence scoring, yielding one immutable Result per
// ProductQuery.
package research

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/extract"
	"github.com/sells-group/eol-research/internal/merge"
	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/query"
	"github.com/sells-group/eol-research/internal/score"
	"github.com/sells-group/eol-research/internal/trust"
	"github.com/sells-group/eol-research/internal/variant"
	"github.com/sells-group/eol-research/pkg/websearch"
)

// ErrConfiguration is the one fatal error class: research cannot run at
// all without search credentials.
var ErrConfiguration = websearch.ErrNoAPIKey

// currentProductConfidence is assigned when a vendor page advertises the
// product with no EOL milestones: the product is still sold, which is more
// trustworthy than guessing from weaker sources.
const currentProductConfidence = 90

// Searcher issues web search queries.
type Searcher interface {
	Search(ctx context.Context, q string) ([]websearch.Hit, error)
}

// PageFetcher retrieves page text for a URL.
type PageFetcher interface {
	Page(ctx context.Context, url string) (string, error)
}

// state names the orchestrator's phases, for logging.
type state string

const (
	stateSearchingVendor     state = "searching_vendor"
	stateDatesFound          state = "dates_found"
	stateVendorPageNoEol     state = "vendor_page_no_eol"
	stateSearchingThirdParty state = "searching_third_party"
	stateEstimating          state = "estimating"
	stateScoring             state = "scoring"
)

// Orchestrator sequences search, fetch, extraction, merge, and scoring.
// Safe for concurrent use; per-product research is a linear pipeline.
type Orchestrator struct {
	searcher Searcher
	fetcher  PageFetcher
	registry *trust.Registry
	builder  *query.Builder
	pipeline *extract.Pipeline
	maxHits  int
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithMaxHitsPerQuery caps how many search hits are visited per query.
func WithMaxHitsPerQuery(n int) Option {
	return func(o *Orchestrator) { o.maxHits = n }
}

// WithParser overrides the date parser (e.g. day-first conventions).
func WithParser(p dates.Parser) Option {
	return func(o *Orchestrator) { o.pipeline = extract.NewPipeline(p) }
}

// New creates an Orchestrator over the given search and fetch capabilities.
func New(searcher Searcher, fetcher PageFetcher, registry *trust.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher: searcher,
		fetcher:  fetcher,
		registry: registry,
		builder:  query.NewBuilder(registry),
		pipeline: extract.NewPipeline(dates.Parser{}),
		maxHits:  3,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Research produces the lifecycle result for one product. Per-query and
// per-page failures degrade to a valid low-confidence result; the returned
// error is non-nil only on cancellation.
func (o *Orchestrator) Research(ctx context.Context, pq model.ProductQuery) (model.Result, error) {
	mfg := o.builder.EffectiveManufacturer(pq)
	variants := variant.Expand(pq.ProductID, mfg)
	queries := o.builder.Build(pq)

	log := zap.L().With(zap.String("product_id", pq.ProductID), zap.String("manufacturer", mfg))
	log.Debug("research: starting", zap.Int("queries", len(queries)))

	visited := make(map[string]bool)
	var pages []merge.PageResult

	// Manufacturer-site pass.
	log.Debug("research: state", zap.String("state", string(stateSearchingVendor)))
	vendorPageMatched, err := o.runPass(ctx, queries, true, mfg, variants, visited, &pages)
	if err != nil {
		return errorResult(pq, mfg), err
	}

	switch {
	case len(pages) > 0:
		log.Debug("research: state", zap.String("state", string(stateDatesFound)))
	case vendorPageMatched:
		// A vendor page actively advertises the product with no EOL
		// notice: treat as still sold and skip the third-party pass.
		log.Debug("research: state", zap.String("state", string(stateVendorPageNoEol)))
		return model.Result{
			ProductID:           pq.ProductID,
			Manufacturer:        mfg,
			Milestones:          model.Milestones{},
			IsCurrentProduct:    true,
			LifecycleConfidence: currentProductConfidence,
			OverallConfidence:   currentProductConfidence,
			Status:              model.StatusCurrentNoEOL,
			SpacingValidated:    true,
		}, nil
	default:
		log.Debug("research: state", zap.String("state", string(stateSearchingThirdParty)))
		if _, err := o.runPass(ctx, queries, false, mfg, variants, visited, &pages); err != nil {
			return errorResult(pq, mfg), err
		}
	}

	// Estimation and consistency.
	log.Debug("research: state", zap.String("state", string(stateEstimating)))
	milestones, sources := merge.Merge(pages)
	profile := merge.ProfileFromName(o.registry.EstimationProfile(mfg))
	milestones = merge.Estimate(milestones, profile)
	spacingOK := merge.CheckSpacing(milestones)

	// Scoring.
	log.Debug("research: state", zap.String("state", string(stateScoring)))
	hasVendor, hasThird := false, false
	for _, s := range sources {
		switch s.Tier {
		case model.TierVendor:
			hasVendor = true
		case model.TierThirdParty:
			hasThird = true
		}
	}
	lifecycle, overall := score.Confidence(milestones, hasVendor, hasThird)

	status := model.StatusFound
	if len(milestones) == 0 {
		status = model.StatusNotFound
		lifecycle, overall = 0, 0
	}

	log.Info("research: done",
		zap.String("status", string(status)),
		zap.Int("fields", len(milestones)),
		zap.Int("overall_confidence", overall),
	)

	return model.Result{
		ProductID:           pq.ProductID,
		Manufacturer:        mfg,
		Milestones:          milestones,
		LifecycleConfidence: lifecycle,
		OverallConfidence:   overall,
		Sources:             sources,
		Status:              status,
		SpacingValidated:    spacingOK,
	}, nil
}

// runPass executes either the vendor-scoped queries (vendorPass=true) or
// the generic fallback queries. It reports whether any vendor page
// mentioned the product. During the third-party pass, remaining queries
// are skipped once both end-of-sale and last-day-of-support are known.
func (o *Orchestrator) runPass(
	ctx context.Context,
	queries []query.Query,
	vendorPass bool,
	mfg string,
	variants []string,
	visited map[string]bool,
	pages *[]merge.PageResult,
) (vendorPageMatched bool, err error) {
	for _, q := range queries {
		if q.VendorScoped != vendorPass {
			continue
		}
		// Cooperative cancellation between queries, never mid-parse.
		if err := ctx.Err(); err != nil {
			return vendorPageMatched, err
		}
		if !vendorPass && o.coreFieldsKnown(*pages) {
			zap.L().Debug("research: core fields known, skipping remaining queries")
			return vendorPageMatched, nil
		}

		hits, err := o.searcher.Search(ctx, q.Text)
		if err != nil {
			// A failed query is "no results", not a failed product.
			zap.L().Warn("research: search failed, skipping query",
				zap.String("query", q.Text),
				zap.Error(err),
			)
			continue
		}
		if len(hits) > o.maxHits {
			hits = hits[:o.maxHits]
		}

		for _, hit := range hits {
			if err := ctx.Err(); err != nil {
				return vendorPageMatched, err
			}
			if hit.URL == "" || visited[hit.URL] {
				continue
			}
			visited[hit.URL] = true

			tier := o.registry.Classify(hit.URL, mfg)
			if tier == model.TierDisallowed {
				continue
			}
			if vendorPass && tier != model.TierVendor {
				continue
			}

			text := o.pageText(ctx, hit, tier)
			if tier == model.TierVendor && variant.MatchesAny(text, variants) {
				vendorPageMatched = true
			}

			ms := o.pipeline.Run(text, variants)
			if len(ms) == 0 {
				continue
			}
			*pages = append(*pages, merge.PageResult{URL: hit.URL, Tier: tier, Milestones: ms})
		}
	}
	return vendorPageMatched, nil
}

// pageText returns full page text for vendor pages and allow-listed
// aggregators; other third-party URLs get snippet-only treatment. A fetch
// failure is soft: the snippet stands in for the page.
func (o *Orchestrator) pageText(ctx context.Context, hit websearch.Hit, tier model.Tier) string {
	fullFetch := tier == model.TierVendor || o.registry.IsAggregator(hit.URL)
	if !fullFetch {
		return hit.Snippet
	}
	text, err := o.fetcher.Page(ctx, hit.URL)
	if err != nil {
		zap.L().Debug("research: fetch failed, using snippet",
			zap.String("url", hit.URL),
			zap.Error(err),
		)
		return hit.Snippet
	}
	return text
}

// coreFieldsKnown reports whether the pages collected so far already pin
// down both end-of-sale and last-day-of-support.
func (o *Orchestrator) coreFieldsKnown(pages []merge.PageResult) bool {
	merged, _ := merge.Merge(pages)
	return merged.Has(model.FieldEndOfSale) && merged.Has(model.FieldLastDayOfSupport)
}

func errorResult(pq model.ProductQuery, mfg string) model.Result {
	return model.Result{
		ProductID:        pq.ProductID,
		Manufacturer:     mfg,
		Milestones:       model.Milestones{},
		Status:           model.StatusError,
		SpacingValidated: true,
	}
}
