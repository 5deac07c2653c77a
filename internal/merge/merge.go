// Package merge reconciles partial milestone sets extracted from multiple
// pages, fills gaps via estimation profiles, and sanity-checks milestone
// spacing.
package merge

import (
	"sort"

	"github.com/sells-group/eol-research/internal/model"
)

// PageResult is one page's extraction output, tagged with its source.
type PageResult struct {
	URL        string
	Tier       model.Tier
	Milestones model.Milestones
}

// Merge combines page results tier-first: vendor pages merge entirely
// before third-party pages regardless of the order they were visited in,
// and within a tier visit order is preserved. For each field the first
// non-null value wins. The returned sources are deduplicated by URL and
// attribute only the fields each page actually supplied.
func Merge(pages []PageResult) (model.Milestones, []model.Source) {
	ordered := make([]PageResult, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return tierRank(ordered[i].Tier) < tierRank(ordered[j].Tier)
	})

	merged := model.Milestones{}
	var sources []model.Source
	byURL := make(map[string]int)

	for _, page := range ordered {
		var contributed []model.Field
		for _, f := range model.AllFields {
			v, ok := page.Milestones[f]
			if !ok {
				continue
			}
			if merged.SetIfAbsent(f, v) {
				contributed = append(contributed, f)
			}
		}
		if len(contributed) == 0 {
			continue
		}
		if i, ok := byURL[page.URL]; ok {
			sources[i].Fields = append(sources[i].Fields, contributed...)
			continue
		}
		byURL[page.URL] = len(sources)
		sources = append(sources, model.Source{
			URL:    page.URL,
			Tier:   page.Tier,
			Fields: contributed,
		})
	}
	return merged, sources
}

// tierRank orders source tiers for merging; lower ranks merge first.
func tierRank(t model.Tier) int {
	if t == model.TierVendor {
		return 0
	}
	return 1
}

// Spacing bounds: end-of-sale to last-day-of-support intervals outside
// [4.75, 5.25] years are flagged (informational only).
const (
	minSpacingYears = 4.75
	maxSpacingYears = 5.25
)

// CheckSpacing reports whether the end-of-sale to last-day-of-support
// interval is plausible. True when either field is unknown.
func CheckSpacing(m model.Milestones) bool {
	eos, okEos := m[model.FieldEndOfSale]
	ldos, okLdos := m[model.FieldLastDayOfSupport]
	if !okEos || !okLdos {
		return true
	}
	years := eos.Date.YearsUntil(ldos.Date)
	return years >= minSpacingYears && years <= maxSpacingYears
}
