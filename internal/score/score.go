// Package score computes the deterministic 0-100 confidence for a research
// result from source tier and per-field provenance.
package score

import "github.com/sells-group/eol-research/internal/model"

// Base credit by best source tier found.
const (
	baseVendor     = 50
	baseThirdParty = 30
)

// Per-field credit for the four core milestones.
const (
	creditExtracted = 10
	creditEstimated = 5
)

// retrievalCap bounds the overall score for results built from passive
// text retrieval; only the vendor-page-no-EOL path scores above it.
const retrievalCap = 95

// Confidence scores a milestone set. hasVendor / hasThirdParty indicate
// which source tiers contributed pages. Extracted core fields earn full
// credit, estimated ones half, except vendor-profile copies which count as
// a known convention at full credit. Monotonically non-decreasing in the
// number of extracted fields for a fixed tier.
func Confidence(m model.Milestones, hasVendor, hasThirdParty bool) (lifecycle, overall int) {
	total := 0
	switch {
	case hasVendor:
		total = baseVendor
	case hasThirdParty:
		total = baseThirdParty
	}

	for _, f := range model.CoreFields {
		v, ok := m[f]
		if !ok {
			continue
		}
		switch {
		case !v.Estimated, v.Copied:
			total += creditExtracted
		default:
			total += creditEstimated
		}
	}

	lifecycle = clamp(total)
	overall = lifecycle
	if (hasVendor || hasThirdParty) && overall > retrievalCap {
		overall = retrievalCap
	}
	return lifecycle, overall
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
