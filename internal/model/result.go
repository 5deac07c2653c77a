package model

// Tier classifies how much a source URL is trusted.
type Tier string

// Source tiers. Disallowed URLs are rejected before retrieval.
const (
	TierVendor     Tier = "vendor"
	TierThirdParty Tier = "thirdParty"
	TierDisallowed Tier = "disallowed"
)

// Source records one page that contributed milestone fields to a result.
// Deduplicated by URL within a Result.
type Source struct {
	URL    string  `json:"url"`
	Tier   Tier    `json:"tier"`
	Fields []Field `json:"fieldsContributed"`
}

// Status summarizes the outcome of researching one product.
type Status string

// Research outcomes. StatusCurrentNoEOL means a vendor page mentions the
// product but carries no end-of-life milestones, i.e. the product is still
// actively sold.
const (
	StatusFound        Status = "found"
	StatusCurrentNoEOL Status = "currentNoEol"
	StatusNotFound     Status = "notFound"
	StatusError        Status = "error"
)

// Result is the outcome of researching one ProductQuery. Immutable once
// returned.
type Result struct {
	ProductID           string     `json:"productId"`
	Manufacturer        string     `json:"manufacturer,omitempty"`
	Milestones          Milestones `json:"milestones"`
	IsCurrentProduct    bool       `json:"isCurrentProduct"`
	LifecycleConfidence int        `json:"lifecycleConfidence"`
	OverallConfidence   int        `json:"overallConfidence"`
	Sources             []Source   `json:"sources,omitempty"`
	Status              Status     `json:"status"`
	SpacingValidated    bool       `json:"spacingValidated"`
}
