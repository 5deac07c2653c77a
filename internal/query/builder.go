// Package query builds the ordered search-engine queries for one product,
// manufacturer-scoped queries first.
package query

import (
	"fmt"
	"strings"

	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/trust"
	"github.com/sells-group/eol-research/internal/variant"
)

// maxQueries bounds external call volume per product.
const maxQueries = 10

// Milestone keywords paired with queries, highest recall first.
var keywords = []string{"End-of-Life", "End-of-Sale", "EOL", "End of Support"}

// Query is one search-engine query. VendorScoped marks queries restricted
// to an authorized domain (the manufacturer-site pass).
type Query struct {
	Text         string
	VendorScoped bool
}

// Builder assembles queries from the vendor-domain registry.
type Builder struct {
	reg *trust.Registry
	max int
}

// NewBuilder creates a Builder over the given registry.
func NewBuilder(reg *trust.Registry) *Builder {
	return &Builder{reg: reg, max: maxQueries}
}

// Build returns the ordered query list for a product: 2-5 site-scoped
// queries when a manufacturer (given or guessed from the product-id prefix)
// maps to authorized domains, then 2-3 generic fallback queries. Total is
// capped.
func (b *Builder) Build(pq model.ProductQuery) []Query {
	id := strings.TrimSpace(pq.ProductID)
	if id == "" {
		return nil
	}
	stripped := variant.StripSuffix(id)

	mfg := b.EffectiveManufacturer(pq)
	domains := b.reg.DomainsFor(mfg)

	var out []Query
	add := func(text string, vendorScoped bool) {
		if len(out) >= b.max {
			return
		}
		for _, q := range out {
			if q.Text == text {
				return
			}
		}
		out = append(out, Query{Text: text, VendorScoped: vendorScoped})
	}

	if len(domains) > 0 {
		// Manufacturer-first: scope to authorized domains, trying the id
		// both as given and with the SKU suffix stripped. At most 5
		// site-scoped queries so generic fallbacks always fit the cap.
		const maxVendorScoped = 5
		if len(domains) > 2 {
			domains = domains[:2]
		}
		ids := []string{id}
		if stripped != id {
			ids = append(ids, stripped)
		}
		for _, kw := range keywords[:2] {
			for _, d := range domains {
				for _, pid := range ids {
					if len(out) < maxVendorScoped-1 {
						add(fmt.Sprintf("site:%s %q %q", d, pid, kw), true)
					}
				}
			}
		}
		add(fmt.Sprintf("site:%s %q %q", domains[0], id, keywords[3]), true)
	}

	// Generic fallback queries.
	for _, kw := range keywords[:3] {
		if mfg != "" {
			add(fmt.Sprintf("%s %q %q", mfg, id, kw), false)
		} else {
			add(fmt.Sprintf("%q %q", id, kw), false)
		}
	}

	return out
}

// EffectiveManufacturer resolves the manufacturer hint, falling back to a
// product-id prefix guess. Returns the registry key or the raw hint when
// unknown to the registry.
func (b *Builder) EffectiveManufacturer(pq model.ProductQuery) string {
	if key := b.reg.Resolve(pq.Manufacturer); key != "" {
		return key
	}
	if key := b.reg.GuessManufacturer(pq.ProductID); key != "" {
		return key
	}
	return strings.TrimSpace(pq.Manufacturer)
}
