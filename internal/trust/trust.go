// Package trust classifies URLs by how much their lifecycle claims can be
// trusted: vendor-authorized domains, third-party sites, or disallowed
// targets. The authorized-domain registry ships embedded and can be
// overridden at load time.
package trust

import (
	_ "embed"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/eol-research/internal/model"
)

//go:embed vendors.yaml
var embeddedRegistry []byte

// Manufacturer is one registry entry.
type Manufacturer struct {
	Aliases           []string `yaml:"aliases"`
	Domains           []string `yaml:"domains"`
	Siblings          []string `yaml:"siblings"`
	CDNPDFDomains     []string `yaml:"cdn_pdf_domains"`
	IDPrefixes        []string `yaml:"id_prefixes"`
	EstimationProfile string   `yaml:"estimation_profile"`
}

type registryFile struct {
	Manufacturers     map[string]Manufacturer `yaml:"manufacturers"`
	Aggregators       []string                `yaml:"aggregators"`
	DisallowedSchemes []string                `yaml:"disallowed_schemes"`
	DisallowedHosts   []string                `yaml:"disallowed_hosts"`
}

// Registry resolves manufacturers to their authorized domains and related
// policy. Immutable after load; safe for concurrent use.
type Registry struct {
	manufacturers     map[string]Manufacturer
	aliases           map[string]string
	aggregators       []string
	disallowedSchemes map[string]bool
	disallowedHosts   map[string]bool
}

// NewRegistry loads the embedded vendor-domain registry.
func NewRegistry() (*Registry, error) {
	return ParseRegistry(embeddedRegistry)
}

// ParseRegistry loads a registry from raw YAML.
func ParseRegistry(raw []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "trust: parse registry")
	}

	r := &Registry{
		manufacturers:     make(map[string]Manufacturer, len(f.Manufacturers)),
		aliases:           make(map[string]string),
		aggregators:       f.Aggregators,
		disallowedSchemes: make(map[string]bool, len(f.DisallowedSchemes)),
		disallowedHosts:   make(map[string]bool, len(f.DisallowedHosts)),
	}
	for name, m := range f.Manufacturers {
		key := canonical(name)
		r.manufacturers[key] = m
		r.aliases[key] = key
		for _, a := range m.Aliases {
			r.aliases[canonical(a)] = key
		}
	}
	for _, s := range f.DisallowedSchemes {
		r.disallowedSchemes[strings.ToLower(s)] = true
	}
	for _, h := range f.DisallowedHosts {
		r.disallowedHosts[strings.ToLower(h)] = true
	}
	return r, nil
}

// Resolve maps a free-form manufacturer name to its registry key, or ""
// when unknown.
func (r *Registry) Resolve(manufacturer string) string {
	return r.aliases[canonical(manufacturer)]
}

// DomainsFor returns the authorized domains for a manufacturer, including
// sibling-brand domains. Empty for unknown manufacturers.
func (r *Registry) DomainsFor(manufacturer string) []string {
	key := r.Resolve(manufacturer)
	if key == "" {
		return nil
	}
	m := r.manufacturers[key]
	out := append([]string{}, m.Domains...)
	for _, sib := range m.Siblings {
		out = append(out, r.manufacturers[canonical(sib)].Domains...)
	}
	return out
}

// GuessManufacturer infers a manufacturer from a recognizable product-id
// prefix, or "" when no prefix matches. The longest matching prefix wins so
// overlapping prefixes across manufacturers resolve deterministically.
func (r *Registry) GuessManufacturer(productID string) string {
	id := strings.ToLower(strings.TrimSpace(productID))
	best, bestLen := "", 0
	names := make([]string, 0, len(r.manufacturers))
	for name := range r.manufacturers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, p := range r.manufacturers[name].IDPrefixes {
			if len(p) > bestLen && strings.HasPrefix(id, strings.ToLower(p)) {
				best, bestLen = name, len(p)
			}
		}
	}
	return best
}

// EstimationProfile returns the manufacturer's estimation profile name
// ("" means the standard profile).
func (r *Registry) EstimationProfile(manufacturer string) string {
	key := r.Resolve(manufacturer)
	if key == "" {
		return ""
	}
	return r.manufacturers[key].EstimationProfile
}

// IsAggregator reports whether the URL belongs to a known-reliable
// third-party aggregator, eligible for full-page fetch.
func (r *Registry) IsAggregator(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range r.aggregators {
		if hostMatches(host, a) {
			return true
		}
	}
	return false
}

// Classify labels a URL for the given manufacturer: vendor for authorized
// (or sibling-brand) domains, disallowed for rejected schemes/hosts, and
// thirdParty for everything else well-formed.
func (r *Registry) Classify(rawURL, manufacturer string) model.Tier {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return model.TierDisallowed
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return model.TierDisallowed
	}
	if r.disallowedSchemes[scheme] {
		return model.TierDisallowed
	}
	host := strings.ToLower(u.Hostname())
	if r.disallowedHosts[host] {
		return model.TierDisallowed
	}

	key := r.Resolve(manufacturer)
	if key != "" {
		m := r.manufacturers[key]
		if r.matchesManufacturer(host, u.Path, m) {
			return model.TierVendor
		}
		for _, sib := range m.Siblings {
			if sm, ok := r.manufacturers[canonical(sib)]; ok && r.matchesManufacturer(host, u.Path, sm) {
				return model.TierVendor
			}
		}
	}
	return model.TierThirdParty
}

func (r *Registry) matchesManufacturer(host, path string, m Manufacturer) bool {
	for _, d := range m.Domains {
		if hostMatches(host, d) {
			return true
		}
	}
	// Shared CDNs are authorized only for PDF bulletins.
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		for _, d := range m.CDNPDFDomains {
			if hostMatches(host, d) {
				return true
			}
		}
	}
	return false
}

// hostMatches reports whether host equals domain or is a subdomain of it.
func hostMatches(host, domain string) bool {
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{", inc.", ", inc", " inc.", " inc", " corporation", " corp.", " corp", " systems", " ltd"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}
