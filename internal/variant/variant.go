// Package variant expands a product identifier into the alternate spellings
// vendors use across their own pages, improving text-matching recall.
package variant

import (
	"regexp"
	"sort"
	"strings"
)

// Suffixes that vendors append to the base product code for refurbished,
// spare, or bundled SKUs. Variant generation both strips and adds them.
var skuSuffixes = []string{"=", "-RF", "-WS", "-A"}

// reLetterDigit splits a letter prefix from a trailing numeric block, for
// hyphen toggling ("WS2960" <-> "WS-2960").
var reLetterDigit = regexp.MustCompile(`^([A-Za-z]+)-?(\d[\dA-Za-z./-]*)$`)

// Expand returns the product identifier plus its alternate spellings:
// SKU-suffix stripped and added forms, hyphen inserted/removed between a
// letter prefix and numeric suffix, manufacturer-prefixed forms, and case
// variants. The original spelling is always first. Results are deduplicated
// preserving order.
func Expand(productID, manufacturer string) []string {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	add(productID)
	add(StripSuffix(productID))

	// Suffix toggles on the stripped base.
	base := StripSuffix(productID)
	for _, s := range skuSuffixes {
		add(base + s)
	}

	// Hyphen toggles.
	for _, v := range append([]string{}, out...) {
		if m := reLetterDigit.FindStringSubmatch(v); m != nil {
			add(m[1] + "-" + m[2])
			add(m[1] + m[2])
		}
	}

	// Manufacturer-prefixed forms.
	if mfg := strings.TrimSpace(manufacturer); mfg != "" {
		for _, v := range append([]string{}, out...) {
			if !strings.HasPrefix(strings.ToLower(v), strings.ToLower(mfg)) {
				add(mfg + " " + v)
			}
		}
	}

	// Case variants of the original.
	add(strings.ToUpper(productID))
	add(strings.ToLower(productID))

	return out
}

// StripSuffix removes a known SKU suffix from the identifier, if present.
func StripSuffix(productID string) string {
	upper := strings.ToUpper(productID)
	for _, s := range skuSuffixes {
		if s != "=" && strings.HasSuffix(upper, s) {
			return productID[:len(productID)-len(s)]
		}
	}
	return strings.TrimSuffix(productID, "=")
}

// MatchesAny reports whether any variant occurs in text,
// case-insensitively.
func MatchesAny(text string, variants []string) bool {
	lower := strings.ToLower(text)
	for _, v := range variants {
		if strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// Occurrences returns the byte offsets of every variant occurrence in text,
// case-insensitive, sorted ascending. Used by proximity matching.
func Occurrences(text string, variants []string) []int {
	lower := strings.ToLower(text)
	var out []int
	seen := make(map[int]bool)
	for _, v := range variants {
		needle := strings.ToLower(v)
		if needle == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(lower[from:], needle)
			if i < 0 {
				break
			}
			at := from + i
			if !seen[at] {
				seen[at] = true
				out = append(out, at)
			}
			from = at + 1
		}
	}
	sort.Ints(out)
	return out
}
