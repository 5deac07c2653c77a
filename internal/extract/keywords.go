package extract

import (
	"sort"
	"strings"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
)

// fieldAnnouncement tags the publication date of the EOL notice itself.
// It is never emitted as a milestone; it exists so announcement dates can
// be subtracted from end-of-sale candidates, which they sit right next to.
const fieldAnnouncement model.Field = "announcementDate"

// keywordTable maps every known vendor wording to its milestone field.
// Multi-valued per field to tolerate wording variance across vendors.
var keywordTable = map[model.Field][]string{
	fieldAnnouncement: {
		"end-of-life announcement date",
		"end of life announcement",
		"end-of-life announcement",
		"eol announcement",
		"announcement date",
		"announced",
	},
	model.FieldEndOfSale: {
		"end-of-sale date",
		"end-of-sale",
		"end of sale",
		"last date to order",
		"last order date",
		"end of commercialization",
	},
	model.FieldEndOfSwMaintenance: {
		"end of sw maintenance releases",
		"end of software maintenance",
		"end of sw maintenance",
		"end of maintenance",
		"software maintenance support",
	},
	model.FieldEndOfSwVulnerability: {
		"end of vulnerability/security support",
		"end of vulnerability support",
		"end of security support",
		"end of security updates",
		"vulnerability/security support",
	},
	model.FieldLastDayOfSupport: {
		"last day of support",
		"last date of support",
		"end-of-support date",
		"end of support",
		"end-of-support",
		"end of service life",
		"end-of-life date",
		"end of life",
		"eol date",
		"ldos",
	},
	model.FieldIntroduced: {
		"general availability",
		"date introduced",
		"availability date",
		"release date",
		"introduced",
	},
}

// keywordEntry is one keyword with its field, used for longest-first
// matching so "end-of-life announcement date" wins over "end-of-life date".
type keywordEntry struct {
	text  string
	field model.Field
}

var orderedKeywords = buildOrderedKeywords()

func buildOrderedKeywords() []keywordEntry {
	var out []keywordEntry
	for f, kws := range keywordTable {
		for _, kw := range kws {
			out = append(out, keywordEntry{text: kw, field: f})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].text) != len(out[j].text) {
			return len(out[i].text) > len(out[j].text)
		}
		return out[i].text < out[j].text
	})
	return out
}

// keywordMatch is one milestone-keyword occurrence in a text.
type keywordMatch struct {
	Field model.Field
	Start int
	End   int
}

// findKeywords locates milestone keywords in text (any case), longest
// match winning on overlap, returned in document order.
func findKeywords(text string) []keywordMatch {
	lower := strings.ToLower(text)
	var out []keywordMatch
	for _, entry := range orderedKeywords {
		for from := 0; ; {
			i := strings.Index(lower[from:], entry.text)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(entry.text)
			from = start + 1
			if overlapsKeyword(out, start, end) {
				continue
			}
			out = append(out, keywordMatch{Field: entry.field, Start: start, End: end})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func overlapsKeyword(matches []keywordMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.End && end > m.Start {
			return true
		}
	}
	return false
}

// announcementWindow bounds how far an announcement keyword reaches when
// claiming its date.
const announcementWindow = 100

// announcementDates collects every date that sits next to an announcement
// keyword. These are the notice's own publication dates and must not be
// mistaken for end-of-sale dates.
func announcementDates(text string, parser dates.Parser) map[model.Date]bool {
	out := make(map[model.Date]bool)
	matches := parser.Find(text)
	if len(matches) == 0 {
		return out
	}
	for _, kw := range findKeywords(text) {
		if kw.Field != fieldAnnouncement {
			continue
		}
		if m, ok := nearestDate(matches, kw.Start, kw.End, announcementWindow); ok {
			out[m.Date] = true
		}
	}
	return out
}

// nearestDate returns the date match closest to the [start,end) span,
// within at most maxDist bytes. Dates at or after the span are preferred
// over preceding ones: "End-of-Sale Date: January 31, 2015" must bind the
// date on its own line, not the previous milestone's date one newline back.
func nearestDate(matches []dates.Match, start, end, maxDist int) (dates.Match, bool) {
	forward, backward := -1, -1
	fwdDist, bwdDist := maxDist+1, maxDist+1
	for i, m := range matches {
		switch {
		case m.Start >= end:
			if d := m.Start - end; d < fwdDist {
				forward, fwdDist = i, d
			}
		case m.End <= start:
			if d := start - m.End; d < bwdDist {
				backward, bwdDist = i, d
			}
		default:
			return m, true
		}
	}
	if forward >= 0 {
		return matches[forward], true
	}
	if backward >= 0 {
		return matches[backward], true
	}
	return dates.Match{}, false
}
