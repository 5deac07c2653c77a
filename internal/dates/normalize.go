// Package dates normalizes the many textual date spellings found on vendor
// end-of-life pages into canonical calendar dates.
package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/eol-research/internal/model"
)

// Plausibility window for parsed years. Anything outside is treated as a
// false positive (part numbers, port counts, addresses).
const (
	minYear = 1990
	maxYear = 2040
)

// Parser converts date tokens to canonical dates. The zero value uses the
// default month-first convention for slash/dot numeric dates.
type Parser struct {
	// DayFirst switches slash/dot numeric dates (01/02/2015) to the
	// day-first convention used by some European vendors.
	DayFirst bool
}

// Match is one date token located in a larger text.
type Match struct {
	Date  model.Date
	Start int
	End   int
	Raw   string
}

const monthAlt = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

var (
	// "January 31, 2015", "Jan 31 2015", "Sept. 1, 2020"
	reMonthFirst = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	// "31-Jan-2015", "31 January 2015", "1 Oct, 2019"
	reDayFirst = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[\s-]+(` + monthAlt + `)\.?[\s,-]+(\d{4})\b`)
	// "2015-01-31"
	reISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	// "01/31/2015", "1.31.15"
	reNumeric = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{2,4})\b`)
	// "Q1 2015", "Q3 FY2022", "Q2FY18"
	reQuarter = regexp.MustCompile(`(?i)\bQ([1-4])\s*(?:FY\s*)?(\d{4}|\d{2})\b`)
	// "October 2016" (no day) resolves to the last day of the month
	reMonthYear = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{4})\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse normalizes a single date token. It accepts month-name-first,
// day-first with month name, ISO, slash/dot numeric, fiscal quarter, and
// bare month-year spellings. Returns false when no plausible date is found.
func (p Parser) Parse(token string) (model.Date, bool) {
	matches := p.Find(token)
	if len(matches) == 0 {
		return model.Date{}, false
	}
	return matches[0].Date, true
}

// Find locates every date token in text, in document order. Overlapping
// candidates are resolved in favor of the more specific spelling (a full
// "31 January 2015" wins over the embedded "January 2015").
func (p Parser) Find(text string) []Match {
	var out []Match

	scan := func(re *regexp.Regexp, build func(groups []string) (model.Date, bool)) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if overlaps(out, start, end) {
				continue
			}
			groups := make([]string, 0, len(loc)/2)
			for i := 0; i < len(loc); i += 2 {
				if loc[i] < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, text[loc[i]:loc[i+1]])
			}
			d, ok := build(groups)
			if !ok || !plausible(d) {
				continue
			}
			out = append(out, Match{Date: d, Start: start, End: end, Raw: text[start:end]})
		}
	}

	scan(reMonthFirst, func(g []string) (model.Date, bool) {
		m, ok := monthByName(g[1])
		if !ok {
			return model.Date{}, false
		}
		day, _ := strconv.Atoi(g[2])
		year, _ := strconv.Atoi(g[3])
		return buildDay(year, m, day)
	})
	scan(reDayFirst, func(g []string) (model.Date, bool) {
		day, _ := strconv.Atoi(g[1])
		m, ok := monthByName(g[2])
		if !ok {
			return model.Date{}, false
		}
		year, _ := strconv.Atoi(g[3])
		return buildDay(year, m, day)
	})
	scan(reISO, func(g []string) (model.Date, bool) {
		year, _ := strconv.Atoi(g[1])
		mo, _ := strconv.Atoi(g[2])
		day, _ := strconv.Atoi(g[3])
		if mo < 1 || mo > 12 {
			return model.Date{}, false
		}
		return buildDay(year, time.Month(mo), day)
	})
	scan(reNumeric, func(g []string) (model.Date, bool) {
		a, _ := strconv.Atoi(g[1])
		b, _ := strconv.Atoi(g[2])
		year := expandYear(g[3])
		mo, day := a, b
		if p.DayFirst {
			mo, day = b, a
		}
		// Disambiguate when the leading number cannot be a month.
		if mo > 12 && day <= 12 {
			mo, day = day, mo
		}
		if mo < 1 || mo > 12 {
			return model.Date{}, false
		}
		return buildDay(year, time.Month(mo), day)
	})
	scan(reQuarter, func(g []string) (model.Date, bool) {
		q, _ := strconv.Atoi(g[1])
		year := expandYear(g[2])
		m := time.Month(q * 3)
		return lastDayOfMonth(year, m), true
	})
	scan(reMonthYear, func(g []string) (model.Date, bool) {
		m, ok := monthByName(g[1])
		if !ok {
			return model.Date{}, false
		}
		year, _ := strconv.Atoi(g[2])
		return lastDayOfMonth(year, m), true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func overlaps(matches []Match, start, end int) bool {
	for _, m := range matches {
		if start < m.End && end > m.Start {
			return true
		}
	}
	return false
}

func monthByName(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[name[:3]]
	return m, ok
}

// expandYear resolves two-digit years with a fixed pivot: 00-49 map to
// 2000-2049, 50-99 to 1950-1999.
func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) == 2 {
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

func buildDay(year int, m time.Month, day int) (model.Date, bool) {
	if day < 1 || day > lastDayOfMonth(year, m).Day {
		return model.Date{}, false
	}
	return model.NewDate(year, m, day), true
}

// lastDayOfMonth returns the final calendar day of year/m.
func lastDayOfMonth(year int, m time.Month) model.Date {
	return model.DateOf(time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC))
}

func plausible(d model.Date) bool {
	return d.Year >= minYear && d.Year <= maxYear
}
