package extract

import (
	"strings"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/variant"
)

// tableStrategy scans line-oriented rows (including the tab-joined table
// section emitted by the fetcher) for rows mentioning a product variant,
// and assigns the row's dates to fields by adjacent keyword context. A row
// with exactly two dates and no keyword context falls back to the
// positional convention: first is end-of-sale, second last-day-of-support.
type tableStrategy struct {
	parser dates.Parser
}

func (s *tableStrategy) Name() string { return "table" }

func (s *tableStrategy) Extract(text string, variants []string) model.Milestones {
	ann := announcementDates(text, s.parser)
	out := model.Milestones{}

	for _, line := range strings.Split(text, "\n") {
		if !variant.MatchesAny(line, variants) {
			continue
		}
		extractFromRow(line, s.parser, ann, out, true)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractFromRow assigns the dates on one row to milestone fields. Each
// keyword claims the first date following it; announcement dates are
// consumed by the guard and never reach end-of-sale. When positional is
// set, a context-free two-date row uses the end-of-sale / last-day
// convention.
func extractFromRow(line string, parser dates.Parser, ann map[model.Date]bool, out model.Milestones, positional bool) {
	dateMatches := parser.Find(line)
	if len(dateMatches) == 0 {
		return
	}
	keywords := findKeywords(line)

	claimed := make([]bool, len(dateMatches))
	anyAssigned := false

	for _, kw := range keywords {
		// First unclaimed date after the keyword on this row.
		for i, dm := range dateMatches {
			if claimed[i] || dm.Start < kw.End {
				continue
			}
			claimed[i] = true
			if kw.Field == fieldAnnouncement {
				break
			}
			if kw.Field == model.FieldEndOfSale && ann[dm.Date] {
				break
			}
			out.SetIfAbsent(kw.Field, model.MilestoneValue{Date: dm.Date})
			anyAssigned = true
			break
		}
	}

	if !anyAssigned && len(keywords) == 0 && positional && len(dateMatches) == 2 {
		first, second := dateMatches[0].Date, dateMatches[1].Date
		if !ann[first] {
			out.SetIfAbsent(model.FieldEndOfSale, model.MilestoneValue{Date: first})
		}
		out.SetIfAbsent(model.FieldLastDayOfSupport, model.MilestoneValue{Date: second})
	}
}
