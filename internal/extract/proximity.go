package extract

import (
	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/variant"
)

// Proximity windows, in bytes of page text. A milestone keyword must sit
// within outerWindow of a product-variant occurrence for its date (within
// innerWindow of the keyword) to count.
const (
	outerWindow = 500
	innerWindow = 100
)

// proximityStrategy extracts dates near milestone keywords that are
// themselves near a product-variant occurrence. This is the workhorse for
// prose pages where a paragraph discusses one product's retirement.
type proximityStrategy struct {
	parser dates.Parser
}

func (s *proximityStrategy) Name() string { return "proximity" }

func (s *proximityStrategy) Extract(text string, variants []string) model.Milestones {
	occ := variant.Occurrences(text, variants)
	if len(occ) == 0 {
		return nil
	}
	dateMatches := s.parser.Find(text)
	if len(dateMatches) == 0 {
		return nil
	}
	ann := announcementDates(text, s.parser)

	out := model.Milestones{}
	for _, kw := range findKeywords(text) {
		if kw.Field == fieldAnnouncement {
			continue
		}
		if !nearAny(occ, kw.Start, outerWindow) {
			continue
		}
		dm, ok := nearestDate(dateMatches, kw.Start, kw.End, innerWindow)
		if !ok {
			continue
		}
		if kw.Field == model.FieldEndOfSale && ann[dm.Date] {
			continue
		}
		out.SetIfAbsent(kw.Field, model.MilestoneValue{Date: dm.Date})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// nearAny reports whether any occurrence offset lies within dist of pos.
func nearAny(occurrences []int, pos, dist int) bool {
	for _, o := range occurrences {
		d := pos - o
		if d < 0 {
			d = -d
		}
		if d <= dist {
			return true
		}
	}
	return false
}
