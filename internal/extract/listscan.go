package extract

import (
	"strings"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/variant"
)

// listWindow is how many neighboring lines around a product mention are
// inspected for milestone keywords and dates.
const listWindow = 3

// listStrategy handles bullet lists and loose line-oriented layouts: when
// a line mentions the product, nearby lines pairing a milestone keyword
// with a date contribute fields. No positional fallback here; a bare date
// in a list is too ambiguous.
type listStrategy struct {
	parser dates.Parser
}

func (s *listStrategy) Name() string { return "list" }

func (s *listStrategy) Extract(text string, variants []string) model.Milestones {
	lines := strings.Split(text, "\n")
	ann := announcementDates(text, s.parser)
	out := model.Milestones{}

	for i, line := range lines {
		if !variant.MatchesAny(line, variants) {
			continue
		}
		lo := i - listWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + listWindow
		if hi > len(lines)-1 {
			hi = len(lines) - 1
		}
		for j := lo; j <= hi; j++ {
			extractFromRow(lines[j], s.parser, ann, out, false)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
