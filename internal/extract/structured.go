package extract

import (
	"regexp"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
)

// reSeparator matches the "keyword : date" / "keyword - date" connective.
var reSeparator = regexp.MustCompile(`^\s*[:|\-–]\s*`)

// structuredStrategy matches the literal pattern "<keyword> [:|-] <date>"
// anywhere in the text, independent of variant proximity. Useful when the
// whole page is already scoped to a single product, e.g. a dedicated EOL
// bulletin.
type structuredStrategy struct {
	parser dates.Parser
}

func (s *structuredStrategy) Name() string { return "structured" }

func (s *structuredStrategy) Extract(text string, _ []string) model.Milestones {
	ann := announcementDates(text, s.parser)
	out := model.Milestones{}

	for _, kw := range findKeywords(text) {
		if kw.Field == fieldAnnouncement {
			continue
		}
		rest := text[kw.End:]
		if len(rest) > 64 {
			rest = rest[:64]
		}
		sep := reSeparator.FindString(rest)
		if sep == "" {
			continue
		}
		after := rest[len(sep):]
		matches := s.parser.Find(after)
		if len(matches) == 0 || matches[0].Start > 4 {
			continue
		}
		d := matches[0].Date
		if kw.Field == model.FieldEndOfSale && ann[d] {
			continue
		}
		out.SetIfAbsent(kw.Field, model.MilestoneValue{Date: d})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
