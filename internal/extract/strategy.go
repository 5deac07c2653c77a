// Package extract pulls lifecycle milestone dates out of unstructured and
// semi-structured page text. Four strategies run in fixed priority order
// behind one interface; the first non-null value per field wins.
package extract

import (
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/dates"
	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/variant"
)

// Strategy extracts a partial milestone set from page text. Implementations
// must be pure: same text and variants, same output.
type Strategy interface {
	Name() string
	Extract(text string, variants []string) model.Milestones
}

// Pipeline runs the ordered strategy list over a page. New strategies slot
// in without touching callers.
type Pipeline struct {
	parser     dates.Parser
	strategies []Strategy
}

// NewPipeline builds the default pipeline: table rows, keyword proximity,
// structured "keyword: date" patterns, then list/bullet scanning.
func NewPipeline(parser dates.Parser) *Pipeline {
	return &Pipeline{
		parser: parser,
		strategies: []Strategy{
			&tableStrategy{parser: parser},
			&proximityStrategy{parser: parser},
			&structuredStrategy{parser: parser},
			&listStrategy{parser: parser},
		},
	}
}

// Run extracts milestones from one page. Pages where no product-identifier
// variant occurs are rejected outright. A panicking strategy is logged and
// skipped; the remaining strategies still run.
func (p *Pipeline) Run(text string, variants []string) model.Milestones {
	if text == "" || !variant.MatchesAny(text, variants) {
		return nil
	}

	out := model.Milestones{}
	for _, s := range p.strategies {
		partial := p.runStrategy(s, text, variants)
		for _, f := range model.AllFields {
			if v, ok := partial[f]; ok {
				out.SetIfAbsent(f, v)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// runStrategy isolates one strategy so a parse failure cannot take down
// the rest of the pipeline.
func (p *Pipeline) runStrategy(s Strategy, text string, variants []string) (result model.Milestones) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: strategy panicked",
				zap.String("strategy", s.Name()),
				zap.Any("panic", r),
			)
			result = nil
		}
	}()
	return s.Extract(text, variants)
}
