package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eol-research/internal/model"
)

func ms(f model.Field, y int, m time.Month, d int) model.Milestones {
	return model.Milestones{f: {Date: model.NewDate(y, m, d)}}
}

func TestMerge_FirstValueWins(t *testing.T) {
	pages := []PageResult{
		{URL: "https://vendor.example.com/a", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
		{URL: "https://third.example.com/b", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2016, time.June, 30)},
	}
	merged, sources := Merge(pages)
	assert.Equal(t, "2015-01-31", merged[model.FieldEndOfSale].Date.String())

	require.Len(t, sources, 1)
	assert.Equal(t, "https://vendor.example.com/a", sources[0].URL)
	assert.Equal(t, model.TierVendor, sources[0].Tier)
	assert.Equal(t, []model.Field{model.FieldEndOfSale}, sources[0].Fields)
}

func TestMerge_LaterPageFillsOtherFields(t *testing.T) {
	pages := []PageResult{
		{URL: "https://vendor.example.com/a", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
		{URL: "https://third.example.com/b", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldLastDayOfSupport, 2020, time.January, 31)},
	}
	merged, sources := Merge(pages)
	assert.Equal(t, "2015-01-31", merged[model.FieldEndOfSale].Date.String())
	assert.Equal(t, "2020-01-31", merged[model.FieldLastDayOfSupport].Date.String())

	require.Len(t, sources, 2)
	assert.Equal(t, []model.Field{model.FieldLastDayOfSupport}, sources[1].Fields)
}

func TestMerge_VendorBeatsEarlierThirdParty(t *testing.T) {
	// Generic search queries return mixed tiers in arbitrary hit order; a
	// third-party page visited first must not outrank a vendor page for
	// the same field.
	pages := []PageResult{
		{URL: "https://reseller.example.com/eol", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2015, time.March, 1)},
		{URL: "https://www.cisco.com/eol.html", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2016, time.June, 30)},
	}
	merged, sources := Merge(pages)
	assert.Equal(t, "2016-06-30", merged[model.FieldEndOfSale].Date.String())

	require.Len(t, sources, 1)
	assert.Equal(t, model.TierVendor, sources[0].Tier)
}

func TestMerge_VisitOrderPreservedWithinTier(t *testing.T) {
	pages := []PageResult{
		{URL: "https://a.example.com", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
		{URL: "https://b.example.com", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2016, time.June, 30)},
	}
	merged, sources := Merge(pages)
	assert.Equal(t, "2015-01-31", merged[model.FieldEndOfSale].Date.String())
	require.Len(t, sources, 1)
	assert.Equal(t, "https://a.example.com", sources[0].URL)
}

func TestMerge_InputOrderNotMutated(t *testing.T) {
	pages := []PageResult{
		{URL: "third", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2015, time.March, 1)},
		{URL: "vendor", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2016, time.June, 30)},
	}
	_, _ = Merge(pages)
	assert.Equal(t, "third", pages[0].URL)
	assert.Equal(t, "vendor", pages[1].URL)
}

func TestMerge_DuplicateURLRecordedOnce(t *testing.T) {
	pages := []PageResult{
		{URL: "https://vendor.example.com/a", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
		{URL: "https://vendor.example.com/a", Tier: model.TierVendor,
			Milestones: ms(model.FieldLastDayOfSupport, 2020, time.January, 31)},
	}
	merged, sources := Merge(pages)
	assert.Len(t, merged, 2)
	require.Len(t, sources, 1)
	assert.ElementsMatch(t,
		[]model.Field{model.FieldEndOfSale, model.FieldLastDayOfSupport},
		sources[0].Fields)
}

func TestMerge_PageWithNothingNewOmitted(t *testing.T) {
	pages := []PageResult{
		{URL: "https://vendor.example.com/a", Tier: model.TierVendor,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
		{URL: "https://third.example.com/b", Tier: model.TierThirdParty,
			Milestones: ms(model.FieldEndOfSale, 2015, time.January, 31)},
	}
	_, sources := Merge(pages)
	assert.Len(t, sources, 1)
}

func TestMerge_Empty(t *testing.T) {
	merged, sources := Merge(nil)
	assert.Empty(t, merged)
	assert.Nil(t, sources)
}

func TestCheckSpacing(t *testing.T) {
	cases := []struct {
		name string
		eos  model.Date
		ldos model.Date
		want bool
	}{
		{"exact five years", model.NewDate(2015, time.January, 1), model.NewDate(2020, time.January, 1), true},
		{"one year apart", model.NewDate(2015, time.January, 1), model.NewDate(2016, time.January, 1), false},
		{"ten years apart", model.NewDate(2010, time.January, 1), model.NewDate(2020, time.January, 1), false},
		{"just inside lower bound", model.NewDate(2015, time.January, 1), model.NewDate(2019, time.November, 1), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := model.Milestones{
				model.FieldEndOfSale:        {Date: tc.eos},
				model.FieldLastDayOfSupport: {Date: tc.ldos},
			}
			assert.Equal(t, tc.want, CheckSpacing(m))
		})
	}
}

func TestCheckSpacing_MissingFieldPasses(t *testing.T) {
	assert.True(t, CheckSpacing(model.Milestones{}))
	assert.True(t, CheckSpacing(ms(model.FieldEndOfSale, 2015, time.January, 1)))
	assert.True(t, CheckSpacing(ms(model.FieldLastDayOfSupport, 2020, time.January, 1)))
}
