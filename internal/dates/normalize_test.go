package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eol-research/internal/model"
)

func TestParse_RepresentativeSpellings(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"January 31, 2015", "2015-01-31"},
		{"31-Jan-2015", "2015-01-31"},
		{"2015-01-31", "2015-01-31"},
		{"01/31/2015", "2015-01-31"},
		{"Q1 2015", "2015-03-31"},
		{"October 2016", "2016-10-31"},
	}
	var p Parser
	for _, tc := range cases {
		d, ok := p.Parse(tc.in)
		require.True(t, ok, "parse %q", tc.in)
		assert.Equal(t, tc.want, d.String(), "parse %q", tc.in)
	}
}

func TestParse_MoreSpellings(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jan 31 2015", "2015-01-31"},
		{"Sept. 1, 2020", "2020-09-01"},
		{"31 January 2015", "2015-01-31"},
		{"1 Oct 2019", "2019-10-01"},
		{"Q3 FY2022", "2022-09-30"},
		{"Q2FY18", "2018-06-30"},
		{"1.31.15", "2015-01-31"},
		{"12/31/99", "1999-12-31"},
		{"February 2024", "2024-02-29"},
	}
	var p Parser
	for _, tc := range cases {
		d, ok := p.Parse(tc.in)
		require.True(t, ok, "parse %q", tc.in)
		assert.Equal(t, tc.want, d.String(), "parse %q", tc.in)
	}
}

func TestParse_DayFirstConvention(t *testing.T) {
	p := Parser{DayFirst: true}
	d, ok := p.Parse("04/01/2020")
	require.True(t, ok)
	assert.Equal(t, "2020-01-04", d.String())

	// Default convention is month-first.
	d, ok = Parser{}.Parse("04/01/2020")
	require.True(t, ok)
	assert.Equal(t, "2020-04-01", d.String())
}

func TestParse_SwapsWhenMonthImpossible(t *testing.T) {
	d, ok := Parser{}.Parse("31/01/2015")
	require.True(t, ok)
	assert.Equal(t, "2015-01-31", d.String())
}

func TestParse_RejectsImplausibleYears(t *testing.T) {
	var p Parser
	for _, in := range []string{"January 31, 1980", "2055-01-31", "Q1 1985"} {
		_, ok := p.Parse(in)
		assert.False(t, ok, "should reject %q", in)
	}
}

func TestParse_RejectsNonDates(t *testing.T) {
	var p Parser
	for _, in := range []string{"", "no dates here", "version 24.3.1 build", "port 10/100"} {
		_, ok := p.Parse(in)
		assert.False(t, ok, "should reject %q", in)
	}
}

func TestParse_RejectsInvalidDay(t *testing.T) {
	_, ok := Parser{}.Parse("February 30, 2020")
	assert.False(t, ok)
}

func TestFind_DocumentOrder(t *testing.T) {
	text := "Announced January 1, 2015. End-of-sale 2015-06-30, support ends Q2 2020."
	matches := Parser{}.Find(text)
	require.Len(t, matches, 3)
	assert.Equal(t, "2015-01-01", matches[0].Date.String())
	assert.Equal(t, "2015-06-30", matches[1].Date.String())
	assert.Equal(t, "2020-06-30", matches[2].Date.String())
	assert.True(t, matches[0].Start < matches[1].Start)
	assert.True(t, matches[1].Start < matches[2].Start)
}

func TestFind_SpecificSpellingWinsOverlap(t *testing.T) {
	// "January 2015" is embedded in the full day-first spelling and must
	// not produce a second, month-end match.
	matches := Parser{}.Find("retired on 31 January 2015 worldwide")
	require.Len(t, matches, 1)
	assert.Equal(t, "2015-01-31", matches[0].Date.String())
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, model.NewDate(2016, time.February, 29), lastDayOfMonth(2016, time.February))
	assert.Equal(t, model.NewDate(2015, time.December, 31), lastDayOfMonth(2015, time.December))
}
