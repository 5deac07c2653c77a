package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_OriginalFirst(t *testing.T) {
	got := Expand("WS-C2960-24TT-L", "cisco")
	require.NotEmpty(t, got)
	assert.Equal(t, "WS-C2960-24TT-L", got[0])
}

func TestExpand_SuffixToggles(t *testing.T) {
	got := Expand("WS-C2960-24TT-L", "")
	assert.Contains(t, got, "WS-C2960-24TT-L=")
	assert.Contains(t, got, "WS-C2960-24TT-L-RF")
}

func TestExpand_StripsRefurbSuffix(t *testing.T) {
	got := Expand("WS-C2960-24TT-L-RF", "")
	assert.Contains(t, got, "WS-C2960-24TT-L")
}

func TestExpand_HyphenToggles(t *testing.T) {
	got := Expand("EX4200", "")
	assert.Contains(t, got, "EX-4200")

	got = Expand("EX-4200", "")
	assert.Contains(t, got, "EX4200")
}

func TestExpand_ManufacturerPrefix(t *testing.T) {
	got := Expand("C9300-48P", "Cisco")
	assert.Contains(t, got, "Cisco C9300-48P")
}

func TestExpand_NoDuplicates(t *testing.T) {
	got := Expand("abc-123", "")
	seen := make(map[string]bool)
	for _, v := range got {
		low := v
		assert.False(t, seen[low], "duplicate variant %q", v)
		seen[low] = true
	}
}

func TestExpand_Empty(t *testing.T) {
	assert.Nil(t, Expand("   ", "cisco"))
}

func TestStripSuffix(t *testing.T) {
	assert.Equal(t, "WS-C2960", StripSuffix("WS-C2960="))
	assert.Equal(t, "WS-C2960", StripSuffix("WS-C2960-RF"))
	assert.Equal(t, "WS-C2960", StripSuffix("WS-C2960"))
}

func TestMatchesAny_CaseInsensitive(t *testing.T) {
	variants := []string{"WS-C2960-24TT-L"}
	assert.True(t, MatchesAny("The ws-c2960-24tt-l switch reaches end of sale", variants))
	assert.False(t, MatchesAny("An unrelated product page", variants))
}

func TestOccurrences_SortedUnique(t *testing.T) {
	text := "WS-C2960 ... more text ... WS-C2960"
	occ := Occurrences(text, []string{"WS-C2960", "ws-c2960"})
	require.Len(t, occ, 2)
	assert.Equal(t, 0, occ[0])
	assert.Less(t, occ[0], occ[1])
}
