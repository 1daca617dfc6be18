package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidToken(t *testing.T) {
	assert.True(t, IsValidToken("root"))
	assert.True(t, IsValidToken("a1_b"))
	assert.False(t, IsValidToken(""))
	assert.False(t, IsValidToken("has space"))
}

func TestIsValidPattern(t *testing.T) {
	assert.True(t, IsValidPattern("root-player-head"))
	assert.True(t, IsValidPattern("root-*-head"))
	assert.True(t, IsValidPattern("root-?-head"))
	assert.True(t, IsValidPattern("root-{a,b,c}"))
	assert.True(t, IsValidPattern("player-{1..10}"))
	assert.False(t, IsValidPattern(""))
	assert.False(t, IsValidPattern("root-{unclosed"))
}

func TestExpandGroup(t *testing.T) {
	out, err := Expand("item-{a,b,c}")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"item-a", "item-b", "item-c"}, out)
}

func TestExpandRangeNoLeadingZero(t *testing.T) {
	out, err := Expand("slot-{1..3}")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"slot-1", "slot-2", "slot-3"}, out)
}

func TestExpandRangeWithLeadingZero(t *testing.T) {
	out, err := Expand("slot-{01..03}")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"slot-01", "slot-02", "slot-03"}, out)
}

func TestExpandRejectsWildcard(t *testing.T) {
	_, err := Expand("root-*")
	assert.Error(t, err)
}

func TestGetUpperExpansionLimit(t *testing.T) {
	n, err := GetUpperExpansionLimit("item-{a,b,c}-{1..5}", 100)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	n, err = GetUpperExpansionLimit("root-*", 42)
	require.NoError(t, err, "a wildcard pattern is bounded by matchAllCount, not unbounded")
	assert.Equal(t, 42, n)

	n, err = GetUpperExpansionLimit("item-{a,b}-*", 10)
	require.NoError(t, err)
	assert.Equal(t, 20, n, "group size and matchAllCount both multiply into the bound")
}

func TestMatchesMultiSegmentWildcard(t *testing.T) {
	ok, err := Matches("root-*-head", "root-player-body-head")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("root-*-head", "root-head")
	require.NoError(t, err)
	assert.True(t, ok, "* may match zero segments")
}

func TestMatchesSingleSegmentWildcard(t *testing.T) {
	ok, err := Matches("root-?-head", "root-player-head")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("root-?-head", "root-a-b-head")
	require.NoError(t, err)
	assert.False(t, ok, "? matches exactly one segment")
}

func TestMatchesGroupAlternation(t *testing.T) {
	ok, err := Matches("item-{sword,shield}", "item-sword")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("item-{sword,shield}", "item-bow")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesNoMatch(t *testing.T) {
	ok, err := Matches("root-player", "root-enemy")
	require.NoError(t, err)
	assert.False(t, ok)
}

type selectableEntity struct {
	token string
	value int
}

func TestSelectFiltersScopeByToken(t *testing.T) {
	scope := []selectableEntity{
		{"root-player-head", 1},
		{"root-player-body", 2},
		{"root-enemy-head", 3},
	}
	out, err := Select("root-player-*", scope, func(e selectableEntity) string { return e.token })
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].value)
	assert.Equal(t, 2, out[1].value)
}

func TestSelectWildcardPatternReturnsEverything(t *testing.T) {
	scope := []selectableEntity{{"a", 1}, {"b", 2}}
	out, err := Select("*", scope, func(e selectableEntity) string { return e.token })
	require.NoError(t, err)
	assert.Equal(t, scope, out)
}

func TestSelectDedupesByToken(t *testing.T) {
	scope := []selectableEntity{
		{"item-sword", 1},
		{"item-sword", 2},
		{"item-shield", 3},
	}
	out, err := Select("item-{sword,shield}", scope, func(e selectableEntity) string { return e.token })
	require.NoError(t, err)
	require.Len(t, out, 2, "a repeated token must only be selected once")
	assert.Equal(t, 1, out[0].value, "the first occurrence of a duplicated token wins")
	assert.Equal(t, 3, out[1].value)
}

func TestSelectPreservesScopeOrder(t *testing.T) {
	scope := []selectableEntity{
		{"item-shield", 1},
		{"item-sword", 2},
	}
	out, err := Select("item-{sword,shield}", scope, func(e selectableEntity) string { return e.token })
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "item-shield", out[0].token)
	assert.Equal(t, "item-sword", out[1].token)
}
