package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersDescending(t *testing.T) {
	ids := []string{"d1", "d2", "d3"}
	scores := []float64{-0.0541, 0.9910, 0.4478}

	got := Rank(ids, scores, 0, -1)
	require.Len(t, got, 3)
	assert.Equal(t, "d2", got[0].DocID)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "d3", got[1].DocID)
	assert.Equal(t, "d1", got[2].DocID)
}

func TestRankTiesByID(t *testing.T) {
	got := Rank([]string{"b", "a", "c"}, []float64{0.5, 0.5, 0.50000001}, 0, -1)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].DocID, got[1].DocID, got[2].DocID})
}

func TestRankLimitAndMinScore(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	scores := []float64{-1, 0.2, 0.9, 0.1}

	got := Rank(ids, scores, 2, -1)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].DocID)
	assert.Equal(t, "b", got[1].DocID)

	got = Rank(ids, scores, 0, 0.15)
	require.Len(t, got, 2)

	got = Rank(ids, scores, 0, -1)
	assert.Len(t, got, 3, "the -1 sentinel is dropped at the default threshold")
}

func TestRankRoundsAndSkipsNaN(t *testing.T) {
	got := Rank([]string{"a", "b"}, []float64{0.123456, math.NaN()}, 0, -1)
	require.Len(t, got, 1)
	assert.Equal(t, 0.1235, got[0].Score)
}

func TestRankMismatchedLengths(t *testing.T) {
	got := Rank([]string{"a", "b", "c"}, []float64{0.3}, 0, -1)
	assert.Len(t, got, 1)
	assert.Empty(t, Rank(nil, nil, 5, -1))
}
