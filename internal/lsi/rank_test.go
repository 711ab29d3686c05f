package lsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRank(t *testing.T) {
	tests := []struct {
		name     string
		policy   RankPolicy
		fullRank int
		want     int
	}{
		{"none", RankPolicy{Kind: ApproximationNone}, 5, 5},
		{"none ignores value", RankPolicy{Kind: ApproximationNone, Value: -3}, 5, 5},
		{"fixed", RankPolicy{Kind: ApproximationFixedK, Value: 2}, 5, 2},
		{"fixed truncates fraction", RankPolicy{Kind: ApproximationFixedK, Value: 2.9}, 5, 2},
		{"fixed clamped", RankPolicy{Kind: ApproximationFixedK, Value: 40}, 5, 5},
		{"percentage rounds up", RankPolicy{Kind: ApproximationPercentage, Value: 0.5}, 5, 3},
		{"percentage rounds down", RankPolicy{Kind: ApproximationPercentage, Value: 0.25}, 5, 1},
		{"percentage full", RankPolicy{Kind: ApproximationPercentage, Value: 1}, 5, 5},
		{"percentage floor", RankPolicy{Kind: ApproximationPercentage, Value: 0.01}, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := tt.policy.SelectRank(tt.fullRank)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestSelectRankRejectsInvalidPolicies(t *testing.T) {
	for _, p := range []RankPolicy{
		{Kind: ApproximationFixedK, Value: 0},
		{Kind: ApproximationFixedK, Value: 0.5},
		{Kind: ApproximationPercentage, Value: 0},
		{Kind: ApproximationPercentage, Value: -0.2},
		{Kind: ApproximationPercentage, Value: 1.01},
		{Kind: ApproximationKind(12)},
	} {
		_, err := p.SelectRank(4)
		assert.ErrorIs(t, err, ErrConfig, "policy %+v", p)
	}
}

func TestParseApproximationKind(t *testing.T) {
	for in, want := range map[string]ApproximationKind{
		"":           ApproximationNone,
		"none":       ApproximationNone,
		"fixed-k":    ApproximationFixedK,
		"K":          ApproximationFixedK,
		"percentage": ApproximationPercentage,
	} {
		got, err := ParseApproximationKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseApproximationKind("svd++")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
