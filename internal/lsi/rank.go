package lsi

import (
	"fmt"
	"math"
	"strings"
)

// ApproximationKind selects how many singular triplets a Corpus keeps.
type ApproximationKind int

const (
	// ApproximationNone keeps every singular triplet.
	ApproximationNone ApproximationKind = iota
	// ApproximationFixedK keeps a fixed number of triplets.
	ApproximationFixedK
	// ApproximationPercentage keeps a fraction of the full rank.
	ApproximationPercentage
)

func (k ApproximationKind) String() string {
	switch k {
	case ApproximationNone:
		return "none"
	case ApproximationFixedK:
		return "fixed-k"
	case ApproximationPercentage:
		return "percentage"
	default:
		return "unknown"
	}
}

// ParseApproximationKind maps a configuration string onto an
// ApproximationKind.
func ParseApproximationKind(s string) (ApproximationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ApproximationNone, nil
	case "k", "fixed", "fixed-k", "fixed_k":
		return ApproximationFixedK, nil
	case "percentage", "percent":
		return ApproximationPercentage, nil
	default:
		return ApproximationNone, ErrUnknownPolicy
	}
}

// RankPolicy is a low-rank approximation request. Value is ignored for
// ApproximationNone, is the k for ApproximationFixedK and a fraction in
// (0, 1] for ApproximationPercentage.
type RankPolicy struct {
	Kind  ApproximationKind
	Value float64
}

// Validate rejects requests that cannot produce a rank of at least one.
func (p RankPolicy) Validate() error {
	switch p.Kind {
	case ApproximationNone:
		return nil
	case ApproximationFixedK:
		if p.Value < 1 || math.IsNaN(p.Value) {
			return fmt.Errorf("%w (got %g)", ErrInvalidRank, p.Value)
		}
		return nil
	case ApproximationPercentage:
		if !(p.Value > 0 && p.Value <= 1) {
			return fmt.Errorf("%w (got %g)", ErrInvalidPercentage, p.Value)
		}
		return nil
	default:
		return fmt.Errorf("%w (%d)", ErrUnknownPolicy, int(p.Kind))
	}
}

// SelectRank returns the truncation rank for a decomposition of the given
// full rank. Requests above the full rank are clamped to it.
func (p RankPolicy) SelectRank(fullRank int) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if fullRank < 1 {
		return 0, fmt.Errorf("%w: full rank %d", ErrDecomposition, fullRank)
	}
	k := fullRank
	switch p.Kind {
	case ApproximationFixedK:
		if p.Value < float64(fullRank) {
			k = int(p.Value)
		}
	case ApproximationPercentage:
		k = int(math.Round(float64(fullRank) * p.Value))
		if k < 1 {
			k = 1
		}
	}
	return min(k, fullRank), nil
}
