package lsi

import (
	"errors"
	"fmt"
)

// ErrConfig is the parent of every configuration error. Configuration errors
// are reported before any numeric work is done.
var ErrConfig = errors.New("lsi: invalid configuration")

var (
	ErrNilDocuments      = fmt.Errorf("%w: documents must not be nil", ErrConfig)
	ErrNilQuery          = fmt.Errorf("%w: query must not be nil", ErrConfig)
	ErrEmptyVocabulary   = fmt.Errorf("%w: corpus has no terms", ErrConfig)
	ErrInvalidRank       = fmt.Errorf("%w: fixed rank must be at least 1", ErrConfig)
	ErrInvalidPercentage = fmt.Errorf("%w: percentage must be in (0, 1]", ErrConfig)
	ErrUnknownPolicy     = fmt.Errorf("%w: unknown approximation kind", ErrConfig)
	ErrUnknownSortMode   = fmt.Errorf("%w: unknown sort mode", ErrConfig)
	ErrCaseMismatch      = fmt.Errorf("%w: case sensitivity differs from the vocabulary's", ErrConfig)
)

// ErrDecomposition is returned when the singular value decomposition fails or
// an injected Decomposer breaks its contract.
var ErrDecomposition = errors.New("lsi: decomposition failed")

// ErrDimensionMismatch reports a query vector whose length differs from the
// vocabulary size.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("lsi: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
