package lsi

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Decomposition holds A = U·diag(Sigma)·Vᵗ. U is terms × r, V is
// documents × r and Sigma is sorted in non-increasing order, where r is the
// smaller dimension of A.
type Decomposition struct {
	U     *mat.Dense
	V     *mat.Dense
	Sigma []float64
}

// Rank returns the number of singular triplets.
func (d *Decomposition) Rank() int {
	return len(d.Sigma)
}

// Decomposer computes the singular value decomposition of a matrix.
type Decomposer interface {
	Decompose(a mat.Matrix) (*Decomposition, error)
}

// GonumDecomposer computes a thin SVD with gonum.
type GonumDecomposer struct{}

func (GonumDecomposer) Decompose(a mat.Matrix) (*Decomposition, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("%w: factorization did not converge", ErrDecomposition)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	return &Decomposition{
		U:     &u,
		V:     &v,
		Sigma: svd.Values(nil),
	}, nil
}

// validate checks the Decomposer contract against the decomposed matrix.
func (d *Decomposition) validate(rows, cols int) error {
	if d == nil || d.U == nil || d.V == nil {
		return fmt.Errorf("%w: missing factors", ErrDecomposition)
	}
	r := len(d.Sigma)
	if want := min(rows, cols); r != want {
		return fmt.Errorf("%w: got %d singular values, want %d", ErrDecomposition, r, want)
	}
	if ur, uc := d.U.Dims(); ur != rows || uc != r {
		return fmt.Errorf("%w: U is %dx%d, want %dx%d", ErrDecomposition, ur, uc, rows, r)
	}
	if vr, vc := d.V.Dims(); vr != cols || vc != r {
		return fmt.Errorf("%w: V is %dx%d, want %dx%d", ErrDecomposition, vr, vc, cols, r)
	}
	for i, s := range d.Sigma {
		if s < 0 {
			return fmt.Errorf("%w: negative singular value %g at %d", ErrDecomposition, s, i)
		}
		if i > 0 && s > d.Sigma[i-1] {
			return fmt.Errorf("%w: singular values not sorted at %d", ErrDecomposition, i)
		}
	}
	return nil
}
