// SPDX-License-Identifier: MIT

package gower

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMatrix indicates a nil dissimilarity matrix.
	ErrNilMatrix = errors.New("gower: nil matrix")

	// ErrNonSquare signals that the dissimilarity matrix is not n×n.
	ErrNonSquare = errors.New("gower: matrix is not square")

	// ErrAsymmetric signals |D[i,j] − D[j,i]| beyond the symmetry tolerance.
	ErrAsymmetric = errors.New("gower: matrix is not symmetric within eps")

	// ErrNonZeroDiagonal signals a diagonal entry that is not ~0.
	ErrNonZeroDiagonal = errors.New("gower: diagonal not zero within eps")

	// ErrNegativeDistance signals a dissimilarity below −eps.
	ErrNegativeDistance = errors.New("gower: negative dissimilarity")

	// ErrNaNInf signals NaN or ±Inf in the input. Rows with missing values
	// must be removed before projection.
	ErrNaNInf = errors.New("gower: NaN or Inf encountered")

	// ErrEigenFailed indicates that the symmetric eigen-decomposition failed.
	ErrEigenFailed = errors.New("gower: eigen decomposition failed")

	// ErrProjection is matched (errors.Is) by every *ProjectionError.
	ErrProjection = errors.New("gower: projection failed")
)

// ProjectionKind classifies a projection failure.
type ProjectionKind int

const (
	// NonPositiveLeadingEigenvalue: the largest eigenvalue of G is below tol
	// relative to the spectrum scale.
	NonPositiveLeadingEigenvalue ProjectionKind = iota + 1

	// NegativeEigenvalue: a retained eigenvalue is negative, D is not Euclidean.
	NegativeEigenvalue

	// DegenerateRank: fewer than two eigenvalues survive filtering.
	DegenerateRank
)

// String returns the diagnostic name of the kind.
func (k ProjectionKind) String() string {
	switch k {
	case NonPositiveLeadingEigenvalue:
		return "NonPositiveLeadingEigenvalue"
	case NegativeEigenvalue:
		return "NegativeEigenvalue"
	case DegenerateRank:
		return "DegenerateRank"
	default:
		return fmt.Sprintf("ProjectionKind(%d)", int(k))
	}
}

// ProjectionError carries the eigenvalue diagnostics of a failed projection.
type ProjectionError struct {
	Kind ProjectionKind

	// Leading is the largest raw eigenvalue of the Gower matrix.
	Leading float64

	// Offending is the most negative retained normalized eigenvalue
	// (NegativeEigenvalue) or the leading normalized value
	// (NonPositiveLeadingEigenvalue).
	Offending float64

	// Retained counts eigenvalues with |λᵢ/λ₁| > Tol.
	Retained int

	// Tol is the tolerance the decision was made with.
	Tol float64
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("gower: %s (leading=%g offending=%g retained=%d tol=%g)",
		e.Kind, e.Leading, e.Offending, e.Retained, e.Tol)
}

// Is reports whether target is ErrProjection.
func (e *ProjectionError) Is(target error) bool { return target == ErrProjection }

func gowerErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
