// SPDX-License-Identifier: MIT
// Package: gower
//
// Purpose:
//   - Single source of truth for dissimilarity-matrix input checks.
//   - Return plain sentinels so Project can wrap them uniformly.
//
// Check order (fixed): nil → square → finite → diagonal → symmetry → sign.

package gower

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValidateDissimilarity checks that D is a usable dissimilarity matrix and
// returns a symmetric copy with tiny negative entries (≥ −eps) clamped to 0
// and the diagonal set to exactly 0.
//
// The tolerance is scaled by max(1, max|D|) so that large-valued distances
// are not rejected for round-off asymmetry.
//
// Complexity: O(n²).
func ValidateDissimilarity(D mat.Matrix, eps float64) (*mat.SymDense, error) {
	if D == nil {
		return nil, ErrNilMatrix
	}
	r, c := D.Dims()
	if r != c {
		return nil, ErrNonSquare
	}

	n := r
	var (
		i, j  int
		v     float64
		scale = 1.0
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v = D.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrNaNInf
			}
			if a := math.Abs(v); a > scale {
				scale = a
			}
		}
	}
	tol := eps * scale

	out := mat.NewSymDense(n, nil)
	var dij, dji float64
	for i = 0; i < n; i++ {
		if math.Abs(D.At(i, i)) > tol {
			return nil, ErrNonZeroDiagonal
		}
		for j = i + 1; j < n; j++ {
			dij, dji = D.At(i, j), D.At(j, i)
			if math.Abs(dij-dji) > tol {
				return nil, ErrAsymmetric
			}
			v = 0.5 * (dij + dji)
			if v < -tol {
				return nil, ErrNegativeDistance
			}
			if v < 0 {
				v = 0
			}
			out.SetSym(i, j, v)
		}
	}

	return out, nil
}
