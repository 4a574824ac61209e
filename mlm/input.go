// SPDX-License-Identifier: MIT

package mlm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/distance"
)

// ResponseInput is the response of an analysis: either a ready dissimilarity
// matrix or raw multivariate data. The set of implementations is closed.
type ResponseInput interface {
	// Rows returns the number of observations.
	Rows() int

	response()
}

// DistanceInput is an n×n dissimilarity matrix.
type DistanceInput struct {
	D mat.Matrix
}

// RawInput is an n×p response matrix turned into distances with Method
// after the optional Transform.
type RawInput struct {
	X         mat.Matrix
	Method    distance.Method
	Transform distance.Transform
}

// Distance wraps a dissimilarity matrix.
func Distance(D mat.Matrix) DistanceInput { return DistanceInput{D: D} }

// Raw wraps raw multivariate data with a distance method.
func Raw(X mat.Matrix, method distance.Method) RawInput {
	return RawInput{X: X, Method: method}
}

// WithTransform returns a copy of r applying t before the distance.
func (r RawInput) WithTransform(t distance.Transform) RawInput {
	r.Transform = t

	return r
}

// Rows implements ResponseInput.
func (d DistanceInput) Rows() int { return rows(d.D) }

// Rows implements ResponseInput.
func (r RawInput) Rows() int { return rows(r.X) }

func (DistanceInput) response() {}
func (RawInput) response()      {}

func rows(m mat.Matrix) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()

	return r
}

// incomplete returns the rows holding a NaN: any cell of a raw row, or any
// dissimilarity involving the observation.
func incomplete(in ResponseInput) []int {
	var m mat.Matrix
	square := false
	switch v := in.(type) {
	case DistanceInput:
		m, square = v.D, true
	case RawInput:
		m = v.X
	}
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	bad := make([]bool, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				bad[i] = true
				if square && j < r {
					bad[j] = true
				}
			}
		}
	}
	var out []int
	for i, b := range bad {
		if b {
			out = append(out, i)
		}
	}

	return out
}

// subsetSquare returns D restricted to rows and columns idx.
func subsetSquare(D mat.Matrix, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), len(idx), nil)
	for i, a := range idx {
		for j, b := range idx {
			out.Set(i, j, D.At(a, b))
		}
	}

	return out
}

// subsetRows returns X restricted to rows idx.
func subsetRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, a := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(a, j))
		}
	}

	return out
}
