// SPDX-License-Identifier: MIT

package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operation tags for error wrapping.
const (
	opCompute = "Compute"
	opApply   = "Apply"
)

// Compute returns the n×n matrix of pairwise distances between the rows of X.
//
// Stage 1 (Validate): X non-nil, non-empty, finite; Hellinger also requires
// every entry to be ≥ 0.
// Stage 2 (Prepare): Hellinger rows are replaced by their square roots.
// Stage 3 (Execute): fill the upper triangle with L2 distances; the diagonal
// stays exactly 0.
//
// Complexity: O(n²·p) time, O(n·p + n²) memory.
func Compute(X mat.Matrix, method Method) (*mat.SymDense, error) {
	if _, ok := methodNames[method]; !ok {
		return nil, distanceErrorf(opCompute, ErrUnknownMethod)
	}
	rows, err := denseRows(X, method == Hellinger)
	if err != nil {
		return nil, distanceErrorf(opCompute, err)
	}

	if method == Hellinger {
		for _, row := range rows {
			for j, v := range row {
				row[j] = math.Sqrt(v)
			}
		}
	}

	n := len(rows)
	D := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			D.SetSym(i, j, floats.Distance(rows[i], rows[j], 2))
		}
	}

	return D, nil
}

// Apply returns a transformed copy of X. NoTransform still copies so the
// caller may own the result.
func Apply(X mat.Matrix, t Transform) (*mat.Dense, error) {
	if _, ok := transformNames[t]; !ok {
		return nil, distanceErrorf(opApply, ErrUnknownTransform)
	}
	rows, err := denseRows(X, t == Sqrt)
	if err != nil {
		return nil, distanceErrorf(opApply, err)
	}

	r, c := len(rows), len(rows[0])
	out := mat.NewDense(r, c, nil)
	for i, row := range rows {
		for j, v := range row {
			switch t {
			case Sqrt:
				v = math.Sqrt(v)
			case Log1p:
				if v <= -1 {
					return nil, distanceErrorf(opApply, &CellError{Row: i, Col: j, Value: v, Err: ErrNegativeInput})
				}
				v = math.Log1p(v)
			}
			out.Set(i, j, v)
		}
	}

	return out, nil
}

// denseRows copies X into row slices while validating finiteness and,
// optionally, non-negativity.
func denseRows(X mat.Matrix, nonNegative bool) ([][]float64, error) {
	if X == nil {
		return nil, ErrNilInput
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyInput
	}

	rows := make([][]float64, r)
	var v float64
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			v = X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &CellError{Row: i, Col: j, Value: v, Err: ErrNaNInf}
			}
			if nonNegative && v < 0 {
				return nil, &CellError{Row: i, Col: j, Value: v, Err: ErrNegativeInput}
			}
			rows[i][j] = v
		}
	}

	return rows, nil
}
