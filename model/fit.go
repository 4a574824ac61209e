// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxCondition is the largest condition number of XᵀX accepted by OLS.
const MaxCondition = 1e12

// Fit is a multivariate least-squares fit of Y on a Design.
type Fit struct {
	Design *Design

	// Y is a private copy of the n×l response.
	Y *mat.Dense

	// Coefficients is the p×l matrix B̂ = (XᵀX)⁻¹XᵀY.
	Coefficients *mat.Dense

	// Residuals is the n×l matrix Y − X·B̂.
	Residuals *mat.Dense

	// Effects is the n×l matrix Qᵀ·Y from the QR factorization of X; row j
	// (j < p) carries the sequential contribution of column j.
	Effects *mat.Dense

	// XtXInv is the p×p matrix (XᵀX)⁻¹.
	XtXInv *mat.SymDense

	// DfResidual is n − p.
	DfResidual int
}

// Responses returns the number of response columns l.
func (f *Fit) Responses() int {
	_, l := f.Y.Dims()

	return l
}

// OLS fits Y (n×l) on d.
//
// Implementation:
//   - Stage 1 (Validate): n agrees, n > p, no missing rows, Y finite.
//   - Stage 2 (Invert): Cholesky of XᵀX; reject cond > MaxCondition.
//   - Stage 3 (Solve): Householder QR of X; B̂ by QR solve, effects Qᵀ·Y.
//   - Stage 4 (Residuals): Y − X·B̂.
//
// Complexity: O(n²·p + n²·l) time, dominated by forming the full Q.
func OLS(d *Design, Y mat.Matrix) (*Fit, error) {
	const op = "OLS"
	n, p := d.X.Dims()
	r, l := Y.Dims()
	if r != n {
		return nil, fmt.Errorf("%s: response has %d rows, design %d: %w", op, r, n, ErrDimensionMismatch)
	}
	if l == 0 {
		return nil, fmt.Errorf("%s: response has no columns: %w", op, ErrDimensionMismatch)
	}
	if n <= p {
		return nil, fmt.Errorf("%s: n=%d, p=%d: %w", op, n, p, ErrNoResidualDf)
	}
	if miss := d.Missing(); len(miss) > 0 {
		return nil, fmt.Errorf("%s: %d rows: %w", op, len(miss), ErrMissingValues)
	}
	Yc := mat.DenseCopyOf(Y)
	for i := 0; i < n; i++ {
		for j := 0; j < l; j++ {
			if v := Yc.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%s: response[%d,%d]: %w", op, i, j, ErrNaNInf)
			}
		}
	}

	// Stage 2: (XᵀX)⁻¹.
	var xtx mat.SymDense
	xtx.SymOuterK(1, d.X.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok || chol.Cond() > MaxCondition {
		return nil, fmt.Errorf("%s: %w", op, ErrRankDeficient)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRankDeficient, err)
	}

	// Stage 3: coefficients and effects.
	var qr mat.QR
	qr.Factorize(d.X)
	B := mat.NewDense(p, l, nil)
	if err := qr.SolveTo(B, false, Yc); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRankDeficient, err)
	}
	var Q mat.Dense
	qr.QTo(&Q)
	effects := mat.NewDense(n, l, nil)
	effects.Mul(Q.T(), Yc)

	// Stage 4: residuals.
	resid := mat.NewDense(n, l, nil)
	resid.Mul(d.X, B)
	resid.Sub(Yc, resid)

	return &Fit{
		Design:       d,
		Y:            Yc,
		Coefficients: B,
		Residuals:    resid,
		Effects:      effects,
		XtXInv:       &inv,
		DfResidual:   n - p,
	}, nil
}

// ResidualSSCP returns Rᵀ·R, the l×l residual sums of squares and
// cross-products.
func (f *Fit) ResidualSSCP() *mat.SymDense {
	l := f.Responses()
	S := mat.NewSymDense(l, nil)
	S.SymOuterK(1, f.Residuals.T())

	return S
}

// TotalSSCP returns the l×l SSCP of Y about its column means.
func (f *Fit) TotalSSCP() *mat.SymDense {
	n, l := f.Y.Dims()
	C := mat.DenseCopyOf(f.Y)
	for j := 0; j < l; j++ {
		var m float64
		for i := 0; i < n; i++ {
			m += C.At(i, j)
		}
		m /= float64(n)
		for i := 0; i < n; i++ {
			C.Set(i, j, C.At(i, j)-m)
		}
	}
	S := mat.NewSymDense(l, nil)
	S.SymOuterK(1, C.T())

	return S
}
