// SPDX-License-Identifier: MIT

package sscp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/model"
)

// Term is the hypothesis SSCP of one model term.
type Term struct {
	// Index is the design term index (0 is the intercept).
	Index int

	// Name is the term label.
	Name string

	// Df is the number of design columns of the term.
	Df int

	// SSCP is the l×l hypothesis matrix.
	SSCP *mat.SymDense
}

// Decomposition holds every term SSCP of a fit together with the error and
// total SSCPs. Read-only after construction.
type Decomposition struct {
	Scheme   Scheme
	Terms    []Term
	Error    *mat.SymDense
	DfError  int
	Total    *mat.SymDense
	Warnings []Warning
}

// Terms lists the term indices the scheme reports: the explanatory terms in
// model order, preceded by the intercept under Marginal.
func Terms(d *model.Design, scheme Scheme) []int {
	out := make([]int, 0, len(d.Terms)+1)
	if scheme == Marginal {
		out = append(out, 0)
	}
	for i := range d.Terms {
		out = append(out, i+1)
	}

	return out
}

// Check returns the coding warnings of d under scheme. Only Marginal can
// produce any: one per (term, treatment-coded unordered factor) pair.
func Check(d *model.Design, scheme Scheme) []Warning {
	if scheme != Marginal {
		return nil
	}
	var out []Warning
	for _, t := range d.Terms {
		for _, name := range t.Vars {
			v, ok := d.Variable(name)
			if !ok || v.Kind != model.Factor || v.Contrast.Orthogonal() {
				continue
			}
			out = append(out, Warning{Term: t.Name, Variable: name, Contrast: v.Contrast})
		}
	}

	return out
}

// Hypothesis computes the SSCP of design term index t under scheme.
//
// Errors: ErrNilFit, ErrUnknownScheme, ErrTermOutOfRange,
// ErrSingularHypothesis.
func Hypothesis(fit *model.Fit, scheme Scheme, t int) (Term, error) {
	const op = "Hypothesis"
	if fit == nil {
		return Term{}, sscpErrorf(op, ErrNilFit)
	}
	if !scheme.valid() {
		return Term{}, sscpErrorf(op, ErrUnknownScheme)
	}
	d := fit.Design
	lo := 1
	if scheme == Marginal {
		lo = 0
	}
	if t < lo || t > len(d.Terms) {
		return Term{}, fmt.Errorf("%s: term %d under scheme %s: %w", op, t, scheme, ErrTermOutOfRange)
	}

	cols := d.TermColumns(t)
	term := Term{Index: t, Name: d.TermName(t), Df: len(cols)}

	var err error
	switch scheme {
	case Sequential:
		term.SSCP = sequential(fit, cols)
	case Hierarchical:
		var rel []int
		for _, r := range d.Relatives(t) {
			rel = append(rel, d.TermColumns(r)...)
		}
		var L *mat.Dense
		if L, err = hierarchicalL(fit.XtXInv, cols, rel); err == nil {
			term.SSCP, err = linear(fit, L)
		}
	case Marginal:
		term.SSCP, err = linear(fit, selectRows(d.P(), cols))
	}
	if err != nil {
		return Term{}, fmt.Errorf("%s: term %q: %w", op, term.Name, err)
	}

	return term, nil
}

// Decompose computes every term SSCP reported by scheme, sequentially.
func Decompose(fit *model.Fit, scheme Scheme) (*Decomposition, error) {
	const op = "Decompose"
	if fit == nil {
		return nil, sscpErrorf(op, ErrNilFit)
	}
	if !scheme.valid() {
		return nil, sscpErrorf(op, ErrUnknownScheme)
	}

	idx := Terms(fit.Design, scheme)
	dec := &Decomposition{
		Scheme:   scheme,
		Terms:    make([]Term, 0, len(idx)),
		Error:    fit.ResidualSSCP(),
		DfError:  fit.DfResidual,
		Total:    fit.TotalSSCP(),
		Warnings: Check(fit.Design, scheme),
	}
	for _, t := range idx {
		term, err := Hypothesis(fit, scheme, t)
		if err != nil {
			return nil, sscpErrorf(op, err)
		}
		dec.Terms = append(dec.Terms, term)
	}

	return dec, nil
}

// sequential sums the outer products of the effect rows of the term.
func sequential(fit *model.Fit, cols []int) *mat.SymDense {
	l := fit.Responses()
	S := mat.NewSymDense(l, nil)
	for _, j := range cols {
		S.SymRankOne(S, 1, fit.Effects.RowView(j))
	}

	return S
}

// selectRows returns the q×p matrix whose rows are the unit vectors of cols.
func selectRows(p int, cols []int) *mat.Dense {
	L := mat.NewDense(len(cols), p, nil)
	for i, j := range cols {
		L.Set(i, j, 1)
	}

	return L
}

// hierarchicalL returns the rows spanning the (XᵀX)⁻¹-conjugate complement
// of the relatives' unit vectors inside span(relatives, term):
//
//	L = E_tᵀ − V[t,r]·V[r,r]⁻¹·E_rᵀ.
//
// With no relatives it reduces to selectRows.
func hierarchicalL(V mat.Symmetric, term, rel []int) (*mat.Dense, error) {
	p := V.SymmetricDim()
	L := selectRows(p, term)
	if len(rel) == 0 {
		return L, nil
	}

	Vrr := mat.NewSymDense(len(rel), nil)
	for a, i := range rel {
		for b := a; b < len(rel); b++ {
			Vrr.SetSym(a, b, V.At(i, rel[b]))
		}
	}
	Vtr := mat.NewDense(len(term), len(rel), nil)
	for a, i := range term {
		for b, j := range rel {
			Vtr.Set(a, b, V.At(i, j))
		}
	}

	// W = V[t,r]·V[r,r]⁻¹, via V[r,r]·Wᵀ = V[r,t].
	var chol mat.Cholesky
	if !chol.Factorize(Vrr) {
		return nil, ErrSingularHypothesis
	}
	var Wt mat.Dense
	if err := chol.SolveTo(&Wt, Vtr.T()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularHypothesis, err)
	}
	for a := range term {
		for b, j := range rel {
			L.Set(a, j, L.At(a, j)-Wt.At(b, a))
		}
	}

	return L, nil
}

// linear evaluates H = (L·B)ᵀ·(L·V·Lᵀ)⁻¹·(L·B).
func linear(fit *model.Fit, L *mat.Dense) (*mat.SymDense, error) {
	q, _ := L.Dims()
	l := fit.Responses()

	var LB, LV, M mat.Dense
	LB.Mul(L, fit.Coefficients)
	LV.Mul(L, fit.XtXInv)
	M.Mul(&LV, L.T())

	Ms := mat.NewSymDense(q, nil)
	for i := 0; i < q; i++ {
		for j := i; j < q; j++ {
			Ms.SetSym(i, j, 0.5*(M.At(i, j)+M.At(j, i)))
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(Ms) {
		return nil, ErrSingularHypothesis
	}
	var Z mat.Dense
	if err := chol.SolveTo(&Z, &LB); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularHypothesis, err)
	}
	var H mat.Dense
	H.Mul(LB.T(), &Z)

	S := mat.NewSymDense(l, nil)
	for i := 0; i < l; i++ {
		for j := i; j < l; j++ {
			S.SetSym(i, j, 0.5*(H.At(i, j)+H.At(j, i)))
		}
	}

	return S, nil
}
