// SPDX-License-Identifier: MIT

package statistic

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/mlmtest/sscp"
)

// Stat is the scalar summary of one term.
type Stat struct {
	Index int
	Term  string
	Df    int

	// SS is tr(H_t).
	SS float64

	// Pseudo is the un-normalized pseudo-F tr(H_t)/tr(E).
	Pseudo float64

	// R2 is the partial R², tr(H_t)/tr(T).
	R2 float64
}

// MS returns SS/Df.
func (s Stat) MS() float64 { return s.SS / float64(s.Df) }

// F returns the display statistic Pseudo·df_e/Df.
func (s Stat) F(dfe int) float64 { return s.Pseudo * float64(dfe) / float64(s.Df) }

// Reduction is the scalar summary of a whole decomposition.
type Reduction struct {
	Terms   []Stat
	SSError float64
	DfError int
	SSTotal float64
}

// TermStatistic reduces one term SSCP given tr(E) and tr(T).
func TermStatistic(term sscp.Term, ssError, ssTotal float64) Stat {
	ss := mat.Trace(term.SSCP)

	return Stat{
		Index:  term.Index,
		Term:   term.Name,
		Df:     term.Df,
		SS:     ss,
		Pseudo: ss / ssError,
		R2:     ss / ssTotal,
	}
}

// Traces returns tr(E) and tr(T) of dec, rejecting zero values.
func Traces(dec *sscp.Decomposition) (ssError, ssTotal float64, err error) {
	const op = "Traces"
	if dec == nil {
		return 0, 0, statErrorf(op, ErrNilDecomposition)
	}
	ssError, ssTotal = mat.Trace(dec.Error), mat.Trace(dec.Total)
	if !(ssError > 0) {
		return 0, 0, statErrorf(op, ErrZeroErrorSS)
	}
	if !(ssTotal > 0) {
		return 0, 0, statErrorf(op, ErrZeroTotalSS)
	}

	return ssError, ssTotal, nil
}

// Reduce computes SS, pseudo-F and partial R² for every term of dec.
func Reduce(dec *sscp.Decomposition) (*Reduction, error) {
	ssE, ssT, err := Traces(dec)
	if err != nil {
		return nil, err
	}
	out := &Reduction{
		Terms:   make([]Stat, len(dec.Terms)),
		SSError: ssE,
		DfError: dec.DfError,
		SSTotal: ssT,
	}
	for i, t := range dec.Terms {
		out.Terms[i] = TermStatistic(t, ssE, ssT)
	}

	return out, nil
}

// ResidualEigenvalues returns the eigenvalues of (n−1)·cov(R)/dfe in
// descending order, with round-off negatives clamped to 0.
//
// Complexity: O(n·l² + l³).
func ResidualEigenvalues(R mat.Matrix, dfe int) ([]float64, error) {
	const op = "ResidualEigenvalues"
	if dfe < 1 {
		return nil, statErrorf(op, ErrDfError)
	}
	n, _ := R.Dims()
	if n < 2 {
		return nil, statErrorf(op, ErrTooFewRows)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, R, nil)
	cov.ScaleSym(float64(n-1)/float64(dfe), &cov)

	var es mat.EigenSym
	if ok := es.Factorize(&cov, false); !ok {
		return nil, statErrorf(op, ErrEigenFailed)
	}
	values := es.Values(nil)
	for i, v := range values {
		if v < 0 {
			values[i] = 0
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	return values, nil
}
