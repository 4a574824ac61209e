// SPDX-License-Identifier: MIT

package gower

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const opProject = "Project"

// Configuration is the centered Euclidean point configuration of a
// projection. It is built once by Project and must be treated as read-only.
type Configuration struct {
	// Y is the n×l matrix of principal coordinates, columns centered.
	Y *mat.Dense

	// Eigenvalues holds the l retained eigenvalues of G, descending.
	Eigenvalues []float64

	// Normalized holds every computed eigenvalue divided by the leading one,
	// descending. With WithK it has at most k entries.
	Normalized []float64

	// Partial reports that only the leading eigenpairs were computed.
	Partial bool
}

// Dim returns the number of retained dimensions l.
func (c *Configuration) Dim() int { return len(c.Eigenvalues) }

// Gower returns G = −½·J·(D∘D)·J for a symmetric dissimilarity matrix D.
//
// Implementation:
//   - Stage 1: square every entry.
//   - Stage 2: compute row means (equal to column means by symmetry) and the
//     grand mean.
//   - Stage 3: G[i,j] = −½·(A[i,j] − m[i] − m[j] + m̄).
//
// Complexity: O(n²) time and memory.
func Gower(D mat.Symmetric) *mat.SymDense {
	n := D.SymmetricDim()
	A := mat.NewSymDense(n, nil)
	means := make([]float64, n)
	var (
		i, j  int
		v     float64
		grand float64
	)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			v = D.At(i, j)
			v *= v
			A.SetSym(i, j, v)
			means[i] += v
			if j != i {
				means[j] += v
			}
		}
	}
	for i = 0; i < n; i++ {
		grand += means[i]
		means[i] /= float64(n)
	}
	grand /= float64(n * n)

	G := mat.NewSymDense(n, nil)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			G.SetSym(i, j, -0.5*(A.At(i, j)-means[i]-means[j]+grand))
		}
	}

	return G
}

// Project converts the dissimilarity matrix D into a centered Euclidean
// configuration.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrNonZeroDiagonal,
//     ErrAsymmetric, ErrNegativeDistance for invalid input.
//   - ErrEigenFailed if the eigen solver fails.
//   - *ProjectionError (errors.Is(err, ErrProjection)) for spectrum problems.
//
// Project is pure: D is never modified.
func Project(D mat.Matrix, opts ...Option) (*Configuration, error) {
	o := gatherOptions(opts...)

	Ds, err := ValidateDissimilarity(D, o.eps)
	if err != nil {
		return nil, gowerErrorf(opProject, err)
	}
	n := Ds.SymmetricDim()
	G := Gower(Ds)

	var (
		values  []float64
		vectors *mat.Dense
		partial bool
	)
	if o.k > 0 && o.k+o.oversample < n {
		values, vectors, partial = leadingEigen(G, o.k, o.oversample, o.maxIter)
	}
	if !partial {
		values, vectors, err = fullEigen(G)
		if err != nil {
			return nil, gowerErrorf(opProject, err)
		}
		if o.k > 0 && o.k < len(values) {
			values = values[:o.k]
			vectors = vectors.Slice(0, n, 0, o.k).(*mat.Dense)
		}
	}

	keep, normalized, err := filterSpectrum(values, o.tol)
	if err != nil {
		return nil, gowerErrorf(opProject, err)
	}

	Y := mat.NewDense(n, len(keep), nil)
	retained := make([]float64, len(keep))
	var col int
	for col = 0; col < len(keep); col++ {
		idx := keep[col]
		retained[col] = values[idx]
		s := math.Sqrt(values[idx])
		for i := 0; i < n; i++ {
			Y.Set(i, col, vectors.At(i, idx)*s)
		}
	}
	centerColumns(Y)

	return &Configuration{
		Y:           Y,
		Eigenvalues: retained,
		Normalized:  normalized,
		Partial:     partial,
	}, nil
}

// filterSpectrum applies the tolerance rules to descending eigenvalues and
// returns the retained indices plus the normalized spectrum.
func filterSpectrum(values []float64, tol float64) ([]int, []float64, error) {
	if len(values) == 0 {
		return nil, nil, &ProjectionError{Kind: DegenerateRank, Tol: tol}
	}
	leading := values[0]
	var scale float64
	for _, v := range values {
		if a := math.Abs(v); a > scale {
			scale = a
		}
	}
	if scale == 0 || !(leading > 0) || leading/scale < tol {
		rel := 0.0
		if scale > 0 {
			rel = leading / scale
		}
		return nil, nil, &ProjectionError{
			Kind:      NonPositiveLeadingEigenvalue,
			Leading:   leading,
			Offending: rel,
			Tol:       tol,
		}
	}

	normalized := make([]float64, len(values))
	keep := make([]int, 0, len(values))
	worst := 0.0
	for i, v := range values {
		normalized[i] = v / leading
		if math.Abs(normalized[i]) <= tol {
			continue
		}
		keep = append(keep, i)
		if normalized[i] < worst {
			worst = normalized[i]
		}
	}
	if worst < 0 {
		return nil, normalized, &ProjectionError{
			Kind:      NegativeEigenvalue,
			Leading:   leading,
			Offending: worst,
			Retained:  len(keep),
			Tol:       tol,
		}
	}
	if len(keep) < 2 {
		return nil, normalized, &ProjectionError{
			Kind:      DegenerateRank,
			Leading:   leading,
			Offending: normalized[0],
			Retained:  len(keep),
			Tol:       tol,
		}
	}

	return keep, normalized, nil
}

// fullEigen returns all eigenpairs of G with eigenvalues in descending order.
func fullEigen(G *mat.SymDense) ([]float64, *mat.Dense, error) {
	var es mat.EigenSym
	if ok := es.Factorize(G, true); !ok {
		return nil, nil, ErrEigenFailed
	}
	asc := es.Values(nil)
	var V mat.Dense
	es.VectorsTo(&V)
	values, vectors := sortDescending(asc, &V)

	return values, vectors, nil
}

// sortDescending reorders eigenpairs so that values decrease.
func sortDescending(values []float64, V *mat.Dense) ([]float64, *mat.Dense) {
	n, m := V.Dims()
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	outVals := make([]float64, len(values))
	outVecs := mat.NewDense(n, m, nil)
	for dst, src := range order {
		outVals[dst] = values[src]
		for i := 0; i < n; i++ {
			outVecs.Set(i, dst, V.At(i, src))
		}
	}

	return outVals, outVecs
}

// centerColumns subtracts the column mean from every column of Y in place.
func centerColumns(Y *mat.Dense) {
	r, c := Y.Dims()
	for j := 0; j < c; j++ {
		var mean float64
		for i := 0; i < r; i++ {
			mean += Y.At(i, j)
		}
		mean /= float64(r)
		for i := 0; i < r; i++ {
			Y.Set(i, j, Y.At(i, j)-mean)
		}
	}
}
