// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Contrast selects how a factor with L levels is coded into L−1 columns.
type Contrast int

const (
	// Treatment compares every level with the first one (dummy coding).
	Treatment Contrast = iota

	// Sum codes deviations from the grand mean (sum-to-zero coding).
	Sum

	// Helmert compares each level with the mean of the preceding ones.
	Helmert

	// Poly uses orthonormal polynomial scores; default for ordered factors.
	Poly
)

var contrastNames = map[Contrast]string{
	Treatment: "treatment",
	Sum:       "sum",
	Helmert:   "helmert",
	Poly:      "poly",
}

// String returns the canonical contrast name.
func (c Contrast) String() string {
	if s, ok := contrastNames[c]; ok {
		return s
	}

	return fmt.Sprintf("Contrast(%d)", int(c))
}

// ParseContrast resolves a contrast name; accepted aliases are "dummy" for
// treatment and "deviation" for sum.
func ParseContrast(s string) (Contrast, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "treatment", "dummy":
		return Treatment, nil
	case "sum", "deviation":
		return Sum, nil
	case "helmert":
		return Helmert, nil
	case "poly", "polynomial":
		return Poly, nil
	}

	return Treatment, fmt.Errorf("ParseContrast(%q): %w", s, ErrUnknownContrast)
}

// Orthogonal reports whether every contrast column sums to zero, i.e. the
// coding is orthogonal to the intercept. Marginal (type III) hypotheses are
// only meaningful under such codings.
func (c Contrast) Orthogonal() bool { return c != Treatment }

// Matrix returns the levels×(levels−1) coding matrix.
func (c Contrast) Matrix(levels int) *mat.Dense {
	m := levels - 1
	C := mat.NewDense(levels, m, nil)
	switch c {
	case Treatment:
		for i := 1; i < levels; i++ {
			C.Set(i, i-1, 1)
		}
	case Sum:
		for i := 0; i < m; i++ {
			C.Set(i, i, 1)
			C.Set(levels-1, i, -1)
		}
	case Helmert:
		for j := 0; j < m; j++ {
			for i := 0; i <= j; i++ {
				C.Set(i, j, -1)
			}
			C.Set(j+1, j, float64(j+1))
		}
	case Poly:
		polyScores(C)
	}

	return C
}

// polyScores fills C with orthonormal polynomial contrasts over equally
// spaced scores 1..L (degree 1..L−1), by Gram–Schmidt on centered powers.
func polyScores(C *mat.Dense) {
	levels, m := C.Dims()
	mean := float64(levels+1) / 2
	basis := make([][]float64, 0, m+1)

	ones := make([]float64, levels)
	for i := range ones {
		ones[i] = 1 / math.Sqrt(float64(levels))
	}
	basis = append(basis, ones)

	for d := 1; d <= m; d++ {
		v := make([]float64, levels)
		for i := range v {
			v[i] = math.Pow(float64(i+1)-mean, float64(d))
		}
		for pass := 0; pass < 2; pass++ {
			for _, b := range basis {
				var dot float64
				for i := range v {
					dot += v[i] * b[i]
				}
				for i := range v {
					v[i] -= dot * b[i]
				}
			}
		}
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
			C.Set(i, d-1, v[i])
		}
		basis = append(basis, v)
	}
}
