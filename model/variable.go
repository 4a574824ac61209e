// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Kind distinguishes numeric covariates from (ordered) factors.
type Kind int

const (
	// Numeric is a continuous covariate contributing one column.
	Numeric Kind = iota

	// Factor is an unordered categorical variable; levels sort lexically.
	Factor

	// Ordered is a categorical variable with a declared level order.
	Ordered
)

var kindNames = map[Kind]string{
	Numeric: "numeric",
	Factor:  "factor",
	Ordered: "ordered",
}

// String returns the kind name used in design specs.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves "numeric", "factor" or "ordered".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}

	return Numeric, fmt.Errorf("ParseKind(%q): %w", s, ErrUnknownKind)
}

// missingCode marks a missing factor observation in Variable.Codes.
const missingCode = -1

// IsMissing reports whether a raw table cell denotes a missing value:
// empty, or NA in any case.
func IsMissing(cell string) bool {
	cell = strings.TrimSpace(cell)

	return cell == "" || strings.EqualFold(cell, "NA")
}

// Variable is one named explanatory variable over n observations.
// Construct it with NewNumeric, NewFactor or NewOrdered.
type Variable struct {
	Name     string
	Kind     Kind
	Contrast Contrast

	// Values holds the observations of a Numeric variable.
	Values []float64

	// Levels holds the factor levels in coding order; Codes indexes into it.
	// A code of -1 (or a NaN value) marks a missing observation.
	Levels []string
	Codes  []int
}

// NewNumeric returns a numeric covariate. NaN and ±Inf are rejected.
func NewNumeric(name string, values []float64) (Variable, error) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Variable{}, fmt.Errorf("NewNumeric(%s)[%d]: %w", name, i, ErrNaNInf)
		}
	}

	return Variable{
		Name:   name,
		Kind:   Numeric,
		Values: append([]float64(nil), values...),
	}, nil
}

// NewFactor returns an unordered factor whose levels are the distinct
// values sorted lexically, coded with contrast c. Missing values (see
// IsMissing) are not levels.
func NewFactor(name string, values []string, c Contrast) Variable {
	seen := make(map[string]struct{}, len(values))
	levels := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok || IsMissing(v) {
			continue
		}
		seen[v] = struct{}{}
		levels = append(levels, v)
	}
	sort.Strings(levels)

	return Variable{
		Name:     name,
		Kind:     Factor,
		Contrast: c,
		Levels:   levels,
		Codes:    encode(values, levels),
	}
}

// NewOrdered returns an ordered factor with the given level order, coded
// with polynomial contrasts. Every value must be one of levels or missing.
func NewOrdered(name string, values, levels []string) (Variable, error) {
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		index[l] = i
	}
	for i, v := range values {
		if _, ok := index[v]; !ok && !IsMissing(v) {
			return Variable{}, fmt.Errorf("NewOrdered(%s)[%d]=%q: %w", name, i, v, ErrUnknownLevel)
		}
	}

	return Variable{
		Name:     name,
		Kind:     Ordered,
		Contrast: Poly,
		Levels:   append([]string(nil), levels...),
		Codes:    encode(values, levels),
	}, nil
}

func encode(values, levels []string) []int {
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		index[l] = i
	}
	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := index[v]
		if !ok {
			code = missingCode
		}
		codes[i] = code
	}

	return codes
}

// Len returns the number of observations.
func (v Variable) Len() int {
	if v.Kind == Numeric {
		return len(v.Values)
	}

	return len(v.Codes)
}

// IsFactor reports whether v is categorical.
func (v Variable) IsFactor() bool { return v.Kind != Numeric }

// Missing reports whether observation i is missing.
func (v Variable) Missing(i int) bool {
	if v.Kind == Numeric {
		return math.IsNaN(v.Values[i])
	}

	return v.Codes[i] == missingCode
}

// subset returns v restricted to rows, dropping factor levels that no
// longer occur while keeping the remaining order.
func (v Variable) subset(rows []int) Variable {
	out := v
	if v.Kind == Numeric {
		out.Values = make([]float64, len(rows))
		for i, r := range rows {
			out.Values[i] = v.Values[r]
		}

		return out
	}

	used := make([]bool, len(v.Levels))
	for _, r := range rows {
		if c := v.Codes[r]; c != missingCode {
			used[c] = true
		}
	}
	remap := make([]int, len(v.Levels))
	out.Levels = out.Levels[:0:0]
	for i, l := range v.Levels {
		if used[i] {
			remap[i] = len(out.Levels)
			out.Levels = append(out.Levels, l)
		}
	}
	out.Codes = make([]int, len(rows))
	for i, r := range rows {
		if c := v.Codes[r]; c != missingCode {
			out.Codes[i] = remap[c]
		} else {
			out.Codes[i] = missingCode
		}
	}

	return out
}

// block returns the n×m coded columns of v and their labels.
func (v Variable) block() (*mat.Dense, []string) {
	n := v.Len()
	if v.Kind == Numeric {
		return mat.NewDense(n, 1, append([]float64(nil), v.Values...)), []string{v.Name}
	}

	C := v.Contrast.Matrix(len(v.Levels))
	_, m := C.Dims()
	B := mat.NewDense(n, m, nil)
	for i, code := range v.Codes {
		if code == missingCode {
			for j := 0; j < m; j++ {
				B.Set(i, j, math.NaN())
			}
			continue
		}
		B.SetRow(i, C.RawRowView(code))
	}
	labels := make([]string, m)
	for j := range labels {
		labels[j] = v.columnLabel(j)
	}

	return B, labels
}

func (v Variable) columnLabel(j int) string {
	switch v.Contrast {
	case Treatment:
		return v.Name + v.Levels[j+1]
	case Poly:
		return fmt.Sprintf("%s.^%d", v.Name, j+1)
	default:
		return fmt.Sprintf("%s%d", v.Name, j+1)
	}
}
