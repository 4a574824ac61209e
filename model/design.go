// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// InterceptName labels the intercept column and pseudo-term 0.
const InterceptName = "(Intercept)"

// Term is a main effect (one variable) or an interaction (several).
type Term struct {
	Name string
	Vars []string
}

// ParseTerm splits "a:b:c" into an interaction over a, b and c.
func ParseTerm(s string) (Term, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	vars := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Term{}, fmt.Errorf("ParseTerm(%q): %w", s, ErrUnknownVariable)
		}
		vars = append(vars, p)
	}

	return Term{Name: strings.Join(vars, ":"), Vars: vars}, nil
}

// contains reports whether t's variable set strictly contains u's.
func (t Term) contains(u Term) bool {
	if len(t.Vars) <= len(u.Vars) {
		return false
	}
	for _, v := range u.Vars {
		if !t.has(v) {
			return false
		}
	}

	return true
}

func (t Term) has(name string) bool {
	for _, v := range t.Vars {
		if v == name {
			return true
		}
	}

	return false
}

func (t Term) sameSet(u Term) bool {
	if len(t.Vars) != len(u.Vars) {
		return false
	}
	for _, v := range u.Vars {
		if !t.has(v) {
			return false
		}
	}

	return true
}

// Design is the numeric design matrix of a linear model together with the
// bookkeeping that maps columns back to terms. It is immutable once built.
type Design struct {
	// X is the n×p design matrix; column 0 is the intercept.
	X *mat.Dense

	// Columns labels the p columns.
	Columns []string

	// Assign maps each column to its term: 0 for the intercept, i+1 for Terms[i].
	Assign []int

	// Terms lists the explanatory terms in model order.
	Terms []Term

	vars  []Variable
	index map[string]int
}

// NewDesign codes vars into a design matrix with an intercept and the given
// terms ("a", "a:b", ...). With no terms every variable enters as a main
// effect in the given order.
//
// Errors: ErrNoObservations, ErrDuplicateVariable, ErrLengthMismatch,
// ErrUnknownVariable, ErrDuplicateTerm, ErrSingleLevel, ErrNoTerms.
func NewDesign(vars []Variable, terms ...string) (*Design, error) {
	const op = "NewDesign"
	if len(vars) == 0 {
		return nil, modelErrorf(op, ErrNoTerms)
	}
	n := vars[0].Len()
	if n == 0 {
		return nil, modelErrorf(op, ErrNoObservations)
	}

	index := make(map[string]int, len(vars))
	for i, v := range vars {
		if _, dup := index[v.Name]; dup {
			return nil, fmt.Errorf("%s: %q: %w", op, v.Name, ErrDuplicateVariable)
		}
		if v.Len() != n {
			return nil, fmt.Errorf("%s: %q has %d rows, want %d: %w", op, v.Name, v.Len(), n, ErrLengthMismatch)
		}
		index[v.Name] = i
	}

	if len(terms) == 0 {
		for _, v := range vars {
			terms = append(terms, v.Name)
		}
	}
	parsed := make([]Term, 0, len(terms))
	for _, s := range terms {
		t, err := ParseTerm(s)
		if err != nil {
			return nil, modelErrorf(op, err)
		}
		for _, name := range t.Vars {
			i, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("%s: term %q: %q: %w", op, t.Name, name, ErrUnknownVariable)
			}
			if vars[i].IsFactor() && len(vars[i].Levels) < 2 {
				return nil, fmt.Errorf("%s: %q: %w", op, name, ErrSingleLevel)
			}
		}
		for _, prev := range parsed {
			if prev.sameSet(t) {
				return nil, fmt.Errorf("%s: %q: %w", op, t.Name, ErrDuplicateTerm)
			}
		}
		parsed = append(parsed, t)
	}
	if len(parsed) == 0 {
		return nil, modelErrorf(op, ErrNoTerms)
	}

	d := &Design{
		Terms: parsed,
		vars:  append([]Variable(nil), vars...),
		index: index,
	}
	d.build(n)

	return d, nil
}

// build assembles X, Columns and Assign from the terms.
func (d *Design) build(n int) {
	cols := [][]float64{constant(n, 1)}
	d.Columns = []string{InterceptName}
	d.Assign = []int{0}

	for ti, t := range d.Terms {
		block, labels := d.vars[d.index[t.Vars[0]]].block()
		for _, name := range t.Vars[1:] {
			next, nextLabels := d.vars[d.index[name]].block()
			block, labels = interact(block, labels, next, nextLabels)
		}
		_, m := block.Dims()
		for j := 0; j < m; j++ {
			cols = append(cols, mat.Col(nil, j, block))
			d.Columns = append(d.Columns, labels[j])
			d.Assign = append(d.Assign, ti+1)
		}
	}

	d.X = mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		d.X.SetCol(j, c)
	}
}

// interact returns the row-wise products of every column of A with every
// column of B, A varying slowest.
func interact(A *mat.Dense, aLabels []string, B *mat.Dense, bLabels []string) (*mat.Dense, []string) {
	n, ma := A.Dims()
	_, mb := B.Dims()
	out := mat.NewDense(n, ma*mb, nil)
	labels := make([]string, 0, ma*mb)
	for a := 0; a < ma; a++ {
		for b := 0; b < mb; b++ {
			j := a*mb + b
			for i := 0; i < n; i++ {
				out.Set(i, j, A.At(i, a)*B.At(i, b))
			}
			labels = append(labels, aLabels[a]+":"+bLabels[b])
		}
	}

	return out, labels
}

func constant(n int, v float64) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = v
	}

	return c
}

// N returns the number of observations.
func (d *Design) N() int {
	r, _ := d.X.Dims()

	return r
}

// P returns the number of columns, intercept included.
func (d *Design) P() int {
	_, c := d.X.Dims()

	return c
}

// TermName returns the label of term index t (0 is the intercept).
func (d *Design) TermName(t int) string {
	if t == 0 {
		return InterceptName
	}

	return d.Terms[t-1].Name
}

// TermColumns returns the design columns assigned to term index t.
func (d *Design) TermColumns(t int) []int {
	var out []int
	for j, a := range d.Assign {
		if a == t {
			out = append(out, j)
		}
	}

	return out
}

// Relatives returns the term indices whose variables strictly contain those
// of term t (its higher-order relatives). The intercept has none.
func (d *Design) Relatives(t int) []int {
	if t == 0 {
		return nil
	}
	self := d.Terms[t-1]
	var out []int
	for i, u := range d.Terms {
		if u.contains(self) {
			out = append(out, i+1)
		}
	}

	return out
}

// Variable returns the variable called name.
func (d *Design) Variable(name string) (Variable, bool) {
	i, ok := d.index[name]
	if !ok {
		return Variable{}, false
	}

	return d.vars[i], true
}

// Variables returns the variables the design was built from.
func (d *Design) Variables() []Variable { return append([]Variable(nil), d.vars...) }

// Missing returns, in increasing order, the rows where a variable entering
// some term is missing. Variables outside every term are ignored.
func (d *Design) Missing() []int {
	used := make(map[string]bool, len(d.vars))
	for _, t := range d.Terms {
		for _, name := range t.Vars {
			used[name] = true
		}
	}
	var rows []int
	for i := 0; i < d.N(); i++ {
		for _, v := range d.vars {
			if used[v.Name] && v.Missing(i) {
				rows = append(rows, i)
				break
			}
		}
	}

	return rows
}

// Subset rebuilds the design over the given rows (in that order). Factor
// levels no longer observed are dropped. Passing a permutation of 0..n−1
// reorders observations.
func (d *Design) Subset(rows []int) (*Design, error) {
	const op = "Design.Subset"
	n := d.N()
	if len(rows) == 0 {
		return nil, modelErrorf(op, ErrNoObservations)
	}
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%s: row %d of %d: %w", op, r, n, ErrIndexOutOfRange)
		}
	}
	vars := make([]Variable, len(d.vars))
	for i, v := range d.vars {
		vars[i] = v.subset(rows)
	}
	names := make([]string, len(d.Terms))
	for i, t := range d.Terms {
		names[i] = t.Name
	}

	return NewDesign(vars, names...)
}
