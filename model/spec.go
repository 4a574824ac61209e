// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VariableSpec declares how one data column becomes a Variable.
type VariableSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Column   string   `yaml:"column,omitempty" json:"column,omitempty"`
	Type     string   `yaml:"type" json:"type"`
	Contrast string   `yaml:"contrast,omitempty" json:"contrast,omitempty"`
	Levels   []string `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// Spec is the serializable description of a design: which columns enter
// the model, how they are coded and which terms are tested.
type Spec struct {
	Variables []VariableSpec `yaml:"variables" json:"variables"`
	Terms     []string       `yaml:"terms,omitempty" json:"terms,omitempty"`
}

// Build codes the named columns of table (column name → raw values) into a
// Design. Numeric columns are parsed with strconv.ParseFloat; factor
// contrasts default to treatment, ordered factors to poly. Empty and NA
// cells become missing observations, reported by Design.Missing.
func (s Spec) Build(table map[string][]string) (*Design, error) {
	const op = "Spec.Build"
	vars := make([]Variable, 0, len(s.Variables))
	for _, vs := range s.Variables {
		v, err := vs.build(table)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		vars = append(vars, v)
	}

	return NewDesign(vars, s.Terms...)
}

func (vs VariableSpec) build(table map[string][]string) (Variable, error) {
	col := vs.Column
	if col == "" {
		col = vs.Name
	}
	raw, ok := table[col]
	if !ok {
		return Variable{}, fmt.Errorf("column %q: %w", col, ErrUnknownVariable)
	}
	kind := Factor
	if vs.Type != "" {
		var err error
		if kind, err = ParseKind(strings.ToLower(vs.Type)); err != nil {
			return Variable{}, err
		}
	}

	switch kind {
	case Numeric:
		values := make([]float64, len(raw))
		for i, r := range raw {
			if IsMissing(r) {
				values[i] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
			if err != nil {
				return Variable{}, fmt.Errorf("%s[%d]=%q: %w", vs.Name, i, r, ErrBadNumber)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Variable{}, fmt.Errorf("%s[%d]=%q: %w", vs.Name, i, r, ErrNaNInf)
			}
			values[i] = f
		}

		return Variable{Name: vs.Name, Kind: Numeric, Values: values}, nil
	case Ordered:
		levels := vs.Levels
		if len(levels) == 0 {
			levels = NewFactor(vs.Name, raw, Treatment).Levels
		}
		v, err := NewOrdered(vs.Name, raw, levels)
		if err != nil {
			return Variable{}, err
		}
		if vs.Contrast != "" {
			if v.Contrast, err = ParseContrast(vs.Contrast); err != nil {
				return Variable{}, err
			}
		}

		return v, nil
	default:
		c := Treatment
		if vs.Contrast != "" {
			var err error
			if c, err = ParseContrast(vs.Contrast); err != nil {
				return Variable{}, err
			}
		}

		return NewFactor(vs.Name, raw, c), nil
	}
}
