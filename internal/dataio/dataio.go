// SPDX-License-Identifier: MIT

// Package dataio reads the command-line inputs: numeric response or
// distance matrices, design tables (CSV) and design specs (YAML).
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/mlmtest/model"
)

var (
	// ErrEmpty is returned for input without data rows.
	ErrEmpty = errors.New("dataio: no data rows")

	// ErrNotNumeric is returned for a matrix cell that does not parse as a
	// finite float.
	ErrNotNumeric = errors.New("dataio: not a finite number")

	// ErrDuplicateColumn is returned when a table header repeats a name.
	ErrDuplicateColumn = errors.New("dataio: duplicate column")
)

// Matrix is a numeric CSV: optional column names and the values.
type Matrix struct {
	Columns []string
	Data    *mat.Dense

	// Missing lists the rows with at least one missing (NaN) cell.
	Missing []int
}

// ReadMatrix parses a numeric CSV. With header the first record names the
// columns. Every record must have the same number of fields. Empty and NA
// cells are read as NaN and their rows reported in Missing; the analysis
// excludes them.
func ReadMatrix(r io.Reader, header bool) (*Matrix, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	out := &Matrix{}
	if header {
		out.Columns = trim(records[0])
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, rec := range records {
		missing := false
		for j, cell := range rec {
			if model.IsMissing(cell) {
				data = append(data, math.NaN())
				missing = true
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("dataio: row %d column %d (%q): %w", i+1, j+1, cell, ErrNotNumeric)
			}
			data = append(data, v)
		}
		if missing {
			out.Missing = append(out.Missing, i)
		}
	}
	out.Data = mat.NewDense(len(records), cols, data)

	return out, nil
}

// ReadTable parses a CSV with a header into column name → values, the form
// model.Spec.Build consumes. It also returns the number of data rows.
func ReadTable(r io.Reader) (map[string][]string, int, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, 0, err
	}
	header := trim(records[0])
	rows := records[1:]
	if len(rows) == 0 {
		return nil, 0, ErrEmpty
	}

	table := make(map[string][]string, len(header))
	for j, name := range header {
		if _, dup := table[name]; dup {
			return nil, 0, fmt.Errorf("dataio: %q: %w", name, ErrDuplicateColumn)
		}
		col := make([]string, len(rows))
		for i, rec := range rows {
			col[i] = strings.TrimSpace(rec[j])
		}
		table[name] = col
	}

	return table, len(rows), nil
}

// ReadSpec decodes a YAML design spec. Unknown keys are rejected.
func ReadSpec(r io.Reader) (model.Spec, error) {
	var spec model.Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Spec{}, fmt.Errorf("dataio: empty spec: %w", ErrEmpty)
		}
		return model.Spec{}, fmt.Errorf("dataio: decode spec: %w", err)
	}

	return spec, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataio: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	return records, nil
}

func trim(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}

	return out
}
