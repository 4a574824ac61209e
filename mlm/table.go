// SPDX-License-Identifier: MIT

package mlm

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/katalvlaran/mlmtest/sscp"
)

// Row is one line of the result table.
type Row struct {
	Term string  `json:"term"`
	Df   int     `json:"df"`
	SS   float64 `json:"ss"`
	MS   float64 `json:"ms"`

	// F is the display statistic, Pseudo·df_e/Df.
	F float64 `json:"f,omitempty"`

	// Pseudo is the un-normalized tr(H)/tr(E) the p-value refers to.
	Pseudo float64 `json:"pseudo_f,omitempty"`

	R2 float64 `json:"r2,omitempty"`

	// P is the asymptotic p-value, never below Accuracy.
	P        float64 `json:"p,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Floored  bool    `json:"floored,omitempty"`

	// Error describes a p-value that did not converge.
	Error string `json:"error,omitempty"`

	err error
}

// Err returns the convergence error of the row, if any.
func (r Row) Err() error { return r.err }

func (r *Row) setErr(err error) {
	r.err = err
	r.Error = err.Error()
}

// Table is the outcome of Analyze.
type Table struct {
	Scheme  sscp.Scheme `json:"scheme"`
	N       int         `json:"n"`
	Dim     int         `json:"dim"`
	Partial bool        `json:"partial,omitempty"`

	// Dropped counts observations excluded for missing values.
	Dropped int `json:"dropped,omitempty"`

	Rows      []Row `json:"rows"`
	Residuals Row   `json:"residuals"`

	SSTotal float64   `json:"ss_total"`
	Lambda  []float64 `json:"lambda"`

	Warnings []string `json:"warnings,omitempty"`
}

// Accuracy returns the achieved accuracy of every term row.
func (t *Table) Accuracy() []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Accuracy
	}

	return out
}

// Lookup returns the row of term name.
func (t *Table) Lookup(name string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Term == name {
			return r, true
		}
	}

	return Row{}, false
}

// Failed returns the rows whose p-value did not converge.
func (t *Table) Failed() []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.err != nil || r.Error != "" {
			out = append(out, r)
		}
	}

	return out
}

// WriteText renders the table in the usual analysis-of-variance layout.
// Floored p-values print as "< acc"; significance codes follow each row.
// The first write error is returned.
func (t *Table) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(ew, "Type %s test, n = %d, dimensions = %d\n", t.Scheme, t.N, t.Dim)
	if t.Dropped > 0 {
		fmt.Fprintf(ew, "%d incomplete observations excluded\n", t.Dropped)
	}
	fmt.Fprintln(ew)
	fmt.Fprintln(tw, "\tDf\tSum Sq\tMean Sq\tF value\tR2\tPr(>F)\t\t")
	for _, r := range t.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Term, r.Df, num(r.SS), num(r.MS), num(r.F), num(r.R2), formatP(r), stars(r))
	}
	fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\t\t\t\t\n",
		t.Residuals.Term, t.Residuals.Df, num(t.Residuals.SS), num(t.Residuals.MS))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(ew, "---")
	fmt.Fprintln(ew, "Signif. codes:  0 '***' 0.001 '**' 0.01 '*' 0.05 '.' 0.1 ' ' 1")
	for _, r := range t.Failed() {
		fmt.Fprintf(ew, "Error: %s\n", r.Error)
	}
	for _, msg := range t.Warnings {
		fmt.Fprintf(ew, "Warning: %s\n", msg)
	}

	return ew.err
}

// errWriter remembers the first write error and discards later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err

	return n, err
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 5, 64) }

func formatP(r Row) string {
	switch {
	case r.Error != "":
		return "NA"
	case r.Floored:
		return "< " + strconv.FormatFloat(r.Accuracy, 'g', 2, 64)
	}

	return strconv.FormatFloat(r.P, 'g', 4, 64)
}

func stars(r Row) string {
	if r.Error != "" {
		return ""
	}
	switch {
	case r.P < 0.001:
		return "***"
	case r.P < 0.01:
		return "**"
	case r.P < 0.05:
		return "*"
	case r.P < 0.1:
		return "."
	}

	return ""
}
