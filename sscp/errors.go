// SPDX-License-Identifier: MIT

package sscp

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/mlmtest/model"
)

var (
	// ErrNilFit is returned when no fitted model is supplied.
	ErrNilFit = errors.New("sscp: nil fit")

	// ErrUnknownScheme is returned for unsupported attribution schemes.
	ErrUnknownScheme = errors.New("sscp: unknown scheme")

	// ErrTermOutOfRange is returned when a term index is not reported by the scheme.
	ErrTermOutOfRange = errors.New("sscp: term index out of range")

	// ErrSingularHypothesis is returned when L·(XᵀX)⁻¹·Lᵀ cannot be inverted.
	ErrSingularHypothesis = errors.New("sscp: singular hypothesis matrix")
)

// Warning flags a term whose marginal hypothesis depends on the coding of
// one of its unordered factors. It does not stop the analysis.
type Warning struct {
	Term     string         `json:"term"`
	Variable string         `json:"variable"`
	Contrast model.Contrast `json:"-"`
}

// String renders the warning for logs and tables.
func (w Warning) String() string {
	return fmt.Sprintf("term %q: factor %q uses %s contrasts; type III results depend on the coding",
		w.Term, w.Variable, w.Contrast)
}

func sscpErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
