// SPDX-License-Identifier: MIT

package pvalue

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/mlmtest/davies"
)

var (
	// ErrInvalidInput is returned for non-finite or negative statistics,
	// degrees of freedom below 1, or no positive weights.
	ErrInvalidInput = errors.New("pvalue: invalid input")

	// ErrConvergence is matched by every *ConvergenceError.
	ErrConvergence = errors.New("pvalue: no valid probability within the accuracy cap")
)

// ConvergenceError reports a term whose p-value could not be obtained even
// at the coarsest permitted accuracy. It carries what is needed to replay
// the computation.
type ConvergenceError struct {
	Term         string
	F            float64
	Lambda       []float64
	DfI, DfE     int
	LastAccuracy float64
	Fault        davies.Fault
	Steps        int
}

// Error implements error.
func (e *ConvergenceError) Error() string {
	term := e.Term
	if term == "" {
		term = "?"
	}

	return fmt.Sprintf("pvalue: term %q: f=%g df=(%d,%d) %d weights: gave up at accuracy %g after %d steps (%s)",
		term, e.F, e.DfI, e.DfE, len(e.Lambda), e.LastAccuracy, e.Steps, e.Fault)
}

// Is reports ErrConvergence as a match.
func (e *ConvergenceError) Is(target error) bool { return target == ErrConvergence }
