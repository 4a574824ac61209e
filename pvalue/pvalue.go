// SPDX-License-Identifier: MIT

package pvalue

import (
	"fmt"
	"math"

	"github.com/katalvlaran/mlmtest/davies"
)

// Result is an asymptotic p-value together with the accuracy it was
// computed at. P ≥ Accuracy always holds.
type Result struct {
	P        float64 `json:"p"`
	Accuracy float64 `json:"accuracy"`

	// Steps is the number of tenfold escalations taken (0 on first success).
	Steps int `json:"steps"`

	// Floored reports that P was raised to Accuracy.
	Floored bool `json:"floored"`
}

// Asymptotic returns P(F̃ ≥ f) for the pseudo-F f, residual eigenvalues
// lambda and degrees of freedom dfi (term) and dfe (error).
//
// Non-positive eigenvalues carry no weight and are dropped.
//
// Errors: ErrInvalidInput; *ConvergenceError (errors.Is ErrConvergence)
// when no attempt up to the step cap yields a valid probability.
func Asymptotic(f float64, lambda []float64, dfi, dfe int, opts ...Option) (Result, error) {
	const op = "Asymptotic"
	o := gatherOptions(opts...)

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Result{}, fmt.Errorf("%s: f=%v: %w", op, f, ErrInvalidInput)
	}
	if dfi < 1 || dfe < 1 {
		return Result{}, fmt.Errorf("%s: df=(%d,%d): %w", op, dfi, dfe, ErrInvalidInput)
	}
	weights := make([]float64, 0, len(lambda))
	for _, l := range lambda {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return Result{}, fmt.Errorf("%s: lambda=%v: %w", op, l, ErrInvalidInput)
		}
		if l > 0 {
			weights = append(weights, l)
		}
	}
	if len(weights) == 0 {
		return Result{}, fmt.Errorf("%s: no positive eigenvalues: %w", op, ErrInvalidInput)
	}
	if f == 0 {
		return Result{P: 1, Accuracy: o.acc0}, nil
	}

	terms := Terms(f, weights, dfi, dfe)
	acc := o.acc0
	last := Result{Accuracy: acc}
	var fault davies.Fault
	for step := 0; step <= o.maxSteps && acc < 1; step++ {
		res := davies.CDF(0, terms, davies.WithAccuracy(acc), davies.WithLimit(o.limit))
		fault = res.Fault
		last = Result{Accuracy: acc, Steps: step}
		if fault == davies.FaultInvalid {
			break
		}
		p := 1 - res.Value
		if fault == davies.OK && p >= 0 && p <= 1 {
			out := Result{P: p, Accuracy: acc, Steps: step}
			if p < acc {
				out.P, out.Floored = acc, true
			}
			return out, nil
		}
		acc *= 10
	}

	return Result{}, &ConvergenceError{
		Term:         o.term,
		F:            f,
		Lambda:       weights,
		DfI:          dfi,
		DfE:          dfe,
		LastAccuracy: last.Accuracy,
		Fault:        fault,
		Steps:        last.Steps,
	}
}

// Terms builds the Davies terms of Q: weights λ with df_i followed by −f·λ
// with df_e.
func Terms(f float64, lambda []float64, dfi, dfe int) []davies.Term {
	terms := make([]davies.Term, 0, 2*len(lambda))
	for _, l := range lambda {
		terms = append(terms, davies.Term{Weight: l, DF: dfi})
	}
	for _, l := range lambda {
		terms = append(terms, davies.Term{Weight: -f * l, DF: dfe})
	}

	return terms
}
