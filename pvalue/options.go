// SPDX-License-Identifier: MIT

package pvalue

import (
	"math"

	"github.com/katalvlaran/mlmtest/davies"
)

const (
	// DefaultInitialAccuracy is the accuracy of the first attempt.
	DefaultInitialAccuracy = 1e-14

	// DefaultLimit is the Davies integration term budget per attempt.
	DefaultLimit = davies.DefaultLimit

	// DefaultMaxSteps caps the number of tenfold accuracy escalations.
	DefaultMaxSteps = 14
)

// Options configures Asymptotic.
type Options struct {
	acc0     float64
	limit    int
	maxSteps int
	term     string
}

// Option mutates Options.
type Option func(*Options)

// WithInitialAccuracy sets the first accuracy tried. Panics unless 0 < acc < 1.
func WithInitialAccuracy(acc float64) Option {
	if !(acc > 0 && acc < 1) || math.IsNaN(acc) {
		panic("pvalue: WithInitialAccuracy requires 0 < acc < 1")
	}

	return func(o *Options) { o.acc0 = acc }
}

// WithLimit sets the Davies term budget. Panics if limit < 1.
func WithLimit(limit int) Option {
	if limit < 1 {
		panic("pvalue: WithLimit requires limit ≥ 1")
	}

	return func(o *Options) { o.limit = limit }
}

// WithMaxSteps caps the escalations. Panics if steps < 0.
func WithMaxSteps(steps int) Option {
	if steps < 0 {
		panic("pvalue: WithMaxSteps requires steps ≥ 0")
	}

	return func(o *Options) { o.maxSteps = steps }
}

// WithTerm names the term in a ConvergenceError.
func WithTerm(name string) Option {
	return func(o *Options) { o.term = name }
}

func gatherOptions(opts ...Option) Options {
	o := Options{acc0: DefaultInitialAccuracy, limit: DefaultLimit, maxSteps: DefaultMaxSteps}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
