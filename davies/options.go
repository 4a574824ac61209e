// SPDX-License-Identifier: MIT

package davies

import "math"

const (
	// DefaultLimit caps the number of integration terms.
	DefaultLimit = 50000

	// DefaultAccuracy is the default maximum absolute error.
	DefaultAccuracy = 1e-6
)

// Options configures an evaluation.
type Options struct {
	sigma    float64
	limit    int
	accuracy float64
}

// Option mutates Options.
type Option func(*Options)

// WithSigma sets the coefficient of the standard normal component.
// Panics if sigma is negative or not finite.
func WithSigma(sigma float64) Option {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		panic("davies: WithSigma requires a finite sigma ≥ 0")
	}

	return func(o *Options) { o.sigma = sigma }
}

// WithLimit sets the integration term budget. Panics if limit < 1.
func WithLimit(limit int) Option {
	if limit < 1 {
		panic("davies: WithLimit requires limit ≥ 1")
	}

	return func(o *Options) { o.limit = limit }
}

// WithAccuracy sets the maximum absolute error. Panics unless 0 < acc < 1.
func WithAccuracy(acc float64) Option {
	if !(acc > 0 && acc < 1) {
		panic("davies: WithAccuracy requires 0 < acc < 1")
	}

	return func(o *Options) { o.accuracy = acc }
}

func gatherOptions(opts ...Option) Options {
	o := Options{limit: DefaultLimit, accuracy: DefaultAccuracy}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
