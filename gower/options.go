// SPDX-License-Identifier: MIT

// Package gower: functional configuration for Project.
//   - Option / Options (functional options with unexported state),
//   - documented defaults,
//   - WithX constructors that panic on nonsensical values (programmer error).
package gower

import "math"

// Defaults (single source of truth).
const (
	// DefaultTolerance is the relative eigenvalue cut-off: eigenvalues with
	// |λᵢ/λ₁| ≤ tol are treated as zero, retained ones below zero are fatal.
	DefaultTolerance = 1e-8

	// DefaultSymmetryTolerance bounds |D[i,j]−D[j,i]|, |D[i,i]| and negative
	// entries, relative to max(1, max|D|).
	DefaultSymmetryTolerance = 1e-9

	// DefaultOversample is the number of extra vectors carried by the top-k
	// subspace iteration.
	DefaultOversample = 8

	// DefaultMaxIter caps subspace iterations before falling back to the
	// full decomposition.
	DefaultMaxIter = 300

	// DefaultRitzTolerance is the relative residual ‖G·u − θ·u‖/|θ₁| at which
	// a Ritz pair counts as converged.
	DefaultRitzTolerance = 1e-10
)

const (
	panicKInvalid       = "gower: WithK: k must be ≥ 1"
	panicTolInvalid     = "gower: WithTolerance: tol must be finite and in [0,1)"
	panicEpsInvalid     = "gower: WithSymmetryTolerance: eps must be finite, non-negative"
	panicMaxIterInvalid = "gower: WithMaxIter: maxIter must be ≥ 1"
)

// Option mutates internal options.
type Option func(*Options)

// Options stores the effective configuration of a projection.
type Options struct {
	k          int     // 0 ⇒ full decomposition
	tol        float64 // DefaultTolerance
	eps        float64 // DefaultSymmetryTolerance
	oversample int     // DefaultOversample
	maxIter    int     // DefaultMaxIter
}

// WithK requests only the k leading eigenpairs. Use it when D was derived
// from an n×k response, where rank(G) ≤ k is known in advance.
func WithK(k int) Option {
	if k < 1 {
		panic(panicKInvalid)
	}

	return func(o *Options) { o.k = k }
}

// WithTolerance sets the relative eigenvalue tolerance.
func WithTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 || tol >= 1 {
		panic(panicTolInvalid)
	}

	return func(o *Options) { o.tol = tol }
}

// WithSymmetryTolerance sets the tolerance of the input checks.
func WithSymmetryTolerance(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithMaxIter caps top-k subspace iterations.
func WithMaxIter(maxIter int) Option {
	if maxIter < 1 {
		panic(panicMaxIterInvalid)
	}

	return func(o *Options) { o.maxIter = maxIter }
}

func defaultOptions() Options {
	return Options{
		tol:        DefaultTolerance,
		eps:        DefaultSymmetryTolerance,
		oversample: DefaultOversample,
		maxIter:    DefaultMaxIter,
	}
}

func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
