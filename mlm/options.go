// SPDX-License-Identifier: MIT

package mlm

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/sscp"
)

// DefaultScheme is the hierarchical (type II) decomposition.
const DefaultScheme = sscp.Hierarchical

// Observer receives stage outcomes, typically to record metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveProjection(dim int, partial bool)
	ObservePValue(term string, res pvalue.Result, err error)
	ObserveAnalysis(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveProjection(int, bool)                {}
func (nopObserver) ObservePValue(string, pvalue.Result, error) {}
func (nopObserver) ObserveAnalysis(error)                      {}

// Options configures Analyze.
type Options struct {
	scheme   sscp.Scheme
	k        int
	tol      float64
	subset   []int
	workers  int
	log      zerolog.Logger
	observer Observer
	pvalue   []pvalue.Option
}

// Option mutates Options.
type Option func(*Options)

// WithScheme selects the attribution scheme. Panics on an unknown scheme.
func WithScheme(s sscp.Scheme) Option {
	if _, err := s.MarshalText(); err != nil {
		panic("mlm: WithScheme: " + err.Error())
	}

	return func(o *Options) { o.scheme = s }
}

// WithK keeps only the k leading principal coordinates. For raw input the
// default is the number of response columns; for distance input all
// coordinates are computed. Panics if k < 1.
func WithK(k int) Option {
	if k < 1 {
		panic("mlm: WithK requires k ≥ 1")
	}

	return func(o *Options) { o.k = k }
}

// WithTolerance sets the relative eigenvalue tolerance of the projection.
// Panics outside [0, 1).
func WithTolerance(tol float64) Option {
	gower.WithTolerance(tol)

	return func(o *Options) { o.tol = tol }
}

// WithSubset restricts the analysis to the given rows, in that order.
func WithSubset(rows []int) Option {
	rows = append([]int(nil), rows...)

	return func(o *Options) { o.subset = rows }
}

// WithWorkers bounds the per-term goroutines. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("mlm: WithWorkers requires n ≥ 1")
	}

	return func(o *Options) { o.workers = n }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.log = l }
}

// WithObserver registers an Observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithPValueOptions forwards options to pvalue.Asymptotic.
func WithPValueOptions(opts ...pvalue.Option) Option {
	return func(o *Options) { o.pvalue = append(o.pvalue, opts...) }
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		scheme:   DefaultScheme,
		tol:      gower.DefaultTolerance,
		workers:  runtime.GOMAXPROCS(0),
		log:      zerolog.Nop(),
		observer: nopObserver{},
	}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
