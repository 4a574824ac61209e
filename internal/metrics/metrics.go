// SPDX-License-Identifier: MIT

// Package metrics records analysis outcomes as Prometheus metrics. A
// *Recorder satisfies mlm.Observer.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/pvalue"
)

// Outcome labels of AnalysesTotal.
const (
	OutcomeOK         = "ok"
	OutcomeProjection = "projection_error"
	OutcomeError      = "error"
)

// Recorder holds every mlmtest metric.
type Recorder struct {
	// AnalysesTotal counts finished analyses by outcome.
	AnalysesTotal *prometheus.CounterVec

	// EscalationSteps observes the tenfold accuracy steps per p-value.
	EscalationSteps prometheus.Histogram

	// ProjectionDim observes the retained dimension per projection.
	ProjectionDim *prometheus.HistogramVec

	// ConvergenceFailures counts p-values that never converged.
	ConvergenceFailures prometheus.Counter
}

// NewRecorder creates the metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mlmtest_analyses_total",
				Help: "Total number of analyses by outcome",
			},
			[]string{"outcome"},
		),
		EscalationSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mlmtest_pvalue_escalation_steps",
				Help:    "Tenfold accuracy escalations needed per p-value",
				Buckets: prometheus.LinearBuckets(0, 1, 15),
			},
		),
		ProjectionDim: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mlmtest_projection_dimensions",
				Help:    "Principal coordinates retained per projection",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"partial"},
		),
		ConvergenceFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mlmtest_pvalue_convergence_failures_total",
				Help: "Total number of p-values that did not converge",
			},
		),
	}
	for _, c := range []prometheus.Collector{r.AnalysesTotal, r.EscalationSteps, r.ProjectionDim, r.ConvergenceFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// ObserveProjection implements mlm.Observer.
func (r *Recorder) ObserveProjection(dim int, partial bool) {
	label := "false"
	if partial {
		label = "true"
	}
	r.ProjectionDim.WithLabelValues(label).Observe(float64(dim))
}

// ObservePValue implements mlm.Observer.
func (r *Recorder) ObservePValue(_ string, res pvalue.Result, err error) {
	var ce *pvalue.ConvergenceError
	switch {
	case errors.As(err, &ce):
		r.ConvergenceFailures.Inc()
		r.EscalationSteps.Observe(float64(ce.Steps))
	case err == nil:
		r.EscalationSteps.Observe(float64(res.Steps))
	}
}

// ObserveAnalysis implements mlm.Observer.
func (r *Recorder) ObserveAnalysis(err error) {
	outcome := OutcomeOK
	switch {
	case errors.Is(err, gower.ErrProjection):
		outcome = OutcomeProjection
	case err != nil:
		outcome = OutcomeError
	}
	r.AnalysesTotal.WithLabelValues(outcome).Inc()
}
