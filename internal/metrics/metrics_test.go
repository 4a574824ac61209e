// SPDX-License-Identifier: MIT

package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/internal/metrics"
	"github.com/katalvlaran/mlmtest/mlm"
	"github.com/katalvlaran/mlmtest/model"
	"github.com/katalvlaran/mlmtest/pvalue"
)

var _ mlm.Observer = (*metrics.Recorder)(nil)

func TestRecorder_Outcomes(t *testing.T) {
	t.Parallel()

	r, err := metrics.NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	r.ObserveAnalysis(nil)
	r.ObserveAnalysis(&gower.ProjectionError{Kind: gower.NegativeEigenvalue})
	r.ObserveAnalysis(errors.New("boom"))
	r.ObserveAnalysis(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(metrics.OutcomeProjection)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(metrics.OutcomeError)))

	r.ObservePValue("a", pvalue.Result{Steps: 2}, nil)
	r.ObservePValue("b", pvalue.Result{}, &pvalue.ConvergenceError{Steps: 14})
	r.ObservePValue("c", pvalue.Result{}, pvalue.ErrInvalidInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConvergenceFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(r.EscalationSteps))

	r.ObserveProjection(3, true)
	r.ObserveProjection(5, false)
	assert.Equal(t, 2, testutil.CollectAndCount(r.ProjectionDim))
}

func TestRecorder_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	_, err = metrics.NewRecorder(reg)
	assert.Error(t, err)
}

func TestRecorder_WithAnalyze(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	X := mat.NewDense(6, 2, []float64{0, 0.1, 0.2, 0, 0.1, 0.3, 3, 3.1, 2.8, 3.2, 3.1, 2.9})
	g := model.NewFactor("g", []string{"a", "a", "a", "b", "b", "b"}, model.Sum)
	d, err := model.NewDesign([]model.Variable{g})
	require.NoError(t, err)

	_, err = mlm.Analyze(context.Background(), mlm.Raw(X, distance.Euclidean), d, mlm.WithObserver(r))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.AnalysesTotal.WithLabelValues(metrics.OutcomeOK)))
	n, err := testutil.GatherAndCount(reg, "mlmtest_projection_dimensions")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
