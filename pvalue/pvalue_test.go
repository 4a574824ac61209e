// SPDX-License-Identifier: MIT

package pvalue_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/mlmtest/davies"
	"github.com/katalvlaran/mlmtest/pvalue"
)

// With one weight and df 2 on both sides, Q ≥ 0 ⇔ E₁/E₂ ≥ f for
// independent exponentials, so p = 1/(1+f).
func TestAsymptotic_ExponentialRatio(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{0.5, 1, 3} {
		res, err := pvalue.Asymptotic(f, []float64{1}, 2, 2)
		require.NoError(t, err, "f=%v", f)
		assert.InDelta(t, 1/(1+f), res.P, 10*res.Accuracy, "f=%v", f)
		assert.GreaterOrEqual(t, res.P, res.Accuracy)
		assert.GreaterOrEqual(t, res.Accuracy, pvalue.DefaultInitialAccuracy)
	}
}

// Equal weights collapse Q to a scaled F: χ²(3)/χ²(24) ≥ f ⇔ F(3, 24) ≥ 8f.
func TestAsymptotic_EqualWeightsMatchF(t *testing.T) {
	t.Parallel()

	dist := distuv.F{D1: 3, D2: 24}
	for _, f := range []float64{0.2, 0.5, 1, 2} {
		res, err := pvalue.Asymptotic(f, []float64{1.5, 1.5, 1.5}, 1, 8)
		require.NoError(t, err)
		assert.InDelta(t, dist.Survival(8*f), res.P, 1e-7, "f=%v", f)
		assert.False(t, res.Floored)
	}
}

func TestAsymptotic_MonotoneInF(t *testing.T) {
	t.Parallel()

	lambda := []float64{2.0, 0.7, 0.1}
	prev := pvalue.Result{P: 1, Accuracy: 0}
	for _, f := range []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2} {
		res, err := pvalue.Asymptotic(f, lambda, 1, 8)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.P, prev.P+math.Max(res.Accuracy, prev.Accuracy), "f=%v", f)
		prev = res
	}
}

func TestAsymptotic_AccuracyFloor(t *testing.T) {
	t.Parallel()

	res, err := pvalue.Asymptotic(50, []float64{1, 1, 1}, 1, 8)
	require.NoError(t, err)
	assert.True(t, res.Floored)
	assert.Equal(t, res.Accuracy, res.P)

	for _, f := range []float64{0.3, 5, 20} {
		res, err = pvalue.Asymptotic(f, []float64{1, 1, 1}, 1, 8)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.P, res.Accuracy, "f=%v", f)
	}
}

func TestAsymptotic_DropsNonPositiveWeights(t *testing.T) {
	t.Parallel()

	want, err := pvalue.Asymptotic(1.2, []float64{1, 0.4}, 2, 6)
	require.NoError(t, err)
	got, err := pvalue.Asymptotic(1.2, []float64{1, 0, 0.4, -1e-17}, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAsymptotic_ZeroStatistic(t *testing.T) {
	t.Parallel()

	res, err := pvalue.Asymptotic(0, []float64{1}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.P)
}

func TestAsymptotic_ConvergenceError(t *testing.T) {
	t.Parallel()

	_, err := pvalue.Asymptotic(1, []float64{1, 0.5}, 2, 2,
		pvalue.WithLimit(1), pvalue.WithMaxSteps(2), pvalue.WithTerm("site"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pvalue.ErrConvergence))

	var ce *pvalue.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "site", ce.Term)
	assert.Equal(t, 2, ce.Steps)
	assert.InEpsilon(t, 1e-12, ce.LastAccuracy, 1e-9)
	assert.Equal(t, davies.FaultIntegration, ce.Fault)
	assert.Equal(t, []float64{1, 0.5}, ce.Lambda)
	assert.Contains(t, err.Error(), `"site"`)
}

func TestAsymptotic_InvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		f      float64
		lambda []float64
		dfi    int
		dfe    int
	}{
		{"nan f", math.NaN(), []float64{1}, 1, 1},
		{"negative f", -1, []float64{1}, 1, 1},
		{"inf f", math.Inf(1), []float64{1}, 1, 1},
		{"dfi", 1, []float64{1}, 0, 1},
		{"dfe", 1, []float64{1}, 1, 0},
		{"no weights", 1, []float64{0, -1}, 1, 1},
		{"nan weight", 1, []float64{math.NaN()}, 1, 1},
	}
	for _, tc := range cases {
		_, err := pvalue.Asymptotic(tc.f, tc.lambda, tc.dfi, tc.dfe)
		assert.ErrorIs(t, err, pvalue.ErrInvalidInput, tc.name)
	}
}

func TestTerms(t *testing.T) {
	t.Parallel()

	got := pvalue.Terms(2, []float64{3, 1}, 1, 5)
	want := []davies.Term{
		{Weight: 3, DF: 1}, {Weight: 1, DF: 1},
		{Weight: -6, DF: 5}, {Weight: -2, DF: 5},
	}
	assert.Equal(t, want, got)
}

func TestOptions_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { pvalue.WithInitialAccuracy(0) })
	assert.Panics(t, func() { pvalue.WithLimit(0) })
	assert.Panics(t, func() { pvalue.WithMaxSteps(-1) })
}
