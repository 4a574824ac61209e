// SPDX-License-Identifier: MIT

package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/model"
)

func TestContrast_Matrices(t *testing.T) {
	t.Parallel()

	cases := []struct {
		c    model.Contrast
		want []float64
	}{
		{model.Treatment, []float64{0, 0, 1, 0, 0, 1}},
		{model.Sum, []float64{1, 0, 0, 1, -1, -1}},
		{model.Helmert, []float64{-1, -1, 1, -1, 0, 2}},
		{model.Poly, []float64{
			-1 / math.Sqrt2, 1 / math.Sqrt(6),
			0, -2 / math.Sqrt(6),
			1 / math.Sqrt2, 1 / math.Sqrt(6),
		}},
	}
	for _, tc := range cases {
		got := tc.c.Matrix(3)
		assert.True(t, mat.EqualApprox(got, mat.NewDense(3, 2, tc.want), 1e-12), tc.c.String())
	}
}

func TestContrast_OrthogonalCodingsSumToZero(t *testing.T) {
	t.Parallel()

	for _, c := range []model.Contrast{model.Sum, model.Helmert, model.Poly} {
		require.True(t, c.Orthogonal())
		C := c.Matrix(5)
		for j := 0; j < 4; j++ {
			assert.InDelta(t, 0.0, mat.Sum(C.ColView(j)), 1e-12, "%s column %d", c, j)
		}
	}
	assert.False(t, model.Treatment.Orthogonal())
}

func TestParseContrast(t *testing.T) {
	t.Parallel()

	c, err := model.ParseContrast(" Deviation ")
	require.NoError(t, err)
	assert.Equal(t, model.Sum, c)

	_, err = model.ParseContrast("sas")
	assert.ErrorIs(t, err, model.ErrUnknownContrast)
}

func TestNewFactor_SortsLevels(t *testing.T) {
	t.Parallel()

	v := model.NewFactor("g", []string{"b", "a", "c", "a"}, model.Treatment)
	assert.Equal(t, []string{"a", "b", "c"}, v.Levels)
	assert.Equal(t, []int{1, 0, 2, 0}, v.Codes)
	assert.True(t, v.IsFactor())
	assert.Equal(t, 4, v.Len())
}

func TestNewOrdered_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := model.NewOrdered("dose", []string{"lo", "mid"}, []string{"lo", "hi"})
	assert.ErrorIs(t, err, model.ErrUnknownLevel)

	v, err := model.NewOrdered("dose", []string{"hi", "lo"}, []string{"lo", "hi"})
	require.NoError(t, err)
	assert.Equal(t, model.Poly, v.Contrast)
	assert.Equal(t, []int{1, 0}, v.Codes)
}

func TestNewNumeric_RejectsNaN(t *testing.T) {
	t.Parallel()

	_, err := model.NewNumeric("x", []float64{1, math.NaN()})
	assert.ErrorIs(t, err, model.ErrNaNInf)
}

func twoWay(t *testing.T) *model.Design {
	t.Helper()

	a := model.NewFactor("a", []string{"x", "x", "x", "y", "y", "y", "x", "y"}, model.Treatment)
	b := model.NewFactor("b", []string{"p", "q", "r", "p", "q", "r", "p", "r"}, model.Treatment)
	d, err := model.NewDesign([]model.Variable{a, b}, "a", "b", "a:b")
	require.NoError(t, err)

	return d
}

func TestNewDesign_Interaction(t *testing.T) {
	t.Parallel()

	d := twoWay(t)
	assert.Equal(t, 8, d.N())
	assert.Equal(t, 6, d.P())
	assert.Equal(t, []int{0, 1, 2, 2, 3, 3}, d.Assign)
	assert.Equal(t, []string{"(Intercept)", "ay", "bq", "br", "ay:bq", "ay:br"}, d.Columns)
	assert.Equal(t, []int{2, 3}, d.TermColumns(2))
	assert.Equal(t, []int{3}, d.Relatives(1))
	assert.Equal(t, []int{3}, d.Relatives(2))
	assert.Empty(t, d.Relatives(3))
	assert.Equal(t, "a:b", d.TermName(3))
	assert.Equal(t, model.InterceptName, d.TermName(0))

	// Row 3 is (y, p): only the intercept and "ay" are set.
	assert.Equal(t, []float64{1, 1, 0, 0, 0, 0}, mat.Row(nil, 3, d.X))
	// Row 4 is (y, q).
	assert.Equal(t, []float64{1, 1, 1, 0, 1, 0}, mat.Row(nil, 4, d.X))
}

func TestNewDesign_DefaultTermsAreMainEffects(t *testing.T) {
	t.Parallel()

	x, err := model.NewNumeric("x", []float64{1, 2, 3})
	require.NoError(t, err)
	g := model.NewFactor("g", []string{"a", "b", "a"}, model.Sum)
	d, err := model.NewDesign([]model.Variable{x, g})
	require.NoError(t, err)
	require.Len(t, d.Terms, 2)
	assert.Equal(t, []string{"(Intercept)", "x", "g1"}, d.Columns)
	assert.Equal(t, []float64{1, -1, 1}, mat.Col(nil, 2, d.X))
}

func TestNewDesign_Errors(t *testing.T) {
	t.Parallel()

	a := model.NewFactor("a", []string{"x", "y", "x"}, model.Treatment)
	b := model.NewFactor("b", []string{"p", "q", "q"}, model.Treatment)
	short := model.NewFactor("s", []string{"p", "q"}, model.Treatment)
	one := model.NewFactor("o", []string{"p", "p", "p"}, model.Treatment)

	cases := []struct {
		name  string
		vars  []model.Variable
		terms []string
		want  error
	}{
		{"no variables", nil, nil, model.ErrNoTerms},
		{"length", []model.Variable{a, short}, nil, model.ErrLengthMismatch},
		{"duplicate variable", []model.Variable{a, a}, nil, model.ErrDuplicateVariable},
		{"unknown", []model.Variable{a}, []string{"a", "z"}, model.ErrUnknownVariable},
		{"empty part", []model.Variable{a, b}, []string{"a:"}, model.ErrUnknownVariable},
		{"duplicate term", []model.Variable{a, b}, []string{"a:b", "b:a"}, model.ErrDuplicateTerm},
		{"single level", []model.Variable{a, one}, nil, model.ErrSingleLevel},
	}
	for _, tc := range cases {
		_, err := model.NewDesign(tc.vars, tc.terms...)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
}

func TestDesign_Subset(t *testing.T) {
	t.Parallel()

	d := twoWay(t)

	// Dropping every "r" row drops the level and its columns.
	sub, err := d.Subset([]int{0, 1, 3, 4, 6})
	require.NoError(t, err)
	assert.Equal(t, []string{"(Intercept)", "ay", "bq", "ay:bq"}, sub.Columns)
	b, ok := sub.Variable("b")
	require.True(t, ok)
	assert.Equal(t, []string{"p", "q"}, b.Levels)

	// A permutation permutes the rows of X.
	perm := []int{7, 6, 5, 4, 3, 2, 1, 0}
	rev, err := d.Subset(perm)
	require.NoError(t, err)
	for i, r := range perm {
		assert.Equal(t, mat.Row(nil, r, d.X), mat.Row(nil, i, rev.X))
	}

	_, err = d.Subset([]int{0, 8})
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
	_, err = d.Subset(nil)
	assert.ErrorIs(t, err, model.ErrNoObservations)
}

func line(t *testing.T) *model.Design {
	t.Helper()

	x, err := model.NewNumeric("x", []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	d, err := model.NewDesign([]model.Variable{x})
	require.NoError(t, err)

	return d
}

func TestOLS_ExactLine(t *testing.T) {
	t.Parallel()

	d := line(t)
	Y := mat.NewDense(6, 2, nil)
	for i := 0; i < 6; i++ {
		Y.Set(i, 0, 1+2*float64(i))
		Y.Set(i, 1, 3-0.5*float64(i))
	}
	fit, err := model.OLS(d, Y)
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{1, 3, 2, -0.5})
	assert.True(t, mat.EqualApprox(fit.Coefficients, want, 1e-10))
	assert.InDelta(t, 0.0, mat.Norm(fit.Residuals, 2), 1e-10)
	assert.Equal(t, 4, fit.DfResidual)
	assert.Equal(t, 2, fit.Responses())
}

func TestOLS_Decomposition(t *testing.T) {
	t.Parallel()

	d := twoWay(t)
	Y := mat.NewDense(8, 2, []float64{
		1.0, 0.3,
		2.1, -0.4,
		0.7, 1.2,
		3.3, 0.9,
		-0.2, 0.5,
		1.9, -1.1,
		0.4, 0.8,
		2.6, 0.1,
	})
	fit, err := model.OLS(d, Y)
	require.NoError(t, err)
	require.Equal(t, 2, fit.DfResidual)

	// (XᵀX)⁻¹·XᵀX = I.
	var xtx, prod mat.Dense
	xtx.Mul(d.X.T(), d.X)
	prod.Mul(fit.XtXInv, &xtx)
	eye := mat.NewDiagDense(6, []float64{1, 1, 1, 1, 1, 1})
	assert.True(t, mat.EqualApprox(&prod, eye, 1e-9))

	// Residuals are orthogonal to the design.
	var xr mat.Dense
	xr.Mul(d.X.T(), fit.Residuals)
	assert.InDelta(t, 0.0, mat.Norm(&xr, 2), 1e-9)

	// Effect rows past p carry exactly the residual SSCP.
	tail := fit.Effects.Slice(6, 8, 0, 2)
	var fromEffects mat.Dense
	fromEffects.Mul(tail.T(), tail)
	assert.True(t, mat.EqualApprox(&fromEffects, fit.ResidualSSCP(), 1e-9))

	// Total = fitted-about-mean + residual, via effects rows 1..p−1.
	head := fit.Effects.Slice(1, 6, 0, 2)
	var explained, total mat.Dense
	explained.Mul(head.T(), head)
	total.Add(&explained, fit.ResidualSSCP())
	assert.True(t, mat.EqualApprox(&total, fit.TotalSSCP(), 1e-9))
}

func TestOLS_Errors(t *testing.T) {
	t.Parallel()

	d := line(t)
	_, err := model.OLS(d, mat.NewDense(5, 1, nil))
	assert.ErrorIs(t, err, model.ErrDimensionMismatch)

	Y := mat.NewDense(6, 1, nil)
	Y.Set(2, 0, math.Inf(1))
	_, err = model.OLS(d, Y)
	assert.ErrorIs(t, err, model.ErrNaNInf)

	x, _ := model.NewNumeric("x", []float64{0, 1, 2, 3, 4, 5})
	x2, _ := model.NewNumeric("x2", []float64{0, 2, 4, 6, 8, 10})
	collinear, err := model.NewDesign([]model.Variable{x, x2})
	require.NoError(t, err)
	_, err = model.OLS(collinear, mat.NewDense(6, 1, []float64{1, 2, 1, 2, 1, 3}))
	assert.ErrorIs(t, err, model.ErrRankDeficient)

	g := model.NewFactor("g", []string{"a", "b"}, model.Treatment)
	tiny, err := model.NewDesign([]model.Variable{g})
	require.NoError(t, err)
	_, err = model.OLS(tiny, mat.NewDense(2, 1, []float64{1, 2}))
	assert.ErrorIs(t, err, model.ErrNoResidualDf)
}

func TestSpec_Build(t *testing.T) {
	t.Parallel()

	table := map[string][]string{
		"site": {"n", "s", "n", "s", "n"},
		"temp": {"1.5", "2", "2.5", "3", "4"},
		"dose": {"lo", "hi", "mid", "lo", "hi"},
	}
	spec := model.Spec{
		Variables: []model.VariableSpec{
			{Name: "site", Type: "factor", Contrast: "sum"},
			{Name: "t", Column: "temp", Type: "numeric"},
			{Name: "dose", Type: "ordered", Levels: []string{"lo", "mid", "hi"}},
		},
		Terms: []string{"site", "t", "dose"},
	}
	d, err := spec.Build(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"(Intercept)", "site1", "t", "dose.^1", "dose.^2"}, d.Columns)
	assert.Equal(t, []float64{1.5, 2, 2.5, 3, 4}, mat.Col(nil, 2, d.X))

	spec.Variables[1].Column = "missing"
	_, err = spec.Build(table)
	assert.ErrorIs(t, err, model.ErrUnknownVariable)

	table["bad"] = []string{"1", "x", "2", "3", "4"}
	spec.Variables[1].Column = "bad"
	_, err = spec.Build(table)
	assert.ErrorIs(t, err, model.ErrBadNumber)

	spec.Variables[1] = model.VariableSpec{Name: "t", Column: "temp", Type: "interval"}
	_, err = spec.Build(table)
	assert.ErrorIs(t, err, model.ErrUnknownKind)
}

func TestSpec_BuildMissing(t *testing.T) {
	t.Parallel()

	table := map[string][]string{
		"site": {"n", "NA", "s", "n", "s", "n", "s"},
		"temp": {"1", "2", "", "4", "5", "6", "7"},
		"note": {"", "", "", "", "", "", ""},
	}
	spec := model.Spec{
		Variables: []model.VariableSpec{
			{Name: "site", Type: "factor"},
			{Name: "temp", Type: "numeric"},
			{Name: "note", Type: "factor"},
		},
		Terms: []string{"site", "temp"},
	}
	d, err := spec.Build(table)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, d.Missing())

	site, ok := d.Variable("site")
	require.True(t, ok)
	assert.Equal(t, []string{"n", "s"}, site.Levels)
	assert.Equal(t, []int{0, -1, 1, 0, 1, 0, 1}, site.Codes)
	assert.True(t, site.Missing(1))

	Y := mat.NewDense(7, 1, []float64{1, 2, 3, 4, 5, 6, 7})
	_, err = model.OLS(d, Y)
	assert.ErrorIs(t, err, model.ErrMissingValues)

	complete, err := d.Subset([]int{0, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Empty(t, complete.Missing())
	_, err = model.OLS(complete, mat.NewDense(5, 1, []float64{1, 4, 5, 6, 7}))
	require.NoError(t, err)

	assert.True(t, model.IsMissing(" na "))
	assert.False(t, model.IsMissing("nan"))
}
