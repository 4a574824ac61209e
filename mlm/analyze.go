// SPDX-License-Identifier: MIT

package mlm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/model"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/sscp"
	"github.com/katalvlaran/mlmtest/statistic"
)

const opAnalyze = "Analyze"

// Analyze tests every term of design against the response.
//
// Implementation:
//   - Stage 1 (Subset): restrict response and design to WithSubset rows,
//     excluding rows with a missing design value or a NaN response.
//   - Stage 2 (Distances): raw input is transformed and turned into a
//     distance matrix; k defaults to its column count.
//   - Stage 3 (Project): gower.Project to a centered configuration Y.
//   - Stage 4 (Fit): model.OLS of Y on the design; residual eigenvalues λ.
//   - Stage 5 (Terms): per term, in parallel: hypothesis SSCP, statistics
//     and the asymptotic p-value.
//
// Errors: ErrNilInput, ErrNilDesign, ErrUnknownInput, ErrDimensionMismatch,
// plus wrapped errors of the stage packages. Projection errors match
// gower.ErrProjection. A *pvalue.ConvergenceError is never returned; it is
// attached to the row of its term.
func Analyze(ctx context.Context, in ResponseInput, design *model.Design, opts ...Option) (tbl *Table, err error) {
	o := gatherOptions(opts...)
	defer func() { o.observer.ObserveAnalysis(err) }()

	if in == nil {
		return nil, mlmErrorf(opAnalyze, ErrNilInput)
	}
	if design == nil {
		return nil, mlmErrorf(opAnalyze, ErrNilDesign)
	}
	log := o.log.With().Str("scheme", o.scheme.String()).Logger()

	// Stage 1: subset and drop incomplete observations.
	if in.Rows() != design.N() {
		return nil, fmt.Errorf("%s: response %d rows, design %d: %w", opAnalyze, in.Rows(), design.N(), ErrDimensionMismatch)
	}
	rows, dropped := completeRows(in, design, o.subset)
	if o.subset != nil || dropped > 0 {
		if design, err = design.Subset(rows); err != nil {
			return nil, mlmErrorf(opAnalyze, err)
		}
		if in, err = subsetInput(in, rows); err != nil {
			return nil, mlmErrorf(opAnalyze, err)
		}
	}
	if dropped > 0 {
		log.Info().Int("dropped", dropped).Int("n", design.N()).Msg("excluded incomplete observations")
	}

	// Stage 2: distances.
	D, k, err := resolve(in, o.k)
	if err != nil {
		return nil, mlmErrorf(opAnalyze, err)
	}

	// Stage 3: projection.
	gopts := []gower.Option{gower.WithTolerance(o.tol)}
	if k > 0 {
		gopts = append(gopts, gower.WithK(k))
	}
	cfg, err := gower.Project(D, gopts...)
	if err != nil {
		log.Error().Err(err).Msg("projection failed")
		return nil, mlmErrorf(opAnalyze, err)
	}
	o.observer.ObserveProjection(cfg.Dim(), cfg.Partial)
	log.Debug().Int("n", design.N()).Int("dim", cfg.Dim()).Bool("partial", cfg.Partial).Msg("projected")

	// Stage 4: fit.
	fit, err := model.OLS(design, cfg.Y)
	if err != nil {
		return nil, mlmErrorf(opAnalyze, err)
	}
	lambda, err := statistic.ResidualEigenvalues(fit.Residuals, fit.DfResidual)
	if err != nil {
		return nil, mlmErrorf(opAnalyze, err)
	}
	errSSCP, totalSSCP := fit.ResidualSSCP(), fit.TotalSSCP()
	ssE, ssT, err := statistic.Traces(&sscp.Decomposition{Error: errSSCP, Total: totalSSCP})
	if err != nil {
		return nil, mlmErrorf(opAnalyze, err)
	}
	log.Debug().Int("df_error", fit.DfResidual).Float64("ss_error", ssE).Floats64("lambda", lambda).Msg("fitted")

	warnings := sscp.Check(design, o.scheme)
	for _, w := range warnings {
		log.Warn().Str("term", w.Term).Str("variable", w.Variable).Msg(w.String())
	}

	// Stage 5: per-term map.
	termRows, err := analyzeTerms(ctx, fit, lambda, ssE, ssT, o, log)
	if err != nil {
		return nil, mlmErrorf(opAnalyze, err)
	}

	tbl = &Table{
		Scheme:  o.scheme,
		N:       design.N(),
		Dim:     cfg.Dim(),
		Partial: cfg.Partial,
		Dropped: dropped,
		Rows:    termRows,
		Residuals: Row{
			Term: "Residuals",
			Df:   fit.DfResidual,
			SS:   ssE,
			MS:   ssE / float64(fit.DfResidual),
		},
		SSTotal: ssT,
		Lambda:  lambda,
	}
	for _, w := range warnings {
		tbl.Warnings = append(tbl.Warnings, w.String())
	}
	log.Info().Int("terms", len(termRows)).Int("n", tbl.N).Msg("analysis complete")

	return tbl, nil
}

// analyzeTerms runs the per-term stage on a bounded errgroup. Each goroutine
// writes only its own slot of the result.
func analyzeTerms(ctx context.Context, fit *model.Fit, lambda []float64, ssE, ssT float64, o Options, log zerolog.Logger) ([]Row, error) {
	idx := sscp.Terms(fit.Design, o.scheme)
	rows := make([]Row, len(idx))
	dfe := fit.DfResidual

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, t := range idx {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			term, err := sscp.Hypothesis(fit, o.scheme, t)
			if err != nil {
				return err
			}
			st := statistic.TermStatistic(term, ssE, ssT)
			row := Row{
				Term:   st.Term,
				Df:     st.Df,
				SS:     st.SS,
				MS:     st.MS(),
				F:      st.F(dfe),
				Pseudo: st.Pseudo,
				R2:     st.R2,
			}

			popts := append([]pvalue.Option{pvalue.WithTerm(st.Term)}, o.pvalue...)
			res, err := pvalue.Asymptotic(st.Pseudo, lambda, st.Df, dfe, popts...)
			o.observer.ObservePValue(st.Term, res, err)
			var ce *pvalue.ConvergenceError
			switch {
			case errors.As(err, &ce):
				row.Accuracy = ce.LastAccuracy
				row.setErr(err)
				log.Warn().Err(err).Str("term", st.Term).Msg("p-value did not converge")
			case err != nil:
				return fmt.Errorf("term %q: %w", st.Term, err)
			default:
				row.P, row.Accuracy, row.Floored = res.P, res.Accuracy, res.Floored
			}
			rows[i] = row

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

// resolve turns the input into a dissimilarity matrix and the default k.
func resolve(in ResponseInput, k int) (mat.Matrix, int, error) {
	switch v := in.(type) {
	case DistanceInput:
		if v.D == nil {
			return nil, 0, ErrNilInput
		}
		return v.D, k, nil
	case RawInput:
		if v.X == nil {
			return nil, 0, ErrNilInput
		}
		X, err := distance.Apply(v.X, v.Transform)
		if err != nil {
			return nil, 0, err
		}
		D, err := distance.Compute(X, v.Method)
		if err != nil {
			return nil, 0, err
		}
		if k == 0 {
			_, k = X.Dims()
		}
		return D, k, nil
	}

	return nil, 0, ErrUnknownInput
}

// completeRows returns subset (all rows when nil) without the rows that are
// missing in the design or hold a NaN response, and how many were removed.
// Out-of-range indices are kept for subsetInput to reject.
func completeRows(in ResponseInput, design *model.Design, subset []int) ([]int, int) {
	skip := make(map[int]bool)
	for _, r := range design.Missing() {
		skip[r] = true
	}
	for _, r := range incomplete(in) {
		skip[r] = true
	}
	rows := subset
	if rows == nil {
		rows = make([]int, design.N())
		for i := range rows {
			rows[i] = i
		}
	}
	if len(skip) == 0 {
		return rows, 0
	}
	keep := make([]int, 0, len(rows))
	for _, r := range rows {
		if !skip[r] {
			keep = append(keep, r)
		}
	}

	return keep, len(rows) - len(keep)
}

func subsetInput(in ResponseInput, idx []int) (ResponseInput, error) {
	n := in.Rows()
	for _, r := range idx {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("row %d of %d: %w", r, n, model.ErrIndexOutOfRange)
		}
	}
	switch v := in.(type) {
	case DistanceInput:
		if v.D == nil {
			return nil, ErrNilInput
		}
		return Distance(subsetSquare(v.D, idx)), nil
	case RawInput:
		if v.X == nil {
			return nil, ErrNilInput
		}
		v.X = subsetRows(v.X, idx)
		return v, nil
	}

	return nil, ErrUnknownInput
}
