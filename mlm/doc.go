// Package mlm runs the complete asymptotic test of a multivariate linear
// model on a dissimilarity structure.
//
// Analyze wires the stages together:
//
//	response ──► distance (raw input only) ──► gower.Project
//	         ──► model.OLS ──► statistic.ResidualEigenvalues
//	         ──► per term: sscp.Hypothesis ─► statistic.TermStatistic ─► pvalue.Asymptotic
//
// Projection and the fit are sequential; the per-term stage is an
// embarrassingly parallel map run on an errgroup with a bounded number of
// workers. A term whose p-value does not converge keeps its row with the
// error attached; every other failure aborts the analysis.
package mlm
