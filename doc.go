// Package mlmtest is an asymptotic, distance-based multivariate analysis of
// variance: the variation of a multivariate response (or of any Euclidean
// dissimilarity matrix) is partitioned among the terms of a linear model,
// and every term gets a pseudo-F statistic, an R² and an asymptotic p-value
// without permutations.
//
// 🚀 What is inside?
//
//   - distance/  — Euclidean and Hellinger distances, sqrt/log1p pre-transforms
//   - gower/     — Gower centering and principal-coordinate projection (full or top-k)
//   - model/     — factors, contrasts, interactions, design matrices, OLS fit
//   - sscp/      — type I, II and III hypothesis SSCP matrices
//   - statistic/ — traces, pseudo-F, R², residual covariance eigenvalues
//   - davies/    — Davies' algorithm for weighted sums of chi-square variables
//   - pvalue/    — the adaptive-accuracy asymptotic p-value
//   - mlm/       — Analyze: the whole pipeline, one Table per call
//   - config/, server/, cmd/mlmtest — YAML/env configuration, HTTP API, CLI
//
// Quick example:
//
//	design, _ := model.NewDesign([]model.Variable{
//		model.NewFactor("site", sites, model.Sum),
//	})
//	tbl, err := mlm.Analyze(ctx, mlm.Raw(X, distance.Hellinger), design)
//	tbl.WriteText(os.Stdout)
//
// The p-value of a term is P(F̃ > f) where F̃ is the ratio of two weighted
// sums of chi-square variables sharing the residual covariance eigenvalues
// as weights; it is reported together with the accuracy it was computed at.
//
//	go get github.com/katalvlaran/mlmtest
package mlmtest
