// Package model is the linear-model side of the analysis: it turns named
// explanatory variables into a numeric design matrix and fits a
// multivariate least-squares model to a response configuration.
//
// Design construction follows the usual treatment of terms:
//
//   - an intercept column "(Intercept)" is always present (assign 0);
//   - numeric covariates contribute one column;
//   - factors contribute L−1 contrast columns (Treatment, Sum, Helmert or
//     Poly coding);
//   - an interaction "a:b" contributes the element-wise products of every
//     column of a with every column of b.
//
// Every column records the term it belongs to in Design.Assign, and
// Design.Relatives reports the higher-order terms containing a term, which
// is what hierarchical (type II) hypotheses need.
//
// OLS fits Y ≈ X·B by Householder QR and exposes exactly what the
// hypothesis machinery consumes: coefficients, residuals, QR effects
// (Qᵀ·Y, for sequential sums of squares), (XᵀX)⁻¹ and the residual degrees
// of freedom. Rank-deficient designs are rejected instead of being pivoted.
package model
