// Package statistic reduces hypothesis SSCP matrices to the scalar
// quantities reported per term, and derives the weights of the asymptotic
// null distribution.
//
// For term t with hypothesis SSCP H_t, error SSCP E and total SSCP T:
//
//	SS_t = tr(H_t)
//	F̃_t  = tr(H_t) / tr(E)      (not divided by degrees of freedom)
//	R²_t = tr(H_t) / tr(T)
//
// The un-normalized ratio F̃ is what the p-value engine consumes; Stat.F
// rescales it by df_e/Df for display only.
//
// ResidualEigenvalues returns the eigenvalues λ of (n−1)·cov(R)/df_e, the
// weights of the quadratic form whose tail gives the p-value.
package statistic
