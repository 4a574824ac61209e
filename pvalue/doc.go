// Package pvalue computes asymptotic p-values for the pseudo-F statistic.
//
// Under the null hypothesis F̃ = tr(H)/tr(E) behaves like a ratio of
// quadratic forms in the residual eigenvalues λ, so
//
//	P(F̃ ≥ f) = P(Q ≥ 0),  Q = Σⱼ λⱼ·χ²(df_i) − f·Σⱼ λⱼ·χ²(df_e),
//
// which is evaluated with Davies' method (package davies) at c = 0.
//
// Asymptotic starts at a very fine accuracy and coarsens it tenfold each
// time the integration faults or lands outside [0, 1]. The returned p is
// never below the accuracy finally achieved, and that accuracy is always
// reported so callers can print "p < acc" instead of a spurious value.
package pvalue
