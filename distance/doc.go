// Package distance builds dissimilarity matrices from raw multivariate
// responses.
//
// What is in here?
//
//	Compute(X, method)  – n×p observations → n×n symmetric distance matrix
//	Apply(X, transform) – element-wise pre-transform of the raw response
//
// Supported methods:
//
//   - Euclidean – d(i,j) = ‖xᵢ − xⱼ‖₂
//   - Hellinger – Euclidean distance on element-wise square roots, so
//     d(i,j) = ‖√xᵢ − √xⱼ‖₂. Inputs must be non-negative.
//
// Both methods are Euclidean-embeddable, so the Gower projection of their
// output never reports negative eigenvalues beyond round-off, and the
// original dimensionality p of X bounds the rank of the configuration. The
// analysis driver exploits this by requesting only the top-p eigenpairs.
//
// Complexity: O(n²·p) time, O(n²) memory for the result.
package distance
