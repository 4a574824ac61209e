// Package gower turns a dissimilarity matrix into a Euclidean point
// configuration (classical scaling / principal coordinates).
//
// 🚀 What happens in Project?
//
//	D (n×n) ──square──► A = D∘D
//	        ──double-center──► G = −½·J·A·J,  J = I − (1/n)·11ᵀ
//	        ──eigen──► G = V·diag(λ)·Vᵀ
//	        ──filter──► keep |λᵢ/λ₁| > tol, require all kept λᵢ > 0
//	        ──scale──► Y = V·diag(√λ)
//
// Y reproduces the input distances exactly (Gower's theorem) whenever D is
// Euclidean-embeddable, and its columns are centered.
//
// ✨ Diagnostics:
//
//   - NonPositiveLeadingEigenvalue – nothing to project (e.g. all distances 0)
//   - NegativeEigenvalue           – D is not Euclidean (e.g. Bray–Curtis)
//   - DegenerateRank               – fewer than two usable dimensions
//
// All three are reported as *ProjectionError and match ErrProjection via
// errors.Is. Shape and value problems of D itself (non-square, asymmetric,
// negative entries, NaN) are plain sentinel errors.
//
// ⚙️ Top-k mode:
//
// When the original dimensionality p of the response is known (the distance
// was computed from an n×p matrix), WithK(p) asks only for the p leading
// eigenpairs. They are found by block subspace iteration with a
// Rayleigh–Ritz step; if that does not settle within the iteration budget
// the full decomposition is used instead, so the result is always the
// full decomposition restricted to its top-k components.
//
// Complexity: O(n³) for the full decomposition, O(iter·n²·(k+s)) for top-k.
package gower
