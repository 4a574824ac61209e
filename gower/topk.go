// SPDX-License-Identifier: MIT

package gower

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// subspaceSeed fixes the start block so that repeated projections of the
// same matrix are bit-for-bit reproducible.
const (
	subspaceSeed1 = 0x6d6c6d74
	subspaceSeed2 = 0x676f7765
)

// leadingEigen computes the k algebraically largest eigenpairs of the
// positive-semidefinite-up-to-round-off matrix G by block subspace iteration.
//
// Implementation:
//   - Stage 1 (Prepare): b = k + oversample orthonormal start vectors from a
//     fixed-seed generator.
//   - Stage 2 (Iterate): Z = G·Q; Q = orth(Z); Rayleigh–Ritz on T = QᵀGQ;
//     replace Q by the Ritz vectors.
//   - Stage 3 (Check): stop once every one of the k leading Ritz pairs has
//     ‖G·u − θ·u‖ ≤ DefaultRitzTolerance·|θ₁|.
//
// Returns ok=false when the budget runs out; the caller then falls back to
// the full decomposition. For Gower matrices of n×k Euclidean data the rank
// is ≤ k, so the first Rayleigh–Ritz step is already exact.
//
// Complexity: O(iter·n²·b) time, O(n·b) memory.
func leadingEigen(G *mat.SymDense, k, oversample, maxIter int) ([]float64, *mat.Dense, bool) {
	n := G.SymmetricDim()
	b := k + oversample
	if b > n {
		b = n
	}

	// Stage 1: deterministic start block.
	rng := rand.New(rand.NewPCG(subspaceSeed1, subspaceSeed2))
	start := make([]float64, n*b)
	for i := range start {
		start[i] = rng.NormFloat64()
	}
	Q := orthonormalize(mat.NewDense(n, b, start))

	var (
		Z, GU, T mat.Dense
		U        *mat.Dense
		values   []float64
	)
	for iter := 0; iter < maxIter; iter++ {
		// Stage 2: power step + re-orthonormalization.
		Z.Mul(G, Q)
		Q = orthonormalize(&Z)

		// Rayleigh–Ritz on the current subspace.
		T.Mul(Q.T(), G)
		var QtGQ mat.Dense
		QtGQ.Mul(&T, Q)
		small := symmetrize(&QtGQ)
		var es mat.EigenSym
		if ok := es.Factorize(small, true); !ok {
			return nil, nil, false
		}
		var S mat.Dense
		es.VectorsTo(&S)
		var sortedS *mat.Dense
		values, sortedS = sortDescending(es.Values(nil), &S)
		U = mat.NewDense(n, b, nil)
		U.Mul(Q, sortedS)

		// Stage 3: residual test on the leading k pairs.
		GU.Mul(G, U)
		if ritzConverged(&GU, U, values, k) {
			return values[:k], mat.DenseCopyOf(U.Slice(0, n, 0, k)), true
		}
		Q = U
	}

	return nil, nil, false
}

// ritzConverged reports whether the first k Ritz pairs have small residuals.
func ritzConverged(GU, U *mat.Dense, values []float64, k int) bool {
	n, _ := U.Dims()
	scale := math.Abs(values[0])
	if scale == 0 {
		return true
	}
	limit := DefaultRitzTolerance * scale
	for j := 0; j < k; j++ {
		var ss float64
		for i := 0; i < n; i++ {
			r := GU.At(i, j) - values[j]*U.At(i, j)
			ss += r * r
		}
		if math.Sqrt(ss) > limit {
			return false
		}
	}

	return true
}

// orthonormalize returns an n×b matrix with orthonormal columns spanning at
// least the column space of Z, from a Householder QR factorization.
func orthonormalize(Z mat.Matrix) *mat.Dense {
	n, b := Z.Dims()
	var qr mat.QR
	qr.Factorize(Z)
	var full mat.Dense
	qr.QTo(&full)

	return mat.DenseCopyOf(full.Slice(0, n, 0, b))
}

// symmetrize returns (A + Aᵀ)/2 as a SymDense to absorb round-off drift.
func symmetrize(A *mat.Dense) *mat.SymDense {
	n, _ := A.Dims()
	S := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			S.SetSym(i, j, 0.5*(A.At(i, j)+A.At(j, i)))
		}
	}

	return S
}
