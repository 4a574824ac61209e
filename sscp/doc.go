// Package sscp decomposes the explained variation of a multivariate linear
// model into one sums-of-squares-and-cross-products (SSCP) matrix per term,
// plus the error SSCP of the full model.
//
// Three attribution schemes are supported:
//
//   - Sequential (type I): each term is credited with what it adds to the
//     terms declared before it. Computed from the QR effects of the fit;
//     term SSCPs and the error SSCP add up to the total SSCP.
//   - Hierarchical (type II): each term is adjusted for every term that does
//     not contain it, ignoring its higher-order relatives.
//   - Marginal (type III): each term is adjusted for every other term,
//     intercept included. The result depends on the contrast coding, so
//     treatment-coded unordered factors raise a non-fatal Warning.
//
// Types II and III use the linear hypothesis form
//
//	H = (L·B)ᵀ · (L·(XᵀX)⁻¹·Lᵀ)⁻¹ · (L·B)
//
// with L selecting (type III) or conjugately complementing (type II) the
// coefficient rows of the term.
//
// Hypothesis computes one term and is safe for concurrent use on a shared
// *model.Fit; Decompose runs every term sequentially.
package sscp
