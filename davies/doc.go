// Package davies evaluates the distribution function of a linear
// combination of independent chi-squared variables,
//
//	Q = Σ λⱼ·χ²(nⱼ, δⱼ) + σ·X,  X ~ N(0, 1),
//
// by numerical inversion of its characteristic function (Davies, 1980,
// algorithm AS 155).
//
// The weights λⱼ may have either sign, so Q may be an indefinite quadratic
// form. The algorithm bounds its own error: it picks a truncation point and
// integration interval so that the total error stays below the requested
// accuracy, optionally adding a convergence factor, and gives up with a
// Fault when the term budget is exhausted.
//
// CDF is pure and safe for concurrent use.
package davies
