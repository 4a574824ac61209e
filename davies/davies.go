// SPDX-License-Identifier: MIT

package davies

import (
	"math"
)

// log28 is ln(2)/8.
const log28 = 0.0866

// Term is one chi-squared component λ·χ²(DF, NonCentrality).
type Term struct {
	Weight        float64
	DF            int
	NonCentrality float64
}

// Trace reports how an evaluation went.
type Trace struct {
	// AbsSum is the absolute value sum of the main integration.
	AbsSum float64

	// Terms is the total number of integration terms.
	Terms int

	// Integrations is the number of integrations performed.
	Integrations int

	// Interval is the integration interval of the final integration.
	Interval float64

	// Truncation is the truncation point of the initial integration.
	Truncation float64

	// ConvergenceSD is the standard deviation of the initial convergence factor.
	ConvergenceSD float64

	// Cycles counts the evaluations spent locating integration parameters.
	Cycles int
}

// Result is the outcome of CDF.
type Result struct {
	// Value is P(Q < c); −1 when no value could be computed.
	Value float64
	Fault Fault
	Trace Trace
}

// errLimit unwinds the evaluation once the cycle budget is exhausted.
type errLimit struct{}

// qf holds the working state of one evaluation.
type qf struct {
	terms []Term
	order []int
	c     float64

	sigsq, lmax, lmin, mean float64
	intl, ersm              float64

	count, limit int
	unsorted     bool
	fail         bool
}

// CDF returns P(Q < c) for Q = Σ Weightⱼ·χ²(DFⱼ, NonCentralityⱼ) + σ·N(0,1).
//
// Implementation:
//   - Stage 1 (Moments): mean, sd and extreme weights; degenerate forms are
//     resolved directly.
//   - Stage 2 (Truncation): find the truncation point u so that the
//     truncation error is below acc/2, adding a Gaussian convergence factor
//     when it helps.
//   - Stage 3 (Range): locate cut-offs outside which the tail mass is below
//     acc; c beyond them resolves to 0 or 1.
//   - Stage 4 (Integrate): optional auxiliary integrations, then the main
//     trapezoidal integration of the inversion formula.
//
// A Fault other than OK means Value may not meet the requested accuracy.
func CDF(c float64, terms []Term, opts ...Option) Result {
	o := gatherOptions(opts...)
	q := &qf{
		terms:    terms,
		order:    make([]int, len(terms)),
		c:        c,
		limit:    o.limit,
		unsorted: true,
	}

	var res Result
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(errLimit); !ok {
					panic(r)
				}
				res = Result{Value: -1, Fault: FaultIntegration}
			}
		}()
		res = q.run(o.sigma, o.accuracy)
	}()
	res.Trace.Cycles = q.count

	return res
}

func (q *qf) run(sigma, acc float64) Result {
	res := Result{Value: -1}
	tr := &res.Trace
	acc1 := acc
	xlim := float64(q.limit)

	// Stage 1: moments and validity.
	q.sigsq = sigma * sigma
	sd := q.sigsq
	for _, t := range q.terms {
		if t.DF < 0 || t.NonCentrality < 0 {
			res.Fault = FaultInvalid
			return res
		}
		nj := float64(t.DF)
		sd += t.Weight * t.Weight * (2*nj + 4*t.NonCentrality)
		q.mean += t.Weight * (nj + t.NonCentrality)
		if q.lmax < t.Weight {
			q.lmax = t.Weight
		} else if q.lmin > t.Weight {
			q.lmin = t.Weight
		}
	}
	if sd == 0 {
		if q.c > 0 {
			res.Value = 1
		} else {
			res.Value = 0
		}
		return res
	}
	if q.lmin == 0 && q.lmax == 0 && sigma == 0 {
		res.Fault = FaultInvalid
		return res
	}
	sd = math.Sqrt(sd)
	almx := q.lmax
	if almx < -q.lmin {
		almx = -q.lmin
	}

	// Stage 2: truncation point, with a convergence factor if it helps.
	utx := 16 / sd
	up := 4.5 / sd
	un := -up
	utx = q.findu(utx, 0.5*acc1)
	if q.c != 0 && almx > 0.07*sd {
		tausq := 0.25 * acc1 / q.cfe(q.c)
		if q.fail {
			q.fail = false
		} else if q.truncation(utx, tausq) < 0.2*acc1 {
			q.sigsq += tausq
			utx = q.findu(utx, 0.25*acc1)
			tr.ConvergenceSD = math.Sqrt(tausq)
		}
	}
	tr.Truncation = utx
	acc1 *= 0.5

	var (
		intv float64
		xnt  float64
	)
	for {
		// Stage 3: range of the distribution.
		var cut float64
		cut, up = q.ctff(acc1, up)
		d1 := cut - q.c
		if d1 < 0 {
			res.Value = 1
			return res
		}
		cut, un = q.ctff(acc1, un)
		d2 := q.c - cut
		if d2 < 0 {
			res.Value = 0
			return res
		}
		intv = 2 * math.Pi / math.Max(d1, d2)

		// Stage 4a: auxiliary integration when the main one is too long.
		xnt = utx / intv
		xntm := 3 / math.Sqrt(acc1)
		if xnt <= xntm*1.5 {
			break
		}
		if xntm > xlim {
			res.Fault = FaultAccuracy
			return res
		}
		ntm := int(math.Floor(xntm + 0.5))
		intv1 := utx / float64(ntm)
		x := 2 * math.Pi / intv1
		if x <= math.Abs(q.c) {
			break
		}
		tausq := 0.33 * acc1 / (1.1 * (q.cfe(q.c-x) + q.cfe(q.c+x)))
		if q.fail {
			break
		}
		acc1 *= 0.67
		q.integrate(ntm, intv1, tausq, false)
		xlim -= xntm
		q.sigsq += tausq
		tr.Integrations++
		tr.Terms += ntm + 1
		utx = q.findu(utx, 0.25*acc1)
		acc1 *= 0.75
	}

	// Stage 4b: main integration.
	tr.Interval = intv
	if xnt > xlim {
		res.Fault = FaultAccuracy
		return res
	}
	nt := int(math.Floor(xnt + 0.5))
	q.integrate(nt, intv, 0, true)
	tr.Integrations++
	tr.Terms += nt + 1
	res.Value = 0.5 - q.intl
	tr.AbsSum = q.ersm

	// Round-off test, allowing for radix 8 or 16 machines.
	x := q.ersm + acc/10
	for _, rat := range [...]float64{1, 2, 4, 8} {
		if rat*x == rat*q.ersm {
			res.Fault = FaultRoundOff
		}
	}

	return res
}

func (q *qf) counter() {
	q.count++
	if q.count > q.limit {
		panic(errLimit{})
	}
}

// exp1 is exp(x) flushed to 0 below −50.
func exp1(x float64) float64 {
	if x < -50 {
		return 0
	}

	return math.Exp(x)
}

// log1 returns log(1+x) when first, else log(1+x) − x, accurately for small x.
func log1(x float64, first bool) float64 {
	if math.Abs(x) > 0.1 {
		if first {
			return math.Log1p(x)
		}
		return math.Log1p(x) - x
	}
	y := x / (2 + x)
	term := 2 * y * y * y
	k := 3.0
	var s float64
	if first {
		s = 2 * y
	} else {
		s = -x * y
	}
	y *= y
	for s1 := s + term/k; s1 != s; s1 = s + term/k {
		k += 2
		term *= y
		s = s1
	}

	return s
}

// sortByMagnitude orders term indices by decreasing |weight|.
func (q *qf) sortByMagnitude() {
	for j := range q.terms {
		lj := math.Abs(q.terms[j].Weight)
		k := j - 1
		for ; k >= 0; k-- {
			if lj > math.Abs(q.terms[q.order[k]].Weight) {
				q.order[k+1] = q.order[k]
			} else {
				break
			}
		}
		q.order[k+1] = j
	}
	q.unsorted = false
}

// errbd bounds the tail probability using the moment generating function
// and returns the bound together with the cut-off point.
func (q *qf) errbd(u float64) (float64, float64) {
	q.counter()
	xconst := u * q.sigsq
	sum1 := u * xconst
	u *= 2
	for j := len(q.terms) - 1; j >= 0; j-- {
		t := q.terms[j]
		nj := float64(t.DF)
		x := u * t.Weight
		y := 1 - x
		xconst += t.Weight * (t.NonCentrality/y + nj) / y
		sum1 += t.NonCentrality*(x/y)*(x/y) + nj*(x*x/(1-x)+log1(-x, false))
	}

	return exp1(-0.5 * sum1), xconst
}

// ctff finds a cut-off c with P(Q > c) < accx when upn > 0, or
// P(Q < c) < accx otherwise. It returns the cut-off and the updated upn.
func (q *qf) ctff(accx, upn float64) (float64, float64) {
	u2 := upn
	u1 := 0.0
	c1 := q.mean
	rb := 2 * q.lmin
	if u2 > 0 {
		rb = 2 * q.lmax
	}

	var c2 float64
	for {
		var bound float64
		bound, c2 = q.errbd(u2 / (1 + u2*rb))
		if bound <= accx {
			break
		}
		u1, c1 = u2, c2
		u2 *= 2
	}
	for (c1-q.mean)/(c2-q.mean) < 0.9 {
		u := (u1 + u2) / 2
		bound, xconst := q.errbd(u / (1 + u*rb))
		if bound > accx {
			u1, c1 = u, xconst
		} else {
			u2, c2 = u, xconst
		}
	}

	return c2, u2
}

// truncation bounds the integration error due to truncation at u.
func (q *qf) truncation(u, tausq float64) float64 {
	q.counter()
	var (
		sum1, prod2, prod3 float64
		s                  float64
	)
	sum2 := (q.sigsq + tausq) * u * u
	prod1 := 2 * sum2
	u *= 2
	for _, t := range q.terms {
		nj := float64(t.DF)
		x := (u * t.Weight) * (u * t.Weight)
		sum1 += t.NonCentrality * x / (1 + x)
		if x > 1 {
			prod2 += nj * math.Log(x)
			prod3 += nj * log1(x, true)
			s += nj
		} else {
			prod1 += nj * log1(x, true)
		}
	}
	sum1 *= 0.5
	prod2 += prod1
	prod3 += prod1
	x := exp1(-sum1-0.25*prod2) / math.Pi
	y := exp1(-sum1-0.25*prod3) / math.Pi

	err1 := 1.0
	if s != 0 {
		err1 = x * 2 / s
	}
	err2 := 1.0
	if prod3 > 1 {
		err2 = 2.5 * y
	}
	if err2 < err1 {
		err1 = err2
	}
	x = 0.5 * sum2
	err2 = 1.0
	if x > y {
		err2 = y / x
	}

	return math.Min(err1, err2)
}

// findu finds u such that truncation(u) ≤ accx and truncation(u/1.2) > accx.
func (q *qf) findu(ut, accx float64) float64 {
	u := ut / 4
	if q.truncation(u, 0) > accx {
		for u = ut; q.truncation(u, 0) > accx; u = ut {
			ut *= 4
		}
	} else {
		ut = u
		for u /= 4; q.truncation(u, 0) <= accx; u /= 4 {
			ut = u
		}
	}
	for _, div := range [...]float64{2, 1.4, 1.2, 1.1} {
		u = ut / div
		if q.truncation(u, 0) <= accx {
			ut = u
		}
	}

	return ut
}

// integrate runs the trapezoidal rule with nterm+1 terms at step interv.
// Unless mainx, the integrand is multiplied by 1 − exp(−½·tausq·u²).
func (q *qf) integrate(nterm int, interv, tausq float64, mainx bool) {
	inpi := interv / math.Pi
	for k := nterm; k >= 0; k-- {
		u := (float64(k) + 0.5) * interv
		sum1 := -2 * u * q.c
		sum2 := math.Abs(sum1)
		sum3 := -0.5 * q.sigsq * u * u
		for j := len(q.terms) - 1; j >= 0; j-- {
			t := q.terms[j]
			nj := float64(t.DF)
			x := 2 * t.Weight * u
			y := x * x
			sum3 -= 0.25 * nj * log1(y, true)
			y = t.NonCentrality * x / (1 + y)
			z := nj*math.Atan(x) + y
			sum1 += z
			sum2 += math.Abs(z)
			sum3 -= 0.5 * x * y
		}
		x := inpi * exp1(sum3) / u
		if !mainx {
			x *= 1 - exp1(-0.5*tausq*u*u)
		}
		q.intl += math.Sin(0.5*sum1) * x
		q.ersm += 0.5 * sum2 * x
	}
}

// cfe returns the coefficient of tausq in the error when the convergence
// factor exp(−½·tausq·u²) is used and the distribution is evaluated at x.
func (q *qf) cfe(x float64) float64 {
	q.counter()
	if q.unsorted {
		q.sortByMagnitude()
	}
	axl := math.Abs(x)
	sxl := 1.0
	if x <= 0 {
		sxl = -1
	}
	var sum1 float64
	for j := len(q.terms) - 1; j >= 0; j-- {
		t := q.terms[q.order[j]]
		if t.Weight*sxl <= 0 {
			continue
		}
		lj := math.Abs(t.Weight)
		axl1 := axl - lj*(float64(t.DF)+t.NonCentrality)
		axl2 := lj / log28
		if axl1 > axl2 {
			axl = axl1
			continue
		}
		if axl > axl2 {
			axl = axl2
		}
		sum1 = (axl - axl1) / lj
		for k := j - 1; k >= 0; k-- {
			tk := q.terms[q.order[k]]
			sum1 += float64(tk.DF) + tk.NonCentrality
		}
		break
	}
	if sum1 > 100 {
		q.fail = true
		return 1
	}

	return math.Pow(2, sum1/4) / (math.Pi * axl * axl)
}
