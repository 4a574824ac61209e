// SPDX-License-Identifier: MIT

package statistic

import (
	"errors"
	"fmt"
)

var (
	// ErrNilDecomposition is returned when no decomposition is supplied.
	ErrNilDecomposition = errors.New("statistic: nil decomposition")

	// ErrZeroErrorSS is returned when the residual sum of squares vanishes,
	// leaving the pseudo-F undefined.
	ErrZeroErrorSS = errors.New("statistic: error sum of squares is zero")

	// ErrZeroTotalSS is returned when the response has no variation.
	ErrZeroTotalSS = errors.New("statistic: total sum of squares is zero")

	// ErrDfError is returned for residual degrees of freedom below 1.
	ErrDfError = errors.New("statistic: residual degrees of freedom must be ≥ 1")

	// ErrTooFewRows is returned when residuals have fewer than two rows.
	ErrTooFewRows = errors.New("statistic: need at least two residual rows")

	// ErrEigenFailed is returned when the covariance eigen-decomposition fails.
	ErrEigenFailed = errors.New("statistic: eigen-decomposition failed")
)

func statErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
