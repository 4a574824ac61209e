// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoObservations is returned when a design would have zero rows.
	ErrNoObservations = errors.New("model: no observations")

	// ErrLengthMismatch is returned when variables differ in length.
	ErrLengthMismatch = errors.New("model: variable length mismatch")

	// ErrUnknownVariable is returned when a term references a missing variable.
	ErrUnknownVariable = errors.New("model: unknown variable")

	// ErrDuplicateVariable is returned when two variables share a name.
	ErrDuplicateVariable = errors.New("model: duplicate variable")

	// ErrDuplicateTerm is returned when a term is listed twice.
	ErrDuplicateTerm = errors.New("model: duplicate term")

	// ErrNoTerms is returned for an intercept-only design.
	ErrNoTerms = errors.New("model: design has no explanatory terms")

	// ErrSingleLevel is returned when a factor has fewer than two levels.
	ErrSingleLevel = errors.New("model: factor has fewer than two levels")

	// ErrUnknownLevel is returned when an ordered factor value is not among its levels.
	ErrUnknownLevel = errors.New("model: value is not a declared level")

	// ErrUnknownContrast is returned for unsupported contrast names.
	ErrUnknownContrast = errors.New("model: unknown contrast")

	// ErrUnknownKind is returned for unsupported variable types in a Spec.
	ErrUnknownKind = errors.New("model: unknown variable type")

	// ErrBadNumber is returned when a numeric column holds a non-number.
	ErrBadNumber = errors.New("model: invalid numeric value")

	// ErrNaNInf is returned when numeric data holds NaN or ±Inf.
	ErrNaNInf = errors.New("model: NaN or Inf encountered")

	// ErrDimensionMismatch is returned when the response and design disagree on n.
	ErrDimensionMismatch = errors.New("model: dimension mismatch")

	// ErrNoResidualDf is returned when the model leaves no residual degrees of freedom.
	ErrNoResidualDf = errors.New("model: no residual degrees of freedom")

	// ErrRankDeficient is returned when the design matrix is (numerically) singular.
	ErrRankDeficient = errors.New("model: design matrix is rank deficient")

	// ErrMissingValues is returned by OLS for a design with missing observations.
	ErrMissingValues = errors.New("model: design has missing values")

	// ErrIndexOutOfRange is returned by Subset for invalid row indices.
	ErrIndexOutOfRange = errors.New("model: row index out of range")
)

func modelErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
