// SPDX-License-Identifier: MIT

package distance

import (
	"errors"
	"fmt"
)

var (
	// ErrNilInput is returned when a nil matrix is passed in.
	ErrNilInput = errors.New("distance: nil input")

	// ErrEmptyInput is returned for a matrix with zero rows or columns.
	ErrEmptyInput = errors.New("distance: empty input")

	// ErrNaNInf is returned when the input holds NaN or ±Inf values.
	// Missing observations must be dropped row-wise before this point.
	ErrNaNInf = errors.New("distance: NaN or Inf encountered")

	// ErrNegativeInput is returned when a method or transform that needs
	// non-negative data (Hellinger, sqrt) sees a negative entry.
	ErrNegativeInput = errors.New("distance: negative value for a non-negative method")

	// ErrUnknownMethod is returned by ParseMethod for unsupported names.
	ErrUnknownMethod = errors.New("distance: unknown method")

	// ErrUnknownTransform is returned by ParseTransform for unsupported names.
	ErrUnknownTransform = errors.New("distance: unknown transform")
)

// CellError pins a value-level failure to its position in the input.
type CellError struct {
	Row, Col int
	Value    float64
	Err      error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("distance: cell (%d,%d)=%g: %v", e.Row, e.Col, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

func distanceErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
