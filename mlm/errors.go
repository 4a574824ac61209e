// SPDX-License-Identifier: MIT

package mlm

import (
	"errors"
	"fmt"
)

var (
	// ErrNilInput is returned when no response is supplied.
	ErrNilInput = errors.New("mlm: nil response input")

	// ErrNilDesign is returned when no design is supplied.
	ErrNilDesign = errors.New("mlm: nil design")

	// ErrDimensionMismatch is returned when response and design disagree on n.
	ErrDimensionMismatch = errors.New("mlm: response and design row counts differ")

	// ErrUnknownInput is returned for ResponseInput implementations outside this package.
	ErrUnknownInput = errors.New("mlm: unknown response input")
)

func mlmErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
