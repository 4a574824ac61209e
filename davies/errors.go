// SPDX-License-Identifier: MIT

package davies

import (
	"errors"
	"fmt"
)

// ErrFault is wrapped by Fault.Err for every non-zero fault code.
var ErrFault = errors.New("davies: integration fault")

// Fault is the status code of an evaluation.
type Fault int

const (
	// OK means the requested accuracy was reached.
	OK Fault = iota

	// FaultAccuracy means the term limit was hit before reaching the accuracy.
	FaultAccuracy

	// FaultRoundOff means round-off error may be significant.
	FaultRoundOff

	// FaultInvalid means invalid parameters (negative df or non-centrality,
	// or an all-zero form).
	FaultInvalid

	// FaultIntegration means the integration parameters could not be located
	// within the term limit.
	FaultIntegration
)

var faultNames = map[Fault]string{
	OK:               "ok",
	FaultAccuracy:    "accuracy not achieved",
	FaultRoundOff:    "round-off error possibly significant",
	FaultInvalid:     "invalid parameters",
	FaultIntegration: "unable to locate integration parameters",
}

// String describes the fault.
func (f Fault) String() string {
	if s, ok := faultNames[f]; ok {
		return s
	}

	return fmt.Sprintf("Fault(%d)", int(f))
}

// Err returns nil for OK, otherwise an error wrapping ErrFault.
func (f Fault) Err() error {
	if f == OK {
		return nil
	}

	return fmt.Errorf("%w %d: %s", ErrFault, int(f), f)
}
