// SPDX-License-Identifier: MIT

// Command mlmtest runs asymptotic distance-based multivariate analyses of
// variance from the command line or over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
