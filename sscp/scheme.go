// SPDX-License-Identifier: MIT

package sscp

import (
	"fmt"
	"strings"
)

// Scheme selects how explained variation is attributed to terms.
type Scheme int

const (
	// Sequential is the type I decomposition.
	Sequential Scheme = iota + 1

	// Hierarchical is the type II decomposition.
	Hierarchical

	// Marginal is the type III decomposition.
	Marginal
)

// String returns the roman-numeral name ("I", "II", "III").
func (s Scheme) String() string {
	switch s {
	case Sequential:
		return "I"
	case Hierarchical:
		return "II"
	case Marginal:
		return "III"
	}

	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme accepts "I"/"1"/"sequential", "II"/"2"/"hierarchical" and
// "III"/"3"/"marginal", case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i", "1", "sequential":
		return Sequential, nil
	case "ii", "2", "hierarchical":
		return Hierarchical, nil
	case "iii", "3", "marginal":
		return Marginal, nil
	}

	return 0, fmt.Errorf("ParseScheme(%q): %w", s, ErrUnknownScheme)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	switch s {
	case Sequential, Hierarchical, Marginal:
		return []byte(s.String()), nil
	}

	return nil, fmt.Errorf("Scheme(%d): %w", int(s), ErrUnknownScheme)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(b []byte) error {
	v, err := ParseScheme(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}

func (s Scheme) valid() bool { return s >= Sequential && s <= Marginal }
