// SPDX-License-Identifier: MIT

package distance

import (
	"fmt"
	"strings"
)

// Method names a distance function between rows of a response matrix.
type Method int

const (
	// Euclidean is the plain L2 distance between rows.
	Euclidean Method = iota

	// Hellinger is the Euclidean distance between element-wise square roots.
	Hellinger
)

var methodNames = map[Method]string{
	Euclidean: "euclidean",
	Hellinger: "hellinger",
}

// String returns the canonical lower-case method name.
func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod resolves a case-insensitive method name.
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == key {
			return m, nil
		}
	}

	return Euclidean, fmt.Errorf("ParseMethod(%q): %w", s, ErrUnknownMethod)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v

	return nil
}

// Transform is an element-wise pre-transform applied to a raw response
// before any distance is computed.
type Transform int

const (
	// NoTransform leaves the response untouched.
	NoTransform Transform = iota

	// Sqrt takes element-wise square roots (requires non-negative data).
	Sqrt

	// Log1p applies log(1+x) (requires x > -1).
	Log1p
)

var transformNames = map[Transform]string{
	NoTransform: "none",
	Sqrt:        "sqrt",
	Log1p:       "log1p",
}

// String returns the canonical transform name.
func (t Transform) String() string {
	if s, ok := transformNames[t]; ok {
		return s
	}

	return fmt.Sprintf("Transform(%d)", int(t))
}

// ParseTransform resolves a case-insensitive transform name; "" means none.
func ParseTransform(s string) (Transform, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return NoTransform, nil
	}
	for t, name := range transformNames {
		if name == key {
			return t, nil
		}
	}

	return NoTransform, fmt.Errorf("ParseTransform(%q): %w", s, ErrUnknownTransform)
}

// MarshalText implements encoding.TextMarshaler.
func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Transform) UnmarshalText(b []byte) error {
	v, err := ParseTransform(string(b))
	if err != nil {
		return err
	}
	*t = v

	return nil
}
