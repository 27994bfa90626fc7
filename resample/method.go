package resample

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Method selects the kernel family used to build a Table.
type Method uint8

const (
	// Nearest picks the closest source sample (box kernel).
	Nearest Method = iota

	// Linear interpolates between neighbours (triangle kernel).
	Linear

	// Cubic is the Mitchell-Netravali family parameterized by B and C.
	Cubic

	// Sinc is a truncated sinc whose window is set by the envelope.
	Sinc

	// Lanczos is a sinc windowed by a wider sinc.
	Lanczos

	methodCount
)

var methodNames = [methodCount]string{
	Nearest: "nearest",
	Linear:  "linear",
	Cubic:   "cubic",
	Sinc:    "sinc",
	Lanczos: "lanczos",
}

// String returns the configuration name of the method.
func (m Method) String() string {
	if m >= methodCount {
		return fmt.Sprintf("Method(%d)", m)
	}
	return methodNames[m]
}

// IsValid reports whether m is a known method.
func (m Method) IsValid() bool {
	return m < methodCount
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	key := cases.Fold().String(s)
	for m, name := range methodNames {
		if name == key {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// Edge selects how weights that fall outside the input are handled.
type Edge uint8

const (
	// EdgeClamp folds out-of-range weights onto the nearest edge sample.
	// Boundary outputs keep unit gain, as if the edge sample were repeated.
	EdgeClamp Edge = iota

	// EdgeTruncate drops out-of-range weights. Boundary phases sum to less
	// than one; the deficit equals the dropped weight.
	EdgeTruncate

	// EdgeRenormalize drops out-of-range weights and rescales the rest to one.
	EdgeRenormalize

	edgeCount
)

// String returns the name of the edge policy.
func (e Edge) String() string {
	switch e {
	case EdgeClamp:
		return "clamp"
	case EdgeTruncate:
		return "truncate"
	case EdgeRenormalize:
		return "renormalize"
	default:
		return fmt.Sprintf("Edge(%d)", e)
	}
}
