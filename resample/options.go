package resample

// Options tunes the kernel shape. Out-of-range values are clamped, never
// rejected.
type Options struct {
	// CubicB and CubicC parameterize the Cubic kernel, each in [0, 2].
	// (0, 0.5) is Catmull-Rom, (1/3, 1/3) Mitchell, (1, 0) B-spline.
	CubicB float64
	CubicC float64

	// Envelope is the Sinc/Lanczos half-width in samples, in [1, 5].
	Envelope float64

	// Sharpness scales the Sinc/Lanczos cutoff, in [0.5, 1.5].
	Sharpness float64

	// Sharpen blends an unsharp term into any kernel, in [0, 1].
	Sharpen float64

	// Edge is the boundary policy.
	Edge Edge
}

// Option ranges.
const (
	MinCubic     = 0.0
	MaxCubic     = 2.0
	MinEnvelope  = 1.0
	MaxEnvelope  = 5.0
	MinSharpness = 0.5
	MaxSharpness = 1.5
	MinSharpen   = 0.0
	MaxSharpen   = 1.0
)

// DefaultOptions returns Mitchell cubic parameters, envelope 2, neutral
// sharpness, no sharpening and EdgeClamp.
func DefaultOptions() Options {
	return Options{
		CubicB:    1.0 / 3.0,
		CubicC:    1.0 / 3.0,
		Envelope:  2,
		Sharpness: 1,
		Sharpen:   0,
		Edge:      EdgeClamp,
	}
}

// Clamped returns a copy with every field forced into its valid range.
func (o Options) Clamped() Options {
	o.CubicB = clampF(o.CubicB, MinCubic, MaxCubic)
	o.CubicC = clampF(o.CubicC, MinCubic, MaxCubic)
	o.Envelope = clampF(o.Envelope, MinEnvelope, MaxEnvelope)
	o.Sharpness = clampF(o.Sharpness, MinSharpness, MaxSharpness)
	o.Sharpen = clampF(o.Sharpen, MinSharpen, MaxSharpen)
	if o.Edge >= edgeCount {
		o.Edge = EdgeClamp
	}
	return o
}

// clampF clamps v to [lo, hi]. NaN maps to lo.
func clampF(v, lo, hi float64) float64 {
	if v >= hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}
