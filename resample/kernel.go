package resample

import "math"

// kernel describes one filter family: its continuous shape and the radius
// outside of which the shape is zero, both in unscaled sample units.
type kernel struct {
	shape  func(x float64, o *Options) float64
	radius func(o *Options) float64
	// taps is the automatic tap count for scale factor s >= 1.
	taps func(s float64, o *Options) int
}

var kernels = [methodCount]kernel{
	Nearest: {
		shape:  nearestShape,
		radius: func(*Options) float64 { return 0.5 },
		taps:   func(float64, *Options) int { return 1 },
	},
	Linear: {
		shape:  linearShape,
		radius: func(*Options) float64 { return 1 },
		taps:   func(s float64, _ *Options) int { return 2 * int(math.Ceil(s)) },
	},
	Cubic: {
		shape:  cubicShape,
		radius: func(*Options) float64 { return 2 },
		taps:   func(s float64, _ *Options) int { return 4 * int(math.Ceil(s)) },
	},
	Sinc: {
		shape:  sincShape,
		radius: func(o *Options) float64 { return o.Envelope },
		taps:   func(s float64, o *Options) int { return 2 * int(math.Ceil(o.Envelope*s)) },
	},
	Lanczos: {
		shape:  lanczosShape,
		radius: func(o *Options) float64 { return o.Envelope },
		taps:   func(s float64, o *Options) int { return 2 * int(math.Ceil(o.Envelope*s)) },
	},
}

func nearestShape(x float64, _ *Options) float64 {
	if math.Abs(x) <= 0.5 {
		return 1
	}
	return 0
}

func linearShape(x float64, _ *Options) float64 {
	x = math.Abs(x)
	if x < 1 {
		return 1 - x
	}
	return 0
}

// cubicShape is the Mitchell-Netravali piecewise cubic.
func cubicShape(x float64, o *Options) float64 {
	b, c := o.CubicB, o.CubicC
	x = math.Abs(x)
	x2 := x * x
	x3 := x2 * x
	switch {
	case x < 1:
		return ((12-9*b-6*c)*x3 + (-18+12*b+6*c)*x2 + (6 - 2*b)) / 6
	case x < 2:
		return ((-b-6*c)*x3 + (6*b+30*c)*x2 + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	default:
		return 0
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

func sincShape(x float64, o *Options) float64 {
	if math.Abs(x) >= o.Envelope {
		return 0
	}
	return sinc(x * o.Sharpness)
}

func lanczosShape(x float64, o *Options) float64 {
	if math.Abs(x) >= o.Envelope {
		return 0
	}
	return sinc(x*o.Sharpness) * sinc(x/o.Envelope)
}

// weight evaluates the kernel at distance x (already divided by the scale),
// including the unsharp blend. The wide kernel is the same family stretched
// by two and halved so it keeps unit area.
func (k *kernel) weight(x float64, o *Options) float64 {
	w := k.shape(x, o)
	if o.Sharpen > 0 {
		wide := k.shape(x/2, o) / 2
		w += o.Sharpen * (w - wide)
	}
	return w
}
