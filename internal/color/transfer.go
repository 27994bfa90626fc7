package color

import (
	"math"

	"github.com/gogpu/vconv/video"
)

// Curve is a transfer function on normalized values.
// ToLinear is the EOTF, FromLinear the OETF.
type Curve struct {
	ToLinear   func(float64) float64
	FromLinear func(float64) float64
}

// TransferCurve returns the curve for t. ok is false for TransferUnknown and
// unknown values.
func TransferCurve(t video.Transfer) (c Curve, ok bool) {
	switch t {
	case video.TransferGamma10:
		id := func(v float64) float64 { return v }
		return Curve{id, id}, true
	case video.TransferGamma18:
		return gammaCurve(1.8), true
	case video.TransferGamma20:
		return gammaCurve(2.0), true
	case video.TransferGamma22:
		return gammaCurve(2.2), true
	case video.TransferGamma28:
		return gammaCurve(2.8), true
	case video.TransferAdobeRGB:
		return gammaCurve(563.0 / 256.0), true
	case video.TransferBT709, video.TransferBT601, video.TransferBT2020_10:
		return rec709Curve(1.099, 0.018, 4.5), true
	case video.TransferBT2020_12:
		return rec709Curve(1.0993, 0.0181, 4.5), true
	case video.TransferSMPTE240M:
		return rec709Curve(1.1115, 0.0228, 4.0), true
	case video.TransferSRGB:
		return Curve{SRGBToLinear, LinearToSRGB}, true
	case video.TransferSMPTE2084:
		return Curve{pqToLinear, pqFromLinear}, true
	case video.TransferARIBSTDB67:
		return Curve{hlgToLinear, hlgFromLinear}, true
	}
	return Curve{}, false
}

// SRGBToLinear converts an sRGB component to linear (EOTF).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4)
func SRGBToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// LinearToSRGB converts a linear component to sRGB (OETF).
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*pow(l, 1/2.4)-0.055
func LinearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

func gammaCurve(g float64) Curve {
	return Curve{
		ToLinear:   func(v float64) float64 { return math.Pow(math.Max(v, 0), g) },
		FromLinear: func(l float64) float64 { return math.Pow(math.Max(l, 0), 1/g) },
	}
}

// rec709Curve is the BT.709 family: a linear segment of the given slope
// below beta, then a*l^0.45 - (a-1).
func rec709Curve(a, beta, slope float64) Curve {
	return Curve{
		ToLinear: func(v float64) float64 {
			if v < beta*slope {
				return v / slope
			}
			return math.Pow((v+(a-1))/a, 1/0.45)
		},
		FromLinear: func(l float64) float64 {
			if l < beta {
				return l * slope
			}
			return a*math.Pow(l, 0.45) - (a - 1)
		},
	}
}

// SMPTE ST 2084 (PQ) constants.
const (
	pqM1 = 2610.0 / 16384
	pqM2 = 2523.0 / 4096 * 128
	pqC1 = 3424.0 / 4096
	pqC2 = 2413.0 / 4096 * 32
	pqC3 = 2392.0 / 4096 * 32
)

func pqToLinear(v float64) float64 {
	p := math.Pow(math.Max(v, 0), 1/pqM2)
	return math.Pow(math.Max(p-pqC1, 0)/(pqC2-pqC3*p), 1/pqM1)
}

func pqFromLinear(l float64) float64 {
	p := math.Pow(math.Max(l, 0), pqM1)
	return math.Pow((pqC1+pqC2*p)/(1+pqC3*p), pqM2)
}

// ARIB STD-B67 (HLG) constants.
const (
	hlgA = 0.17883277
	hlgB = 0.28466892
	hlgC = 0.55991073
)

func hlgToLinear(v float64) float64 {
	if v <= 0.5 {
		return v * v / 3
	}
	return (math.Exp((v-hlgC)/hlgA) + hlgB) / 12
}

func hlgFromLinear(l float64) float64 {
	if l <= 1.0/12 {
		return math.Sqrt(3 * math.Max(l, 0))
	}
	return hlgA*math.Log(12*l-hlgB) + hlgC
}
