package color

import (
	"fmt"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/video"
)

// chromaticities are the CIE xy coordinates of the red, green and blue
// primaries and the white point.
type chromaticities struct {
	rx, ry, gx, gy, bx, by, wx, wy float64
}

const (
	d65x, d65y = 0.3127, 0.3290
	illCx      = 0.310
	illCy      = 0.316
)

var primariesTable = map[video.Primaries]chromaticities{
	video.PrimariesBT709:      {0.64, 0.33, 0.30, 0.60, 0.15, 0.06, d65x, d65y},
	video.PrimariesBT470M:     {0.67, 0.33, 0.21, 0.71, 0.14, 0.08, illCx, illCy},
	video.PrimariesBT470BG:    {0.64, 0.33, 0.29, 0.60, 0.15, 0.06, d65x, d65y},
	video.PrimariesSMPTE170M:  {0.630, 0.340, 0.310, 0.595, 0.155, 0.070, d65x, d65y},
	video.PrimariesSMPTE240M:  {0.630, 0.340, 0.310, 0.595, 0.155, 0.070, d65x, d65y},
	video.PrimariesFilm:       {0.681, 0.319, 0.243, 0.692, 0.145, 0.049, illCx, illCy},
	video.PrimariesBT2020:     {0.708, 0.292, 0.170, 0.797, 0.131, 0.046, d65x, d65y},
	video.PrimariesAdobeRGB:   {0.64, 0.33, 0.21, 0.71, 0.15, 0.06, d65x, d65y},
	video.PrimariesSMPTEST428: {1, 0, 0, 1, 0, 0, 1.0 / 3, 1.0 / 3},
	video.PrimariesSMPTERP431: {0.680, 0.320, 0.265, 0.690, 0.150, 0.060, 0.314, 0.351},
	video.PrimariesSMPTEEG432: {0.680, 0.320, 0.265, 0.690, 0.150, 0.060, d65x, d65y},
	video.PrimariesEBU3213:    {0.630, 0.340, 0.295, 0.605, 0.155, 0.077, d65x, d65y},
}

// RGBToXYZ returns the matrix from linear RGB in primaries p to CIE XYZ,
// normalized so that white has Y = 1.
func RGBToXYZ(p video.Primaries) (f64.Mat3, error) {
	c, ok := primariesTable[p]
	if !ok {
		return f64.Mat3{}, fmt.Errorf("%w: primaries %v", ErrUnsupported, p)
	}
	// Columns are the unscaled xyz of each primary; scaling them by s maps
	// RGB white onto the white point.
	prim := f64.Mat3{
		c.rx, c.gx, c.bx,
		c.ry, c.gy, c.by,
		1 - c.rx - c.ry, 1 - c.gx - c.gy, 1 - c.bx - c.by,
	}
	inv, ok := invert3(prim)
	if !ok {
		return f64.Mat3{}, fmt.Errorf("%w: degenerate primaries %v", ErrUnsupported, p)
	}
	w := f64.Vec3{c.wx / c.wy, 1, (1 - c.wx - c.wy) / c.wy}
	var s f64.Vec3
	for row := range 3 {
		s[row] = inv[row*3]*w[0] + inv[row*3+1]*w[1] + inv[row*3+2]*w[2]
	}
	for row := range 3 {
		for col := range 3 {
			prim[row*3+col] *= s[col]
		}
	}
	return prim, nil
}

// PrimariesMatrix returns the matrix converting linear RGB in src primaries
// to linear RGB in dst primaries. White points are mapped through XYZ
// without chromatic adaptation.
func PrimariesMatrix(src, dst video.Primaries) (f64.Mat3, error) {
	from, err := RGBToXYZ(src)
	if err != nil {
		return f64.Mat3{}, err
	}
	to, err := RGBToXYZ(dst)
	if err != nil {
		return f64.Mat3{}, err
	}
	toInv, ok := invert3(to)
	if !ok {
		return f64.Mat3{}, fmt.Errorf("%w: degenerate primaries %v", ErrUnsupported, dst)
	}
	return mul3(toInv, from), nil
}
