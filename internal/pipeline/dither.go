package pipeline

import (
	"image"
	"math"

	"github.com/gogpu/vconv/video"
)

// bayer8 is the 8x8 ordered dither matrix with values 0..63.
var bayer8 = [8][8]float32{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// ditherOp snaps a line to the destination code grid. After it runs every
// value is an exact code divided by the component maximum, so the packer's
// rounding is a no-op.
type ditherOp struct {
	method DitherMethod
	chans  int
	max    [4]float32 // 0 for components the destination does not store
	x0, y0 int
}

func newDitherOp(m DitherMethod, f video.Format, comp int, region image.Rectangle) *ditherOp {
	fi := f.Info()
	op := &ditherOp{method: m, chans: 4, x0: region.Min.X, y0: region.Min.Y}
	if comp >= 0 {
		op.chans = 1
		op.max[0] = float32(uint32(1)<<fi.Comps[comp].Depth - 1)
		return op
	}
	for c, cd := range fi.Comps {
		if cd.Present() {
			op.max[c] = float32(uint32(1)<<cd.Depth - 1)
		}
	}
	return op
}

// snap rounds v to the nearest of the maxCode+1 code levels.
func snap(v, maxCode float32) float32 {
	q := float32(math.Floor(float64(v*maxCode + 0.5)))
	return min(max(q, 0), maxCode) / maxCode
}

func (o *ditherOp) apply(line []float32, y int, st *chainState) {
	chans := o.chans
	n := len(line) / chans
	switch o.method {
	case DitherNone:
		for c := range chans {
			m := o.max[c]
			if m == 0 {
				continue
			}
			for x := range n {
				line[x*chans+c] = snap(clamp01(line[x*chans+c]), m)
			}
		}

	case DitherHorizErr:
		for c := range chans {
			m := o.max[c]
			if m == 0 {
				continue
			}
			e := float32(0)
			for x := range n {
				i := x*chans + c
				v := clamp01(line[i]) + e
				line[i] = snap(v, m)
				e = v - line[i]
			}
		}

	case DitherVertErr:
		errs := st.errs
		for c := range chans {
			m := o.max[c]
			if m == 0 {
				continue
			}
			for x := range n {
				i := x*chans + c
				v := clamp01(line[i]) + errs[i]
				line[i] = snap(v, m)
				errs[i] = v - line[i]
			}
		}

	case DitherHalftone:
		row := &bayer8[(y+o.y0)&7]
		for c := range chans {
			m := o.max[c]
			if m == 0 {
				continue
			}
			for x := range n {
				i := x*chans + c
				t := (row[(x+o.x0)&7] + 0.5) / 64
				q := float32(math.Floor(float64(clamp01(line[i])*m + t)))
				line[i] = min(q, m) / m
			}
		}
	}
}
