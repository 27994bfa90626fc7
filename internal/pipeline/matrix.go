package pipeline

import (
	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/internal/color"
)

// matrixOp applies a ColorMatrix to the first three channels of every
// pixel of a 4-channel line. Alpha is left unchanged and results are
// clamped to [0, 1].
type matrixOp struct {
	m     [12]float32
	gamma *gammaOp
}

type gammaOp struct {
	toLinear   *color.LUT
	fromLinear *color.LUT
	prim       [9]float32
	post       [12]float32
}

func aff32(a f64.Aff4) [12]float32 {
	var r [12]float32
	for i, v := range a {
		r[i] = float32(v)
	}
	return r
}

func newMatrixOp(cm *ColorMatrix) *matrixOp {
	op := &matrixOp{m: aff32(cm.Matrix)}
	if g := cm.Gamma; g != nil {
		op.gamma = &gammaOp{
			toLinear:   g.ToLinear,
			fromLinear: g.FromLinear,
			post:       aff32(g.Post),
		}
		for i, v := range g.Primaries {
			op.gamma.prim[i] = float32(v)
		}
	}
	return op
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (o *matrixOp) apply(line []float32, _ int, _ *chainState) {
	m := &o.m
	for i := 0; i+4 <= len(line); i += 4 {
		px := line[i : i+3 : i+3]
		a, b, c := px[0], px[1], px[2]
		x := m[0]*a + m[1]*b + m[2]*c + m[3]
		y := m[4]*a + m[5]*b + m[6]*c + m[7]
		z := m[8]*a + m[9]*b + m[10]*c + m[11]
		if g := o.gamma; g != nil {
			x, y, z = g.apply(x, y, z)
		}
		px[0], px[1], px[2] = clamp01(x), clamp01(y), clamp01(z)
	}
}

func (g *gammaOp) apply(r, gr, b float32) (float32, float32, float32) {
	r = g.toLinear.At(r)
	gr = g.toLinear.At(gr)
	b = g.toLinear.At(b)
	p := &g.prim
	lr := clamp01(p[0]*r + p[1]*gr + p[2]*b)
	lg := clamp01(p[3]*r + p[4]*gr + p[5]*b)
	lb := clamp01(p[6]*r + p[7]*gr + p[8]*b)
	r = g.fromLinear.At(lr)
	gr = g.fromLinear.At(lg)
	b = g.fromLinear.At(lb)
	m := &g.post
	return m[0]*r + m[1]*gr + m[2]*b + m[3],
		m[4]*r + m[5]*gr + m[6]*b + m[7],
		m[8]*r + m[9]*gr + m[10]*b + m[11]
}
