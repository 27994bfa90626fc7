package color

// lutSize is the number of intervals of a LUT.
const lutSize = 4096

// LUT is a transfer function sampled on [0, 1] and evaluated with linear
// interpolation. Inputs outside [0, 1] are clamped.
//
// A LUT is immutable and safe for concurrent use.
type LUT struct {
	tab [lutSize + 1]float32
}

// NewLUT samples fn at lutSize+1 evenly spaced points.
func NewLUT(fn func(float64) float64) *LUT {
	l := &LUT{}
	for i := range l.tab {
		l.tab[i] = float32(fn(float64(i) / lutSize))
	}
	return l
}

// At evaluates the table at v.
func (l *LUT) At(v float32) float32 {
	if !(v > 0) {
		return l.tab[0]
	}
	if v >= 1 {
		return l.tab[lutSize]
	}
	x := v * lutSize
	i := int(x)
	f := x - float32(i)
	return l.tab[i] + f*(l.tab[i+1]-l.tab[i])
}
