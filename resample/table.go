package resample

import (
	"fmt"
	"math"
)

// Table is a polyphase filter table for one axis.
//
// Output sample i is computed as
//
//	sum over j < NTaps[Phase[i]] of PhaseTaps(Phase[i])[j] * in[Offset[i]+j]
//
// and Offset[i]+NTaps[Phase[i]] never exceeds InSize. A Table is immutable
// once New returns and may be shared between goroutines.
type Table struct {
	Method  Method
	InSize  int
	OutSize int

	// NPhases is the number of distinct tap shapes after deduplication. It
	// is not the phase count passed to New, which only bounds how finely
	// positions are quantized; a coarse request still gets one phase per
	// distinct position and edge window, and Phase indexes these shapes.
	NPhases int

	// MaxTaps is the widest phase, the stride of Taps.
	MaxTaps int

	Offset []int
	Phase  []int
	NTaps  []int

	// Taps holds NPhases*MaxTaps weights, phase-major. Entries past
	// NTaps[phase] are zero.
	Taps []float64
}

// shapeKey identifies a tap shape: the quantized distance from the first tap
// to the source position and the in-range tap window relative to the first tap.
type shapeKey struct {
	frac   int64
	lo, hi int
}

// New builds a Table resampling inSize samples to outSize samples.
//
// nPhases is the minimum phase resolution: fractional positions are quantized
// to at least 1/nPhases of a sample, and never coarser than the exact grid of
// the inSize/outSize ratio. nTaps of 0 selects a width per method and scale.
// A nil opts uses DefaultOptions; given options are clamped.
//
// On error no Table is returned.
func New(method Method, nPhases, nTaps int, shift float64, inSize, outSize int, opts *Options) (*Table, error) {
	if inSize <= 0 || outSize <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidExtent, inSize, outSize)
	}
	if nPhases <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPhases, nPhases)
	}
	if nTaps < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTaps, nTaps)
	}
	if math.IsNaN(shift) || math.IsInf(shift, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShift, shift)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, method)
	}

	o := DefaultOptions()
	if opts != nil {
		o = opts.Clamped()
	}

	k := &kernels[method]
	scale := math.Max(1, float64(inSize)/float64(outSize))
	if nTaps == 0 {
		nTaps = k.taps(scale, &o)
	}

	res := phaseResolution(nPhases, inSize, outSize)

	t := &Table{
		Method:  method,
		InSize:  inSize,
		OutSize: outSize,
		Offset:  make([]int, outSize),
		Phase:   make([]int, outSize),
	}

	ratio := float64(inSize) / float64(outSize)
	index := make(map[shapeKey]int)
	var shapes [][]float64
	raw := make([]float64, nTaps)

	for i := range outSize {
		p := (float64(i)+0.5)*ratio - 0.5 + shift
		q := int64(math.Round(p * float64(res)))
		first := ceilDiv(2*q-int64(nTaps)*res, 2*res)
		frac := q - first*res

		lo := clampInt(int(first), 0, inSize-1)
		hi := clampInt(int(first)+nTaps-1, 0, inSize-1)
		key := shapeKey{frac: frac, lo: lo - int(first), hi: hi - int(first)}

		ph, ok := index[key]
		if !ok {
			pos := float64(frac) / float64(res)
			shapes = append(shapes, buildShape(k, &o, raw, pos, scale, key.lo, key.hi))
			ph = len(shapes) - 1
			index[key] = ph
		}
		t.Offset[i] = lo
		t.Phase[i] = ph
	}

	t.NPhases = len(shapes)
	t.NTaps = make([]int, t.NPhases)
	for ph, s := range shapes {
		t.NTaps[ph] = len(s)
		t.MaxTaps = max(t.MaxTaps, len(s))
	}
	t.Taps = make([]float64, t.NPhases*t.MaxTaps)
	for ph, s := range shapes {
		copy(t.Taps[ph*t.MaxTaps:], s)
	}
	return t, nil
}

// buildShape computes the taps of one phase. pos is the source position
// relative to the first tap; lo..hi is the in-range window in tap indices.
func buildShape(k *kernel, o *Options, raw []float64, pos, scale float64, lo, hi int) []float64 {
	n := len(raw)
	sum := 0.0
	for j := range raw {
		raw[j] = k.weight((float64(j)-pos)/scale, o)
		sum += raw[j]
	}
	nearest := clampInt(int(math.Round(pos)), 0, n-1)
	if sum != 0 {
		inv := 1 / sum
		for j := range raw {
			raw[j] *= inv
		}
	} else {
		clear(raw)
		raw[nearest] = 1
	}

	count := hi - lo + 1
	out := make([]float64, count)
	switch o.Edge {
	case EdgeClamp:
		for j, w := range raw {
			out[clampInt(j-lo, 0, count-1)] += w
		}
	case EdgeTruncate, EdgeRenormalize:
		kept := 0.0
		for j, w := range raw {
			if j >= lo && j <= hi {
				out[j-lo] = w
				kept += w
			}
		}
		if o.Edge == EdgeRenormalize {
			if kept != 0 {
				inv := 1 / kept
				for t := range out {
					out[t] *= inv
				}
			} else {
				clear(out)
				out[clampInt(nearest-lo, 0, count-1)] = 1
			}
		}
	}
	return out
}

// phaseResolution returns the quantization grid for fractional positions:
// a multiple of the exact denominator of the output positions that is at
// least nPhases.
func phaseResolution(nPhases, inSize, outSize int) int64 {
	in, out := int64(inSize), int64(outSize)
	diff := in - out
	if diff < 0 {
		diff = -diff
	}
	den := 2 * out / gcd(2*out, gcd(diff, 2*in))
	n := int64(nPhases)
	if n <= den {
		return den
	}
	return den * ((n + den - 1) / den)
}

// Clear releases the derived arrays. It is safe on a nil, zero or already
// cleared Table.
func (t *Table) Clear() {
	if t == nil {
		return
	}
	*t = Table{}
}

// PhaseTaps returns the weights of one phase.
func (t *Table) PhaseTaps(phase int) []float64 {
	base := phase * t.MaxTaps
	return t.Taps[base : base+t.NTaps[phase]]
}

// Apply resamples src (at least InSize samples) into dst (at least OutSize
// samples).
func (t *Table) Apply(dst, src []float64) {
	for i := range t.OutSize {
		taps := t.PhaseTaps(t.Phase[i])
		in := src[t.Offset[i] : t.Offset[i]+len(taps)]
		sum := 0.0
		for j, w := range taps {
			sum += w * in[j]
		}
		dst[i] = sum
	}
}

// TapSum returns the sum of the weights of one phase.
func (t *Table) TapSum(phase int) float64 {
	sum := 0.0
	for _, w := range t.PhaseTaps(phase) {
		sum += w
	}
	return sum
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ceilDiv returns ceil(a / b) for b > 0.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
