package pipeline

import "github.com/gogpu/vconv/resample"

// tapTable is a resample.Table with float32 weights.
type tapTable struct {
	offset  []int
	phase   []int
	ntaps   []int
	maxTaps int
	taps    []float32
}

func newTapTable(t *resample.Table) *tapTable {
	tt := &tapTable{
		offset:  t.Offset,
		phase:   t.Phase,
		ntaps:   t.NTaps,
		maxTaps: t.MaxTaps,
		taps:    make([]float32, len(t.Taps)),
	}
	for i, w := range t.Taps {
		tt.taps[i] = float32(w)
	}
	return tt
}

// weights returns the taps and first input index of output i.
func (t *tapTable) weights(i int) ([]float32, int) {
	ph := t.phase[i]
	base := ph * t.maxTaps
	return t.taps[base : base+t.ntaps[ph]], t.offset[i]
}

// resampleH produces row y by filtering the upstream row along x.
func (n *node) resampleH(st *chainState, y int, dst []float32) {
	src := n.up.get(st, y)
	t := n.taps
	if n.chans == 4 {
		for x := range n.width {
			w, off := t.weights(x)
			in := src[off*4 : (off+len(w))*4]
			var r, g, b, a float32
			for j, wj := range w {
				px := in[j*4 : j*4+4 : j*4+4]
				r += wj * px[0]
				g += wj * px[1]
				b += wj * px[2]
				a += wj * px[3]
			}
			out := dst[x*4 : x*4+4 : x*4+4]
			out[0], out[1], out[2], out[3] = r, g, b, a
		}
		return
	}
	for x := range n.width {
		w, off := t.weights(x)
		in := src[off : off+len(w)]
		sum := float32(0)
		for j, wj := range w {
			sum += wj * in[j]
		}
		dst[x] = sum
	}
}

// resampleV produces row y as a weighted sum of consecutive upstream rows.
func (n *node) resampleV(st *chainState, y int, dst []float32) {
	w, off := n.taps.weights(y)
	lines := st.gather[n.index][:len(w)]
	for j := range lines {
		lines[j] = n.up.get(st, off+j)
	}

	w0, l0 := w[0], lines[0]
	for i := range dst {
		dst[i] = w0 * l0[i]
	}
	for j := 1; j < len(lines); j++ {
		wj, lj := w[j], lines[j][:len(dst)]
		for i := range dst {
			dst[i] += wj * lj[i]
		}
	}
}
