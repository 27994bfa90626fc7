package pipeline

import (
	"image"

	"github.com/gogpu/vconv/video"
)

// compWriter stores codes of one component.
type compWriter struct {
	plane  int
	offset int
	stride int
	shift  uint
	word   int
	wsub   int
	hsub   int
	max    float32
}

func newCompWriter(fi video.FormatInfo, c video.Component, subsampled bool) compWriter {
	w := compWriter{
		plane:  c.Plane,
		offset: c.Offset,
		stride: c.Stride,
		shift:  uint(c.Shift),
		word:   fi.Word,
		max:    float32(uint32(1)<<c.Depth - 1),
	}
	if subsampled {
		w.wsub, w.hsub = c.WSub, c.HSub
	}
	return w
}

// put stores code as sample idx of a plane row.
func (w *compWriter) put(row []byte, idx int, code uint32) {
	i := w.offset + idx*w.stride
	v := code << w.shift
	row[i] = byte(v)
	if w.word == 2 {
		row[i+1] = byte(v >> 8)
	}
}

// row returns the plane row holding pixel row y.
func (w *compWriter) row(f *video.Frame, y int) []byte {
	return f.Planes[w.plane][(y>>w.hsub)*f.Stride[w.plane]:]
}

// quantize maps a normalized value to the nearest code in [0, maxCode].
func quantize(v, maxCode float32) uint32 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return uint32(maxCode)
	}
	return uint32(v*maxCode + 0.5)
}

// packer is the sink of a chain: it writes working lines into the
// destination region. Subsampled components are averaged over the region
// pixels that share a sample.
type packer struct {
	writers   [4]compWriter
	present   [4]bool
	chans     int
	region    image.Rectangle
	padOffset int
	padStride int
}

func newPacker(f video.Format, comp int, region image.Rectangle) *packer {
	fi := f.Info()
	p := &packer{region: region, padOffset: -1}
	if comp >= 0 {
		p.chans = 1
		p.writers[0] = newCompWriter(fi, fi.Comps[comp], false)
		p.present[0] = true
		return p
	}
	p.chans = 4
	for c, cd := range fi.Comps {
		if cd.Present() {
			p.writers[c] = newCompWriter(fi, cd, true)
			p.present[c] = true
		}
	}
	p.padOffset, p.padStride = fi.PadOffset, fi.PadStride
	return p
}

// write stores region rows r, r+1, ... from lines. All rows share one row
// of every subsampled component.
func (p *packer) write(f *video.Frame, r int, lines [][]float32) {
	x0 := p.region.Min.X
	y0 := p.region.Min.Y + r
	n := p.region.Dx()
	chans := p.chans
	for c := range chans {
		if !p.present[c] {
			continue
		}
		w := &p.writers[c]
		if w.wsub == 0 && w.hsub == 0 {
			for i, line := range lines {
				row := w.row(f, y0+i)
				for x := range n {
					w.put(row, x0+x, quantize(line[x*chans+c], w.max))
				}
			}
			continue
		}

		row := w.row(f, y0)
		step := 1 << w.wsub
		for cx := x0 >> w.wsub; cx<<w.wsub < x0+n; cx++ {
			px0 := max(cx<<w.wsub, x0) - x0
			px1 := min((cx<<w.wsub)+step, x0+n) - x0
			sum := float32(0)
			for _, line := range lines {
				for x := px0; x < px1; x++ {
					sum += line[x*chans+c]
				}
			}
			avg := sum / float32((px1-px0)*len(lines))
			w.put(row, cx, quantize(avg, w.max))
		}
	}

	if p.padOffset >= 0 {
		for i := range lines {
			row := f.Planes[0][(y0+i)*f.Stride[0]:]
			for x := range n {
				row[p.padOffset+(x0+x)*p.padStride] = 0xff
			}
		}
	}
}
