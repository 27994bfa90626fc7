package pipeline

import (
	"image"

	"github.com/gogpu/vconv/video"
)

// compReader reads one component of a frame as normalized float32 values.
type compReader struct {
	plane  int
	offset int
	stride int
	shift  uint
	mask   uint32
	word   int
	wsub   int
	hsub   int
	scale  float32
}

func newCompReader(fi video.FormatInfo, c video.Component, subsampled bool) compReader {
	r := compReader{
		plane:  c.Plane,
		offset: c.Offset,
		stride: c.Stride,
		shift:  uint(c.Shift),
		mask:   uint32(1)<<c.Depth - 1,
		word:   fi.Word,
		scale:  1 / float32(uint32(1)<<c.Depth-1),
	}
	if subsampled {
		r.wsub, r.hsub = c.WSub, c.HSub
	}
	return r
}

// read stores n samples of pixel row y starting at pixel x0 into
// dst[i*chans+ch].
func (r *compReader) read(f *video.Frame, y, x0, n int, dst []float32, ch, chans int) {
	row := f.Planes[r.plane][(y>>r.hsub)*f.Stride[r.plane]:]
	if r.word == 2 {
		for i := range n {
			idx := r.offset + ((x0+i)>>r.wsub)*r.stride
			v := uint32(row[idx]) | uint32(row[idx+1])<<8
			dst[i*chans+ch] = float32((v>>r.shift)&r.mask) * r.scale
		}
		return
	}
	for i := range n {
		idx := r.offset + ((x0+i)>>r.wsub)*r.stride
		dst[i*chans+ch] = float32((uint32(row[idx])>>r.shift)&r.mask) * r.scale
	}
}

// unpacker converts source rows of a region into working lines.
//
// In packed mode every line has 4 channels in canonical component order at
// full resolution; subsampled chroma is repeated. Missing alpha reads as 1
// and missing chroma of gray formats as the neutral code.
type unpacker struct {
	readers [4]compReader
	present [4]bool
	fill    [4]float32
	chans   int
	region  image.Rectangle
}

func newUnpacker(f video.Format, comp int, region image.Rectangle) *unpacker {
	fi := f.Info()
	u := &unpacker{region: region}
	if comp >= 0 {
		u.chans = 1
		u.readers[0] = newCompReader(fi, fi.Comps[comp], false)
		u.present[0] = true
		return u
	}

	u.chans = 4
	for c, cd := range fi.Comps {
		if cd.Present() {
			u.readers[c] = newCompReader(fi, cd, true)
			u.present[c] = true
		}
	}
	yDepth := fi.Comps[0].Depth
	mid := float32(uint32(1)<<(yDepth-1)) / float32(uint32(1)<<yDepth-1)
	u.fill = [4]float32{0, mid, mid, 1}
	return u
}

// read produces region row y.
func (u *unpacker) read(f *video.Frame, y int, line []float32) {
	fy := u.region.Min.Y + y
	n := u.region.Dx()
	for c := range u.chans {
		if u.present[c] {
			u.readers[c].read(f, fy, u.region.Min.X, n, line, c, u.chans)
			continue
		}
		v := u.fill[c]
		for i := c; i < len(line); i += u.chans {
			line[i] = v
		}
	}
}
