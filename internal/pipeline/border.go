package pipeline

import (
	"image"

	"github.com/gogpu/vconv/video"
)

// borderFill writes constant codes to every destination sample that is not
// entirely covered by the converted region. Chroma samples that straddle
// the region edge are rewritten by the conversion afterwards.
type borderFill struct {
	info    video.Info
	region  image.Rectangle
	writers [4]compWriter
	codes   [4]uint32
	present [4]bool

	padOffset int
	padStride int
}

func newBorderFill(out video.Info, region image.Rectangle, codes [4]uint32) *borderFill {
	fi := out.Format.Info()
	b := &borderFill{
		info:      out,
		region:    region,
		padOffset: fi.PadOffset,
		padStride: fi.PadStride,
	}
	for c, cd := range fi.Comps {
		if !cd.Present() {
			continue
		}
		b.writers[c] = newCompWriter(fi, cd, true)
		b.present[c] = true
		b.codes[c] = min(codes[c], uint32(1)<<cd.Depth-1)
	}
	return b
}

// inside reports whether every frame pixel of sample (cx, cy) of component
// c lies in the region.
func (b *borderFill) inside(c, cx, cy int) bool {
	w := &b.writers[c]
	px := image.Rect(cx<<w.wsub, cy<<w.hsub, (cx+1)<<w.wsub, (cy+1)<<w.hsub)
	return px.Intersect(image.Rect(0, 0, b.info.Width, b.info.Height)).In(b.region)
}

func (b *borderFill) fill(f *video.Frame) {
	if b.region == image.Rect(0, 0, b.info.Width, b.info.Height) {
		return
	}
	for c := range 4 {
		if !b.present[c] {
			continue
		}
		w := &b.writers[c]
		cw, ch := b.info.CompWidth(c), b.info.CompHeight(c)
		for cy := range ch {
			row := f.Planes[w.plane][cy*f.Stride[w.plane]:]
			for cx := range cw {
				if !b.inside(c, cx, cy) {
					w.put(row, cx, b.codes[c])
				}
			}
		}
	}
	if b.padOffset >= 0 {
		pt := image.Point{}
		for pt.Y = 0; pt.Y < b.info.Height; pt.Y++ {
			row := f.Planes[0][pt.Y*f.Stride[0]:]
			for pt.X = 0; pt.X < b.info.Width; pt.X++ {
				if !pt.In(b.region) {
					row[b.padOffset+pt.X*b.padStride] = 0xff
				}
			}
		}
	}
}
