package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/vconv/video"
)

// ErrFrameMismatch is returned when a frame does not match the plan.
var ErrFrameMismatch = errors.New("pipeline: frame does not match plan")

// Runner runs n independent tasks and returns when all of them are done.
type Runner interface {
	Run(n int, fn func(task int))
}

type serial struct{}

func (serial) Run(n int, fn func(task int)) {
	for i := range n {
		fn(i)
	}
}

// scratch is the per-band working memory of a plan.
type scratch struct {
	chains []*chainState
}

func (p *Plan) newScratch() *scratch {
	s := &scratch{chains: make([]*chainState, len(p.chains))}
	for i, c := range p.chains {
		s.chains[i] = c.newState()
	}
	return s
}

// execution holds the scratch of every band for one Execute call. The band
// function is bound once so running a frame does not allocate.
type execution struct {
	p        *Plan
	src, dst *video.Frame
	bands    []*scratch
	band     func(task int)
}

func (p *Plan) newExecution() *execution {
	e := &execution{p: p, bands: make([]*scratch, len(p.ranges))}
	if !p.copy {
		for i := range e.bands {
			e.bands[i] = p.newScratch()
		}
	}
	e.band = e.run
	return e
}

func (e *execution) run(task int) {
	p, b := e.p, e.p.ranges[task]
	if p.copy {
		p.copyRows(e.src, e.dst, b[0], b[1])
		return
	}
	s := e.bands[task]
	for i, c := range p.chains {
		c.run(s.chains[i], e.src, e.dst, b[0], b[1])
	}
}

// acquire takes the plan's idle execution, or builds another one when a
// concurrent Execute holds it.
func (p *Plan) acquire() *execution {
	select {
	case e := <-p.free:
		return e
	default:
		return p.newExecution()
	}
}

func (p *Plan) release(e *execution) {
	e.src, e.dst = nil, nil
	for _, s := range e.bands {
		if s == nil {
			continue
		}
		for _, st := range s.chains {
			st.src = nil
		}
	}
	select {
	case p.free <- e:
	default:
	}
}

func matches(f *video.Frame, info video.Info) bool {
	return f != nil && f.Info.Format == info.Format &&
		f.Info.Width == info.Width && f.Info.Height == info.Height
}

// Execute converts src into dst. Rows of the destination region are split
// into bands that r runs concurrently; a nil r runs them in order on the
// calling goroutine. Pixels of dst outside the region are written only by
// a border-fill stage.
func (p *Plan) Execute(src, dst *video.Frame, r Runner) error {
	if !matches(src, p.In) {
		return fmt.Errorf("%w: source is not %v", ErrFrameMismatch, p.In)
	}
	if !matches(dst, p.Out) {
		return fmt.Errorf("%w: destination is not %v", ErrFrameMismatch, p.Out)
	}
	if r == nil {
		r = serial{}
	}

	if p.border != nil {
		p.border.fill(dst)
	}

	e := p.acquire()
	e.src, e.dst = src, dst
	r.Run(len(p.ranges), e.band)
	p.release(e)
	return nil
}

// splitBands divides the destination rows into at most p.bands ranges whose
// inner boundaries are multiples of the chroma row group.
func (p *Plan) splitBands() [][2]int {
	y0, y1 := p.Dst.Min.Y, p.Dst.Max.Y
	h := y1 - y0
	bands := make([][2]int, 0, p.bands)
	start := y0
	for i := 1; i <= p.bands && start < y1; i++ {
		end := y1
		if i < p.bands {
			end = (y0 + i*h/p.bands) / p.group * p.group
		}
		if end <= start {
			continue
		}
		bands = append(bands, [2]int{start, end})
		start = end
	}
	return bands
}

// copyRows copies destination rows [fy0, fy1) from the matching source rows.
func (p *Plan) copyRows(src, dst *video.Frame, fy0, fy1 int) {
	fi := p.Out.Format.Info()
	d := p.Src.Min.Sub(p.Dst.Min)
	for pl := range fi.Planes {
		l := fi.Layout[pl]
		dr := planeRect(image.Rect(p.Dst.Min.X, fy0, p.Dst.Max.X, fy1), l)
		sr := planeRect(image.Rect(p.Dst.Min.X, fy0, p.Dst.Max.X, fy1).Add(d), l)
		n := dr.Dx() * l.Bytes
		for y := range dr.Dy() {
			so := (sr.Min.Y+y)*src.Stride[pl] + sr.Min.X*l.Bytes
			do := (dr.Min.Y+y)*dst.Stride[pl] + dr.Min.X*l.Bytes
			copy(dst.Planes[pl][do:do+n], src.Planes[pl][so:so+n])
		}
	}
}

// planeRect maps frame pixels to the blocks and rows of a plane.
func planeRect(r image.Rectangle, l video.PlaneLayout) image.Rectangle {
	return image.Rect(
		r.Min.X>>l.WSub, r.Min.Y>>l.HSub,
		subCeil(r.Max.X, l.WSub), subCeil(r.Max.Y, l.HSub),
	)
}
