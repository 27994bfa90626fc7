package pipeline

import (
	"fmt"
	"image"

	"github.com/gogpu/vconv/video"
)

// pointOp transforms a produced line in place. y is the row of the node
// that produced it.
type pointOp interface {
	apply(line []float32, y int, st *chainState)
}

// node produces the lines of one intermediate image. Lines are cached in a
// per-band ring of ringCap entries indexed by row modulo ringCap.
type node struct {
	kind    StageKind
	index   int
	width   int
	height  int
	chans   int
	up      *node
	unpack  *unpacker
	taps    *tapTable
	ops     []pointOp
	ringCap int
}

// chain is one pull pipeline: a list of nodes feeding a packer. A packed
// conversion has a single chain over 4 channels; a per-component conversion
// has one single-channel chain per component.
type chain struct {
	comp    int
	chans   int
	nodes   []*node
	sink    *packer
	vertErr bool

	// rowY0 is the first destination row of the chain in its own row
	// space and rowSub the log2 row subsampling of that space.
	rowY0  int
	rowSub int
	// groupSub is the log2 number of chain rows the packer consumes at once.
	groupSub int
	rows     int
}

// ring is the line cache of one node.
type ring struct {
	lines [][]float32
	tags  []int
}

// chainState is the per-band mutable state of a chain.
type chainState struct {
	src    *video.Frame
	rings  []ring
	gather [][][]float32
	lines  [][]float32
	errs   []float32
}

func (p *Plan) compileChain(comp int, stages []Stage) (*chain, error) {
	if stages[0].Kind != StageUnpack || stages[len(stages)-1].Kind != StageRepack {
		return nil, fmt.Errorf("%w: chain %d must start with unpack and end with repack", ErrInvalidPlan, comp)
	}

	c := &chain{comp: comp, chans: 4}
	src, dst := p.Src, p.Dst
	if comp >= 0 {
		if comp > 3 || !p.In.Format.Info().Comps[comp].Present() || !p.Out.Format.Info().Comps[comp].Present() {
			return nil, fmt.Errorf("%w: component %d", ErrInvalidPlan, comp)
		}
		c.chans = 1
		src = compRect(p.Src, p.In.Format.Info().Comps[comp])
		dst = compRect(p.Dst, p.Out.Format.Info().Comps[comp])
		c.rowSub = p.Out.Format.Info().Comps[comp].HSub
	} else {
		_, c.groupSub = maxSub(p.Out.Format)
	}
	c.rowY0 = dst.Min.Y
	c.rows = dst.Dy()

	head := &node{
		kind:   StageUnpack,
		width:  src.Dx(),
		height: src.Dy(),
		chans:  c.chans,
		unpack: newUnpacker(p.In.Format, comp, src),
	}
	c.nodes = append(c.nodes, head)
	last := head
	dithered := false

	for _, s := range stages[1 : len(stages)-1] {
		if dithered {
			return nil, fmt.Errorf("%w: %v after dither", ErrInvalidPlan, s.Kind)
		}
		switch s.Kind {
		case StageMatrix:
			if comp >= 0 || s.Matrix == nil {
				return nil, fmt.Errorf("%w: matrix in chain %d", ErrInvalidPlan, comp)
			}
			last.ops = append(last.ops, newMatrixOp(s.Matrix))
		case StageResampleH, StageResampleV:
			if s.Table == nil {
				return nil, fmt.Errorf("%w: %v without table", ErrInvalidPlan, s.Kind)
			}
			n := &node{kind: s.Kind, index: len(c.nodes), chans: c.chans, up: last, taps: newTapTable(s.Table)}
			n.width, n.height = last.width, last.height
			in := &n.width
			if s.Kind == StageResampleV {
				in = &n.height
			}
			if s.Table.InSize != *in {
				return nil, fmt.Errorf("%w: %v table input %d, line extent %d",
					ErrInvalidPlan, s.Kind, s.Table.InSize, *in)
			}
			*in = s.Table.OutSize
			c.nodes = append(c.nodes, n)
			last = n
		case StageDither:
			op := newDitherOp(s.Dither, p.Out.Format, comp, dst)
			c.vertErr = s.Dither == DitherVertErr
			last.ops = append(last.ops, op)
			dithered = true
		default:
			return nil, fmt.Errorf("%w: unexpected %v inside chain", ErrInvalidPlan, s.Kind)
		}
	}

	if last.width != dst.Dx() || last.height != dst.Dy() {
		return nil, fmt.Errorf("%w: chain %d produces %dx%d for a %dx%d region",
			ErrInvalidPlan, comp, last.width, last.height, dst.Dx(), dst.Dy())
	}
	c.sink = newPacker(p.Out.Format, comp, dst)

	// Each ring holds what its consumer reads at once.
	for i, n := range c.nodes {
		switch {
		case i == len(c.nodes)-1:
			n.ringCap = 1 << c.groupSub
		case c.nodes[i+1].kind == StageResampleV:
			n.ringCap = c.nodes[i+1].taps.maxTaps
		default:
			n.ringCap = 1
		}
	}
	return c, nil
}

// compRect maps a frame rectangle to the samples of a subsampled component
// that it touches.
func compRect(r image.Rectangle, c video.Component) image.Rectangle {
	return image.Rect(
		r.Min.X>>c.WSub, r.Min.Y>>c.HSub,
		subCeil(r.Max.X, c.WSub), subCeil(r.Max.Y, c.HSub),
	)
}

func subCeil(n, s int) int {
	return (n + (1 << s) - 1) >> s
}

// floats returns the scratch size of one band in float32 values.
func (c *chain) floats() int {
	n := 0
	for _, nd := range c.nodes {
		n += nd.ringCap * nd.width * nd.chans
	}
	if c.vertErr {
		last := c.nodes[len(c.nodes)-1]
		n += last.width * last.chans
	}
	return n
}

func (c *chain) newState() *chainState {
	st := &chainState{
		rings:  make([]ring, len(c.nodes)),
		gather: make([][][]float32, len(c.nodes)),
		lines:  make([][]float32, 1<<c.groupSub),
	}
	for i, n := range c.nodes {
		r := &st.rings[i]
		r.tags = make([]int, n.ringCap)
		r.lines = make([][]float32, n.ringCap)
		backing := make([]float32, n.ringCap*n.width*n.chans)
		for j := range r.lines {
			r.lines[j] = backing[j*n.width*n.chans : (j+1)*n.width*n.chans]
		}
		if n.kind == StageResampleV {
			st.gather[i] = make([][]float32, n.taps.maxTaps)
		}
	}
	if c.vertErr {
		last := c.nodes[len(c.nodes)-1]
		st.errs = make([]float32, last.width*last.chans)
	}
	return st
}

func (st *chainState) reset(src *video.Frame) {
	st.src = src
	for i := range st.rings {
		tags := st.rings[i].tags
		for j := range tags {
			tags[j] = -1
		}
	}
	clear(st.errs)
}

// get returns line y of n, producing it if it is not cached.
func (n *node) get(st *chainState, y int) []float32 {
	r := &st.rings[n.index]
	slot := y % n.ringCap
	line := r.lines[slot]
	if r.tags[slot] == y {
		return line
	}
	switch n.kind {
	case StageUnpack:
		n.unpack.read(st.src, y, line)
	case StageResampleH:
		n.resampleH(st, y, line)
	case StageResampleV:
		n.resampleV(st, y, line)
	}
	for _, op := range n.ops {
		op.apply(line, y, st)
	}
	r.tags[slot] = y
	return line
}

// run converts destination frame rows [fy0, fy1) of this chain.
func (c *chain) run(st *chainState, src, dst *video.Frame, fy0, fy1 int) {
	st.reset(src)
	r0 := (fy0 >> c.rowSub) - c.rowY0
	r1 := subCeil(fy1, c.rowSub) - c.rowY0
	last := c.nodes[len(c.nodes)-1]
	for r := max(r0, 0); r < min(r1, c.rows); {
		y := c.rowY0 + r
		end := min((((y>>c.groupSub)+1)<<c.groupSub)-c.rowY0, r1, c.rows)
		lines := st.lines[:end-r]
		for i := range lines {
			lines[i] = last.get(st, r+i)
		}
		c.sink.write(dst, r, lines)
		r = end
	}
}
