// Package pipeline compiles conversion stages into a line-based executor
// and runs it over frames.
//
// A Plan is built from a list of Stage descriptors and never reads pixel
// data. Execute pulls destination lines through a chain of nodes (unpack,
// horizontal and vertical resampling), each caching the lines its consumer
// needs in a small ring. Color matrices and dithering run in place on the
// line produced by a node.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/internal/color"
	"github.com/gogpu/vconv/resample"
	"github.com/gogpu/vconv/video"
)

// ErrInvalidPlan is returned when a stage list cannot be compiled.
var ErrInvalidPlan = errors.New("pipeline: invalid stage list")

// StageKind identifies a stage.
type StageKind uint8

const (
	StageCopy StageKind = iota
	StageUnpack
	StageMatrix
	StageResampleH
	StageResampleV
	StageDither
	StageRepack
	StageBorderFill
)

// String returns the name of the stage kind.
func (k StageKind) String() string {
	switch k {
	case StageCopy:
		return "copy"
	case StageUnpack:
		return "unpack"
	case StageMatrix:
		return "matrix"
	case StageResampleH:
		return "resample-h"
	case StageResampleV:
		return "resample-v"
	case StageDither:
		return "dither"
	case StageRepack:
		return "repack"
	case StageBorderFill:
		return "border-fill"
	default:
		return fmt.Sprintf("StageKind(%d)", k)
	}
}

// DitherMethod selects how samples are quantized to the destination depth.
type DitherMethod uint8

const (
	// DitherNone rounds to the nearest code.
	DitherNone DitherMethod = iota
	// DitherVertErr carries the rounding error to the sample below.
	DitherVertErr
	// DitherHalftone adds an 8x8 ordered threshold pattern.
	DitherHalftone
	// DitherHorizErr carries the rounding error to the sample to the right.
	DitherHorizErr
)

// String returns the configuration name of the method.
func (d DitherMethod) String() string {
	switch d {
	case DitherNone:
		return "none"
	case DitherVertErr:
		return "verterr"
	case DitherHalftone:
		return "halftone"
	case DitherHorizErr:
		return "horizerr"
	default:
		return fmt.Sprintf("DitherMethod(%d)", d)
	}
}

// ColorMatrix is a color transform on normalized code values.
//
// Without Gamma, Matrix is the whole transform. With Gamma, Matrix maps
// source codes to non-linear R'G'B' and Gamma finishes the conversion.
type ColorMatrix struct {
	Matrix f64.Aff4
	Gamma  *Gamma
}

// Gamma converts R'G'B' through linear light: ToLinear, the Primaries
// matrix, FromLinear, then Post to destination codes.
type Gamma struct {
	ToLinear   *color.LUT
	Primaries  f64.Mat3
	FromLinear *color.LUT
	Post       f64.Aff4
}

// Stage is one step of a conversion. Each kind uses a subset of the fields.
type Stage struct {
	Kind StageKind

	// Comp is the component index of a per-component chain, or -1 for the
	// packed chain.
	Comp int

	// Matrix is set for StageMatrix.
	Matrix *ColorMatrix

	// Table is set for StageResampleH and StageResampleV.
	Table *resample.Table

	// Dither is set for StageDither.
	Dither DitherMethod

	// Border holds destination code values per canonical component for
	// StageBorderFill.
	Border [4]uint32
}

// String returns a short description of the stage.
func (s Stage) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	if s.Comp >= 0 {
		fmt.Fprintf(&b, "[%d]", s.Comp)
	}
	switch s.Kind {
	case StageResampleH, StageResampleV:
		if s.Table != nil {
			fmt.Fprintf(&b, "(%v %d->%d taps=%d phases=%d)",
				s.Table.Method, s.Table.InSize, s.Table.OutSize, s.Table.MaxTaps, s.Table.NPhases)
		}
	case StageDither:
		fmt.Fprintf(&b, "(%v)", s.Dither)
	case StageMatrix:
		if s.Matrix != nil && s.Matrix.Gamma != nil {
			b.WriteString("(gamma)")
		}
	case StageBorderFill:
		fmt.Fprintf(&b, "(%v)", s.Border)
	}
	return b.String()
}

// Plan is a compiled conversion between two frame descriptors.
//
// A Plan is immutable and safe for concurrent use by multiple Execute calls.
type Plan struct {
	In, Out video.Info

	// Src and Dst are the converted regions in frame coordinates.
	Src, Dst image.Rectangle

	// Stages lists the stages in execution order.
	Stages []Stage

	bands  int
	group  int // destination rows per chroma row
	copy   bool
	border *borderFill
	chains []*chain

	scratchFloats int
	ranges        [][2]int
	free          chan *execution
}

// Options tunes the executor.
type Options struct {
	// Bands is the number of row bands a frame is split into.
	Bands int
}

// Compile builds a Plan from stages. src and dst are the regions of in and
// out that are converted; they must be non-empty and inside the frames.
func Compile(in, out video.Info, src, dst image.Rectangle, stages []Stage, opts Options) (*Plan, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if src.Empty() || !src.In(image.Rect(0, 0, in.Width, in.Height)) {
		return nil, fmt.Errorf("%w: source region %v", ErrInvalidPlan, src)
	}
	if dst.Empty() || !dst.In(image.Rect(0, 0, out.Width, out.Height)) {
		return nil, fmt.Errorf("%w: destination region %v", ErrInvalidPlan, dst)
	}

	_, hsub := maxSub(out.Format)
	p := &Plan{
		In:     in,
		Out:    out,
		Src:    src,
		Dst:    dst,
		Stages: stages,
		bands:  max(opts.Bands, 1),
		group:  1 << hsub,
	}

	byComp := map[int][]Stage{}
	var order []int
	for _, s := range stages {
		switch s.Kind {
		case StageBorderFill:
			p.border = newBorderFill(out, dst, s.Border)
			continue
		case StageCopy:
			p.copy = true
			continue
		}
		if _, ok := byComp[s.Comp]; !ok {
			order = append(order, s.Comp)
		}
		byComp[s.Comp] = append(byComp[s.Comp], s)
	}
	if p.copy && len(byComp) > 0 {
		return nil, fmt.Errorf("%w: copy combined with line stages", ErrInvalidPlan)
	}
	if !p.copy && len(byComp) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrInvalidPlan)
	}

	for _, comp := range order {
		c, err := p.compileChain(comp, byComp[comp])
		if err != nil {
			return nil, err
		}
		if c.vertErr {
			p.bands = 1
		}
		p.chains = append(p.chains, c)
		p.scratchFloats += c.floats()
	}

	p.ranges = p.splitBands()
	p.free = make(chan *execution, 1)
	p.free <- p.newExecution()
	return p, nil
}

// ScratchBytes returns the size of one band's scratch memory.
func (p *Plan) ScratchBytes() int {
	return p.scratchFloats * 4
}

// Bands returns the number of row bands Execute splits a frame into.
func (p *Plan) Bands() int {
	return p.bands
}

// IsCopy reports whether the plan copies bytes without conversion.
func (p *Plan) IsCopy() bool {
	return p.copy
}

// String lists the stages, e.g. "unpack > matrix > resample-h(...) > repack".
func (p *Plan) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " > ")
}

// maxSub returns the largest component subsampling of f.
func maxSub(f video.Format) (wsub, hsub int) {
	for _, c := range f.Info().Comps {
		if c.Present() {
			wsub = max(wsub, c.WSub)
			hsub = max(hsub, c.HSub)
		}
	}
	return wsub, hsub
}
