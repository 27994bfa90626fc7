package vconv

import (
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/internal/color"
	"github.com/gogpu/vconv/internal/pipeline"
	"github.com/gogpu/vconv/resample"
	"github.com/gogpu/vconv/video"
)

// workingDepth is the bit depth at which the working representation no
// longer needs dithering.
const workingDepth = 16

// planner builds the stage list of one conversion.
type planner struct {
	in, out  video.Info
	cfg      Config
	src, dst image.Rectangle
	opts     resample.Options
	matrix   *pipeline.ColorMatrix
}

// buildPlan resolves colorimetry and regions and compiles a plan converting
// frames described by in into frames described by out.
func buildPlan(in, out video.Info, cfg Config) (*pipeline.Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, info := range []video.Info{in, out} {
		if !info.Format.IsValid() {
			return nil, fmt.Errorf("%w: %v", ErrIncompatibleFormat, info.Format)
		}
		if info.Width <= 0 || info.Height <= 0 {
			return nil, fmt.Errorf("vconv: %w: frame %dx%d", ErrInvalidExtent, info.Width, info.Height)
		}
	}
	in.Colorimetry = in.Colorimetry.Resolve(in.Format, in.Height)
	out.Colorimetry = out.Colorimetry.Resolve(out.Format, out.Height)

	pl := &planner{in: in, out: out, cfg: cfg, opts: cfg.ResampleOptions()}
	var err error
	if pl.src, err = region("source", cfg.SrcX, cfg.SrcY, cfg.SrcWidth, cfg.SrcHeight, in); err != nil {
		return nil, err
	}
	if pl.dst, err = region("destination", cfg.DestX, cfg.DestY, cfg.DestWidth, cfg.DestHeight, out); err != nil {
		return nil, err
	}

	stages, err := pl.stages()
	if err != nil {
		return nil, err
	}

	workers := cfg.Threads
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	plan, err := pipeline.Compile(in, out, pl.src, pl.dst, stages, pipeline.Options{Bands: workers})
	if err != nil {
		return nil, fmt.Errorf("vconv: compile: %w", err)
	}
	if plan.Bands() < workers && cfg.DitherMethod == DitherVertErr && !plan.IsCopy() {
		Logger().Warn("vconv: verterr dithering converts in a single band", "threads", workers)
	}

	log := Logger()
	log.Debug("vconv: plan built",
		"in", in.String(),
		"out", out.String(),
		"src", pl.src.String(),
		"dst", pl.dst.String(),
		"stages", plan.String(),
		"bands", plan.Bands(),
		"scratch", humanize.IBytes(uint64(plan.ScratchBytes()*plan.Bands())),
	)
	return plan, nil
}

// region resolves a configured rectangle against its frame.
func region(name string, x, y, w, h int, info video.Info) (image.Rectangle, error) {
	if w == -1 {
		w = info.Width - x
	}
	if h == -1 {
		h = info.Height - y
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: %s region %dx%d at %d,%d in %dx%d",
			ErrRegionOutOfBounds, name, w, h, x, y, info.Width, info.Height)
	}
	r := image.Rect(x, y, x+w, y+h)
	if !r.In(image.Rect(0, 0, info.Width, info.Height)) {
		return image.Rectangle{}, fmt.Errorf("%w: %s region %v in %dx%d",
			ErrRegionOutOfBounds, name, r, info.Width, info.Height)
	}
	return r, nil
}

func (pl *planner) stages() ([]pipeline.Stage, error) {
	var stages []pipeline.Stage
	if pl.cfg.FillBorder && pl.dst != image.Rect(0, 0, pl.out.Width, pl.out.Height) {
		codes, err := borderCodes(pl.out, pl.cfg.BorderARGB)
		if err != nil {
			return nil, err
		}
		stages = append(stages, pipeline.Stage{Kind: pipeline.StageBorderFill, Comp: -1, Border: codes})
	}

	if pl.canCopy() {
		return append(stages, pipeline.Stage{Kind: pipeline.StageCopy, Comp: -1}), nil
	}

	same := pl.in.Format == pl.out.Format && pl.in.Colorimetry == pl.out.Colorimetry
	if same && pl.out.Format.Info().PadOffset < 0 {
		return pl.componentStages(stages)
	}

	m, err := colorMatrix(pl.in, pl.out, pl.cfg)
	if err != nil {
		return nil, err
	}
	pl.matrix = m
	chain, err := pl.chain(-1, pl.src.Dx(), pl.src.Dy(), pl.dst.Dx(), pl.dst.Dy(), 0, 0)
	if err != nil {
		return nil, err
	}
	return append(stages, chain...), nil
}

// canCopy reports whether the region can be copied byte for byte.
func (pl *planner) canCopy() bool {
	if pl.in.Format != pl.out.Format || pl.in.Colorimetry != pl.out.Colorimetry ||
		pl.src.Size() != pl.dst.Size() {
		return false
	}
	wsub, hsub := maxSub(pl.in.Format)
	return aligned(pl.src, pl.in, wsub, hsub) && aligned(pl.dst, pl.out, wsub, hsub)
}

// aligned reports whether r starts on a subsampling block and ends on one or
// at the frame edge.
func aligned(r image.Rectangle, info video.Info, wsub, hsub int) bool {
	mx, my := 1<<wsub-1, 1<<hsub-1
	return r.Min.X&mx == 0 && r.Min.Y&my == 0 &&
		(r.Max.X&mx == 0 || r.Max.X == info.Width) &&
		(r.Max.Y&my == 0 || r.Max.Y == info.Height)
}

// componentStages resamples every component at its own resolution. Used
// when only the geometry changes.
func (pl *planner) componentStages(stages []pipeline.Stage) ([]pipeline.Stage, error) {
	fi := pl.out.Format.Info()
	for c, comp := range fi.Comps {
		if !comp.Present() {
			continue
		}
		inW, inH := compExtent(pl.src, comp)
		outW, outH := compExtent(pl.dst, comp)
		var hShift, vShift float64
		if c == 1 || c == 2 {
			if pl.out.ChromaSite&video.ChromaSiteHCosited != 0 {
				hShift = cositedShift(comp.WSub, inW, outW)
			}
			if pl.out.ChromaSite&video.ChromaSiteVCosited != 0 {
				vShift = cositedShift(comp.HSub, inH, outH)
			}
		}
		chain, err := pl.chain(c, inW, inH, outW, outH, hShift, vShift)
		if err != nil {
			return nil, err
		}
		stages = append(stages, chain...)
	}
	return stages, nil
}

// cositedShift is the input offset that keeps chroma subsampled by 2^sub
// aligned with the first luma sample of its block.
func cositedShift(sub, in, out int) float64 {
	if sub == 0 {
		return 0
	}
	f := float64(int(1) << sub)
	d := (f - 1) / (2 * f)
	return d * (1 - float64(in)/float64(out))
}

func compExtent(r image.Rectangle, c video.Component) (w, h int) {
	x0, y0 := r.Min.X>>c.WSub, r.Min.Y>>c.HSub
	x1 := (r.Max.X + 1<<c.WSub - 1) >> c.WSub
	y1 := (r.Max.Y + 1<<c.HSub - 1) >> c.HSub
	return x1 - x0, y1 - y0
}

// chain emits the stages of one component chain, or of the packed chain
// when comp is -1.
func (pl *planner) chain(comp, inW, inH, outW, outH int, hShift, vShift float64) ([]pipeline.Stage, error) {
	stages := []pipeline.Stage{{Kind: pipeline.StageUnpack, Comp: comp}}

	var resize []pipeline.Stage
	if inW != outW || hShift != 0 {
		t, err := pl.table(hShift, inW, outW)
		if err != nil {
			return nil, err
		}
		resize = append(resize, pipeline.Stage{Kind: pipeline.StageResampleH, Comp: comp, Table: t})
	}
	if inH != outH || vShift != 0 {
		t, err := pl.table(vShift, inH, outH)
		if err != nil {
			return nil, err
		}
		v := pipeline.Stage{Kind: pipeline.StageResampleV, Comp: comp, Table: t}
		if outW < inW {
			resize = append(resize, v)
		} else {
			resize = append([]pipeline.Stage{v}, resize...)
		}
	}

	matrix := pl.matrix != nil && comp < 0
	shrinks := outW*outH < inW*inH
	if matrix && !shrinks {
		stages = append(stages, pipeline.Stage{Kind: pipeline.StageMatrix, Comp: comp, Matrix: pl.matrix})
	}
	stages = append(stages, resize...)
	if matrix && shrinks {
		stages = append(stages, pipeline.Stage{Kind: pipeline.StageMatrix, Comp: comp, Matrix: pl.matrix})
	}

	inDepth, outDepth := pl.in.Format.Depth(), pl.out.Format.Depth()
	if outDepth < workingDepth && (matrix || len(resize) > 0 || inDepth > outDepth) {
		stages = append(stages, pipeline.Stage{Kind: pipeline.StageDither, Comp: comp, Dither: pl.cfg.DitherMethod})
	}
	return append(stages, pipeline.Stage{Kind: pipeline.StageRepack, Comp: comp}), nil
}

func (pl *planner) table(shift float64, in, out int) (*resample.Table, error) {
	t, err := resample.New(pl.cfg.ResamplerMethod, out, pl.cfg.ResamplerTaps, shift, in, out, &pl.opts)
	if err != nil {
		return nil, fmt.Errorf("vconv: %w", err)
	}
	return t, nil
}

func space(info video.Info) color.Space {
	return color.Space{Family: info.Format.Family(), Colorimetry: info.Colorimetry, Depth: info.Format.Depth()}
}

// colorMatrix returns the color transform from in codes to out codes, or nil
// when it is the identity.
func colorMatrix(in, out video.Info, cfg Config) (*pipeline.ColorMatrix, error) {
	dec, err := color.Decode(space(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompatibleFormat, err)
	}
	enc, err := color.Encode(space(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompatibleFormat, err)
	}

	g, err := gamma(in.Colorimetry, out.Colorimetry, cfg)
	if err != nil {
		return nil, err
	}
	if g != nil {
		g.Post = enc
		return &pipeline.ColorMatrix{Matrix: dec, Gamma: g}, nil
	}

	m := color.Mul(enc, dec)
	if out.Format.IsGray() {
		// Only luma is stored.
		copy(m[4:], []float64{0, 1, 0, 0, 0, 0, 1, 0})
	}
	if color.IsIdentity(m, 1e-9) {
		return nil, nil
	}
	return &pipeline.ColorMatrix{Matrix: m}, nil
}

// gamma returns the linear-light step between two colorimetries, or nil when
// the configuration does not ask for one or nothing differs.
func gamma(in, out video.Colorimetry, cfg Config) (*pipeline.Gamma, error) {
	remap := cfg.GammaMode == GammaRemap && in.Transfer != out.Transfer
	convert := cfg.PrimariesMode == PrimariesConvert && in.Primaries != out.Primaries
	if !remap && !convert {
		return nil, nil
	}

	from, ok := color.TransferCurve(in.Transfer)
	if !ok {
		Logger().Warn("vconv: no curve for source transfer, keeping non-linear values", "transfer", in.Transfer)
		return nil, nil
	}
	to := from
	if remap {
		if to, ok = color.TransferCurve(out.Transfer); !ok {
			Logger().Warn("vconv: no curve for destination transfer, keeping non-linear values", "transfer", out.Transfer)
			return nil, nil
		}
	}

	prim := f64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if convert {
		var err error
		prim, err = color.PrimariesMatrix(in.Primaries, out.Primaries)
		if errors.Is(err, color.ErrUnsupported) {
			Logger().Warn("vconv: primaries not converted", "err", err)
			prim = f64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
		} else if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIncompatibleFormat, err)
		}
	}
	return &pipeline.Gamma{
		ToLinear:   color.NewLUT(from.ToLinear),
		Primaries:  prim,
		FromLinear: color.NewLUT(to.FromLinear),
	}, nil
}

// borderCodes converts an ARGB border color to destination code values in
// canonical component order.
func borderCodes(out video.Info, argb uint32) ([4]uint32, error) {
	enc, err := color.Encode(space(out))
	if err != nil {
		return [4]uint32{}, fmt.Errorf("%w: %w", ErrIncompatibleFormat, err)
	}
	rgb := f64.Vec3{
		float64(argb>>16&0xff) / 255,
		float64(argb>>8&0xff) / 255,
		float64(argb&0xff) / 255,
	}
	v := color.Apply(enc, rgb)
	vals := [4]float64{v[0], v[1], v[2], float64(argb>>24) / 255}

	var codes [4]uint32
	for c, comp := range out.Format.Info().Comps {
		if !comp.Present() {
			continue
		}
		maxCode := float64(uint32(1)<<comp.Depth - 1)
		codes[c] = uint32(math.Round(math.Min(math.Max(vals[c], 0), 1) * maxCode))
	}
	return codes, nil
}

func maxSub(f video.Format) (wsub, hsub int) {
	for _, c := range f.Info().Comps {
		if c.Present() {
			wsub = max(wsub, c.WSub)
			hsub = max(hsub, c.HSub)
		}
	}
	return wsub, hsub
}
