package pipeline

import (
	"image"
	"math/rand/v2"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/internal/parallel"
	"github.com/gogpu/vconv/resample"
	"github.com/gogpu/vconv/video"
)

func newFrame(t testing.TB, f video.Format, w, h int) *video.Frame {
	t.Helper()
	fr, err := video.NewFrame(video.NewInfo(f, w, h))
	require.NoError(t, err)
	return fr
}

func randomFrame(t testing.TB, f video.Format, w, h int, seed uint64) *video.Frame {
	t.Helper()
	fr := newFrame(t, f, w, h)
	rng := rand.New(rand.NewPCG(seed, 1))
	for p := range fr.Info.Planes() {
		for i := range fr.Planes[p] {
			fr.Planes[p][i] = byte(rng.IntN(256))
		}
	}
	return fr
}

func full(info video.Info) image.Rectangle {
	return image.Rect(0, 0, info.Width, info.Height)
}

func packed(kinds ...Stage) []Stage {
	out := []Stage{{Kind: StageUnpack, Comp: -1}}
	for _, s := range kinds {
		s.Comp = -1
		out = append(out, s)
	}
	return append(out, Stage{Kind: StageRepack, Comp: -1})
}

func table(t testing.TB, m resample.Method, taps int, shift float64, in, out int) *resample.Table {
	t.Helper()
	tab, err := resample.New(m, 1, taps, shift, in, out, nil)
	require.NoError(t, err)
	return tab
}

func TestCompileErrors(t *testing.T) {
	in := video.NewInfo(video.FormatRGBA, 4, 4)
	out := video.NewInfo(video.FormatRGBA, 4, 4)
	r := full(in)

	tests := []struct {
		name     string
		src, dst image.Rectangle
		stages   []Stage
	}{
		{"no stages", r, r, nil},
		{"source outside", image.Rect(2, 2, 6, 6), r, packed()},
		{"empty destination", r, image.Rect(1, 1, 1, 3), packed()},
		{"missing unpack", r, r, []Stage{{Kind: StageRepack, Comp: -1}}},
		{"copy with line stages", r, r, append(packed(), Stage{Kind: StageCopy})},
		{"table size mismatch", r, r, packed(Stage{Kind: StageResampleH, Table: table(t, resample.Linear, 2, 0, 3, 4)})},
		{"resample without table", r, r, packed(Stage{Kind: StageResampleV})},
		{"stage after dither", r, r, packed(Stage{Kind: StageDither}, Stage{Kind: StageMatrix, Matrix: &ColorMatrix{}})},
		{"region size mismatch", r, image.Rect(0, 0, 2, 4), packed()},
		{"matrix in component chain", r, r, []Stage{
			{Kind: StageUnpack, Comp: 0},
			{Kind: StageMatrix, Comp: 0, Matrix: &ColorMatrix{}},
			{Kind: StageRepack, Comp: 0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(in, out, tt.src, tt.dst, tt.stages, Options{})
			require.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestCompileInvalidInfo(t *testing.T) {
	bad := video.Info{Width: 2, Height: 2}
	good := video.NewInfo(video.FormatRGBA, 2, 2)
	_, err := Compile(bad, good, full(good), full(good), packed(), Options{})
	assert.ErrorIs(t, err, video.ErrInvalidFormat)
}

func TestExecuteIdentity(t *testing.T) {
	for _, f := range []video.Format{
		video.FormatRGBA, video.FormatBGRx, video.FormatRGB, video.FormatGray8,
		video.FormatAYUV, video.FormatY444, video.FormatRGBA64LE,
	} {
		t.Run(f.String(), func(t *testing.T) {
			src := randomFrame(t, f, 7, 5, 1)
			if f == video.FormatBGRx {
				for i := 3; i < len(src.Planes[0]); i += 4 {
					src.Planes[0][i] = 0xff
				}
			}
			dst := newFrame(t, f, 7, 5)
			p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(), Options{Bands: 3})
			require.NoError(t, err)
			require.NoError(t, p.Execute(src, dst, nil))
			assert.True(t, src.Equal(dst))
		})
	}
}

// Chroma that is constant over each 2x2 block survives unpack and repack.
func TestExecuteIdentitySubsampled(t *testing.T) {
	for _, f := range []video.Format{video.FormatI420, video.FormatNV12, video.FormatYUY2, video.FormatP010} {
		t.Run(f.String(), func(t *testing.T) {
			src := randomFrame(t, f, 8, 6, 2)
			if f == video.FormatP010 {
				for p := range 2 {
					b := src.Planes[p]
					for i := 0; i < len(b); i += 2 {
						b[i] &= 0xc0
					}
				}
			}
			dst := newFrame(t, f, 8, 6)
			pool := parallel.NewWorkerPool(3)
			defer pool.Close()

			p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(), Options{Bands: 3})
			require.NoError(t, err)
			require.NoError(t, p.Execute(src, dst, pool))
			assert.True(t, src.Equal(dst))
		})
	}
}

func TestExecuteFrameMismatch(t *testing.T) {
	info := video.NewInfo(video.FormatRGBA, 4, 4)
	p, err := Compile(info, info, full(info), full(info), packed(), Options{})
	require.NoError(t, err)

	good := newFrame(t, video.FormatRGBA, 4, 4)
	other := newFrame(t, video.FormatBGRA, 4, 4)
	assert.ErrorIs(t, p.Execute(other, good, nil), ErrFrameMismatch)
	assert.ErrorIs(t, p.Execute(good, other, nil), ErrFrameMismatch)
	assert.ErrorIs(t, p.Execute(good, nil, nil), ErrFrameMismatch)
}

func grayRow(t testing.TB, vals ...byte) *video.Frame {
	t.Helper()
	f := newFrame(t, video.FormatGray8, len(vals), 1)
	copy(f.Planes[0], vals)
	return f
}

func TestResampleHorizontal(t *testing.T) {
	src := grayRow(t, 0, 10, 20, 30)
	dst := newFrame(t, video.FormatGray8, 8, 1)
	stages := []Stage{
		{Kind: StageUnpack},
		{Kind: StageResampleH, Table: table(t, resample.Linear, 2, 0.25, 4, 8)},
		{Kind: StageRepack},
	}
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), stages, Options{})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))
	assert.Equal(t, []byte{0, 5, 10, 15, 20, 25, 30, 30}, dst.Planes[0])
}

func TestResampleVertical(t *testing.T) {
	src := newFrame(t, video.FormatGray8, 1, 4)
	copy(src.Planes[0], []byte{0, 10, 20, 30})
	dst := newFrame(t, video.FormatGray8, 1, 8)
	stages := []Stage{
		{Kind: StageUnpack},
		{Kind: StageResampleV, Table: table(t, resample.Linear, 2, 0.25, 4, 8)},
		{Kind: StageRepack},
	}
	for _, bands := range []int{1, 4} {
		p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), stages, Options{Bands: bands})
		require.NoError(t, err)
		dst.Clear()
		require.NoError(t, p.Execute(src, dst, nil))
		assert.Equal(t, []byte{0, 5, 10, 15, 20, 25, 30, 30}, dst.Planes[0], "bands=%d", bands)
	}
}

func TestResampleBothPacked(t *testing.T) {
	src := newFrame(t, video.FormatRGBA, 3, 3)
	for i := range src.Planes[0] {
		src.Planes[0][i] = 77
	}
	dst := newFrame(t, video.FormatRGBA, 9, 5)
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(
		Stage{Kind: StageResampleH, Table: table(t, resample.Cubic, 0, 0, 3, 9)},
		Stage{Kind: StageResampleV, Table: table(t, resample.Lanczos, 0, 0, 3, 5)},
	), Options{Bands: 2})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))
	for i, b := range dst.Planes[0] {
		require.Equal(t, byte(77), b, "byte %d", i)
	}
}

func TestMatrixSwapAndClamp(t *testing.T) {
	src := newFrame(t, video.FormatRGBA, 2, 1)
	copy(src.Planes[0], []byte{10, 20, 30, 40, 50, 60, 70, 80})
	dst := newFrame(t, video.FormatRGBA, 2, 1)

	swap := &ColorMatrix{Matrix: f64.Aff4{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 0}}
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(Stage{Kind: StageMatrix, Matrix: swap}), Options{})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))
	assert.Equal(t, []byte{30, 20, 10, 40, 70, 60, 50, 80}, dst.Planes[0])

	over := &ColorMatrix{Matrix: f64.Aff4{1, 0, 0, 2, 0, 1, 0, -2, 0, 0, 1, 0}}
	p, err = Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(Stage{Kind: StageMatrix, Matrix: over}), Options{})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))
	assert.Equal(t, []byte{255, 0, 30, 40, 255, 0, 70, 80}, dst.Planes[0])
}

func gray16(t testing.TB, w, h int, code uint16) *video.Frame {
	t.Helper()
	f := newFrame(t, video.FormatGray16LE, w, h)
	for i := 0; i < len(f.Planes[0]); i += 2 {
		f.Planes[0][i] = byte(code)
		f.Planes[0][i+1] = byte(code >> 8)
	}
	return f
}

func reduce(t testing.TB, src *video.Frame, d DitherMethod, bands int) *video.Frame {
	t.Helper()
	dst := newFrame(t, video.FormatGray8, src.Info.Width, src.Info.Height)
	stages := []Stage{{Kind: StageUnpack}, {Kind: StageDither, Dither: d}, {Kind: StageRepack}}
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), stages, Options{Bands: bands})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))
	return dst
}

func TestDitherNoneRounds(t *testing.T) {
	src := newFrame(t, video.FormatGray16LE, 4, 1)
	for i, c := range []uint16{0, 25700, 25900, 65535} {
		src.Planes[0][2*i] = byte(c)
		src.Planes[0][2*i+1] = byte(c >> 8)
	}
	dst := reduce(t, src, DitherNone, 1)
	assert.Equal(t, []byte{0, 100, 101, 255}, dst.Planes[0])
}

// 25828/65535 is 100.498 in 8-bit codes.
const between = 25828

func histogram(f *video.Frame) map[byte]int {
	h := map[byte]int{}
	for _, b := range f.Planes[0] {
		h[b]++
	}
	return h
}

func TestDitherHalftone(t *testing.T) {
	dst := reduce(t, gray16(t, 8, 8, between), DitherHalftone, 2)
	assert.Equal(t, map[byte]int{100: 32, 101: 32}, histogram(dst))

	exact := gray16(t, 8, 8, 257*42)
	assert.Equal(t, map[byte]int{42: 64}, histogram(reduce(t, exact, DitherHalftone, 1)))
}

func TestDitherErrorDiffusionKeepsMean(t *testing.T) {
	for _, d := range []DitherMethod{DitherHorizErr, DitherVertErr} {
		t.Run(d.String(), func(t *testing.T) {
			dst := reduce(t, gray16(t, 64, 64, between), d, 4)
			h := histogram(dst)
			assert.Len(t, h, 2)
			mean := float64(100*h[100]+101*h[101]) / float64(64*64)
			assert.InDelta(t, 100.498, mean, 0.02)
		})
	}
}

func TestVertErrSingleBand(t *testing.T) {
	src := gray16(t, 4, 8, between)
	dst := newFrame(t, video.FormatGray8, 4, 8)
	stages := []Stage{{Kind: StageUnpack}, {Kind: StageDither, Dither: DitherVertErr}, {Kind: StageRepack}}
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), stages, Options{Bands: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Bands())
}

func TestSplitBandsAligned(t *testing.T) {
	info := video.NewInfo(video.FormatI420, 8, 10)
	p, err := Compile(info, info, full(info), full(info), packed(), Options{Bands: 3})
	require.NoError(t, err)

	bands := p.splitBands()
	require.NotEmpty(t, bands)
	assert.Equal(t, bands, p.ranges)
	assert.Equal(t, 0, bands[0][0])
	assert.Equal(t, 10, bands[len(bands)-1][1])
	for i := 1; i < len(bands); i++ {
		assert.Equal(t, bands[i-1][1], bands[i][0])
		assert.Zero(t, bands[i][0]%2)
	}

	p, err = Compile(info, info, full(info), full(info), packed(), Options{Bands: 64})
	require.NoError(t, err)
	assert.Len(t, p.splitBands(), 5)
}

func TestBorderFill(t *testing.T) {
	src := newFrame(t, video.FormatRGBA, 2, 2)
	src.Fill(9)
	dst := newFrame(t, video.FormatRGBA, 4, 4)
	dst.Fill(0xaa)

	region := image.Rect(1, 1, 3, 3)
	stages := append([]Stage{{Kind: StageBorderFill, Border: [4]uint32{1, 2, 3, 4}}}, packed()...)
	p, err := Compile(src.Info, dst.Info, full(src.Info), region, stages, Options{})
	require.NoError(t, err)
	require.NoError(t, p.Execute(src, dst, nil))

	for y := range 4 {
		for x := range 4 {
			px := dst.Planes[0][y*dst.Stride[0]+x*4:][:4]
			if image.Pt(x, y).In(region) {
				assert.Equal(t, []byte{9, 9, 9, 9}, px, "(%d,%d)", x, y)
			} else {
				assert.Equal(t, []byte{1, 2, 3, 4}, px, "(%d,%d)", x, y)
			}
		}
	}
}

func TestBorderFillSubsampled(t *testing.T) {
	dst := newFrame(t, video.FormatI420, 8, 8)
	dst.Fill(0xaa)
	b := newBorderFill(dst.Info, image.Rect(2, 2, 6, 6), [4]uint32{16, 128, 128, 0})
	b.fill(dst)

	assert.Equal(t, byte(16), dst.Planes[0][0])
	assert.Equal(t, byte(0xaa), dst.Planes[0][2*8+2])
	assert.Equal(t, byte(128), dst.Planes[1][0])
	assert.Equal(t, byte(0xaa), dst.Planes[1][1*4+1])
	assert.Equal(t, byte(128), dst.Planes[2][3*4+3])
}

func TestCopyPlan(t *testing.T) {
	src := randomFrame(t, video.FormatI420, 8, 8, 3)
	dst := newFrame(t, video.FormatI420, 8, 8)
	srcRect := image.Rect(2, 2, 6, 6)
	dstRect := image.Rect(0, 4, 4, 8)

	p, err := Compile(src.Info, dst.Info, srcRect, dstRect, []Stage{{Kind: StageCopy}}, Options{Bands: 2})
	require.NoError(t, err)
	assert.True(t, p.IsCopy())
	assert.Zero(t, p.ScratchBytes())
	require.NoError(t, p.Execute(src, dst, nil))

	for y := range 4 {
		assert.Equal(t, src.Planes[0][(2+y)*8+2:][:4], dst.Planes[0][(4+y)*8:][:4])
	}
	for pl := 1; pl < 3; pl++ {
		for y := range 2 {
			assert.Equal(t, src.Planes[pl][(1+y)*4+1:][:2], dst.Planes[pl][(2+y)*4:][:2])
		}
	}
}

func TestPlanString(t *testing.T) {
	info := video.NewInfo(video.FormatRGBA, 4, 4)
	p, err := Compile(info, info, full(info), full(info), packed(Stage{Kind: StageDither, Dither: DitherHalftone}), Options{})
	require.NoError(t, err)
	assert.Equal(t, "unpack > dither(halftone) > repack", p.String())
	assert.Positive(t, p.ScratchBytes())
}

func downscalePlan(t testing.TB, bands int) (*Plan, *video.Frame, *video.Frame) {
	t.Helper()
	src := randomFrame(t, video.FormatI420, 640, 360, 4)
	dst := newFrame(t, video.FormatI420, 320, 180)
	p, err := Compile(src.Info, dst.Info, full(src.Info), full(dst.Info), packed(
		Stage{Kind: StageResampleH, Table: table(t, resample.Cubic, 0, 0, 640, 320)},
		Stage{Kind: StageResampleV, Table: table(t, resample.Cubic, 0, 0, 360, 180)},
		Stage{Kind: StageDither, Dither: DitherNone},
	), Options{Bands: bands})
	require.NoError(t, err)
	return p, src, dst
}

func TestExecuteDoesNotAllocate(t *testing.T) {
	p, src, dst := downscalePlan(t, 4)
	require.NoError(t, p.Execute(src, dst, nil))

	allocs := testing.AllocsPerRun(10, func() {
		runtime.GC()
		_ = p.Execute(src, dst, nil)
	})
	assert.Zero(t, allocs)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.GC()
	runtime.ReadMemStats(&before)
	require.NoError(t, p.Execute(src, dst, nil))
	runtime.ReadMemStats(&after)
	assert.Zero(t, after.Mallocs-before.Mallocs)
}

func TestExecuteConcurrentCalls(t *testing.T) {
	p, src, _ := downscalePlan(t, 2)
	want := newFrame(t, video.FormatI420, 320, 180)
	require.NoError(t, p.Execute(src, want, nil))

	const n = 4
	got := make([]*video.Frame, n)
	done := make(chan struct{})
	for i := range n {
		got[i] = newFrame(t, video.FormatI420, 320, 180)
		go func() {
			defer func() { done <- struct{}{} }()
			assert.NoError(t, p.Execute(src, got[i], nil))
		}()
	}
	for range n {
		<-done
	}
	for i := range n {
		assert.Equal(t, want.Planes, got[i].Planes)
	}
}

func BenchmarkExecuteI420Downscale(b *testing.B) {
	p, src, dst := downscalePlan(b, 4)
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	b.ReportAllocs()
	for b.Loop() {
		_ = p.Execute(src, dst, pool)
	}
}
