package resample

import (
	"errors"
	"math"
	"testing"
)

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		phases  int
		taps    int
		shift   float64
		in, out int
		want    error
	}{
		{"zero input", Linear, 1, 0, 0, 0, 8, ErrInvalidExtent},
		{"negative output", Linear, 1, 0, 0, 8, -1, ErrInvalidExtent},
		{"zero phases", Cubic, 0, 0, 0, 8, 8, ErrInvalidPhases},
		{"negative taps", Cubic, 1, -2, 0, 8, 8, ErrInvalidTaps},
		{"nan shift", Cubic, 1, 0, math.NaN(), 8, 8, ErrInvalidShift},
		{"unknown method", Method(42), 1, 0, 0, 8, 8, ErrUnsupportedMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab, err := New(tt.method, tt.phases, tt.taps, tt.shift, tt.in, tt.out, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
			if tab != nil {
				t.Errorf("New() returned a table on error")
			}
		})
	}
}

func TestTableInvariants(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {4, 8}, {8, 4}, {13, 7}, {7, 13}, {100, 33}, {33, 100}, {640, 480}}
	for m := Nearest; m < methodCount; m++ {
		for _, sz := range sizes {
			for _, edge := range []Edge{EdgeClamp, EdgeTruncate, EdgeRenormalize} {
				opts := DefaultOptions()
				opts.Edge = edge
				tab, err := New(m, 1, 0, 0, sz[0], sz[1], &opts)
				if err != nil {
					t.Fatalf("New(%v, %d->%d): %v", m, sz[0], sz[1], err)
				}
				if len(tab.Offset) != sz[1] || len(tab.Phase) != sz[1] {
					t.Fatalf("%v %d->%d: offset/phase length mismatch", m, sz[0], sz[1])
				}
				for i := range tab.OutSize {
					ph := tab.Phase[i]
					if ph < 0 || ph >= tab.NPhases {
						t.Fatalf("%v %d->%d: phase[%d] = %d out of range", m, sz[0], sz[1], i, ph)
					}
					if tab.Offset[i] < 0 || tab.Offset[i]+tab.NTaps[ph] > tab.InSize {
						t.Errorf("%v %d->%d: output %d reads [%d,%d) of %d",
							m, sz[0], sz[1], i, tab.Offset[i], tab.Offset[i]+tab.NTaps[ph], tab.InSize)
					}
				}
				if edge == EdgeTruncate {
					continue
				}
				for ph := range tab.NPhases {
					if sum := tab.TapSum(ph); math.Abs(sum-1) > 1e-6 {
						t.Errorf("%v %d->%d %v: phase %d sums to %v", m, sz[0], sz[1], edge, ph, sum)
					}
				}
			}
		}
	}
}

func TestTruncateDeficitBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.Edge = EdgeTruncate
	tab, err := New(Cubic, 1, 0, 0, 16, 40, &opts)
	if err != nil {
		t.Fatal(err)
	}
	boundary := 0
	for i := range tab.OutSize {
		ph := tab.Phase[i]
		sum := tab.TapSum(ph)
		if tab.NTaps[ph] == tab.MaxTaps {
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("interior output %d sums to %v", i, sum)
			}
			continue
		}
		// Only the weight of at most two dropped taps is missing.
		boundary++
		if math.Abs(sum-1) > 0.5 {
			t.Errorf("boundary output %d sums to %v", i, sum)
		}
	}
	if boundary == 0 {
		t.Error("no boundary outputs were narrowed")
	}
}

func TestPhaseCountIsMinimumResolution(t *testing.T) {
	tab, err := New(Linear, 1, 2, 0, 4, 8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tab.NPhases < 2 {
		t.Fatalf("NPhases = %d, want one shape per distinct position", tab.NPhases)
	}
	seen := make(map[int]bool)
	for i, ph := range tab.Phase {
		if ph < 0 || ph >= tab.NPhases {
			t.Fatalf("Phase[%d] = %d out of [0,%d)", i, ph, tab.NPhases)
		}
		seen[ph] = true
	}
	if len(seen) != tab.NPhases {
		t.Errorf("%d of %d phases used", len(seen), tab.NPhases)
	}
	// Interior outputs alternate between positions 0.25 and 0.75.
	if tab.Phase[1] == tab.Phase[2] {
		t.Errorf("outputs 1 and 2 share phase %d", tab.Phase[1])
	}
}

func TestNearestIdentity(t *testing.T) {
	for _, n := range []int{1, 2, 5, 64, 1000} {
		tab, err := New(Nearest, 1, 0, 0, n, n, nil)
		if err != nil {
			t.Fatal(err)
		}
		if tab.NPhases != 1 || tab.MaxTaps != 1 {
			t.Errorf("n=%d: NPhases=%d MaxTaps=%d, want 1, 1", n, tab.NPhases, tab.MaxTaps)
		}
		for i := range n {
			if tab.Offset[i] != i {
				t.Errorf("n=%d: Offset[%d] = %d, want %d", n, i, tab.Offset[i], i)
			}
			if w := tab.PhaseTaps(tab.Phase[i]); len(w) != 1 || w[0] != 1 {
				t.Errorf("n=%d: taps[%d] = %v, want [1]", n, i, w)
			}
		}
	}
}

func TestLinearDoubling(t *testing.T) {
	src := []float64{1, 3, 4, 8, 15, 16, 23, 42}
	tab, err := New(Linear, 1, 2, 0.25, len(src), 2*len(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]float64, 2*len(src))
	tab.Apply(dst, src)

	for k, v := range src {
		if math.Abs(dst[2*k]-v) > 1e-9 {
			t.Errorf("dst[%d] = %v, want %v", 2*k, dst[2*k], v)
		}
	}
	for k := 0; k+1 < len(src); k++ {
		want := (src[k] + src[k+1]) / 2
		if math.Abs(dst[2*k+1]-want) > 1e-9 {
			t.Errorf("dst[%d] = %v, want %v", 2*k+1, dst[2*k+1], want)
		}
	}
}

func TestLinearScenario(t *testing.T) {
	src := []float64{0, 10, 20, 30}
	tests := []struct {
		shift float64
		want  []float64
	}{
		{0, []float64{0, 2.5, 7.5, 12.5, 17.5, 22.5, 27.5, 30}},
		{0.25, []float64{0, 5, 10, 15, 20, 25, 30, 30}},
	}
	for _, tt := range tests {
		tab, err := New(Linear, 1, 2, tt.shift, 4, 8, nil)
		if err != nil {
			t.Fatal(err)
		}
		dst := make([]float64, 8)
		tab.Apply(dst, src)
		for i := range dst {
			if math.Abs(dst[i]-tt.want[i]) > 1e-9 {
				t.Errorf("shift %v: dst = %v, want %v", tt.shift, dst, tt.want)
				break
			}
		}
	}
}

func TestPhaseSharing(t *testing.T) {
	// 2x upscaling has two interior shapes plus the two boundary cuts.
	tab, err := New(Cubic, 1, 4, 0, 100, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tab.NPhases > 8 {
		t.Errorf("NPhases = %d, want few shared phases", tab.NPhases)
	}

	// A finer phase grid never reduces the number of shapes.
	fine, err := New(Cubic, 64, 4, 0.1, 100, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fine.NPhases < tab.NPhases {
		t.Errorf("fine NPhases = %d < %d", fine.NPhases, tab.NPhases)
	}
}

func TestAutoTaps(t *testing.T) {
	tests := []struct {
		method  Method
		in, out int
		want    int
	}{
		{Nearest, 100, 50, 1},
		{Linear, 100, 200, 2},
		{Linear, 100, 50, 4},
		{Cubic, 100, 200, 4},
		{Cubic, 100, 30, 16},
		{Lanczos, 100, 200, 4},
		{Sinc, 100, 50, 8},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			tab, err := New(tt.method, 1, 0, 0, tt.in, tt.out, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tab.MaxTaps != tt.want {
				t.Errorf("MaxTaps = %d, want %d", tab.MaxTaps, tt.want)
			}
		})
	}
}

func TestDownscaleAveragesConstant(t *testing.T) {
	src := make([]float64, 97)
	for i := range src {
		src[i] = 0.5
	}
	for m := Nearest; m < methodCount; m++ {
		tab, err := New(m, 1, 0, 0, len(src), 31, nil)
		if err != nil {
			t.Fatal(err)
		}
		dst := make([]float64, 31)
		tab.Apply(dst, src)
		for i, v := range dst {
			if math.Abs(v-0.5) > 1e-9 {
				t.Errorf("%v: dst[%d] = %v, want 0.5", m, i, v)
				break
			}
		}
	}
}

func TestSharpenBoostsEdges(t *testing.T) {
	src := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	plain, err := New(Cubic, 1, 0, 0, 8, 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Sharpen = 1
	sharp, err := New(Cubic, 1, 0, 0, 8, 16, &opts)
	if err != nil {
		t.Fatal(err)
	}
	a := make([]float64, 16)
	b := make([]float64, 16)
	plain.Apply(a, src)
	sharp.Apply(b, src)

	// Sharpening steepens the transition between outputs 7 and 8.
	if b[8]-b[7] <= a[8]-a[7] {
		t.Errorf("sharpened step %v not steeper than %v", b[8]-b[7], a[8]-a[7])
	}
}

func TestOptionsClamped(t *testing.T) {
	o := Options{CubicB: -1, CubicC: 3, Envelope: 10, Sharpness: 0, Sharpen: 2, Edge: Edge(9)}.Clamped()
	want := Options{CubicB: 0, CubicC: 2, Envelope: 5, Sharpness: 0.5, Sharpen: 1, Edge: EdgeClamp}
	if o != want {
		t.Errorf("Clamped() = %+v, want %+v", o, want)
	}
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"nearest", "Linear", "CUBIC", "sinc", "LanCzos"} {
		m, err := ParseMethod(s)
		if err != nil {
			t.Errorf("ParseMethod(%q): %v", s, err)
			continue
		}
		back, _ := ParseMethod(m.String())
		if back != m {
			t.Errorf("ParseMethod(%q) round trip = %v, want %v", s, back, m)
		}
	}
	if _, err := ParseMethod("bicubic"); !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("ParseMethod(bicubic) error = %v, want ErrUnsupportedMethod", err)
	}
}

func TestClear(t *testing.T) {
	var zero Table
	zero.Clear()

	var nilTable *Table
	nilTable.Clear()

	tab, err := New(Lanczos, 1, 0, 0, 10, 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	tab.Clear()
	if tab.Offset != nil || tab.Phase != nil || tab.NTaps != nil || tab.Taps != nil {
		t.Error("Clear() left arrays behind")
	}
	tab.Clear()
}

func BenchmarkNew(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if _, err := New(Lanczos, 1, 0, 0, 1920, 1280, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	tab, err := New(Cubic, 1, 0, 0, 1920, 1280, nil)
	if err != nil {
		b.Fatal(err)
	}
	src := make([]float64, 1920)
	dst := make([]float64, 1280)
	b.ReportAllocs()
	for b.Loop() {
		tab.Apply(dst, src)
	}
}
