package video

import (
	"errors"
	"testing"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatGray8, "GRAY8"},
		{FormatRGBx, "RGBx"},
		{FormatI420P10, "I420_10LE"},
		{FormatP010, "P010_10LE"},
		{FormatUnknown, "UNKNOWN"},
		{Format(200), "Format(200)"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(f.String())
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", f.String(), err)
			continue
		}
		if got != f {
			t.Errorf("ParseFormat(%q) = %v, want %v", f.String(), got, f)
		}
	}
	if got, err := ParseFormat("nv12"); err != nil || got != FormatNV12 {
		t.Errorf("ParseFormat(nv12) = %v, %v", got, err)
	}
	if _, err := ParseFormat("RGB565"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseFormat(RGB565) error = %v, want ErrInvalidFormat", err)
	}
}

// TestFormatLayout checks that every stored component of every format lies
// inside its plane row.
func TestFormatLayout(t *testing.T) {
	for _, f := range Formats() {
		fi := f.Info()
		if !f.IsValid() || fi.Planes < 1 || fi.Planes > MaxPlanes {
			t.Errorf("%v: invalid plane count %d", f, fi.Planes)
			continue
		}
		info := NewInfo(f, 6, 4)
		for c, comp := range fi.Comps {
			if !comp.Present() {
				continue
			}
			if comp.Plane >= fi.Planes {
				t.Errorf("%v comp %d: plane %d >= %d", f, c, comp.Plane, fi.Planes)
				continue
			}
			last := comp.Offset + (info.CompWidth(c)-1)*comp.Stride + fi.Word
			if last > info.PlaneRowBytes(comp.Plane) {
				t.Errorf("%v comp %d: last sample ends at %d beyond row of %d bytes",
					f, c, last, info.PlaneRowBytes(comp.Plane))
			}
			if comp.Depth+comp.Shift > 8*fi.Word {
				t.Errorf("%v comp %d: %d bits shifted by %d do not fit a %d-byte word",
					f, c, comp.Depth, comp.Shift, fi.Word)
			}
		}
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		format     Format
		family     Family
		depth      int
		alpha      bool
		wsub, hsub int
		planes     int
		size       int // bytes for 4x2
	}{
		{FormatGray8, FamilyGray, 8, false, 0, 0, 1, 8},
		{FormatGray16LE, FamilyGray, 16, false, 0, 0, 1, 16},
		{FormatRGB, FamilyRGB, 8, false, 0, 0, 1, 24},
		{FormatARGB, FamilyRGB, 8, true, 0, 0, 1, 32},
		{FormatRGBx, FamilyRGB, 8, false, 0, 0, 1, 32},
		{FormatRGBA64LE, FamilyRGB, 16, true, 0, 0, 1, 64},
		{FormatAYUV, FamilyYUV, 8, true, 0, 0, 1, 32},
		{FormatI420, FamilyYUV, 8, false, 1, 1, 3, 12},
		{FormatNV21, FamilyYUV, 8, false, 1, 1, 2, 12},
		{FormatY42B, FamilyYUV, 8, false, 1, 0, 3, 16},
		{FormatYUY2, FamilyYUV, 8, false, 1, 0, 1, 16},
		{FormatI422P10, FamilyYUV, 10, false, 1, 0, 3, 32},
		{FormatP010, FamilyYUV, 10, false, 1, 1, 2, 24},
		{FormatY444P16, FamilyYUV, 16, false, 0, 0, 3, 48},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.Family(); got != tt.family {
				t.Errorf("Family() = %v, want %v", got, tt.family)
			}
			if got := tt.format.Depth(); got != tt.depth {
				t.Errorf("Depth() = %d, want %d", got, tt.depth)
			}
			if got := tt.format.HasAlpha(); got != tt.alpha {
				t.Errorf("HasAlpha() = %v, want %v", got, tt.alpha)
			}
			wsub, hsub := tt.format.ChromaSub()
			if wsub != tt.wsub || hsub != tt.hsub {
				t.Errorf("ChromaSub() = %d,%d, want %d,%d", wsub, hsub, tt.wsub, tt.hsub)
			}
			info := NewInfo(tt.format, 4, 2)
			if got := info.Planes(); got != tt.planes {
				t.Errorf("Planes() = %d, want %d", got, tt.planes)
			}
			if got := info.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestOddDimensions(t *testing.T) {
	info := NewInfo(FormatI420, 5, 3)
	if got := info.PlaneRowBytes(1); got != 3 {
		t.Errorf("chroma row bytes = %d, want 3", got)
	}
	if got := info.PlaneRows(2); got != 2 {
		t.Errorf("chroma rows = %d, want 2", got)
	}
	yuy2 := NewInfo(FormatYUY2, 5, 1)
	if got := yuy2.PlaneRowBytes(0); got != 12 {
		t.Errorf("YUY2 row bytes = %d, want 12", got)
	}
}
