// Package video describes raw video frames: pixel formats, colorimetry and
// the plane memory a converter reads and writes.
//
// Formats are described generically by a table of components, so code that
// moves samples never switches on the format itself.
package video

import (
	"fmt"

	"golang.org/x/text/cases"
)

// MaxPlanes is the largest number of planes a format uses.
const MaxPlanes = 3

// Format represents a raw video pixel format.
type Format uint8

const (
	// FormatUnknown is the zero Format.
	FormatUnknown Format = iota

	// FormatGray8 is 8-bit luma only.
	FormatGray8

	// FormatGray16LE is 16-bit little-endian luma only.
	FormatGray16LE

	// FormatRGB is packed 24-bit R, G, B.
	FormatRGB

	// FormatBGR is packed 24-bit B, G, R.
	FormatBGR

	// FormatRGBA is packed 32-bit R, G, B, A.
	FormatRGBA

	// FormatBGRA is packed 32-bit B, G, R, A.
	FormatBGRA

	// FormatARGB is packed 32-bit A, R, G, B.
	FormatARGB

	// FormatABGR is packed 32-bit A, B, G, R.
	FormatABGR

	// FormatRGBx is packed 32-bit R, G, B with an unused byte.
	FormatRGBx

	// FormatBGRx is packed 32-bit B, G, R with an unused byte.
	FormatBGRx

	// FormatRGBA64LE is packed 16-bit little-endian R, G, B, A.
	FormatRGBA64LE

	// FormatAYUV is packed 4:4:4 A, Y, U, V.
	FormatAYUV

	// FormatI420 is planar 4:2:0 Y, U, V.
	FormatI420

	// FormatYV12 is planar 4:2:0 Y, V, U.
	FormatYV12

	// FormatNV12 is 4:2:0 with a Y plane and an interleaved UV plane.
	FormatNV12

	// FormatNV21 is 4:2:0 with a Y plane and an interleaved VU plane.
	FormatNV21

	// FormatY42B is planar 4:2:2.
	FormatY42B

	// FormatY444 is planar 4:4:4.
	FormatY444

	// FormatYUY2 is packed 4:2:2 Y0 U Y1 V.
	FormatYUY2

	// FormatUYVY is packed 4:2:2 U Y0 V Y1.
	FormatUYVY

	// FormatI420P10 is planar 4:2:0 with 10 bits in 16-bit little-endian words.
	FormatI420P10

	// FormatI422P10 is planar 4:2:2 with 10 bits in 16-bit little-endian words.
	FormatI422P10

	// FormatY444P10 is planar 4:4:4 with 10 bits in 16-bit little-endian words.
	FormatY444P10

	// FormatP010 is NV12 layout with 10 bits in the high bits of 16-bit words.
	FormatP010

	// FormatY444P16 is planar 4:4:4 with 16-bit little-endian samples.
	FormatY444P16

	// formatCount is the number of formats (for internal use).
	formatCount
)

// Family groups formats by the color model of their components.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyRGB
	FamilyYUV
	FamilyGray
)

// Component locates one color component in memory.
//
// Sample x of a row lives at byte Offset + (x>>WSub)*Stride of plane Plane,
// row y>>HSub. Samples are Word bytes wide (little-endian when 2); the value
// is (word >> Shift) masked to Depth bits.
type Component struct {
	Plane  int
	Offset int
	Stride int
	Shift  int
	Depth  int
	WSub   int
	HSub   int
}

// Present reports whether the component is stored.
func (c Component) Present() bool {
	return c.Depth > 0
}

// PlaneLayout describes the row size of one plane: Bytes per block of
// 1<<WSub pixels, one row per 1<<HSub frame rows.
type PlaneLayout struct {
	WSub  int
	HSub  int
	Bytes int
}

// FormatInfo contains the memory layout of a format.
//
// Comps is in canonical order: R, G, B, A for RGB formats and Y, U, V, A for
// YUV and gray formats. Missing components have Depth 0.
type FormatInfo struct {
	Name   string
	Family Family
	Word   int
	Planes int
	Layout [MaxPlanes]PlaneLayout
	Comps  [4]Component

	// PadOffset is the byte offset of an unused byte within the pixel that
	// is written as 0xff, or -1.
	PadOffset int
	// PadStride is the pixel stride for PadOffset.
	PadStride int
}

func c8(plane, offset, stride int) Component {
	return Component{Plane: plane, Offset: offset, Stride: stride, Depth: 8}
}

func sub(c Component, wsub, hsub int) Component {
	c.WSub, c.HSub = wsub, hsub
	return c
}

func deep(c Component, depth, shift int) Component {
	c.Depth, c.Shift = depth, shift
	return c
}

func packedRGB(name string, stride int, r, g, b, a, pad int) FormatInfo {
	fi := FormatInfo{
		Name: name, Family: FamilyRGB, Word: 1, Planes: 1,
		Layout:    [MaxPlanes]PlaneLayout{{Bytes: stride}},
		Comps:     [4]Component{c8(0, r, stride), c8(0, g, stride), c8(0, b, stride)},
		PadOffset: pad, PadStride: stride,
	}
	if a >= 0 {
		fi.Comps[3] = c8(0, a, stride)
	}
	return fi
}

func planarYUV(name string, word, depth, wsub, hsub int, u, v int) FormatInfo {
	l := PlaneLayout{Bytes: word}
	cl := PlaneLayout{WSub: wsub, HSub: hsub, Bytes: word}
	return FormatInfo{
		Name: name, Family: FamilyYUV, Word: word, Planes: 3,
		Layout: [MaxPlanes]PlaneLayout{l, cl, cl},
		Comps: [4]Component{
			deep(Component{Plane: 0, Stride: word}, depth, 0),
			deep(sub(Component{Plane: u, Stride: word}, wsub, hsub), depth, 0),
			deep(sub(Component{Plane: v, Stride: word}, wsub, hsub), depth, 0),
		},
		PadOffset: -1,
	}
}

func semiPlanar(name string, word, depth, shift, u, v int) FormatInfo {
	return FormatInfo{
		Name: name, Family: FamilyYUV, Word: word, Planes: 2,
		Layout: [MaxPlanes]PlaneLayout{{Bytes: word}, {WSub: 1, HSub: 1, Bytes: 2 * word}},
		Comps: [4]Component{
			deep(Component{Plane: 0, Stride: word}, depth, shift),
			deep(sub(Component{Plane: 1, Offset: u * word, Stride: 2 * word}, 1, 1), depth, shift),
			deep(sub(Component{Plane: 1, Offset: v * word, Stride: 2 * word}, 1, 1), depth, shift),
		},
		PadOffset: -1,
	}
}

func packed422(name string, y, u, v int) FormatInfo {
	return FormatInfo{
		Name: name, Family: FamilyYUV, Word: 1, Planes: 1,
		Layout:    [MaxPlanes]PlaneLayout{{WSub: 1, Bytes: 4}},
		Comps:     [4]Component{c8(0, y, 2), sub(c8(0, u, 4), 1, 0), sub(c8(0, v, 4), 1, 0)},
		PadOffset: -1,
	}
}

// formatInfoTable contains the layout of each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatUnknown: {Name: "UNKNOWN", PadOffset: -1},
	FormatGray8: {
		Name: "GRAY8", Family: FamilyGray, Word: 1, Planes: 1,
		Layout:    [MaxPlanes]PlaneLayout{{Bytes: 1}},
		Comps:     [4]Component{c8(0, 0, 1)},
		PadOffset: -1,
	},
	FormatGray16LE: {
		Name: "GRAY16_LE", Family: FamilyGray, Word: 2, Planes: 1,
		Layout:    [MaxPlanes]PlaneLayout{{Bytes: 2}},
		Comps:     [4]Component{{Stride: 2, Depth: 16}},
		PadOffset: -1,
	},
	FormatRGB:  packedRGB("RGB", 3, 0, 1, 2, -1, -1),
	FormatBGR:  packedRGB("BGR", 3, 2, 1, 0, -1, -1),
	FormatRGBA: packedRGB("RGBA", 4, 0, 1, 2, 3, -1),
	FormatBGRA: packedRGB("BGRA", 4, 2, 1, 0, 3, -1),
	FormatARGB: packedRGB("ARGB", 4, 1, 2, 3, 0, -1),
	FormatABGR: packedRGB("ABGR", 4, 3, 2, 1, 0, -1),
	FormatRGBx: packedRGB("RGBx", 4, 0, 1, 2, -1, 3),
	FormatBGRx: packedRGB("BGRx", 4, 2, 1, 0, -1, 3),
	FormatRGBA64LE: {
		Name: "RGBA64_LE", Family: FamilyRGB, Word: 2, Planes: 1,
		Layout: [MaxPlanes]PlaneLayout{{Bytes: 8}},
		Comps: [4]Component{
			{Offset: 0, Stride: 8, Depth: 16},
			{Offset: 2, Stride: 8, Depth: 16},
			{Offset: 4, Stride: 8, Depth: 16},
			{Offset: 6, Stride: 8, Depth: 16},
		},
		PadOffset: -1,
	},
	FormatAYUV: {
		Name: "AYUV", Family: FamilyYUV, Word: 1, Planes: 1,
		Layout:    [MaxPlanes]PlaneLayout{{Bytes: 4}},
		Comps:     [4]Component{c8(0, 1, 4), c8(0, 2, 4), c8(0, 3, 4), c8(0, 0, 4)},
		PadOffset: -1,
	},
	FormatI420:     planarYUV("I420", 1, 8, 1, 1, 1, 2),
	FormatYV12:     planarYUV("YV12", 1, 8, 1, 1, 2, 1),
	FormatNV12:     semiPlanar("NV12", 1, 8, 0, 0, 1),
	FormatNV21:     semiPlanar("NV21", 1, 8, 0, 1, 0),
	FormatY42B:     planarYUV("Y42B", 1, 8, 1, 0, 1, 2),
	FormatY444:     planarYUV("Y444", 1, 8, 0, 0, 1, 2),
	FormatYUY2:     packed422("YUY2", 0, 1, 3),
	FormatUYVY:     packed422("UYVY", 1, 0, 2),
	FormatI420P10:  planarYUV("I420_10LE", 2, 10, 1, 1, 1, 2),
	FormatI422P10:  planarYUV("I422_10LE", 2, 10, 1, 0, 1, 2),
	FormatY444P10:  planarYUV("Y444_10LE", 2, 10, 0, 0, 1, 2),
	FormatP010:     semiPlanar("P010_10LE", 2, 10, 6, 0, 1),
	FormatY444P16:  planarYUV("Y444_16LE", 2, 16, 0, 0, 1, 2),
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{Name: "UNKNOWN", PadOffset: -1}
	}
	return formatInfoTable[f]
}

// String returns the conventional name of the format, e.g. "I420_10LE".
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("Format(%d)", f)
	}
	return formatInfoTable[f].Name
}

// IsValid returns true if the format is a known, non-zero format.
func (f Format) IsValid() bool {
	return f > FormatUnknown && f < formatCount
}

// Family returns the color model of the format.
func (f Format) Family() Family {
	return f.Info().Family
}

// IsYUV returns true for luma/chroma formats.
func (f Format) IsYUV() bool {
	return f.Family() == FamilyYUV
}

// IsRGB returns true for RGB formats.
func (f Format) IsRGB() bool {
	return f.Family() == FamilyRGB
}

// IsGray returns true for luma-only formats.
func (f Format) IsGray() bool {
	return f.Family() == FamilyGray
}

// HasAlpha returns true if the format stores an alpha component.
func (f Format) HasAlpha() bool {
	return f.Info().Comps[3].Present()
}

// Depth returns the largest component depth in bits.
func (f Format) Depth() int {
	d := 0
	for _, c := range f.Info().Comps {
		d = max(d, c.Depth)
	}
	return d
}

// ChromaSub returns the log2 horizontal and vertical chroma subsampling.
func (f Format) ChromaSub() (wsub, hsub int) {
	fi := f.Info()
	if fi.Family != FamilyYUV {
		return 0, 0
	}
	return fi.Comps[1].WSub, fi.Comps[1].HSub
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	key := foldName(s)
	for f := FormatGray8; f < formatCount; f++ {
		if foldName(formatInfoTable[f].Name) == key {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Formats returns all known formats.
func Formats() []Format {
	out := make([]Format, 0, formatCount-1)
	for f := FormatGray8; f < formatCount; f++ {
		out = append(out, f)
	}
	return out
}

// foldName case-folds an enum name. A Caser is stateful, so each call gets
// its own.
func foldName(s string) string {
	return cases.Fold().String(s)
}
