package video

import "fmt"

// Range is the quantization range of the samples.
type Range uint8

const (
	RangeUnknown Range = iota
	// RangeFull uses the whole code range, [0, 2^depth-1].
	RangeFull
	// RangeLimited is studio swing: luma [16, 235], chroma [16, 240] at 8 bits.
	RangeLimited
)

// Matrix is the RGB to YUV conversion matrix.
type Matrix uint8

const (
	MatrixUnknown Matrix = iota
	MatrixRGB
	MatrixFCC
	MatrixBT709
	MatrixBT601
	MatrixSMPTE240M
	MatrixBT2020
)

// Transfer is the opto-electronic transfer function.
type Transfer uint8

const (
	TransferUnknown Transfer = iota
	TransferGamma10
	TransferGamma18
	TransferGamma20
	TransferGamma22
	TransferBT709
	TransferSMPTE240M
	TransferSRGB
	TransferGamma28
	TransferAdobeRGB
	TransferBT2020_10
	TransferBT2020_12
	TransferSMPTE2084
	TransferARIBSTDB67
	TransferBT601
)

// Primaries selects the RGB primaries and white point.
type Primaries uint8

const (
	PrimariesUnknown Primaries = iota
	PrimariesBT709
	PrimariesBT470M
	PrimariesBT470BG
	PrimariesSMPTE170M
	PrimariesSMPTE240M
	PrimariesFilm
	PrimariesBT2020
	PrimariesAdobeRGB
	PrimariesSMPTEST428
	PrimariesSMPTERP431
	PrimariesSMPTEEG432
	PrimariesEBU3213
)

var rangeNames = []string{"unknown", "full", "limited"}

var matrixNames = []string{"unknown", "rgb", "fcc", "bt709", "bt601", "smpte240m", "bt2020"}

var transferNames = []string{
	"unknown", "gamma10", "gamma18", "gamma20", "gamma22", "bt709", "smpte240m",
	"srgb", "gamma28", "adobergb", "bt2020-10", "bt2020-12", "smpte2084",
	"arib-std-b67", "bt601",
}

var primariesNames = []string{
	"unknown", "bt709", "bt470m", "bt470bg", "smpte170m", "smpte240m", "film",
	"bt2020", "adobergb", "smptest428", "smpterp431", "smpteeg432", "ebu3213",
}

func enumName(names []string, v uint8, kind string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func parseEnum(names []string, s, kind string) (uint8, error) {
	key := foldName(s)
	for i, n := range names {
		if n == key {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidColorimetry, kind, s)
}

func (r Range) String() string     { return enumName(rangeNames, uint8(r), "Range") }
func (m Matrix) String() string    { return enumName(matrixNames, uint8(m), "Matrix") }
func (t Transfer) String() string  { return enumName(transferNames, uint8(t), "Transfer") }
func (p Primaries) String() string { return enumName(primariesNames, uint8(p), "Primaries") }

// ParseRange parses a range name such as "limited".
func ParseRange(s string) (Range, error) {
	v, err := parseEnum(rangeNames, s, "range")
	return Range(v), err
}

// ParseMatrix parses a matrix name such as "bt709".
func ParseMatrix(s string) (Matrix, error) {
	v, err := parseEnum(matrixNames, s, "matrix")
	return Matrix(v), err
}

// ParseTransfer parses a transfer name such as "srgb".
func ParseTransfer(s string) (Transfer, error) {
	v, err := parseEnum(transferNames, s, "transfer")
	return Transfer(v), err
}

// ParsePrimaries parses a primaries name such as "bt2020".
func ParsePrimaries(s string) (Primaries, error) {
	v, err := parseEnum(primariesNames, s, "primaries")
	return Primaries(v), err
}

// Colorimetry is the color interpretation of the samples.
type Colorimetry struct {
	Range     Range
	Matrix    Matrix
	Transfer  Transfer
	Primaries Primaries
}

// String returns the colorimetry as range:matrix:transfer:primaries.
func (c Colorimetry) String() string {
	return fmt.Sprintf("%v:%v:%v:%v", c.Range, c.Matrix, c.Transfer, c.Primaries)
}

// Common colorimetries.
var (
	ColorimetrySRGB   = Colorimetry{RangeFull, MatrixRGB, TransferSRGB, PrimariesBT709}
	ColorimetryBT601  = Colorimetry{RangeLimited, MatrixBT601, TransferBT601, PrimariesSMPTE170M}
	ColorimetryBT709  = Colorimetry{RangeLimited, MatrixBT709, TransferBT709, PrimariesBT709}
	ColorimetryBT2020 = Colorimetry{RangeLimited, MatrixBT2020, TransferBT2020_12, PrimariesBT2020}
)

// DefaultColorimetry returns the conventional colorimetry for a format at
// the given frame height.
func DefaultColorimetry(f Format, height int) Colorimetry {
	switch f.Family() {
	case FamilyRGB:
		return ColorimetrySRGB
	case FamilyGray:
		c := ColorimetryBT601
		c.Range = RangeFull
		return c
	case FamilyYUV:
		switch {
		case height >= 2160:
			return ColorimetryBT2020
		case height > 576:
			return ColorimetryBT709
		default:
			return ColorimetryBT601
		}
	}
	return Colorimetry{}
}

// Resolve fills unknown fields from the defaults for f at height.
// RGB and gray formats are always full range and RGB formats never carry a
// YUV matrix.
func (c Colorimetry) Resolve(f Format, height int) Colorimetry {
	d := DefaultColorimetry(f, height)
	if c.Range == RangeUnknown {
		c.Range = d.Range
	}
	if c.Matrix == MatrixUnknown {
		c.Matrix = d.Matrix
	}
	if c.Transfer == TransferUnknown {
		c.Transfer = d.Transfer
	}
	if c.Primaries == PrimariesUnknown {
		c.Primaries = d.Primaries
	}
	switch f.Family() {
	case FamilyRGB:
		c.Range = RangeFull
		c.Matrix = MatrixRGB
	case FamilyGray:
		c.Range = RangeFull
		if c.Matrix == MatrixRGB {
			c.Matrix = d.Matrix
		}
	case FamilyYUV:
		if c.Matrix == MatrixRGB {
			c.Matrix = d.Matrix
		}
	}
	return c
}

// ChromaSite is the position of subsampled chroma relative to luma, as
// cositing flags. The zero value is centered chroma (JPEG).
type ChromaSite uint8

const (
	// ChromaSiteHCosited aligns chroma with the left luma sample.
	ChromaSiteHCosited ChromaSite = 1 << iota
	// ChromaSiteVCosited aligns chroma with the top luma row.
	ChromaSiteVCosited

	ChromaSiteJPEG    ChromaSite = 0
	ChromaSiteMPEG2              = ChromaSiteHCosited
	ChromaSiteCosited            = ChromaSiteHCosited | ChromaSiteVCosited
)

// String returns a short name of the siting.
func (s ChromaSite) String() string {
	switch s {
	case ChromaSiteJPEG:
		return "jpeg"
	case ChromaSiteMPEG2:
		return "mpeg2"
	case ChromaSiteCosited:
		return "cosited"
	case ChromaSiteVCosited:
		return "v-cosited"
	default:
		return fmt.Sprintf("ChromaSite(%d)", uint8(s))
	}
}
