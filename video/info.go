package video

import (
	"errors"
	"fmt"
)

// Common errors for frame descriptors.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("video: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("video: invalid format")

	// ErrInvalidColorimetry is returned for unknown colorimetry names.
	ErrInvalidColorimetry = errors.New("video: invalid colorimetry")

	// ErrInvalidStride is returned when a plane stride is less than its row size.
	ErrInvalidStride = errors.New("video: stride too small for width")

	// ErrDataTooSmall is returned when a plane buffer is smaller than required.
	ErrDataTooSmall = errors.New("video: plane buffer too small")
)

// Info describes the geometry and interpretation of a frame.
type Info struct {
	Format      Format
	Width       int
	Height      int
	Colorimetry Colorimetry
	ChromaSite  ChromaSite
}

// NewInfo returns an Info with the default colorimetry and chroma siting for
// the format.
func NewInfo(f Format, width, height int) Info {
	info := Info{
		Format:      f,
		Width:       width,
		Height:      height,
		Colorimetry: DefaultColorimetry(f, height),
	}
	if wsub, hsub := f.ChromaSub(); wsub > 0 || hsub > 0 {
		info.ChromaSite = ChromaSiteMPEG2
	}
	return info
}

// Validate checks the format and dimensions.
func (i Info) Validate() error {
	if !i.Format.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, i.Format)
	}
	if i.Width <= 0 || i.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, i.Width, i.Height)
	}
	return nil
}

// Planes returns the number of planes.
func (i Info) Planes() int {
	return i.Format.Info().Planes
}

// PlaneRowBytes returns the minimum stride of plane p.
func (i Info) PlaneRowBytes(p int) int {
	l := i.Format.Info().Layout[p]
	return subCeil(i.Width, l.WSub) * l.Bytes
}

// PlaneRows returns the number of rows of plane p.
func (i Info) PlaneRows(p int) int {
	return subCeil(i.Height, i.Format.Info().Layout[p].HSub)
}

// CompWidth returns the number of samples per row of component c.
func (i Info) CompWidth(c int) int {
	return subCeil(i.Width, i.Format.Info().Comps[c].WSub)
}

// CompHeight returns the number of rows of component c.
func (i Info) CompHeight(c int) int {
	return subCeil(i.Height, i.Format.Info().Comps[c].HSub)
}

// Size returns the number of bytes of a tightly packed frame.
func (i Info) Size() int {
	n := 0
	for p := range i.Planes() {
		n += i.PlaneRowBytes(p) * i.PlaneRows(p)
	}
	return n
}

// String returns a compact description such as "I420 1920x1080 limited:bt709:bt709:bt709".
func (i Info) String() string {
	return fmt.Sprintf("%v %dx%d %v", i.Format, i.Width, i.Height, i.Colorimetry)
}

// subCeil returns ceil(n / 2^s).
func subCeil(n, s int) int {
	return (n + (1 << s) - 1) >> s
}
