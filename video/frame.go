package video

import (
	"bytes"
	"fmt"
)

// Frame is a video frame: an Info plus the memory of each plane.
//
// A Frame does not own any synchronization. Concurrent reads are safe;
// writes require external synchronization.
type Frame struct {
	Info   Info
	Planes [MaxPlanes][]byte
	Stride [MaxPlanes]int
}

// NewFrame allocates a zeroed, tightly packed frame.
func NewFrame(info Info) (*Frame, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	f := &Frame{Info: info}
	for p := range info.Planes() {
		f.Stride[p] = info.PlaneRowBytes(p)
		f.Planes[p] = make([]byte, f.Stride[p]*info.PlaneRows(p))
	}
	return f, nil
}

// FromRaw wraps existing plane memory. planes and strides must have one
// entry per plane of the format; the memory is not copied.
func FromRaw(info Info, planes [][]byte, strides []int) (*Frame, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	n := info.Planes()
	if len(planes) < n || len(strides) < n {
		return nil, fmt.Errorf("%w: %v needs %d planes", ErrDataTooSmall, info.Format, n)
	}
	f := &Frame{Info: info}
	for p := range n {
		rowBytes := info.PlaneRowBytes(p)
		if strides[p] < rowBytes {
			return nil, fmt.Errorf("%w: plane %d stride %d < %d", ErrInvalidStride, p, strides[p], rowBytes)
		}
		need := strides[p]*(info.PlaneRows(p)-1) + rowBytes
		if len(planes[p]) < need {
			return nil, fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrDataTooSmall, p, len(planes[p]), need)
		}
		f.Planes[p] = planes[p]
		f.Stride[p] = strides[p]
	}
	return f, nil
}

// Row returns the visible bytes of row y of plane p.
func (f *Frame) Row(p, y int) []byte {
	off := y * f.Stride[p]
	return f.Planes[p][off : off+f.Info.PlaneRowBytes(p)]
}

// Clone returns a tightly packed deep copy of f.
func (f *Frame) Clone() *Frame {
	c := &Frame{Info: f.Info}
	for p := range f.Info.Planes() {
		c.Stride[p] = f.Info.PlaneRowBytes(p)
		c.Planes[p] = make([]byte, c.Stride[p]*f.Info.PlaneRows(p))
		for y := range f.Info.PlaneRows(p) {
			copy(c.Row(p, y), f.Row(p, y))
		}
	}
	return c
}

// Clear sets all plane bytes to zero.
func (f *Frame) Clear() {
	for p := range f.Info.Planes() {
		clear(f.Planes[p])
	}
}

// Fill sets all plane bytes to v.
func (f *Frame) Fill(v byte) {
	for p := range f.Info.Planes() {
		b := f.Planes[p]
		for i := range b {
			b[i] = v
		}
	}
}

// Equal reports whether two frames have the same Info and visible bytes.
// Stride padding is ignored.
func (f *Frame) Equal(o *Frame) bool {
	if f.Info != o.Info {
		return false
	}
	for p := range f.Info.Planes() {
		for y := range f.Info.PlaneRows(p) {
			if !bytes.Equal(f.Row(p, y), o.Row(p, y)) {
				return false
			}
		}
	}
	return true
}
