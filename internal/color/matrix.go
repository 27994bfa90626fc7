package color

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/gogpu/vconv/video"
)

// ErrUnsupported is returned for colorimetry that has no defined conversion.
var ErrUnsupported = errors.New("color: unsupported colorimetry")

// Identity returns the identity affine map.
func Identity() f64.Aff4 {
	return f64.Aff4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// Mul returns the composition a∘b: applying the result equals applying b,
// then a.
func Mul(a, b f64.Aff4) f64.Aff4 {
	var r f64.Aff4
	for row := range 3 {
		for col := range 3 {
			sum := 0.0
			for k := range 3 {
				sum += a[row*4+k] * b[k*4+col]
			}
			r[row*4+col] = sum
		}
		// Offset column
		r[row*4+3] = a[row*4+0]*b[3] + a[row*4+1]*b[7] + a[row*4+2]*b[11] + a[row*4+3]
	}
	return r
}

// Apply transforms v by m.
func Apply(m f64.Aff4, v f64.Vec3) f64.Vec3 {
	return f64.Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// Invert returns the inverse of m. ok is false when m is singular.
func Invert(m f64.Aff4) (inv f64.Aff4, ok bool) {
	l, ok := invert3(f64.Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]})
	if !ok {
		return inv, false
	}
	t := f64.Vec3{m[3], m[7], m[11]}
	for row := range 3 {
		inv[row*4+0] = l[row*3+0]
		inv[row*4+1] = l[row*3+1]
		inv[row*4+2] = l[row*3+2]
		inv[row*4+3] = -(l[row*3+0]*t[0] + l[row*3+1]*t[1] + l[row*3+2]*t[2])
	}
	return inv, true
}

// IsIdentity reports whether every coefficient of m is within eps of the
// identity.
func IsIdentity(m f64.Aff4, eps float64) bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > eps {
			return false
		}
	}
	return true
}

// FromMat3 returns the linear map m as an affine map.
func FromMat3(m f64.Mat3) f64.Aff4 {
	return f64.Aff4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
	}
}

// YUVCoefficients returns the luma weights Kr and Kb of a YUV matrix.
func YUVCoefficients(m video.Matrix) (kr, kb float64, ok bool) {
	switch m {
	case video.MatrixBT601:
		return 0.299, 0.114, true
	case video.MatrixBT709:
		return 0.2126, 0.0722, true
	case video.MatrixFCC:
		return 0.30, 0.11, true
	case video.MatrixSMPTE240M:
		return 0.212, 0.087, true
	case video.MatrixBT2020:
		return 0.2627, 0.0593, true
	}
	return 0, 0, false
}

// YUVToRGB returns the map from analog Y'CbCr (Y in [0,1], chroma in
// [-0.5,0.5]) to R'G'B'.
func YUVToRGB(kr, kb float64) f64.Aff4 {
	kg := 1 - kr - kb
	return f64.Aff4{
		1, 0, 2 * (1 - kr), 0,
		1, -2 * (1 - kb) * kb / kg, -2 * (1 - kr) * kr / kg, 0,
		1, 2 * (1 - kb), 0, 0,
	}
}

// RGBToYUV is the inverse of YUVToRGB.
func RGBToYUV(kr, kb float64) f64.Aff4 {
	kg := 1 - kr - kb
	return f64.Aff4{
		kr, kg, kb, 0,
		-kr / (2 * (1 - kb)), -kg / (2 * (1 - kb)), 0.5, 0,
		0.5, -kg / (2 * (1 - kr)), -kb / (2 * (1 - kr)), 0,
	}
}

// Space is a normalized sample encoding: samples are code/(2^Depth-1) of a
// format family with the given colorimetry.
type Space struct {
	Family      video.Family
	Colorimetry video.Colorimetry
	Depth       int
}

// CodeToAnalog returns the map from normalized code values to analog values:
// R'G'B' in [0,1] for RGB, or Y' in [0,1] and chroma in [-0.5,0.5] for YUV
// and gray.
func CodeToAnalog(s Space) f64.Aff4 {
	if s.Family == video.FamilyRGB {
		return Identity()
	}
	maxCode := float64(int(1)<<s.Depth - 1)
	if s.Colorimetry.Range == video.RangeLimited {
		scale := float64(int(1) << (s.Depth - 8))
		ys := maxCode / (219 * scale)
		cs := maxCode / (224 * scale)
		return f64.Aff4{
			ys, 0, 0, -16.0 / 219,
			0, cs, 0, -128.0 / 224,
			0, 0, cs, -128.0 / 224,
		}
	}
	mid := float64(int(1)<<(s.Depth-1)) / maxCode
	return f64.Aff4{
		1, 0, 0, 0,
		0, 1, 0, -mid,
		0, 0, 1, -mid,
	}
}

// Decode returns the map from normalized code values of s to R'G'B'.
func Decode(s Space) (f64.Aff4, error) {
	toAnalog := CodeToAnalog(s)
	if s.Family == video.FamilyRGB {
		return toAnalog, nil
	}
	kr, kb, ok := YUVCoefficients(s.Colorimetry.Matrix)
	if !ok {
		return f64.Aff4{}, fmt.Errorf("%w: matrix %v", ErrUnsupported, s.Colorimetry.Matrix)
	}
	return Mul(YUVToRGB(kr, kb), toAnalog), nil
}

// Encode returns the map from R'G'B' to normalized code values of s.
func Encode(s Space) (f64.Aff4, error) {
	dec, err := Decode(s)
	if err != nil {
		return f64.Aff4{}, err
	}
	enc, ok := Invert(dec)
	if !ok {
		return f64.Aff4{}, fmt.Errorf("%w: singular matrix for %v", ErrUnsupported, s.Colorimetry)
	}
	return enc, nil
}

func invert3(m f64.Mat3) (f64.Mat3, bool) {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if math.Abs(det) < 1e-12 {
		return f64.Mat3{}, false
	}
	inv := 1 / det
	return f64.Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

func mul3(a, b f64.Mat3) f64.Mat3 {
	var r f64.Mat3
	for row := range 3 {
		for col := range 3 {
			r[row*3+col] = a[row*3]*b[col] + a[row*3+1]*b[3+col] + a[row*3+2]*b[6+col]
		}
	}
	return r
}
