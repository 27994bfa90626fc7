package video

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// FromImage copies img into a new FormatRGBA frame with sRGB colorimetry.
// Alpha is stored unpremultiplied.
func FromImage(img image.Image) (*Frame, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, b)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return &Frame{
		Info:   NewInfo(FormatRGBA, b.Dx(), b.Dy()),
		Planes: [MaxPlanes][]byte{dst.Pix},
		Stride: [MaxPlanes]int{dst.Stride},
	}, nil
}

// Image returns an image.Image sharing the frame memory. Supported formats
// are RGBA, GRAY8, I420, Y42B and Y444; YUV frames are exposed as
// image.YCbCr without reinterpreting their colorimetry.
func (f *Frame) Image() (image.Image, error) {
	r := image.Rect(0, 0, f.Info.Width, f.Info.Height)
	switch f.Info.Format {
	case FormatRGBA:
		return &image.NRGBA{Pix: f.Planes[0], Stride: f.Stride[0], Rect: r}, nil
	case FormatGray8:
		return &image.Gray{Pix: f.Planes[0], Stride: f.Stride[0], Rect: r}, nil
	case FormatI420, FormatY42B, FormatY444:
		ratio := image.YCbCrSubsampleRatio420
		switch f.Info.Format {
		case FormatY42B:
			ratio = image.YCbCrSubsampleRatio422
		case FormatY444:
			ratio = image.YCbCrSubsampleRatio444
		}
		return &image.YCbCr{
			Y:              f.Planes[0],
			Cb:             f.Planes[1],
			Cr:             f.Planes[2],
			YStride:        f.Stride[0],
			CStride:        f.Stride[1],
			SubsampleRatio: ratio,
			Rect:           r,
		}, nil
	}
	return nil, fmt.Errorf("%w: no image view for %v", ErrInvalidFormat, f.Info.Format)
}
