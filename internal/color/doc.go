// Package color provides the colorimetry math of the converter: YUV matrix
// coefficients, quantization ranges, transfer functions and primaries.
//
// Color transforms are expressed as affine maps on 3-vectors
// (golang.org/x/image/math/f64.Aff4, row-major 3x4) so that chains such as
// code -> analog -> R'G'B' -> analog -> code fuse into one matrix. Transfer
// functions are non-linear and are sampled into lookup tables.
package color
