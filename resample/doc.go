// Package resample builds polyphase filter tables for one-dimensional
// resampling between arbitrary sample counts.
//
// A [Table] maps every output sample to a run of consecutive input samples
// (Offset) and to one of a small set of tap shapes (Phase). Outputs whose
// fractional source position and boundary cut are identical share a phase, so
// the tap storage stays proportional to the number of distinct shapes rather
// than to the output length.
//
// Source position of output i:
//
//	p = (i + 0.5) * in / out - 0.5 + shift
//
// Kernels are evaluated at (j - p) / s for every tap j, where s = max(1, in/out)
// widens the support when downsampling.
//
// Basic usage:
//
//	t, err := resample.New(resample.Cubic, 1, 0, 0, 1920, 1280, nil)
//	if err != nil {
//	    return err
//	}
//	t.Apply(dst, src)
package resample
