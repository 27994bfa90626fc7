package resample

import "errors"

// Errors returned by New.
var (
	// ErrInvalidExtent is returned when the input or output size is not positive.
	ErrInvalidExtent = errors.New("resample: invalid extent")

	// ErrInvalidPhases is returned when the phase count is not positive.
	ErrInvalidPhases = errors.New("resample: invalid phase count")

	// ErrInvalidTaps is returned for a negative tap count.
	ErrInvalidTaps = errors.New("resample: invalid tap count")

	// ErrInvalidShift is returned when the shift is NaN or infinite.
	ErrInvalidShift = errors.New("resample: invalid shift")

	// ErrUnsupportedMethod is returned for an unknown Method.
	ErrUnsupportedMethod = errors.New("resample: unsupported method")
)
