package vconv

import (
	"errors"

	"github.com/gogpu/vconv/internal/pipeline"
	"github.com/gogpu/vconv/resample"
)

// Sentinel errors. Functions wrap them with context; test with errors.Is.
var (
	// ErrInvalidExtent is returned for a non-positive frame size.
	ErrInvalidExtent = resample.ErrInvalidExtent

	// ErrUnsupportedMethod is returned for an unknown resampling method.
	ErrUnsupportedMethod = resample.ErrUnsupportedMethod

	// ErrIncompatibleFormat is returned when a format or colorimetry cannot
	// be converted.
	ErrIncompatibleFormat = errors.New("vconv: incompatible format")

	// ErrRegionOutOfBounds is returned when a source or destination region
	// does not fit its frame.
	ErrRegionOutOfBounds = errors.New("vconv: region out of bounds")

	// ErrInvalidOption is returned for unknown keys and malformed values.
	ErrInvalidOption = errors.New("vconv: invalid option")

	// ErrFrameMismatch is returned by Convert when a frame does not match
	// the descriptor the converter was built for.
	ErrFrameMismatch = pipeline.ErrFrameMismatch

	// ErrClosed is returned by a closed Converter.
	ErrClosed = errors.New("vconv: converter closed")
)
