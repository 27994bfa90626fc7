package vconv

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"golang.org/x/text/cases"

	"github.com/gogpu/vconv/internal/pipeline"
	"github.com/gogpu/vconv/resample"
)

// DitherMethod selects how samples are quantized when the destination has
// fewer bits than the working precision.
type DitherMethod = pipeline.DitherMethod

// Dither methods.
const (
	DitherNone     = pipeline.DitherNone
	DitherVertErr  = pipeline.DitherVertErr
	DitherHalftone = pipeline.DitherHalftone
	DitherHorizErr = pipeline.DitherHorizErr
)

// GammaMode selects whether differing transfer functions are converted.
type GammaMode uint8

const (
	// GammaNone keeps non-linear values as they are.
	GammaNone GammaMode = iota
	// GammaRemap converts through linear light to the destination transfer.
	GammaRemap
)

// String returns the configuration name of the mode.
func (m GammaMode) String() string {
	switch m {
	case GammaNone:
		return "none"
	case GammaRemap:
		return "remap"
	}
	return fmt.Sprintf("GammaMode(%d)", m)
}

// PrimariesMode selects whether differing color primaries are converted.
type PrimariesMode uint8

const (
	// PrimariesNone reinterprets RGB in the destination primaries.
	PrimariesNone PrimariesMode = iota
	// PrimariesConvert maps linear RGB between primaries.
	PrimariesConvert
)

// String returns the configuration name of the mode.
func (m PrimariesMode) String() string {
	switch m {
	case PrimariesNone:
		return "none"
	case PrimariesConvert:
		return "convert"
	}
	return fmt.Sprintf("PrimariesMode(%d)", m)
}

// Config is the configuration of a Converter.
//
// A width or height of -1 extends the region to the edge of the frame.
type Config struct {
	ResamplerMethod resample.Method
	// ResamplerTaps is the filter length; 0 picks it from the method and
	// scale factor.
	ResamplerTaps int

	CubicB    float64
	CubicC    float64
	Envelope  float64
	Sharpness float64
	Sharpen   float64

	DitherMethod DitherMethod

	SrcX, SrcY, SrcWidth, SrcHeight     int
	DestX, DestY, DestWidth, DestHeight int

	// FillBorder paints destination pixels outside the destination region
	// with BorderARGB.
	FillBorder bool
	BorderARGB uint32

	// Threads is the number of row bands converted concurrently; 0 uses
	// GOMAXPROCS.
	Threads int

	GammaMode     GammaMode
	PrimariesMode PrimariesMode
}

// DefaultConfig returns the default configuration: Mitchell cubic
// resampling, no dithering, whole-frame regions and a black border.
func DefaultConfig() Config {
	o := resample.DefaultOptions()
	return Config{
		ResamplerMethod: resample.Cubic,
		CubicB:          o.CubicB,
		CubicC:          o.CubicC,
		Envelope:        o.Envelope,
		Sharpness:       o.Sharpness,
		Sharpen:         o.Sharpen,
		DitherMethod:    DitherNone,
		SrcWidth:        -1,
		SrcHeight:       -1,
		DestWidth:       -1,
		DestHeight:      -1,
		FillBorder:      true,
		Threads:         1,
	}
}

// Validate checks enumerations and region parameters. Kernel parameters are
// not checked; they are clamped to their ranges when tables are built.
func (c *Config) Validate() error {
	if !c.ResamplerMethod.IsValid() {
		return fmt.Errorf("vconv: %w: %v", ErrUnsupportedMethod, c.ResamplerMethod)
	}
	if c.ResamplerTaps < 0 {
		return fmt.Errorf("%w: resampler-taps %d", ErrInvalidOption, c.ResamplerTaps)
	}
	if c.DitherMethod > DitherHorizErr {
		return fmt.Errorf("%w: dither-method %v", ErrInvalidOption, c.DitherMethod)
	}
	if c.GammaMode > GammaRemap {
		return fmt.Errorf("%w: gamma-mode %v", ErrInvalidOption, c.GammaMode)
	}
	if c.PrimariesMode > PrimariesConvert {
		return fmt.Errorf("%w: primaries-mode %v", ErrInvalidOption, c.PrimariesMode)
	}
	if c.Threads < 0 {
		return fmt.Errorf("%w: threads %d", ErrInvalidOption, c.Threads)
	}
	for _, r := range []struct {
		name       string
		x, y, w, h int
	}{
		{"src", c.SrcX, c.SrcY, c.SrcWidth, c.SrcHeight},
		{"dest", c.DestX, c.DestY, c.DestWidth, c.DestHeight},
	} {
		if r.x < 0 || r.y < 0 {
			return fmt.Errorf("%w: %s origin %d,%d", ErrRegionOutOfBounds, r.name, r.x, r.y)
		}
		if r.w == 0 || r.w < -1 || r.h == 0 || r.h < -1 {
			return fmt.Errorf("%w: %s size %dx%d", ErrRegionOutOfBounds, r.name, r.w, r.h)
		}
	}
	return nil
}

// ResampleOptions returns the kernel options of c.
func (c *Config) ResampleOptions() resample.Options {
	o := resample.DefaultOptions()
	o.CubicB = c.CubicB
	o.CubicC = c.CubicC
	o.Envelope = c.Envelope
	o.Sharpness = c.Sharpness
	o.Sharpen = c.Sharpen
	return o.Clamped()
}

// configKey binds a key of the key/value surface to a Config field.
type configKey struct {
	parse  func(c *Config, v string) error
	format func(c *Config) string
}

func intKey(field func(c *Config) *int) configKey {
	return configKey{
		parse: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
		format: func(c *Config) string { return strconv.Itoa(*field(c)) },
	}
}

func floatKey(field func(c *Config) *float64) configKey {
	return configKey{
		parse: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
		format: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
	}
}

// enumKey parses one of names, matched case-insensitively.
func enumKey[T ~uint8](names []string, field func(c *Config) *T) configKey {
	return configKey{
		parse: func(c *Config, v string) error {
			i := slices.Index(names, cases.Fold().String(v))
			if i < 0 {
				return fmt.Errorf("want one of %v", names)
			}
			*field(c) = T(i)
			return nil
		},
		format: func(c *Config) string {
			if v := int(*field(c)); v < len(names) {
				return names[v]
			}
			return strconv.Itoa(int(*field(c)))
		},
	}
}

var configKeys = map[string]configKey{
	"resampler-method": {
		parse: func(c *Config, v string) (err error) {
			c.ResamplerMethod, err = resample.ParseMethod(v)
			return err
		},
		format: func(c *Config) string { return c.ResamplerMethod.String() },
	},
	"resampler-taps": intKey(func(c *Config) *int { return &c.ResamplerTaps }),
	"cubic-b":        floatKey(func(c *Config) *float64 { return &c.CubicB }),
	"cubic-c":        floatKey(func(c *Config) *float64 { return &c.CubicC }),
	"envelope":       floatKey(func(c *Config) *float64 { return &c.Envelope }),
	"sharpness":      floatKey(func(c *Config) *float64 { return &c.Sharpness }),
	"sharpen":        floatKey(func(c *Config) *float64 { return &c.Sharpen }),
	"dither-method": enumKey([]string{"none", "verterr", "halftone", "horizerr"},
		func(c *Config) *DitherMethod { return &c.DitherMethod }),
	"src-x":       intKey(func(c *Config) *int { return &c.SrcX }),
	"src-y":       intKey(func(c *Config) *int { return &c.SrcY }),
	"src-width":   intKey(func(c *Config) *int { return &c.SrcWidth }),
	"src-height":  intKey(func(c *Config) *int { return &c.SrcHeight }),
	"dest-x":      intKey(func(c *Config) *int { return &c.DestX }),
	"dest-y":      intKey(func(c *Config) *int { return &c.DestY }),
	"dest-width":  intKey(func(c *Config) *int { return &c.DestWidth }),
	"dest-height": intKey(func(c *Config) *int { return &c.DestHeight }),
	"fill-border": {
		parse: func(c *Config, v string) (err error) {
			c.FillBorder, err = strconv.ParseBool(v)
			return err
		},
		format: func(c *Config) string { return strconv.FormatBool(c.FillBorder) },
	},
	"border-argb": {
		parse: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 0, 32)
			if err != nil {
				return err
			}
			c.BorderARGB = uint32(n)
			return nil
		},
		format: func(c *Config) string { return fmt.Sprintf("0x%08x", c.BorderARGB) },
	},
	"threads": intKey(func(c *Config) *int { return &c.Threads }),
	"gamma-mode": enumKey([]string{"none", "remap"},
		func(c *Config) *GammaMode { return &c.GammaMode }),
	"primaries-mode": enumKey([]string{"none", "convert"},
		func(c *Config) *PrimariesMode { return &c.PrimariesMode }),
}

// ConfigKeys returns the keys accepted by ParseConfig in sorted order.
func ConfigKeys() []string {
	return slices.Sorted(maps.Keys(configKeys))
}

// ParseConfig builds a Config from key/value pairs on top of DefaultConfig.
// Keys are processed in sorted order so the first error is deterministic.
func ParseConfig(kv map[string]string) (Config, error) {
	c := DefaultConfig()
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		key, ok := configKeys[k]
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidOption, k)
		}
		if err := key.parse(&c, kv[k]); err != nil {
			if k == "resampler-method" {
				return Config{}, fmt.Errorf("vconv: %w", err)
			}
			return Config{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidOption, k, kv[k], err)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Map returns c as key/value pairs accepted by ParseConfig.
func (c *Config) Map() map[string]string {
	m := make(map[string]string, len(configKeys))
	for k, key := range configKeys {
		m[k] = key.format(c)
	}
	return m
}
