package resample

import (
	"errors"
	"fmt"
	"strings"
)

// Sampler reconstructs the source at a sub-pixel coordinate and
// composites the result onto one destination pixel in place.
//
// x and y are in source pixel space and may lie outside the image; how
// that is handled depends on the implementation. opacity scales the
// source's contribution and is not clamped. When atop is true the
// destination alpha is replaced by the sampled alpha instead of the
// union of both coverages.
//
// Implementations are pure apart from writing dst: they hold no state,
// never allocate and are safe to call concurrently on disjoint
// destination pixels while src is not being written.
type Sampler interface {
	Sample(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error
}

// SamplerFunc adapts an ordinary function to the Sampler interface.
type SamplerFunc func(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error

// Sample calls f(src, x, y, opacity, dst, atop).
func (f SamplerFunc) Sample(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error {
	return f(src, x, y, opacity, dst, atop)
}

// Reconstructor is implemented by samplers that can return the
// reconstructed source value without compositing it.
type Reconstructor interface {
	Reconstruct(src Image, x, y float32) Texel
}

// Texel is a reconstructed source sample on the 0-255 scale, straight alpha.
// Values may fall outside [0, 255] where the reconstruction overshoots.
type Texel struct {
	R, G, B, A float32
}

// Status codes for hosts that need the integer form of a sampler result.
const (
	StatusOK         = 0
	StatusOutOfRange = -1
	StatusFailed     = -2
)

// Status converts a Sample error into its integer status code.
// Errors other than ErrOutOfRange map to -2.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrOutOfRange):
		return StatusOutOfRange
	default:
		return StatusFailed
	}
}

// Mode names one of the interpolation strategies.
type Mode uint8

const (
	// ModeNearest selects the pixel containing the coordinate.
	ModeNearest Mode = iota

	// ModeBilinear blends the 2x2 neighborhood with edge replication.
	ModeBilinear

	// ModeBicubic fits cubic polynomials through a 4x4 neighborhood.
	ModeBicubic
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNearest:
		return "nearest"
	case ModeBilinear:
		return "bilinear"
	case ModeBicubic:
		return "bicubic"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as printed by String. A few common
// aliases are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "nn", "nearest-neighbor":
		return ModeNearest, nil
	case "bilinear", "linear", "bl":
		return ModeBilinear, nil
	case "bicubic", "cubic", "bc":
		return ModeBicubic, nil
	default:
		return 0, fmt.Errorf("resample: unknown interpolation mode %q", s)
	}
}

// MinSize returns the smallest width and height the mode supports.
// Bilinear replicates borders and works down to 1x1; bicubic needs a
// full 4x4 window.
func (m Mode) MinSize() int {
	if m == ModeBicubic {
		return 4
	}
	return 1
}

// Sampler returns the sampler for the mode.
func (m Mode) Sampler(checkBounds bool) Sampler {
	switch m {
	case ModeBilinear:
		return Bilinear{CheckBounds: checkBounds}
	case ModeBicubic:
		return Bicubic{CheckBounds: checkBounds}
	default:
		return Nearest{CheckBounds: checkBounds}
	}
}

// outside reports whether (x, y) is not inside [0,w)x[0,h). NaN is outside.
func outside(src Image, x, y float32) bool {
	return !(x >= 0 && x < float32(src.Width) && y >= 0 && y < float32(src.Height))
}

// assertImage panics on a violated buffer precondition in builds tagged
// resampledebug. In regular builds the check compiles away.
func assertImage(src Image, window int) {
	if !debugAssertions {
		return
	}
	if err := src.Validate(); err != nil {
		panic(err)
	}
	if src.Width < window || src.Height < window {
		panic(fmt.Sprintf("resample: %dx%d image smaller than %dx%d window", src.Width, src.Height, window, window))
	}
}
