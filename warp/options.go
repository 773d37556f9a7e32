package warp

import (
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/gogpu/resample"
)

// Option configures a Warper during creation.
//
// Example:
//
//	w := warp.New(
//	    warp.WithMode(resample.ModeBicubic),
//	    warp.WithOpacity(0.8),
//	    warp.WithSupersample(2),
//	)
//	defer w.Close()
type Option func(*options)

type options struct {
	sampler     resample.Sampler
	minSize     int
	center      float64
	opacity     float32
	atop        bool
	op          draw.Op
	supersample int
	workers     int
	minRows     int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		sampler:     resample.Bilinear{},
		minSize:     resample.ModeBilinear.MinSize(),
		opacity:     1,
		op:          draw.Over,
		supersample: 1,
		minRows:     8,
	}
}

// WithMode selects one of the built-in samplers. The default is bilinear.
func WithMode(m resample.Mode) Option {
	return func(o *options) {
		o.sampler = m.Sampler(false)
		o.minSize = m.MinSize()
		o.center = centerOffset(m)
	}
}

// centerOffset moves a point from the pixel-center-at-i+0.5 convention
// the warper computes in to the one the mode samples in. Bicubic places
// pixel i at abscissa i.
func centerOffset(m resample.Mode) float64 {
	if m == resample.ModeBicubic {
		return -0.5
	}
	return 0
}

// WithSampler installs a custom sampler. The warper never calls it with
// a coordinate outside the source image, and pixel i is centered at i+0.5.
func WithSampler(s resample.Sampler) Option {
	return func(o *options) {
		if s != nil {
			o.sampler = s
			o.minSize = 1
			o.center = 0
		}
	}
}

// WithOpacity scales the source contribution. The value is passed to the
// sampler unchanged.
func WithOpacity(opacity float32) Option {
	return func(o *options) {
		o.opacity = opacity
	}
}

// WithAtop selects the atop compositing variant: destination alpha is
// replaced by the sampled alpha.
func WithAtop(atop bool) Option {
	return func(o *options) {
		o.atop = atop
	}
}

// WithOp sets the Porter-Duff operator. draw.Over (the default)
// composites onto the existing destination; draw.Src first clears every
// destination pixel the source covers.
func WithOp(op draw.Op) Option {
	return func(o *options) {
		o.op = op
	}
}

// WithSupersample takes n x n samples per destination pixel and averages
// them before compositing. Values below 1 mean 1.
func WithSupersample(n int) Option {
	return func(o *options) {
		o.supersample = max(n, 1)
	}
}

// WithWorkers sets the number of goroutines. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger overrides the package logger for this warper.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
