package warp

import (
	"context"
	"fmt"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/resample"
	"github.com/gogpu/resample/internal/parallel"
)

// ErrClosed is returned by Warp and WarpForward after Close.
var ErrClosed = errors.New("warp: warper closed")

// Warper maps a source image onto a destination through an affine
// transform, calling a resample.Sampler once per destination pixel (or
// once per sub-sample when supersampling).
//
// A Warper owns a worker pool that is started on first use; call Close
// when done. A Warper is safe for concurrent use, but concurrent warps
// into the same destination race.
type Warper struct {
	opts options

	mu     sync.Mutex
	pool   *parallel.WorkerPool
	closed bool
}

// New creates a Warper.
func New(opts ...Option) *Warper {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Warper{opts: o}
}

// Close stops the worker pool. Later warps return ErrClosed. Close must
// not be called while a warp is running.
func (w *Warper) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.pool != nil {
		w.pool.Close()
		w.pool = nil
	}
}

func (w *Warper) logger() *slog.Logger {
	if w.opts.logger != nil {
		return w.opts.logger
	}
	return resample.Logger()
}

func (w *Warper) workerPool() (*parallel.WorkerPool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.pool == nil {
		w.pool = parallel.NewWorkerPool(w.opts.workers)
	}
	return w.pool, nil
}

// Warp composites src onto dst. m maps destination pixel space to
// source pixel space: destination pixel (i, j) samples the source at
// m applied to its center (i+0.5, j+0.5). In both spaces pixel i covers
// [i, i+1). The point is shifted into the sampler's own convention before
// sampling, so bicubic receives it 0.5 lower and lands on its node i.
//
// Samples that land outside the source are skipped, so destination
// pixels the source does not cover keep their value. Warp checks ctx
// between rows and returns ctx.Err() when canceled; rows already
// written stay written.
func (w *Warper) Warp(ctx context.Context, dst, src resample.Image, m f64.Aff3) error {
	return w.warp(ctx, dst, src, m, w.opts.op)
}

// WarpForward is like Warp but takes the source-to-destination
// transform and inverts it.
func (w *Warper) WarpForward(ctx context.Context, dst, src resample.Image, fwd f64.Aff3) error {
	inv, err := Invert(fwd)
	if err != nil {
		w.logger().Warn("warp: cannot invert transform", "m", fwd)
		return err
	}
	return w.warp(ctx, dst, src, inv, w.opts.op)
}

func (w *Warper) warp(ctx context.Context, dst, src resample.Image, m f64.Aff3, op draw.Op) error {
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("warp: destination: %w", err)
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("warp: source: %w", err)
	}
	if src.Width < w.opts.minSize || src.Height < w.opts.minSize {
		return fmt.Errorf("warp: source: %w: need %dx%d, got %dx%d",
			resample.ErrImageTooSmall, w.opts.minSize, w.opts.minSize, src.Width, src.Height)
	}

	pool, err := w.workerPool()
	if err != nil {
		return err
	}
	bands := parallel.Bands(dst.Height, pool.Workers(), w.opts.minRows)
	log := w.logger()
	log.Debug("warp: start",
		"dst", fmt.Sprintf("%dx%d", dst.Width, dst.Height),
		"src", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"workers", pool.Workers(),
		"bands", len(bands),
		"supersample", w.opts.supersample)
	start := time.Now()

	job := &job{
		dst:     dst,
		src:     src,
		m:       m,
		sampler: w.opts.sampler,
		center:  float32(w.opts.center),
		opacity: w.opts.opacity,
		atop:    w.opts.atop,
		clear:   op == draw.Src,
		n:       w.opts.supersample,
	}

	tasks := make([]func(), len(bands))
	for i, b := range bands {
		tasks[i] = func() { job.rows(ctx, b) }
	}
	if err := pool.Run(ctx, tasks); err != nil {
		log.Debug("warp: canceled", "err", err)
		return err
	}
	if err := job.firstErr(); err != nil {
		return err
	}

	log.Debug("warp: done", "elapsed", time.Since(start))
	return nil
}

// job is one warp call shared by all bands.
type job struct {
	dst, src resample.Image
	m        f64.Aff3
	sampler  resample.Sampler
	center   float32
	opacity  float32
	atop     bool
	clear    bool
	n        int

	errMu sync.Mutex
	err   error
}

func (j *job) setErr(err error) {
	j.errMu.Lock()
	if j.err == nil {
		j.err = err
	}
	j.errMu.Unlock()
}

func (j *job) firstErr() error {
	j.errMu.Lock()
	defer j.errMu.Unlock()
	return j.err
}

func (j *job) rows(ctx context.Context, b parallel.Band) {
	for y := b.Y0; y < b.Y1; y++ {
		if ctx.Err() != nil {
			return
		}
		var err error
		if j.n == 1 {
			err = j.row(y)
		} else {
			err = j.rowSupersampled(y)
		}
		if err != nil {
			j.setErr(err)
			return
		}
	}
}

// inside is checked on the float32 values the sampler receives; a float64
// just below the width can round up to it.
func (j *job) inside(sx, sy float32) bool {
	return sx >= 0 && sx < float32(j.src.Width) && sy >= 0 && sy < float32(j.src.Height)
}

func (j *job) sourcePoint(x, y float64) (float32, float32) {
	sx, sy := Apply(j.m, x, y)
	return float32(sx), float32(sy)
}

func (j *job) row(y int) error {
	for x := range j.dst.Width {
		sx, sy := j.sourcePoint(float64(x)+0.5, float64(y)+0.5)
		if !j.inside(sx, sy) {
			continue
		}
		p := j.dst.Pixel(x, y)
		if j.clear {
			*p = [4]byte{}
		}
		if err := j.sampler.Sample(j.src, sx+j.center, sy+j.center, j.opacity, p, j.atop); err != nil {
			return fmt.Errorf("warp: pixel (%d,%d): %w", x, y, err)
		}
	}
	return nil
}

// rowSupersampled reconstructs n*n sub-samples per pixel, averages them
// with alpha weighting and composites the average once. Sub-samples
// outside the source count as transparent, which anti-aliases the
// source's edges.
func (j *job) rowSupersampled(y int) error {
	n := j.n
	step := 1 / float64(n)
	total := float32(n * n)

	for x := range j.dst.Width {
		var sumR, sumG, sumB, sumA float32
		hit := false
		for sj := range n {
			for si := range n {
				sx, sy := j.sourcePoint(float64(x)+(float64(si)+0.5)*step, float64(y)+(float64(sj)+0.5)*step)
				if !j.inside(sx, sy) {
					continue
				}
				hit = true
				t, err := j.reconstruct(sx+j.center, sy+j.center)
				if err != nil {
					return fmt.Errorf("warp: pixel (%d,%d): %w", x, y, err)
				}
				sumR += t.R * t.A
				sumG += t.G * t.A
				sumB += t.B * t.A
				sumA += t.A
			}
		}
		if !hit {
			continue
		}

		t := resample.Texel{A: sumA / total}
		if sumA > 0 {
			t.R, t.G, t.B = sumR/sumA, sumG/sumA, sumB/sumA
		}
		p := j.dst.Pixel(x, y)
		if j.clear {
			*p = [4]byte{}
		}
		resample.Composite(p, t, j.opacity, j.atop)
	}
	return nil
}

// reconstruct returns the source value at (x, y). Samplers that are not
// a resample.Reconstructor are composited onto a transparent scratch
// pixel at full opacity, which yields the same value quantized to bytes.
func (j *job) reconstruct(x, y float32) (resample.Texel, error) {
	if r, ok := j.sampler.(resample.Reconstructor); ok {
		return r.Reconstruct(j.src, x, y), nil
	}
	var s [4]byte
	if err := j.sampler.Sample(j.src, x, y, 1, &s, false); err != nil {
		return resample.Texel{}, err
	}
	return resample.Texel{R: float32(s[0]), G: float32(s[1]), B: float32(s[2]), A: float32(s[3])}, nil
}
