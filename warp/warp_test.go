package warp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/image/draw"

	"github.com/gogpu/resample"
)

func newImage(t *testing.T, w, h int, fn func(x, y int) [4]byte) resample.Image {
	t.Helper()
	im, err := resample.Alloc(w, h)
	if err != nil {
		t.Fatalf("Alloc(%d, %d) failed: %v", w, h, err)
	}
	for y := range h {
		for x := range w {
			*im.Pixel(x, y) = fn(x, y)
		}
	}
	return im
}

func pattern(x, y int) [4]byte {
	return [4]byte{byte(x*40 + 10), byte(y*30 + 5), byte((x + y) * 17), byte(128 + x*10 + y*5)}
}

// =============================================================================
// Basic mapping
// =============================================================================

func TestWarpIdentity(t *testing.T) {
	for _, mode := range []resample.Mode{resample.ModeNearest, resample.ModeBilinear, resample.ModeBicubic} {
		t.Run(mode.String(), func(t *testing.T) {
			src := newImage(t, 7, 5, pattern)
			dst, _ := resample.Alloc(7, 5)

			w := New(WithMode(mode), WithWorkers(2))
			defer w.Close()

			if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
				t.Fatalf("Warp() error = %v", err)
			}
			if !bytes.Equal(dst.Pix, src.Pix) {
				t.Errorf("identity warp changed pixels")
			}
		})
	}
}

func TestWarpTranslate(t *testing.T) {
	src := newImage(t, 4, 4, pattern)
	marker := [4]byte{1, 2, 3, 4}
	dst := newImage(t, 6, 5, func(int, int) [4]byte { return marker })

	w := New(WithMode(resample.ModeNearest), WithOp(draw.Src))
	defer w.Close()

	if err := w.WarpForward(context.Background(), dst, src, Translate(2, 1)); err != nil {
		t.Fatalf("WarpForward() error = %v", err)
	}

	for y := range dst.Height {
		for x := range dst.Width {
			got := *dst.Pixel(x, y)
			sx, sy := x-2, y-1
			if sx < 0 || sx >= 4 || sy < 0 || sy >= 4 {
				if got != marker {
					t.Errorf("uncovered pixel (%d,%d) = %v, want untouched %v", x, y, got, marker)
				}
				continue
			}
			if want := *src.Pixel(sx, sy); got != want {
				t.Errorf("pixel (%d,%d) = %v, want src (%d,%d) %v", x, y, got, sx, sy, want)
			}
		}
	}
}

func TestWarpOpSrcClears(t *testing.T) {
	transparent := newImage(t, 2, 2, func(int, int) [4]byte { return [4]byte{} })
	red := [4]byte{255, 0, 0, 255}

	tests := []struct {
		name string
		op   draw.Op
		want [4]byte
	}{
		{"over keeps destination", draw.Over, red},
		{"src replaces destination", draw.Src, [4]byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := newImage(t, 2, 2, func(int, int) [4]byte { return red })
			w := New(WithMode(resample.ModeNearest), WithOp(tt.op))
			defer w.Close()

			if err := w.Warp(context.Background(), dst, transparent, Identity()); err != nil {
				t.Fatal(err)
			}
			if got := *dst.Pixel(1, 1); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWarpSupersampleCentered warps an opaque image whose channels are
// linear in x and y. Sub-samples sit symmetrically around each pixel's
// center, so their average reproduces the source at interior pixels; a
// half-pixel shift in any mode would move every value by half a step.
func TestWarpSupersampleCentered(t *testing.T) {
	linear := func(x, y int) [4]byte {
		return [4]byte{byte(10 + 40*x), byte(5 + 30*y), byte(17 * (x + y)), 255}
	}
	src := newImage(t, 6, 6, linear)

	for _, mode := range []resample.Mode{resample.ModeNearest, resample.ModeBilinear, resample.ModeBicubic} {
		t.Run(mode.String(), func(t *testing.T) {
			dst, _ := resample.Alloc(6, 6)
			w := New(WithMode(mode), WithSupersample(2))
			defer w.Close()

			if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
				t.Fatal(err)
			}
			for y := 1; y < 5; y++ {
				for x := 1; x < 5; x++ {
					if got, want := *dst.Pixel(x, y), linear(x, y); got != want {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestWarpBicubicSamplesNodes(t *testing.T) {
	src := newImage(t, 6, 6, pattern)
	var seen [][2]float32
	var mu sync.Mutex
	inner := resample.Bicubic{}
	s := resample.SamplerFunc(func(im resample.Image, x, y, o float32, d *[4]byte, atop bool) error {
		mu.Lock()
		seen = append(seen, [2]float32{x, y})
		mu.Unlock()
		return inner.Sample(im, x, y, o, d, atop)
	})

	// The same sampler through WithSampler gets pixel centers at i+0.5;
	// WithMode(bicubic) shifts them onto the nodes.
	dst, _ := resample.Alloc(6, 6)
	w := New(WithSampler(s), WithWorkers(1))
	defer w.Close()
	if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
		t.Fatal(err)
	}
	for _, p := range seen {
		if p[0]-float32(int(p[0])) != 0.5 || p[1]-float32(int(p[1])) != 0.5 {
			t.Fatalf("custom sampler got (%v, %v), want pixel centers", p[0], p[1])
		}
	}

	dst, _ = resample.Alloc(6, 6)
	bc := New(WithMode(resample.ModeBicubic))
	defer bc.Close()
	if err := bc.Warp(context.Background(), dst, src, Identity()); err != nil {
		t.Fatal(err)
	}
	for y := range 6 {
		for x := range 6 {
			if got, want := *dst.Pixel(x, y), *src.Pixel(x, y); got != want {
				t.Errorf("bicubic pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestWarpWorkersDeterministic(t *testing.T) {
	src := newImage(t, 16, 16, pattern)
	m := RotateAt(0.4, 8, 8)

	var results [][]byte
	for _, workers := range []int{1, 3, 8} {
		dst, _ := resample.Alloc(16, 16)
		w := New(WithMode(resample.ModeBicubic), WithWorkers(workers))
		if err := w.WarpForward(context.Background(), dst, src, m); err != nil {
			t.Fatal(err)
		}
		w.Close()
		results = append(results, dst.Pix)
	}
	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Errorf("result with config %d differs from single worker", i)
		}
	}
}

// =============================================================================
// Supersampling
// =============================================================================

func TestWarpSupersampleUniform(t *testing.T) {
	white := [4]byte{255, 255, 255, 255}
	src := newImage(t, 4, 4, func(int, int) [4]byte { return white })
	dst, _ := resample.Alloc(4, 4)

	w := New(WithSupersample(3))
	defer w.Close()

	if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		if got := [4]byte(dst.Pix[i : i+4]); got != white {
			t.Fatalf("pixel %d = %v, want %v", i/4, got, white)
		}
	}
}

// TestWarpSupersampleEdge shifts the source by half a pixel. The first
// destination column is then only half covered, and with 2x2 sampling
// half its sub-samples fall outside: alpha must come out at about 50%.
func TestWarpSupersampleEdge(t *testing.T) {
	src := newImage(t, 4, 4, func(int, int) [4]byte { return [4]byte{255, 255, 255, 255} })
	dst, _ := resample.Alloc(5, 4)

	w := New(WithMode(resample.ModeNearest), WithSupersample(2))
	defer w.Close()

	if err := w.WarpForward(context.Background(), dst, src, Translate(0.5, 0)); err != nil {
		t.Fatal(err)
	}

	edge := *dst.Pixel(0, 1)
	if edge[3] < 127 || edge[3] > 128 {
		t.Errorf("edge alpha = %d, want ~128", edge[3])
	}
	if edge[0] != 255 {
		t.Errorf("edge color = %d, want 255 (alpha weighted)", edge[0])
	}
	if inner := *dst.Pixel(2, 1); inner != [4]byte{255, 255, 255, 255} {
		t.Errorf("inner pixel = %v, want opaque white", inner)
	}
}

// =============================================================================
// Errors and cancellation
// =============================================================================

func TestWarpErrors(t *testing.T) {
	good, _ := resample.Alloc(8, 8)
	small, _ := resample.Alloc(3, 3)
	broken := resample.Image{Pix: make([]byte, 10), Width: 2, Height: 2}

	tests := []struct {
		name    string
		opts    []Option
		dst     resample.Image
		src     resample.Image
		wantErr error
	}{
		{"broken destination", nil, broken, good, resample.ErrBufferSize},
		{"broken source", nil, good, broken, resample.ErrBufferSize},
		{"bicubic needs 4x4", []Option{WithMode(resample.ModeBicubic)}, good, small, resample.ErrImageTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.opts...)
			defer w.Close()
			if err := w.Warp(context.Background(), tt.dst, tt.src, Identity()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Warp() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWarpForwardSingular(t *testing.T) {
	im, _ := resample.Alloc(4, 4)
	var buf bytes.Buffer
	w := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	defer w.Close()

	if err := w.WarpForward(context.Background(), im, im, Scale(0, 0)); !errors.Is(err, ErrSingular) {
		t.Fatalf("WarpForward() error = %v, want ErrSingular", err)
	}
	if !strings.Contains(buf.String(), "cannot invert") {
		t.Errorf("expected a warning in the log, got %q", buf.String())
	}
}

func TestWarpAfterClose(t *testing.T) {
	im, _ := resample.Alloc(4, 4)

	w := New()
	w.Close()
	if err := w.Warp(context.Background(), im, im, Identity()); !errors.Is(err, ErrClosed) {
		t.Errorf("Warp() after Close error = %v, want ErrClosed", err)
	}
	if w.pool != nil {
		t.Error("Warp after Close started a worker pool")
	}
	w.Close()

	used := New()
	if err := used.Warp(context.Background(), im, im, Identity()); err != nil {
		t.Fatal(err)
	}
	pool := used.pool
	used.Close()
	if pool.IsRunning() {
		t.Error("Close left the worker pool running")
	}
	if err := used.Warp(context.Background(), im, im, Identity()); !errors.Is(err, ErrClosed) {
		t.Errorf("Warp() after Close error = %v, want ErrClosed", err)
	}
}

func TestWarpCanceled(t *testing.T) {
	src, _ := resample.Alloc(4, 4)
	dst, _ := resample.Alloc(64, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New()
	defer w.Close()
	if err := w.Warp(ctx, dst, src, Identity()); !errors.Is(err, context.Canceled) {
		t.Errorf("Warp() error = %v, want context.Canceled", err)
	}
}

func TestWarpCustomSampler(t *testing.T) {
	src, _ := resample.Alloc(4, 4)
	dst, _ := resample.Alloc(10, 10)
	var calls atomic.Int64

	s := resample.SamplerFunc(func(src resample.Image, x, y, _ float32, d *[4]byte, _ bool) error {
		calls.Add(1)
		if x < 0 || x >= float32(src.Width) || y < 0 || y >= float32(src.Height) {
			t.Errorf("sampler called outside source at (%v, %v)", x, y)
		}
		d[3] = 255
		return nil
	})

	w := New(WithSampler(s))
	defer w.Close()
	if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 16 {
		t.Errorf("sampler called %d times, want 16 (covered pixels only)", calls.Load())
	}
}

func TestWarpSamplerErrorPropagates(t *testing.T) {
	src, _ := resample.Alloc(4, 4)
	dst, _ := resample.Alloc(4, 4)
	s := resample.SamplerFunc(func(resample.Image, float32, float32, float32, *[4]byte, bool) error {
		return resample.ErrOutOfRange
	})

	w := New(WithSampler(s))
	defer w.Close()
	err := w.Warp(context.Background(), dst, src, Identity())
	if !errors.Is(err, resample.ErrOutOfRange) {
		t.Errorf("Warp() error = %v, want ErrOutOfRange", err)
	}
}

func TestWarpOpacityAndAtop(t *testing.T) {
	src := newImage(t, 4, 4, func(int, int) [4]byte { return [4]byte{255, 255, 255, 255} })
	dst := newImage(t, 4, 4, func(int, int) [4]byte { return [4]byte{0, 0, 0, 255} })

	w := New(WithMode(resample.ModeNearest), WithOpacity(0.5), WithAtop(true))
	defer w.Close()
	if err := w.Warp(context.Background(), dst, src, Identity()); err != nil {
		t.Fatal(err)
	}
	if got := *dst.Pixel(2, 2); got != [4]byte{128, 128, 128, 255} {
		t.Errorf("pixel = %v, want [128 128 128 255]", got)
	}
}

func BenchmarkWarpRotate(b *testing.B) {
	src, _ := resample.Alloc(256, 256)
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	dst, _ := resample.Alloc(256, 256)
	m := RotateAt(math.Pi/7, 128, 128)

	for _, mode := range []resample.Mode{resample.ModeNearest, resample.ModeBilinear, resample.ModeBicubic} {
		b.Run(mode.String(), func(b *testing.B) {
			w := New(WithMode(mode))
			defer w.Close()
			for b.Loop() {
				_ = w.WarpForward(context.Background(), dst, src, m)
			}
		})
	}
}
