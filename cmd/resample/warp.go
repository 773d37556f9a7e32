package main

import (
	"context"
	"math"
	"time"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"golang.org/x/image/math/f64"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/resample"
	"github.com/gogpu/resample/internal/imageio"
	"github.com/gogpu/resample/warp"
)

type warpFlags struct {
	mode        string
	rotate      float64
	scale       float64
	translate   string
	opacity     float32
	atop        bool
	supersample int
	workers     int
	bg          string
}

func (a *app) warpCmd() *cobra.Command {
	var f warpFlags
	cmd := &cobra.Command{
		Use:   "warp <in> <out>",
		Short: "rotate, scale and translate an image",
		Long: `Rotate, scale and translate an image.

The output canvas is the bounding box of the scaled and rotated input.
--translate then moves the image inside that canvas. The output format
follows the file extension of <out>.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWarp(cmd, f, args[0], args[1])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.mode, `mode`, `m`, ``, `sampler: nearest, bilinear, bicubic`)
	fl.Float64VarP(&f.rotate, `rotate`, `r`, 0, `rotation in degrees, clockwise`)
	fl.Float64VarP(&f.scale, `scale`, `s`, 1, `uniform scale factor`)
	fl.StringVarP(&f.translate, `translate`, `t`, `0,0`, `offset in output pixels as x,y`)
	fl.Float32Var(&f.opacity, `opacity`, 1, `source opacity in [0, 1]`)
	fl.BoolVar(&f.atop, `atop`, false, `keep the sampled alpha instead of the union`)
	fl.IntVar(&f.supersample, `supersample`, 1, `n x n samples per output pixel`)
	fl.IntVar(&f.workers, `workers`, 0, `worker goroutines (0: GOMAXPROCS)`)
	fl.StringVar(&f.bg, `bg`, `0,0,0,0`, `background color as r,g,b,a`)
	return cmd
}

func (a *app) runWarp(cmd *cobra.Command, f warpFlags, in, out string) error {
	cfg := a.cfg
	fl := cmd.Flags()
	if fl.Changed(`mode`) {
		m, err := resample.ParseMode(f.mode)
		if err != nil {
			return errors.Wrap(err, 0)
		}
		cfg.Mode = m
	}
	if fl.Changed(`opacity`) {
		cfg.Opacity = f.opacity
	}
	if fl.Changed(`atop`) {
		cfg.Atop = f.atop
	}
	if fl.Changed(`supersample`) {
		cfg.Supersample = f.supersample
	}
	if fl.Changed(`workers`) {
		cfg.Workers = f.workers
	}

	if !(f.scale > 0) || math.IsInf(f.scale, 0) {
		return errors.Errorf("--scale must be positive, got %v", f.scale)
	}
	tx, ty, err := parsePair(f.translate)
	if err != nil {
		return errors.WrapPrefix(err, "--translate", 0)
	}
	bg, err := parseRGBA(f.bg)
	if err != nil {
		return errors.WrapPrefix(err, "--bg", 0)
	}

	src, format, err := imageio.Load(in)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	resample.Logger().Debug("resample: loaded", "path", in, "format", format, "width", src.Width, "height", src.Height)

	fwd, w, h := fitTransform(src.Width, src.Height, f.scale, f.rotate*math.Pi/180, tx, ty)
	dst, err := resample.Alloc(w, h)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	dst.Fill(bg)

	warper := warp.New(
		warp.WithMode(cfg.Mode),
		warp.WithOpacity(cfg.Opacity),
		warp.WithAtop(cfg.Atop),
		warp.WithSupersample(cfg.Supersample),
		warp.WithWorkers(cfg.Workers),
	)
	defer warper.Close()

	start := time.Now()
	if err := warper.WarpForward(context.Background(), dst, src, fwd); err != nil {
		return errors.Wrap(err, 0)
	}
	elapsed := time.Since(start)

	if err := imageio.Save(out, dst); err != nil {
		return errors.Wrap(err, 0)
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "%s: %dx%d -> %s: %dx%d, %d pixels, %s, %v\n",
		in, src.Width, src.Height, out, w, h, w*h, cfg.Mode, elapsed.Round(time.Microsecond))
	return nil
}

// fitTransform returns the forward transform for scale s and rotation
// angle (radians) together with the size of the canvas holding the
// result. The canvas is the bounding box of the transformed source,
// before (tx, ty) is applied.
func fitTransform(w, h int, s, angle, tx, ty float64) (f64.Aff3, int, int) {
	lin := warp.Chain(warp.Scale(s, s), warp.Rotate(angle))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {float64(w), 0}, {0, float64(h)}, {float64(w), float64(h)}} {
		x, y := warp.Apply(lin, c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	// Trig noise must not add a column at exact multiples of 90 degrees.
	const eps = 1e-6
	dw := max(1, int(math.Ceil(maxX-minX-eps)))
	dh := max(1, int(math.Ceil(maxY-minY-eps)))

	return warp.Chain(lin, warp.Translate(tx-minX, ty-minY)), dw, dh
}
