package warp

import (
	"context"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/resample"
)

var _ draw.Transformer = (*Warper)(nil)

// Transform implements draw.Transformer, so a Warper can stand in for
// draw.BiLinear or draw.CatmullRom.
//
// s2d maps source to destination coordinates, as in x/image/draw. Only
// draw.Over and draw.Src are meaningful for op; opts masks are not
// supported and are ignored. Images other than a tightly packed
// *image.NRGBA at the origin are converted through a temporary copy.
func (w *Warper) Transform(dst draw.Image, s2d f64.Aff3, src image.Image, sr image.Rectangle, op draw.Op, opts *draw.Options) {
	log := w.logger()
	if opts != nil && (opts.DstMask != nil || opts.SrcMask != nil) {
		log.Debug("warp: Transform ignores masks")
	}

	sr = sr.Intersect(src.Bounds())
	dr := dst.Bounds()
	if sr.Empty() || dr.Empty() {
		return
	}

	inv, err := Invert(s2d)
	if err != nil {
		log.Warn("warp: cannot invert transform", "m", s2d)
		return
	}

	// Destination-local -> destination-absolute -> source-absolute -> source-local.
	d2s := Chain(
		Translate(float64(dr.Min.X), float64(dr.Min.Y)),
		inv,
		Translate(-float64(sr.Min.X), -float64(sr.Min.Y)),
	)

	srcImg := toImage(src, sr)
	dstImg, direct := dstImage(dst)
	if !direct {
		dstImg = toImage(dst, dr)
	}

	if err := w.warp(context.Background(), dstImg, srcImg, d2s, op); err != nil {
		log.Warn("warp: Transform failed", "err", err)
		return
	}

	if !direct {
		draw.Draw(dst, dr, dstImg.NRGBA(), image.Point{}, draw.Src)
	}
}

// dstImage returns a view of dst when its pixels can be written in place.
func dstImage(dst draw.Image) (resample.Image, bool) {
	n, ok := dst.(*image.NRGBA)
	if !ok {
		return resample.Image{}, false
	}
	b := n.Bounds()
	if b.Min != (image.Point{}) || n.Stride != resample.BytesPerPixel*b.Dx() {
		return resample.Image{}, false
	}
	return resample.FromNRGBA(n), true
}

// toImage copies region r of img into a new straight-alpha image.
func toImage(img image.Image, r image.Rectangle) resample.Image {
	if n, ok := img.(*image.NRGBA); ok {
		if sub, ok := n.SubImage(r).(*image.NRGBA); ok {
			return resample.FromNRGBA(sub)
		}
	}
	n := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(n, n.Bounds(), img, r.Min, draw.Src)
	return resample.FromNRGBA(n)
}
