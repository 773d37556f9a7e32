// Package resample samples RGBA images at sub-pixel coordinates and
// alpha-composites the result onto a destination pixel.
//
// # Overview
//
// Three interchangeable samplers share one signature, the [Sampler]
// interface:
//
//   - [Nearest] picks the pixel containing the coordinate
//   - [Bilinear] blends the 2x2 neighborhood with clamp-to-edge borders
//   - [Bicubic] fits cubic polynomials through a 4x4 neighborhood
//
// A sampler is called once per destination pixel, usually from a
// geometric transform loop (see the warp sub-package):
//
//	src := resample.Image{Pix: pix, Width: w, Height: h}
//	var s resample.Sampler = resample.Bilinear{}
//	dst := out.Pixel(i, j)
//	if err := s.Sample(src, x, y, 1, dst, false); err != nil {
//	    // only returned when CheckBounds is set
//	}
//
// # Compositing
//
// Every sampler finishes with the same step, exposed as [Composite]:
// the sampled alpha scaled by the opacity is combined with the
// destination alpha as a Porter-Duff union, and the colors are blended
// by the source's share of that union. The atop variant keeps the
// color blend but sets the destination alpha to the sampled alpha.
// Calling a sampler several times on the same pixel accumulates.
//
// # Pixel Layout
//
// Pixels are 4 bytes, R G B A, straight (non-premultiplied) alpha, rows
// packed without padding. This matches [image.NRGBA] with a tight stride.
//
// # Concurrency
//
// Samplers are stateless and allocation free. They may be called from
// many goroutines at once as long as each writes a different destination
// pixel and nobody writes the source.
package resample
