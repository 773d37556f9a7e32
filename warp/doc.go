// Package warp drives the resample samplers over whole images.
//
// A Warper walks every destination pixel, maps its center through an
// affine transform into source space and asks a resample.Sampler to
// composite the source there. Rows are split into bands and run on a
// worker pool; each band owns its rows, so the per-pixel kernels never
// share a destination pixel.
//
//	w := warp.New(warp.WithMode(resample.ModeBicubic))
//	defer w.Close()
//
//	fwd := warp.RotateAt(math.Pi/6, cx, cy)
//	if err := w.WarpForward(ctx, dst, src, fwd); err != nil {
//	    return err
//	}
//
// Warper also implements golang.org/x/image/draw.Transformer.
package warp
