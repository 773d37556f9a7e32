package resample

// Bicubic fits cubic polynomials through a 4x4 neighborhood.
//
// The window starts at column ceil(x)-2 and row ceil(y)-2 and is shifted
// inward so it always lies inside the image; sample k of a window sits at
// abscissa k, so integer coordinates reproduce source pixels exactly.
// The image must be at least 4x4. This is not checked except in builds
// tagged resampledebug; use Image.ValidateFor(ModeBicubic) up front.
//
// The reconstructed alpha is clamped to [0, 255] because it drives the
// compositing weight. Color channels are returned unclamped and may
// overshoot near sharp edges; Composite saturates them when storing.
type Bicubic struct {
	CheckBounds bool
}

var (
	_ Sampler       = Bicubic{}
	_ Reconstructor = Bicubic{}
)

// Reconstruct interpolates each channel first down the four window
// columns at y, then across the four column results at x.
func (Bicubic) Reconstruct(src Image, x, y float32) Texel {
	m := windowStart(x, src.Width)
	n := windowStart(y, src.Height)
	tx := x - float32(m)
	ty := y - float32(n)

	stride := BytesPerPixel * src.Width
	base := src.Offset(m, n)
	pix := src.Pix

	var out [4]float32
	for c := range out {
		var cols [4]float32
		for i := range cols {
			o := base + BytesPerPixel*i + c
			cols[i] = cubicInterpolate(
				float32(pix[o]),
				float32(pix[o+stride]),
				float32(pix[o+2*stride]),
				float32(pix[o+3*stride]),
				ty,
			)
		}
		out[c] = cubicInterpolate(cols[0], cols[1], cols[2], cols[3], tx)
	}

	return Texel{
		R: out[0],
		G: out[1],
		B: out[2],
		A: clamp255(out[3]),
	}
}

// Sample composites the bicubic reconstruction onto dst.
func (s Bicubic) Sample(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error {
	if s.CheckBounds && outside(src, x, y) {
		return ErrOutOfRange
	}
	assertImage(src, 4)
	Composite(dst, s.Reconstruct(src, x, y), opacity, atop)
	return nil
}

// windowStart returns max(0, min(ceil(v)-2, size-4)).
func windowStart(v float32, size int) int {
	m := ceil32(v) - 2
	if m > float32(size-4) {
		m = float32(size - 4)
	}
	if !(m > 0) {
		return 0
	}
	return int(m)
}

// cubicInterpolate evaluates at t the cubic through (0,p0), (1,p1),
// (2,p2), (3,p3). It uses Neville's scheme: three passes of linear
// blending between neighbors, each pass raising the degree by one.
func cubicInterpolate(p0, p1, p2, p3, t float32) float32 {
	p3 += (t - 3) * (p3 - p2)
	p2 += (t - 2) * (p2 - p1)
	p1 += (t - 1) * (p1 - p0)

	p3 += (t - 3) / 2 * (p3 - p2)
	p2 += (t - 2) / 2 * (p2 - p1)

	p3 += (t - 3) / 3 * (p3 - p2)
	return p3
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
