package resample

import "math"

// Bilinear blends the 2x2 neighborhood around the coordinate.
//
// Pixel i is centered at i+0.5. Taps that fall outside the image are
// replaced by the nearest border pixel, so sampling far past an edge
// returns the edge column or row and past a corner returns the corner
// pixel. CheckBounds rejects coordinates outside the image with
// ErrOutOfRange instead.
type Bilinear struct {
	CheckBounds bool
}

var (
	_ Sampler       = Bilinear{}
	_ Reconstructor = Bilinear{}
)

// Reconstruct interpolates the four neighbors of (x-0.5, y-0.5).
func (Bilinear) Reconstruct(src Image, x, y float32) Texel {
	// Top-left tap index, kept as a float so distant coordinates cannot
	// overflow before clamping.
	m := floor32(x+0.5) - 1
	n := floor32(y+0.5) - 1
	dx := x - 0.5 - m
	dy := y - 0.5 - n

	p00 := src.clampedPixel(m, n)
	p10 := src.clampedPixel(m+1, n)
	p01 := src.clampedPixel(m, n+1)
	p11 := src.clampedPixel(m+1, n+1)

	var t Texel
	t.A = bilerp(p00[3], p10[3], p01[3], p11[3], dx, dy)
	t.R = bilerp(p00[0], p10[0], p01[0], p11[0], dx, dy)
	t.G = bilerp(p00[1], p10[1], p01[1], p11[1], dx, dy)
	t.B = bilerp(p00[2], p10[2], p01[2], p11[2], dx, dy)
	return t
}

// Sample composites the bilinear reconstruction onto dst.
func (s Bilinear) Sample(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error {
	if s.CheckBounds && outside(src, x, y) {
		return ErrOutOfRange
	}
	assertImage(src, 1)
	Composite(dst, s.Reconstruct(src, x, y), opacity, atop)
	return nil
}

// bilerp blends along x on both rows, then between the rows along y.
func bilerp(v00, v10, v01, v11 byte, dx, dy float32) float32 {
	a := float32(v00) + (float32(v10)-float32(v00))*dx
	b := float32(v01) + (float32(v11)-float32(v01))*dx
	return a + (b-a)*dy
}

func floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func ceil32(v float32) float32 {
	return float32(math.Ceil(float64(v)))
}
