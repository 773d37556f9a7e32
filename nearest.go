package resample

// Nearest samples the pixel containing the coordinate.
//
// The pixel index is the coordinate truncated toward zero, so inputs in
// (-1, 0) select column or row 0. Without CheckBounds the coordinate must
// lie inside the image; with it, out-of-range coordinates return
// ErrOutOfRange and leave dst untouched.
type Nearest struct {
	CheckBounds bool
}

var (
	_ Sampler       = Nearest{}
	_ Reconstructor = Nearest{}
)

// Reconstruct returns the pixel at (int(x), int(y)).
func (Nearest) Reconstruct(src Image, x, y float32) Texel {
	p := (*[4]byte)(src.Pix[src.Offset(int(x), int(y)):])
	return Texel{
		R: float32(p[0]),
		G: float32(p[1]),
		B: float32(p[2]),
		A: float32(p[3]),
	}
}

// Sample composites the nearest source pixel onto dst.
func (s Nearest) Sample(src Image, x, y, opacity float32, dst *[4]byte, atop bool) error {
	if s.CheckBounds && outside(src, x, y) {
		return ErrOutOfRange
	}
	assertImage(src, 1)
	Composite(dst, s.Reconstruct(src, x, y), opacity, atop)
	return nil
}
