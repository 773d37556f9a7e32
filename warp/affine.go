package warp

import (
	"errors"
	"math"

	"golang.org/x/image/math/f64"
)

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("warp: singular transform")

// The helpers below build f64.Aff3 matrices. An Aff3 {a, b, c, d, e, f}
// maps (x, y) to (a*x + b*y + c, d*x + e*y + f).

// Identity returns the transform that leaves points unchanged.
func Identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Translate shifts points by (tx, ty).
func Translate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

// Scale scales by (sx, sy) around the origin. Negative factors flip.
func Scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

// Rotate rotates by angle radians around the origin. With y pointing
// down, positive angles turn clockwise on screen.
func Rotate(angle float64) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// Shear skews x by sx*y and y by sy*x.
func Shear(sx, sy float64) f64.Aff3 {
	return f64.Aff3{1, sx, 0, sy, 1, 0}
}

// Multiply returns the transform that applies n first and then m.
func Multiply(m, n f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Chain composes transforms in application order: Chain(a, b, c) applies
// a, then b, then c.
func Chain(ts ...f64.Aff3) f64.Aff3 {
	out := Identity()
	for _, t := range ts {
		out = Multiply(t, out)
	}
	return out
}

// RotateAt rotates by angle radians around (cx, cy).
func RotateAt(angle, cx, cy float64) f64.Aff3 {
	return Chain(Translate(-cx, -cy), Rotate(angle), Translate(cx, cy))
}

// ScaleAt scales by (sx, sy) around (cx, cy).
func ScaleAt(sx, sy, cx, cy float64) f64.Aff3 {
	return Chain(Translate(-cx, -cy), Scale(sx, sy), Translate(cx, cy))
}

// Invert returns the inverse of m, or ErrSingular.
func Invert(m f64.Aff3) (f64.Aff3, error) {
	det := m[0]*m[4] - m[1]*m[3]
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return f64.Aff3{}, ErrSingular
	}
	inv := 1 / det
	return f64.Aff3{
		m[4] * inv,
		-m[1] * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		-m[3] * inv,
		m[0] * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
	}, nil
}

// Apply maps (x, y) through m.
func Apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
