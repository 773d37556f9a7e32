package resample

// Composite blends the texel t onto dst in place.
//
// The source coverage is t.A/255 scaled by opacity and combined with the
// destination coverage using the Porter-Duff union a + b - a*b. Colors
// are straight alpha and blend with weight alpha_s/union. With atop the
// destination alpha becomes t.A itself rather than the union.
//
// When both coverages are zero the union is zero and the weight is
// defined as 0, so the destination color is kept.
func Composite(dst *[4]byte, t Texel, opacity float32, atop bool) {
	alphaS := t.A / 255 * opacity
	alphaD := float32(dst[3]) / 255
	u := union(alphaS, alphaD)

	if atop {
		dst[3] = toByte(t.A)
	} else {
		dst[3] = toByte(255 * u)
	}

	w := blendWeight(alphaS, u)
	inv := 1 - w
	dst[0] = toByte(float32(dst[0])*inv + t.R*w)
	dst[1] = toByte(float32(dst[1])*inv + t.G*w)
	dst[2] = toByte(float32(dst[2])*inv + t.B*w)
}

// union is the Porter-Duff "over" coverage of two independent alphas.
func union(a, b float32) float32 {
	return a + b - a*b
}

// blendWeight is the share of the source color in the result.
func blendWeight(alphaS, u float32) float32 {
	if u == 0 {
		return 0
	}
	return alphaS / u
}

// toByte rounds v to the nearest integer and saturates it to [0, 255].
// NaN becomes 0.
func toByte(v float32) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}
