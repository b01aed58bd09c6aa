package interp

// Lerp returns a + t*(b-a).
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpBlock writes the element-wise linear interpolation between a and b
// at position t into dst. All slices must share a length; dst may alias a
// or b.
func LerpBlock(dst, a, b []float64, t float64) {
	for i := range dst {
		dst[i] = a[i] + t*(b[i]-a[i])
	}
}

// LinearAt samples x at fractional index pos with 2-point linear
// interpolation. Positions outside [0, len(x)-1] read as zero.
func LinearAt(x []float64, pos float64) float64 {
	if pos < 0 {
		return 0
	}

	i := int(pos)
	if i >= len(x) {
		return 0
	}

	frac := pos - float64(i)
	if i+1 >= len(x) {
		if frac == 0 {
			return x[i]
		}
		return 0
	}

	return Lerp(x[i], x[i+1], frac)
}
