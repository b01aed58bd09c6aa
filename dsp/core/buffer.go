package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// SameLength reports whether all slices have the length of the first one.
func SameLength(slices ...[]float64) bool {
	if len(slices) == 0 {
		return true
	}

	n := len(slices[0])
	for _, s := range slices[1:] {
		if len(s) != n {
			return false
		}
	}

	return true
}
