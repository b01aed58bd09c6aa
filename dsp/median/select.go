package median

// Select partially reorders data so that data[k] holds the element of rank
// k (0-based) and returns it. Elements before k are <= data[k] and elements
// after it are >= data[k]. Expected linear time; data is modified.
func Select(data []float64, k int) float64 {
	lo, hi := 0, len(data)-1
	for hi > lo {
		mid := lo + (hi-lo)/2
		if data[mid] < data[lo] {
			data[mid], data[lo] = data[lo], data[mid]
		}
		if data[hi] < data[lo] {
			data[hi], data[lo] = data[lo], data[hi]
		}
		if data[hi] < data[mid] {
			data[hi], data[mid] = data[mid], data[hi]
		}

		pivot := data[mid]
		i, j := lo, hi
		for i <= j {
			for data[i] < pivot {
				i++
			}
			for data[j] > pivot {
				j--
			}
			if i <= j {
				data[i], data[j] = data[j], data[i]
				i++
				j--
			}
		}

		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return data[k]
		}
	}

	return data[k]
}

// Rank returns the median rank used for a window of size values.
func Rank(size int) int {
	return size / 2
}
