// Package scoring implements the category rating engine: normalization,
// composite ratings, weekly ratings and punt variants.
package scoring

const maxRating = 100

// Normalize scales a series so its maximum becomes 100.
//
// A series whose maximum is not positive is degenerate and is returned as a
// copy of the input. The input slice is never modified.
func Normalize(series []float64) []float64 {
	out := make([]float64, len(series))
	copy(out, series)
	if len(series) == 0 {
		return out
	}
	peak := series[0]
	for _, v := range series[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return out
	}
	for i, v := range series {
		out[i] = v / peak * maxRating
	}
	return out
}

// shiftToZero subtracts the series minimum from every value.
func shiftToZero(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	lowest := series[0]
	for _, v := range series[1:] {
		if v < lowest {
			lowest = v
		}
	}
	for i, v := range series {
		out[i] = v - lowest
	}
	return out
}

func invert(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = maxRating - v
	}
	return out
}
