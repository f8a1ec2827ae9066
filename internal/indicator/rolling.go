package indicator

import "math"

// RollingMean calculates a trailing mean over window observations.
// Result has the same length as series. Early indices use the history
// available so far; an index whose window holds fewer than minPeriods
// non-NaN values is NaN. NaN inputs are ignored inside a window.
func RollingMean(series []float64, window, minPeriods int) []float64 {
	result := make([]float64, len(series))
	if minPeriods < 1 {
		minPeriods = 1
	}

	for i := range series {
		start := i - window + 1
		if start < 0 {
			start = 0
		}

		// Summed per window rather than slid, so an unchanged close
		// compares exactly equal to its own average.
		var sum float64
		var count int
		for _, v := range series[start : i+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}

		if window < 1 || count < minPeriods {
			result[i] = math.NaN()
			continue
		}
		result[i] = sum / float64(count)
	}

	return result
}
