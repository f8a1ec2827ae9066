package indicator

import "github.com/newthinker/swingscan/internal/core"

// ComputeStreak encodes, per index, how many consecutive periods diff has
// stayed on the same side of zero, signed by that side. Zero and NaN count
// as the non-positive side (-1). The count restarts at 1 on every flip.
func ComputeStreak(diff []float64) []int {
	streak := make([]int, len(diff))

	prevSign, length := 0, 0
	for i, d := range diff {
		sign := -1
		if d > 0 {
			sign = 1
		}

		if i == 0 || sign != prevSign {
			length = 1
		} else {
			length++
		}

		streak[i] = sign * length
		prevSign = sign
	}

	return streak
}

// SplitStreak returns the direction and magnitude of the last streak value.
// An empty series has no defined value and maps to (-1, 0).
func SplitStreak(streak []int) (direction, magnitude int) {
	if len(streak) == 0 {
		return -1, 0
	}

	last := streak[len(streak)-1]
	if last > 0 {
		return 1, last
	}
	if last == 0 {
		return -1, 0
	}
	return -1, -last
}

// Differences returns a[i] - b[i]. Both series must have equal length.
func Differences(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = a[i] - b[i]
	}
	return diff
}

// Closes extracts closing prices
func Closes(bars []core.DailyBar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
