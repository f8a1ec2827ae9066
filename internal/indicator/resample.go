package indicator

import (
	"math"
	"time"

	"github.com/newthinker/swingscan/internal/core"
)

// ResampleMonthly buckets daily bars by calendar month of each bar's own
// timestamp, keeping the first open and the last close of every month.
// Months between the first and last observation with no bars are emitted
// as gaps so downstream windows count calendar months, not active ones.
// A month still in progress is bucketed like any other.
func ResampleMonthly(bars []core.DailyBar) []core.MonthlyBar {
	if len(bars) == 0 {
		return []core.MonthlyBar{}
	}

	months := make([]core.MonthlyBar, 0, len(bars)/20+1)
	prevKey := 0

	for i, bar := range bars {
		key := monthKey(bar.Time)

		if i > 0 && key == prevKey {
			cur := &months[len(months)-1]
			cur.Close = bar.Close
			cur.Time = bar.Time
			continue
		}

		if i > 0 {
			for gap := prevKey + 1; gap < key; gap++ {
				months = append(months, core.MonthlyBar{
					Time:  monthEnd(gap, bar.Time.Location()),
					Open:  math.NaN(),
					Close: math.NaN(),
				})
			}
		}

		months = append(months, core.MonthlyBar{
			Time:  bar.Time,
			Open:  bar.Open,
			Close: bar.Close,
		})
		prevKey = key
	}

	return months
}

// MonthlyCloses extracts the close series of monthly bars
func MonthlyCloses(months []core.MonthlyBar) []float64 {
	closes := make([]float64, len(months))
	for i, m := range months {
		closes[i] = m.Close
	}
	return closes
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthEnd(key int, loc *time.Location) time.Time {
	year, month := key/12, time.Month(key%12+1)
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}
