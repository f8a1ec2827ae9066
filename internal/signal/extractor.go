// Package signal turns one ticker's daily history into its streak and
// volume signal row.
package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/swingscan/internal/core"
	"github.com/newthinker/swingscan/internal/indicator"
)

// Default averaging windows.
const (
	MonthWindow    = 20 // months
	DayLongWindow  = 20 // trading days
	DayShortWindow = 7  // trading days

	// MinBars is the shortest history that can be analyzed: the row
	// carries the last three volumes.
	MinBars = 3
)

// Extractor computes TickerSignal rows. It holds no per-ticker state and
// is safe for concurrent use.
type Extractor struct {
	monthWindow int
	longWindow  int
	shortWindow int
	clock       func() time.Time
}

// New creates an Extractor with the default windows. clock supplies the
// observation date stamped on every row; nil means time.Now.
func New(clock func() time.Time) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	return &Extractor{
		monthWindow: MonthWindow,
		longWindow:  DayLongWindow,
		shortWindow: DayShortWindow,
		clock:       clock,
	}
}

// Extract analyzes bars, which must be ascending by date. It returns
// core.ErrInsufficientData when fewer than MinBars bars are given.
func (e *Extractor) Extract(t core.Ticker, bars []core.DailyBar) (*core.TickerSignal, error) {
	if len(bars) < MinBars {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%d bars, need %d", len(bars), MinBars))
	}

	n := len(bars)
	closes := indicator.Closes(bars)
	volToday, volPrev1, volPrev2 := bars[n-1].Volume, bars[n-2].Volume, bars[n-3].Volume

	// Monthly: close vs. 20-month average
	monthCloses := indicator.MonthlyCloses(indicator.ResampleMonthly(bars))
	month20 := indicator.RollingMean(monthCloses, e.monthWindow, 1)
	month20Dir, month20Len := indicator.SplitStreak(
		indicator.ComputeStreak(indicator.Differences(monthCloses, month20)))

	// Daily: close vs. 20-day and 7-day averages
	sma20 := indicator.RollingMean(closes, e.longWindow, 1)
	sma7 := indicator.RollingMean(closes, e.shortWindow, 1)
	day20Dir, day20Len := indicator.SplitStreak(
		indicator.ComputeStreak(indicator.Differences(closes, sma20)))
	day7Dir, day7Len := indicator.SplitStreak(
		indicator.ComputeStreak(indicator.Differences(closes, sma7)))

	return &core.TickerSignal{
		Code:        t.Code,
		Name:        t.Name,
		LatestPrice: roundPrice(closes[n-1]),

		Month20Direction:    month20Dir,
		Month20StreakLength: month20Len,
		Day20Direction:      day20Dir,
		Day20StreakLength:   day20Len,
		Day7Direction:       day7Dir,
		Day7StreakLength:    day7Len,

		VolumeToday:    volToday,
		VolumePrev1:    volPrev1,
		VolumePrev2:    volPrev2,
		VolumeRatioPct: VolumeRatioPct(volToday, volPrev1),

		ObservationDate: dateOf(e.clock()),
	}, nil
}

// VolumeRatioPct returns floor(today / prev * 100), or 0 when prev is not
// positive.
func VolumeRatioPct(today, prev int64) int64 {
	if prev <= 0 {
		return 0
	}
	return today * 100 / prev
}

func roundPrice(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
