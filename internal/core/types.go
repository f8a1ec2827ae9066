package core

import "time"

// Ticker is one entry of the analysis universe.
type Ticker struct {
	Code string
	Name string
}

// DailyBar represents one trading day for a ticker
type DailyBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MonthlyBar is a calendar-month aggregate of daily bars.
// Open and Close are NaN for a month without observations.
type MonthlyBar struct {
	Time  time.Time // last observed date in the month, or month end for a gap
	Open  float64
	Close float64
}

// Gap reports whether the month had no observations
func (m MonthlyBar) Gap() bool {
	return m.Close != m.Close
}

// TickerSignal is the per-ticker result row of a run
type TickerSignal struct {
	Code        string
	Name        string
	LatestPrice int64

	Month20Direction    int
	Month20StreakLength int
	Day20Direction      int
	Day20StreakLength   int
	Day7Direction       int
	Day7StreakLength    int

	VolumeToday    int64
	VolumePrev1    int64
	VolumePrev2    int64
	VolumeRatioPct int64

	ObservationDate time.Time
}

// Skip records a ticker that produced no row and why
type Skip struct {
	Ticker Ticker
	Reason string
}
