package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/swingscan/internal/core"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, tokyo)
}

func TestResampleMonthly_FirstOpenLastClose(t *testing.T) {
	bars := []core.DailyBar{
		{Time: day(2024, 1, 4), Open: 100, Close: 101},
		{Time: day(2024, 1, 31), Open: 105, Close: 106},
		{Time: day(2024, 2, 1), Open: 107, Close: 108},
		{Time: day(2024, 2, 29), Open: 110, Close: 111},
		{Time: day(2024, 3, 1), Open: 112, Close: 113},
	}

	months := ResampleMonthly(bars)

	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}

	expected := []struct {
		open, close float64
		last        time.Time
	}{
		{100, 106, day(2024, 1, 31)},
		{107, 111, day(2024, 2, 29)},
		{112, 113, day(2024, 3, 1)}, // month in progress
	}
	for i, e := range expected {
		m := months[i]
		if m.Open != e.open || m.Close != e.close {
			t.Errorf("month[%d] open/close = %f/%f, want %f/%f", i, m.Open, m.Close, e.open, e.close)
		}
		if !m.Time.Equal(e.last) {
			t.Errorf("month[%d] time = %v, want %v", i, m.Time, e.last)
		}
	}
}

func TestResampleMonthly_GapMonths(t *testing.T) {
	bars := []core.DailyBar{
		{Time: day(2023, 11, 30), Open: 10, Close: 10},
		{Time: day(2024, 2, 1), Open: 12, Close: 12},
	}

	months := ResampleMonthly(bars)

	if len(months) != 4 {
		t.Fatalf("expected 4 months (Nov, Dec, Jan, Feb), got %d", len(months))
	}
	if !months[1].Gap() || !months[2].Gap() {
		t.Error("expected December and January to be gaps")
	}
	if !months[1].Time.Equal(day(2023, 12, 31)) {
		t.Errorf("gap month time = %v, want 2023-12-31", months[1].Time)
	}
	if !months[2].Time.Equal(day(2024, 1, 31)) {
		t.Errorf("gap month time = %v, want 2024-01-31", months[2].Time)
	}
	if months[3].Gap() || months[3].Close != 12 {
		t.Errorf("unexpected last month: %+v", months[3])
	}
}

func TestResampleMonthly_Empty(t *testing.T) {
	if got := ResampleMonthly(nil); len(got) != 0 {
		t.Errorf("expected no months, got %d", len(got))
	}
}

func TestMonthlyCloses(t *testing.T) {
	closes := MonthlyCloses([]core.MonthlyBar{
		{Close: 1},
		{Close: math.NaN()},
		{Close: 3},
	})
	if closes[0] != 1 || !math.IsNaN(closes[1]) || closes[2] != 3 {
		t.Errorf("unexpected closes: %v", closes)
	}
}
