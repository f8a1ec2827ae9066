package collector

import (
	"context"
	"time"

	"github.com/newthinker/swingscan/internal/core"
)

// Collector fetches daily price history from a market data provider
type Collector interface {
	Name() string

	// FetchHistory returns daily bars for symbol in [start, end], ascending
	// by date. A symbol without data yields an empty slice, not an error.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error)
}
