// Package localcsv serves daily history from per-symbol CSV exports, for
// offline runs and reproducing a published snapshot.
package localcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/swingscan/internal/core"
)

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

// LocalCSV reads <dir>/<symbol>.csv files with a
// Date,Open,High,Low,Close,Volume header (extra columns are ignored).
type LocalCSV struct {
	dir string
	loc *time.Location
}

// New creates a collector rooted at dir
func New(dir string, loc *time.Location) *LocalCSV {
	if loc == nil {
		loc = time.UTC
	}
	return &LocalCSV{dir: dir, loc: loc}
}

func (l *LocalCSV) Name() string {
	return "localcsv"
}

// FetchHistory returns the bars of symbol dated within [start, end].
// A missing file means the symbol has no data.
func (l *LocalCSV) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.DailyBar, error) {
	if symbol == "" || strings.ContainsAny(symbol, `/\`) || strings.Contains(symbol, "..") {
		return nil, fmt.Errorf("invalid symbol: %q", symbol)
	}

	f, err := os.Open(filepath.Join(l.dir, symbol+".csv"))
	if errors.Is(err, os.ErrNotExist) {
		return []core.DailyBar{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	bars, err := l.parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", symbol, err)
	}

	result := make([]core.DailyBar, 0, len(bars))
	for _, b := range bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (l *LocalCSV) parse(r io.Reader) ([]core.DailyBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []core.DailyBar{}, nil
	}
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var bars []core.DailyBar
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		bar, err := l.parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if bar != nil {
			bars = append(bars, *bar)
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (l *LocalCSV) parseRecord(rec []string, idx map[string]int) (*core.DailyBar, error) {
	field := func(name string) string {
		if i := idx[name]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	// yfinance exports write empty cells for halted sessions
	if field("open") == "" || field("close") == "" {
		return nil, nil
	}

	date := field("date")
	if len(date) > 10 {
		date = date[:10]
	}
	t, err := time.ParseInLocation("2006-01-02", date, l.loc)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	var values [5]float64
	for i, name := range []string{"open", "high", "low", "close", "volume"} {
		s := field(name)
		if s == "" {
			continue
		}
		if values[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return &core.DailyBar{
		Time:   t,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: int64(values[4]),
	}, nil
}
