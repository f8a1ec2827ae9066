package localcsv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/swingscan/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCSV_ImplementsCollector(t *testing.T) {
	var _ collector.Collector = (*LocalCSV)(nil)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLocalCSV_FetchHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "7203.T.csv", `Date,Open,High,Low,Close,Adj Close,Volume
2024-03-04,3600,3650,3590,3640,3640,21000000.0
2024-03-01,3500,3560,3490,3550,3550,18000000
2024-03-05,,,,,,
2024-03-06 00:00:00+09:00,3650,3700,3620,3690,3690,25000000
`)

	jst := time.FixedZone("JST", 9*60*60)
	l := New(dir, jst)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, jst)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, jst)
	bars, err := l.FetchHistory(context.Background(), "7203.T", start, end)
	require.NoError(t, err)

	require.Len(t, bars, 3)
	assert.Equal(t, 3550.0, bars[0].Close)
	assert.Equal(t, int64(18000000), bars[0].Volume)
	assert.Equal(t, 3640.0, bars[1].Close)
	assert.Equal(t, int64(21000000), bars[1].Volume)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, jst), bars[2].Time)
}

func TestLocalCSV_FiltersWindow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "6758.T.csv", `Date,Open,High,Low,Close,Volume
2024-01-31,1,1,1,1,1
2024-02-01,2,2,2,2,2
2024-02-02,3,3,3,3,3
`)

	bars, err := New(dir, time.UTC).FetchHistory(context.Background(), "6758.T",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 2.0, bars[0].Close)
}

func TestLocalCSV_MissingFileIsEmpty(t *testing.T) {
	bars, err := New(t.TempDir(), nil).FetchHistory(context.Background(), "9999.T", time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestLocalCSV_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.csv", "Date,Open,Close\n2024-01-01,1,1\n")

	_, err := New(dir, nil).FetchHistory(context.Background(), "1", time.Time{}, time.Now())
	assert.Error(t, err)
}

func TestLocalCSV_RejectsPathSymbols(t *testing.T) {
	l := New(t.TempDir(), nil)
	for _, s := range []string{"", "../x", "a/b"} {
		_, err := l.FetchHistory(context.Background(), s, time.Time{}, time.Now())
		assert.Error(t, err, "symbol %q", s)
	}
}
