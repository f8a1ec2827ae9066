// Package report serializes the result table and publishes it to archive
// storage.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/newthinker/swingscan/internal/core"
)

// DateLayout formats the observation date column
const DateLayout = "2006-01-02"

// Header is the ordered set of column names of a snapshot
type Header [14]string

// HeaderEnglish is the default snapshot header
var HeaderEnglish = Header{
	"code", "name", "price",
	"month20_direction", "month20_streak_length",
	"day20_direction", "day20_streak_length",
	"day7_direction", "day7_streak_length",
	"volume_today", "volume_prev1", "volume_prev2",
	"volume_ratio_pct", "observation_date",
}

// HeaderJapanese matches the column names of the legacy jpx400.csv feed
var HeaderJapanese = Header{
	"銘柄コード", "銘柄名", "価格",
	"月足20_flag", "月20数",
	"日足20_flag", "日20数",
	"日足7_flag", "日7数",
	"出来高_0", "出来高_1", "出来高_2",
	"出来高_前日比", "取得日",
}

// HeaderByName resolves "en" or "ja"
func HeaderByName(name string) (Header, error) {
	switch name {
	case "", "en":
		return HeaderEnglish, nil
	case "ja":
		return HeaderJapanese, nil
	default:
		return Header{}, fmt.Errorf("unknown header set %q", name)
	}
}

// Encode writes the table as UTF-8 CSV: one header row, then one row per
// signal in table order.
func Encode(table []core.TickerSignal, header Header) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header[:]); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, s := range table {
		if err := w.Write(Row(s)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", s.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Row formats one signal in header column order
func Row(s core.TickerSignal) []string {
	itoa := strconv.Itoa
	i64 := func(v int64) string { return strconv.FormatInt(v, 10) }

	return []string{
		s.Code, s.Name, i64(s.LatestPrice),
		itoa(s.Month20Direction), itoa(s.Month20StreakLength),
		itoa(s.Day20Direction), itoa(s.Day20StreakLength),
		itoa(s.Day7Direction), itoa(s.Day7StreakLength),
		i64(s.VolumeToday), i64(s.VolumePrev1), i64(s.VolumePrev2),
		i64(s.VolumeRatioPct), s.ObservationDate.Format(DateLayout),
	}
}

// Decode parses a snapshot written by Encode with either header set.
func Decode(data []byte) ([]core.TickerSignal, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrSnapshotInvalid, err)
	}
	if len(records) == 0 {
		return nil, core.WrapError(core.ErrSnapshotInvalid, fmt.Errorf("missing header"))
	}

	var got Header
	if len(records[0]) != len(got) {
		return nil, core.WrapError(core.ErrSnapshotInvalid,
			fmt.Errorf("header has %d columns, want %d", len(records[0]), len(got)))
	}
	copy(got[:], records[0])
	if got != HeaderEnglish && got != HeaderJapanese {
		return nil, core.WrapError(core.ErrSnapshotInvalid, fmt.Errorf("unrecognized header %v", records[0]))
	}

	table := make([]core.TickerSignal, 0, len(records)-1)
	for i, rec := range records[1:] {
		s, err := parseRow(rec)
		if err != nil {
			return nil, core.WrapError(core.ErrSnapshotInvalid, fmt.Errorf("row %d: %w", i+1, err))
		}
		table = append(table, s)
	}
	return table, nil
}

func parseRow(rec []string) (core.TickerSignal, error) {
	var p rowParser
	s := core.TickerSignal{
		Code:        rec[0],
		Name:        rec[1],
		LatestPrice: p.parseInt64(rec[2]),

		Month20Direction:    p.parseInt(rec[3]),
		Month20StreakLength: p.parseInt(rec[4]),
		Day20Direction:      p.parseInt(rec[5]),
		Day20StreakLength:   p.parseInt(rec[6]),
		Day7Direction:       p.parseInt(rec[7]),
		Day7StreakLength:    p.parseInt(rec[8]),

		VolumeToday:    p.parseInt64(rec[9]),
		VolumePrev1:    p.parseInt64(rec[10]),
		VolumePrev2:    p.parseInt64(rec[11]),
		VolumeRatioPct: p.parseInt64(rec[12]),
	}
	if p.err != nil {
		return core.TickerSignal{}, p.err
	}

	date, err := time.Parse(DateLayout, rec[13])
	if err != nil {
		return core.TickerSignal{}, err
	}
	s.ObservationDate = date
	return s, nil
}

// rowParser keeps the first conversion error
type rowParser struct {
	err error
}

func (p *rowParser) parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) parseInt(s string) int {
	return int(p.parseInt64(s))
}
