// Package universe loads the list of tickers to analyze.
package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/newthinker/swingscan/internal/core"
)

// Default header names of the JPX list export.
const (
	DefaultCodeColumn = "銘柄コード"
	DefaultNameColumn = "銘柄名"
)

// Columns names the header cells holding the ticker code and display name
type Columns struct {
	Code string
	Name string
}

// Load reads the ticker list at path. A missing or unreadable file is
// core.ErrUniverseMissing.
func Load(path string, cols Columns) ([]core.Ticker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrUniverseMissing, err)
	}
	defer f.Close()

	tickers, err := Parse(f, cols)
	if err != nil {
		return nil, core.WrapError(core.ErrUniverseMissing, fmt.Errorf("%s: %w", path, err))
	}
	return tickers, nil
}

// Parse reads a header row and one ticker per following row, in file order.
// Code and name are located by header name, falling back to the first two
// columns. Rows with an empty code are dropped.
func Parse(r io.Reader, cols Columns) ([]core.Ticker, error) {
	if cols.Code == "" {
		cols.Code = DefaultCodeColumn
	}
	if cols.Name == "" {
		cols.Name = DefaultNameColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []core.Ticker{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	codeIdx, nameIdx := 0, 1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case cols.Code:
			codeIdx = i
		case cols.Name:
			nameIdx = i
		}
	}

	tickers := []core.Ticker{}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ticker list: %w", err)
		}

		code := cell(rec, codeIdx)
		if code == "" {
			continue
		}
		name := cell(rec, nameIdx)
		if name == "" {
			name = code
		}
		tickers = append(tickers, core.Ticker{Code: code, Name: name})
	}

	return tickers, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}
