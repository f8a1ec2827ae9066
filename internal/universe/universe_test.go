package universe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newthinker/swingscan/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DefaultHeaders(t *testing.T) {
	input := "\ufeff銘柄コード,銘柄名,市場\n7203,トヨタ自動車,プライム\n6758,ソニーグループ,プライム\n"

	tickers, err := Parse(strings.NewReader(input), Columns{})
	require.NoError(t, err)

	assert.Equal(t, []core.Ticker{
		{Code: "7203", Name: "トヨタ自動車"},
		{Code: "6758", Name: "ソニーグループ"},
	}, tickers)
}

func TestParse_NamedColumnsAnyPosition(t *testing.T) {
	input := "market,name,code\nprime,Toyota,7203\n"

	tickers, err := Parse(strings.NewReader(input), Columns{Code: "code", Name: "name"})
	require.NoError(t, err)
	assert.Equal(t, []core.Ticker{{Code: "7203", Name: "Toyota"}}, tickers)
}

func TestParse_FallsBackToFirstColumns(t *testing.T) {
	input := "symbol,label\n130A,Veritas In Silico\n9984,SoftBank Group\n"

	tickers, err := Parse(strings.NewReader(input), Columns{})
	require.NoError(t, err)
	require.Len(t, tickers, 2)
	assert.Equal(t, "130A", tickers[0].Code)
	assert.Equal(t, "SoftBank Group", tickers[1].Name)
}

func TestParse_SkipsBlankCodes(t *testing.T) {
	input := "銘柄コード,銘柄名\n7203,トヨタ自動車\n,\n8306\n"

	tickers, err := Parse(strings.NewReader(input), Columns{})
	require.NoError(t, err)
	assert.Equal(t, []core.Ticker{
		{Code: "7203", Name: "トヨタ自動車"},
		{Code: "8306", Name: "8306"},
	}, tickers)
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "銘柄コード,銘柄名\n"} {
		tickers, err := Parse(strings.NewReader(input), Columns{})
		require.NoError(t, err)
		assert.Empty(t, tickers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "meigara_400.csv"), Columns{})
	assert.ErrorIs(t, err, core.ErrUniverseMissing)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meigara_400.csv")
	require.NoError(t, os.WriteFile(path, []byte("銘柄コード,銘柄名\n4063,信越化学工業\n"), 0644))

	tickers, err := Load(path, Columns{})
	require.NoError(t, err)
	assert.Equal(t, []core.Ticker{{Code: "4063", Name: "信越化学工業"}}, tickers)
}
