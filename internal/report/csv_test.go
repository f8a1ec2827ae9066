package report

import (
	"strings"
	"testing"
	"time"

	"github.com/newthinker/swingscan/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() []core.TickerSignal {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return []core.TickerSignal{
		{
			Code: "7203", Name: "トヨタ自動車", LatestPrice: 3690,
			Month20Direction: 1, Month20StreakLength: 14,
			Day20Direction: 1, Day20StreakLength: 6,
			Day7Direction: -1, Day7StreakLength: 1,
			VolumeToday: 25000000, VolumePrev1: 21000000, VolumePrev2: 18000000,
			VolumeRatioPct: 119, ObservationDate: date,
		},
		{
			Code: "6758", Name: "Sony, Group", LatestPrice: 13050,
			Month20Direction: -1, Month20StreakLength: 0,
			Day20Direction: -1, Day20StreakLength: 3,
			Day7Direction: -1, Day7StreakLength: 3,
			VolumeToday: 60, VolumePrev1: 0, VolumePrev2: 100,
			VolumeRatioPct: 0, ObservationDate: date,
		},
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(sampleTable(), HeaderEnglish)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "code,name,price,month20_direction,month20_streak_length,day20_direction,day20_streak_length,day7_direction,day7_streak_length,volume_today,volume_prev1,volume_prev2,volume_ratio_pct,observation_date", lines[0])
	assert.Equal(t, "7203,トヨタ自動車,3690,1,14,1,6,-1,1,25000000,21000000,18000000,119,2024-03-15", lines[1])
	assert.Equal(t, `6758,"Sony, Group",13050,-1,0,-1,3,-1,3,60,0,100,0,2024-03-15`, lines[2])
}

func TestEncode_EmptyTableHasHeader(t *testing.T) {
	data, err := Encode(nil, HeaderJapanese)
	require.NoError(t, err)
	assert.Equal(t, "銘柄コード,銘柄名,価格,月足20_flag,月20数,日足20_flag,日20数,日足7_flag,日7数,出来高_0,出来高_1,出来高_2,出来高_前日比,取得日\n", string(data))
}

func TestEncodeDecode_BothHeaders(t *testing.T) {
	for _, header := range []Header{HeaderEnglish, HeaderJapanese} {
		data, err := Encode(sampleTable(), header)
		require.NoError(t, err)

		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, sampleTable(), got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"short header", "code,name\n7203,Toyota\n"},
		{"unknown header", "a,b,c,d,e,f,g,h,i,j,k,l,m,n\n"},
		{"bad number", "code,name,price,month20_direction,month20_streak_length,day20_direction,day20_streak_length,day7_direction,day7_streak_length,volume_today,volume_prev1,volume_prev2,volume_ratio_pct,observation_date\n7203,Toyota,x,1,1,1,1,1,1,1,1,1,1,2024-03-15\n"},
		{"bad date", "code,name,price,month20_direction,month20_streak_length,day20_direction,day20_streak_length,day7_direction,day7_streak_length,volume_today,volume_prev1,volume_prev2,volume_ratio_pct,observation_date\n7203,Toyota,1,1,1,1,1,1,1,1,1,1,1,15/03/2024\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, core.ErrSnapshotInvalid)
		})
	}
}

func TestHeaderByName(t *testing.T) {
	h, err := HeaderByName("")
	require.NoError(t, err)
	assert.Equal(t, HeaderEnglish, h)

	h, err = HeaderByName("ja")
	require.NoError(t, err)
	assert.Equal(t, HeaderJapanese, h)

	_, err = HeaderByName("fr")
	assert.Error(t, err)
}
