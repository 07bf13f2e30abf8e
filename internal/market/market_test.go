package market

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProviderKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sec  Security
		want string
	}{
		{"a-share", Security{Type: "11", Code: "sh600519"}, "s_sh600519"},
		{"bond", Security{Type: "15", Code: "sz123456"}, "s_sz123456"},
		{"fund", Security{Type: "22", Code: "sh510300"}, "sh510300"},
		{"hong kong", Security{Type: "31", Code: "hk00700"}, "rt_hkHK00700"},
		{"hk index", Security{Type: "33", Code: "hsi"}, "rt_hkHSI"},
		{"us", Security{Type: "41", Code: "aapl"}, "gb_aapl"},
		{"us index with dot", Security{Type: "41", Code: ".ixic"}, "gb_ixic"},
		{"forex", Security{Type: "71", Code: "usdcny"}, "USDCNY"},
		{"new third board", Security{Type: "73", Code: "bj430047"}, "s_bj430047"},
		{"futures passthrough", Security{Type: "85", Code: "RB0"}, "RB0"},
		{"unknown passthrough", Security{Type: "999", Code: "whatever"}, "whatever"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.sec.ProviderKey())
			// deterministic on repeated calls
			require.Equal(t, tt.sec.ProviderKey(), tt.sec.ProviderKey())
		})
	}
}

func TestProviderKeysFlattensInOrder(t *testing.T) {
	t.Parallel()

	key := KeyList{
		RawKey("sh000001"),
		Security{Type: "41", Code: ".dji"},
		KeyList{Security{Type: "71", Code: "usdcny"}, RawKey("sz399001")},
	}

	keys, err := ProviderKeys(key)
	require.NoError(t, err)
	require.Equal(t, []string{"s_sh000001", "gb_dji", "USDCNY", "s_sz399001"}, keys)
}

func TestProviderKeysRejectsNil(t *testing.T) {
	t.Parallel()

	_, err := ProviderKeys(nil)
	var unsupported *UnsupportedKeyError
	require.ErrorAs(t, err, &unsupported)

	_, err = ProviderKeys(KeyList{RawKey("sh600000"), nil})
	require.ErrorAs(t, err, &unsupported)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "A股", Label("11"))
	require.Equal(t, "港股", Label("31"))
	require.Equal(t, "美股", Label("41"))
	require.Equal(t, "板块", Label("78"))
	require.Equal(t, "42x", Label("42x"))
}

func TestChartURLs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"http://image.sinajs.cn/newchart/min/n/sh600519.gif",
		"http://image.sinajs.cn/newchart/daily/n/sh600519.gif",
	}, ChartURLs("http://image.sinajs.cn/", Security{Type: "11", Code: "sh600519"}))

	require.Equal(t, []string{
		"http://image.sinajs.cn/newchart/v5/forex/min/USDCNY.gif",
		"http://image.sinajs.cn/newchart/v5/forex/k/day/USDCNY.gif",
	}, ChartURLs("http://image.sinajs.cn", Security{Type: "71", Code: "USDCNY"}))

	require.Nil(t, ChartURLs("http://image.sinajs.cn", Security{Type: "22", Code: "sh510300"}))
}

func TestSecuritiesKeyList(t *testing.T) {
	t.Parallel()

	list := []Security{{Type: "11", Code: "sh600519"}, {Type: "31", Code: "00700"}}
	keys, err := ProviderKeys(Securities(list))
	require.NoError(t, err)
	require.Equal(t, []string{"s_sh600519", "rt_hk00700"}, keys)
}
