package providers

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/jma-weather/internal/weather"
)

func loadFixture(t testing.TB) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/daily_s1.html")
	require.NoError(t, err)
	return b
}

func TestParseMonthTableFixture(t *testing.T) {
	key := weather.MonthKey{Year: 2023, Month: time.January}

	table, dropped, err := parseMonthTable(strings.NewReader(string(loadFixture(t))), "text/html; charset=UTF-8", key)
	require.NoError(t, err)
	require.Equal(t, 2, dropped, "days 3 and 4 have missing readings")
	require.Len(t, table, 3)

	type row struct {
		year, month, day int
		avgT, maxT, lowT float64
		avgH, lowH       float64
	}
	got := make([]row, 0, len(table))
	for _, r := range table {
		got = append(got, row{r.Year, r.Month, r.Day, *r.AvgTemp, *r.MaxTemp, *r.LowTemp, *r.AvgHum, *r.LowHum})
	}

	require.Equal(t, []row{
		{2023, 1, 1, 5.1, 9.8, 1.2, 55, 32},
		{2023, 1, 2, 6.0, 10.2, 2.3, 60, 41},
		{2023, 1, 5, -0.4, 4.5, -3.8, 48, 20},
	}, got)
}

func TestParseMonthTableASCIIHumidityLabel(t *testing.T) {
	page := `<table>
<tr><th rowspan="2">日</th><th colspan="3">気温(℃)</th><th colspan="2">湿度(%)</th></tr>
<tr><th>平均</th><th>最高</th><th>最低</th><th>平均</th><th>最小</th></tr>
<tr><td>２</td><td>1.0</td><td>2.0</td><td>0.5</td><td>70</td><td>40</td></tr>
<tr><td>1</td><td>3.0</td><td>4.0</td><td>2.5</td><td>71</td><td>41</td></tr>
</table>`

	table, dropped, err := parseMonthTable(strings.NewReader(page), "text/html", weather.MonthKey{Year: 2020, Month: time.March})
	require.NoError(t, err)
	require.Zero(t, dropped)
	require.Len(t, table, 2)
	require.Equal(t, 1, table[0].Day, "rows are ordered by day")
	require.Equal(t, 2, table[1].Day, "full-width digits are folded")
	require.Equal(t, 3, table[0].Month)
	require.Equal(t, 2020, table[0].Year)
}

func TestParseMonthTableNoTable(t *testing.T) {
	_, _, err := parseMonthTable(strings.NewReader(`<html><body><p>メンテナンス中</p></body></html>`), "text/html", weather.MonthKey{Year: 2023, Month: time.January})
	require.ErrorIs(t, err, ErrNoTable)
}

func TestParseMonthTableMissingColumns(t *testing.T) {
	page := `<table>
<tr><th rowspan="2">日</th><th colspan="3">気温(℃)</th><th colspan="2">降水量(mm)</th></tr>
<tr><th>平均</th><th>最高</th><th>最低</th><th>合計</th><th>最大</th></tr>
<tr><td>1</td><td>1.0</td><td>2.0</td><td>0.5</td><td>0</td><td>0</td></tr>
</table>`

	_, _, err := parseMonthTable(strings.NewReader(page), "text/html", weather.MonthKey{Year: 2023, Month: time.January})
	require.ErrorIs(t, err, ErrMissingColumns)
	require.Contains(t, err.Error(), labelHumidity)
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"12.5", ptr(12.5)},
		{" -3.0 ", ptr(-3.0)},
		{"6.0 )", ptr(6.0)},
		{"41 ]", ptr(41)},
		{"１２．５", ptr(12.5)},
		{"///", nil},
		{"×", nil},
		{"--", nil},
		{"12.1 #", nil},
		{"", nil},
		{"晴", nil},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, parseValue(tc.in))
		})
	}
}

func ptr(v float64) *float64 { return &v }
