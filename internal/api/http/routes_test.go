package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/jma-weather/internal/weather"
)

type stubFetcher struct {
	calls int
	err   error
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) FetchMonth(_ context.Context, _ weather.Station, key weather.MonthKey) (weather.MonthTable, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	v := 1.5
	var table weather.MonthTable
	for d := 1; d <= 28; d++ {
		table = append(table, weather.DailyRecord{
			Year: key.Year, Month: int(key.Month), Day: d,
			AvgTemp: &v, MaxTemp: &v, LowTemp: &v, AvgHum: &v, LowHum: &v,
		})
	}
	return table, nil
}

func do(t *testing.T, f weather.Fetcher, target string) (*http.Response, string) {
	t.Helper()
	app := NewApp(weather.NewService(f, nil), io.Discard)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	resp, body := do(t, &stubFetcher{}, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestDailyJSON(t *testing.T) {
	f := &stubFetcher{}
	resp, body := do(t, f, "/api/v1/weather/daily?code=44&id=47662&from=2023-01-27&to=2023-02-02")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, f.calls)

	var payload struct {
		Station weather.Station       `json:"station"`
		From    string                `json:"from"`
		To      string                `json:"to"`
		Records []weather.DailyRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, weather.Station{Code: "44", ID: 47662}, payload.Station)
	require.Equal(t, "2023-01-27", payload.From)
	require.Len(t, payload.Records, 2+2) // 27, 28 Jan (stub has 28 days) and 1, 2 Feb
	require.Equal(t, 27, payload.Records[0].Day)
	require.Equal(t, 2, payload.Records[3].Day)
}

func TestDailyCSV(t *testing.T) {
	resp, body := do(t, &stubFetcher{}, "/api/v1/weather/daily?code=44&id=47662&from=2023-01-15&to=2023-01-16&format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	require.Equal(t,
		"year,month,day,avg_temp,max_temp,low_temp,avg_hum,low_hum\n"+
			"2023,1,15,1.5,1.5,1.5,1.5,1.5\n"+
			"2023,1,16,1.5,1.5,1.5,1.5,1.5\n",
		body)
}

func TestDailyBadRequest(t *testing.T) {
	targets := []string{
		"/api/v1/weather/daily?code=44&id=47662&from=2023-01-20&to=2023-01-15",
		"/api/v1/weather/daily?code=44&id=47662&from=2023-01-15&to=2023-01-15",
		"/api/v1/weather/daily?code=44&id=47662&from=2023-01-15",
		"/api/v1/weather/daily?code=44&id=abc&from=2023-01-15&to=2023-01-20",
		"/api/v1/weather/daily?code=44&id=47662&from=15/01/2023&to=2023-01-20",
		"/api/v1/weather/daily?code=44&id=47662&from=2023-01-15&to=2023-01-20&format=xml",
	}

	for _, target := range targets {
		f := &stubFetcher{}
		resp, body := do(t, f, target)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		require.Contains(t, body, `"error":true`)
		require.Zero(t, f.calls, "no fetch for %s", target)
	}
}

func TestDailyInvalidRangeMessage(t *testing.T) {
	f := &stubFetcher{}
	resp, body := do(t, f, "/api/v1/weather/daily?code=44&id=47662&from=2023-01-20&to=2023-01-15")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, weather.ErrInvalidRange.Error())
	require.Zero(t, f.calls)
}

func TestDailyUpstreamFailure(t *testing.T) {
	resp, body := do(t, &stubFetcher{err: errors.New("connection refused")}, "/api/v1/weather/daily?code=44&id=47662&from=2023-01-15&to=2023-01-20")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, body, "connection refused")
}
