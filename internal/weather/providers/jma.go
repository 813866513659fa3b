package providers

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/jma-weather/internal/weather"
)

const (
	// DefaultBaseURL is the JMA historical data site.
	DefaultBaseURL = "https://www.data.jma.go.jp"

	dailyPath = "/obd/stats/etrn/view/daily_s1.php"
)

// JMAProvider implements the weather.Fetcher interface for the JMA
// daily_s1 observation tables.
type JMAProvider struct {
	name    string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewJMAProvider(cfg HTTPClientConfig) *JMAProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("provider", "jma")

	return &JMAProvider{
		name:    "jma",
		client:  newRestyClient(cfg, logger),
		circuit: newBreaker("jma", cfg.Breaker, logger),
		logger:  logger,
	}
}

func (p *JMAProvider) Name() string {
	return p.name
}

// FetchMonth downloads and parses one month of observations. It issues
// exactly one request and returns either the whole month or an error.
func (p *JMAProvider) FetchMonth(ctx context.Context, station weather.Station, key weather.MonthKey) (weather.MonthTable, error) {
	res, err := doGet(ctx, p.client, p.circuit, dailyPath, monthQuery(station, key))
	if err != nil {
		return nil, err
	}

	table, dropped, err := parseMonthTable(bytes.NewReader(res.Body()), res.Header().Get("Content-Type"), key)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		p.logger.DebugContext(ctx, "dropped rows with missing values",
			"station", station.Key(),
			"month", key.String(),
			"dropped", dropped,
		)
	}

	return table, nil
}

func monthQuery(station weather.Station, key weather.MonthKey) map[string]string {
	return map[string]string{
		"prec_no":  station.Code,
		"block_no": strconv.Itoa(station.ID),
		"year":     strconv.Itoa(key.Year),
		"month":    strconv.Itoa(int(key.Month)),
		"day":      "",
		"view":     "p1",
	}
}
