package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRange is returned when the start date is not strictly before the end date.
var ErrInvalidRange = errors.New("date_from must be strictly before date_to")

var validate = validator.New()

// Service decomposes a date range into monthly fetches and stitches the
// trimmed months back together.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Validate checks the range precondition without touching the upstream.
func (s *Service) Validate(req RangeRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return nil
}

// GetRange fetches every month between req.From and req.To sequentially,
// trims the first and last month to the requested days and returns the rows
// in chronological order. Any fetch error aborts the whole range; no partial
// table is returned.
func (s *Service) GetRange(ctx context.Context, req RangeRequest) (ResultTable, error) {
	req.From = Date(req.From)
	req.To = Date(req.To)
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	keys := MonthSpan(MonthOf(req.From), MonthOf(req.To))
	s.logger.DebugContext(ctx, "fetching range",
		"station", req.Station.Key(),
		"provider", s.fetcher.Name(),
		"from", req.From.Format("2006-01-02"),
		"to", req.To.Format("2006-01-02"),
		"months", len(keys),
	)

	var result ResultTable
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := s.fetcher.FetchMonth(ctx, req.Station, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s for station %s: %w", key, req.Station.Key(), err)
		}

		trimmed := TrimMonth(table, i == 0, i == len(keys)-1, req.From.Day(), req.To.Day())
		s.logger.DebugContext(ctx, "month fetched",
			"month", key.String(),
			"rows", len(table),
			"kept", len(trimmed),
		)
		result = append(result, trimmed...)
	}

	return result, nil
}
