package weather

import (
	"context"
)

// Fetcher abstracts the upstream monthly observation table.
// Implementations issue one request per call and never cache.
type Fetcher interface {
	Name() string
	FetchMonth(ctx context.Context, station Station, key MonthKey) (MonthTable, error)
}
