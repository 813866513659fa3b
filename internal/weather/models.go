package weather

import (
	"fmt"
	"time"
)

// Station identifies a JMA observation site.
// Code is the prefecture number (prec_no) and ID the block number (block_no).
type Station struct {
	Code string `json:"code"`
	ID   int    `json:"id"`
}

// Key returns a canonical string key for this station.
func (s Station) Key() string {
	return fmt.Sprintf("%s:%d", s.Code, s.ID)
}

// MonthKey addresses one monthly page of the upstream table.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the key of the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month, rolling December into the next year.
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Before reports whether k is chronologically earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// DailyRecord is one day of observations.
// A nil reading means the value is absent; it is never reported as zero.
type DailyRecord struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Day     int      `json:"day"`
	AvgTemp *float64 `json:"avg_temp"`
	MaxTemp *float64 `json:"max_temp"`
	LowTemp *float64 `json:"low_temp"`
	AvgHum  *float64 `json:"avg_hum"`
	LowHum  *float64 `json:"low_hum"`
}

// MonthTable holds the records of a single month, ordered by day ascending.
type MonthTable []DailyRecord

// ResultTable is the chronological concatenation of trimmed month tables.
type ResultTable []DailyRecord

// RangeRequest asks for every daily record of a station between From and To
// (both inclusive). From must be strictly before To.
type RangeRequest struct {
	Station Station   `validate:"-"`
	From    time.Time
	To      time.Time `validate:"gtfield=From"`
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; use YYYY-MM-DD", s)
	}
	return t, nil
}
