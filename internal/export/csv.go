package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/i474232898/jma-weather/internal/weather"
)

// Header is the column order of every CSV we emit.
var Header = []string{"year", "month", "day", "avg_temp", "max_temp", "low_temp", "avg_hum", "low_hum"}

// WriteCSV writes the header and one line per record. Absent readings become
// empty fields.
func WriteCSV(w io.Writer, table weather.ResultTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range table {
		if err := cw.Write(recordFields(r)); err != nil {
			return fmt.Errorf("write csv row %04d-%02d-%02d: %w", r.Year, r.Month, r.Day, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func recordFields(r weather.DailyRecord) []string {
	return []string{
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		strconv.Itoa(r.Day),
		formatValue(r.AvgTemp),
		formatValue(r.MaxTemp),
		formatValue(r.LowTemp),
		formatValue(r.AvgHum),
		formatValue(r.LowHum),
	}
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
