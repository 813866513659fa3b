package providers

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/i474232898/jma-weather/internal/common"
	"github.com/i474232898/jma-weather/internal/weather"
)

// Group labels of the daily_s1 table header. They are matched after width
// folding, so full-width variants such as "湿度(％)" are accepted.
const (
	labelDay         = "日"
	labelTemperature = "気温(℃)"
	labelHumidity    = "湿度(％)"
)

var (
	// ErrNoTable is returned when the page holds no table with a day column.
	ErrNoTable = errors.New("no observation table in response")
	// ErrMissingColumns is returned when the table lacks the temperature or humidity group.
	ErrMissingColumns = errors.New("observation table is missing expected columns")
)

// columnIndex maps canonical fields onto leaf column positions.
type columnIndex struct {
	day     int
	avgTemp int
	maxTemp int
	lowTemp int
	avgHum  int
	lowHum  int
}

// parseMonthTable extracts one month of daily records from a daily_s1 page.
// It returns the records and the number of rows dropped for missing values.
func parseMonthTable(body io.Reader, contentType string, key weather.MonthKey) (weather.MonthTable, int, error) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	var (
		rows   *goquery.Selection
		groups []string
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		own := ownRows(table)
		g := flattenHeader(own.FilterFunction(isHeaderRow))
		if slices.Contains(g, common.CompactFold(labelDay)) {
			rows, groups = own, g
			return false
		}
		return true
	})
	if rows == nil {
		return nil, 0, ErrNoTable
	}

	idx, err := locateColumns(groups)
	if err != nil {
		return nil, 0, err
	}

	var (
		table   weather.MonthTable
		dropped int
	)
	rows.FilterFunction(func(i int, tr *goquery.Selection) bool {
		return !isHeaderRow(i, tr)
	}).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) == 0 {
			return
		}

		rec, ok := buildRecord(cells, idx, key)
		if !ok {
			dropped++
			return
		}
		table = append(table, rec)
	})

	slices.SortStableFunc(table, func(a, b weather.DailyRecord) int {
		return a.Day - b.Day
	})

	return table, dropped, nil
}

// ownRows returns the rows that belong to table itself, skipping nested tables.
func ownRows(table *goquery.Selection) *goquery.Selection {
	node := table.Get(0)
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").Get(0) == node
	})
}

func isHeaderRow(_ int, tr *goquery.Selection) bool {
	return tr.ChildrenFiltered("th").Length() > 0 && tr.ChildrenFiltered("td").Length() == 0
}

// flattenHeader expands colspan/rowspan of the header rows and returns, for
// every leaf column, the label of the top-most header cell covering it.
func flattenHeader(rows *goquery.Selection) []string {
	var groups []string
	covered := map[int]int{}

	rows.Each(func(_ int, tr *goquery.Selection) {
		col := 0
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			for covered[col] > 0 {
				col++
			}

			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			label := common.CompactFold(cell.Text())

			for i := 0; i < colspan; i++ {
				c := col + i
				for len(groups) <= c {
					groups = append(groups, "")
				}
				if groups[c] == "" {
					groups[c] = label
				}
				if rowspan > 1 {
					covered[c] = rowspan
				}
			}
			col += colspan
		})

		for c, n := range covered {
			if n > 0 {
				covered[c] = n - 1
			}
		}
	})

	return groups
}

func locateColumns(groups []string) (columnIndex, error) {
	find := func(label string) []int {
		var cols []int
		want := common.CompactFold(label)
		for i, g := range groups {
			if g == want {
				cols = append(cols, i)
			}
		}
		return cols
	}

	day := find(labelDay)
	temp := find(labelTemperature)
	hum := find(labelHumidity)

	var missing []string
	if len(day) < 1 {
		missing = append(missing, labelDay)
	}
	if len(temp) < 3 {
		missing = append(missing, labelTemperature)
	}
	if len(hum) < 2 {
		missing = append(missing, labelHumidity)
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return columnIndex{
		day:     day[0],
		avgTemp: temp[0],
		maxTemp: temp[1],
		lowTemp: temp[2],
		avgHum:  hum[0],
		lowHum:  hum[1],
	}, nil
}

// rowCells returns the text of each leaf column of a data row.
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
		text := cell.Text()
		for i := spanAttr(cell, "colspan"); i > 0; i-- {
			cells = append(cells, text)
		}
	})
	return cells
}

func buildRecord(cells []string, idx columnIndex, key weather.MonthKey) (weather.DailyRecord, bool) {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	day, err := strconv.Atoi(common.Fold(cell(idx.day)))
	if err != nil || day < 1 || day > 31 {
		return weather.DailyRecord{}, false
	}

	rec := weather.DailyRecord{
		Year:    key.Year,
		Month:   int(key.Month),
		Day:     day,
		AvgTemp: parseValue(cell(idx.avgTemp)),
		MaxTemp: parseValue(cell(idx.maxTemp)),
		LowTemp: parseValue(cell(idx.lowTemp)),
		AvgHum:  parseValue(cell(idx.avgHum)),
		LowHum:  parseValue(cell(idx.lowHum)),
	}
	if rec.AvgTemp == nil || rec.MaxTemp == nil || rec.LowTemp == nil ||
		rec.AvgHum == nil || rec.LowHum == nil {
		return weather.DailyRecord{}, false
	}
	return rec, true
}

// parseValue reads a numeric cell. Quality suffixes ")" and "]" are stripped;
// missing markers and anything non-numeric yield nil.
func parseValue(raw string) *float64 {
	s := strings.TrimSpace(strings.TrimRight(common.Fold(raw), ")] "))
	if s == "" || common.HasAny(s, "///", "×", "--", "#") {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr(name, "1")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
