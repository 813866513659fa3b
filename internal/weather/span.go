package weather

// MonthSpan returns every month from from's month to to's month, inclusive,
// in chronological order. It returns nil when to's month precedes from's.
func MonthSpan(from, to MonthKey) []MonthKey {
	if to.Before(from) {
		return nil
	}

	var keys []MonthKey
	for k := from; !to.Before(k); k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}

// TrimMonth drops the rows of a boundary month that fall outside the
// requested days. The first month keeps days >= fromDay, the last month keeps
// days <= toDay, and a month that is both applies both bounds. Interior months
// are returned untouched. Rows are never added or reordered.
func TrimMonth(table MonthTable, first, last bool, fromDay, toDay int) MonthTable {
	if !first && !last {
		return table
	}

	out := make(MonthTable, 0, len(table))
	for _, r := range table {
		if first && r.Day < fromDay {
			continue
		}
		if last && r.Day > toDay {
			continue
		}
		out = append(out, r)
	}
	return out
}
