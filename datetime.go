package tabinspect

import (
	"errors"
	"fmt"
	"time"
)

// endOfDay is added to a date-only end bound so the whole day is included
const endOfDay = 24*time.Hour - time.Nanosecond

// DateRange is a closed timestamp interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses the bounds of a closed interval. A date-only end
// bound such as "2024-03-31" covers that whole day.
func ParseDateRange(start, end string) (DateRange, error) {
	s, ok := parseDatetime(start)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: range start %q", ErrDateParse, start)
	}
	e, ok := parseDatetime(end)
	if !ok {
		return DateRange{}, fmt.Errorf("%w: range end %q", ErrDateParse, end)
	}
	if isDateOnly(end) {
		e = e.Add(endOfDay)
	}
	if e.Before(s) {
		return DateRange{}, errors.New("range end is before range start")
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// NormalizeDatetime converts the values of column to time.Time in place.
//
// Strings that parse as timestamps are replaced, nil stays nil, and every
// other value is left untouched and reported as a DateParseError. The column
// type becomes ColumnTypeDatetime only when every non-nil value converted;
// otherwise it keeps its inferred type. Normalizing a column a second time
// changes nothing and returns the same parse errors.
func NormalizeDatetime(d *Dataset, column string) ([]*DateParseError, error) {
	i, ok := d.index[column]
	if !ok {
		return nil, d.missingColumn(column)
	}
	if parseErrs, done := d.normalized[column]; done {
		return parseErrs, nil
	}

	var parseErrs []*DateParseError
	for row, record := range d.records {
		switch v := record[i].(type) {
		case nil, time.Time:
		case string:
			t, ok := parseDatetime(v)
			if !ok {
				parseErrs = append(parseErrs, &DateParseError{Column: column, Row: row, Value: v})
				continue
			}
			record[i] = t
		default:
			parseErrs = append(parseErrs, &DateParseError{Column: column, Row: row, Value: fmt.Sprint(v)})
		}
	}

	if len(parseErrs) == 0 {
		d.columns[i].Type = ColumnTypeDatetime
	}
	d.normalized[column] = parseErrs
	return parseErrs, nil
}

// FilterDateRange normalizes column to timestamps and returns the records
// inside r. Rows whose value cannot be parsed are skipped and counted;
// they never abort the filter.
func FilterDateRange(d *Dataset, column string, r DateRange) Result {
	parseErrs, err := NormalizeDatetime(d, column)
	if err != nil {
		var notFound *ColumnNotFoundError
		errors.As(err, &notFound)
		return Result{Dataset: d.empty(), Missing: []*ColumnNotFoundError{notFound}}
	}

	matched := Where(d, Condition{
		Column: column,
		Match: func(v any) bool {
			t, ok := v.(time.Time)
			return ok && r.Contains(t)
		},
	})
	matched.Skipped = len(parseErrs)
	matched.ParseErrors = parseErrs
	return matched
}

// DatetimeBounds returns the earliest and latest timestamps of column.
// ok is false when the column holds no timestamps.
func DatetimeBounds(d *Dataset, column string) (earliest, latest time.Time, ok bool, err error) {
	i, exists := d.index[column]
	if !exists {
		return time.Time{}, time.Time{}, false, d.missingColumn(column)
	}
	for _, record := range d.records {
		t, isTime := record[i].(time.Time)
		if !isTime {
			continue
		}
		if !ok || t.Before(earliest) {
			earliest = t
		}
		if !ok || t.After(latest) {
			latest = t
		}
		ok = true
	}
	return earliest, latest, ok, nil
}
