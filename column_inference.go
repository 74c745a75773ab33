package tabinspect

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999"},
	},
	// ISO8601 date and time without seconds
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}$`),
		[]string{"2006-01-02T15:04", "2006-01-02 15:04"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{time.DateOnly},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}:\d{2}$`),
		[]string{"2.1.2006 15:04:05", "02.01.2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
}

// dateOnlyPattern matches values without a time-of-day component.
var dateOnlyPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|\d{1,2}\.\d{1,2}\.\d{4})$`)

// parseDatetime parses value with the first matching datetime pattern.
// Values without a zone are read as UTC.
func parseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// missingMarkers are the cell spellings read as a missing value, compared
// case-insensitively after trimming
var missingMarkers = map[string]struct{}{
	"nan":  {},
	"-nan": {},
	"na":   {},
	"n/a":  {},
	"#n/a": {},
	"<na>": {},
	"null": {},
	"none": {},
}

// isMissing reports whether a raw cell holds no value
func isMissing(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	_, ok := missingMarkers[strings.ToLower(value)]
	return ok
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	_, ok := parseDatetime(value)
	return ok
}

// isDateOnly reports whether value is a date without a time of day.
func isDateOnly(value string) bool {
	return dateOnlyPattern.MatchString(strings.TrimSpace(value))
}

// inferColumnType infers the column type from a slice of string values
func inferColumnType(values []string) ColumnType {
	if len(values) == 0 {
		return ColumnTypeText
	}

	hasDatetime := false
	hasReal := false
	hasInteger := false
	hasText := false

	for _, value := range values {
		if isMissing(value) {
			continue
		}
		value = strings.TrimSpace(value)

		// Dates like 2024.03.01 would otherwise parse as numbers
		if isDatetime(value) {
			hasDatetime = true
			continue
		}

		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}

		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}

		hasText = true
		break // If any value is text, the whole column is text
	}

	// Priority: TEXT > DATETIME > REAL > INTEGER
	if hasText {
		return ColumnTypeText
	}
	if hasDatetime {
		if hasReal || hasInteger {
			return ColumnTypeText
		}
		return ColumnTypeDatetime
	}
	if hasReal {
		return ColumnTypeReal
	}
	if hasInteger {
		return ColumnTypeInteger
	}

	return ColumnTypeText
}

// inferColumns infers column information from header and raw string records
func inferColumns(header []string, records [][]string) []Column {
	columns := make([]Column, len(header))
	for i, name := range header {
		values := make([]string, 0, len(records))
		for _, record := range records {
			if i < len(record) {
				values = append(values, record[i])
			}
		}
		columns[i] = Column{Name: name, Type: inferColumnType(values)}
	}
	return columns
}

// convertCell converts a raw string cell to the Go value for the column type.
// Empty cells and missing-value markers such as NaN or NULL become nil.
func convertCell(raw string, ct ColumnType) any {
	if isMissing(raw) {
		return nil
	}
	trimmed := strings.TrimSpace(raw)

	switch ct {
	case ColumnTypeInteger:
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v
		}
	case ColumnTypeReal:
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return v
		}
	case ColumnTypeDatetime:
		if v, ok := parseDatetime(trimmed); ok {
			return v
		}
	case ColumnTypeText:
		return raw
	}
	return raw
}
