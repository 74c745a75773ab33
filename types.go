package tabinspect

import (
	"fmt"
	"strings"
)

// Character validation constants
const (
	// firstDigitChar represents the first numeric character
	firstDigitChar = '0'
	// lastDigitChar represents the last numeric character
	lastDigitChar = '9'
	// firstLowerChar represents the first lowercase letter
	firstLowerChar = 'a'
	// lastLowerChar represents the last lowercase letter
	lastLowerChar = 'z'
	// firstUpperChar represents the first uppercase letter
	firstUpperChar = 'A'
	// lastUpperChar represents the last uppercase letter
	lastUpperChar = 'Z'
	// underscoreChar represents the underscore character
	underscoreChar = '_'
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// DefaultPreviewRows is the number of records Summarize previews when the
// caller does not ask for a specific count.
const DefaultPreviewRows = 5

// TableName represents a table name with validation
type TableName struct {
	value string
}

// NewTableName creates a new TableName with validation
func NewTableName(name string) TableName {
	if strings.TrimSpace(name) == "" {
		return TableName{value: "dataset"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Sanitize returns a version of the name usable as an unquoted SQL identifier
func (tn TableName) Sanitize() TableName {
	result := strings.ReplaceAll(tn.value, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()
	if len(finalResult) > 0 && finalResult[0] >= firstDigitChar && finalResult[0] <= lastDigitChar {
		finalResult = "dataset_" + finalResult
	}
	if finalResult == "" {
		finalResult = "dataset"
	}
	return TableName{value: finalResult}
}

// ColumnType is the semantic type of a column, inferred at load time.
type ColumnType int

const (
	// ColumnTypeText holds string values
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger holds int64 values
	ColumnTypeInteger
	// ColumnTypeReal holds float64 values
	ColumnTypeReal
	// ColumnTypeDatetime holds time.Time values
	ColumnTypeDatetime
)

// String returns the display name of the column type
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeText:
		return "text"
	case ColumnTypeInteger:
		return "integer"
	case ColumnTypeReal:
		return "real"
	case ColumnTypeDatetime:
		return "datetime"
	default:
		return "text"
	}
}

// sqlType returns the SQLite column type. Datetimes are stored as ISO8601 TEXT.
func (ct ColumnType) sqlType() string {
	switch ct {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// IsNumeric reports whether the column holds integer or real values.
func (ct ColumnType) IsNumeric() bool {
	return ct == ColumnTypeInteger || ct == ColumnTypeReal
}

// Column is a named, typed column of a Dataset.
type Column struct {
	Name string
	Type ColumnType
}

// validateColumnNames checks for duplicate column names and returns error if found.
// Column name comparison is case-sensitive.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmedCol := strings.TrimSpace(col)
		if columnsSeen[trimmedCol] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col)
		}
		columnsSeen[trimmedCol] = true
	}
	return nil
}
