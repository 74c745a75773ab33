package tabinspect

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Record is one row of a Dataset. Values are positional and aligned with the
// dataset's columns; each is an int64, float64, string, time.Time or nil.
type Record []any

// Dataset is an in-memory table with a uniform schema.
//
// A Dataset is built once, either from a file or by a Generator. The only
// mutation it allows afterwards is NormalizeDatetime, which converts one
// column to timestamps in place.
type Dataset struct {
	// name is the dataset name, derived from the file path for file sources
	name string
	// source is the path the dataset was loaded from, or "synthetic"
	source string
	// columns is the ordered schema
	columns []Column
	// index maps column name to position
	index map[string]int
	// records are the rows in input order
	records []Record
	// normalized keeps the parse failures of each column converted by NormalizeDatetime
	normalized map[string][]*DateParseError
}

// NewDataset creates a dataset from typed columns and records.
// Every record must have exactly len(columns) values and column names must be unique.
func NewDataset(name string, columns []Column, records []Record) (*Dataset, error) {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	if err := validateColumnNames(names); err != nil {
		return nil, err
	}

	for i, record := range records {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("%w: record %d has %d values, want %d", ErrInvalidData, i, len(record), len(columns))
		}
	}

	return newDataset(name, slices.Clone(columns), records), nil
}

// newDataset builds the dataset without validation
func newDataset(name string, columns []Column, records []Record) *Dataset {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col.Name] = i
	}
	if records == nil {
		records = []Record{}
	}
	return &Dataset{
		name:       name,
		columns:    columns,
		index:      index,
		records:    records,
		normalized: make(map[string][]*DateParseError),
	}
}

// newDatasetFromStrings infers column types from raw string records and
// converts every cell to its typed value.
func newDatasetFromStrings(name string, header []string, raw [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errEmptyHeader
	}
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	columns := inferColumns(header, raw)
	records := make([]Record, len(raw))
	for i, row := range raw {
		record := make(Record, len(columns))
		for j, col := range columns {
			if j < len(row) {
				record[j] = convertCell(row[j], col.Type)
			}
		}
		records[i] = record
	}
	return newDataset(name, columns, records), nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// Source returns where the dataset came from.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return len(d.columns)
}

// Columns returns a copy of the schema in column order.
func (d *Dataset) Columns() []Column {
	return slices.Clone(d.columns)
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// HasColumn reports whether the dataset has the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Record returns a copy of record i.
func (d *Dataset) Record(i int) Record {
	return slices.Clone(d.records[i])
}

// Row returns a read-only view of record i.
func (d *Dataset) Row(i int) Row {
	return Row{dataset: d, index: i}
}

// Value returns the value of column in record row.
func (d *Dataset) Value(row int, column string) (any, bool) {
	i, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.records) {
		return nil, false
	}
	return d.records[row][i], true
}

// Head returns a dataset holding the first n records.
func (d *Dataset) Head(n int) *Dataset {
	n = max(0, min(n, len(d.records)))
	return d.derive(d.columns, cloneRecords(d.records[:n]))
}

// Filter returns the records matching p, in their original order.
func (d *Dataset) Filter(p Predicate) *Dataset {
	var records []Record
	for i, record := range d.records {
		if p(d.Row(i)) {
			records = append(records, slices.Clone(record))
		}
	}
	return d.derive(d.columns, records)
}

// empty returns a dataset with the same schema and no records.
func (d *Dataset) empty() *Dataset {
	return d.derive(d.columns, nil)
}

// derive creates a dataset sharing the name and source of d
func (d *Dataset) derive(columns []Column, records []Record) *Dataset {
	derived := newDataset(d.name, slices.Clone(columns), records)
	derived.source = d.source
	return derived
}

// missingColumn builds the error for an absent column
func (d *Dataset) missingColumn(name string) *ColumnNotFoundError {
	return &ColumnNotFoundError{Column: name, Available: d.ColumnNames()}
}

// Equal reports whether both datasets have the same schema and values.
// Names and sources are not compared.
func (d *Dataset) Equal(other *Dataset) bool {
	if other == nil {
		return false
	}
	if !slices.Equal(d.columns, other.columns) || len(d.records) != len(other.records) {
		return false
	}
	for i, record := range d.records {
		for j, v := range record {
			if !sameValue(v, other.records[i][j]) {
				return false
			}
		}
	}
	return true
}

// sameValue is strict identity of cell values, including nil
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// cloneRecords deep-copies records
func cloneRecords(records []Record) []Record {
	cloned := make([]Record, len(records))
	for i, record := range records {
		cloned[i] = slices.Clone(record)
	}
	return cloned
}

// Row is a read-only view of a single record.
type Row struct {
	dataset *Dataset
	index   int
}

// Index returns the position of the record in its dataset.
func (r Row) Index() int {
	return r.index
}

// Get returns the value of column. ok is false when the column does not exist.
func (r Row) Get(column string) (any, bool) {
	return r.dataset.Value(r.index, column)
}

// Values returns a copy of the record's values.
func (r Row) Values() Record {
	return r.dataset.Record(r.index)
}

// FormatValue renders a cell value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NaN"
	case time.Time:
		if val.Nanosecond() == 0 {
			return val.Format(time.DateTime)
		}
		return val.Format("2006-01-02 15:04:05.000000")
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", val), "0"), ".")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
