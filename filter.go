package tabinspect

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Predicate is a pure function over a row.
type Predicate func(Row) bool

// And combines predicates with logical AND. An empty And matches every row.
func And(preds ...Predicate) Predicate {
	return func(r Row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Operator is a numeric comparison operator.
type Operator string

// Supported comparison operators
const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
)

// ParseOperator validates a textual operator.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.TrimSpace(s)); op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual:
		return op, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// compare applies the operator to a and b
func (op Operator) compare(a, b float64) bool {
	switch op {
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpEqual:
		return a == b
	default:
		return false
	}
}

// Condition is a column-scoped predicate. Naming the column lets Where
// report a missing column instead of silently matching nothing.
type Condition struct {
	Column string
	Match  func(value any) bool
}

// Predicate returns the condition as a row predicate.
func (c Condition) Predicate() Predicate {
	return func(r Row) bool {
		v, ok := r.Get(c.Column)
		return ok && c.Match(v)
	}
}

// Equal matches rows whose column value equals value. Numbers compare by
// value across int and float types, timestamps by instant.
func Equal(column string, value any) Condition {
	return Condition{
		Column: column,
		Match: func(v any) bool {
			return valuesEqual(v, value)
		},
	}
}

// Threshold matches rows whose column value is numeric and satisfies
// value op threshold. Missing and non-numeric values never match.
func Threshold(column string, op Operator, threshold float64) Condition {
	return Condition{
		Column: column,
		Match: func(v any) bool {
			f, ok := numericValue(v)
			return ok && op.compare(f, threshold)
		},
	}
}

// Result is the outcome of a filter. Dataset is never nil: when a column is
// missing it is an empty dataset with the input schema.
type Result struct {
	Dataset *Dataset
	// Missing lists the requested columns the dataset does not have
	Missing []*ColumnNotFoundError
	// Skipped counts rows excluded because their value could not be parsed
	Skipped int
	// ParseErrors holds one entry per skipped row
	ParseErrors []*DateParseError
}

// Len returns the number of matching records.
func (r Result) Len() int {
	return r.Dataset.Len()
}

// MissingColumns returns the names of the missing columns.
func (r Result) MissingColumns() []string {
	names := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		names[i] = m.Column
	}
	return names
}

// Err joins the column and parse problems of the result, or returns nil.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Missing)+len(r.ParseErrors))
	for _, m := range r.Missing {
		errs = append(errs, m)
	}
	for _, p := range r.ParseErrors {
		errs = append(errs, p)
	}
	return errors.Join(errs...)
}

// Where returns the records matching every condition, in original order.
// Each condition naming an absent column is reported in Result.Missing and
// the returned dataset is empty.
func Where(d *Dataset, conds ...Condition) Result {
	var missing []*ColumnNotFoundError
	for _, c := range conds {
		if !d.HasColumn(c.Column) {
			missing = append(missing, d.missingColumn(c.Column))
		}
	}
	if len(missing) > 0 {
		return Result{Dataset: d.empty(), Missing: missing}
	}

	preds := make([]Predicate, len(conds))
	for i, c := range conds {
		preds[i] = c.Predicate()
	}
	return Result{Dataset: d.Filter(And(preds...))}
}

// FilterEquals returns the records where column equals value.
func FilterEquals(d *Dataset, column string, value any) Result {
	return Where(d, Equal(column, value))
}

// FilterNumericThreshold returns the records where column op threshold holds.
func FilterNumericThreshold(d *Dataset, column string, op Operator, threshold float64) Result {
	return Where(d, Threshold(column, op, threshold))
}

// numericValue extracts a float from a cell. Strings holding a number count
// as numeric; timestamps, nil and NaN do not.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case nil, time.Time, bool:
		return 0, false
	case string:
		if isMissing(val) {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// goNumber converts Go numeric kinds to float64
func goNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// valuesEqual compares a cell with a query value. Values of different kinds
// are never equal; nil never equals anything.
func valuesEqual(cell, want any) bool {
	if cell == nil || want == nil {
		return false
	}
	if a, ok := goNumber(cell); ok {
		b, ok := goNumber(want)
		return ok && a == b
	}
	switch c := cell.(type) {
	case time.Time:
		w, ok := want.(time.Time)
		return ok && c.Equal(w)
	case string:
		w, ok := want.(string)
		return ok && c == w
	default:
		return false
	}
}
