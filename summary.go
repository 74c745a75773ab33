package tabinspect

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ColumnInfo describes one column of a dataset.
type ColumnInfo struct {
	Name    string
	Type    ColumnType
	NonNull int
}

// NumericSummary holds descriptive statistics of a numeric column.
// Std is the sample standard deviation; it is NaN when Count < 2.
type NumericSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Summary is the shape and statistics of a dataset.
type Summary struct {
	Rows    int
	Columns int
	Info    []ColumnInfo
	Numeric []NumericSummary
	Preview *Dataset
}

// Summarize computes the summary of d with a preview of the first
// previewRows records. previewRows <= 0 means DefaultPreviewRows.
func Summarize(d *Dataset, previewRows int) Summary {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	summary := Summary{
		Rows:    d.Len(),
		Columns: d.Width(),
		Info:    make([]ColumnInfo, 0, d.Width()),
		Preview: d.Head(previewRows),
	}

	for i, col := range d.columns {
		var values []float64
		nonNull := 0
		for _, record := range d.records {
			if isNull(record[i]) {
				continue
			}
			nonNull++
			if f, ok := goNumber(record[i]); ok && col.Type.IsNumeric() {
				values = append(values, f)
			}
		}
		summary.Info = append(summary.Info, ColumnInfo{Name: col.Name, Type: col.Type, NonNull: nonNull})

		if col.Type.IsNumeric() {
			summary.Numeric = append(summary.Numeric, describe(col.Name, values))
		}
	}
	return summary
}

// describe computes count, mean, std, min, quartiles and max of values
func describe(column string, values []float64) NumericSummary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return NumericSummary{Column: column, Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return NumericSummary{
		Column: column,
		Count:  n,
		Mean:   stat.Mean(sorted, nil),
		Std:    sampleStd(sorted),
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[n-1],
	}
}

// isNull reports whether a cell counts as missing. NaN floats are missing.
func isNull(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}

// sampleStd computes the standard deviation with n-1 degrees of freedom
func sampleStd(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// quantile returns the q-th quantile (0 <= q <= 1) of sorted data using
// linear interpolation between the closest ranks, (n-1)*q. stat.Quantile
// with stat.LinInterp interpolates the empirical CDF instead and gives
// different quartiles on small samples.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	rank := q * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
