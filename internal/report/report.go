// Package report renders the inspection report of a dataset as plain text.
package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/nao1215/tabinspect"
)

const (
	majorRule = 60
	minorRule = 40
)

// StatusFilter selects records whose Column equals Value.
type StatusFilter struct {
	Column string
	Value  string
}

// ThresholdFilter selects records whose Column equals Value and whose
// ValueColumn satisfies Operator Threshold.
type ThresholdFilter struct {
	Column      string
	Value       string
	ValueColumn string
	Operator    tabinspect.Operator
	Threshold   float64
}

// DateFilter selects records of Range using the first of Columns that exists.
type DateFilter struct {
	Columns []string
	Range   tabinspect.DateRange
	Label   string
}

// Options configures the report sections.
type Options struct {
	PreviewRows     int
	MaxRows         int
	Select          []string
	AlternateSelect []string
	Status          StatusFilter
	Threshold       ThresholdFilter
	Dates           DateFilter
	Queries         []string
}

// Reporter writes the report to an io.Writer.
type Reporter struct {
	w    io.Writer
	opts Options
	err  error
}

// New creates a Reporter.
func New(w io.Writer, opts Options) *Reporter {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = tabinspect.DefaultPreviewRows
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = opts.PreviewRows
	}
	return &Reporter{w: w, opts: opts}
}

// Run writes every section for d. Only write errors and query failures are
// returned; missing columns and unparsable dates are reported in the output.
func (r *Reporter) Run(ctx context.Context, d *tabinspect.Dataset) error {
	r.banner("STEP 1: LOAD AND INSPECT")
	r.source(d)
	r.printf("\n%s\n", strings.Repeat("=", minorRule))

	summary := tabinspect.Summarize(d, r.opts.PreviewRows)
	r.printf("1. First %d rows:\n", r.opts.PreviewRows)
	r.table(summary.Preview, r.opts.PreviewRows)
	r.rule()

	r.printf("2. Dataset info:\n")
	r.info(d, summary)
	r.rule()

	r.printf("3. Descriptive statistics of numeric columns:\n")
	r.describe(summary)
	r.rule()

	r.printf("4. Rows and columns:\n")
	r.printf("Rows: %d, Columns: %d\n", summary.Rows, summary.Columns)

	r.banner("STEP 2: SELECT AND FILTER")
	r.selection(d)
	r.rule()
	r.status(d)
	r.rule()
	r.threshold(d)
	r.rule()
	r.dates(d)

	if len(r.opts.Queries) > 0 {
		r.banner("STEP 3: SQL QUERIES")
		for i, q := range r.opts.Queries {
			if err := r.query(ctx, d, i+1, q); err != nil {
				return err
			}
		}
	}

	r.banner("ALL SECTIONS COMPLETED")
	return r.err
}

// printf writes formatted output, keeping the first write error
func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// banner writes a section title between double rules
func (r *Reporter) banner(title string) {
	line := strings.Repeat("=", majorRule)
	r.printf("\n%s\n%s\n%s\n", line, title, line)
}

// rule writes a single separator line
func (r *Reporter) rule() {
	r.printf("\n%s\n", strings.Repeat("-", minorRule))
}

// source reports where d was loaded from
func (r *Reporter) source(d *tabinspect.Dataset) {
	if d.Source() == tabinspect.SyntheticSource {
		r.printf("No input file found, generated synthetic data (%d records)\n", d.Len())
		return
	}
	r.printf("Loaded '%s' (%d records)\n", d.Source(), d.Len())
}

// table writes up to limit records of d with a leading row index
func (r *Reporter) table(d *tabinspect.Dataset, limit int) {
	if r.err != nil {
		return
	}
	if d.Width() == 0 {
		r.printf("(no columns)\n")
		return
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\t%s\n", strings.Join(d.ColumnNames(), "\t"))
	n := min(limit, d.Len())
	for i := range n {
		record := d.Record(i)
		cells := make([]string, len(record))
		for j, v := range record {
			cells[j] = tabinspect.FormatValue(v)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	r.err = tw.Flush()
	if d.Len() > n {
		r.printf("... %d more records\n", d.Len()-n)
	}
}

// info writes the column types and non-null counts of d
func (r *Reporter) info(d *tabinspect.Dataset, summary tabinspect.Summary) {
	if r.err != nil {
		return
	}
	r.printf("Dataset: %s, %d entries\n", d.Name(), summary.Rows)
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "#\tColumn\tNon-Null Count\tType\n")
	for i, col := range summary.Info {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d non-null\t%s\n", i, col.Name, col.NonNull, col.Type)
	}
	r.err = tw.Flush()
}

// describe writes the descriptive statistics of the numeric columns
func (r *Reporter) describe(summary tabinspect.Summary) {
	if r.err != nil {
		return
	}
	if len(summary.Numeric) == 0 {
		r.printf("(no numeric columns)\n")
		return
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := make([]string, len(summary.Numeric))
	for i, s := range summary.Numeric {
		header[i] = s.Column
	}
	_, _ = fmt.Fprintf(tw, "\t%s\t\n", strings.Join(header, "\t"))

	rows := []struct {
		label string
		value func(tabinspect.NumericSummary) float64
	}{
		{"count", func(s tabinspect.NumericSummary) float64 { return float64(s.Count) }},
		{"mean", func(s tabinspect.NumericSummary) float64 { return s.Mean }},
		{"std", func(s tabinspect.NumericSummary) float64 { return s.Std }},
		{"min", func(s tabinspect.NumericSummary) float64 { return s.Min }},
		{"25%", func(s tabinspect.NumericSummary) float64 { return s.Q25 }},
		{"50%", func(s tabinspect.NumericSummary) float64 { return s.Median }},
		{"75%", func(s tabinspect.NumericSummary) float64 { return s.Q75 }},
		{"max", func(s tabinspect.NumericSummary) float64 { return s.Max }},
	}
	for _, row := range rows {
		cells := make([]string, len(summary.Numeric))
		for i, s := range summary.Numeric {
			cells[i] = formatStat(row.value(s))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t\n", row.label, strings.Join(cells, "\t"))
	}
	r.err = tw.Flush()
}

// formatStat formats a statistic with six decimals, NaN as is
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// selection prints the configured column projection. When the primary
// selection lacks columns the alternate one is tried, since some exports
// split the booking timestamp into Date and Time columns.
func (r *Reporter) selection(d *tabinspect.Dataset) {
	names := r.opts.Select
	r.printf("1. Selecting columns %s:\n", strings.Join(names, ", "))

	projection, missing := tabinspect.SelectColumns(d, names...)
	if len(missing) > 0 && len(r.opts.AlternateSelect) > 0 {
		alt, altMissing := tabinspect.SelectColumns(d, r.opts.AlternateSelect...)
		if alt.Width() > projection.Width() {
			r.printf("Columns %s not found, using %s\n", strings.Join(missing, ", "), strings.Join(r.opts.AlternateSelect, ", "))
			projection, missing = alt, altMissing
		}
	}

	if projection.Width() == 0 {
		r.printf("None of the requested columns were found\n")
		r.printf("Available columns: %s\n", strings.Join(d.ColumnNames(), ", "))
		return
	}
	if len(missing) > 0 {
		r.printf("Missing columns: %s\n", strings.Join(missing, ", "))
	}
	r.printf("First %d rows:\n", r.opts.PreviewRows)
	r.table(projection, r.opts.PreviewRows)
}

// status prints the records matching the status filter
func (r *Reporter) status(d *tabinspect.Dataset) {
	f := r.opts.Status
	r.printf("2. Records with %s = %q:\n", f.Column, f.Value)

	res := tabinspect.FilterEquals(d, f.Column, f.Value)
	if r.missing(d, res) {
		return
	}
	r.printf("Found: %d records\n", res.Len())
	if res.Len() > 0 {
		r.table(res.Dataset, r.opts.MaxRows)
		return
	}
	r.printf("No records with %s %q\n", f.Column, f.Value)
	r.uniqueValues(d, f.Column)
}

// threshold prints the records matching the value and threshold filter
func (r *Reporter) threshold(d *tabinspect.Dataset) {
	f := r.opts.Threshold
	r.printf("3. Records with %s = %q and %s %s %s:\n",
		f.Column, f.Value, f.ValueColumn, f.Operator, strconv.FormatFloat(f.Threshold, 'f', -1, 64))

	res := tabinspect.Where(d,
		tabinspect.Equal(f.Column, f.Value),
		tabinspect.Threshold(f.ValueColumn, f.Operator, f.Threshold),
	)
	if r.missing(d, res) {
		return
	}
	r.printf("Found: %d records\n", res.Len())
	if res.Len() > 0 {
		r.table(res.Dataset, r.opts.MaxRows)
		return
	}
	r.printf("No matching records\n")
	r.uniqueValues(d, f.Column)
	for _, s := range tabinspect.Summarize(d, 1).Numeric {
		if s.Column == f.ValueColumn {
			r.printf("Maximum %s: %s\n", s.Column, formatStat(s.Max))
		}
	}
}

// dates prints the records inside the configured date range
func (r *Reporter) dates(d *tabinspect.Dataset) {
	f := r.opts.Dates
	label := f.Label
	if label == "" {
		label = fmt.Sprintf("%s to %s", tabinspect.FormatValue(f.Range.Start), tabinspect.FormatValue(f.Range.End))
	}
	r.printf("4. Records from %s:\n", label)

	column := ""
	for _, c := range f.Columns {
		if d.HasColumn(c) {
			column = c
			break
		}
	}
	if column == "" {
		r.printf("No date columns found (tried %s)\n", strings.Join(f.Columns, ", "))
		return
	}

	res := tabinspect.FilterDateRange(d, column, f.Range)
	r.printf("Found: %d records (by column %s)\n", res.Len(), column)
	if res.Skipped > 0 {
		r.printf("Skipped %d records with unparsable dates\n", res.Skipped)
		for _, pe := range res.ParseErrors[:min(len(res.ParseErrors), r.opts.PreviewRows)] {
			r.printf("  row %d: %q\n", pe.Row, pe.Value)
		}
	}
	if res.Len() > 0 {
		r.table(res.Dataset, r.opts.MaxRows)
		return
	}

	r.printf("No records in range\n")
	earliest, latest, ok, err := tabinspect.DatetimeBounds(d, column)
	if err == nil && ok {
		r.printf("Date range in data:\nFrom: %s\nTo: %s\n", tabinspect.FormatValue(earliest), tabinspect.FormatValue(latest))
	}
}

// query runs the n-th SQL query against d and prints its result
func (r *Reporter) query(ctx context.Context, d *tabinspect.Dataset, n int, q string) error {
	r.printf("%d. %s\n", n, q)
	res, err := tabinspect.Query(ctx, d, q)
	if err != nil {
		return fmt.Errorf("query %d: %w", n, err)
	}
	r.printf("Found: %d records\n", res.Len())
	r.table(res, r.opts.MaxRows)
	r.rule()
	return nil
}

// missing prints the missing columns of res and reports whether there were any
func (r *Reporter) missing(d *tabinspect.Dataset, res tabinspect.Result) bool {
	if len(res.Missing) == 0 {
		return false
	}
	for _, name := range res.MissingColumns() {
		r.printf("Column '%s' not found\n", name)
	}
	r.printf("Available columns: %s\n", strings.Join(d.ColumnNames(), ", "))
	return true
}

// uniqueValues lists the distinct values of column, if it exists
func (r *Reporter) uniqueValues(d *tabinspect.Dataset, column string) {
	values, err := tabinspect.Unique(d, column)
	if err != nil {
		return
	}
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = tabinspect.FormatValue(v)
	}
	r.printf("Available %s values: %s\n", column, strings.Join(cells, ", "))
}
