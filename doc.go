// Package tabinspect loads a tabular dataset, reports its shape and summary
// statistics, and answers filter queries over named columns.
//
// Input can be CSV, TSV, LTSV, Parquet or Excel (XLSX), optionally compressed
// with gzip, bzip2, xz or zstandard. Column types (integer, real, datetime,
// text) are inferred from the data when the file is read.
//
// # Loading
//
// A Loader tries candidate paths in order and parses the first one that
// exists. When none exists it uses a fallback Generator, or fails with a
// *DataNotFoundError if no fallback is set:
//
//	d, err := tabinspect.NewLoader().
//	    AddPaths("uber_rides_bookings.csv", "bookings.csv", "data.csv").
//	    WithFallback(tabinspect.NewBookingGenerator(50, 42)).
//	    Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Missing columns
//
// Datasets from different exports rarely agree on a schema, so selecting or
// filtering on an absent column is not fatal. SelectColumns returns the
// names it could not find next to the projection, and every filter returns a
// Result whose Missing field lists *ColumnNotFoundError values along with an
// empty dataset:
//
//	res := tabinspect.FilterEquals(d, "Booking Status", "Cancelled by Driver")
//	if len(res.Missing) > 0 {
//	    fmt.Println("available columns:", d.ColumnNames())
//	}
//
// # Dates
//
// FilterDateRange converts its column to timestamps in place the first time
// it runs on that column. Values that cannot be parsed are skipped, counted
// in Result.Skipped and reported as *DateParseError; they never abort the
// filter. Both range bounds are inclusive, and a date-only end bound covers
// the whole day.
//
// # SQL
//
// Query copies a dataset into an in-memory SQLite database and runs a SQL
// statement against it. All SQLite3 syntax is available, including window
// functions and CTEs:
//
//	top, err := tabinspect.Query(ctx, d,
//	    `SELECT "Vehicle Type", AVG("Booking Value") AS avg_value
//	       FROM synthetic_bookings GROUP BY 1 ORDER BY 2 DESC`)
package tabinspect
