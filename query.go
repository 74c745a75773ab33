package tabinspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// sqliteDriverName is the database/sql driver name registered by modernc.org/sqlite
const sqliteDriverName = "sqlite"

// sqliteDatetimeFormat is the ISO8601 text form SQLite date functions accept
const sqliteDatetimeFormat = "2006-01-02 15:04:05.999999999"

// Query loads d into an in-memory SQLite database and runs query against it.
// The table is named after the sanitized dataset name (see TableNameOf).
// Timestamps are stored as ISO8601 text. The result columns are re-typed the
// same way file input is.
func Query(ctx context.Context, d *Dataset, query string, args ...any) (*Dataset, error) {
	db, err := sql.Open(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	defer db.Close()
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := loadIntoSQLite(ctx, db, d); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var values [][]any
	for rows.Next() {
		row := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}

	result, err := newDatasetFromValues(d.name, header, values)
	if err != nil {
		return nil, err
	}
	result.source = d.source
	return result, nil
}

// TableNameOf returns the SQL table name Query uses for d.
func TableNameOf(d *Dataset) string {
	return NewTableName(d.name).Sanitize().String()
}

// loadIntoSQLite creates the table for d and inserts every record
func loadIntoSQLite(ctx context.Context, db *sql.DB, d *Dataset) error {
	if d.Width() == 0 {
		return errEmptyHeader
	}

	if _, err := db.ExecContext(ctx, buildCreateTableQuery(d)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(d))
	if err != nil {
		return errors.Join(fmt.Errorf("failed to prepare insert: %w", err), tx.Rollback())
	}
	defer stmt.Close()

	for _, record := range d.records {
		if _, err := stmt.ExecContext(ctx, recordToSQLArgs(record)...); err != nil {
			return errors.Join(fmt.Errorf("failed to insert record: %w", err), tx.Rollback())
		}
	}
	return tx.Commit()
}

// quoteIdentifier quotes a SQL identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildCreateTableQuery constructs a CREATE TABLE query for the dataset
func buildCreateTableQuery(d *Dataset) string {
	columns := make([]string, 0, len(d.columns))
	for _, col := range d.columns {
		columns = append(columns, fmt.Sprintf("%s %s", quoteIdentifier(col.Name), col.Type.sqlType()))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(TableNameOf(d)), strings.Join(columns, ", "))
}

// buildInsertQuery constructs an INSERT query for the dataset
func buildInsertQuery(d *Dataset) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(d.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdentifier(TableNameOf(d)), placeholders)
}

// recordToSQLArgs converts a record into statement arguments
func recordToSQLArgs(record Record) []any {
	args := make([]any, len(record))
	for i, v := range record {
		if t, ok := v.(time.Time); ok {
			args[i] = t.UTC().Format(sqliteDatetimeFormat)
			continue
		}
		args[i] = v
	}
	return args
}

// newDatasetFromValues builds a dataset from scanned SQL values. Columns of
// integers stay integers, numeric columns become reals, and anything else is
// re-inferred from its text form.
func newDatasetFromValues(name string, header []string, rows [][]any) (*Dataset, error) {
	raw := make([][]string, len(rows))
	for i, row := range rows {
		raw[i] = make([]string, len(row))
		for j, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
				row[j] = v
			}
			if v != nil {
				raw[i][j] = fmt.Sprint(v)
			}
		}
	}

	d, err := newDatasetFromStrings(name, header, raw)
	if err != nil {
		return nil, err
	}

	// Keep native numbers from the driver where the whole column is numeric
	for j := range d.columns {
		allInt, allNumeric := true, true
		for _, row := range rows {
			switch row[j].(type) {
			case nil:
			case int64:
			case float64:
				allInt = false
			default:
				allInt, allNumeric = false, false
			}
		}
		switch {
		case allInt && d.columns[j].Type == ColumnTypeInteger:
			for i, row := range rows {
				d.records[i][j] = row[j]
			}
		case allNumeric && d.columns[j].Type.IsNumeric():
			d.columns[j].Type = ColumnTypeReal
			for i, row := range rows {
				if f, ok := goNumber(row[j]); ok {
					d.records[i][j] = f
				}
			}
		}
	}
	return d, nil
}
