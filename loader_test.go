package tabinspect

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	fixtureHeader = []string{"Booking ID", "booking_datetime", "Vehicle Type", "Booking Value"}
	fixtureRows   = [][]string{
		{"1", "2024-03-01 08:15:00", "Auto", "650.5"},
		{"2", "2024-03-02 09:30:00", "Sedan", "320.25"},
	}
)

// expectedFixture is the dataset every fixture format must load into
func expectedFixture(t *testing.T) *Dataset {
	t.Helper()

	d, err := NewDataset("fixture",
		[]Column{
			{Name: "Booking ID", Type: ColumnTypeInteger},
			{Name: "booking_datetime", Type: ColumnTypeDatetime},
			{Name: "Vehicle Type", Type: ColumnTypeText},
			{Name: "Booking Value", Type: ColumnTypeReal},
		},
		[]Record{
			{int64(1), time.Date(2024, time.March, 1, 8, 15, 0, 0, time.UTC), "Auto", 650.5},
			{int64(2), time.Date(2024, time.March, 2, 9, 30, 0, 0, time.UTC), "Sedan", 320.25},
		})
	require.NoError(t, err)
	return d
}

func delimitedFixture(sep string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(fixtureHeader, sep) + "\n")
	for _, row := range fixtureRows {
		sb.WriteString(strings.Join(row, sep) + "\n")
	}
	return sb.String()
}

func ltsvFixture() string {
	var sb strings.Builder
	for _, row := range fixtureRows {
		pairs := make([]string, len(row))
		for i, v := range row {
			pairs[i] = fixtureHeader[i] + ":" + v
		}
		sb.WriteString(strings.Join(pairs, "\t") + "\n")
	}
	return sb.String()
}

func xlsxFixture(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{fixtureHeader}, fixtureRows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func parquetFixture(t *testing.T) []byte {
	t.Helper()

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "Booking ID", Type: arrow.PrimitiveTypes.Int64},
		{Name: "booking_datetime", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
		{Name: "Vehicle Type", Type: arrow.BinaryTypes.String},
		{Name: "Booking Value", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	builder.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	builder.Field(1).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{
		arrow.Timestamp(time.Date(2024, time.March, 1, 8, 15, 0, 0, time.UTC).UnixMicro()),
		arrow.Timestamp(time.Date(2024, time.March, 2, 9, 30, 0, 0, time.UTC).UnixMicro()),
	}, nil)
	builder.Field(2).(*array.StringBuilder).AppendValues([]string{"Auto", "Sedan"}, nil)
	builder.Field(3).(*array.Float64Builder).AppendValues([]float64{650.5, 320.25}, nil)

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	var buf bytes.Buffer
	err := pqarrow.WriteTable(table, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	return buf.Bytes()
}

// writeFixture writes data to name inside dir and returns the path
func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoaderFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data func(t *testing.T) []byte
	}{
		{
			name: "CSV",
			file: "fixture.csv",
			data: func(_ *testing.T) []byte { return []byte(delimitedFixture(",")) },
		},
		{
			name: "CSV with BOM",
			file: "fixture.csv",
			data: func(_ *testing.T) []byte { return []byte(utf8BOM + delimitedFixture(",")) },
		},
		{
			name: "TSV",
			file: "fixture.tsv",
			data: func(_ *testing.T) []byte { return []byte(delimitedFixture("\t")) },
		},
		{
			name: "LTSV",
			file: "fixture.ltsv",
			data: func(_ *testing.T) []byte { return []byte(ltsvFixture()) },
		},
		{
			name: "gzip CSV",
			file: "fixture.csv.gz",
			data: func(t *testing.T) []byte { return gzipBytes(t, delimitedFixture(",")) },
		},
		{
			name: "zstd TSV",
			file: "fixture.tsv.zst",
			data: func(t *testing.T) []byte { return zstdBytes(t, delimitedFixture("\t")) },
		},
		{
			name: "xz LTSV",
			file: "fixture.ltsv.xz",
			data: func(t *testing.T) []byte { return xzBytes(t, ltsvFixture()) },
		},
		{
			name: "XLSX",
			file: "fixture.xlsx",
			data: xlsxFixture,
		},
		{
			name: "Parquet",
			file: "fixture.parquet",
			data: parquetFixture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFixture(t, t.TempDir(), tt.file, tt.data(t))

			d, err := NewLoader().AddPath(path).Load(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "fixture", d.Name())
			assert.Equal(t, path, d.Source())
			want := expectedFixture(t)
			assert.Equal(t, want.Columns(), d.Columns())
			assert.True(t, want.Equal(d), "got records %v", d.records)
		})
	}
}

func TestLoaderCandidateOrder(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"second.csv":       {Data: []byte("id,status\n2,Completed\n")},
		"third.csv":        {Data: []byte("id,status\n3,Completed\n")},
		"nested/first.csv": {Data: []byte("id,status\n1,Completed\n")},
	}

	t.Run("first existing candidate wins", func(t *testing.T) {
		t.Parallel()

		d, err := NewLoader().
			WithFS(fsys).
			AddPaths("missing.csv", "", "nested", "second.csv", "third.csv").
			WithFallback(NewBookingGenerator(5, 1)).
			Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "second.csv", d.Source())
		assert.Equal(t, "second", d.Name())
		v, _ := d.Value(0, "id")
		assert.Equal(t, int64(2), v)
	})

	t.Run("nested path", func(t *testing.T) {
		t.Parallel()

		d, err := NewLoader().WithFS(fsys).AddPath("nested/first.csv").AddPath("second.csv").Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "nested/first.csv", d.Source())
		assert.Equal(t, "first", d.Name())
	})

	t.Run("paths are kept in order", func(t *testing.T) {
		t.Parallel()

		l := NewLoader().AddPath("a.csv").AddPaths("b.csv", "c.csv")
		assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, l.Paths())
	})
}

func TestLoaderFallback(t *testing.T) {
	t.Parallel()

	t.Run("generator is used when nothing exists", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		d, err := NewLoader().
			WithFS(fstest.MapFS{}).
			AddPaths("bookings.csv", "data.csv").
			WithFallback(NewBookingGenerator(DefaultGeneratorRows, DefaultGeneratorSeed)).
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))).
			Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, SyntheticSource, d.Source())
		assert.Equal(t, DefaultGeneratorRows, d.Len())
		assert.True(t, d.Equal(NewBookingGenerator(DefaultGeneratorRows, DefaultGeneratorSeed).Generate()))
		assert.Contains(t, logs.String(), "using generated data")
	})

	t.Run("no candidates at all", func(t *testing.T) {
		t.Parallel()

		d, err := NewLoader().WithFallback(NewBookingGenerator(3, 1)).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, d.Len())
	})
}

func TestLoaderDataNotFound(t *testing.T) {
	t.Parallel()

	t.Run("candidates listed", func(t *testing.T) {
		t.Parallel()

		_, err := NewLoader().
			WithFS(fstest.MapFS{}).
			AddPaths("bookings.csv", "data.csv").
			Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDataNotFound)

		var notFound *DataNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, []string{"bookings.csv", "data.csv"}, notFound.Candidates)
		assert.Contains(t, err.Error(), "bookings.csv, data.csv")
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()

		_, err := NewLoader().Load(context.Background())
		assert.ErrorIs(t, err, ErrDataNotFound)
		assert.Contains(t, err.Error(), "no candidate paths given")
	})

	t.Run("OS filesystem", func(t *testing.T) {
		t.Parallel()

		_, err := NewLoader().AddPath(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
		assert.ErrorIs(t, err, ErrDataNotFound)
	})
}

func TestLoaderParseErrorDoesNotFallThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		data    string
		wantErr error
	}{
		{name: "malformed CSV", file: "broken.csv", data: "id,status\n1,\"unterminated\n", wantErr: ErrInvalidData},
		{name: "empty CSV", file: "empty.csv", data: "", wantErr: ErrEmptyData},
		{name: "empty LTSV", file: "empty.ltsv", data: "\n\n", wantErr: ErrEmptyData},
		{name: "duplicate header", file: "dup.csv", data: "id,id\n1,2\n", wantErr: errDuplicateColumnName},
		{name: "unsupported format", file: "bookings.json", data: "[]", wantErr: ErrUnsupportedFormat},
		{name: "invalid XLSX", file: "broken.xlsx", data: "not a workbook", wantErr: ErrInvalidData},
		{name: "invalid Parquet", file: "broken.parquet", data: "not parquet", wantErr: ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := fstest.MapFS{
				tt.file:        {Data: []byte(tt.data)},
				"healthy.csv": {Data: []byte("id\n1\n")},
			}

			d, err := NewLoader().
				WithFS(fsys).
				AddPaths(tt.file, "healthy.csv").
				WithFallback(NewBookingGenerator(5, 1)).
				Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "file: "+tt.file)
		})
	}
}

func TestLoaderCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().AddPath("bookings.csv").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidatorExists(t *testing.T) {
	t.Parallel()

	v := newValidator(fstest.MapFS{
		"bookings.csv":   {Data: []byte("id\n1\n")},
		"dir/inside.csv": {Data: []byte("id\n1\n")},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"bookings.csv", true},
		{"dir/inside.csv", true},
		{"dir", false},
		{"missing.csv", false},
		{"", false},
		{"   ", false},
		{"../outside.csv", false},
	}

	for _, tt := range tests {
		got, err := v.exists(tt.path)
		require.NoError(t, err, "path %q", tt.path)
		assert.Equal(t, tt.want, got, "path %q", tt.path)
	}
}
