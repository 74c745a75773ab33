package tabinspect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchRange(t *testing.T) DateRange {
	t.Helper()

	r, err := ParseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	return r
}

func TestParseDateRange(t *testing.T) {
	t.Parallel()

	t.Run("date only end covers the whole day", func(t *testing.T) {
		t.Parallel()

		r := marchRange(t)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC), r.End)
	})

	t.Run("explicit end time is kept", func(t *testing.T) {
		t.Parallel()

		r, err := ParseDateRange("2024-03-01T00:00:00", "2024-03-31T12:00:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC), r.End)
	})

	t.Run("single day", func(t *testing.T) {
		t.Parallel()

		r, err := ParseDateRange("2024-03-15", "2024-03-15")
		require.NoError(t, err)
		assert.True(t, r.Contains(time.Date(2024, time.March, 15, 18, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid start", func(t *testing.T) {
		t.Parallel()

		_, err := ParseDateRange("first of march", "2024-03-31")
		assert.ErrorIs(t, err, ErrDateParse)
	})

	t.Run("invalid end", func(t *testing.T) {
		t.Parallel()

		_, err := ParseDateRange("2024-03-01", "2024-13-01")
		assert.ErrorIs(t, err, ErrDateParse)
	})

	t.Run("end before start", func(t *testing.T) {
		t.Parallel()

		_, err := ParseDateRange("2024-03-31", "2024-03-01")
		assert.Error(t, err)
	})
}

func TestDateRangeContains(t *testing.T) {
	t.Parallel()

	r := marchRange(t)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "start bound", at: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "last second", at: time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC), want: true},
		{name: "inside", at: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC), want: true},
		{name: "before", at: time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), want: false},
		{name: "after", at: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Contains(tt.at))
		})
	}
}

func TestNormalizeDatetime(t *testing.T) {
	t.Parallel()

	t.Run("converts parsable values in place", func(t *testing.T) {
		t.Parallel()

		d := newBookingsFixture(t)
		parseErrs, err := NormalizeDatetime(d, "booking_datetime")
		require.NoError(t, err)

		col, _ := d.Column("booking_datetime")
		assert.Equal(t, ColumnTypeText, col.Type, "an unparsable value keeps the inferred type")

		v, _ := d.Value(0, "booking_datetime")
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), v)

		require.Len(t, parseErrs, 1)
		assert.Equal(t, &DateParseError{Column: "booking_datetime", Row: 4, Value: "not a date"}, parseErrs[0])
		v, _ = d.Value(4, "booking_datetime")
		assert.Equal(t, "not a date", v)
	})

	t.Run("fully parsable column becomes datetime", func(t *testing.T) {
		t.Parallel()

		d, err := NewDataset("rides",
			[]Column{{Name: "Date", Type: ColumnTypeText}},
			[]Record{{"2024-03-01"}, {nil}, {"2024-03-02 10:00:00"}})
		require.NoError(t, err)

		parseErrs, err := NormalizeDatetime(d, "Date")
		require.NoError(t, err)
		assert.Empty(t, parseErrs)

		col, _ := d.Column("Date")
		assert.Equal(t, ColumnTypeDatetime, col.Type)
		v, _ := d.Value(2, "Date")
		assert.Equal(t, time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC), v)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		d := newBookingsFixture(t)
		first, err := NormalizeDatetime(d, "booking_datetime")
		require.NoError(t, err)
		snapshot := d.Head(d.Len())

		second, err := NormalizeDatetime(d, "booking_datetime")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, d.Equal(snapshot))
	})

	t.Run("already typed column", func(t *testing.T) {
		t.Parallel()

		d := NewBookingGenerator(5, DefaultGeneratorSeed).Generate()
		before := d.Head(d.Len())

		parseErrs, err := NormalizeDatetime(d, ColumnBookingDatetime)
		require.NoError(t, err)
		assert.Empty(t, parseErrs)
		assert.True(t, d.Equal(before))
	})

	t.Run("numbers are reported", func(t *testing.T) {
		t.Parallel()

		d := newBookingsFixture(t)
		parseErrs, err := NormalizeDatetime(d, "Booking ID")
		require.NoError(t, err)
		assert.Len(t, parseErrs, 5)
		assert.Equal(t, "1", parseErrs[0].Value)

		col, _ := d.Column("Booking ID")
		assert.Equal(t, ColumnTypeInteger, col.Type)

		summary := Summarize(d, 0)
		require.Len(t, summary.Numeric, 2)
		assert.Equal(t, "Booking ID", summary.Numeric[0].Column)
		assert.Equal(t, 5, summary.Numeric[0].Count)
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeDatetime(newBookingsFixture(t), "Date")
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestFilterDateRange(t *testing.T) {
	t.Parallel()

	t.Run("closed interval with skipped rows", func(t *testing.T) {
		t.Parallel()

		d := newBookingsFixture(t)
		res := FilterDateRange(d, "booking_datetime", marchRange(t))

		assert.Empty(t, res.Missing)
		assert.Equal(t, []int64{1, 2, 3}, bookingIDs(t, res.Dataset))
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.ParseErrors, 1)
		assert.Equal(t, 4, res.ParseErrors[0].Row)
		assert.ErrorIs(t, res.Err(), ErrDateParse)
	})

	t.Run("repeated calls give the same result", func(t *testing.T) {
		t.Parallel()

		d := newBookingsFixture(t)
		first := FilterDateRange(d, "booking_datetime", marchRange(t))
		second := FilterDateRange(d, "booking_datetime", marchRange(t))

		assert.True(t, first.Dataset.Equal(second.Dataset))
		assert.Equal(t, first.Skipped, second.Skipped)
	})

	t.Run("nil values are not skipped", func(t *testing.T) {
		t.Parallel()

		d, err := newDatasetFromStrings("rides", []string{"id", "Date"}, [][]string{
			{"1", "2024-03-10"},
			{"2", ""},
			{"3", "2024-04-10"},
		})
		require.NoError(t, err)

		res := FilterDateRange(d, "Date", marchRange(t))
		assert.Equal(t, 1, res.Len())
		assert.Equal(t, 0, res.Skipped)
		assert.NoError(t, res.Err())
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		res := FilterDateRange(newBookingsFixture(t), "Date", marchRange(t))
		assert.Equal(t, 0, res.Len())
		assert.Equal(t, []string{"Date"}, res.MissingColumns())
		assert.Equal(t, 0, res.Skipped)
	})
}

func TestDatetimeBounds(t *testing.T) {
	t.Parallel()

	d := newBookingsFixture(t)

	_, _, ok, err := DatetimeBounds(d, "booking_datetime")
	require.NoError(t, err)
	assert.False(t, ok, "text column has no timestamps before normalization")

	_, err = NormalizeDatetime(d, "booking_datetime")
	require.NoError(t, err)

	earliest, latest, ok, err := DatetimeBounds(d, "booking_datetime")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), earliest)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), latest)

	_, _, _, err = DatetimeBounds(d, "Date")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
