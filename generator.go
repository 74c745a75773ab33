package tabinspect

import (
	"math"
	"math/rand/v2"
	"time"
)

// SyntheticSource is the Dataset source of generated data.
const SyntheticSource = "synthetic"

// Defaults of the fallback booking generator
const (
	DefaultGeneratorRows = 50
	DefaultGeneratorSeed = 42
)

// Column names of the generated booking schema
const (
	ColumnBookingID       = "Booking ID"
	ColumnBookingDatetime = "booking_datetime"
	ColumnBookingStatus   = "Booking Status"
	ColumnVehicleType     = "Vehicle Type"
	ColumnPaymentMethod   = "Payment Method"
	ColumnBookingValue    = "Booking Value"
)

var (
	bookingStatuses = []string{"Completed", "Cancelled by Driver", "Cancelled by User", "In Progress"}
	vehicleTypes    = []string{"Auto", "Sedan", "SUV", "Bike"}
	paymentMethods  = []string{"Credit Card", "Debit Card", "PayPal", "Cash"}
)

// Generator produces a dataset when no input file is available.
type Generator interface {
	Generate() *Dataset
}

// BookingGenerator generates ride bookings in March 2024.
//
// The schema, in order, is Booking ID (1..Rows), booking_datetime,
// Booking Status, Vehicle Type, Payment Method and Booking Value (uniform in
// [100, 1000), two decimals). The same Rows and Seed always produce the same
// dataset.
type BookingGenerator struct {
	Rows int
	Seed uint64
}

// NewBookingGenerator creates a generator. rows <= 0 means DefaultGeneratorRows.
func NewBookingGenerator(rows int, seed uint64) *BookingGenerator {
	if rows <= 0 {
		rows = DefaultGeneratorRows
	}
	return &BookingGenerator{Rows: rows, Seed: seed}
}

// Generate implements Generator.
func (g *BookingGenerator) Generate() *Dataset {
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed))

	columns := []Column{
		{Name: ColumnBookingID, Type: ColumnTypeInteger},
		{Name: ColumnBookingDatetime, Type: ColumnTypeDatetime},
		{Name: ColumnBookingStatus, Type: ColumnTypeText},
		{Name: ColumnVehicleType, Type: ColumnTypeText},
		{Name: ColumnPaymentMethod, Type: ColumnTypeText},
		{Name: ColumnBookingValue, Type: ColumnTypeReal},
	}

	records := make([]Record, max(g.Rows, 0))
	for i := range records {
		bookedAt := time.Date(2024, time.March, 1+rng.IntN(31), rng.IntN(24), rng.IntN(60), 0, 0, time.UTC)
		value := math.Round((100+rng.Float64()*900)*100) / 100
		records[i] = Record{
			int64(i + 1),
			bookedAt,
			bookingStatuses[rng.IntN(len(bookingStatuses))],
			vehicleTypes[rng.IntN(len(vehicleTypes))],
			paymentMethods[rng.IntN(len(paymentMethods))],
			value,
		}
	}

	d := newDataset("synthetic_bookings", columns, records)
	d.source = SyntheticSource
	return d
}
