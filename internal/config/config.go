// Package config loads tabinspect settings from defaults, an optional YAML
// file, TABINSPECT_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nao1215/tabinspect"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "TABINSPECT"

// Config is the full CLI configuration.
type Config struct {
	Candidates []string `mapstructure:"candidates"`

	Fallback struct {
		Enabled bool   `mapstructure:"enabled"`
		Rows    int    `mapstructure:"rows"`
		Seed    uint64 `mapstructure:"seed"`
	} `mapstructure:"fallback"`

	PreviewRows int `mapstructure:"preview_rows"`
	MaxRows     int `mapstructure:"max_rows"`

	Select          []string `mapstructure:"select"`
	AlternateSelect []string `mapstructure:"alternate_select"`

	Filters struct {
		Status struct {
			Column string `mapstructure:"column"`
			Value  string `mapstructure:"value"`
		} `mapstructure:"status"`

		Vehicle struct {
			Column      string  `mapstructure:"column"`
			Value       string  `mapstructure:"value"`
			ValueColumn string  `mapstructure:"value_column"`
			Operator    string  `mapstructure:"operator"`
			Threshold   float64 `mapstructure:"threshold"`
		} `mapstructure:"vehicle"`

		Dates struct {
			Columns []string `mapstructure:"columns"`
			Start   string   `mapstructure:"start"`
			End     string   `mapstructure:"end"`
		} `mapstructure:"dates"`
	} `mapstructure:"filters"`

	Queries []string `mapstructure:"queries"`
	Verbose bool     `mapstructure:"verbose"`
}

// setDefaults registers the default configuration, which reproduces the
// ride-booking report.
func setDefaults(v *viper.Viper) {
	v.SetDefault("candidates", []string{
		"uber_rides_bookings.csv",
		"datecer_uber_pides_bookings.csv",
		"data_uber_rides_bookings.csv",
		"uber_data.csv",
		"bookings.csv",
		"data.csv",
	})
	v.SetDefault("fallback.enabled", true)
	v.SetDefault("fallback.rows", tabinspect.DefaultGeneratorRows)
	v.SetDefault("fallback.seed", tabinspect.DefaultGeneratorSeed)
	v.SetDefault("preview_rows", tabinspect.DefaultPreviewRows)
	v.SetDefault("max_rows", 20)
	v.SetDefault("select", []string{
		tabinspect.ColumnBookingID,
		tabinspect.ColumnBookingDatetime,
		tabinspect.ColumnBookingStatus,
		tabinspect.ColumnVehicleType,
		tabinspect.ColumnPaymentMethod,
	})
	v.SetDefault("alternate_select", []string{
		tabinspect.ColumnBookingID,
		"Date",
		"Time",
		tabinspect.ColumnBookingStatus,
		tabinspect.ColumnVehicleType,
		tabinspect.ColumnPaymentMethod,
	})
	v.SetDefault("filters.status.column", tabinspect.ColumnBookingStatus)
	v.SetDefault("filters.status.value", "Cancelled by Driver")
	v.SetDefault("filters.vehicle.column", tabinspect.ColumnVehicleType)
	v.SetDefault("filters.vehicle.value", "Auto")
	v.SetDefault("filters.vehicle.value_column", tabinspect.ColumnBookingValue)
	v.SetDefault("filters.vehicle.operator", string(tabinspect.OpGreater))
	v.SetDefault("filters.vehicle.threshold", 500.0)
	v.SetDefault("filters.dates.columns", []string{tabinspect.ColumnBookingDatetime, "Date"})
	v.SetDefault("filters.dates.start", "2024-03-01")
	v.SetDefault("filters.dates.end", "2024-03-31")
	v.SetDefault("queries", []string{})
	v.SetDefault("verbose", false)
}

// NewFlagSet returns the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP("config", "c", "", "path to a YAML config file")
	flags.StringSlice("candidates", nil, "candidate input files, tried in order")
	flags.Bool("no-fallback", false, "fail instead of generating data when no input file exists")
	flags.Int("fallback-rows", tabinspect.DefaultGeneratorRows, "rows of generated data")
	flags.Uint64("seed", tabinspect.DefaultGeneratorSeed, "seed of generated data")
	flags.Int("preview", tabinspect.DefaultPreviewRows, "rows shown in previews")
	flags.StringArray("query", nil, "SQL query to run against the dataset (repeatable)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	return flags
}

// flagKeys maps flag names to configuration keys
var flagKeys = map[string]string{
	"candidates":    "candidates",
	"fallback-rows": "fallback.rows",
	"seed":          "fallback.seed",
	"preview":       "preview_rows",
	"verbose":       "verbose",
}

// Load builds the configuration. flags may be nil; when given it must come
// from NewFlagSet and be parsed already.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}

		path, err := flags.GetString("config")
		if err != nil {
			return nil, fmt.Errorf("read config flag: %w", err)
		}
		if path != "" {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if flags != nil {
		if noFallback, _ := flags.GetBool("no-fallback"); noFallback {
			cfg.Fallback.Enabled = false
		}
		// Bound through viper, queries would be split on commas
		if flags.Changed("query") {
			queries, err := flags.GetStringArray("query")
			if err != nil {
				return nil, fmt.Errorf("read query flag: %w", err)
			}
			cfg.Queries = queries
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be corrected later.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Candidates) == 0 && !c.Fallback.Enabled {
		errs = append(errs, errors.New("no candidate files and fallback disabled"))
	}
	if c.PreviewRows < 0 {
		errs = append(errs, fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows))
	}
	if _, err := tabinspect.ParseOperator(c.Filters.Vehicle.Operator); err != nil {
		errs = append(errs, err)
	}
	if _, err := tabinspect.ParseDateRange(c.Filters.Dates.Start, c.Filters.Dates.End); err != nil {
		errs = append(errs, fmt.Errorf("invalid date range: %w", err))
	}
	return errors.Join(errs...)
}
