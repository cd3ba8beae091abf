package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AppConfig represents the complete application configuration
type AppConfig struct {
	Billing BillingConfig `toml:"billing"`
	Storage StorageConfig `toml:"storage"`
	Reports ReportsConfig `toml:"reports"`
	Caching CachingConfig `toml:"caching"`
}

// BillingConfig contains invoice and line item settings
type BillingConfig struct {
	// AllowNegativeAmounts permits negative quantities and unit prices
	// on line items, used for discount and credit rows.
	AllowNegativeAmounts bool `toml:"allow_negative_amounts"`
	DueDays              int  `toml:"due_days"`
}

// StorageConfig contains object storage bucket names
type StorageConfig struct {
	DocumentsBucket string `toml:"documents_bucket"`
	InvoicesBucket  string `toml:"invoices_bucket"`
	ReportsBucket   string `toml:"reports_bucket"`
}

// ReportsConfig contains report generation settings
type ReportsConfig struct {
	SchedulerIntervalMinutes int `toml:"scheduler_interval_minutes"`
	MaxRowsPerReport         int `toml:"max_rows_per_report"`
}

// CachingConfig contains cache TTL settings
type CachingConfig struct {
	PropertyTTLMinutes int `toml:"property_ttl_minutes"`
	BookingTTLMinutes  int `toml:"booking_ttl_minutes"`
}

// LoadAppConfig loads configuration from a TOML file
func LoadAppConfig(filename string) (*AppConfig, error) {
	config := defaultAppConfig()
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}

// defaultAppConfig returns the fallback configuration used when no
// config file is present.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Billing: BillingConfig{
			AllowNegativeAmounts: true,
			DueDays:              30,
		},
		Storage: StorageConfig{
			DocumentsBucket: "casaops-documents",
			InvoicesBucket:  "casaops-invoices",
			ReportsBucket:   "casaops-reports",
		},
		Reports: ReportsConfig{
			SchedulerIntervalMinutes: 60,
			MaxRowsPerReport:         10000,
		},
		Caching: CachingConfig{
			PropertyTTLMinutes: 10,
			BookingTTLMinutes:  5,
		},
	}
}

// DefaultAppConfig exposes the fallback configuration
func DefaultAppConfig() *AppConfig {
	return defaultAppConfig()
}
