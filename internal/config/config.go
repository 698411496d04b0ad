// Package config loads service configuration from the environment and an optional
// YAML report profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Source names where periods and charge entries are read from.
type Source string

const (
	SourcePostgres Source = "postgres"
	SourceBackend  Source = "backend"
)

// Config holds runtime configuration.
type Config struct {
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	PeriodSource   Source        `envconfig:"PERIOD_SOURCE" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL"`
	BackendToken   string        `envconfig:"BACKEND_TOKEN"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	// BackendTimezone is the zone backend timestamps are bucketed into months with.
	BackendTimezone string         `envconfig:"BACKEND_TIMEZONE" default:"UTC"`
	BackendLocation *time.Location `ignored:"true"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	ChargeCacheTTL time.Duration `envconfig:"CHARGE_CACHE_TTL" default:"15m"`

	FetchConcurrency int `envconfig:"FETCH_CONCURRENCY" default:"8"`

	JWTSecret string `envconfig:"AUTH_JWT_SECRET"`

	ReportConfigPath string        `envconfig:"REPORT_CONFIG"`
	Report           ReportProfile `ignored:"true"`
}

// ReportProfile controls export presentation.
type ReportProfile struct {
	CurrencyFormat string  `yaml:"currency_format"`
	CurrencySymbol string  `yaml:"currency_symbol"`
	WarrantyFill   string  `yaml:"warranty_fill"`
	MinColumnWidth float64 `yaml:"min_column_width"`
	ColumnPadding  float64 `yaml:"column_padding"`
	PDFCurrency    string  `yaml:"pdf_currency"`
}

// DefaultReportProfile mirrors the layout downstream spreadsheet consumers expect.
func DefaultReportProfile() ReportProfile {
	return ReportProfile{
		CurrencyFormat: `"฿"#,##0.00`,
		CurrencySymbol: "฿",
		WarrantyFill:   "FFC000",
		MinColumnWidth: 12,
		ColumnPadding:  2,
		PDFCurrency:    "THB",
	}
}

// Load reads the environment, then merges the report profile file when REPORT_CONFIG is set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.Report = DefaultReportProfile()
	if cfg.ReportConfigPath != "" {
		profile, err := LoadReportProfile(cfg.ReportConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Report = profile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the source wiring.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	c.PeriodSource = Source(strings.ToLower(strings.TrimSpace(string(c.PeriodSource))))
	switch c.PeriodSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres source")
		}
	case SourceBackend:
		if c.BackendBaseURL == "" {
			return errors.New("config: BACKEND_BASE_URL is required for the backend source")
		}
		loc, err := time.LoadLocation(c.BackendTimezone)
		if err != nil {
			return fmt.Errorf("config: BACKEND_TIMEZONE: %w", err)
		}
		c.BackendLocation = loc
	default:
		return fmt.Errorf("config: unknown PERIOD_SOURCE %q", c.PeriodSource)
	}
	if c.JWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET is required")
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 1
	}
	return nil
}

// LoadReportProfile reads a YAML profile; blank fields keep their defaults.
func LoadReportProfile(path string) (ReportProfile, error) {
	profile := DefaultReportProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, err
	}
	var override ReportProfile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return profile, fmt.Errorf("config: parse report profile: %w", err)
	}
	return mergeProfile(profile, override), nil
}

func mergeProfile(base, override ReportProfile) ReportProfile {
	if override.CurrencyFormat != "" {
		base.CurrencyFormat = override.CurrencyFormat
	}
	if override.CurrencySymbol != "" {
		base.CurrencySymbol = override.CurrencySymbol
	}
	if override.WarrantyFill != "" {
		base.WarrantyFill = strings.TrimPrefix(override.WarrantyFill, "#")
	}
	if override.MinColumnWidth > 0 {
		base.MinColumnWidth = override.MinColumnWidth
	}
	if override.ColumnPadding > 0 {
		base.ColumnPadding = override.ColumnPadding
	}
	if override.PDFCurrency != "" {
		base.PDFCurrency = override.PDFCurrency
	}
	return base
}
