// Package config loads quotedeck settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string `yaml:"env" env:"QUOTEDECK_ENV" env-default:"prod"`
	Currency string `yaml:"currency" env:"QUOTEDECK_CURRENCY" env-default:"USD"`

	Settings `yaml:",inline"`

	Export Export `yaml:"export"`
}

// Settings is the organisation-wide data every rendered document may show.
// It is handed to the composer explicitly for each compose call.
type Settings struct {
	Company       Company       `yaml:"company"`
	Bank          BankDetails   `yaml:"bank"`
	Tax           TaxInfo       `yaml:"tax"`
	QuoteDefaults QuoteDefaults `yaml:"quote_defaults"`
}

type Company struct {
	Name    string `yaml:"name" env:"QUOTEDECK_COMPANY_NAME"`
	Address string `yaml:"address" env:"QUOTEDECK_COMPANY_ADDRESS"`
	City    string `yaml:"city"`
	Country string `yaml:"country"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email" env:"QUOTEDECK_COMPANY_EMAIL"`
	Website string `yaml:"website"`
	Logo    string `yaml:"logo"`
}

type BankDetails struct {
	BankName      string `yaml:"bank_name"`
	AccountName   string `yaml:"account_name"`
	AccountNumber string `yaml:"account_number"`
	SwiftCode     string `yaml:"swift_code"`
}

// IsZero reports whether no bank field is set.
func (b BankDetails) IsZero() bool {
	return b.BankName == "" && b.AccountName == "" && b.AccountNumber == "" && b.SwiftCode == ""
}

type TaxInfo struct {
	TaxNumber string `yaml:"tax_number"`
}

type QuoteDefaults struct {
	ValidityDays       int    `yaml:"validity_days" env-default:"30"`
	PaymentTerms       string `yaml:"payment_terms"`
	TermsAndConditions string `yaml:"terms_and_conditions"`
}

type Export struct {
	BatchWorkers int           `yaml:"batch_workers" env:"QUOTEDECK_BATCH_WORKERS" env-default:"4"`
	Timeout      time.Duration `yaml:"timeout" env:"QUOTEDECK_EXPORT_TIMEOUT" env-default:"30s"`
	OutputDir    string        `yaml:"output_dir" env:"QUOTEDECK_OUTPUT_DIR" env-default:"exports"`
}

// Load reads the config file at path when it exists, then applies environment
// overrides and defaults. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return &cfg, cfg.validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &cfg, cfg.validate()
}

// MustLoad is Load for program start-up; it exits on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read config: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Export.BatchWorkers < 1 {
		return fmt.Errorf("export.batch_workers must be at least 1, got %d", c.Export.BatchWorkers)
	}
	if c.QuoteDefaults.ValidityDays < 0 {
		return fmt.Errorf("quote_defaults.validity_days cannot be negative")
	}
	return nil
}
