package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Path to the sqlite database file
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/propval.db"`
	}

	// Valuation configuration
	Valuation struct {
		// State assumed when an address carries no recognizable state code
		DefaultState string `env:"VALUATION_DEFAULT_STATE" envDefault:"qld"`

		// Maximum number of comparables selected for statistics
		ComparableLimit int `env:"VALUATION_COMPARABLE_LIMIT" envDefault:"10"`

		// Width of the value band around the estimate, as a fraction
		ValueBand float64 `env:"VALUATION_VALUE_BAND" envDefault:"0.10"`
	}

	// Listings source configuration
	Listings struct {
		// Base URL of the sold-listings site
		BaseURL string `env:"LISTINGS_BASE_URL" envDefault:"https://www.domain.com.au"`

		// Optional proxy indirection to avoid upstream IP blocking.
		// Presence only changes diagnostics, never control flow.
		ProxyURL string `env:"LISTINGS_PROXY_URL"`

		// Freshness window for cached sold-listings results, in hours
		CacheTTLHours int `env:"LISTINGS_CACHE_TTL_HOURS" envDefault:"168"`

		// Prices at or below this threshold are treated as junk data
		MinPrice int `env:"LISTINGS_MIN_PRICE" envDefault:"100000"`
	}

	// History configuration
	History struct {
		// Number of valuation history entries retained per property
		MaxEntries int `env:"HISTORY_MAX_ENTRIES" envDefault:"20"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
