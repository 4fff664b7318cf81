// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable the process reads. Engine code never
// touches configuration; everything it needs arrives as explicit parameters.
const EnvPrefix = "swisscoin"

// Environment variable names, exported so tests and deploy tooling spell
// them once.
const (
	EnvAddr              = "SWISSCOIN_ADDR"
	EnvAppEnv            = "SWISSCOIN_APP_ENV"
	EnvLogLevel          = "SWISSCOIN_LOG_LEVEL"
	EnvDBPath            = "SWISSCOIN_DB_PATH"
	EnvRecomputeDebounce = "SWISSCOIN_RECOMPUTE_DEBOUNCE"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Recompute RecomputeConfig
	Metrics   MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Addr            string        `envconfig:"SWISSCOIN_ADDR" default:":8080"`
	Env             string        `envconfig:"SWISSCOIN_APP_ENV" default:"dev"`
	LogLevel        string        `envconfig:"SWISSCOIN_LOG_LEVEL" default:"info"`
	ReadTimeout     time.Duration `envconfig:"SWISSCOIN_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SWISSCOIN_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SWISSCOIN_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Path is the SQLite database file; parent directories are created on
	// open. Empty selects the in-memory store, for ephemeral runs.
	Path string `envconfig:"SWISSCOIN_DB_PATH" default:"data/ledger.db"`
}

type RecomputeConfig struct {
	// Debounce is how long the balance worker waits after the last
	// mutation before recomputing home summaries.
	Debounce time.Duration `envconfig:"SWISSCOIN_RECOMPUTE_DEBOUNCE" default:"300ms"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"SWISSCOIN_METRICS_ENABLED" default:"true"`
}
