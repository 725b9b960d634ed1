// Package config loads application configuration for finmodel.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"    json:"server"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"    json:"output"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"  json:"-"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark" yaml:"benchmark" json:"benchmark"`
	Engine    EngineConfig    `mapstructure:"engine"    yaml:"engine"    json:"engine"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// OutputConfig controls where and how result tables are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"     yaml:"dir"     json:"dir"`
	Archive bool     `mapstructure:"archive" yaml:"archive" json:"archive"`
	Formats []string `mapstructure:"formats" yaml:"formats" json:"formats"` // "csv", "postgres", "html"
}

// DatabaseConfig holds the Postgres connection string.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// BenchmarkConfig controls the market-data baseline.
type BenchmarkConfig struct {
	Enabled       bool `mapstructure:"enabled"        yaml:"enabled"        json:"enabled"`
	LookbackYears int  `mapstructure:"lookback_years" yaml:"lookback_years" json:"lookback_years"`
}

// EngineConfig holds model engine settings.
type EngineConfig struct {
	Strict      bool    `mapstructure:"strict"      yaml:"strict"      json:"strict"`
	Tolerance   float64 `mapstructure:"tolerance"   yaml:"tolerance"   json:"tolerance"` // relative
	Concurrency int     `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "console" or "json"
}

// HasFormat reports whether the named output format is enabled.
func (o OutputConfig) HasFormat(name string) bool {
	for _, f := range o.Formats {
		if strings.EqualFold(strings.TrimSpace(f), name) {
			return true
		}
	}
	return false
}

// Load reads the configuration from file and environment variables.
// A .env file in the working directory is loaded first if present.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.finmodel/config.yaml
//  3. /etc/finmodel/config.yaml
//
// Environment variables override config file values.
// Format: FINMODEL_<SECTION>_<KEY>, e.g., FINMODEL_OUTPUT_DIR
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finmodel"))
	v.AddConfigPath("/etc/finmodel")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FINMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.archive", false)
	v.SetDefault("output.formats", []string{"csv"})

	v.SetDefault("database.url", "")

	v.SetDefault("benchmark.enabled", true)
	v.SetDefault("benchmark.lookback_years", 5)

	v.SetDefault("engine.strict", true)
	v.SetDefault("engine.tolerance", 1e-6)
	v.SetDefault("engine.concurrency", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.Tolerance <= 0 {
		return fmt.Errorf("engine.tolerance must be positive, got %g", c.Engine.Tolerance)
	}
	if c.Engine.Concurrency < 1 {
		return fmt.Errorf("engine.concurrency must be at least 1, got %d", c.Engine.Concurrency)
	}
	if c.Benchmark.LookbackYears < 1 {
		return fmt.Errorf("benchmark.lookback_years must be at least 1, got %d", c.Benchmark.LookbackYears)
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "csv", "html":
		case "postgres":
			if c.Database.URL == "" {
				return fmt.Errorf("output format postgres requires database.url")
			}
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
