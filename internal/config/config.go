// Package config provides configuration management for the backtesting engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ScoringConfig holds the news scoring weights and thresholds. It is passed
// into the scorer at construction time so independent runs can use
// independent configurations.
type ScoringConfig struct {
	BaseScore         float64 `mapstructure:"base_score"`
	TickerWeight      float64 `mapstructure:"ticker_weight"`
	CategoryWeight    float64 `mapstructure:"category_weight"`
	PositiveWeight    float64 `mapstructure:"positive_weight"`
	NegativeWeight    float64 `mapstructure:"negative_weight"`
	DecayFactor       float64 `mapstructure:"decay_factor"`
	ObsoleteAfterDays int     `mapstructure:"obsolete_after_days"`
}

// SimulationConfig holds the price path and trade cost parameters.
type SimulationConfig struct {
	DailyVolatility float64 `mapstructure:"daily_volatility"`
	MinPrice        float64 `mapstructure:"min_price"`
	BasePrice       float64 `mapstructure:"base_price"`
	CommissionRate  float64 `mapstructure:"commission_rate"`
	DefaultSymbol   string  `mapstructure:"default_symbol"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/news-backtester"
	}
	return filepath.Join(home, ".config", "news-backtester")
}

// DefaultScoring returns the default scoring weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		BaseScore:         1.0,
		TickerWeight:      2.0,
		CategoryWeight:    0.5,
		PositiveWeight:    1.0,
		NegativeWeight:    -1.0,
		DecayFactor:       0.95,
		ObsoleteAfterDays: 30,
	}
}

// DefaultSimulation returns the default simulation parameters.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		DailyVolatility: 0.02,
		MinPrice:        0.01,
		BasePrice:       100.0,
		CommissionRate:  0.001,
		DefaultSymbol:   "PORTFOLIO",
	}
}

// Default returns a fully populated default configuration.
func Default() *Config {
	return &Config{
		Scoring:    DefaultScoring(),
		Simulation: DefaultSimulation(),
		Storage: StorageConfig{
			DatabasePath: filepath.Join(DefaultConfigDir(), "backtester.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			FilePath:   filepath.Join(DefaultConfigDir(), "logs", "backtester.log"),
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
	}
}

// Load loads configuration from the specified directory, falling back to
// defaults when no config file exists. If configDir is empty, the default
// config directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scoring.base_score", cfg.Scoring.BaseScore)
	v.SetDefault("scoring.ticker_weight", cfg.Scoring.TickerWeight)
	v.SetDefault("scoring.category_weight", cfg.Scoring.CategoryWeight)
	v.SetDefault("scoring.positive_weight", cfg.Scoring.PositiveWeight)
	v.SetDefault("scoring.negative_weight", cfg.Scoring.NegativeWeight)
	v.SetDefault("scoring.decay_factor", cfg.Scoring.DecayFactor)
	v.SetDefault("scoring.obsolete_after_days", cfg.Scoring.ObsoleteAfterDays)

	v.SetDefault("simulation.daily_volatility", cfg.Simulation.DailyVolatility)
	v.SetDefault("simulation.min_price", cfg.Simulation.MinPrice)
	v.SetDefault("simulation.base_price", cfg.Simulation.BasePrice)
	v.SetDefault("simulation.commission_rate", cfg.Simulation.CommissionRate)
	v.SetDefault("simulation.default_symbol", cfg.Simulation.DefaultSymbol)

	v.SetDefault("storage.database_path", cfg.Storage.DatabasePath)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.file_path", cfg.Logging.FilePath)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", cfg.Logging.MaxAgeDays)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKTESTER_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("BACKTESTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BACKTESTER_COMMISSION_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.CommissionRate = rate
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scoring.DecayFactor <= 0 || c.Scoring.DecayFactor >= 1 {
		return fmt.Errorf("scoring.decay_factor must be in (0, 1), got %v", c.Scoring.DecayFactor)
	}
	if c.Scoring.ObsoleteAfterDays < 0 {
		return fmt.Errorf("scoring.obsolete_after_days must be non-negative")
	}
	if c.Simulation.DailyVolatility < 0 {
		return fmt.Errorf("simulation.daily_volatility must be non-negative")
	}
	if c.Simulation.MinPrice <= 0 {
		return fmt.Errorf("simulation.min_price must be positive")
	}
	if c.Simulation.BasePrice <= 0 {
		return fmt.Errorf("simulation.base_price must be positive")
	}
	if c.Simulation.CommissionRate < 0 || c.Simulation.CommissionRate > 1 {
		return fmt.Errorf("simulation.commission_rate must be between 0 and 1")
	}
	if c.Simulation.DefaultSymbol == "" {
		return fmt.Errorf("simulation.default_symbol must not be empty")
	}
	return nil
}
