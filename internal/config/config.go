package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
)

// #region config
// Config is the full analyzer configuration.
type Config struct {
	Analysis analysis.Config `yaml:"analysis" json:"analysis"`
	Log      LogConfig       `yaml:"log" json:"log"`
	Store    StoreConfig     `yaml:"store" json:"store"`
	Server   ServerConfig    `yaml:"server" json:"server"`
	Workers  int             `yaml:"workers" json:"workers"` // recordings analyzed in parallel
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// StoreConfig locates the results database. An empty path disables persistence.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ServerConfig holds listen addresses for tcasctl serve.
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr" json:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Analysis: analysis.DefaultConfig(),
		Log:      LogConfig{Level: "info"},
		Store:    StoreConfig{Path: ""},
		Server:   ServerConfig{GRPCAddr: ":50061", MetricsAddr: ":9464"},
		Workers:  4,
	}
}

// #endregion config

// #region load

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// #endregion load

// #region env

// ApplyEnv loads .env if present and applies TCAS_* overrides.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	var errs []error
	c.Log.Level = getEnv("TCAS_LOG_LEVEL", c.Log.Level)
	c.Log.Development = getEnvBool("TCAS_LOG_DEVELOPMENT", c.Log.Development, &errs)
	c.Store.Path = getEnv("TCAS_DB_PATH", c.Store.Path)
	c.Server.GRPCAddr = getEnv("TCAS_GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = getEnv("TCAS_METRICS_ADDR", c.Server.MetricsAddr)
	c.Workers = getEnvInt("TCAS_WORKERS", c.Workers, &errs)

	// Model constants
	a := &c.Analysis
	a.Segment.MaxGap = getEnvFloat("TCAS_MAX_GAP_S", a.Segment.MaxGap, &errs)
	a.Response.Lag = getEnvFloat("TCAS_RESPONSE_LAG_S", a.Response.Lag, &errs)
	a.Response.Acceleration = getEnvFloat("TCAS_ACCELERATION_FTPS2", a.Response.Acceleration, &errs)
	a.Exceedance.ToleranceFPM = getEnvFloat("TCAS_TOLERANCE_FPM", a.Exceedance.ToleranceFPM, &errs)
	a.FilterWindow = getEnvFloat("TCAS_FILTER_WINDOW_S", a.FilterWindow, &errs)

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("parse %s: %w", key, err))
		return defaultValue
	}
	return f
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("parse %s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("parse %s: %w", key, err))
		return defaultValue
	}
	return b
}

// #endregion env

// #region validate

// Validate rejects configurations the components cannot run with.
func (c Config) Validate() error {
	a := c.Analysis
	switch {
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case a.Segment.MaxGap < 0:
		return fmt.Errorf("segment.max_gap_s must not be negative")
	case a.Segment.MinDuration >= a.Segment.MaxDuration:
		return fmt.Errorf("segment.min_duration_s must be below max_duration_s")
	case a.Response.Lag < 0 || a.Response.ReversalLag < 0:
		return fmt.Errorf("response lags must not be negative")
	case a.Response.Acceleration <= 0 || a.Response.ReversalAcceleration <= 0:
		return fmt.Errorf("response accelerations must be positive")
	case a.Exceedance.ToleranceFPM < 0:
		return fmt.Errorf("exceedance.tolerance_fpm must not be negative")
	case a.FilterWindow <= 0:
		return fmt.Errorf("filter_window_s must be positive")
	}
	return nil
}

// #endregion validate
