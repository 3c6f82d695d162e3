package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"preflight/internal/balance"
)

// ConfigPathEnv names the environment variable holding an explicit config file path
const ConfigPathEnv = "PREFLIGHT_CONFIG_PATH"

// Config holds all configuration for the CLI and the watch daemon
type Config struct {
	DBPath   string
	Output   string // Report format: table or json
	Log      LogConfig
	Watch    WatchConfig
	Profiles []ProfileConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// WatchConfig holds settings of the fleet sweep daemon
type WatchConfig struct {
	Interval    int // seconds between sweeps
	Workers     int // concurrent airworthiness checks
	MetricsAddr string
}

// ProfileConfig overrides the balance profile of one aircraft model.
// Model is matched against the model ID first, then the model name.
type ProfileConfig struct {
	Model      string      `mapstructure:"model"`
	ArmEmpty   float64     `mapstructure:"arm_empty"`
	ArmFuel    float64     `mapstructure:"arm_fuel"`
	ArmPayload float64     `mapstructure:"arm_payload"`
	CGMin      float64     `mapstructure:"cg_min"`
	CGMax      float64     `mapstructure:"cg_max"`
	Envelope   [][]float64 `mapstructure:"envelope"` // [cg, weight] vertices
}

// Profile converts the override into a balance profile
func (p ProfileConfig) Profile() balance.Profile {
	profile := balance.Profile{
		Name:       p.Model,
		ArmEmpty:   p.ArmEmpty,
		ArmFuel:    p.ArmFuel,
		ArmPayload: p.ArmPayload,
		CGMin:      p.CGMin,
		CGMax:      p.CGMax,
	}
	for _, v := range p.Envelope {
		profile.Envelope = append(profile.Envelope, balance.Point{CG: v[0], Weight: v[1]})
	}
	return profile
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("db_path", "preflight.db")
	v.SetDefault("output", "table")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("watch.interval", 300)
	v.SetDefault("watch.workers", 4)
	v.SetDefault("watch.metrics_addr", ":9109")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/preflight")
	v.AddConfigPath(".")

	if configPath := os.Getenv(ConfigPathEnv); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Defaults and env vars only
	}

	v.SetEnvPrefix("PREFLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		DBPath: v.GetString("db_path"),
		Output: v.GetString("output"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Watch: WatchConfig{
			Interval:    v.GetInt("watch.interval"),
			Workers:     v.GetInt("watch.workers"),
			MetricsAddr: v.GetString("watch.metrics_addr"),
		},
	}

	if err := v.UnmarshalKey("profiles", &cfg.Profiles); err != nil {
		return nil, fmt.Errorf("error decoding profiles: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate lowercases the enumerated settings and checks every value. Call it
// again after overriding fields.
func (c *Config) Validate() error {
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	if err := validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid output format: %s (must be table or json)", cfg.Output)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[cfg.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than 0")
	}

	if cfg.Watch.Workers <= 0 {
		return fmt.Errorf("watch.workers must be greater than 0")
	}

	for i, p := range cfg.Profiles {
		if err := validateProfile(p); err != nil {
			return fmt.Errorf("profiles[%d]: %w", i, err)
		}
	}

	return nil
}

func validateProfile(p ProfileConfig) error {
	if strings.TrimSpace(p.Model) == "" {
		return fmt.Errorf("model is required")
	}

	if len(p.Envelope) == 0 {
		if p.CGMin >= p.CGMax {
			return fmt.Errorf("cg_min %g must be less than cg_max %g", p.CGMin, p.CGMax)
		}
		return nil
	}

	if len(p.Envelope) < 3 {
		return fmt.Errorf("envelope needs at least 3 vertices, got %d", len(p.Envelope))
	}
	for i, v := range p.Envelope {
		if len(v) != 2 {
			return fmt.Errorf("envelope vertex %d must be [cg, weight], got %v", i, v)
		}
	}
	return nil
}
