// Package config provides configuration for the lip-sync tooling.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pwninator/lipsync/detect"
)

// Config holds tool configuration: which detection strategy to run and
// how detection and logging are tuned.
type Config struct {
	Mode      string        `mapstructure:"mode"`
	Detection detect.Config `mapstructure:"detection"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:      "librosa",
		Detection: detect.DefaultConfig(),
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration from an optional YAML file and LIPSYNC_*
// environment variables, layered over the defaults. An empty path means
// env and defaults only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LIPSYNC")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if _, err := detect.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML. Keys are written individually
// so they round-trip through Load's mapstructure tags.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.Set("mode", cfg.Mode)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.console", cfg.Logging.Console)
	v.Set("detection.frame_length_ms", cfg.Detection.FrameLengthMs)
	v.Set("detection.hop_length_ms", cfg.Detection.HopLengthMs)
	v.Set("detection.quiet_percentile", cfg.Detection.QuietPercentile)
	v.Set("detection.loud_percentile", cfg.Detection.LoudPercentile)
	v.Set("detection.open_ratio", cfg.Detection.OpenRatio)
	v.Set("detection.support_ratio", cfg.Detection.SupportRatio)
	v.Set("detection.silence_floor", cfg.Detection.SilenceFloor)
	v.Set("detection.min_run_ms", cfg.Detection.MinRunMs)
	v.Set("detection.max_snap_ms", cfg.Detection.MaxSnapMs)
	v.Set("detection.relabel_confidence", cfg.Detection.RelabelConfidence)

	if ext := filepath.Ext(path); ext == "" {
		path += ".yaml"
	}
	return v.WriteConfigAs(path)
}
