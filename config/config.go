// Package config defines the server configuration and loads it with
// viper. Settings come from an optional YAML file, environment
// variables, and CLI flag overrides applied by the caller.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds all server configuration.
type Settings struct {
	Port         int
	DatabasePath string
	SeedDefaults bool
	Logging      LoggingConfig
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// Load reads the configuration at configPath. An empty path loads pure
// defaults; a missing file at a supplied path is an error.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("database_path", "projection.db")
	v.SetDefault("seed_defaults", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("projection")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	settings := &Settings{
		Port:         v.GetInt("port"),
		DatabasePath: v.GetString("database_path"),
		SeedDefaults: v.GetBool("seed_defaults"),
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}
	return settings, nil
}
