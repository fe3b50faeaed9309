// This file defines the configuration structure for the application.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Tracker struct {
		BaseURL        string `mapstructure:"base_url"`
		UserAgent      string `mapstructure:"user_agent"`
		TempDir        string `mapstructure:"temp_dir"`
		OutputDir      string `mapstructure:"output_dir"`
		ClauseFile     string `mapstructure:"clause_file"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		ArchiveTimeout int    `mapstructure:"archive_timeout_seconds"`
	} `mapstructure:"tracker"`
	Subscriptions struct {
		CheckIntervalHours int `mapstructure:"check_interval_hours"`
	} `mapstructure:"subscriptions"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// Environment variable overrides, e.g. SPECTRACK_DATABASE_PATH
	// overrides the `database.path` key.
	viper.SetEnvPrefix("SPECTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./spectrack.db")
	viper.SetDefault("tracker.base_url", "https://www.3gpp.org/ftp/tsg_ran/TSG_RAN")
	viper.SetDefault("tracker.user_agent", "spectrack-bot/1.0")
	viper.SetDefault("tracker.temp_dir", "./temp_files")
	viper.SetDefault("tracker.output_dir", ".")
	viper.SetDefault("tracker.clause_file", "")
	viper.SetDefault("tracker.timeout_seconds", 30)
	viper.SetDefault("tracker.archive_timeout_seconds", 60)
	viper.SetDefault("subscriptions.check_interval_hours", 6)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
