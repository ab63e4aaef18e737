// Package config loads insightsctl settings from a config file and
// environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config holds the controller connection settings for the CLI.
type Config struct {
	ControllerURL      string        `mapstructure:"controller_url"`
	APIKey             string        `mapstructure:"api_key"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	LogLevel           string        `mapstructure:"log_level"`
}

// Load reads configuration from configPath (when it exists) and from
// UNIFI_INSIGHTS_* environment variables. Environment variables win over
// file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv values survive Unmarshal.
	v.SetDefault("controller_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("insecure_skip_verify", true)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit_per_minute", 0)
	v.SetDefault("max_attempts", 0)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("UNIFI_INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "reading config file %s", configPath)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.ControllerURL == "" {
		return errors.New("controller_url is required (config file or UNIFI_INSIGHTS_CONTROLLER_URL)")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required (config file or UNIFI_INSIGHTS_API_KEY)")
	}

	return nil
}
