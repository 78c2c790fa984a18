package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads the runtime configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	// Cache settings
	if viper.IsSet("cache.dir") {
		cfg.CacheDir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.retain_days") {
		cfg.RetainDays = viper.GetInt("cache.retain_days")
	}
	if viper.IsSet("cache.sweep_interval") {
		if d, err := time.ParseDuration(viper.GetString("cache.sweep_interval")); err == nil {
			cfg.SweepInterval = d
		}
	}

	// Synthesis settings
	if viper.IsSet("engine") {
		cfg.Engine = viper.GetString("engine")
	}
	if viper.IsSet("voice") {
		cfg.Voice = viper.GetString("voice")
	}
	if viper.IsSet("format") {
		cfg.Format = viper.GetString("format")
	}

	cfg.Polly = loadPollyConfig()
	cfg.Mock = loadMockConfig()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadPollyConfig loads Polly-specific configuration from Viper.
func loadPollyConfig() PollyConfig {
	cfg := DefaultPollyConfig()

	if viper.IsSet("polly.region") {
		cfg.Region = viper.GetString("polly.region")
	}
	if viper.IsSet("polly.access_key_id") {
		cfg.AccessKeyID = viper.GetString("polly.access_key_id")
	}
	if viper.IsSet("polly.secret_access_key") {
		cfg.SecretAccessKey = viper.GetString("polly.secret_access_key")
	}
	if viper.IsSet("polly.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("polly.requests_per_minute")
	}
	if viper.IsSet("polly.timeout") {
		if d, err := time.ParseDuration(viper.GetString("polly.timeout")); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// loadMockConfig loads mock-engine configuration from Viper.
func loadMockConfig() MockConfig {
	cfg := DefaultMockConfig()

	if viper.IsSet("mock.generation_delay") {
		if d, err := time.ParseDuration(viper.GetString("mock.generation_delay")); err == nil {
			cfg.GenerationDelay = d
		}
	}
	if viper.IsSet("mock.failure_rate") {
		cfg.FailureRate = viper.GetFloat64("mock.failure_rate")
	}

	return cfg
}

// SetDefaults sets default values in Viper for all configuration keys.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("cache.dir", defaults.CacheDir)
	viper.SetDefault("cache.retain_days", defaults.RetainDays)
	viper.SetDefault("cache.sweep_interval", defaults.SweepInterval.String())

	viper.SetDefault("engine", defaults.Engine)
	viper.SetDefault("voice", defaults.Voice)
	viper.SetDefault("format", defaults.Format)

	viper.SetDefault("polly.region", defaults.Polly.Region)
	viper.SetDefault("polly.requests_per_minute", defaults.Polly.RequestsPerMinute)
	viper.SetDefault("polly.timeout", defaults.Polly.Timeout.String())

	viper.SetDefault("mock.generation_delay", defaults.Mock.GenerationDelay.String())
	viper.SetDefault("mock.failure_rate", defaults.Mock.FailureRate)
}
