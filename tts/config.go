package tts

import (
	"fmt"
	"time"
)

// SupportedFormats are the audio output formats accepted across
// engines. The format doubles as the cached file's extension.
var SupportedFormats = []string{"mp3", "ogg_vorbis", "pcm"}

// Config holds the full runtime configuration: cache behavior, engine
// selection, and per-engine settings.
type Config struct {
	// Cache settings
	CacheDir      string        // Cache folder ("" = default app cache dir)
	RetainDays    int           // Days an unused entry is kept (0 disables eviction)
	SweepInterval time.Duration // Minimum interval between eviction sweeps

	// Synthesis settings
	Engine string // Engine selection: "polly" or "mock"
	Voice  string // Default voice label
	Format string // Default audio output format

	Polly PollyConfig
	Mock  MockConfig
}

// PollyConfig holds configuration for the Amazon Polly engine.
type PollyConfig struct {
	Region            string        // AWS region
	AccessKeyID       string        // Static credentials ("" = default AWS chain)
	SecretAccessKey   string        //
	RequestsPerMinute int           // Rate limit for synthesis calls
	Timeout           time.Duration // Per-request timeout
}

// MockConfig holds configuration for the mock engine.
type MockConfig struct {
	GenerationDelay time.Duration // Simulated synthesis latency
	FailureRate     float64       // Fraction of calls that fail (0.0 to 1.0)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheDir:      "",
		RetainDays:    30,
		SweepInterval: 48 * time.Hour,
		Engine:        "polly",
		Voice:         "Joanna",
		Format:        "mp3",
		Polly:         DefaultPollyConfig(),
		Mock:          DefaultMockConfig(),
	}
}

// DefaultPollyConfig returns the default Polly engine configuration.
func DefaultPollyConfig() PollyConfig {
	return PollyConfig{
		Region:            "us-east-1",
		RequestsPerMinute: 50,
		Timeout:           30 * time.Second,
	}
}

// DefaultMockConfig returns the default mock engine configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		GenerationDelay: 0,
		FailureRate:     0,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Engine {
	case "polly", "mock":
	default:
		return fmt.Errorf("%w: %q (want polly or mock)", ErrUnknownEngine, c.Engine)
	}

	if c.RetainDays < 0 {
		return fmt.Errorf("%w: retain_days must be >= 0, got %d", ErrInvalidConfig, c.RetainDays)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep_interval must be positive, got %s", ErrInvalidConfig, c.SweepInterval)
	}
	if c.Voice == "" {
		return fmt.Errorf("%w: voice must be set", ErrMissingConfig)
	}
	if !formatSupported(c.Format) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnsupportedFormat, c.Format, SupportedFormats)
	}

	if c.Engine == "polly" {
		if c.Polly.Region == "" {
			return fmt.Errorf("%w: polly.region must be set", ErrMissingConfig)
		}
		if c.Polly.RequestsPerMinute < 1 || c.Polly.RequestsPerMinute > 300 {
			return fmt.Errorf("%w: polly.requests_per_minute must be 1-300, got %d",
				ErrInvalidConfig, c.Polly.RequestsPerMinute)
		}
		if c.Polly.Timeout <= 0 {
			return fmt.Errorf("%w: polly.timeout must be positive, got %s",
				ErrInvalidConfig, c.Polly.Timeout)
		}
	}

	if c.Mock.FailureRate < 0 || c.Mock.FailureRate > 1 {
		return fmt.Errorf("%w: mock.failure_rate must be 0.0-1.0, got %.2f",
			ErrInvalidConfig, c.Mock.FailureRate)
	}

	return nil
}

func formatSupported(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}
