package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")            // Current directory
		v.AddConfigPath("./configs")    // Project configs directory
		v.AddConfigPath("/etc/metrica") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("METRICA")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 7600)

	// Store defaults
	v.SetDefault("store.retention", "720h") // 30 days
	v.SetDefault("store.sweep_interval", "1m")
	v.SetDefault("store.max_samples", 0)
	v.SetDefault("store.snapshot_path", "")
	v.SetDefault("store.snapshot_interval", "10m")

	// Queue defaults
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.type", "nats")
	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.subject", "metrica.samples")

	// Analytics defaults
	v.SetDefault("analytics.anomaly_sigma", 2.0)
	v.SetDefault("analytics.correlation_min_confidence", 0.5)
	v.SetDefault("analytics.pattern_min_confidence", 0.7)
	v.SetDefault("analytics.max_patterns", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 7600,
		},
		Store: StoreConfig{
			Retention:        720 * time.Hour,
			SweepInterval:    time.Minute,
			SnapshotInterval: 10 * time.Minute,
		},
		Queue: QueueConfig{
			Type:    "nats",
			URL:     "nats://localhost:4222",
			Subject: "metrica.samples",
		},
		Analytics: AnalyticsConfig{
			AnomalySigma:             2.0,
			CorrelationMinConfidence: 0.5,
			PatternMinConfidence:     0.7,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
