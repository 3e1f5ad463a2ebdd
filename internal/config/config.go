package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// StoreConfig represents metric store configuration
type StoreConfig struct {
	Retention        time.Duration `mapstructure:"retention"`         // Samples older than this are swept
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`    // How often the retention sweeper runs
	MaxSamples       int           `mapstructure:"max_samples"`       // Soft cap on held samples (0 = unlimited)
	SnapshotPath     string        `mapstructure:"snapshot_path"`     // Snappy-compressed snapshot file ("" disables)
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"` // How often snapshots are written
}

// QueueConfig represents the sample ingest bus configuration
type QueueConfig struct {
	Enabled  bool   `mapstructure:"enabled"`  // Consume samples from a message queue in addition to HTTP
	Type     string `mapstructure:"type"`     // Queue type: nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222)
	Subject  string `mapstructure:"subject"`  // Subject/topic carrying JSON-encoded samples
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "metrica")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "metrica-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: random)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// AnalyticsConfig represents defaults for the analysis engine
type AnalyticsConfig struct {
	AnomalySigma             float64 `mapstructure:"anomaly_sigma"`              // Z-score threshold for anomaly flagging
	CorrelationMinConfidence float64 `mapstructure:"correlation_min_confidence"` // Minimum |r| for reported correlations
	PatternMinConfidence     float64 `mapstructure:"pattern_min_confidence"`     // Minimum confidence for reported patterns
	MaxPatterns              int     `mapstructure:"max_patterns"`               // Cap on returned patterns (0 = unbounded)
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json or console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or a file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", c.Retention)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must not be negative, got %d", c.MaxSamples)
	}
	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	if c.AnomalySigma <= 0 {
		return fmt.Errorf("anomaly_sigma must be positive, got %v", c.AnomalySigma)
	}
	if c.CorrelationMinConfidence < 0 || c.CorrelationMinConfidence > 1 {
		return fmt.Errorf("correlation_min_confidence must be in [0,1], got %v", c.CorrelationMinConfidence)
	}
	if c.PatternMinConfidence < 0 || c.PatternMinConfidence > 1 {
		return fmt.Errorf("pattern_min_confidence must be in [0,1], got %v", c.PatternMinConfidence)
	}
	if c.MaxPatterns < 0 {
		return fmt.Errorf("max_patterns must not be negative, got %d", c.MaxPatterns)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Level)
	}
	switch c.Format {
	case "json", "console", "pretty", "":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Format)
	}
	return nil
}
