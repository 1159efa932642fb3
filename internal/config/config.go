package config

import (
	"fmt"
	"time"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/dateindex"
)

// Config represents the complete application configuration
type Config struct {
	Epoch   EpochConfig   `mapstructure:"epoch"`
	Windows WindowsConfig `mapstructure:"windows"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EpochConfig is the inclusive date range covered by the data set.
// Day numbers count from Start.
type EpochConfig struct {
	Start string `mapstructure:"start"` // ISO date, e.g. 2011-03-16
	End   string `mapstructure:"end"`
}

// WindowsConfig holds the two rolling window lengths
type WindowsConfig struct {
	Short int `mapstructure:"short"` // default: 10
	Long  int `mapstructure:"long"`  // default: 50
}

// StorageConfig represents storage configuration
type StorageConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	Format      string `mapstructure:"format"`      // binary, text
	Compression string `mapstructure:"compression"` // none, snappy
	Series      string `mapstructure:"series"`      // statistics series the engine correlates
}

// PreprocessConfig lists the statistics series written for every day.
// The first series' signal decides whether a symbol traded on a day.
type PreprocessConfig struct {
	Series []SeriesConfig `mapstructure:"series"`
}

// SeriesConfig derives one statistics series from a per-symbol signal,
// optionally minus a market-wide background signal.
type SeriesConfig struct {
	Name       string `mapstructure:"name"`       // file name inside means/<day>/
	Signal     string `mapstructure:"signal"`     // data/<signal>/<SYMBOL>.dat
	Background string `mapstructure:"background"` // data/<background>.dat, optional
}

// EngineConfig controls the correlation worker pool
type EngineConfig struct {
	Workers          int           `mapstructure:"workers"`           // 0 = one per CPU
	ProgressInterval time.Duration `mapstructure:"progress_interval"` // 0 disables progress logging
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: none (default), nats, redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "correlator")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "correlator-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// CatalogConfig selects where day manifests are recorded
type CatalogConfig struct {
	Type        string        `mapstructure:"type"` // file (default), etcd, memory
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Prefix      string        `mapstructure:"prefix"` // etcd key prefix
}

// ServerConfig represents the query API server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Epoch.Validate(); err != nil {
		return fmt.Errorf("epoch config: %w", err)
	}

	if err := c.Windows.Validate(); err != nil {
		return fmt.Errorf("windows config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Preprocess.Validate(); err != nil {
		return fmt.Errorf("preprocess config: %w", err)
	}

	if !c.Preprocess.Has(c.Storage.Series) {
		return fmt.Errorf("storage config: series %q is not produced by preprocess", c.Storage.Series)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates epoch configuration
func (c *EpochConfig) Validate() error {
	_, err := dateindex.NewEpoch(c.Start, c.End)
	return err
}

// Validate validates window lengths
func (c *WindowsConfig) Validate() error {
	if c.Short < 2 {
		return fmt.Errorf("windows.short must be at least 2")
	}

	if c.Long < c.Short {
		return fmt.Errorf("windows.long cannot be shorter than windows.short")
	}

	return nil
}

// Validate validates storage configuration
func (c *StorageConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Series == "" {
		return fmt.Errorf("series is required")
	}

	if _, err := codec.ParseOptions(c.Format, c.Compression); err != nil {
		return err
	}

	return nil
}

// Validate validates the series list
func (c *PreprocessConfig) Validate() error {
	if len(c.Series) == 0 {
		return fmt.Errorf("at least one series is required")
	}

	seen := make(map[string]bool, len(c.Series))
	for i, s := range c.Series {
		if s.Name == "" || s.Signal == "" {
			return fmt.Errorf("series %d: name and signal are required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate series: %s", s.Name)
		}
		seen[s.Name] = true
	}

	return nil
}

// Has reports whether a series called name is configured
func (c *PreprocessConfig) Has(name string) bool {
	for _, s := range c.Series {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Signals returns the distinct signal names in series order
func (c *PreprocessConfig) Signals() []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range c.Series {
		if !seen[s.Signal] {
			seen[s.Signal] = true
			names = append(names, s.Signal)
		}
	}
	return names
}

// Validate validates engine configuration
func (c *EngineConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("engine.workers cannot be negative")
	}

	if c.ProgressInterval < 0 {
		return fmt.Errorf("engine.progress_interval cannot be negative")
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "none", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 && c.URL == "" {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue type: %s", c.Type)
	}

	return nil
}

// Validate validates catalog configuration
func (c *CatalogConfig) Validate() error {
	switch c.Type {
	case "", "file", "memory":
	case "etcd":
		if len(c.Endpoints) == 0 {
			return fmt.Errorf("catalog.endpoints is required for etcd")
		}

		if c.DialTimeout <= 0 {
			return fmt.Errorf("catalog.dial_timeout must be positive")
		}
	default:
		return fmt.Errorf("unsupported catalog type: %s", c.Type)
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

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
