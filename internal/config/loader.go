package config

import (
	"fmt"
	"strings"
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
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/correlator") // System-wide config
	}

	setDefaults(v)

	// Enable environment variable overrides, e.g. CORRELATOR_STORAGE_DATA_DIR
	v.SetEnvPrefix("CORRELATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
	d := DefaultConfig()

	v.SetDefault("epoch.start", d.Epoch.Start)
	v.SetDefault("epoch.end", d.Epoch.End)

	v.SetDefault("windows.short", d.Windows.Short)
	v.SetDefault("windows.long", d.Windows.Long)

	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.format", d.Storage.Format)
	v.SetDefault("storage.compression", d.Storage.Compression)
	v.SetDefault("storage.series", d.Storage.Series)

	v.SetDefault("preprocess.series", d.Preprocess.Series)

	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.progress_interval", d.Engine.ProgressInterval)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)

	v.SetDefault("catalog.type", d.Catalog.Type)
	v.SetDefault("catalog.endpoints", d.Catalog.Endpoints)
	v.SetDefault("catalog.dial_timeout", d.Catalog.DialTimeout)
	v.SetDefault("catalog.prefix", d.Catalog.Prefix)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
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

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Epoch: EpochConfig{
			Start: "2011-03-16",
			End:   "2012-03-16",
		},
		Windows: WindowsConfig{
			Short: 10,
			Long:  50,
		},
		Storage: StorageConfig{
			DataDir:     "./data",
			Format:      "binary",
			Compression: "none",
			Series:      "deltaadjclosenobkg",
		},
		Preprocess: PreprocessConfig{
			Series: []SeriesConfig{
				{Name: "deltaclose", Signal: "deltaclose"},
				{Name: "deltaadjclose", Signal: "deltaadjclose"},
				{Name: "deltaclosenobkg", Signal: "deltaclose", Background: "bkg_delta_close"},
				{Name: "deltaadjclosenobkg", Signal: "deltaadjclose", Background: "bkg_delta_adjclose"},
			},
		},
		Engine: EngineConfig{
			ProgressInterval: 10 * time.Second,
		},
		Queue: QueueConfig{
			Type:        "none",
			URL:         "nats://localhost:4222",
			RedisStream: "correlator",
			RedisGroup:  "correlator-group",
		},
		Catalog: CatalogConfig{
			Type:        "file",
			Endpoints:   []string{"http://localhost:2379"},
			DialTimeout: 5 * time.Second,
			Prefix:      "/correlator/days/",
		},
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5580,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
