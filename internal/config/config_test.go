package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/compression"
)

func TestConfigValidation(t *testing.T) {
	mutate := func(fn func(c *Config)) *Config {
		c := DefaultConfig()
		fn(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "invalid http port",
			config:  mutate(func(c *Config) { c.Server.HTTPPort = 0 }),
			wantErr: true,
		},
		{
			name:    "unparsable epoch",
			config:  mutate(func(c *Config) { c.Epoch.Start = "yesterday" }),
			wantErr: true,
		},
		{
			name:    "reversed epoch",
			config:  mutate(func(c *Config) { c.Epoch.Start, c.Epoch.End = c.Epoch.End, c.Epoch.Start }),
			wantErr: true,
		},
		{
			name:    "short window too small",
			config:  mutate(func(c *Config) { c.Windows.Short = 1 }),
			wantErr: true,
		},
		{
			name:    "long window shorter than short",
			config:  mutate(func(c *Config) { c.Windows.Long = 5 }),
			wantErr: true,
		},
		{
			name:    "unknown format",
			config:  mutate(func(c *Config) { c.Storage.Format = "csv" }),
			wantErr: true,
		},
		{
			name:    "unknown compression",
			config:  mutate(func(c *Config) { c.Storage.Compression = "lz4" }),
			wantErr: true,
		},
		{
			name:    "missing series",
			config:  mutate(func(c *Config) { c.Storage.Series = "" }),
			wantErr: true,
		},
		{
			name:    "series not produced by preprocess",
			config:  mutate(func(c *Config) { c.Storage.Series = "close" }),
			wantErr: true,
		},
		{
			name:    "no preprocess series",
			config:  mutate(func(c *Config) { c.Preprocess.Series = nil }),
			wantErr: true,
		},
		{
			name: "duplicate preprocess series",
			config: mutate(func(c *Config) {
				c.Preprocess.Series = append(c.Preprocess.Series, SeriesConfig{Name: "deltaclose", Signal: "close"})
			}),
			wantErr: true,
		},
		{
			name: "series without signal",
			config: mutate(func(c *Config) {
				c.Preprocess.Series = append(c.Preprocess.Series, SeriesConfig{Name: "close"})
			}),
			wantErr: true,
		},
		{
			name:    "negative workers",
			config:  mutate(func(c *Config) { c.Engine.Workers = -1 }),
			wantErr: true,
		},
		{
			name:    "nats without url",
			config:  mutate(func(c *Config) { c.Queue.Type = "nats"; c.Queue.URL = "" }),
			wantErr: true,
		},
		{
			name:    "unknown queue",
			config:  mutate(func(c *Config) { c.Queue.Type = "rabbitmq" }),
			wantErr: true,
		},
		{
			name:    "etcd catalog without endpoints",
			config:  mutate(func(c *Config) { c.Catalog.Type = "etcd"; c.Catalog.Endpoints = nil }),
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			config:  mutate(func(c *Config) { c.Logging.Level = "verbose" }),
			wantErr: true,
		},
		{
			name:    "invalid logging format",
			config:  mutate(func(c *Config) { c.Logging.Format = "xml" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
windows:
  short: 10
  long: 50
storage:
  data_dir: /var/lib/correlator
  format: text
  compression: snappy
engine:
  workers: 3
  progress_interval: 2s
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("CORRELATOR_SERVER_HTTP_PORT", "6001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.DataDir != "/var/lib/correlator" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Engine.Workers != 3 || cfg.WorkerCount() != 3 {
		t.Errorf("Workers = %d", cfg.Engine.Workers)
	}
	if cfg.Engine.ProgressInterval != 2*time.Second {
		t.Errorf("ProgressInterval = %v", cfg.Engine.ProgressInterval)
	}
	if cfg.Server.HTTPPort != 6001 {
		t.Errorf("HTTPPort = %d, want env override 6001", cfg.Server.HTTPPort)
	}
	if cfg.Epoch.Start != "2011-03-16" {
		t.Errorf("Epoch.Start = %q, want default", cfg.Epoch.Start)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected debug console config to be development")
	}

	opts := cfg.RecordOptions()
	if opts.Mode != codec.Text || opts.Compression != compression.Snappy {
		t.Errorf("RecordOptions = %+v", opts)
	}
}

func TestLoad_PreprocessSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  series: closenobkg
preprocess:
  series:
    - name: close
      signal: close
    - name: closenobkg
      signal: close
      background: bkg_close
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Preprocess.Series) != 2 {
		t.Fatalf("series = %+v", cfg.Preprocess.Series)
	}
	if got := cfg.Preprocess.Series[1]; got.Background != "bkg_close" || got.Signal != "close" {
		t.Errorf("series[1] = %+v", got)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("windows:\n  short: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error")
	}
}

func TestLayoutPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data"

	tests := map[string]string{
		cfg.SignalPath("deltaclose", "AAPL"):  "/data/data/deltaclose/AAPL.dat",
		cfg.BackgroundPath("bkg_delta_close"): "/data/data/bkg_delta_close.dat",
		cfg.MasterListPath():                  "/data/lists/symbols",
		cfg.SymbolListPath(12):                "/data/lists/12",
		cfg.StatisticsPath(12):                "/data/means/12/deltaadjclosenobkg",
		cfg.SeriesPath(12, "deltaclose"):      "/data/means/12/deltaclose",
		cfg.DatesNotePath(12):                 "/data/means/12/dates",
		cfg.MatrixPath(12):                    "/data/correlations/12",
		cfg.CatalogDir():                      "/data/catalog",
		cfg.GetServerAddress():                "0.0.0.0:5580",
	}

	for got, want := range tests {
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestPreprocessSignals(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.Preprocess.Signals()
	want := []string{"deltaclose", "deltaadjclose"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Signals = %v, want %v", got, want)
	}
	if !cfg.Preprocess.Has("deltaadjclosenobkg") || cfg.Preprocess.Has("close") {
		t.Error("Has reports wrong membership")
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "root")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, sub := range []string{"data", "lists", "means", "correlations"} {
		if st, err := os.Stat(filepath.Join(cfg.Storage.DataDir, sub)); err != nil || !st.IsDir() {
			t.Errorf("Expected directory %s: %v", sub, err)
		}
	}
}

func TestEpochAndWindows(t *testing.T) {
	cfg := DefaultConfig()

	ep, err := cfg.NewEpoch()
	if err != nil {
		t.Fatalf("NewEpoch failed: %v", err)
	}
	if ep.Interval() != 367 {
		t.Errorf("Interval = %d, want 367", ep.Interval())
	}

	sz := cfg.WindowSizes()
	if sz.Short != 10 || sz.Long != 50 {
		t.Errorf("WindowSizes = %+v", sz)
	}
}
