package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/dateindex"
	"github.com/soltixdb/correlator/internal/window"
)

// Data directory layout:
//
//	<data_dir>/data/<signal>/<SYMBOL>.dat  per-symbol signal
//	<data_dir>/data/<background>.dat       market-wide background signal
//	<data_dir>/lists/symbols               master symbol list
//	<data_dir>/lists/<day>                 symbols present on a day, in row order
//	<data_dir>/means/<day>/<series>        per-symbol statistics for a day
//	<data_dir>/means/<day>/dates           covered date range note
//	<data_dir>/correlations/<day>          packed correlation matrix
//	<data_dir>/catalog/<day>.json          day manifest (file catalog)
const (
	signalsDir      = "data"
	listsDir        = "lists"
	meansDir        = "means"
	correlationsDir = "correlations"
	catalogDir      = "catalog"
)

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		filepath.Join(c.Storage.DataDir, signalsDir),
		filepath.Join(c.Storage.DataDir, listsDir),
		filepath.Join(c.Storage.DataDir, meansDir),
		filepath.Join(c.Storage.DataDir, correlationsDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// GetDataPath returns the full path for a data file
func (c *Config) GetDataPath(elem ...string) string {
	return filepath.Join(append([]string{c.Storage.DataDir}, elem...)...)
}

func (c *Config) SignalPath(signal, symbol string) string {
	return c.GetDataPath(signalsDir, signal, symbol+".dat")
}

func (c *Config) BackgroundPath(background string) string {
	return c.GetDataPath(signalsDir, background+".dat")
}

func (c *Config) MasterListPath() string {
	return c.GetDataPath(listsDir, "symbols")
}

func (c *Config) SymbolListPath(day int) string {
	return c.GetDataPath(listsDir, strconv.Itoa(day))
}

// StatisticsPath is the series the engine correlates
func (c *Config) StatisticsPath(day int) string {
	return c.SeriesPath(day, c.Storage.Series)
}

func (c *Config) SeriesPath(day int, series string) string {
	return c.GetDataPath(meansDir, strconv.Itoa(day), series)
}

func (c *Config) DatesNotePath(day int) string {
	return c.GetDataPath(meansDir, strconv.Itoa(day), "dates")
}

func (c *Config) MatrixPath(day int) string {
	return c.GetDataPath(correlationsDir, strconv.Itoa(day))
}

func (c *Config) CatalogDir() string {
	return c.GetDataPath(catalogDir)
}

// RecordOptions returns the codec options selected by storage.format and
// storage.compression
func (c *Config) RecordOptions() codec.Options {
	opts, err := codec.ParseOptions(c.Storage.Format, c.Storage.Compression)
	if err != nil {
		// Validate rejects bad values; fall back to the defaults for
		// hand-built configs.
		return codec.Options{}
	}
	return opts
}

// WindowSizes returns the configured window lengths
func (c *Config) WindowSizes() window.Sizes {
	return window.Sizes{Short: c.Windows.Short, Long: c.Windows.Long}
}

// NewEpoch builds the day index for the configured date range
func (c *Config) NewEpoch() (*dateindex.Epoch, error) {
	ep, err := dateindex.NewEpoch(c.Epoch.Start, c.Epoch.End)
	if err != nil {
		return nil, fmt.Errorf("epoch config: %w", err)
	}
	return ep, nil
}

// WorkerCount resolves engine.workers, 0 meaning one per CPU
func (c *Config) WorkerCount() int {
	if c.Engine.Workers > 0 {
		return c.Engine.Workers
	}
	return runtime.NumCPU()
}

// GetServerAddress returns the HTTP server listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}
