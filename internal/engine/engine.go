// Package engine computes one correlation matrix per day from the
// preprocessed window statistics and publishes the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/dateindex"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/queue"
	"github.com/soltixdb/correlator/internal/window"
)

var (
	// ErrNoData is returned by LoadStatistics when a day has no statistics file
	ErrNoData = errors.New("no statistics for day")

	// ErrDayOutOfRange is returned for days outside the configured epoch
	ErrDayOutOfRange = errors.New("day outside epoch")
)

// Engine is the run context of one correlate invocation. It reuses a
// single matrix and statistics buffer across days, so ComputeDay and Run
// must not be called concurrently.
type Engine struct {
	cfg       *config.Config
	logger    *logging.Logger
	catalog   catalog.Catalog
	publisher queue.Publisher

	epoch   *dateindex.Epoch
	opts    codec.Options
	sizes   window.Sizes
	workers int
	runID   string

	correlator correlation.Correlator
	matrix     *matrix.Triangular
	stats      []window.Statistics
}

// DayResult summarizes one ComputeDay call
type DayResult struct {
	Day      int
	Date     string
	Series   int
	Cells    int
	Skipped  bool
	Reason   string
	Path     string
	Duration time.Duration
}

// New creates an engine. A nil catalog or publisher disables that step.
func New(cfg *config.Config, logger *logging.Logger, cat catalog.Catalog, pub queue.Publisher) (*Engine, error) {
	epoch, err := cfg.NewEpoch()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Global()
	}

	runID := uuid.New().String()
	return &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		catalog:   cat,
		publisher: pub,
		epoch:     epoch,
		opts:      cfg.RecordOptions(),
		sizes:     cfg.WindowSizes(),
		workers:   cfg.WorkerCount(),
		runID:     runID,
		matrix:    matrix.New(0),
	}, nil
}

// RunID identifies this engine's run in logs, manifests and events
func (e *Engine) RunID() string { return e.runID }

// Epoch returns the day index the engine resolves days with
func (e *Engine) Epoch() *dateindex.Epoch { return e.epoch }

// Run computes every day in [first, last] in order. Cancellation is
// checked between days; a day that has started runs to completion.
// Failed days are logged and reported together after the range is done.
func (e *Engine) Run(ctx context.Context, first, last int) ([]DayResult, error) {
	if !e.epoch.Valid(first) || !e.epoch.Valid(last) || first > last {
		return nil, fmt.Errorf("range [%d, %d] against %s: %w", first, last, e.epoch, ErrDayOutOfRange)
	}

	ctx = logging.WithLogger(logging.WithRunID(ctx, e.runID), e.logger)
	logging.InfoCtx(ctx, "Correlation run started",
		"first", e.epoch.ToString(first),
		"last", e.epoch.ToString(last),
		"workers", e.workers,
		"format", e.opts.Mode.String())

	results := make([]DayResult, 0, last-first+1)
	var errs []error
	for day := first; day <= last; day++ {
		if err := ctx.Err(); err != nil {
			logging.WarnCtx(ctx, "Correlation run cancelled", "next_day", day)
			return results, err
		}

		res, err := e.ComputeDay(ctx, day)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}

	computed, skipped := 0, 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		} else {
			computed++
		}
	}
	logging.InfoCtx(ctx, "Correlation run finished",
		"computed", computed,
		"skipped", skipped,
		"failed", len(errs))

	return results, errors.Join(errs...)
}

// LoadStatistics reads the statistics of every series on day into *dst
func LoadStatistics(cfg *config.Config, day int, dst *[]window.Statistics) error {
	path := cfg.StatisticsPath(day)
	err := codec.LoadFile(path, cfg.RecordOptions(), dst, window.Initializer(cfg.WindowSizes()))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("day %d: %w", day, ErrNoData)
	}
	return err
}
