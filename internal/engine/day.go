package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/metrics"
	"github.com/soltixdb/correlator/internal/queue"
)

// ComputeDay correlates every pair of series on day, writes the matrix,
// registers it in the catalog and publishes a DayCompleted event.
//
// A day without statistics or with fewer than two series is skipped with
// a nil error before any worker starts.
func (e *Engine) ComputeDay(ctx context.Context, day int) (DayResult, error) {
	start := time.Now()
	res := DayResult{Day: day, Date: e.epoch.ToString(day)}
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, e.runID)
	}
	log := e.logger.WithContext(ctx).With("day", day, "date", res.Date)

	if !e.epoch.Valid(day) {
		metrics.DaysTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return res, fmt.Errorf("day %d: %w", day, ErrDayOutOfRange)
	}

	if err := LoadStatistics(e.cfg, day, &e.stats); err != nil {
		if errors.Is(err, ErrNoData) {
			return e.skip(log, res, "no statistics"), nil
		}
		metrics.DaysTotal.WithLabelValues(metrics.ResultFailed).Inc()
		log.Error("Failed to load statistics", "error", err)
		return res, err
	}

	res.Series = len(e.stats)
	if res.Series < 2 {
		return e.skip(log, res, "fewer than two series"), nil
	}

	e.matrix.SizeFor(res.Series)
	res.Cells = e.matrix.Len()
	log.Debug("Correlating day", "series", res.Series, "cells", res.Cells)

	done := e.correlate(log)
	metrics.CellsTotal.Add(float64(done))

	res.Path = e.cfg.MatrixPath(day)
	if err := e.matrix.Save(res.Path, e.opts); err != nil {
		metrics.DaysTotal.WithLabelValues(metrics.ResultFailed).Inc()
		log.Error("Failed to save matrix", "error", err, "path", res.Path)
		return res, fmt.Errorf("day %d: %w", day, err)
	}
	res.Duration = time.Since(start)

	if err := e.register(ctx, res); err != nil {
		metrics.DaysTotal.WithLabelValues(metrics.ResultFailed).Inc()
		log.Error("Failed to register day", "error", err)
		return res, fmt.Errorf("day %d: %w", day, err)
	}
	e.publish(ctx, log, res)

	metrics.DaysTotal.WithLabelValues(metrics.ResultComputed).Inc()
	metrics.DayDuration.Observe(res.Duration.Seconds())
	metrics.SeriesPerDay.Set(float64(res.Series))
	log.Info("Day correlated",
		"series", res.Series,
		"cells", res.Cells,
		"duration", res.Duration)

	return res, nil
}

func (e *Engine) skip(log *logging.Logger, res DayResult, reason string) DayResult {
	res.Skipped = true
	res.Reason = reason
	metrics.DaysTotal.WithLabelValues(metrics.ResultSkipped).Inc()
	log.Info("Day skipped", "reason", reason, "series", res.Series)
	return res
}

// correlate runs the worker pool over the current matrix and returns the
// number of cells computed. Each worker claims one cell at a time from
// the shared cursor.
func (e *Engine) correlate(log *logging.Logger) int64 {
	var done atomic.Int64

	stop := make(chan struct{})
	var reporter sync.WaitGroup
	if interval := e.cfg.Engine.ProgressInterval; interval > 0 {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			e.reportProgress(log, interval, &done, stop)
		}()
	}

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				el, ok := e.matrix.Next()
				if !ok {
					return
				}
				e.matrix.Visit(el, func(c matrix.Cell, p *correlation.Pair) {
					e.correlator.Compute(p, &e.stats[c.Row], &e.stats[c.Col])
				})
				done.Add(1)
				runtime.Gosched()
			}
		}()
	}

	wg.Wait()
	close(stop)
	reporter.Wait()

	return done.Load()
}

func (e *Engine) reportProgress(log *logging.Logger, interval time.Duration, done *atomic.Int64, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	total := e.matrix.Len()
	for {
		select {
		case <-ticker.C:
			n := done.Load()
			log.Info("Correlation progress",
				"cells", n,
				"total", total,
				"percent", fmt.Sprintf("%.1f", 100*float64(n)/float64(total)))
		case <-stop:
			return
		}
	}
}

func (e *Engine) register(ctx context.Context, res DayResult) error {
	if e.catalog == nil {
		return nil
	}

	return e.catalog.Put(ctx, &catalog.Manifest{
		Day:         res.Day,
		Date:        res.Date,
		Series:      res.Series,
		Cells:       res.Cells,
		Short:       e.sizes.Short,
		Long:        e.sizes.Long,
		Path:        res.Path,
		SymbolsPath: e.cfg.SymbolListPath(res.Day),
		Format:      e.opts.Mode.String(),
		Compression: e.opts.Compression.String(),
		RunID:       e.runID,
		ComputedAt:  time.Now().UTC(),
		DurationMs:  res.Duration.Milliseconds(),
	})
}

// publish failures are counted and logged; the matrix is already durable
func (e *Engine) publish(ctx context.Context, log *logging.Logger, res DayResult) {
	if e.publisher == nil {
		return
	}

	err := queue.PublishDayCompleted(ctx, e.publisher, queue.DayCompleted{
		RunID:       e.runID,
		Day:         res.Day,
		Date:        res.Date,
		Series:      res.Series,
		Cells:       res.Cells,
		Path:        res.Path,
		Format:      e.opts.Mode.String(),
		Compression: e.opts.Compression.String(),
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		metrics.PublishErrors.Inc()
		log.Warn("Failed to publish day event", "error", err)
	}
}
