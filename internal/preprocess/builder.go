// Package preprocess turns per-symbol signals into the per-day window
// statistics the correlation engine reads.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/dateindex"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/metrics"
	"github.com/soltixdb/correlator/internal/sentinel"
	"github.com/soltixdb/correlator/internal/window"
)

// ErrNoSymbols is returned by Load when the master list is missing or empty
var ErrNoSymbols = errors.New("no symbols to preprocess")

// Builder carries every symbol's window state from day to day. Days must
// be processed in increasing order.
type Builder struct {
	cfg     *config.Config
	logger  *logging.Logger
	epoch   *dateindex.Epoch
	opts    codec.Options
	sizes   window.Sizes
	workers int

	symbols []string
	series  []*series

	// most recent processed days, at most sizes.Long
	dates []int
}

// series is the window state of one configured statistics series. The
// first series of a Builder decides which symbols traded on a day.
type series struct {
	name  string
	raw   []*Signal // per symbol
	bkg   *Signal   // nil without a background
	accs  []*window.Accumulators
	stats []window.Statistics
}

// sample returns the value fed for symbol i on day
func (s *series) sample(i, day int, traded bool) window.Value {
	v := s.raw[i].At(day)
	if !traded {
		v = sentinel.NewReal[float32](0)
	}
	if s.bkg != nil {
		v = v.SubWithSentinel(s.bkg.At(day))
	}
	return v
}

// Summary counts the outcome of Run
type Summary struct {
	Written int
	Skipped int
}

// NewBuilder creates a builder for cfg
func NewBuilder(cfg *config.Config, logger *logging.Logger) (*Builder, error) {
	epoch, err := cfg.NewEpoch()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Global()
	}

	return &Builder{
		cfg:     cfg,
		logger:  logger.With("component", "preprocess"),
		epoch:   epoch,
		opts:    cfg.RecordOptions(),
		sizes:   cfg.WindowSizes(),
		workers: cfg.WorkerCount(),
	}, nil
}

// Symbols returns the loaded master list
func (b *Builder) Symbols() []string { return b.symbols }

// Load reads the master symbol list, every symbol's signals and the
// background signals. Signals are loaded concurrently; a missing signal
// or background file gives an empty signal.
func (b *Builder) Load(ctx context.Context) error {
	symbols, err := ReadSymbols(b.cfg.MasterListPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("%s: %w", b.cfg.MasterListPath(), ErrNoSymbols)
	}

	signals := make(map[string][]*Signal)
	for _, name := range b.cfg.Preprocess.Signals() {
		signals[name] = make([]*Signal, len(symbols))
	}
	backgrounds := make(map[string]*Signal)
	for _, sc := range b.cfg.Preprocess.Series {
		if sc.Background == "" {
			continue
		}
		if _, ok := backgrounds[sc.Background]; ok {
			continue
		}
		bkg, err := b.loadSignal(b.cfg.BackgroundPath(sc.Background), "background", sc.Background)
		if err != nil {
			return err
		}
		backgrounds[sc.Background] = bkg
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for name, raw := range signals {
		name, raw := name, raw
		for i, symbol := range symbols {
			i, symbol := i, symbol
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				s, err := b.loadSignal(b.cfg.SignalPath(name, symbol), "symbol", symbol)
				if err != nil {
					return err
				}
				raw[i] = s
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return b.setSignals(symbols, signals, backgrounds)
}

func (b *Builder) loadSignal(path, kind, name string) (*Signal, error) {
	s, err := LoadSignal(path, b.opts, b.epoch.Interval())
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("Missing signal", kind, name, "path", path)
		return NewSignal(b.epoch.Interval()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", kind, name, err)
	}
	return s, nil
}

// setSignals builds the configured series over symbols and resets all
// window state. signals maps a signal name to one signal per symbol.
func (b *Builder) setSignals(symbols []string, signals map[string][]*Signal, backgrounds map[string]*Signal) error {
	var all []*series
	for _, sc := range b.cfg.Preprocess.Series {
		raw := signals[sc.Signal]
		if len(raw) != len(symbols) {
			return fmt.Errorf("series %s: %d %s signals for %d symbols", sc.Name, len(raw), sc.Signal, len(symbols))
		}

		s := &series{
			name:  sc.Name,
			raw:   raw,
			accs:  make([]*window.Accumulators, len(symbols)),
			stats: make([]window.Statistics, len(symbols)),
		}
		if sc.Background != "" {
			s.bkg = backgrounds[sc.Background]
			if s.bkg == nil {
				s.bkg = NewSignal(b.epoch.Interval())
			}
		}
		for i := range symbols {
			acc, err := window.NewAccumulators(b.sizes)
			if err != nil {
				return err
			}
			s.accs[i] = acc
			s.stats[i] = window.NewStatistics(b.sizes)
		}
		all = append(all, s)
	}
	if len(all) == 0 {
		return fmt.Errorf("no series configured")
	}

	b.symbols = symbols
	b.series = all
	b.dates = b.dates[:0]

	b.logger.Info("Signals loaded", "symbols", len(symbols), "series", len(all))
	return nil
}

// Run processes every day of the epoch. Cancellation is checked between
// days.
func (b *Builder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for day := b.epoch.First(); day <= b.epoch.Last(); day++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		written, err := b.ProcessDay(ctx, day)
		if err != nil {
			metrics.PreprocessDaysTotal.WithLabelValues(metrics.ResultFailed).Inc()
			return sum, fmt.Errorf("day %d: %w", day, err)
		}
		if written {
			sum.Written++
			metrics.PreprocessDaysTotal.WithLabelValues(metrics.ResultComputed).Inc()
		} else {
			sum.Skipped++
			metrics.PreprocessDaysTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		}
	}

	b.logger.Info("Preprocess finished", "written", sum.Written, "skipped", sum.Skipped)
	return sum, nil
}

// ProcessDay advances every symbol's windows by day and writes the day's
// files. It reports false, touching nothing, when fewer than two symbols
// have data on day. A symbol without data on a day others trade is fed
// zero, so its windows keep advancing with the calendar.
func (b *Builder) ProcessDay(ctx context.Context, day int) (bool, error) {
	if b.countValid(day) < 2 {
		return false, nil
	}

	b.dates = append(b.dates, day)
	if len(b.dates) > b.sizes.Long {
		b.dates = b.dates[1:]
	}

	if err := b.update(ctx, day); err != nil {
		return false, err
	}
	return b.write(day)
}

func (b *Builder) countValid(day int) int {
	n := 0
	for _, s := range b.series[0].raw {
		if s.At(day).IsValid() {
			n++
			if n > 1 {
				break
			}
		}
	}
	return n
}

// update feeds day's samples to the accumulators of every series.
// Workers claim symbols one at a time from a shared cursor.
func (b *Builder) update(ctx context.Context, day int) error {
	var cursor atomic.Int64
	primary := b.series[0]

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < b.workers; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(b.symbols) {
					return nil
				}
				traded := primary.raw[i].At(day).IsValid()
				for _, s := range b.series {
					s.accs[i].Update(s.sample(i, day, traded), &s.stats[i])
				}
				runtime.Gosched()
			}
		})
	}
	return g.Wait()
}

// write stores the symbols whose first-series value and long mean are
// valid, in master list order, with every series' statistics and the
// covered date range.
func (b *Builder) write(day int) (bool, error) {
	primary := b.series[0]
	var symbols []string
	var rows []int
	for i := range b.symbols {
		st := &primary.stats[i]
		if st.Value.IsValid() && st.Long.Mean.IsValid() {
			symbols = append(symbols, b.symbols[i])
			rows = append(rows, i)
		}
	}
	if len(symbols) < 2 {
		return false, nil
	}

	if err := WriteSymbols(b.cfg.SymbolListPath(day), symbols); err != nil {
		return false, err
	}
	stats := make([]window.Statistics, len(rows))
	for _, s := range b.series {
		for j, i := range rows {
			stats[j] = s.stats[i]
		}
		if err := codec.SaveFile(b.cfg.SeriesPath(day, s.name), b.opts, stats); err != nil {
			return false, err
		}
	}

	note := fmt.Sprintf("Directory represents data from %s to %s\n",
		b.epoch.ToString(b.dates[0]), b.epoch.ToString(b.dates[len(b.dates)-1]))
	if err := os.WriteFile(b.cfg.DatesNotePath(day), []byte(note), 0644); err != nil {
		return false, fmt.Errorf("failed to write dates note: %w", err)
	}

	b.logger.Debug("Statistics written", "day", day, "symbols", len(symbols), "series", len(b.series))
	return true, nil
}
