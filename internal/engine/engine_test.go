package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/queue"
	"github.com/soltixdb/correlator/internal/sentinel"
	"github.com/soltixdb/correlator/internal/window"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Windows = config.WindowsConfig{Short: 4, Long: 6}
	cfg.Engine.Workers = 4
	cfg.Engine.ProgressInterval = 0
	cfg.Catalog.Type = "memory"
	return cfg
}

// seriesStatistics feeds values through fresh accumulators and returns the
// final day's record
func seriesStatistics(t *testing.T, sz window.Sizes, values []float32) window.Statistics {
	t.Helper()
	acc, err := window.NewAccumulators(sz)
	require.NoError(t, err)

	st := window.NewStatistics(sz)
	for _, x := range values {
		acc.Update(sentinel.NewReal(x), &st)
	}
	return st
}

// writeDay stores one statistics record per series for day
func writeDay(t *testing.T, cfg *config.Config, day int, series ...[]float32) []window.Statistics {
	t.Helper()
	stats := make([]window.Statistics, len(series))
	for i, values := range series {
		stats[i] = seriesStatistics(t, cfg.WindowSizes(), values)
	}
	require.NoError(t, codec.SaveFile(cfg.StatisticsPath(day), cfg.RecordOptions(), stats))
	return stats
}

var testSeries = [][]float32{
	{1, 2, 3, 4, 5, 6},
	{2, 4, 6, 8, 10, 12},
	{6, 5, 4, 3, 2, 1},
	{1, 3, 2, 5, 4, 6},
	{3, 1, 4, 1, 5, 9},
}

func newEngine(t *testing.T, cfg *config.Config, cat catalog.Catalog, pub queue.Publisher) *Engine {
	t.Helper()
	e, err := New(cfg, logging.NewNop(), cat, pub)
	require.NoError(t, err)
	return e
}

func TestComputeDay(t *testing.T) {
	cfg := testConfig(t)
	stats := writeDay(t, cfg, 10, testSeries...)

	cat := catalog.NewMemoryCatalog()
	e := newEngine(t, cfg, cat, nil)

	res, err := e.ComputeDay(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 5, res.Series)
	assert.Equal(t, 10, res.Cells)
	assert.Equal(t, cfg.MatrixPath(10), res.Path)

	m := matrix.New(0)
	require.NoError(t, m.Load(res.Path, cfg.RecordOptions()))
	require.Equal(t, 10, m.Len())

	var c correlation.Correlator
	m.Each(func(el matrix.Element, got correlation.Pair) bool {
		var want correlation.Pair
		c.Compute(&want, &stats[el.Row], &stats[el.Col])
		assert.Equal(t, want.Short.IsValid(), got.Short.IsValid(), "cell %v", el.Cell)
		if want.Short.IsValid() {
			assert.InDelta(t, want.Short.Value(), got.Short.Value(), 1e-6, "cell %v", el.Cell)
			assert.InDelta(t, want.Long.Value(), got.Long.Value(), 1e-6, "cell %v", el.Cell)
		}
		return true
	})

	p, err := m.At(matrix.Cell{Row: 1, Col: 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Long.Value(), 1e-5)
	p, err = m.At(matrix.Cell{Row: 2, Col: 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, p.Long.Value(), 1e-5)

	man, err := cat.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 5, man.Series)
	assert.Equal(t, "binary", man.Format)
	assert.Equal(t, "none", man.Compression)
	assert.Equal(t, e.RunID(), man.RunID)
	assert.Equal(t, cfg.SymbolListPath(10), man.SymbolsPath)
}

func TestComputeDay_WorkerCountDoesNotChangeResult(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 3, testSeries...)

	cfg.Engine.Workers = 1
	single := newEngine(t, cfg, nil, nil)
	_, err := single.ComputeDay(context.Background(), 3)
	require.NoError(t, err)
	one := matrix.New(0)
	require.NoError(t, one.Load(cfg.MatrixPath(3), cfg.RecordOptions()))

	cfg.Engine.Workers = 16
	many := newEngine(t, cfg, nil, nil)
	_, err = many.ComputeDay(context.Background(), 3)
	require.NoError(t, err)
	sixteen := matrix.New(0)
	require.NoError(t, sixteen.Load(cfg.MatrixPath(3), cfg.RecordOptions()))

	for i := 0; i < one.Len(); i++ {
		a, _ := one.AtIndex(i)
		b, _ := sixteen.AtIndex(i)
		assert.Equal(t, a.Short.Value(), b.Short.Value(), "index %d", i)
		assert.Equal(t, a.Long.Value(), b.Long.Value(), "index %d", i)
	}
}

func TestComputeDay_Skipped(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 2, testSeries[0])

	cat := catalog.NewMemoryCatalog()
	e := newEngine(t, cfg, cat, nil)

	res, err := e.ComputeDay(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "no statistics", res.Reason)

	res, err = e.ComputeDay(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, res.Series)
	assert.False(t, codec.Exists(cfg.MatrixPath(2)))

	list, _ := cat.List(context.Background())
	assert.Empty(t, list)
}

func TestComputeDay_OutOfRange(t *testing.T) {
	cfg := testConfig(t)
	e := newEngine(t, cfg, nil, nil)

	_, err := e.ComputeDay(context.Background(), -1)
	assert.True(t, errors.Is(err, ErrDayOutOfRange))

	_, err = e.ComputeDay(context.Background(), e.Epoch().Last()+1)
	assert.True(t, errors.Is(err, ErrDayOutOfRange))
}

func TestComputeDay_PublishesEvent(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 7, testSeries[:3]...)

	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	events := make(chan queue.DayCompleted, 1)
	require.NoError(t, queue.SubscribeDayCompleted(q, func(ev queue.DayCompleted) error {
		events <- ev
		return nil
	}))

	e := newEngine(t, cfg, nil, q)
	_, err = e.ComputeDay(context.Background(), 7)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, 7, ev.Day)
		assert.Equal(t, 3, ev.Series)
		assert.Equal(t, 3, ev.Cells)
		assert.Equal(t, e.RunID(), ev.RunID)
		assert.Equal(t, cfg.MatrixPath(7), ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for day event")
	}
}

func TestComputeDay_TextSnappy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Format = "text"
	cfg.Storage.Compression = "snappy"
	writeDay(t, cfg, 5, testSeries...)

	e := newEngine(t, cfg, nil, nil)
	res, err := e.ComputeDay(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, res.Skipped)

	m := matrix.New(0)
	require.NoError(t, m.Load(res.Path, cfg.RecordOptions()))
	assert.Equal(t, 10, m.Len())

	p, _ := m.At(matrix.Cell{Row: 1, Col: 0})
	assert.InDelta(t, 1.0, p.Short.Value(), 1e-5)
}

func TestComputeDay_ProgressReporter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.ProgressInterval = time.Millisecond
	writeDay(t, cfg, 4, testSeries...)

	e := newEngine(t, cfg, nil, nil)
	res, err := e.ComputeDay(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Cells)
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 1, testSeries...)
	writeDay(t, cfg, 3, testSeries[:2]...)

	cat := catalog.NewMemoryCatalog()
	e := newEngine(t, cfg, cat, nil)

	results, err := e.Run(context.Background(), 0, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Skipped)
	assert.False(t, results[1].Skipped)
	assert.True(t, results[2].Skipped)
	assert.False(t, results[3].Skipped)
	assert.Equal(t, 1, results[3].Cells)

	list, _ := cat.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Day)
	assert.Equal(t, 3, list[1].Day)
}

func TestRun_InvalidRange(t *testing.T) {
	e := newEngine(t, testConfig(t), nil, nil)

	_, err := e.Run(context.Background(), 5, 2)
	assert.True(t, errors.Is(err, ErrDayOutOfRange))

	_, err = e.Run(context.Background(), 0, e.Epoch().Last()+1)
	assert.True(t, errors.Is(err, ErrDayOutOfRange))
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 0, testSeries...)
	e := newEngine(t, cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.Run(ctx, 0, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRun_CorruptDayDoesNotStopRun(t *testing.T) {
	cfg := testConfig(t)
	writeDay(t, cfg, 2, testSeries...)

	// a truncated binary file fails to decode
	require.NoError(t, codec.SaveFile(cfg.StatisticsPath(1), cfg.RecordOptions(), []correlation.Pair{{}}))

	e := newEngine(t, cfg, nil, nil)
	results, err := e.Run(context.Background(), 1, 2)
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Day)
	assert.False(t, results[0].Skipped)
}

func TestLoadStatistics(t *testing.T) {
	cfg := testConfig(t)
	want := writeDay(t, cfg, 9, testSeries[:2]...)

	var got []window.Statistics
	require.NoError(t, LoadStatistics(cfg, 9, &got))
	require.Len(t, got, 2)
	assert.Equal(t, want[0].Value.Value(), got[0].Value.Value())
	assert.Equal(t, want[1].Long.RMS.Value(), got[1].Long.RMS.Value())

	err := LoadStatistics(cfg, 8, &got)
	assert.ErrorIs(t, err, ErrNoData)
}
