package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/models"
	"github.com/soltixdb/correlator/internal/preprocess"
	"github.com/soltixdb/correlator/internal/queue"
	"github.com/soltixdb/correlator/internal/sentinel"
	"github.com/soltixdb/correlator/internal/window"
)

// Correlation windows accepted by Significant
const (
	WindowShort = "short"
	WindowLong  = "long"
)

// defaultMaxCached bounds the number of fully loaded matrices kept
const defaultMaxCached = 4

// loadedDay is a fully decoded day kept for scans
type loadedDay struct {
	manifest *catalog.Manifest
	matrix   *matrix.Triangular
}

// DayService answers queries about computed days. Single cells of binary
// uncompressed matrices are read straight from disk; everything else
// loads the whole matrix into a small cache.
type DayService struct {
	logger  *logging.Logger
	catalog catalog.Catalog

	mu        sync.Mutex
	loaded    map[int]*loadedDay
	order     []int
	symbols   map[int][]string
	maxCached int
}

// NewDayService creates a new day service
func NewDayService(logger *logging.Logger, cat catalog.Catalog) *DayService {
	return &DayService{
		logger:    logger,
		catalog:   cat,
		loaded:    make(map[int]*loadedDay),
		symbols:   make(map[int][]string),
		maxCached: defaultMaxCached,
	}
}

// Invalidate drops cached data for day
func (s *DayService) Invalidate(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.loaded, day)
	delete(s.symbols, day)
	for i, d := range s.order {
		if d == day {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// HandleDayCompleted invalidates the recomputed day
func (s *DayService) HandleDayCompleted(ev queue.DayCompleted) error {
	s.Invalidate(ev.Day)
	s.logger.Info("Day refreshed", "day", ev.Day, "run_id", ev.RunID, "cells", ev.Cells)
	return nil
}

// ListDays returns every cataloged day
func (s *DayService) ListDays(ctx context.Context) (*models.DayListResponse, error) {
	manifests, err := s.catalog.List(ctx)
	if err != nil {
		return nil, NewServiceError(CodeCatalogError, err.Error())
	}

	days := make([]models.DayResponse, 0, len(manifests))
	for _, m := range manifests {
		days = append(days, dayResponse(m))
	}
	return &models.DayListResponse{Days: days, Count: len(days)}, nil
}

// GetDay returns the manifest of one day
func (s *DayService) GetDay(ctx context.Context, day int) (*models.DayResponse, error) {
	m, err := s.manifest(ctx, day)
	if err != nil {
		return nil, err
	}
	resp := dayResponse(m)
	return &resp, nil
}

// GetCell returns the coefficients of series a and b. Order does not
// matter; the diagonal is not stored.
func (s *DayService) GetCell(ctx context.Context, day, a, b int) (*models.CellResponse, error) {
	m, err := s.manifest(ctx, day)
	if err != nil {
		return nil, err
	}
	cell, err := cellFor(m, a, b)
	if err != nil {
		return nil, err
	}

	var p correlation.Pair
	if directAccess(m) {
		p, err = readCell(m.Path, cell)
	} else {
		p, err = s.loadedCell(m, cell)
	}
	if err != nil {
		return nil, NewServiceError(CodeMatrixUnavailable, err.Error())
	}

	resp := s.cellResponse(m, cell, p)
	return &resp, nil
}

// Significant lists the cells significant in the given window, strongest
// first. limit <= 0 returns all of them.
func (s *DayService) Significant(ctx context.Context, day int, win string, limit int) (*models.SignificantResponse, error) {
	if win != WindowShort && win != WindowLong {
		return nil, NewServiceError(CodeInvalidWindow, fmt.Sprintf("window must be %q or %q", WindowShort, WindowLong))
	}

	m, err := s.manifest(ctx, day)
	if err != nil {
		return nil, err
	}
	ld, err := s.load(m)
	if err != nil {
		return nil, NewServiceError(CodeMatrixUnavailable, err.Error())
	}

	sizes := window.Sizes{Short: m.Short, Long: m.Long}
	type hit struct {
		cell matrix.Cell
		pair correlation.Pair
		r    float64
	}
	var hits []hit
	ld.matrix.Each(func(e matrix.Element, p correlation.Pair) bool {
		r := p.Long
		ok := p.LongCorrelated(sizes)
		if win == WindowShort {
			r = p.Short
			ok = p.ShortCorrelated(sizes)
		}
		if ok {
			hits = append(hits, hit{cell: e.Cell, pair: p, r: math.Abs(float64(r.Value()))})
		}
		return true
	})

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].r > hits[j].r })

	resp := &models.SignificantResponse{
		Day:    m.Day,
		Date:   m.Date,
		Window: win,
		Total:  len(hits),
		Cells:  []models.CellResponse{},
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for _, h := range hits {
		resp.Cells = append(resp.Cells, s.cellResponse(m, h.cell, h.pair))
	}
	return resp, nil
}

// Transitive reports whether a~b and b~c imply a~c in each window
func (s *DayService) Transitive(ctx context.Context, day, a, b, c int) (*models.TransitiveResponse, error) {
	if a == b || b == c || a == c {
		return nil, NewServiceError(CodeInvalidCell, "series must be distinct")
	}

	ab, err := s.GetCell(ctx, day, a, b)
	if err != nil {
		return nil, err
	}
	bc, err := s.GetCell(ctx, day, b, c)
	if err != nil {
		return nil, err
	}
	ac, err := s.GetCell(ctx, day, a, c)
	if err != nil {
		return nil, err
	}

	pab, pbc := coefficientPair(ab), coefficientPair(bc)
	return &models.TransitiveResponse{
		Day:             day,
		A:               a,
		B:               b,
		C:               c,
		AB:              *ab,
		BC:              *bc,
		AC:              *ac,
		ShortTransitive: pab.ShortTransitive(&pbc),
		LongTransitive:  pab.LongTransitive(&pbc),
	}, nil
}

func (s *DayService) manifest(ctx context.Context, day int) (*catalog.Manifest, error) {
	m, err := s.catalog.Get(ctx, day)
	if err != nil {
		return nil, catalogError(day, err)
	}
	return m, nil
}

// cellFor orders a and b into a stored cell of m
func cellFor(m *catalog.Manifest, a, b int) (matrix.Cell, error) {
	if a < b {
		a, b = b, a
	}
	cell := matrix.Cell{Row: a, Col: b}
	if err := cell.Validate(); err != nil {
		return cell, NewServiceError(CodeInvalidCell, err.Error())
	}
	if cell.Row >= m.Series {
		return cell, NewServiceErrorWithDetails(CodeInvalidCell,
			fmt.Sprintf("series %d out of range", cell.Row),
			map[string]interface{}{"series": m.Series})
	}
	return cell, nil
}

// directAccess reports whether cells can be read without loading the file
func directAccess(m *catalog.Manifest) bool {
	opts, err := codec.ParseOptions(m.Format, m.Compression)
	return err == nil && opts == (codec.Options{Mode: codec.Binary})
}

func readCell(path string, cell matrix.Cell) (correlation.Pair, error) {
	cr, err := matrix.OpenCellReader(path)
	if err != nil {
		return correlation.Pair{}, err
	}
	defer cr.Close()
	return cr.Read(cell)
}

func (s *DayService) loadedCell(m *catalog.Manifest, cell matrix.Cell) (correlation.Pair, error) {
	ld, err := s.load(m)
	if err != nil {
		return correlation.Pair{}, err
	}
	p, err := ld.matrix.At(cell)
	if err != nil {
		return correlation.Pair{}, err
	}
	return *p, nil
}

// load returns the decoded matrix for m, evicting the oldest cached day
// when the cache is full. Loads of a stale run are replaced.
func (s *DayService) load(m *catalog.Manifest) (*loadedDay, error) {
	s.mu.Lock()
	ld, ok := s.loaded[m.Day]
	s.mu.Unlock()
	if ok && ld.manifest.RunID == m.RunID && ld.manifest.ComputedAt.Equal(m.ComputedAt) {
		return ld, nil
	}

	opts, err := codec.ParseOptions(m.Format, m.Compression)
	if err != nil {
		return nil, fmt.Errorf("day %d: %w", m.Day, err)
	}

	start := time.Now()
	mat := matrix.New(0)
	if err := mat.Load(m.Path, opts); err != nil {
		return nil, err
	}
	s.logger.Debug("Matrix loaded", "day", m.Day, "cells", mat.Len(), "duration", time.Since(start))

	ld = &loadedDay{manifest: m, matrix: mat}
	s.mu.Lock()
	if _, exists := s.loaded[m.Day]; !exists {
		s.order = append(s.order, m.Day)
	}
	s.loaded[m.Day] = ld
	for len(s.order) > s.maxCached {
		delete(s.loaded, s.order[0])
		s.order = s.order[1:]
	}
	s.mu.Unlock()

	return ld, nil
}

// symbolNames returns the day's symbol list, or nil when it is unreadable
func (s *DayService) symbolNames(m *catalog.Manifest) []string {
	s.mu.Lock()
	names, ok := s.symbols[m.Day]
	s.mu.Unlock()
	if ok {
		return names
	}

	if m.SymbolsPath != "" {
		var err error
		names, err = preprocess.ReadSymbols(m.SymbolsPath)
		if err != nil {
			s.logger.Debug("Symbol list unavailable", "day", m.Day, "error", err)
			names = nil
		}
	}

	s.mu.Lock()
	s.symbols[m.Day] = names
	s.mu.Unlock()
	return names
}

func (s *DayService) cellResponse(m *catalog.Manifest, cell matrix.Cell, p correlation.Pair) models.CellResponse {
	sizes := window.Sizes{Short: m.Short, Long: m.Long}
	resp := models.CellResponse{
		Day:   m.Day,
		Date:  m.Date,
		Row:   cell.Row,
		Col:   cell.Col,
		Short: coefficient(p.Short, p.ShortCorrelated(sizes)),
		Long:  coefficient(p.Long, p.LongCorrelated(sizes)),
	}
	if names := s.symbolNames(m); len(names) == m.Series {
		resp.RowName = names[cell.Row]
		resp.ColName = names[cell.Col]
	}
	return resp
}

func coefficient(r window.Value, significant bool) models.Coefficient {
	c := models.Coefficient{Significant: significant}
	if r.IsValid() {
		v := float64(r.Value())
		c.Value = &v
	}
	return c
}

// coefficientPair rebuilds a Pair from a response
func coefficientPair(c *models.CellResponse) correlation.Pair {
	p := correlation.InvalidPair()
	if c.Short.Value != nil {
		p.Short = sentinel.NewReal(float32(*c.Short.Value))
	}
	if c.Long.Value != nil {
		p.Long = sentinel.NewReal(float32(*c.Long.Value))
	}
	return p
}

func dayResponse(m *catalog.Manifest) models.DayResponse {
	return models.DayResponse{
		Day:         m.Day,
		Date:        m.Date,
		Series:      m.Series,
		Cells:       m.Cells,
		ShortWindow: m.Short,
		LongWindow:  m.Long,
		Format:      m.Format,
		Compression: m.Compression,
		RunID:       m.RunID,
		ComputedAt:  m.ComputedAt.Format(time.RFC3339),
		DurationMs:  m.DurationMs,
	}
}

// ExportPairs writes every cell significant in win as a Cell record file
// at path, strongest first, and returns how many were written.
func (s *DayService) ExportPairs(ctx context.Context, day int, win, path string, opts codec.Options) (int, error) {
	resp, err := s.Significant(ctx, day, win, 0)
	if err != nil {
		return 0, err
	}

	cells := make([]matrix.Cell, len(resp.Cells))
	for i, c := range resp.Cells {
		cells[i] = matrix.Cell{Row: c.Row, Col: c.Col}
	}
	if err := codec.SaveFile(path, opts, cells); err != nil {
		return 0, fmt.Errorf("failed to export pairs of day %d: %w", day, err)
	}

	s.logger.Info("Exported significant pairs", "day", day, "window", win, "pairs", len(cells), "path", path)
	return len(cells), nil
}
