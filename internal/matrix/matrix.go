// Package matrix stores the strict lower triangle of a symmetric n×n
// correlation matrix in one flat slice and hands its cells out to workers
// one at a time.
//
// Cell (row, col) with 1 <= row < n and 0 <= col < row lives at linear
// index row(row-1)/2 + col, so cells are ordered row by row:
//
//	(1,0) (2,0) (2,1) (3,0) (3,1) (3,2) ...
package matrix

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/sentinel"
)

// ErrOutOfRange is wrapped by every addressing error.
var ErrOutOfRange = errors.New("matrix: out of range")

// Size returns the number of cells for n series.
func Size(n int) int {
	return sentinel.TriangularNumber(n - 1)
}

// LinearIndex maps a cell to its position in the flat store.
func LinearIndex(c Cell) int {
	return c.Row*(c.Row-1)/2 + c.Col
}

// CellAt is the inverse of LinearIndex for index >= 0.
func CellAt(index int) Cell {
	row := int((1 + math.Sqrt(1+8*float64(index))) / 2)
	for row*(row-1)/2 > index {
		row--
	}
	for (row+1)*row/2 <= index {
		row++
	}
	return Cell{Row: row, Col: index - row*(row-1)/2}
}

// Element is one unit of work: a cell and its linear index.
type Element struct {
	Cell
	Index int
}

func firstElement() Element {
	return Element{Cell: Cell{Row: 1, Col: 0}, Index: 0}
}

// Triangular is the packed matrix together with its dispatch cursor.
//
// Next is safe for concurrent use. Slot writes through Visit need no lock
// because Next never hands out the same index twice. SizeFor, Reset and
// Load must not run while workers are dispatching.
type Triangular struct {
	mu    sync.Mutex
	next  Element
	cells []correlation.Pair
}

// New returns a matrix sized for n series.
func New(n int) *Triangular {
	m := &Triangular{}
	m.SizeFor(n)
	return m
}

// SizeFor resizes the store to n(n-1)/2 invalid cells and resets the
// cursor. Fewer than two series give an empty matrix.
func (m *Triangular) SizeFor(n int) {
	size := Size(n)
	if cap(m.cells) >= size {
		m.cells = m.cells[:size]
	} else {
		m.cells = make([]correlation.Pair, size)
	}
	invalid := correlation.InvalidPair()
	for i := range m.cells {
		m.cells[i] = invalid
	}
	m.Reset()
}

// Len is the number of stored cells.
func (m *Triangular) Len() int { return len(m.cells) }

// Series is the number of series the matrix was sized for, 0 if empty.
func (m *Triangular) Series() int {
	if len(m.cells) == 0 {
		return 0
	}
	return CellAt(len(m.cells)-1).Row + 1
}

// Reset rewinds the cursor to the first cell.
func (m *Triangular) Reset() {
	m.mu.Lock()
	m.next = firstElement()
	m.mu.Unlock()
}

// Next claims the cursor position and advances it. The boolean is false
// once every cell has been handed out; the element is still returned.
func (m *Triangular) Next() (Element, bool) {
	m.mu.Lock()
	e := m.next
	m.next.Col++
	m.next.Col %= m.next.Row
	if m.next.Col == 0 {
		m.next.Row++
	}
	m.next.Index++
	m.mu.Unlock()

	return e, e.Index < len(m.cells)
}

// Visit calls fn with the slot of e when e addresses a stored cell.
func (m *Triangular) Visit(e Element, fn func(Cell, *correlation.Pair)) {
	if e.Index >= 0 && e.Index < len(m.cells) {
		fn(e.Cell, &m.cells[e.Index])
	}
}

// At returns the slot for c.
func (m *Triangular) At(c Cell) (*correlation.Pair, error) {
	if len(m.cells) == 0 {
		return nil, fmt.Errorf("%w: matrix is empty", ErrOutOfRange)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	idx := LinearIndex(c)
	if idx >= len(m.cells) {
		return nil, fmt.Errorf("%w: cell %s beyond %d cells", ErrOutOfRange, c, len(m.cells))
	}
	return &m.cells[idx], nil
}

// AtIndex returns the slot at a linear index.
func (m *Triangular) AtIndex(index int) (*correlation.Pair, error) {
	if index < 0 || index >= len(m.cells) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrOutOfRange, index, len(m.cells))
	}
	return &m.cells[index], nil
}

// Each iterates cells in index order until fn returns false.
func (m *Triangular) Each(fn func(Element, correlation.Pair) bool) {
	e := firstElement()
	for i, p := range m.cells {
		e.Index = i
		if !fn(e, p) {
			return
		}
		e.Col++
		if e.Col == e.Row {
			e.Row++
			e.Col = 0
		}
	}
}

// Save writes every cell in index order.
func (m *Triangular) Save(path string, opts codec.Options) error {
	return codec.SaveFile(path, opts, m.cells)
}

// Load replaces the store with the contents of path and resets the
// cursor. A file that does not hold a triangular number of cells is
// rejected.
func (m *Triangular) Load(path string, opts codec.Options) error {
	var cells []correlation.Pair
	if err := codec.LoadFile(path, opts, &cells, nil); err != nil {
		return err
	}
	if n := len(cells); n > 0 && Size(CellAt(n-1).Row+1) != n {
		return fmt.Errorf("%s: %d cells is not a triangular matrix", path, n)
	}
	m.cells = cells
	m.Reset()
	return nil
}
