package matrix

import (
	"fmt"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/correlation"
)

// Cell addresses one coefficient pair: Row is 1-based, Col is 0-based
// and Col < Row.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Validate checks that c lies in the strict lower triangle.
func (c Cell) Validate() error {
	switch {
	case c.Row <= 0:
		return fmt.Errorf("%w: row of %s must be positive", ErrOutOfRange, c)
	case c.Col < 0 || c.Col >= c.Row:
		return fmt.Errorf("%w: column of %s must be in [0, row)", ErrOutOfRange, c)
	}
	return nil
}

// CellSize is the binary size of a Cell record.
const CellSize = 8

func (c *Cell) RecordSize() int { return CellSize }

func (c *Cell) EncodeRecord(e *codec.Encoder) {
	e.Int32(int32(c.Row))
	e.Int32(int32(c.Col))
	e.EndRecord()
}

func (c *Cell) DecodeRecord(d *codec.Decoder) {
	c.Row = int(d.Int32())
	c.Col = int(d.Int32())
}

// CellReader looks single cells up in a binary matrix file without
// loading it.
type CellReader struct {
	r *codec.RecordReader[correlation.Pair, *correlation.Pair]
	n int
}

// OpenCellReader opens a binary, uncompressed matrix file.
func OpenCellReader(path string) (*CellReader, error) {
	r := codec.NewRecordReader[correlation.Pair](nil)
	if !r.Open(path) {
		return nil, fmt.Errorf("failed to open matrix %s: %w", path, r.Err())
	}
	n, err := r.Len()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to stat matrix %s: %w", path, err)
	}
	return &CellReader{r: r, n: n}, nil
}

// Len is the number of cells in the file.
func (cr *CellReader) Len() int { return cr.n }

// Read returns the pair stored for c.
func (cr *CellReader) Read(c Cell) (correlation.Pair, error) {
	var p correlation.Pair
	if err := c.Validate(); err != nil {
		return p, err
	}
	idx := LinearIndex(c)
	if idx >= cr.n {
		return p, fmt.Errorf("%w: cell %s beyond %d cells", ErrOutOfRange, c, cr.n)
	}
	if !cr.r.Read(idx, &p) {
		return p, fmt.Errorf("failed to read cell %s: %w", c, cr.r.Err())
	}
	return p, nil
}

func (cr *CellReader) Close() error {
	return cr.r.Close()
}
