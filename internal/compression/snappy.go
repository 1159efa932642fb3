package compression

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// snappyWriter uses the framed snappy stream format so large matrices
// never need to be held in memory as a single block
type snappyWriter struct {
	w *snappy.Writer
}

func newSnappyWriter(w io.Writer) *snappyWriter {
	return &snappyWriter{w: snappy.NewBufferedWriter(w)}
}

func (s *snappyWriter) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *snappyWriter) Close() error {
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("snappy flush failed: %w", err)
	}
	return nil
}

type snappyReader struct {
	r *snappy.Reader
}

func newSnappyReader(r io.Reader) *snappyReader {
	return &snappyReader{r: snappy.NewReader(r)}
}

func (s *snappyReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("snappy decompress failed: %w", err)
	}
	return n, err
}
