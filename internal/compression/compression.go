package compression

import (
	"fmt"
	"io"
	"strings"
)

// Algorithm defines compression types applied to whole record streams
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

// ParseAlgorithm maps a config value to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %q", name)
	}
}

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("algorithm(%d)", a)
	}
}

// NewWriter wraps w so that everything written is compressed with algo.
// Close flushes the compressor but does not close w.
func NewWriter(w io.Writer, algo Algorithm) (io.WriteCloser, error) {
	switch algo {
	case None:
		return nopCloser{w}, nil
	case Snappy:
		return newSnappyWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// NewReader wraps r so that reads return decompressed bytes
func NewReader(r io.Reader, algo Algorithm) (io.Reader, error) {
	switch algo {
	case None:
		return r, nil
	case Snappy:
		return newSnappyReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
