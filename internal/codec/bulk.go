package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/soltixdb/correlator/internal/compression"
)

// WriteAll encodes every record of src in order.
func WriteAll[T any, P RecordPtr[T]](w io.Writer, mode Mode, src []T) error {
	enc := NewEncoder(w, mode)
	for i := range src {
		P(&src[i]).EncodeRecord(enc)
		if err := enc.Err(); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return enc.Flush()
}

// ReadAll clears *dst and appends records until the input is exhausted.
// init, when non-nil, prepares each fresh record before decoding (for
// example to size variable-length fields). A record cut short by the end
// of input is an error; records decoded before it are kept.
func ReadAll[T any, P RecordPtr[T]](r io.Reader, mode Mode, dst *[]T, init func(*T)) error {
	*dst = (*dst)[:0]
	dec := NewDecoder(r, mode)
	for dec.More() {
		var rec T
		if init != nil {
			init(&rec)
		}
		P(&rec).DecodeRecord(dec)
		if err := dec.Err(); err != nil {
			return fmt.Errorf("failed to read record %d: %w", len(*dst), err)
		}
		*dst = append(*dst, rec)
	}
	return dec.Err()
}

// SaveFile writes src to path, creating parent directories.
func SaveFile[T any, P RecordPtr[T]](path string, opts Options, src []T) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	cw, err := compression.NewWriter(f, opts.Compression)
	if err != nil {
		return err
	}
	if err := WriteAll[T, P](cw, opts.Mode, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return cw.Close()
}

// LoadFile reads every record of path into *dst. A missing file is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func LoadFile[T any, P RecordPtr[T]](path string, opts Options, dst *[]T, init func(*T)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr, err := compression.NewReader(f, opts.Compression)
	if err != nil {
		return err
	}
	if err := ReadAll[T, P](cr, opts.Mode, dst, init); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a record file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
