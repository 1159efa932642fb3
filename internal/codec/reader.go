package codec

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// RecordReader gives O(1) access to the i-th record of an uncompressed
// binary file of sized records. The bytes of the last record read are
// cached, so repeated reads of one index touch the file only once.
//
// After any seek or read failure the reader is unhealthy and every Read
// returns false until the next Open, matching the sticky failure of a
// stream. Err reports the failure.
//
// A RecordReader is not safe for concurrent use.
type RecordReader[T any, P SizedRecordPtr[T]] struct {
	file   *os.File
	init   func(*T)
	size   int
	raw    []byte
	src    *bytes.Reader
	dec    *Decoder
	last   int
	err    error
}

// NewRecordReader creates a closed reader. init, when non-nil, prepares
// every record before decoding and must give each record the same size.
func NewRecordReader[T any, P SizedRecordPtr[T]](init func(*T)) *RecordReader[T, P] {
	r := &RecordReader[T, P]{init: init, last: -1}
	var probe T
	if init != nil {
		init(&probe)
	}
	r.size = P(&probe).RecordSize()
	r.raw = make([]byte, r.size)
	r.src = bytes.NewReader(r.raw)
	r.dec = NewDecoder(r.src, Binary)
	return r
}

// RecordSize is the fixed binary size of one record.
func (r *RecordReader[T, P]) RecordSize() int { return r.size }

// Open closes any previous file, opens path and clears the cache.
func (r *RecordReader[T, P]) Open(path string) bool {
	r.Close()
	f, err := os.Open(path)
	if err != nil {
		r.err = err
		return false
	}
	r.file = f
	r.err = nil
	return true
}

func (r *RecordReader[T, P]) IsOpen() bool { return r.file != nil }

func (r *RecordReader[T, P]) Close() error {
	r.last = -1
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *RecordReader[T, P]) Err() error { return r.err }

// Len returns the number of whole records in the open file.
func (r *RecordReader[T, P]) Len() (int, error) {
	if r.file == nil {
		return 0, os.ErrClosed
	}
	st, err := r.file.Stat()
	if err != nil {
		return 0, err
	}
	return int(st.Size()) / r.size, nil
}

// Read decodes record index into out. It returns false when the reader
// is closed or unhealthy, index is negative, or the record cannot be read.
// Every call decodes a fresh record, so out shares no memory with the
// reader or with earlier results.
func (r *RecordReader[T, P]) Read(index int, out *T) bool {
	if r.file == nil || r.err != nil || index < 0 {
		return false
	}
	if index != r.last {
		if !r.fetch(index) {
			return false
		}
	}

	var rec T
	if r.init != nil {
		r.init(&rec)
	}
	r.src.Reset(r.raw)
	r.dec.reset(r.src)
	P(&rec).DecodeRecord(r.dec)
	if err := r.dec.Err(); err != nil {
		r.last = -1
		r.err = fmt.Errorf("decode record %d: %w", index, err)
		return false
	}

	*out = rec
	return true
}

// fetch loads the raw bytes of record index into the cache
func (r *RecordReader[T, P]) fetch(index int) bool {
	r.last = -1
	if _, err := r.file.Seek(int64(index)*int64(r.size), io.SeekStart); err != nil {
		r.err = fmt.Errorf("seek to record %d: %w", index, err)
		return false
	}
	if _, err := io.ReadFull(r.file, r.raw); err != nil {
		r.err = fmt.Errorf("read record %d: %w", index, err)
		return false
	}
	r.last = index
	return true
}
