package codec

import (
	"bufio"
	"io"

	"github.com/soltixdb/correlator/internal/sentinel"
)

// Encoder writes record fields in the configured mode. Errors are sticky:
// after the first failure every call is a no-op and Err reports it.
type Encoder struct {
	w    *bufio.Writer
	mode Mode
	buf  []byte
	err  error
}

func NewEncoder(w io.Writer, mode Mode) *Encoder {
	return &Encoder{
		w:    bufio.NewWriterSize(w, 64*1024),
		mode: mode,
		buf:  make([]byte, 0, 32),
	}
}

func (e *Encoder) Mode() Mode { return e.mode }

func (e *Encoder) Err() error { return e.err }

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

// EndRecord terminates a record. Binary records have no terminator.
func (e *Encoder) EndRecord() {
	if e.mode == Text && e.err == nil {
		e.err = e.w.WriteByte('\n')
	}
}

func (e *Encoder) Float32(v float32) { PutReal(e, sentinel.NewReal(v)) }
func (e *Encoder) Float64(v float64) { PutReal(e, sentinel.NewReal(v)) }
func (e *Encoder) Int32(v int32)     { PutInt(e, sentinel.NewInt(v)) }
func (e *Encoder) Int64(v int64)     { PutInt(e, sentinel.NewInt(v)) }

// PutReal writes one sentinel-aware float field.
func PutReal[T sentinel.Float](e *Encoder, r sentinel.Real[T]) {
	if e.err != nil {
		return
	}
	if e.mode == Binary {
		e.write(r.AppendBinary(e.buf[:0]))
		return
	}
	e.write(append(r.AppendText(e.buf[:0]), ' '))
}

// PutInt writes one sentinel-aware integer field.
func PutInt[T sentinel.Integer](e *Encoder, i sentinel.Int[T]) {
	if e.err != nil {
		return
	}
	if e.mode == Binary {
		e.write(i.AppendBinary(e.buf[:0]))
		return
	}
	e.write(append(i.AppendText(e.buf[:0]), ' '))
}

func (e *Encoder) write(p []byte) {
	_, e.err = e.w.Write(p)
}
