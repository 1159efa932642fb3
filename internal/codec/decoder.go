package codec

import (
	"bufio"
	"errors"
	"io"
	"unicode"

	"github.com/soltixdb/correlator/internal/sentinel"
)

// Decoder reads record fields in the configured mode. Like Encoder its
// error is sticky. A text token that fails to parse is not an error: the
// field becomes the invalid sentinel and the token is discarded.
type Decoder struct {
	r    *bufio.Reader
	mode Mode
	buf  [8]byte
	tok  []byte
	err  error
}

func NewDecoder(r io.Reader, mode Mode) *Decoder {
	return &Decoder{
		r:    bufio.NewReaderSize(r, 64*1024),
		mode: mode,
		tok:  make([]byte, 0, 32),
	}
}

func (d *Decoder) Mode() Mode { return d.mode }

func (d *Decoder) reset(r io.Reader) {
	d.r.Reset(r)
	d.err = nil
}

// Err returns the first read failure. Running out of input in the middle
// of a field is reported as io.ErrUnexpectedEOF.
func (d *Decoder) Err() error { return d.err }

// More reports whether another record starts in the input.
func (d *Decoder) More() bool {
	if d.err != nil {
		return false
	}
	if d.mode == Text {
		if err := d.skipSpace(); err != nil {
			if !errors.Is(err, io.EOF) {
				d.err = err
			}
			return false
		}
	}
	if _, err := d.r.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			d.err = err
		}
		return false
	}
	return true
}

func (d *Decoder) Float32() float32 { return GetReal[float32](d).Value() }
func (d *Decoder) Float64() float64 { return GetReal[float64](d).Value() }
func (d *Decoder) Int32() int32     { return GetInt[int32](d).Value() }
func (d *Decoder) Int64() int64     { return GetInt[int64](d).Value() }

// GetReal reads one sentinel-aware float field.
func GetReal[T sentinel.Float](d *Decoder) sentinel.Real[T] {
	invalid := sentinel.InvalidReal[T]()
	if d.err != nil {
		return invalid
	}
	if d.mode == Binary {
		b := d.fill(invalid.Width())
		if b == nil {
			return invalid
		}
		return sentinel.DecodeReal[T](b)
	}
	tok, ok := d.token()
	if !ok {
		return invalid
	}
	return sentinel.ParseReal[T](tok)
}

// GetInt reads one sentinel-aware integer field.
func GetInt[T sentinel.Integer](d *Decoder) sentinel.Int[T] {
	invalid := sentinel.InvalidInt[T]()
	if d.err != nil {
		return invalid
	}
	if d.mode == Binary {
		b := d.fill(invalid.Width())
		if b == nil {
			return invalid
		}
		return sentinel.DecodeInt[T](b)
	}
	tok, ok := d.token()
	if !ok {
		return invalid
	}
	return sentinel.ParseInt[T](tok)
}

func (d *Decoder) fill(n int) []byte {
	b := d.buf[:n]
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(err)
		return nil
	}
	return b
}

func (d *Decoder) token() (string, bool) {
	if err := d.skipSpace(); err != nil {
		d.fail(err)
		return "", false
	}
	d.tok = d.tok[:0]
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.fail(err)
			return "", false
		}
		if unicode.IsSpace(rune(c)) {
			break
		}
		d.tok = append(d.tok, c)
	}
	return string(d.tok), true
}

func (d *Decoder) skipSpace() error {
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(rune(c)) {
			return d.r.UnreadByte()
		}
	}
}

func (d *Decoder) fail(err error) {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	d.err = err
}
