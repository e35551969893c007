// Package binio provides little-endian record writers and readers with sticky
// errors, plus fixed-width text fields for the motion file codecs.
package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// ShiftJIS is the text encoding of the legacy format's name fields.
var ShiftJIS encoding.Encoding = japanese.ShiftJIS

// Writer appends little-endian values to w. The first error sticks and turns
// later writes into no-ops.
type Writer struct {
	w   io.Writer
	buf [8]byte
	n   int64
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// N returns the number of bytes written.
func (w *Writer) N() int64 { return w.n }

func (w *Writer) Bytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.n += int64(n)
	w.err = err
}

func (w *Writer) U8(v uint8) {
	w.buf[0] = v
	w.Bytes(w.buf[:1])
}

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
		return
	}
	w.U8(0)
}

func (w *Writer) U32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.Bytes(w.buf[:4])
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) U64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.Bytes(w.buf[:8])
}

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// Zeros writes n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.U8(0)
	}
}

// Fixed writes b into a NUL-padded field of width bytes. b must fit.
func (w *Writer) Fixed(b []byte, width int) {
	if w.err != nil {
		return
	}
	if len(b) > width {
		w.err = fmt.Errorf("field of %d bytes does not fit in %d", len(b), width)
		return
	}
	w.Bytes(b)
	w.Zeros(width - len(b))
}

// Prefixed writes a u32 length followed by b.
func (w *Writer) Prefixed(b []byte) {
	w.U32(uint32(len(b)))
	w.Bytes(b)
}

// Reader decodes little-endian values from r with a sticky error.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first read error. A short read is io.ErrUnexpectedEOF.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fill(b []byte) {
	if r.err != nil {
		for i := range b {
			b[i] = 0
		}
		return
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
	}
}

// Bytes reads exactly n bytes into a new slice.
func (r *Reader) Bytes(n int) []byte {
	b := make([]byte, n)
	r.fill(b)
	return b
}

// Into fills b.
func (r *Reader) Into(b []byte) { r.fill(b) }

func (r *Reader) U8() uint8 {
	r.fill(r.buf[:1])
	return r.buf[0]
}

func (r *Reader) U32() uint32 {
	r.fill(r.buf[:4])
	return binary.LittleEndian.Uint32(r.buf[:4])
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

func (r *Reader) U64() uint64 {
	r.fill(r.buf[:8])
	return binary.LittleEndian.Uint64(r.buf[:8])
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

// Count reads a u32 record count. At a clean end of input it reports ok=false
// without setting an error, for optional trailing sections.
func (r *Reader) Count() (n uint32, ok bool) {
	if r.err != nil {
		return 0, false
	}
	var b [4]byte
	read, err := io.ReadFull(r.r, b[:])
	if err == io.EOF && read == 0 {
		return 0, false
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[:]), true
}

// EncodeFixed encodes s with enc and truncates it at a character boundary so
// it fits in width bytes.
func EncodeFixed(enc encoding.Encoding, s string, width int) ([]byte, error) {
	e := enc.NewEncoder()
	out := make([]byte, 0, width)
	for _, r := range s {
		b, err := e.Bytes([]byte(string(r)))
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", s, err)
		}
		if len(out)+len(b) > width {
			break
		}
		out = append(out, b...)
	}
	return out, nil
}

// DecodeFixed decodes a NUL-padded field. Bytes after the first NUL are
// ignored, and so is a lead byte left dangling where a writer cut a
// double-byte character in half.
func DecodeFixed(enc encoding.Encoding, b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	if len(b) > 0 && bytes.HasSuffix(s, replacementChar) {
		head, err := enc.NewDecoder().Bytes(b[:len(b)-1])
		if err == nil && bytes.Equal(head, s[:len(s)-len(replacementChar)]) {
			s = head
		}
	}
	return string(s), nil
}

var replacementChar = []byte("\ufffd")
