// Package binstream reads little-endian binary records from an in-memory buffer.
//
// Reads never fail. A read that runs past the end of the buffer yields the zero
// value, leaves the cursor at the end and latches Short.
package binstream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/x448/float16"
)

type Reader struct {
	buf   []byte
	pos   int
	short bool
}

func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the size of the underlying view.
func (r *Reader) Len() int {
	return len(r.buf)
}

func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) Remaining() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

// Short reports whether any read has run past the end of the buffer.
func (r *Reader) Short() bool {
	return r.short
}

// Bytes returns the whole view the reader was created over.
func (r *Reader) Bytes() []byte {
	return r.buf
}

// Seek moves the cursor. Positions past the end are allowed, negative ones clamp to 0.
func (r *Reader) Seek(offset int64, whence int) int64 {
	var base int64
	switch whence {
	case io.SeekCurrent:
		base = int64(r.pos)
	case io.SeekEnd:
		base = int64(len(r.buf))
	}
	p := base + offset
	if p < 0 {
		p = 0
	}
	if p > math.MaxInt32 {
		p = math.MaxInt32
	}
	r.pos = int(p)
	return p
}

func (r *Reader) Skip(n int) {
	r.Seek(int64(n), io.SeekCurrent)
}

func (r *Reader) take(n int) []byte {
	if n < 0 || r.pos+n > len(r.buf) || r.pos+n < r.pos {
		r.short = true
		if r.pos < len(r.buf) {
			r.pos = len(r.buf)
		}
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Read returns up to n bytes as a view into the buffer.
func (r *Reader) Read(n int) []byte {
	if n < 0 {
		n = 0
	}
	if rem := r.Remaining(); n > rem {
		r.short = true
		n = rem
	}
	start := r.pos
	if start > len(r.buf) {
		start = len(r.buf)
	}
	r.pos = start + n
	return r.buf[start : start+n]
}

// Rest returns everything from the cursor to the end.
func (r *Reader) Rest() []byte {
	return r.Read(r.Remaining())
}

// View returns a reader over buf[start:end] of the same backing array.
func (r *Reader) View(start, end int) *Reader {
	return New(Slice(r.buf, start, end))
}

// Slice clamps [start, end) to buf and returns the sub-slice.
func Slice(buf []byte, start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(buf) {
		end = len(buf)
	}
	if start > end {
		return buf[:0]
	}
	return buf[start:end:end]
}

func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Float16() float32 {
	return float16.Frombits(r.Uint16()).Float32()
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// SNorm16 reads a signed 16-bit value normalized by 32767.
func (r *Reader) SNorm16() float32 {
	return float32(r.Int16()) / 32767
}

// UNorm8 reads an unsigned 8-bit value normalized by 255.
func (r *Reader) UNorm8() float32 {
	return float32(r.Uint8()) / 255
}

// UNorm16 reads an unsigned 16-bit value normalized by 65535.
func (r *Reader) UNorm16() float32 {
	return float32(r.Uint16()) / 65535
}

// Var7bit reads a base-128 varint, low group first.
func (r *Reader) Var7bit() uint64 {
	var v uint64
	var shift uint
	for {
		b := r.take(1)
		if b == nil {
			return v
		}
		if shift < 64 {
			v |= uint64(b[0]&0x7f) << shift
		}
		shift += 7
		if b[0]&0x80 == 0 {
			return v
		}
	}
}

// String reads a u32 length-prefixed UTF-8 string.
func (r *Reader) String() string {
	return string(r.Read(int(r.Uint32())))
}

// String7 reads a string prefixed with a 7-bit encoded length.
func (r *Reader) String7() string {
	n := r.Var7bit()
	if n > uint64(r.Remaining()) {
		n = uint64(r.Remaining()) + 1
	}
	return string(r.Read(int(n)))
}
