package binstream

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// Writer appends little-endian values. It produces the encodings Reader consumes.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) Uint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) Int16(v int16) *Writer {
	return w.Uint16(uint16(v))
}

func (w *Writer) Uint32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *Writer) Int32(v int32) *Writer {
	return w.Uint32(uint32(v))
}

func (w *Writer) Float16(v float32) *Writer {
	return w.Uint16(float16.Fromfloat32(v).Bits())
}

func (w *Writer) Float32(v float32) *Writer {
	return w.Uint32(math.Float32bits(v))
}

// SNorm16 stores v in [-1, 1] as a signed 16-bit fraction of 32767.
func (w *Writer) SNorm16(v float32) *Writer {
	return w.Int16(int16(math.Round(float64(v) * 32767)))
}

func (w *Writer) UNorm8(v float32) *Writer {
	return w.Uint8(uint8(math.Round(float64(v) * 255)))
}

func (w *Writer) UNorm16(v float32) *Writer {
	return w.Uint16(uint16(math.Round(float64(v) * 65535)))
}

func (w *Writer) Var7bit(v uint64) *Writer {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
	return w
}

func (w *Writer) String(s string) *Writer {
	w.Uint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) String7(s string) *Writer {
	w.Var7bit(uint64(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) Write(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) *Writer {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
	return w
}

// PutUint32 overwrites 4 bytes at off.
func (w *Writer) PutUint32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}
