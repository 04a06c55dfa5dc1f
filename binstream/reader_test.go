package binstream

import (
	"io"
	"math"
	"testing"
)

func TestReaderScalars(t *testing.T) {
	w := NewWriter().
		Uint8(0xfe).
		Uint16(0x1234).
		Int16(-2).
		Uint32(0xdeadbeef).
		Int32(-100).
		Float32(1.5).
		Float16(-0.5)

	r := New(w.Bytes())
	if v := r.Uint8(); v != 0xfe {
		t.Error("Uint8", v)
	}
	if v := r.Uint16(); v != 0x1234 {
		t.Error("Uint16", v)
	}
	if v := r.Int16(); v != -2 {
		t.Error("Int16", v)
	}
	if v := r.Uint32(); v != 0xdeadbeef {
		t.Error("Uint32", v)
	}
	if v := r.Int32(); v != -100 {
		t.Error("Int32", v)
	}
	if v := r.Float32(); v != 1.5 {
		t.Error("Float32", v)
	}
	if v := r.Float16(); v != -0.5 {
		t.Error("Float16", v)
	}
	if r.Short() || r.Remaining() != 0 {
		t.Error("unexpected state", r.Short(), r.Remaining())
	}
}

func TestReaderNormalized(t *testing.T) {
	r := New(NewWriter().Int16(32767).Int16(-32767).Uint8(255).Uint16(0).Uint16(65535).Bytes())
	if v := r.SNorm16(); v != 1 {
		t.Error("SNorm16 max", v)
	}
	if v := r.SNorm16(); v != -1 {
		t.Error("SNorm16 min", v)
	}
	if v := r.UNorm8(); v != 1 {
		t.Error("UNorm8", v)
	}
	if v := r.UNorm16(); v != 0 {
		t.Error("UNorm16 zero", v)
	}
	if v := r.UNorm16(); v != 1 {
		t.Error("UNorm16 max", v)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := New([]byte{1, 2, 3})
	if v := r.Uint32(); v != 0 {
		t.Error("short Uint32 should be zero", v)
	}
	if !r.Short() {
		t.Error("Short() should latch")
	}
	if r.Pos() != 3 {
		t.Error("cursor should stop at end", r.Pos())
	}
	if v := r.Uint8(); v != 0 {
		t.Error("read after end", v)
	}
	if v := r.Float32(); v != 0 || math.Signbit(float64(v)) {
		t.Error("Float32 after end", v)
	}
	if s := r.String(); s != "" {
		t.Error("String after end", s)
	}
}

func TestReaderVar7bit(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 21, 1<<35 + 5} {
		r := New(NewWriter().Var7bit(v).Bytes())
		if got := r.Var7bit(); got != v {
			t.Error("Var7bit", v, got)
		}
	}

	// 0xAC 0x02 = 300
	if v := New([]byte{0xac, 0x02}).Var7bit(); v != 300 {
		t.Error("Var7bit 300", v)
	}

	r := New([]byte{0x80, 0x80})
	r.Var7bit()
	if !r.Short() {
		t.Error("unterminated varint should be short")
	}
}

func TestReaderStrings(t *testing.T) {
	w := NewWriter().String("POSITION").String7("Game:\\Media\\a.materialbin").String("")
	r := New(w.Bytes())
	if s := r.String(); s != "POSITION" {
		t.Error("String", s)
	}
	if s := r.String7(); s != "Game:\\Media\\a.materialbin" {
		t.Error("String7", s)
	}
	if s := r.String(); s != "" {
		t.Error("empty String", s)
	}

	r = New(NewWriter().Uint32(100).Write([]byte("abc")).Bytes())
	if s := r.String(); s != "abc" || !r.Short() {
		t.Error("truncated String", s, r.Short())
	}
}

func TestReaderSeekAndView(t *testing.T) {
	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r := New(buf)
	r.Seek(4, io.SeekStart)
	if v := r.Uint8(); v != 4 {
		t.Error("SeekStart", v)
	}
	r.Seek(2, io.SeekCurrent)
	if v := r.Uint8(); v != 7 {
		t.Error("SeekCurrent", v)
	}
	r.Seek(-1, io.SeekEnd)
	if v := r.Uint8(); v != 9 {
		t.Error("SeekEnd", v)
	}
	r.Seek(100, io.SeekStart)
	if r.Uint8() != 0 || !r.Short() {
		t.Error("read past end after seek")
	}

	v := r.View(2, 5)
	if v.Len() != 3 || v.Uint8() != 2 {
		t.Error("View", v.Len())
	}
	buf[3] = 42
	if v.Uint8() != 42 {
		t.Error("View must share the backing buffer")
	}

	if r.View(8, 100).Len() != 2 || r.View(7, 3).Len() != 0 {
		t.Error("View should clamp")
	}
}

func TestReaderRead(t *testing.T) {
	r := New([]byte("abcdef"))
	if b := r.Read(4); string(b) != "abcd" {
		t.Error("Read", string(b))
	}
	if b := r.Read(4); string(b) != "ef" || !r.Short() {
		t.Error("partial Read", string(b))
	}
	if b := r.Rest(); len(b) != 0 {
		t.Error("Rest at end", b)
	}
}
