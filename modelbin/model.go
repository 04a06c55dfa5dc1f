// Package modelbin decodes modelbin geometry: model summary, vertex layouts,
// index/vertex buffers, meshes and skeletons, and assembles meshes into
// renderer-agnostic vertex and index arrays.
package modelbin

import (
	"strconv"

	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
)

// Model is the per-file summary. The counts are informational only.
type Model struct {
	Version           bundle.Version
	MeshCount         int16
	BufferCount       int16
	VertexLayoutCount int16
	MaterialCount     int16
	LODs              uint16
	DecompressFlags   uint8
}

func DecodeModel(b *bundle.Blob) *Model {
	r := b.Stream()
	m := &Model{Version: b.Version}
	m.MeshCount = r.Int16()
	m.BufferCount = r.Int16()
	m.VertexLayoutCount = r.Int16()
	m.MaterialCount = r.Int16()
	r.Skip(4)
	m.LODs = r.Uint16()
	if b.Version.IsAtLeast(1, 2) {
		m.DecompressFlags = r.Uint8()
	}
	return m
}

// Element describes one semantic stored in a vertex buffer slot.
type Element struct {
	Semantic  string
	Index     uint16
	InputSlot uint16
	Format    uint32
}

// Key is the semantic name followed by its index, e.g. "TEXCOORD0".
func (e *Element) Key() string {
	return e.Semantic + strconv.Itoa(int(e.Index))
}

type VertexLayout struct {
	Names    []string
	Elements []*Element
	keys     map[string]int
}

func DecodeVertexLayout(b *bundle.Blob) *VertexLayout {
	return readVertexLayout(b.Stream())
}

func readVertexLayout(r *binstream.Reader) *VertexLayout {
	l := &VertexLayout{keys: map[string]int{}}
	n := int(r.Uint16())
	for i := 0; i < n && !r.Short(); i++ {
		l.Names = append(l.Names, r.String())
	}
	n = int(r.Uint16())
	for i := 0; i < n && !r.Short(); i++ {
		e := &Element{}
		if name := int(r.Uint16()); name < len(l.Names) {
			e.Semantic = l.Names[name]
		}
		e.Index = r.Uint16()
		e.InputSlot = r.Uint16()
		r.Skip(2)
		e.Format = r.Uint32()
		r.Skip(8)

		if pos, ok := l.keys[e.Key()]; ok {
			l.Elements[pos] = e
		} else {
			l.keys[e.Key()] = len(l.Elements)
			l.Elements = append(l.Elements, e)
		}
	}
	return l
}

func (l *VertexLayout) Element(key string) *Element {
	if pos, ok := l.keys[key]; ok {
		return l.Elements[pos]
	}
	return nil
}

// Buffer is an index or vertex buffer.
type Buffer struct {
	Version bundle.Version
	Length  uint32
	Size    uint32
	Stride  uint16
	Format  uint32
	data    []byte
}

func DecodeBuffer(b *bundle.Blob) *Buffer {
	r := b.Stream()
	buf := &Buffer{Version: b.Version}
	buf.Length = r.Uint32()
	buf.Size = r.Uint32()
	buf.Stride = r.Uint16()
	r.Skip(2)

	start := 0xc
	if b.Version.IsAtLeast(1, 0) {
		buf.Format = r.Uint32()
		start = 0x10
	}
	buf.data = binstream.Slice(b.Data(), start, start+int(buf.Size))
	return buf
}

// Data returns the buffer payload without its header.
func (b *Buffer) Data() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// VertexBuffers holds vertex buffers by their Id metadata shifted by one, so
// that buffers without an Id land in slot 0.
type VertexBuffers []*Buffer

func (vbs VertexBuffers) Get(id int32) *Buffer {
	i := int(id) + 1
	if i < 0 || i >= len(vbs) {
		return nil
	}
	return vbs[i]
}
