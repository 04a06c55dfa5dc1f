// Package toycar writes minimal modelbin, materialbin and swatchbin assets.
// It is used by tests to build car folders without shipping game data.
package toycar

import (
	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
)

type Binding struct {
	BufferID, InputSlot, Stride, Offset int32
}

// Mesh is the encodable form of a mesh record.
type Mesh struct {
	Name          string
	Version       bundle.Version
	MaterialID    int16
	BoneIndex     int16
	LODs          uint16
	RenderPass    uint16
	IndexBufferID int32
	StartIndex    int32
	BaseVertex    int32
	IndexCount    uint32
	LayoutID      uint32
	Bindings      []Binding
	// UVTransforms holds (offsetU, scaleU, offsetV, scaleV) per channel.
	UVTransforms [5][4]float32
	Scale        [4]float32
	Translate    [4]float32
}

func (m *Mesh) Encode() []byte {
	v := m.Version
	w := binstream.NewWriter()
	w.Int16(m.MaterialID)
	if v.IsAtLeast(1, 9) {
		w.Int16(m.MaterialID).Zero(4)
	}
	w.Int16(m.BoneIndex).Uint16(m.LODs).Zero(2).Uint16(m.RenderPass).Zero(1)
	if v.IsAtLeast(1, 2) {
		w.Zero(2)
	}
	if v.IsAtLeast(1, 3) {
		w.Zero(1)
	}
	w.Zero(3)
	w.Int32(m.IndexBufferID).Zero(4).Int32(m.StartIndex).Int32(m.BaseVertex).Uint32(m.IndexCount).Zero(4)
	if v.IsAtLeast(1, 6) {
		w.Zero(8)
	}
	w.Uint32(m.LayoutID)
	w.Uint32(uint32(len(m.Bindings)))
	for _, b := range m.Bindings {
		w.Int32(b.BufferID).Int32(b.InputSlot).Int32(b.Stride).Int32(b.Offset)
	}
	if v.IsAtLeast(1, 4) {
		w.Zero(8)
	}
	w.Uint32(0)
	if v.IsAtLeast(1, 1) {
		w.Zero(4)
	}
	if v.IsAtLeast(1, 5) {
		for _, t := range m.UVTransforms {
			for _, f := range t {
				w.Float32(f)
			}
		}
	}
	if v.IsAtLeast(1, 8) {
		for _, f := range m.Scale {
			w.Float32(f)
		}
		for _, f := range m.Translate {
			w.Float32(f)
		}
	}
	return w.Bytes()
}

type Element struct {
	Semantic  string
	Index     uint16
	InputSlot uint16
	Format    uint32
}

// Layout encodes a vertex layout. Semantic names are deduplicated in order of
// first use.
func Layout(elems ...Element) []byte {
	var names []string
	nameIndex := map[string]uint16{}
	for _, e := range elems {
		if _, ok := nameIndex[e.Semantic]; !ok {
			nameIndex[e.Semantic] = uint16(len(names))
			names = append(names, e.Semantic)
		}
	}
	w := binstream.NewWriter()
	w.Uint16(uint16(len(names)))
	for _, n := range names {
		w.String(n)
	}
	w.Uint16(uint16(len(elems)))
	for _, e := range elems {
		w.Uint16(nameIndex[e.Semantic]).Uint16(e.Index).Uint16(e.InputSlot).Zero(2).Uint32(e.Format).Zero(8)
	}
	return w.Bytes()
}

// Buffer encodes an index or vertex buffer in the version 1.0 layout.
func Buffer(stride uint16, payload []byte) []byte {
	w := binstream.NewWriter()
	length := uint32(0)
	if stride > 0 {
		length = uint32(len(payload)) / uint32(stride)
	}
	w.Uint32(length).Uint32(uint32(len(payload))).Uint16(stride).Zero(2).Uint32(0)
	return w.Write(payload).Bytes()
}

func Indices16(ids ...uint16) []byte {
	w := binstream.NewWriter()
	for _, id := range ids {
		w.Uint16(id)
	}
	return w.Bytes()
}

func Indices32(ids ...uint32) []byte {
	w := binstream.NewWriter()
	for _, id := range ids {
		w.Uint32(id)
	}
	return w.Bytes()
}

type Bone struct {
	Name      string
	Parent    int16
	Transform [16]float32
}

func Skeleton(bones ...Bone) []byte {
	w := binstream.NewWriter()
	w.Uint16(uint16(len(bones)))
	for _, b := range bones {
		w.String(b.Name).Int16(b.Parent).Zero(4)
		for _, f := range b.Transform {
			w.Float32(f)
		}
	}
	return w.Bytes()
}

func Model(meshes, buffers, layouts, materials int16, lods uint16) []byte {
	return binstream.NewWriter().
		Int16(meshes).Int16(buffers).Int16(layouts).Int16(materials).
		Zero(4).Uint16(lods).Uint8(0).Bytes()
}

func Identity() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func Translation(x, y, z float32) [16]float32 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}
