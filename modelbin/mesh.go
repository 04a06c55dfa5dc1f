package modelbin

import (
	"github.com/binzume/modelbinconv/bundle"
)

// RenderPassMain is the render pass bit every drawable mesh carries.
const RenderPassMain = 0x10

// Binding attaches a vertex buffer to an input slot.
type Binding struct {
	BufferID  int32
	InputSlot int32
	Stride    int32
	Offset    int32
}

// UVTransform maps a stored texture coordinate c to c*Scale+Offset.
type UVTransform struct {
	OffsetU, ScaleU float32
	OffsetV, ScaleV float32
}

const MaxUVChannels = 5

type Mesh struct {
	Version        bundle.Version
	Name           string
	MaterialID     int16
	BoneIndex      int16
	LODs           uint16
	RenderPass     uint16
	IndexBufferID  int32
	StartIndex     int32
	BaseVertex     int32
	IndexCount     uint32
	VertexLayoutID uint32
	// Bindings is indexed by input slot. Unbound slots are nil.
	Bindings     []*Binding
	UVTransforms [MaxUVChannels]*UVTransform
	Scale        [4]float32
	Translate    [4]float32
}

// maxBindings bounds the binding table of a corrupt record.
const maxBindings = 64

func DecodeMesh(b *bundle.Blob) *Mesh {
	r := b.Stream()
	v := b.Version
	m := &Mesh{
		Version:   v,
		Name:      b.MetaString(bundle.TagName, "Unnamed"),
		Scale:     [4]float32{1, 1, 1, 1},
		Translate: [4]float32{0, 0, 0, 0},
	}

	m.MaterialID = r.Int16()
	if v.IsAtLeast(1, 9) {
		m.MaterialID = r.Int16()
		r.Skip(4)
	}
	m.BoneIndex = r.Int16()
	m.LODs = r.Uint16()
	r.Skip(2)
	m.RenderPass = r.Uint16()
	r.Skip(1)
	if v.IsAtLeast(1, 2) {
		r.Skip(2)
	}
	if v.IsAtLeast(1, 3) {
		r.Skip(1)
	}
	r.Skip(3)
	m.IndexBufferID = r.Int32()
	r.Skip(4)
	m.StartIndex = r.Int32()
	m.BaseVertex = r.Int32()
	m.IndexCount = r.Uint32()
	r.Skip(4)
	if v.IsAtLeast(1, 6) {
		r.Skip(8)
	}
	m.VertexLayoutID = r.Uint32()

	n := r.Uint32()
	m.Bindings = make([]*Binding, min(n, maxBindings))
	for i := uint32(0); i < n && !r.Short(); i++ {
		bind := &Binding{
			BufferID:  r.Int32(),
			InputSlot: r.Int32(),
			Stride:    r.Int32(),
			Offset:    r.Int32(),
		}
		slot := int(bind.InputSlot)
		if slot < 0 || slot >= maxBindings {
			continue
		}
		for slot >= len(m.Bindings) {
			m.Bindings = append(m.Bindings, nil)
		}
		m.Bindings[slot] = bind
	}

	if v.IsAtLeast(1, 4) {
		r.Skip(4)
		r.Skip(4)
	}
	r.Uint32()
	if v.IsAtLeast(1, 1) {
		r.Skip(4)
	}

	if v.IsAtLeast(1, 5) {
		for i := range m.UVTransforms {
			m.UVTransforms[i] = &UVTransform{
				OffsetU: r.Float32(), ScaleU: r.Float32(),
				OffsetV: r.Float32(), ScaleV: r.Float32(),
			}
		}
	}

	if v.IsAtLeast(1, 8) {
		for i := range m.Scale {
			m.Scale[i] = r.Float32()
		}
		for i := range m.Translate {
			m.Translate[i] = r.Float32()
		}
	}
	return m
}

// Visible reports whether the mesh belongs to one of the requested LODs and to
// the main render pass.
func (m *Mesh) Visible(lodMask uint16) bool {
	return m.LODs&lodMask != 0 && m.RenderPass&RenderPassMain != 0
}

func (m *Mesh) Binding(slot uint16) *Binding {
	if int(slot) >= len(m.Bindings) {
		return nil
	}
	return m.Bindings[slot]
}
