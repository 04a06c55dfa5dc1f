package modelbin

import (
	"fmt"
	"io"

	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/geom"
	"github.com/pkg/errors"
)

var (
	ErrNoVertexLayout = errors.New("vertex layout out of range")
	ErrNoIndexBuffer  = errors.New("no index buffer")
	ErrIndexRange     = errors.New("index range outside the index buffer")
	ErrVertexRange    = errors.New("vertex range too large")
)

// Vertex element formats (DXGI codes) with special decoding.
const (
	FormatR32G32B32Float    = 6
	FormatR16G16B16A16Float = 10
	FormatR16G16B16A16SNorm = 13
	FormatR10G10B10A2UNorm  = 24
	FormatR8G8B8A8UNorm     = 28
	FormatR16G16UNorm       = 35
	FormatR16G16SNorm       = 37
)

// formatSizes gives the byte size of the element formats that share a slot
// with other elements. Unlisted formats occupy the rest of the vertex.
var formatSizes = map[uint32]int{
	FormatR32G32B32Float:    12,
	FormatR16G16B16A16Float: 8,
	FormatR16G16B16A16SNorm: 8,
	FormatR10G10B10A2UNorm:  4,
	FormatR8G8B8A8UNorm:     4,
	FormatR16G16UNorm:       4,
	FormatR16G16SNorm:       4,
}

const maxMeshVertices = 1 << 24

// Geometry is one assembled mesh in the target (Y-up) coordinate system.
// Faces index Positions; all per-vertex arrays have the same length.
type Geometry struct {
	Name       string
	MaterialID int16
	Faces      [][3]uint32
	Positions  [][3]float32
	Normals    [][3]float32
	// UVs holds a slice per TEXCOORDn channel present in the layout, nil otherwise.
	UVs    [MaxUVChannels][][2]float32
	Colors [][4]float32
	// HasColors is set when the layout carries COLOR0.
	HasColors bool
	// CustomNormals is set when the normals come from an encoded normal element.
	CustomNormals bool
	// BoneMissing is set when the mesh names a bone the skeleton does not
	// have. The vertices are left untransformed.
	BoneMissing bool
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

type elementStream struct {
	r       *binstream.Reader
	format  uint32
	advance int
}

func (s *elementStream) next() {
	s.r.Seek(int64(s.advance), io.SeekCurrent)
}

// Assemble decodes the vertices referenced by a mesh's index range.
func Assemble(m *Mesh, layouts []*VertexLayout, vbs VertexBuffers, ib *Buffer, skel *Skeleton) (*Geometry, error) {
	if int(m.VertexLayoutID) >= len(layouts) {
		return nil, errors.Wrapf(ErrNoVertexLayout, "mesh %q: layout %d of %d", m.Name, m.VertexLayoutID, len(layouts))
	}
	if ib == nil {
		return nil, errors.Wrapf(ErrNoIndexBuffer, "mesh %q", m.Name)
	}

	g := &Geometry{Name: m.Name, MaterialID: m.MaterialID}

	var bone *Bone
	if skel != nil && len(skel.Bones) > 0 {
		bone = skel.Bone(int(m.BoneIndex))
		g.BoneMissing = bone == nil
	}

	stride := 2
	if ib.Stride == 4 {
		stride = 4
	}
	start := int64(m.StartIndex)
	end := start + int64(m.IndexCount)
	if start < 0 || end > int64(len(ib.Data())/stride) {
		return nil, errors.Wrapf(ErrIndexRange, "mesh %q: indices %d..%d of %d", m.Name, start, end, len(ib.Data())/stride)
	}
	ir := binstream.New(binstream.Slice(ib.Data(), int(start)*stride, int(end)*stride))
	indices := make([]uint32, m.IndexCount)
	var vmin, vmax uint32 = 0xffffffff, 0
	for i := range indices {
		var id uint32
		if stride == 4 {
			id = ir.Uint32()
		} else {
			id = uint32(ir.Uint16())
		}
		vmin = min(vmin, id)
		vmax = max(vmax, id)
		indices[i] = id
	}
	if len(indices) == 0 {
		return g, nil
	}
	if vmax-vmin >= maxMeshVertices {
		return nil, errors.Wrapf(ErrVertexRange, "mesh %q: %d..%d", m.Name, vmin, vmax)
	}

	for i := 0; i+2 < len(indices); i += 3 {
		g.Faces = append(g.Faces, [3]uint32{indices[i] - vmin, indices[i+2] - vmin, indices[i+1] - vmin})
	}

	streams := setupElements(m, layouts[m.VertexLayoutID], vbs, vmin, vmax)

	n := int(vmax-vmin) + 1
	g.Positions = make([][3]float32, n)
	g.Normals = make([][3]float32, n)
	g.Colors = make([][4]float32, n)
	uvStreams := [MaxUVChannels]*elementStream{}
	for i := range uvStreams {
		if s := streams[fmt.Sprintf("TEXCOORD%d", i)]; s != nil {
			uvStreams[i] = s
			g.UVs[i] = make([][2]float32, n)
		}
	}
	pos := streams["POSITION0"]
	nrm := streams["NORMAL0"]
	col := streams["COLOR0"]
	g.HasColors = col != nil
	g.CustomNormals = nrm != nil && (nrm.format == FormatR16G16B16A16Float || nrm.format == FormatR16G16SNorm)

	for i := 0; i < n; i++ {
		v := &geom.Vector3{}
		var w float32 = 1
		if pos != nil {
			if pos.format == FormatR16G16B16A16SNorm {
				v.X = pos.r.SNorm16()*m.Scale[0] + m.Translate[0]
				v.Y = pos.r.SNorm16()*m.Scale[1] + m.Translate[1]
				v.Z = pos.r.SNorm16()*m.Scale[2] + m.Translate[2]
				w = pos.r.SNorm16()
			} else {
				v.X, v.Y, v.Z = pos.r.Float32(), pos.r.Float32(), pos.r.Float32()
			}
			pos.next()
		}

		nv := &geom.Vector3{X: 0, Y: 0, Z: 1}
		if nrm != nil {
			if nrm.format == FormatR16G16SNorm {
				nv.X, nv.Y, nv.Z = w, nrm.r.SNorm16(), nrm.r.SNorm16()
			} else {
				nv.X, nv.Y, nv.Z = nrm.r.Float16(), nrm.r.Float16(), nrm.r.Float16()
			}
			nrm.next()
		}

		for ch, s := range uvStreams {
			if s == nil {
				continue
			}
			u, uv := s.r.UNorm16(), s.r.UNorm16()
			if t := m.UVTransforms[ch]; t != nil {
				u = u*t.ScaleU + t.OffsetU
				uv = uv*t.ScaleV + t.OffsetV
			}
			g.UVs[ch][i] = [2]float32{u, 1 - uv}
			s.next()
		}

		g.Colors[i] = [4]float32{1, 1, 1, 1}
		if col != nil {
			g.Colors[i] = [4]float32{col.r.UNorm8(), col.r.UNorm8(), col.r.UNorm8(), col.r.UNorm8()}
			col.next()
		}

		if bone != nil {
			v = bone.Transform.ApplyTo(v)
			nv = bone.Transform.ApplyToDirection(nv)
		}
		nv.Normalize()

		v.ToYUp().ToArray(g.Positions[i][:])
		nv.ToYUp().ToArray(g.Normals[i][:])
	}
	return g, nil
}

// setupElements opens a reader per layout element over the vertex range
// [vmin, vmax]. Elements sharing an input slot are laid out one after another
// within each vertex, in layout order.
func setupElements(m *Mesh, layout *VertexLayout, vbs VertexBuffers, vmin, vmax uint32) map[string]*elementStream {
	streams := map[string]*elementStream{}
	slotOffsets := map[uint16]int{}
	for _, e := range layout.Elements {
		bind := m.Binding(e.InputSlot)
		if bind == nil {
			continue
		}
		size := formatSizes[e.Format]
		offset := slotOffsets[e.InputSlot]
		slotOffsets[e.InputSlot] += size

		vb := vbs.Get(bind.BufferID)
		if vb == nil {
			continue
		}
		vstride := int(vb.Stride)
		base := int(bind.Offset) + offset
		start := base + (int(vmin)+int(m.BaseVertex))*vstride
		end := base + (int(vmax)+int(m.BaseVertex)+1)*vstride
		streams[e.Key()] = &elementStream{
			r:       binstream.New(binstream.Slice(vb.Data(), start, end)),
			format:  e.Format,
			advance: vstride - size,
		}
	}
	return streams
}
