package modelbin

import (
	"github.com/binzume/modelbinconv/bundle"
	"github.com/pkg/errors"
)

var ErrNoModel = errors.New("no model blob")

// File is a decoded modelbin bundle.
type File struct {
	Bundle        *bundle.Bundle
	Model         *Model
	Skeleton      *Skeleton
	Layouts       []*VertexLayout
	IndexBuffer   *Buffer
	VertexBuffers VertexBuffers
	Meshes        []*Mesh
	// MaterialBlobs is sized by the model's material count. Slots without a
	// MatI blob are nil.
	MaterialBlobs []*bundle.Blob
}

func Decode(bnd *bundle.Bundle) (*File, error) {
	modl := bnd.First(bundle.TagModl)
	if modl == nil {
		return nil, ErrNoModel
	}
	f := &File{Bundle: bnd, Model: DecodeModel(modl)}

	if b := bnd.First(bundle.TagSkel); b != nil {
		f.Skeleton = DecodeSkeleton(b)
	}
	for _, b := range bnd.All(bundle.TagVLay) {
		f.Layouts = append(f.Layouts, DecodeVertexLayout(b))
	}
	if b := bnd.First(bundle.TagIndB); b != nil {
		f.IndexBuffer = DecodeBuffer(b)
	}

	vbs := bnd.All(bundle.TagVerB)
	f.VertexBuffers = make(VertexBuffers, len(vbs)+1)
	for _, b := range vbs {
		i := int(b.MetaInt32(bundle.TagID, -1)) + 1
		if i >= 0 && i < len(f.VertexBuffers) {
			f.VertexBuffers[i] = DecodeBuffer(b)
		}
	}

	for _, b := range bnd.All(bundle.TagMesh) {
		f.Meshes = append(f.Meshes, DecodeMesh(b))
	}

	f.MaterialBlobs = make([]*bundle.Blob, max(int(f.Model.MaterialCount), 0))
	for _, b := range bnd.All(bundle.TagMatI) {
		id := int(b.MetaInt32(bundle.TagID, 0))
		if id >= 0 && id < len(f.MaterialBlobs) {
			f.MaterialBlobs[id] = b
		}
	}
	return f, nil
}

// NewerFormat reports whether the bundle is newer than the newest version
// this decoder was written against.
func (f *File) NewerFormat() bool {
	return f.Bundle.Version.IsAtLeast(1, 2)
}

// VisibleMeshes returns the meshes of the given LODs in the main render pass.
func (f *File) VisibleMeshes(lodMask uint16) []*Mesh {
	var meshes []*Mesh
	for _, m := range f.Meshes {
		if m.Visible(lodMask) {
			meshes = append(meshes, m)
		}
	}
	return meshes
}

func (f *File) Assemble(m *Mesh) (*Geometry, error) {
	return Assemble(m, f.Layouts, f.VertexBuffers, f.IndexBuffer, f.Skeleton)
}

// MaterialBlob returns the MatI blob for a mesh material id, or nil.
func (f *File) MaterialBlob(id int16) *bundle.Blob {
	if id < 0 || int(id) >= len(f.MaterialBlobs) {
		return nil
	}
	return f.MaterialBlobs[id]
}
