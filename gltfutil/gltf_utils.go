package gltfutil

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/binzume/modelbinconv/geom"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// Save writes a .glb when path has that extension and .gltf with an
// external .bin buffer otherwise.
func Save(doc *gltf.Document, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, b := range doc.Buffers {
		if b.URI == "" && len(b.Data) > 0 {
			b.URI = fmt.Sprintf("%s_%d.bin", name, i)
		}
	}
	return gltf.Save(doc, path)
}

// Scale multiplies every vertex position and node translation by scale.
func Scale(doc *gltf.Document, scale float32) error {
	if scale == 1 {
		return nil
	}
	return Transform(doc, geom.NewScaleMatrix4(scale, scale, scale))
}

// Transform applies mat to the POSITION accessors and recomputes their bounds.
// Node translations get the linear part of mat only.
func Transform(doc *gltf.Document, mat *geom.Matrix4) error {
	accs := map[uint32]bool{}
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			if a, ok := p.Attributes["POSITION"]; ok {
				accs[a] = true
			}
		}
	}
	for a := range accs {
		acr := doc.Accessors[a]
		if acr.Sparse != nil {
			return errors.Errorf("accessor %d: sparse positions are not supported", a)
		}
		if acr.BufferView == nil {
			continue
		}
		pos, err := modeler.ReadPosition(doc, acr, [][3]float32{})
		if err != nil {
			return errors.Wrapf(err, "accessor %d", a)
		}

		acr.Min = []float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
		acr.Max = []float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
		for i := range pos {
			mat.ApplyTo(geom.NewVector3FromArray(pos[i])).ToArray(pos[i][:])
			for t, v := range pos[i] {
				acr.Min[t] = float32(math.Min(float64(acr.Min[t]), float64(v)))
				acr.Max[t] = float32(math.Max(float64(acr.Max[t]), float64(v)))
			}
		}
		bufferView := doc.BufferViews[*acr.BufferView]
		buffer := doc.Buffers[bufferView.Buffer]
		err = binary.Write(buffer.Data[bufferView.ByteOffset+acr.ByteOffset:], bufferView.ByteStride, pos)
		if err != nil {
			return errors.Wrapf(err, "accessor %d", a)
		}
	}
	for _, node := range doc.Nodes {
		mat.ApplyToDirection(geom.NewVector3FromArray(node.Translation)).ToArray(node.Translation[:])
		t := &geom.Vector3{X: node.Matrix[12], Y: node.Matrix[13], Z: node.Matrix[14]}
		mat.ApplyToDirection(t).ToArray(node.Matrix[12:15])
	}
	return nil
}
