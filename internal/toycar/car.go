package toycar

import (
	"os"
	"path/filepath"

	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
)

// Quad vertex slot: float3 position, half4 normal, unorm16x2 uv, unorm8x4 color.
const QuadStride = 12 + 8 + 4 + 4

var QuadPositions = [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}

var QuadLayout = []Element{
	{Semantic: "POSITION", Format: 6},
	{Semantic: "NORMAL", Format: 10},
	{Semantic: "TEXCOORD", Format: 35},
	{Semantic: "COLOR", Format: 28},
}

func quadVertices() []byte {
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	w := binstream.NewWriter()
	for i, p := range QuadPositions {
		w.Float32(p[0]).Float32(p[1]).Float32(p[2])
		w.Float16(0).Float16(0).Float16(1).Float16(0)
		w.UNorm16(uvs[i][0]).UNorm16(uvs[i][1])
		w.UNorm8(1).UNorm8(0).UNorm8(0).UNorm8(1)
	}
	return w.Bytes()
}

// QuadMesh is a LOD0 mesh drawing the two triangles of the quad.
func QuadMesh(name string, lods uint16) *Mesh {
	m := &Mesh{
		Name:       name,
		Version:    bundle.Version{Major: 1, Minor: 9},
		LODs:       lods,
		RenderPass: 0x10,
		IndexCount: 6,
		Bindings:   []Binding{{BufferID: 0, InputSlot: 0, Stride: QuadStride}},
		Scale:      [4]float32{1, 1, 1, 1},
	}
	for i := range m.UVTransforms {
		m.UVTransforms[i] = [4]float32{0, 1, 0, 1}
	}
	return m
}

// Quad builds a modelbin holding the given meshes over one quad vertex buffer
// and one material slot. material is the MatI payload; nil writes no MatI blob.
func Quad(material []byte, meshes ...*Mesh) []byte {
	if len(meshes) == 0 {
		meshes = []*Mesh{QuadMesh("body", 1)}
	}
	v10 := bundle.Version{Major: 1, Minor: 0}
	b := bundle.NewBuilder(bundle.TagGrub, bundle.Version{Major: 1, Minor: 1}).
		Add(bundle.TagModl, bundle.Version{Major: 1, Minor: 2}, Model(int16(len(meshes)), 2, 1, 1, 1)).
		Add(bundle.TagSkel, v10, Skeleton(Bone{Name: "root", Parent: -1, Transform: Identity()})).
		Add(bundle.TagVLay, v10, Layout(QuadLayout...)).
		Add(bundle.TagIndB, v10, Buffer(2, Indices16(0, 1, 2, 0, 2, 3))).
		Add(bundle.TagVerB, v10, Buffer(QuadStride, quadVertices()), bundle.MetaInt32(bundle.TagID, 0))
	for _, m := range meshes {
		b.Add(bundle.TagMesh, m.Version, m.Encode(), bundle.MetaString(bundle.TagName, m.Name))
	}
	if material != nil {
		b.Add(bundle.TagMatI, v10, material,
			bundle.MetaString(bundle.TagName, "paint"), bundle.MetaInt32(bundle.TagID, 0))
	}
	return b.Bytes()
}

const (
	CarPaintRef    = `Game:\Media\Cars\_library\materials\carpaint.materialbin`
	BodyTextureRef = `Game:\Media\Cars\Textures\body_diff.swatchbin`
)

// WriteCar writes a car folder: body.modelbin whose material inherits a red
// diffuse color from a library material and references a BC3 swatchbin.
func WriteCar(dir string) error {
	files := map[string][]byte{
		"body.modelbin": Quad(Material(CarPaintRef, Texture2D(HashDiffuseTexture, BodyTextureRef))),
		filepath.Join("_library", "carpaint.materialbin"): Material("", Color(HashDiffuseColor, 1, 0, 0, 1)),
		filepath.Join("textures", "body_diff.swatchbin"):  Swatchbin(BC3Texture(0xab)),
	}
	for name, data := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
