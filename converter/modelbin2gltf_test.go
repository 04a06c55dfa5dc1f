package converter

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/binzume/modelbinconv/geom"
	"github.com/binzume/modelbinconv/gltfutil"
	"github.com/binzume/modelbinconv/importer"
	"github.com/binzume/modelbinconv/internal/toycar"
	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/material"
	"github.com/binzume/modelbinconv/modelbin"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func importCar(t *testing.T) []*importer.Model {
	t.Helper()
	dir := t.TempDir()
	if err := toycar.WriteCar(dir); err != nil {
		t.Fatal(err)
	}
	results, err := importer.New(importer.DefaultOptions(dir), logger.Discard()).ImportAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var models []*importer.Model
	for _, r := range results {
		if r.Err != nil {
			t.Fatal(r.Err)
		}
		models = append(models, r.Model)
	}
	return models
}

func findNode(doc *gltf.Document, name string) *gltf.Node {
	for _, n := range doc.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func TestConvertCar(t *testing.T) {
	doc, err := NewModelbinToGLTFConverter(nil, logger.Discard()).Convert(importCar(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Meshes) != 1 || len(doc.Materials) != 1 || len(doc.Textures) != 1 || len(doc.Images) != 1 {
		t.Fatal("counts", len(doc.Meshes), len(doc.Materials), len(doc.Textures), len(doc.Images))
	}

	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{"POSITION", "NORMAL", "TEXCOORD_0", "COLOR_0"} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Error("missing attribute", attr)
		}
	}
	if _, ok := prim.Attributes["TEXCOORD_1"]; ok {
		t.Error("absent uv channel exported")
	}
	if doc.Accessors[*prim.Indices].Count != 6 || doc.Accessors[prim.Attributes["POSITION"]].Count != 4 {
		t.Error("accessor counts")
	}

	mat := doc.Materials[0]
	if mat.Name != "carpaint" || *mat.PBRMetallicRoughness.BaseColorFactor != [4]float32{1, 0, 0, 1} {
		t.Error("material", mat.Name, mat.PBRMetallicRoughness.BaseColorFactor)
	}
	if mat.PBRMetallicRoughness.BaseColorTexture == nil || mat.PBRMetallicRoughness.BaseColorTexture.Index != 0 {
		t.Error("base color texture")
	}
	if doc.Images[0].MimeType != ddsMime || doc.Textures[0].Source != nil || doc.Textures[0].Extensions[ddsExt] == nil {
		t.Error("dds texture", doc.Images[0].MimeType, doc.Textures[0])
	}
	if len(doc.ExtensionsUsed) != 1 || doc.ExtensionsUsed[0] != ddsExt {
		t.Error("extensions", doc.ExtensionsUsed)
	}
	if bv := doc.BufferViews[*doc.Images[0].BufferView]; bv.ByteLength != uint32(swatchbin.DDSHeaderSize+16) {
		t.Error("dds size", bv.ByteLength)
	}

	body := findNode(doc, "body")
	if body == nil || len(body.Children) != 2 || doc.Nodes[body.Children[0]].Name != "body carpaint" {
		t.Fatal("node tree", body)
	}
	skel := doc.Nodes[body.Children[1]]
	if skel.Name != "Skeleton" || len(skel.Children) != 1 || doc.Nodes[skel.Children[0]].Name != "root" {
		t.Error("skeleton", skel)
	}

	out := filepath.Join(t.TempDir(), "car.glb")
	if err := gltfutil.Save(doc, out); err != nil {
		t.Fatal(err)
	}
	loaded, err := gltfutil.Load(out)
	if err != nil || len(loaded.Meshes) != 1 || len(loaded.Images) != 1 {
		t.Error("reload", err)
	}
}

func TestConvertWithoutDDS(t *testing.T) {
	doc, err := NewModelbinToGLTFConverter(&ModelbinToGLTFOption{}, logger.Discard()).Convert(importCar(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Textures) != 0 || len(doc.ExtensionsUsed) != 0 || doc.Materials[0].PBRMetallicRoughness.BaseColorTexture != nil {
		t.Error("dds should be skipped", doc.Textures)
	}
}

func TestConvertScale(t *testing.T) {
	doc, err := NewModelbinToGLTFConverter(&ModelbinToGLTFOption{Scale: 2}, logger.Discard()).Convert(importCar(t))
	if err != nil {
		t.Fatal(err)
	}
	acr := doc.Accessors[doc.Meshes[0].Primitives[0].Attributes["POSITION"]]
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		t.Fatal(err)
	}
	// (1, 1, 0) in source axes
	if pos[2] != [3]float32{-2, 0, 2} {
		t.Error("scaled position", pos)
	}
	if acr.Max[2] != 2 || acr.Min[0] != -2 {
		t.Error("bounds", acr.Min, acr.Max)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 40), uint8(y * 40), 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func looseModel(tex *swatchbin.Texture) *importer.Model {
	g := &modelbin.Geometry{
		Faces:     [][3]uint32{{0, 1, 2}},
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
	}
	mat := &importer.Material{Material: material.Default(), DisplayName: "decal", NormalTexture: tex}
	return &importer.Model{Name: "decal", Meshes: []*importer.Mesh{{Geometry: g, DisplayName: "decal", Material: mat}}}
}

func TestConvertLooseTexture(t *testing.T) {
	tex := &swatchbin.Texture{Path: "decal_nrm.png", Raw: pngBytes(t, 8, 4)}
	opts := &ModelbinToGLTFOption{TextureResolutionLimit: 4}
	doc, err := NewModelbinToGLTFConverter(opts, logger.Discard()).Convert([]*importer.Model{looseModel(tex)})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Images) != 1 || doc.Images[0].MimeType != "image/png" || doc.Textures[0].Source == nil {
		t.Fatal("png image", doc.Images)
	}
	if doc.Materials[0].NormalTexture == nil || *doc.Materials[0].NormalTexture.Index != 0 {
		t.Error("normal texture")
	}
	bv := doc.BufferViews[*doc.Images[0].BufferView]
	data := doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 4 || cfg.Height != 2 {
		t.Error("limited size", cfg, err)
	}
}

func TestConvertLooseTextureWebP(t *testing.T) {
	tex := &swatchbin.Texture{Path: "decal.png", Raw: pngBytes(t, 4, 4)}
	doc, err := NewModelbinToGLTFConverter(&ModelbinToGLTFOption{TextureWebP: true}, logger.Discard()).
		Convert([]*importer.Model{looseModel(tex)})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Images) != 1 || doc.Images[0].MimeType != webpMime || doc.Textures[0].Extensions[webpExt] == nil {
		t.Error("webp image", doc.Images)
	}
}

func TestConvertBadTexture(t *testing.T) {
	tex := &swatchbin.Texture{Path: "broken.png", Raw: []byte("nope")}
	doc, err := NewModelbinToGLTFConverter(nil, logger.Discard()).Convert([]*importer.Model{looseModel(tex)})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Images) != 0 || doc.Materials[0].NormalTexture != nil {
		t.Error("undecodable texture should be dropped")
	}
}

func TestBoneMatrix(t *testing.T) {
	bones := []*importer.Bone{{Name: "wheel", Parent: -1, Transform: *geom.NewTranslateMatrix4(1, 2, 3)}}
	model := &importer.Model{Name: "m", Bones: bones}
	doc, err := NewModelbinToGLTFConverter(nil, logger.Discard()).Convert([]*importer.Model{model})
	if err != nil {
		t.Fatal(err)
	}
	n := findNode(doc, "wheel")
	if n == nil {
		t.Fatal("no bone node")
	}
	if n.Matrix[12] != -1 || n.Matrix[13] != -3 || n.Matrix[14] != 2 || n.Matrix[0] != 1 || n.Matrix[5] != 1 || n.Matrix[10] != 1 {
		t.Error("matrix", n.Matrix)
	}
}
