package converter

import (
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/modelbinconv/geom"
	"github.com/binzume/modelbinconv/gltfutil"
	"github.com/binzume/modelbinconv/importer"
	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	ddsExt     = "MSFT_texture_dds"
	webpExt    = "EXT_texture_webp"
	ddsMime    = "image/vnd-ms.dds"
	webpMime   = "image/webp"
	skeletonNm = "Skeleton"
)

type ModelbinToGLTFOption struct {
	Scale float32 // Default: 1

	// EmbedDDS stores swatchbin textures as DDS images. Otherwise materials
	// keep only their color factors.
	EmbedDDS               bool
	TextureScale           float32
	TextureResolutionLimit int // 0: unlimited
	// TextureWebP re-encodes loose images as WebP instead of PNG.
	TextureWebP bool
	// SkipSkeleton omits the bone nodes.
	SkipSkeleton bool
}

type modelbinToGltf struct {
	*ModelbinToGLTFOption
	*gltf.Document
	log logger.Logger

	materials map[*importer.Material]uint32
	textures  map[*swatchbin.Texture]*uint32
	extUsed   map[string]bool
}

func NewModelbinToGLTFConverter(options *ModelbinToGLTFOption, log logger.Logger) *modelbinToGltf {
	if options == nil {
		options = &ModelbinToGLTFOption{EmbedDDS: true}
	}
	if options.Scale == 0 {
		options.Scale = 1
	}
	if options.TextureScale == 0 {
		options.TextureScale = 1.0
	}
	return &modelbinToGltf{
		ModelbinToGLTFOption: options,
		Document:             gltf.NewDocument(),
		log:                  log,
		materials:            map[*importer.Material]uint32{},
		textures:             map[*swatchbin.Texture]*uint32{},
		extUsed:              map[string]bool{},
	}
}

// Convert builds one scene holding a node per model. The converter is single
// use: every call adds to the same document.
func (m *modelbinToGltf) Convert(models []*importer.Model) (*gltf.Document, error) {
	for _, model := range models {
		node := m.addNode(&gltf.Node{Name: model.Name})
		m.Scenes[0].Nodes = append(m.Scenes[0].Nodes, node)

		for _, mesh := range model.Meshes {
			meshIndex, ok := m.convertMesh(mesh)
			if !ok {
				continue
			}
			child := m.addNode(&gltf.Node{Name: mesh.DisplayName, Mesh: gltf.Index(meshIndex)})
			m.Nodes[node].Children = append(m.Nodes[node].Children, child)
		}
		if len(model.Bones) > 0 && !m.SkipSkeleton {
			skel := m.addBoneNodes(model.Bones)
			m.Nodes[node].Children = append(m.Nodes[node].Children, skel)
		}
	}

	for ext := range m.extUsed {
		m.ExtensionsUsed = append(m.ExtensionsUsed, ext)
	}
	if len(m.Document.Textures) > 0 {
		m.Document.Samplers = []*gltf.Sampler{{}}
	}
	if err := gltfutil.Scale(m.Document, m.Scale); err != nil {
		return nil, err
	}
	return m.Document, nil
}

func (m *modelbinToGltf) addNode(n *gltf.Node) uint32 {
	m.Nodes = append(m.Nodes, n)
	return uint32(len(m.Nodes) - 1)
}

func (m *modelbinToGltf) convertMesh(mesh *importer.Mesh) (uint32, bool) {
	g := mesh.Geometry
	if len(g.Faces) == 0 || g.VertexCount() == 0 {
		m.log.Debug("empty mesh", "mesh", mesh.DisplayName)
		return 0, false
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(m.Document, g.Positions),
		"NORMAL":   modeler.WriteNormal(m.Document, g.Normals),
	}
	for ch, uv := range g.UVs {
		if uv != nil {
			attributes["TEXCOORD_"+strconv.Itoa(ch)] = modeler.WriteTextureCoord(m.Document, uv)
		}
	}
	if g.HasColors {
		attributes["COLOR_0"] = modeler.WriteAccessor(m.Document, gltf.TargetArrayBuffer, g.Colors)
	}

	indices := make([]uint32, 0, len(g.Faces)*3)
	for _, f := range g.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}

	m.Meshes = append(m.Meshes, &gltf.Mesh{
		Name: mesh.DisplayName,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(m.Document, indices)),
			Attributes: attributes,
			Material:   gltf.Index(m.material(mesh.Material)),
		}},
	})
	return uint32(len(m.Meshes) - 1), true
}

func (m *modelbinToGltf) material(mat *importer.Material) uint32 {
	if id, ok := m.materials[mat]; ok {
		return id
	}
	m.Materials = append(m.Materials, m.convertMaterial(mat))
	id := uint32(len(m.Materials) - 1)
	m.materials[mat] = id
	return id
}

func (m *modelbinToGltf) convertMaterial(mat *importer.Material) *gltf.Material {
	c := mat.DiffuseColor
	mm := &gltf.Material{
		Name: mat.DisplayName,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{c[0], c[1], c[2], c[3]},
		},
	}
	if c[3] < 0.99 {
		mm.AlphaMode = gltf.AlphaBlend
	}
	if mat.DiffuseTexture != nil {
		if tex, err := m.addTexture(mat.DiffuseTexture); err == nil && tex != nil {
			mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
				Index: *tex,
			}
		} else if err != nil {
			m.log.Warn("texture", "path", mat.DiffuseTexture.Path, "err", err)
		}
	}
	if mat.NormalTexture != nil {
		if tex, err := m.addTexture(mat.NormalTexture); err == nil && tex != nil {
			mm.NormalTexture = &gltf.NormalTexture{
				Index: tex,
			}
		} else if err != nil {
			m.log.Warn("texture", "path", mat.NormalTexture.Path, "err", err)
		}
	}
	return mm
}

// addTexture returns the texture index, or nil when the texture is not
// exported.
func (m *modelbinToGltf) addTexture(t *swatchbin.Texture) (*uint32, error) {
	if id, ok := m.textures[t]; ok {
		return id, nil
	}
	name := filepath.Base(t.Path)

	var mimeType, ext string
	var r io.Reader
	switch {
	case t.DDS != nil:
		if !m.EmbedDDS {
			m.textures[t] = nil
			return nil, nil
		}
		mimeType, ext = ddsMime, ddsExt
		r = bytes.NewReader(t.DDS)
	default:
		mimeType = "image/png"
		if m.TextureWebP {
			mimeType, ext = webpMime, webpExt
		}
		img, err := decodeImage(t.Raw, name)
		if err != nil {
			m.textures[t] = nil
			return nil, err
		}
		img = scaleImage(img, m.TextureScale, m.TextureResolutionLimit)
		buf, err := encodeImage(img, mimeType)
		if err != nil {
			m.textures[t] = nil
			return nil, err
		}
		r = buf
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	img, err := modeler.WriteImage(m.Document, name, mimeType, r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	m.Buffers[0].ByteLength = uint32(len(m.Buffers[0].Data)) // avoid AddImage bug

	tex := &gltf.Texture{Sampler: gltf.Index(0)}
	if ext != "" {
		// Source stays empty: viewers without the extension show the factor.
		tex.Extensions = map[string]interface{}{ext: map[string]interface{}{"source": img}}
		m.extUsed[ext] = true
	} else {
		tex.Source = gltf.Index(img)
	}
	m.Textures = append(m.Textures, tex)

	id := gltf.Index(uint32(len(m.Textures)) - 1)
	m.textures[t] = id
	return id, nil
}

// yUp maps the source basis onto the glTF basis: (x, y, z) -> (-x, -z, y).
var yUp = geom.Matrix4{
	-1, 0, 0, 0,
	0, 0, 1, 0,
	0, -1, 0, 0,
	0, 0, 0, 1,
}

// addBoneNodes adds every bone under a "Skeleton" node with its bone-to-root
// matrix expressed in the glTF basis.
func (m *modelbinToGltf) addBoneNodes(bones []*importer.Bone) uint32 {
	toSource := yUp.Transposed()
	skel := m.addNode(&gltf.Node{Name: skeletonNm})
	for _, b := range bones {
		mat := yUp.Mul(b.Transform.Mul(toSource))
		n := &gltf.Node{Name: b.Name}
		mat.ToArray(n.Matrix[:])
		child := m.addNode(n)
		m.Nodes[skel].Children = append(m.Nodes[skel].Children, child)
	}
	return skel
}

// ConvertModelbin is a shortcut for converting one imported model.
func ConvertModelbin(model *importer.Model, opts *ModelbinToGLTFOption, log logger.Logger) (*gltf.Document, error) {
	return NewModelbinToGLTFConverter(opts, log).Convert([]*importer.Model{model})
}
