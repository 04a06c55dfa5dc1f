// Package inspect builds printable summaries of bundle files.
package inspect

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/binzume/modelbinconv/bundle"
	"github.com/binzume/modelbinconv/material"
	"github.com/binzume/modelbinconv/modelbin"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
)

type Meta struct {
	Tag   string `json:"tag"`
	Size  int    `json:"size"`
	Value string `json:"value"`
}

type Blob struct {
	Tag     string `json:"tag"`
	Version string `json:"version"`
	Size    int    `json:"size"`
	Meta    []Meta `json:"meta,omitempty"`
}

type Bundle struct {
	Tag       string `json:"tag"`
	Version   string `json:"version"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated,omitempty"`
	Blobs     []Blob `json:"blobs"`
}

type Layout struct {
	Elements []string `json:"elements"`
}

type Mesh struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Material   int16  `json:"material"`
	LODs       uint16 `json:"lods"`
	RenderPass uint16 `json:"render_pass"`
	Layout     uint32 `json:"layout"`
	Indices    uint32 `json:"indices"`
	Visible    bool   `json:"visible"`
}

type Bone struct {
	Name   string `json:"name"`
	Parent int16  `json:"parent"`
}

type Model struct {
	Meshes    int16      `json:"mesh_count"`
	Buffers   int16      `json:"buffer_count"`
	Layouts   int16      `json:"layout_count"`
	Materials int16      `json:"material_count"`
	LODs      uint16     `json:"lods"`
	Layout    []Layout   `json:"layouts"`
	Mesh      []Mesh     `json:"meshes"`
	Bones     []Bone     `json:"bones,omitempty"`
	Material  []Material `json:"materials,omitempty"`
}

type Param struct {
	Hash  string `json:"hash"`
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

type Material struct {
	Name   string  `json:"name,omitempty"`
	Parent string  `json:"parent,omitempty"`
	Params []Param `json:"params"`
	Error  string  `json:"error,omitempty"`
}

type Texture struct {
	GUID      string `json:"guid"`
	Width     uint32 `json:"width"`
	Height    uint32 `json:"height"`
	Mips      uint8  `json:"mips"`
	Format    string `json:"format"`
	DXGI      uint32 `json:"dxgi"`
	Encoding  uint32 `json:"encoding"`
	SRGB      bool   `json:"srgb"`
	DataBytes int    `json:"data_bytes"`
}

// Report is the summary of one file. Only the section matching the file kind
// is set besides Bundle.
type Report struct {
	Path     string    `json:"path"`
	Bundle   *Bundle   `json:"bundle"`
	Model    *Model    `json:"model,omitempty"`
	Material *Material `json:"material,omitempty"`
	Texture  *Texture  `json:"texture,omitempty"`
}

// File reads and summarizes path. The file kind is taken from the extension.
func File(path string) (*Report, error) {
	f, err := bundle.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, f.Bundle)
}

func Decode(path string, bnd *bundle.Bundle) (*Report, error) {
	r := &Report{Path: path, Bundle: Summarize(bnd)}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".modelbin":
		mf, err := modelbin.Decode(bnd)
		if err != nil {
			return r, err
		}
		r.Model = ModelOf(mf)
	case ".materialbin":
		r.Material = MaterialOf(bnd)
	case ".swatchbin":
		tex, err := swatchbin.Decode(bnd)
		if err != nil {
			return r, err
		}
		r.Texture = TextureOf(tex)
	}
	return r, nil
}

func metaValue(data []byte) string {
	printable := len(data) > 0
	for _, c := range data {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		return string(data)
	}
	if len(data) > 32 {
		return fmt.Sprintf("%x...", data[:32])
	}
	return fmt.Sprintf("%x", data)
}

func Summarize(bnd *bundle.Bundle) *Bundle {
	s := &Bundle{
		Tag:       bnd.Tag.String(),
		Version:   bnd.Version.String(),
		Count:     bnd.Count(),
		Truncated: bnd.Truncated,
	}
	for _, tag := range bnd.Tags() {
		for _, b := range bnd.All(tag) {
			blob := Blob{Tag: tag.String(), Version: b.Version.String(), Size: len(b.Data())}
			for _, mt := range b.MetaTags() {
				m, _ := b.Meta(mt)
				blob.Meta = append(blob.Meta, Meta{Tag: mt.String(), Size: len(m.Bytes()), Value: metaValue(m.Bytes())})
			}
			s.Blobs = append(s.Blobs, blob)
		}
	}
	return s
}

func ModelOf(mf *modelbin.File) *Model {
	m := &Model{
		Meshes:    mf.Model.MeshCount,
		Buffers:   mf.Model.BufferCount,
		Layouts:   mf.Model.VertexLayoutCount,
		Materials: mf.Model.MaterialCount,
		LODs:      mf.Model.LODs,
	}
	for _, l := range mf.Layouts {
		var elems []string
		for _, e := range l.Elements {
			elems = append(elems, fmt.Sprintf("%s slot=%d %s", e.Key(), e.InputSlot, swatchbin.FormatName(e.Format)))
		}
		m.Layout = append(m.Layout, Layout{Elements: elems})
	}
	for _, mesh := range mf.Meshes {
		m.Mesh = append(m.Mesh, Mesh{
			Name:       mesh.Name,
			Version:    mesh.Version.String(),
			Material:   mesh.MaterialID,
			LODs:       mesh.LODs,
			RenderPass: mesh.RenderPass,
			Layout:     mesh.VertexLayoutID,
			Indices:    mesh.IndexCount,
			Visible:    mesh.RenderPass&modelbin.RenderPassMain != 0,
		})
	}
	if mf.Skeleton != nil {
		for _, b := range mf.Skeleton.Bones {
			m.Bones = append(m.Bones, Bone{Name: b.Name, Parent: b.Parent})
		}
	}
	for _, b := range mf.MaterialBlobs {
		if b == nil {
			continue
		}
		mat := MaterialOf(bundle.Decode(b.Data()))
		mat.Name = b.MetaString(bundle.TagName, material.DefaultName)
		m.Material = append(m.Material, *mat)
	}
	return m
}

// MaterialOf lists a material bundle's own parameters. The parent chain is
// not followed.
func MaterialOf(bnd *bundle.Bundle) *Material {
	def, err := material.ReadDefinition(bnd)
	m := &Material{Parent: def.Parent, Params: []Param{}}
	if err != nil {
		m.Error = err.Error()
	}
	for _, p := range def.Params {
		m.Params = append(m.Params, Param{
			Hash:  fmt.Sprintf("0x%08X", p.Hash),
			Type:  p.Type.String(),
			Value: p.Value(),
		})
	}
	return m
}

func TextureOf(tex *swatchbin.Texture) *Texture {
	if tex.Loose() {
		return &Texture{Format: tex.FormatName(), DataBytes: len(tex.Raw)}
	}
	return &Texture{
		GUID:      tex.GUID,
		Width:     tex.W(),
		Height:    tex.H(),
		Mips:      tex.Mips,
		Format:    tex.FormatName(),
		DXGI:      tex.DXGI,
		Encoding:  tex.Encoding,
		SRGB:      tex.ColorProfile != 0,
		DataBytes: len(tex.DDS) - swatchbin.DDSHeaderSize,
	}
}

func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump writes the fully decoded structures of path, including raw views.
func Dump(w io.Writer, path string) error {
	f, err := bundle.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".modelbin":
		mf, err := modelbin.Decode(f.Bundle)
		if err != nil {
			return err
		}
		spewConfig.Fdump(w, mf.Model, mf.Layouts, mf.Meshes, mf.Skeleton)
	case ".materialbin":
		def, err := material.ReadDefinition(f.Bundle)
		spewConfig.Fdump(w, def)
		return err
	case ".swatchbin":
		tex, err := swatchbin.Decode(f.Bundle)
		if err != nil {
			return err
		}
		spewConfig.Fdump(w, tex.Header, tex.DXGI)
	default:
		spewConfig.Fdump(w, Summarize(f.Bundle))
	}
	return nil
}
