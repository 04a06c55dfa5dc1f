package toycar

import (
	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
)

const (
	HashDiffuseTexture = 0x6DD98CD9
	HashDiffuseColor   = 0xEF5CCE09
	HashNormalTexture  = 0x8C658791
)

// Param is one shader parameter. Only the field matching Type is encoded.
type Param struct {
	Version bundle.Version
	Hash    uint32
	Type    uint8
	Color   [4]float32
	Float   float32
	Bool    bool
	Path    string
	Vec2    [2]float32
	Count   uint32
}

func (p *Param) encode(w *binstream.Writer) {
	v := p.Version
	if v == (bundle.Version{}) {
		v = bundle.Version{Major: 3, Minor: 1}
	}
	w.Uint8(v.Major).Uint8(v.Minor).Uint32(p.Hash)
	if v.IsAtLeast(3, 1) {
		w.Uint8(0)
	}
	w.Uint8(p.Type)
	if v.IsAtLeast(3, 0) {
		w.Zero(16)
	}
	switch p.Type {
	case 0, 5, 9:
		w.Zero(16)
	case 1:
		for _, f := range p.Color {
			w.Float32(f)
		}
	case 2:
		w.Float32(p.Float)
	case 3:
		if p.Bool {
			w.Uint32(1)
		} else {
			w.Uint32(0)
		}
	case 4:
		w.Zero(4)
	case 6:
		w.String7(p.Path).Zero(4)
	case 7:
		w.Zero(8)
		if v.IsAtLeast(1, 1) {
			w.Zero(4)
		}
	case 8:
		w.Uint32(p.Count).Zero(4 * int(p.Count))
	case 11:
		w.Float32(p.Vec2[0]).Float32(p.Vec2[1])
		if !v.IsAtLeast(2, 0) {
			w.Zero(8)
		}
	}
}

func Color(hash uint32, r, g, b, a float32) Param {
	return Param{Hash: hash, Type: 1, Color: [4]float32{r, g, b, a}}
}

func Texture2D(hash uint32, path string) Param {
	return Param{Hash: hash, Type: 6, Path: path}
}

// Params encodes a parameter block for a blob of the given version.
func Params(blobVersion bundle.Version, params ...Param) []byte {
	w := binstream.NewWriter()
	if blobVersion.IsAtLeast(2, 1) {
		w.Uint16(uint16(len(params)))
	} else {
		w.Uint8(uint8(len(params)))
	}
	for i := range params {
		params[i].encode(w)
	}
	return w.Bytes()
}

// Material encodes a material bundle. The same layout is used for the payload
// of a MatI blob and for a standalone materialbin file. An empty parent writes
// no parent blob.
func Material(parent string, params ...Param) []byte {
	b := bundle.NewBuilder(bundle.TagGrub, bundle.Version{Major: 1, Minor: 1})
	if parent != "" {
		b.Add(bundle.TagMATI, bundle.Version{Major: 1, Minor: 0}, binstream.NewWriter().String7(parent).Bytes())
	}
	pv := bundle.Version{Major: 2, Minor: 1}
	b.Add(bundle.TagMTPR, pv, Params(pv, params...))
	return b.Bytes()
}
