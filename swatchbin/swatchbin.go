// Package swatchbin decodes swatchbin texture bundles into DDS images.
package swatchbin

import (
	"encoding/binary"

	"github.com/binzume/modelbinconv/bundle"
	"github.com/pkg/errors"
)

var (
	ErrNoTextureBlob = errors.New("no TXCB blob")
	ErrNoHeader      = errors.New("no TXCH header")
	ErrUnresolved    = errors.New("texture not found")
)

// Header is the TXCH metadata of a texture blob. Width, Height and LinearSize
// are kept as stored since they are copied into the DDS header unchanged.
type Header struct {
	GUID         string
	Width        [4]byte
	Height       [4]byte
	Mips         uint8
	Transcoding  uint32
	ColorProfile uint32
	Encoding     uint32
	LinearSize   [4]byte
}

func readHeader(m *bundle.Metadata) *Header {
	r := m.Reader()
	h := &Header{}
	r.Skip(8)
	h.GUID = bundle.FormatGUID(r.Read(16))
	copy(h.Width[:], r.Read(4))
	copy(h.Height[:], r.Read(4))
	r.Skip(6)
	h.Mips = r.Uint8()
	r.Skip(1)
	h.Transcoding = r.Uint32()
	r.Skip(4)
	h.ColorProfile = r.Uint32()
	r.Skip(12)
	h.Encoding = r.Uint32()
	r.Skip(8)
	copy(h.LinearSize[:], r.Read(4))
	return h
}

func (h *Header) W() uint32 { return binary.LittleEndian.Uint32(h.Width[:]) }
func (h *Header) H() uint32 { return binary.LittleEndian.Uint32(h.Height[:]) }

func (h *Header) FormatEncoded() uint32 {
	return FormatEncoded(h.Transcoding, h.Encoding)
}

func (h *Header) DXGIFormat() uint32 {
	return MapFormat(h.FormatEncoded(), h.ColorProfile != 0)
}

// Texture is a loaded texture file. Swatchbin textures and loose DDS files
// carry DDS; other loose images carry only Raw.
type Texture struct {
	Path string
	*Header
	DXGI uint32
	// DDS is a complete DDS file.
	DDS []byte
	Raw []byte
}

// Loose reports whether the texture came from a plain image file.
func (t *Texture) Loose() bool {
	return t.Header == nil
}

func (t *Texture) FormatName() string {
	if t.Loose() {
		return "image"
	}
	return FormatName(t.DXGI)
}

// Decode builds a texture from the first TXCB blob of a swatchbin bundle.
func Decode(bnd *bundle.Bundle) (*Texture, error) {
	blob := bnd.First(bundle.TagTXCB)
	if blob == nil {
		return nil, ErrNoTextureBlob
	}
	m, ok := blob.Meta(bundle.TagTXCH)
	if !ok {
		return nil, ErrNoHeader
	}
	h := readHeader(m)
	t := &Texture{Header: h, DXGI: h.DXGIFormat()}
	t.DDS = BuildDDS(h, t.DXGI, blob.Data())
	return t, nil
}

// Load reads and decodes a swatchbin file.
func Load(path string) (*Texture, error) {
	f, err := bundle.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Decode(f.Bundle)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	t.Path = path
	return t, nil
}
