package toycar

import (
	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
)

type Texture struct {
	GUID         [16]byte
	Width        uint32
	Height       uint32
	Mips         uint8
	Transcoding  uint32
	ColorProfile uint32
	Encoding     uint32
	LinearSize   uint32
	Payload      []byte
}

// Header encodes the TXCH metadata value.
func (t *Texture) Header() []byte {
	w := binstream.NewWriter()
	w.Zero(8).Write(t.GUID[:])
	w.Uint32(t.Width).Uint32(t.Height).Zero(6).Uint8(t.Mips).Zero(1)
	w.Uint32(t.Transcoding).Zero(4).Uint32(t.ColorProfile).Zero(12)
	w.Uint32(t.Encoding).Zero(8).Uint32(t.LinearSize)
	return w.Bytes()
}

func Swatchbin(t *Texture) []byte {
	return bundle.NewBuilder(bundle.TagGrub, bundle.Version{Major: 1, Minor: 1}).
		Add(bundle.TagTXCB, bundle.Version{Major: 1, Minor: 0}, t.Payload,
			bundle.MetaEntry{Tag: bundle.TagTXCH, Data: t.Header()}).
		Bytes()
}

// BC3Texture is a 4x4 sRGB BC3 texture with a single block of payload.
func BC3Texture(guid byte) *Texture {
	t := &Texture{
		Width: 4, Height: 4, Mips: 1,
		ColorProfile: 1, Encoding: 2,
		LinearSize: 16,
		Payload:    make([]byte, 16),
	}
	for i := range t.GUID {
		t.GUID[i] = guid
	}
	for i := range t.Payload {
		t.Payload[i] = byte(i)
	}
	return t
}
