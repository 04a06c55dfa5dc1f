package swatchbin

import (
	"fmt"

	"github.com/binzume/modelbinconv/binstream"
)

// DXGI_FORMAT values produced by swatchbin textures.
const (
	DXGIUnknown           = 0
	DXGIR8G8B8A8UNorm     = 28
	DXGIR8G8B8A8UNormSRGB = 29
	DXGIBC1UNorm          = 71
	DXGIBC1UNormSRGB      = 72
	DXGIBC2UNorm          = 74
	DXGIBC2UNormSRGB      = 75
	DXGIBC3UNorm          = 77
	DXGIBC3UNormSRGB      = 78
	DXGIBC4UNorm          = 80
	DXGIBC4SNorm          = 81
	DXGIBC5UNorm          = 83
	DXGIBC5SNorm          = 84
	DXGIBC6HUF16          = 95
	DXGIBC6HSF16          = 96
	DXGIBC7UNorm          = 98
	DXGIBC7UNormSRGB      = 99
)

var dxgiNames = map[uint32]string{
	DXGIR8G8B8A8UNorm:     "R8G8B8A8_UNORM",
	DXGIR8G8B8A8UNormSRGB: "R8G8B8A8_UNORM_SRGB",
	DXGIBC1UNorm:          "BC1_UNORM",
	DXGIBC1UNormSRGB:      "BC1_UNORM_SRGB",
	DXGIBC2UNorm:          "BC2_UNORM",
	DXGIBC2UNormSRGB:      "BC2_UNORM_SRGB",
	DXGIBC3UNorm:          "BC3_UNORM",
	DXGIBC3UNormSRGB:      "BC3_UNORM_SRGB",
	DXGIBC4UNorm:          "BC4_UNORM",
	DXGIBC4SNorm:          "BC4_SNORM",
	DXGIBC5UNorm:          "BC5_UNORM",
	DXGIBC5SNorm:          "BC5_SNORM",
	DXGIBC6HUF16:          "BC6H_UF16",
	DXGIBC6HSF16:          "BC6H_SF16",
	DXGIBC7UNorm:          "BC7_UNORM",
	DXGIBC7UNormSRGB:      "BC7_UNORM_SRGB",
}

func FormatName(dxgi uint32) string {
	if s, ok := dxgiNames[dxgi]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", dxgi)
}

// formats maps an encoded format to its linear and sRGB DXGI formats. Entries
// without an sRGB variant repeat the linear one.
var formats = map[uint32][2]uint32{
	0:  {DXGIBC1UNorm, DXGIBC1UNormSRGB},
	1:  {DXGIBC2UNorm, DXGIBC2UNormSRGB},
	2:  {DXGIBC3UNorm, DXGIBC3UNormSRGB},
	3:  {DXGIBC4UNorm, DXGIBC4UNorm},
	4:  {DXGIBC4SNorm, DXGIBC4SNorm},
	5:  {DXGIBC5UNorm, DXGIBC5UNorm},
	6:  {DXGIBC5SNorm, DXGIBC5SNorm},
	7:  {DXGIBC6HUF16, DXGIBC6HUF16},
	8:  {DXGIBC6HSF16, DXGIBC6HSF16},
	9:  {DXGIBC7UNorm, DXGIBC7UNormSRGB},
	13: {DXGIR8G8B8A8UNorm, DXGIR8G8B8A8UNormSRGB},
}

// FormatEncoded combines the transcoding and encoding codes into one format
// selector.
func FormatEncoded(transcoding, encoding uint32) uint32 {
	if transcoding <= 1 {
		return encoding
	}
	return transcoding - 2
}

// MapFormat returns the DXGI format for an encoded format, or DXGIUnknown.
func MapFormat(formatEncoded uint32, srgb bool) uint32 {
	f, ok := formats[formatEncoded]
	if !ok {
		return DXGIUnknown
	}
	if srgb {
		return f[1]
	}
	return f[0]
}

const (
	ddsMagic            = "DDS "
	ddsHeaderSize       = 0x7C
	ddsFlags            = 0x000A1007 // caps, height, width, pixel format, mip count, linear size
	ddsPixelFormatSize  = 0x20
	ddsPixelFormatFlags = 0x4 // DDPF_FOURCC
	dx10FourCC          = "DX10"
	ddsCaps             = 0x00401008 // texture, mipmap, complex
	dx10Dimension       = 3          // D3D10_RESOURCE_DIMENSION_TEXTURE2D
	dx10MiscFlags2      = 3

	// DDSHeaderSize is the size of the magic, header and DX10 extension.
	DDSHeaderSize = 148
)

// BuildDDS wraps block-compressed pixel data in a DDS container with a DX10
// extension header. Width, height and linear size are copied verbatim.
func BuildDDS(h *Header, dxgi uint32, payload []byte) []byte {
	w := binstream.NewWriter()
	w.Write([]byte(ddsMagic)).Uint32(ddsHeaderSize).Uint32(ddsFlags)
	w.Write(h.Height[:]).Write(h.Width[:]).Write(h.LinearSize[:])
	w.Uint32(1)
	w.Uint8(h.Mips).Zero(3)
	w.Zero(44)
	w.Uint32(ddsPixelFormatSize).Uint32(ddsPixelFormatFlags).Write([]byte(dx10FourCC)).Zero(20)
	w.Uint32(ddsCaps).Zero(16)
	w.Uint32(dxgi).Uint32(dx10Dimension).Uint32(0).Uint32(1).Uint32(dx10MiscFlags2)
	return w.Write(payload).Bytes()
}
