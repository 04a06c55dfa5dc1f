// Package material decodes materialbin shader parameters and resolves
// material instances through their parent chain.
package material

import (
	"io"

	"github.com/binzume/modelbinconv/binstream"
	"github.com/binzume/modelbinconv/bundle"
	"github.com/pkg/errors"
)

var ErrUnknownParamType = errors.New("unknown shader parameter type")

type ParamType uint8

const (
	ParamVector        ParamType = 0
	ParamColor         ParamType = 1
	ParamFloat         ParamType = 2
	ParamBool          ParamType = 3
	ParamInt           ParamType = 4
	ParamTexture2D     ParamType = 6
	ParamSampler       ParamType = 7
	ParamColorGradient ParamType = 8
	ParamVector2       ParamType = 11
)

var paramTypeNames = map[ParamType]string{
	ParamVector:        "Vector",
	5:                  "Vector",
	9:                  "Vector",
	ParamColor:         "Color",
	ParamFloat:         "Float",
	ParamBool:          "Bool",
	ParamInt:           "Int",
	ParamTexture2D:     "Texture2D",
	ParamSampler:       "Sampler",
	ParamColorGradient: "ColorGradient",
	ParamVector2:       "Vector2",
}

func (t ParamType) String() string {
	if s, ok := paramTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// Parameter is one shader parameter. Only the value field matching Type is set.
type Parameter struct {
	Version bundle.Version
	Hash    uint32
	Type    ParamType
	GUID    []byte

	Color [4]float32
	Float float32
	Bool  bool
	Vec2  [2]float32
	Path  string
}

// Value returns the decoded value, or nil for the types that carry none.
func (p *Parameter) Value() any {
	switch p.Type {
	case ParamColor:
		return p.Color
	case ParamFloat:
		return p.Float
	case ParamBool:
		return p.Bool
	case ParamVector2:
		return p.Vec2
	case ParamTexture2D:
		return p.Path
	}
	return nil
}

// DecodeParameter reads one parameter. An unknown type code leaves the reader
// at an unknown position within the block.
func DecodeParameter(r *binstream.Reader) (*Parameter, error) {
	p := &Parameter{Version: bundle.ReadVersion(r)}
	v := p.Version
	p.Hash = r.Uint32()
	if v.IsAtLeast(3, 1) && r.Uint8() != 0 {
		r.Skip(4)
	}
	p.Type = ParamType(r.Uint8())
	if v.IsAtLeast(3, 0) {
		p.GUID = append([]byte(nil), r.Read(16)...)
	}

	switch p.Type {
	case ParamVector, 5, 9:
		r.Skip(16)
	case ParamColor:
		for i := range p.Color {
			p.Color[i] = r.Float32()
		}
	case ParamFloat:
		p.Float = r.Float32()
	case ParamBool:
		p.Bool = r.Uint32() != 0
	case ParamInt:
		r.Skip(4)
	case ParamTexture2D:
		p.Path = r.String7()
		r.Skip(4)
	case ParamSampler:
		r.Skip(8)
		if v.IsAtLeast(1, 1) {
			r.Skip(4)
		}
	case ParamColorGradient:
		n := r.Uint32()
		r.Seek(4*int64(n), io.SeekCurrent)
	case ParamVector2:
		p.Vec2[0] = r.Float32()
		p.Vec2[1] = r.Float32()
		if !v.IsAtLeast(2, 0) {
			r.Skip(8)
		}
	default:
		return p, errors.Wrapf(ErrUnknownParamType, "type %d hash 0x%08X", p.Type, p.Hash)
	}
	return p, nil
}

// DecodeParameters reads a parameter block. The count is a u16 from blob
// version 2.1 on, a u8 before. Decoding stops at the first unknown type; the
// parameters read so far are returned with the error.
func DecodeParameters(b *bundle.Blob) ([]*Parameter, error) {
	r := b.Stream()
	var n int
	if b.Version.IsAtLeast(2, 1) {
		n = int(r.Uint16())
	} else {
		n = int(r.Uint8())
	}
	params := make([]*Parameter, 0, n)
	for i := 0; i < n && !r.Short(); i++ {
		p, err := DecodeParameter(r)
		if err != nil {
			return params, err
		}
		params = append(params, p)
	}
	return params, nil
}
