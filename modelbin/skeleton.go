package modelbin

import (
	"github.com/binzume/modelbinconv/bundle"
	"github.com/binzume/modelbinconv/geom"
)

type Bone struct {
	Name   string
	Parent int16
	// Transform is bone-to-root once the skeleton is decoded.
	Transform geom.Matrix4
}

type Skeleton struct {
	Bones []*Bone
}

// DecodeSkeleton reads the bone list and composes every bone with its already
// composed parent. A parent index that does not precede the bone is ignored and
// the bone keeps its local transform.
func DecodeSkeleton(b *bundle.Blob) *Skeleton {
	r := b.Stream()
	s := &Skeleton{}
	n := int(r.Uint16())
	for i := 0; i < n && !r.Short(); i++ {
		bone := &Bone{Name: r.String(), Parent: r.Int16()}
		r.Skip(4)
		for j := range bone.Transform {
			bone.Transform[j] = r.Float32()
		}
		if bone.Parent != -1 && int(bone.Parent) >= 0 && int(bone.Parent) < len(s.Bones) {
			// local x parent
			parent := &s.Bones[bone.Parent].Transform
			bone.Transform = *parent.Mul(&bone.Transform)
		}
		s.Bones = append(s.Bones, bone)
	}
	return s
}

func (s *Skeleton) Bone(i int) *Bone {
	if s == nil || i < 0 || i >= len(s.Bones) {
		return nil
	}
	return s.Bones[i]
}
