package geom

import (
	"testing"
)

func vec(x, y, z Element) *Vector3 {
	return &Vector3{X: x, Y: y, Z: z}
}

func TestMatrix4Mul(t *testing.T) {
	local := NewMatrix4()
	parent := NewTranslateMatrix4(5, 0, 0)

	// local * parent
	m := parent.Mul(local)
	if *m != *parent {
		t.Error("identity * T should be T", m)
	}

	s := NewScaleMatrix4(2, 2, 2)
	tr := NewTranslateMatrix4(1, 2, 3)
	p := tr.Mul(s).ApplyTo(vec(1, 1, 1))
	if *p != *vec(3, 4, 5) {
		t.Error("scale then translate", p)
	}
	p = s.Mul(tr).ApplyTo(vec(1, 1, 1))
	if *p != *vec(4, 6, 8) {
		t.Error("translate then scale", p)
	}
}

func TestMatrix4ApplyToDirection(t *testing.T) {
	m := NewTranslateMatrix4(10, 20, 30).Mul(NewScaleMatrix4(1, 2, 3))
	d := m.ApplyToDirection(vec(1, 1, 1))
	if *d != *vec(1, 2, 3) {
		t.Error("direction must ignore translation", d)
	}
	if *m.Translation() != *vec(10, 20, 30) {
		t.Error("Translation", m.Translation())
	}
}

func TestMatrix4Transposed(t *testing.T) {
	m := NewTranslateMatrix4(1, 2, 3)
	tt := m.Transposed()
	if tt[3] != 1 || tt[7] != 2 || tt[11] != 3 || *tt.Transposed() != *m {
		t.Error("Transposed", tt)
	}
}

func TestVector3(t *testing.T) {
	zero := vec(0, 0, 0)
	if zero.Len() != 0 {
		t.Error("len != 0")
	}
	if *zero.Normalize() != *vec(0, 0, 0) {
		t.Error("zero vector should stay zero", zero)
	}
	if *vec(0, 3, 4).Normalize() != *vec(0, 0.6, 0.8) {
		t.Error("Normalize")
	}
	if *vec(1, 2, 3).ToYUp() != *vec(-1, -3, 2) {
		t.Error("ToYUp", vec(1, 2, 3).ToYUp())
	}
	if *NewVector3FromArray([3]Element{1, 2, 3}) != *vec(1, 2, 3) {
		t.Error("NewVector3FromArray")
	}
}
