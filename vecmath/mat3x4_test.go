package vecmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentityTransformPreservesPoint(t *testing.T) {
	m := Identity3x4()
	p := Vec3{1, 2, 3}
	got := m.TransformPoint(p)
	if got != p {
		t.Errorf("identity transform changed point: got %v, want %v", got, p)
	}
}

func TestTranslationTransformMovesPoint(t *testing.T) {
	m := NewMat3x4FromRows(
		[4]float32{1, 0, 0, 10},
		[4]float32{0, 1, 0, 20},
		[4]float32{0, 0, 1, 30},
	)
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{11, 21, 31}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTranslationDoesNotAffectVector(t *testing.T) {
	m := NewMat3x4FromRows(
		[4]float32{1, 0, 0, 10},
		[4]float32{0, 1, 0, 20},
		[4]float32{0, 0, 1, 30},
	)
	v := Vec3{1, 1, 1}
	got := m.TransformVector(v)
	if got != v {
		t.Errorf("translation leaked into vector transform: got %v, want %v", got, v)
	}
}

func TestInvertRoundTripsThroughIdentity(t *testing.T) {
	m := NewMat3x4FromRows(
		[4]float32{2, 0, 0, 5},
		[4]float32{0, 3, 0, -7},
		[4]float32{0, 0, 1, 1},
	)
	inv := m.Invert()
	p := Vec3{4, -2, 9}

	roundTripped := inv.TransformPoint(m.TransformPoint(p))
	if dist := roundTripped.Sub(p).Len(); dist > 1e-3 {
		t.Errorf("M^-1(M(p)) = %v, want %v", roundTripped, p)
	}
}

func TestMat4ToMat3x4TransposesUpperBlock(t *testing.T) {
	// Column-major 4x4 translation matrix with translation (7, 8, 9).
	m4 := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		7, 8, 9, 1,
	}
	m := Mat4ToMat3x4(m4)
	got := m.TransformPoint(Vec3{0, 0, 0})
	want := Vec3{7, 8, 9}
	if got != want {
		t.Errorf("expected translation column to survive conversion: got %v, want %v", got, want)
	}
}

func TestTransformAABBOfAxisAlignedScaleIsExact(t *testing.T) {
	m := NewMat3x4FromRows(
		[4]float32{2, 0, 0, 0},
		[4]float32{0, 2, 0, 0},
		[4]float32{0, 0, 2, 0},
	)
	min, max := m.TransformAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	wantMin, wantMax := Vec3{-2, -2, -2}, Vec3{2, 2, 2}
	if min != wantMin || max != wantMax {
		t.Errorf("got [%v, %v], want [%v, %v]", min, max, wantMin, wantMax)
	}
}
