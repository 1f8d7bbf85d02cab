package rtray

import (
	"testing"

	"raycore/vecmath"
)

func TestRayFlagsHas(t *testing.T) {
	f := RayFlagTerminateOnFirstHit | RayFlagCullBackFaces
	if !f.Has(RayFlagTerminateOnFirstHit) {
		t.Errorf("expected flag set to have TerminateOnFirstHit")
	}
	if f.Has(RayFlagOpaque) {
		t.Errorf("did not expect Opaque to be set")
	}
}

func TestRayFlagsCullAllFacesRequiresBothBits(t *testing.T) {
	if (RayFlagCullBackFaces).Has(RayFlagCullAllFaces) {
		t.Errorf("did not expect a single cull bit to satisfy Has(CullAllFaces)")
	}
	if !RayFlagCullAllFaces.Has(RayFlagCullAllFaces) {
		t.Errorf("expected CullAllFaces to satisfy itself")
	}
}

func TestNewRayComputesInverseDirection(t *testing.T) {
	r := NewRay(vecmath.Vec3{0, 0, 0}, vecmath.Vec3{2, 4, -1})
	if r.InvDirection[0] != 0.5 {
		t.Errorf("expected inv.x = 0.5, got %v", r.InvDirection[0])
	}
	if r.InvDirection[1] != 0.25 {
		t.Errorf("expected inv.y = 0.25, got %v", r.InvDirection[1])
	}
	if r.InvDirection[2] != -1 {
		t.Errorf("expected inv.z = -1, got %v", r.InvDirection[2])
	}
}

func TestWithDirectionRecomputesInverse(t *testing.T) {
	r := NewRay(vecmath.Vec3{1, 2, 3}, vecmath.Vec3{1, 0, 0})
	r2 := r.WithDirection(vecmath.Vec3{0, 2, 0})
	if r2.Origin != r.Origin {
		t.Errorf("expected origin to be preserved, got %v", r2.Origin)
	}
	if r2.InvDirection[1] != 0.5 {
		t.Errorf("expected recomputed inv.y = 0.5, got %v", r2.InvDirection[1])
	}
}
