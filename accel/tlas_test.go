package accel

import (
	"math"
	"testing"

	"raycore/rtray"
	"raycore/vecmath"
)

func triangleBLAS(z float32) *BLAS {
	return NewBLASFromTriangles([]vecmath.Vec3{
		{-1, -1, z}, {1, -1, z}, {0, 1, z},
	})
}

func TestInstanceDefaultsIdentityAndFullMask(t *testing.T) {
	inst := NewInstance(triangleBLAS(0))
	if inst.Mask() != 0xFF {
		t.Errorf("expected default mask 0xFF, got %#x", inst.Mask())
	}
	if inst.CustomIndex() != 0 {
		t.Errorf("expected default custom index 0, got %d", inst.CustomIndex())
	}
	p := vecmath.Vec3{3, 4, 5}
	if got := inst.Transform.TransformPoint(p); got != p {
		t.Errorf("expected identity transform to leave point unchanged, got %v", got)
	}
}

func TestInstanceCustomIndexAndMaskPackIndependently(t *testing.T) {
	inst := NewInstance(triangleBLAS(0))
	inst.SetCustomIndex(12345)
	inst.SetMask(0x3)

	if inst.CustomIndex() != 12345 {
		t.Errorf("expected custom index 12345, got %d", inst.CustomIndex())
	}
	if inst.Mask() != 0x3 {
		t.Errorf("expected mask 0x3, got %#x", inst.Mask())
	}
}

func TestTLASTwoInstancesLeftAndRight(t *testing.T) {
	left := NewInstance(triangleBLAS(0))
	left.Transform = vecmath.NewMat3x4FromRows(
		[4]float32{1, 0, 0, -5},
		[4]float32{0, 1, 0, 0},
		[4]float32{0, 0, 1, 0},
	)

	right := NewInstance(triangleBLAS(0))
	right.Transform = vecmath.NewMat3x4FromRows(
		[4]float32{1, 0, 0, 5},
		[4]float32{0, 1, 0, 0},
		[4]float32{0, 0, 1, 0},
	)

	tlas := NewTLAS([]Instance{left, right})

	rLeft := rtray.NewRay(vecmath.Vec3{-5, -0.2, -5}, vecmath.Vec3{0, 0, 1})
	hit, ok := tlas.Intersect(rLeft, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0)
	if !ok {
		t.Fatalf("expected ray aimed at left instance to hit")
	}
	if hit.InstanceID != 0 {
		t.Errorf("expected instance id 0 (left), got %d", hit.InstanceID)
	}

	rRight := rtray.NewRay(vecmath.Vec3{5, -0.2, -5}, vecmath.Vec3{0, 0, 1})
	hit, ok = tlas.Intersect(rRight, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0)
	if !ok {
		t.Fatalf("expected ray aimed at right instance to hit")
	}
	if hit.InstanceID != 1 {
		t.Errorf("expected instance id 1 (right), got %d", hit.InstanceID)
	}
}

func TestTLASClosestTPrunesAcrossInstances(t *testing.T) {
	near := NewInstance(triangleBLAS(0))
	far := NewInstance(triangleBLAS(5))

	tlas := NewTLAS([]Instance{far, near})

	r := rtray.NewRay(vecmath.Vec3{0, -0.2, -5}, vecmath.Vec3{0, 0, 1})
	hit, ok := tlas.Intersect(r, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0)
	if !ok {
		t.Fatalf("expected hit")
	}
	if hit.InstanceID != 1 {
		t.Errorf("expected the nearer instance (index 1) to win despite being tested second, got %d", hit.InstanceID)
	}
	if hit.T >= 9 {
		t.Errorf("expected t close to 5 for the near instance, got %v", hit.T)
	}
}

func TestTLASWorldPositionMatchesWorldRay(t *testing.T) {
	inst := NewInstance(triangleBLAS(0))
	inst.Transform = vecmath.NewMat3x4FromRows(
		[4]float32{1, 0, 0, 0},
		[4]float32{0, 1, 0, 0},
		[4]float32{0, 0, 1, 10},
	)
	tlas := NewTLAS([]Instance{inst})

	r := rtray.NewRay(vecmath.Vec3{0, -0.2, 0}, vecmath.Vec3{0, 0, 1})
	hit, ok := tlas.Intersect(r, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0)
	if !ok {
		t.Fatalf("expected hit through translated instance")
	}
	expected := r.Origin.Add(r.Direction.Mul(hit.T))
	if dist := expected.Sub(hit.Position).Len(); dist > 1e-3 {
		t.Errorf("expected world position %v to match origin+t*dir %v", hit.Position, expected)
	}
}

func TestTLASMaskExcludesInstance(t *testing.T) {
	inst := NewInstance(triangleBLAS(0))
	inst.SetMask(0x02)
	tlas := NewTLAS([]Instance{inst})

	r := rtray.NewRay(vecmath.Vec3{0, -0.2, -5}, vecmath.Vec3{0, 0, 1})
	_, ok := tlas.Intersect(r, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0x01)
	if ok {
		t.Fatalf("expected ray mask 0x01 to exclude instance with mask 0x02")
	}

	_, ok = tlas.Intersect(r, 0, float32(math.Inf(1)), rtray.RayFlagNone, 0x02)
	if !ok {
		t.Fatalf("expected ray mask 0x02 to include instance with mask 0x02")
	}
}
