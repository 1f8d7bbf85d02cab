package rtray

import "raycore/vecmath"

// TriangleEpsilon is the parallel-ray rejection threshold used by
// IntersectTriangle, matching the original implementation's constant.
const TriangleEpsilon = 1e-8

// IntersectAABB performs the slab test of r against the box
// [boundsMin, boundsMax], constrained to the [tMin, tMax] range of the
// ray parameter. It reports whether the box is hit at all within that
// range; it does not return the entry distance, since TLAS instance
// culling only needs the boolean to decide whether to descend.
func IntersectAABB(r Ray, boundsMin, boundsMax vecmath.Vec3, tMin, tMax float32) bool {
	_, _, hit := IntersectAABBRange(r, boundsMin, boundsMax, tMin, tMax)
	return hit
}

// IntersectAABBRange is the full slab test returning the entry/exit
// parametric distances, used internally by BLAS traversal to order
// near/far children.
func IntersectAABBRange(r Ray, boundsMin, boundsMax vecmath.Vec3, tMin, tMax float32) (tEnter, tExit float32, hit bool) {
	t0 := componentMul(vecmath.Vec3{boundsMin[0] - r.Origin[0], boundsMin[1] - r.Origin[1], boundsMin[2] - r.Origin[2]}, r.InvDirection)
	t1 := componentMul(vecmath.Vec3{boundsMax[0] - r.Origin[0], boundsMax[1] - r.Origin[1], boundsMax[2] - r.Origin[2]}, r.InvDirection)

	tSmall := vecmath.MinVec3(t0, t1)
	tBig := vecmath.MaxVec3(t0, t1)

	tEnter = max32(tSmall[0], tSmall[1], tSmall[2], tMin)
	tExit = min32(tBig[0], tBig[1], tBig[2], tMax)

	return tEnter, tExit, tExit >= tEnter
}

func componentMul(a, b vecmath.Vec3) vecmath.Vec3 {
	return vecmath.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func min32(values ...float32) float32 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func max32(values ...float32) float32 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// IntersectTriangle implements the Moller-Trumbore ray-triangle test.
// On hit it returns the parametric distance t and the barycentric
// coordinates u, v (the third barycentric weight is 1-u-v); ok is
// false when the ray is parallel to the triangle's plane, the
// intersection lies outside the triangle, or t falls outside
// [tMin, tMax].
func IntersectTriangle(r Ray, v0, edge1, edge2 vecmath.Vec3, tMin, tMax float32) (t, u, v float32, ok bool) {
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -TriangleEpsilon && a < TriangleEpsilon {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t <= TriangleEpsilon || t < tMin || t > tMax {
		return 0, 0, 0, false
	}

	return t, u, v, true
}
