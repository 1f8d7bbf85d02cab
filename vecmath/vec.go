// Package vecmath provides the float vector and affine-matrix primitives
// shared by the rest of raycore: 3/4-component vectors and a row-major
// 3x4 affine transform, built on top of github.com/go-gl/mathgl.
package vecmath

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a 3-component single-precision float tuple. No NaN/Inf
// invariant is enforced; callers keep direction vectors unit length
// where that matters geometrically.
type Vec3 = mgl32.Vec3

// Vec4 is a 4-component single-precision float tuple.
type Vec4 = mgl32.Vec4

// Vec2 is a 2-component single-precision float tuple, used for pairs
// of RNG samples.
type Vec2 = mgl32.Vec2

// MinVec3 returns the componentwise minimum of a and b.
func MinVec3(a, b Vec3) Vec3 {
	return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

// MaxVec3 returns the componentwise maximum of a and b.
func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// InfMinVec3 is a large sentinel (1e30 in every component), used as
// the starting point when folding a min over a set of bounds; it folds
// away against any component below 1e30.
func InfMinVec3() Vec3 {
	const inf = float32(1e30)
	return Vec3{inf, inf, inf}
}

// InfMaxVec3 is a large negative sentinel (-1e30 in every component),
// used as the starting point when folding a max over a set of bounds;
// it folds away against any component above -1e30.
func InfMaxVec3() Vec3 {
	const inf = float32(1e30)
	return Vec3{-inf, -inf, -inf}
}

// Reciprocal returns the componentwise reciprocal of v. Components that
// are zero propagate to +/-Inf, which is intentional: the ray-AABB slab
// test relies on IEEE infinities to fold away the degenerate axis.
func Reciprocal(v Vec3) Vec3 {
	return Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}
