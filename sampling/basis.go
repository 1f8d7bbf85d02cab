// Package sampling provides the orthonormal basis construction and
// deterministic RNG the dispatcher's shader callback uses to generate
// sample directions per pixel.
package sampling

import "raycore/vecmath"

// Basis is a right-handed orthonormal frame built around a surface
// normal, used to map locally-defined sample directions (e.g. a
// cosine-weighted hemisphere sample) into world space.
type Basis struct {
	Tangent, Bitangent, Normal vecmath.Vec3
}

// FromNormal builds an orthonormal basis from a unit normal. The
// tangent is chosen by picking whichever of the world X or Z axis is
// farthest from parallel to n, matching the branch the original
// implementation uses (comparing |n.x| against |n.z|).
func FromNormal(n vecmath.Vec3) Basis {
	var tangent vecmath.Vec3
	if abs32(n[0]) > abs32(n[2]) {
		tangent = vecmath.Vec3{-n[1], n[0], 0}
	} else {
		tangent = vecmath.Vec3{0, -n[2], n[1]}
	}
	tangent = tangent.Normalize()
	bitangent := n.Cross(tangent)

	return Basis{Tangent: tangent, Bitangent: bitangent, Normal: n}
}

// ToWorld maps a vector expressed in this basis's local frame (x along
// Tangent, y along Bitangent, z along Normal) into world space.
func (b Basis) ToWorld(v vecmath.Vec3) vecmath.Vec3 {
	return b.Tangent.Mul(v[0]).Add(b.Bitangent.Mul(v[1])).Add(b.Normal.Mul(v[2]))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
