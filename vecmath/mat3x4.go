package vecmath

import "github.com/go-gl/mathgl/mgl32"

// Mat3x4 is a row-major affine transform [R|t] with an implicit bottom
// row (0,0,0,1): 3 rows of 4 columns, stored row by row. Row r, column c
// is M[r*4+c]; columns 0-2 are the 3x3 linear part, column 3 is the
// translation.
type Mat3x4 [12]float32

// Identity3x4 is the affine identity transform.
func Identity3x4() Mat3x4 {
	return Mat3x4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// NewMat3x4FromRows builds a Mat3x4 from its three rows of four
// coefficients each, matching the industry acceleration-structure
// row-major 3x4 convention.
func NewMat3x4FromRows(row0, row1, row2 [4]float32) Mat3x4 {
	var m Mat3x4
	copy(m[0:4], row0[:])
	copy(m[4:8], row1[:])
	copy(m[8:12], row2[:])
	return m
}

// At returns the coefficient at row r, column c (0-indexed, r in
// [0,3), c in [0,4)).
func (m Mat3x4) At(r, c int) float32 {
	return m[r*4+c]
}

// Mat4ToMat3x4 converts a column-major 4x4 matrix to row-major 3x4 form
// by transposing the upper 3x4 block.
func Mat4ToMat3x4(m mgl32.Mat4) Mat3x4 {
	var out Mat3x4
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			// mgl32.Mat4 is column-major: element (row, col) lives at c*4+r.
			out[r*4+c] = m[c*4+r]
		}
	}
	return out
}

// linear returns the 3x3 linear part as an mgl32.Mat3 (column-major,
// matching mgl32's own storage convention) so the hard part of
// inversion can be delegated to the library.
func (m Mat3x4) linear() mgl32.Mat3 {
	var lin mgl32.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			lin[c*3+r] = m.At(r, c)
		}
	}
	return lin
}

func (m Mat3x4) translation() Vec3 {
	return Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// TransformPoint applies the full affine transform to a point.
func (m Mat3x4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3],
		m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7],
		m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11],
	}
}

// TransformVector applies only the linear part of the transform,
// ignoring translation.
func (m Mat3x4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// Invert computes the affine inverse: invert the 3x3 linear part, then
// translation' = -A^-1 * t.
func (m Mat3x4) Invert() Mat3x4 {
	linInv := m.linear().Inv()

	var out Mat3x4
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*4+c] = linInv[c*3+r]
		}
	}

	t := m.translation()
	tInv := Vec3{
		-(linInv[0]*t[0] + linInv[3]*t[1] + linInv[6]*t[2]),
		-(linInv[1]*t[0] + linInv[4]*t[1] + linInv[7]*t[2]),
		-(linInv[2]*t[0] + linInv[5]*t[1] + linInv[8]*t[2]),
	}
	out[3] = tInv[0]
	out[7] = tInv[1]
	out[11] = tInv[2]
	return out
}

// TransformAABB conservatively transforms an axis-aligned bounding box
// given in the matrix's local space into world space, using the
// center/half-extents form: worldCenter = M*center, worldHalf =
// |R|*half, where |R| is the componentwise absolute value of the 3x3
// linear part.
func (m Mat3x4) TransformAABB(localMin, localMax Vec3) (worldMin, worldMax Vec3) {
	center := localMin.Add(localMax).Mul(0.5)
	half := localMax.Sub(localMin).Mul(0.5)

	worldCenter := m.TransformPoint(center)

	r0 := Vec3{abs32(m.At(0, 0)), abs32(m.At(0, 1)), abs32(m.At(0, 2))}
	r1 := Vec3{abs32(m.At(1, 0)), abs32(m.At(1, 1)), abs32(m.At(1, 2))}
	r2 := Vec3{abs32(m.At(2, 0)), abs32(m.At(2, 1)), abs32(m.At(2, 2))}

	worldHalf := Vec3{
		r0[0]*half[0] + r0[1]*half[1] + r0[2]*half[2],
		r1[0]*half[0] + r1[1]*half[1] + r1[2]*half[2],
		r2[0]*half[0] + r2[1]*half[1] + r2[2]*half[2],
	}

	return worldCenter.Sub(worldHalf), worldCenter.Add(worldHalf)
}

// InverseTransposeLinear returns the inverse-transpose of the 3x3
// linear part, used to transform normals so that non-uniform scale
// does not skew them.
func (m Mat3x4) InverseTransposeLinear() mgl32.Mat3 {
	return m.linear().Inv().Transpose()
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
