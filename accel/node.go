// Package accel implements the two-level bounding volume hierarchy:
// BLAS (bottom-level, owns triangle geometry and a binned-SAH tree)
// and TLAS (top-level, sweeps transformed instances of BLASes).
package accel

import "raycore/vecmath"

// LeafType distinguishes what a leaf node's primitive range indexes
// into. Only triangle leaves are built today; procedural is reserved
// so the packed encoding matches the original wire format.
type LeafType uint32

const (
	LeafTypeTriangles  LeafType = 0
	LeafTypeProcedural LeafType = 1
)

const primCountMask uint32 = 0x00FFFFFF
const leafTypeShift = 24

// Node is the packed 32-byte BVH node: two AABB corners plus two
// uint32 fields that double as either an interior node's first-child
// index or a leaf's first-primitive index, and either (implicitly,
// for interior nodes) nothing or a primitive count + leaf type.
//
// A node is a leaf iff the low 24 bits of PrimCountAndType are
// nonzero. Interior nodes always keep their two children adjacent:
// the right child's index is always left child's index + 1.
type Node struct {
	BoundsMin        vecmath.Vec3
	FirstChildOrPrim uint32
	BoundsMax        vecmath.Vec3
	PrimCountAndType uint32
}

// IsLeaf reports whether n is a leaf (primitive range) rather than an
// interior node (child pointer).
func (n Node) IsLeaf() bool {
	return n.PrimCountAndType&primCountMask != 0
}

// PrimCount returns the number of primitives a leaf node spans. Calling
// this on an interior node returns 0.
func (n Node) PrimCount() uint32 {
	return n.PrimCountAndType & primCountMask
}

// Type returns the leaf's primitive type. Meaningless for interior
// nodes.
func (n Node) Type() LeafType {
	return LeafType(n.PrimCountAndType >> leafTypeShift)
}

// FirstPrim returns the index of the first primitive a leaf spans,
// into the BLAS's primitive-index array.
func (n Node) FirstPrim() uint32 {
	return n.FirstChildOrPrim
}

// LeftChild returns the index of this interior node's first (left)
// child; the right child is always LeftChild()+1.
func (n Node) LeftChild() uint32 {
	return n.FirstChildOrPrim
}

func makeLeaf(firstPrim, primCount uint32, typ LeafType) Node {
	if primCount == 0 {
		panic("accel: leaf node must have a nonzero primitive count")
	}
	if primCount&^primCountMask != 0 {
		panic("accel: leaf primitive count overflows 24 bits")
	}
	return Node{
		FirstChildOrPrim: firstPrim,
		PrimCountAndType: primCount | (uint32(typ) << leafTypeShift),
	}
}

func makeInterior(leftChild uint32) Node {
	return Node{
		FirstChildOrPrim: leftChild,
		PrimCountAndType: 0,
	}
}
