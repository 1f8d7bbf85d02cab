package accel

import "testing"

func TestMakeLeafEncodesCountAndType(t *testing.T) {
	n := makeLeaf(7, 3, LeafTypeTriangles)
	if !n.IsLeaf() {
		t.Fatalf("expected leaf node")
	}
	if n.FirstPrim() != 7 {
		t.Errorf("expected first prim 7, got %d", n.FirstPrim())
	}
	if n.PrimCount() != 3 {
		t.Errorf("expected prim count 3, got %d", n.PrimCount())
	}
	if n.Type() != LeafTypeTriangles {
		t.Errorf("expected triangle leaf type")
	}
}

func TestMakeInteriorIsNotLeaf(t *testing.T) {
	n := makeInterior(4)
	if n.IsLeaf() {
		t.Fatalf("expected interior node")
	}
	if n.LeftChild() != 4 {
		t.Errorf("expected left child 4, got %d", n.LeftChild())
	}
}

func TestMakeLeafPanicsOnZeroCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on zero-count leaf")
		}
	}()
	makeLeaf(0, 0, LeafTypeTriangles)
}

func TestMakeLeafPanicsOnOverflowingCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on count overflowing 24 bits")
		}
	}()
	makeLeaf(0, 1<<24, LeafTypeTriangles)
}
