package accel

// Stats summarizes the shape of a built BLAS, the kind of report a
// BVH build tool prints to judge tree quality.
type Stats struct {
	NodeCount     int
	LeafCount     int
	TriangleCount int
	MaxDepth      int
	MinLeafDepth  int
	SAHCost       float32
}

// Stats walks the tree once and reports its size, depth and SAH cost
// under the same Ct=Ci=1 cost model used during the build.
func (b *BLAS) Stats() Stats {
	s := Stats{
		NodeCount:    len(b.nodes),
		MinLeafDepth: -1,
	}
	rootArea := surfaceArea(b.nodes[0].BoundsMin, b.nodes[0].BoundsMax)
	s.SAHCost = b.statsRecursive(0, 1, rootArea, &s)
	return s
}

func (b *BLAS) statsRecursive(nodeIndex uint32, depth int, rootArea float32, s *Stats) float32 {
	node := b.nodes[nodeIndex]

	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}

	if node.IsLeaf() {
		s.LeafCount++
		count := int(node.PrimCount())
		s.TriangleCount += count
		if s.MinLeafDepth < 0 || depth < s.MinLeafDepth {
			s.MinLeafDepth = depth
		}
		area := surfaceArea(node.BoundsMin, node.BoundsMax)
		if rootArea <= 0 {
			return 0
		}
		return sahIntersectionCost * float32(count) * (area / rootArea)
	}

	leftIdx := node.LeftChild()
	rightIdx := leftIdx + 1
	costLeft := b.statsRecursive(leftIdx, depth+1, rootArea, s)
	costRight := b.statsRecursive(rightIdx, depth+1, rootArea, s)

	area := surfaceArea(node.BoundsMin, node.BoundsMax)
	traversalShare := float32(0)
	if rootArea > 0 {
		traversalShare = sahTraversalCost * (area / rootArea)
	}
	return traversalShare + costLeft + costRight
}
