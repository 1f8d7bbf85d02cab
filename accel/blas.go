package accel

import (
	"fmt"

	"raycore/rtray"
	"raycore/vecmath"
)

const leafPrimitiveThreshold = 4
const sahBinCount = 16
const traversalStackDepth = 64

// sahTraversalCost and sahIntersectionCost are the Ct/Ci constants of
// the surface area heuristic: the relative cost of descending into a
// child node versus testing one more primitive. Both are 1, matching
// the original build's cost model.
const sahTraversalCost = 1.0
const sahIntersectionCost = 1.0

// triangleData is the eagerly precomputed per-triangle table: rather
// than fetching vertices through a function pointer at traversal time,
// every triangle's position, edge vectors and geometric normal are
// computed once at build time and stored contiguously.
type triangleData struct {
	v0, edge1, edge2 vecmath.Vec3
	normal           vecmath.Vec3
}

type primitiveRef struct {
	index     uint32
	boundsMin vecmath.Vec3
	boundsMax vecmath.Vec3
	centroid  vecmath.Vec3
}

// BLAS is a bottom-level acceleration structure: a binned-SAH BVH over
// a flat list of triangles belonging to one piece of geometry.
type BLAS struct {
	nodes       []Node
	primIndices []uint32
	triangles   []triangleData
}

// NewBLASFromTriangles builds a BLAS from a flat, non-indexed triangle
// soup: every consecutive run of 3 positions is one triangle.
func NewBLASFromTriangles(positions []vecmath.Vec3) *BLAS {
	if len(positions)%3 != 0 {
		panic(fmt.Sprintf("accel: NewBLASFromTriangles requires a multiple of 3 positions, got %d", len(positions)))
	}
	triCount := len(positions) / 3
	triangles := make([]triangleData, triCount)
	for i := 0; i < triCount; i++ {
		triangles[i] = makeTriangleData(positions[i*3], positions[i*3+1], positions[i*3+2])
	}
	return newBLASFromTriangleData(triangles)
}

// NewBLASFromIndexedTriangles builds a BLAS from a shared vertex
// buffer and an index buffer, three indices per triangle.
func NewBLASFromIndexedTriangles(positions []vecmath.Vec3, indices []uint32) *BLAS {
	if len(indices)%3 != 0 {
		panic(fmt.Sprintf("accel: NewBLASFromIndexedTriangles requires a multiple of 3 indices, got %d", len(indices)))
	}
	triCount := len(indices) / 3
	triangles := make([]triangleData, triCount)
	for i := 0; i < triCount; i++ {
		a, b, c := indices[i*3], indices[i*3+1], indices[i*3+2]
		triangles[i] = makeTriangleData(positions[a], positions[b], positions[c])
	}
	return newBLASFromTriangleData(triangles)
}

// NewBLASFromRawVertices builds a BLAS from a flat float buffer with an
// explicit per-vertex stride (at least 3, for interleaved attributes
// such as position+normal+uv) and an optional index buffer. Each index
// is a vertex offset, not a float offset: vertex i's position starts
// at data[i*stride]. When indices is empty, the buffer is read as a
// non-indexed triangle soup, three consecutive vertices per triangle.
func NewBLASFromRawVertices(data []float32, stride int, indices []uint32) *BLAS {
	if stride < 3 {
		panic(fmt.Sprintf("accel: NewBLASFromRawVertices requires stride >= 3, got %d", stride))
	}
	if len(data)%stride != 0 {
		panic(fmt.Sprintf("accel: NewBLASFromRawVertices data length %d is not a multiple of stride %d", len(data), stride))
	}
	vertexCount := len(data) / stride

	fetch := func(vertexIndex uint32) vecmath.Vec3 {
		base := int(vertexIndex) * stride
		return vecmath.Vec3{data[base], data[base+1], data[base+2]}
	}

	if len(indices) == 0 {
		if vertexCount%3 != 0 {
			panic(fmt.Sprintf("accel: NewBLASFromRawVertices requires a multiple of 3 vertices for a non-indexed soup, got %d", vertexCount))
		}
		triCount := vertexCount / 3
		triangles := make([]triangleData, triCount)
		for i := 0; i < triCount; i++ {
			triangles[i] = makeTriangleData(
				fetch(uint32(i*3)), fetch(uint32(i*3+1)), fetch(uint32(i*3+2)))
		}
		return newBLASFromTriangleData(triangles)
	}

	if len(indices)%3 != 0 {
		panic(fmt.Sprintf("accel: NewBLASFromRawVertices requires a multiple of 3 indices, got %d", len(indices)))
	}
	triCount := len(indices) / 3
	triangles := make([]triangleData, triCount)
	for i := 0; i < triCount; i++ {
		a, b, c := indices[i*3], indices[i*3+1], indices[i*3+2]
		triangles[i] = makeTriangleData(fetch(a), fetch(b), fetch(c))
	}
	return newBLASFromTriangleData(triangles)
}

func makeTriangleData(v0, v1, v2 vecmath.Vec3) triangleData {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	normal := edge1.Cross(edge2).Normalize()
	return triangleData{v0: v0, edge1: edge1, edge2: edge2, normal: normal}
}

func newBLASFromTriangleData(triangles []triangleData) *BLAS {
	if len(triangles) == 0 {
		panic("accel: BLAS requires at least one triangle")
	}

	refs := make([]primitiveRef, len(triangles))
	for i, tri := range triangles {
		v1 := tri.v0.Add(tri.edge1)
		v2 := tri.v0.Add(tri.edge2)
		bMin := vecmath.MinVec3(vecmath.MinVec3(tri.v0, v1), v2)
		bMax := vecmath.MaxVec3(vecmath.MaxVec3(tri.v0, v1), v2)
		refs[i] = primitiveRef{
			index:     uint32(i),
			boundsMin: bMin,
			boundsMax: bMax,
			centroid:  bMin.Add(bMax).Mul(0.5),
		}
	}

	b := &BLAS{
		triangles:   triangles,
		primIndices: make([]uint32, 0, len(triangles)),
		nodes:       make([]Node, 1, 2*len(triangles)),
	}

	rootMin, rootMax := boundsOf(refs)
	b.buildRecursive(0, refs, rootMin, rootMax)
	return b
}

// Bounds returns the world-space (local-to-BLAS) bounding box of the
// whole structure, i.e. the root node's box.
func (b *BLAS) Bounds() (min, max vecmath.Vec3) {
	root := b.nodes[0]
	return root.BoundsMin, root.BoundsMax
}

func boundsOf(refs []primitiveRef) (min, max vecmath.Vec3) {
	min, max = vecmath.InfMinVec3(), vecmath.InfMaxVec3()
	for _, r := range refs {
		min = vecmath.MinVec3(min, r.boundsMin)
		max = vecmath.MaxVec3(max, r.boundsMax)
	}
	return min, max
}

func centroidBoundsOf(refs []primitiveRef) (min, max vecmath.Vec3) {
	min, max = vecmath.InfMinVec3(), vecmath.InfMaxVec3()
	for _, r := range refs {
		min = vecmath.MinVec3(min, r.centroid)
		max = vecmath.MaxVec3(max, r.centroid)
	}
	return min, max
}

func surfaceArea(min, max vecmath.Vec3) float32 {
	d := max.Sub(min)
	if d[0] < 0 || d[1] < 0 || d[2] < 0 {
		return 0
	}
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[2]*d[0])
}

type sahBin struct {
	count int
	min   vecmath.Vec3
	max   vecmath.Vec3
}

func emptyBin() sahBin {
	return sahBin{min: vecmath.InfMinVec3(), max: vecmath.InfMaxVec3()}
}

func (bin *sahBin) grow(r primitiveRef) {
	bin.count++
	bin.min = vecmath.MinVec3(bin.min, r.boundsMin)
	bin.max = vecmath.MaxVec3(bin.max, r.boundsMax)
}

// buildRecursive appends a subtree for refs rooted at nodes[nodeIndex]
// and fills in nodes[nodeIndex] itself. boundsMin/boundsMax is the
// already-computed bounding box of refs, passed down to avoid
// recomputation.
func (b *BLAS) buildRecursive(nodeIndex uint32, refs []primitiveRef, boundsMin, boundsMax vecmath.Vec3) {
	if len(refs) <= leafPrimitiveThreshold {
		b.makeLeafNode(nodeIndex, refs, boundsMin, boundsMax)
		return
	}

	axis, splitPos, found := b.findBestSplit(refs, boundsMin, boundsMax)
	if !found {
		b.makeLeafNode(nodeIndex, refs, boundsMin, boundsMax)
		return
	}

	mid := partitionRefs(refs, axis, splitPos)
	if mid == 0 || mid == len(refs) {
		// Degenerate split (every centroid landed on one side of the
		// plane): fall back to a median split on the same axis so
		// recursion always makes progress.
		mid = medianPartition(refs, axis)
		if mid == 0 || mid == len(refs) {
			b.makeLeafNode(nodeIndex, refs, boundsMin, boundsMax)
			return
		}
	}

	left := refs[:mid]
	right := refs[mid:]

	leftMin, leftMax := boundsOf(left)
	rightMin, rightMax := boundsOf(right)

	leftIndex := uint32(len(b.nodes))
	rightIndex := leftIndex + 1
	b.nodes = append(b.nodes, Node{}, Node{})

	b.nodes[nodeIndex] = Node{
		BoundsMin:        boundsMin,
		BoundsMax:        boundsMax,
		FirstChildOrPrim: leftIndex,
		PrimCountAndType: 0,
	}

	b.buildRecursive(leftIndex, left, leftMin, leftMax)
	b.buildRecursive(rightIndex, right, rightMin, rightMax)
}

func (b *BLAS) makeLeafNode(nodeIndex uint32, refs []primitiveRef, boundsMin, boundsMax vecmath.Vec3) {
	firstPrim := uint32(len(b.primIndices))
	for _, r := range refs {
		b.primIndices = append(b.primIndices, r.index)
	}
	node := makeLeaf(firstPrim, uint32(len(refs)), LeafTypeTriangles)
	node.BoundsMin = boundsMin
	node.BoundsMax = boundsMax
	b.nodes[nodeIndex] = node
}

// findBestSplit evaluates binned SAH cost across all three axes and
// returns the axis and world-space split plane position of the
// cheapest split found, or found=false if no axis has a usable
// centroid spread (all primitives share one centroid).
func (b *BLAS) findBestSplit(refs []primitiveRef, boundsMin, boundsMax vecmath.Vec3) (axis int, splitPos float32, found bool) {
	parentArea := surfaceArea(boundsMin, boundsMax)
	if parentArea <= 0 {
		return 0, 0, false
	}

	cMin, cMax := centroidBoundsOf(refs)

	bestCost := float32(1e30)
	found = false

	for a := 0; a < 3; a++ {
		extent := cMax[a] - cMin[a]
		if extent <= 1e-8 {
			continue
		}

		var bins [sahBinCount]sahBin
		for i := range bins {
			bins[i] = emptyBin()
		}

		scale := float32(sahBinCount) / extent
		for _, r := range refs {
			bi := binIndex(r.centroid[a], cMin[a], scale)
			bins[bi].grow(r)
		}

		var leftCount [sahBinCount]int
		var leftArea [sahBinCount]float32
		runningMin, runningMax := vecmath.InfMinVec3(), vecmath.InfMaxVec3()
		runningCount := 0
		for i := 0; i < sahBinCount; i++ {
			if bins[i].count > 0 {
				runningMin = vecmath.MinVec3(runningMin, bins[i].min)
				runningMax = vecmath.MaxVec3(runningMax, bins[i].max)
				runningCount += bins[i].count
			}
			leftCount[i] = runningCount
			leftArea[i] = surfaceArea(runningMin, runningMax)
		}

		var rightCount [sahBinCount]int
		var rightArea [sahBinCount]float32
		runningMin, runningMax = vecmath.InfMinVec3(), vecmath.InfMaxVec3()
		runningCount = 0
		for i := sahBinCount - 1; i >= 0; i-- {
			if bins[i].count > 0 {
				runningMin = vecmath.MinVec3(runningMin, bins[i].min)
				runningMax = vecmath.MaxVec3(runningMax, bins[i].max)
				runningCount += bins[i].count
			}
			rightCount[i] = runningCount
			rightArea[i] = surfaceArea(runningMin, runningMax)
		}

		for split := 0; split < sahBinCount-1; split++ {
			countL := leftCount[split]
			countR := rightCount[split+1]
			if countL == 0 || countR == 0 {
				continue
			}
			cost := sahTraversalCost +
				(leftArea[split]/parentArea)*float32(countL)*sahIntersectionCost +
				(rightArea[split+1]/parentArea)*float32(countR)*sahIntersectionCost
			if cost < bestCost {
				bestCost = cost
				axis = a
				splitPos = cMin[a] + float32(split+1)/scale
				found = true
			}
		}
	}

	return axis, splitPos, found
}

func binIndex(centroid, cMin, scale float32) int {
	bi := int((centroid - cMin) * scale)
	if bi < 0 {
		bi = 0
	}
	if bi >= sahBinCount {
		bi = sahBinCount - 1
	}
	return bi
}

// partitionRefs reorders refs in place so that every ref with a
// centroid below splitPos on axis comes first, returning the index of
// the first ref on the "at or above" side.
func partitionRefs(refs []primitiveRef, axis int, splitPos float32) int {
	i, j := 0, len(refs)-1
	for i <= j {
		for i <= j && refs[i].centroid[axis] < splitPos {
			i++
		}
		for i <= j && refs[j].centroid[axis] >= splitPos {
			j--
		}
		if i < j {
			refs[i], refs[j] = refs[j], refs[i]
			i++
			j--
		}
	}
	return i
}

// medianPartition reorders refs in place around the median centroid
// on axis and returns the midpoint index. Used only when the binned
// SAH split degenerates.
func medianPartition(refs []primitiveRef, axis int) int {
	mid := len(refs) / 2
	nthElement(refs, axis, mid)
	return mid
}

// nthElement performs a quickselect partial sort so that refs[k] ends
// up holding the value it would hold in a fully sorted-by-axis order,
// with everything before it no greater and everything after no less.
func nthElement(refs []primitiveRef, axis, k int) {
	lo, hi := 0, len(refs)-1
	for lo < hi {
		pivot := refs[(lo+hi)/2].centroid[axis]
		i, j := lo, hi
		for i <= j {
			for refs[i].centroid[axis] < pivot {
				i++
			}
			for refs[j].centroid[axis] > pivot {
				j--
			}
			if i <= j {
				refs[i], refs[j] = refs[j], refs[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			break
		}
	}
}

type stackEntry struct {
	nodeIndex uint32
	tNear     float32
}

// Intersect traverses the BVH iteratively with a fixed-depth stack,
// updating hit in place whenever a closer (or, under
// TerminateOnFirstHit, any) intersection is found within
// [tMin, closestT]. closestT shrinks monotonically as closer hits are
// found, pruning subsequent subtree tests.
func (b *BLAS) Intersect(r rtray.Ray, tMin, closestT float32, flags rtray.RayFlags, hit *rtray.Hit) bool {
	var stack [traversalStackDepth]stackEntry
	sp := 0
	found := false

	stack[sp] = stackEntry{nodeIndex: 0, tNear: tMin}
	sp++

	for sp > 0 {
		sp--
		entry := stack[sp]
		if entry.tNear > closestT {
			continue
		}

		node := b.nodes[entry.nodeIndex]
		if node.IsLeaf() {
			first := node.FirstPrim()
			count := node.PrimCount()
			for i := uint32(0); i < count; i++ {
				primIdx := b.primIndices[first+i]
				tri := b.triangles[primIdx]

				if flags.Has(rtray.RayFlagCullBackFaces) && tri.normal.Dot(r.Direction) > 0 {
					continue
				}
				if flags.Has(rtray.RayFlagCullFrontFaces) && tri.normal.Dot(r.Direction) < 0 {
					continue
				}

				t, u, v, ok := rtray.IntersectTriangle(r, tri.v0, tri.edge1, tri.edge2, tMin, closestT)
				if !ok {
					continue
				}

				closestT = t
				found = true
				hit.T = t
				hit.U = u
				hit.V = v
				hit.PrimitiveID = primIdx
				hit.Normal = tri.normal

				if flags.Has(rtray.RayFlagTerminateOnFirstHit) {
					return true
				}
			}
			continue
		}

		leftIdx := node.LeftChild()
		rightIdx := leftIdx + 1
		leftNode := b.nodes[leftIdx]
		rightNode := b.nodes[rightIdx]

		leftEnter, _, leftHit := rtray.IntersectAABBRange(r, leftNode.BoundsMin, leftNode.BoundsMax, tMin, closestT)
		rightEnter, _, rightHit := rtray.IntersectAABBRange(r, rightNode.BoundsMin, rightNode.BoundsMax, tMin, closestT)

		if leftHit && rightHit {
			nearIdx, farIdx := leftIdx, rightIdx
			nearEnter, farEnter := leftEnter, rightEnter
			if rightEnter < leftEnter {
				nearIdx, farIdx = rightIdx, leftIdx
				nearEnter, farEnter = rightEnter, leftEnter
			}
			stack[sp] = stackEntry{nodeIndex: farIdx, tNear: farEnter}
			sp++
			stack[sp] = stackEntry{nodeIndex: nearIdx, tNear: nearEnter}
			sp++
		} else if leftHit {
			stack[sp] = stackEntry{nodeIndex: leftIdx, tNear: leftEnter}
			sp++
		} else if rightHit {
			stack[sp] = stackEntry{nodeIndex: rightIdx, tNear: rightEnter}
			sp++
		}
	}

	return found
}
