// Command bvhstat builds a BLAS from a JSON mesh file and reports the
// resulting tree's size, depth and SAH cost with plain fmt.Printf,
// matching the diagnostic style of the other cmd/ binaries in this
// module.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"raycore/accel"
	"raycore/vecmath"
)

type meshFile struct {
	Positions [][3]float32 `json:"positions"`
	Indices   []uint32     `json:"indices,omitempty"`
}

func main() {
	path := flag.String("mesh", "", "path to a JSON mesh file ({positions, indices})")
	flag.Parse()

	if *path == "" {
		log.Fatal("bvhstat: -mesh is required")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("bvhstat: reading %s: %v", *path, err)
	}

	var mesh meshFile
	if err := json.Unmarshal(data, &mesh); err != nil {
		log.Fatalf("bvhstat: parsing %s: %v", *path, err)
	}

	positions := make([]vecmath.Vec3, len(mesh.Positions))
	for i, p := range mesh.Positions {
		positions[i] = vecmath.Vec3{p[0], p[1], p[2]}
	}

	var blas *accel.BLAS
	if len(mesh.Indices) > 0 {
		blas = accel.NewBLASFromIndexedTriangles(positions, mesh.Indices)
	} else {
		blas = accel.NewBLASFromTriangles(positions)
	}

	stats := blas.Stats()
	min, max := blas.Bounds()

	fmt.Printf("bvhstat: %s\n", *path)
	fmt.Printf("  triangles:      %d\n", stats.TriangleCount)
	fmt.Printf("  nodes:          %d\n", stats.NodeCount)
	fmt.Printf("  leaves:         %d\n", stats.LeafCount)
	fmt.Printf("  max depth:      %d\n", stats.MaxDepth)
	fmt.Printf("  min leaf depth: %d\n", stats.MinLeafDepth)
	fmt.Printf("  SAH cost:       %.3f\n", stats.SAHCost)
	fmt.Printf("  bounds:         [%v, %v]\n", min, max)
}
