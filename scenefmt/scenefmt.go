// Package scenefmt is a minimal JSON scene description for raycore:
// a list of named triangle meshes and a list of instances placing
// them in world space, using plain exported struct fields with json
// tags, the same idiom as the rest of this module's configuration.
package scenefmt

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"raycore/accel"
	"raycore/vecmath"
)

// MeshDef is one piece of raw triangle geometry. Indices is optional;
// when omitted, Positions is interpreted as a flat non-indexed
// triangle soup (a multiple-of-3 list of vertices).
type MeshDef struct {
	Name      string       `json:"name"`
	Positions [][3]float32 `json:"positions"`
	Indices   []uint32     `json:"indices,omitempty"`
}

// InstanceDef places one named mesh in world space with a Euler-angle
// rotation (degrees, applied Z then Y then X) and per-axis scale.
type InstanceDef struct {
	Mesh        string     `json:"mesh"`
	Position    [3]float32 `json:"position"`
	Rotation    [3]float32 `json:"rotation"`
	Scale       [3]float32 `json:"scale,omitempty"`
	CustomIndex uint32     `json:"customIndex,omitempty"`
	Mask        uint8      `json:"mask,omitempty"`
}

// CameraDef is the pinhole camera parameters a cmd/raytrace-demo scene
// file carries alongside the geometry; accel itself has no notion of
// a camera.
type CameraDef struct {
	Position [3]float32 `json:"position"`
	LookAt   [3]float32 `json:"lookAt"`
	Up       [3]float32 `json:"up,omitempty"`
	FOVY     float32    `json:"fovy,omitempty"`
}

// SceneFile is the top-level JSON document.
type SceneFile struct {
	Meshes    []MeshDef     `json:"meshes"`
	Instances []InstanceDef `json:"instances"`
	Camera    CameraDef     `json:"camera,omitempty"`
}

// Scene is a SceneFile after its meshes have been built into BLASes
// and its instances assembled into a TLAS.
type Scene struct {
	Meshes map[string]*accel.BLAS
	TLAS   *accel.TLAS
	Camera CameraDef
}

// Load reads and parses a scene description file, building every
// mesh's BLAS and the scene's TLAS. It panics on malformed geometry
// (matching accel's own precondition-violation style) but returns an
// error for I/O and JSON syntax problems, which are not precondition
// violations.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenefmt: reading %s: %w", path, err)
	}

	var file SceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("scenefmt: parsing %s: %w", path, err)
	}

	return Build(file)
}

// Build turns an already-parsed SceneFile into a Scene, building a
// BLAS per mesh and a single TLAS over all instances.
func Build(file SceneFile) (*Scene, error) {
	meshes := make(map[string]*accel.BLAS, len(file.Meshes))
	for _, m := range file.Meshes {
		if _, exists := meshes[m.Name]; exists {
			return nil, fmt.Errorf("scenefmt: duplicate mesh name %q", m.Name)
		}
		positions := toVec3Slice(m.Positions)
		if len(m.Indices) > 0 {
			meshes[m.Name] = accel.NewBLASFromIndexedTriangles(positions, m.Indices)
		} else {
			meshes[m.Name] = accel.NewBLASFromTriangles(positions)
		}
	}

	if len(file.Instances) == 0 {
		return nil, fmt.Errorf("scenefmt: scene has no instances")
	}

	instances := make([]accel.Instance, len(file.Instances))
	for i, d := range file.Instances {
		blas, ok := meshes[d.Mesh]
		if !ok {
			return nil, fmt.Errorf("scenefmt: instance %d references unknown mesh %q", i, d.Mesh)
		}

		inst := accel.NewInstance(blas)
		inst.Transform = eulerTransform(d.Position, d.Rotation, d.Scale)
		inst.SetCustomIndex(d.CustomIndex)
		if d.Mask != 0 {
			inst.SetMask(d.Mask)
		}
		instances[i] = inst
	}

	return &Scene{
		Meshes: meshes,
		TLAS:   accel.NewTLAS(instances),
		Camera: file.Camera,
	}, nil
}

func toVec3Slice(in [][3]float32) []vecmath.Vec3 {
	out := make([]vecmath.Vec3, len(in))
	for i, p := range in {
		out[i] = vecmath.Vec3{p[0], p[1], p[2]}
	}
	return out
}

// eulerTransform builds a row-major affine transform from a position,
// a Z-then-Y-then-X Euler rotation in degrees, and a per-axis scale. A
// zero scale vector is treated as the default (1, 1, 1).
func eulerTransform(position, rotationDeg, scale [3]float32) vecmath.Mat3x4 {
	if scale == ([3]float32{}) {
		scale = [3]float32{1, 1, 1}
	}

	rx := degToRad(rotationDeg[0])
	ry := degToRad(rotationDeg[1])
	rz := degToRad(rotationDeg[2])

	sx, cx := math.Sincos(float64(rx))
	sy, cy := math.Sincos(float64(ry))
	sz, cz := math.Sincos(float64(rz))

	// R = Rz * Ry * Rx, each a standard right-handed rotation matrix.
	r00 := float32(cy * cz)
	r01 := float32(sx*sy*cz - cx*sz)
	r02 := float32(cx*sy*cz + sx*sz)

	r10 := float32(cy * sz)
	r11 := float32(sx*sy*sz + cx*cz)
	r12 := float32(cx*sy*sz - sx*cz)

	r20 := float32(-sy)
	r21 := float32(sx * cy)
	r22 := float32(cx * cy)

	return vecmath.NewMat3x4FromRows(
		[4]float32{r00 * scale[0], r01 * scale[1], r02 * scale[2], position[0]},
		[4]float32{r10 * scale[0], r11 * scale[1], r12 * scale[2], position[1]},
		[4]float32{r20 * scale[0], r21 * scale[1], r22 * scale[2], position[2]},
	)
}

func degToRad(deg float32) float32 {
	return deg * float32(math.Pi) / 180
}
