package accel

import (
	"fmt"

	"raycore/rtray"
	"raycore/vecmath"
)

const customIndexMask uint32 = 0x00FFFFFF
const maskShift = 24

const sbtOffsetMask uint32 = 0x00FFFFFF
const instanceFlagsShift = 24

// DefaultVisibilityMask is the mask a freshly constructed Instance
// carries until SetMask is called: every ray's instance mask matches
// by default.
const DefaultVisibilityMask uint32 = 0xFF

// Instance places one BLAS in world space with a transform and the
// packed bitfields a shader uses to classify the hit.
type Instance struct {
	Transform vecmath.Mat3x4
	Blas      *BLAS

	customIndexAndMask uint32
	sbtOffsetAndFlags  uint32
}

// NewInstance returns an identity-transformed instance of blas with
// the default 0xFF visibility mask and zeroed custom index/SBT fields.
func NewInstance(blas *BLAS) Instance {
	return Instance{
		Transform:          vecmath.Identity3x4(),
		Blas:               blas,
		customIndexAndMask: DefaultVisibilityMask << maskShift,
	}
}

// CustomIndex returns the user-defined 24-bit payload a shader can use
// to look up per-instance material/shading data.
func (inst Instance) CustomIndex() uint32 {
	return inst.customIndexAndMask & customIndexMask
}

// SetCustomIndex sets the 24-bit custom index, panicking if it
// overflows 24 bits.
func (inst *Instance) SetCustomIndex(index uint32) {
	if index&^customIndexMask != 0 {
		panic(fmt.Sprintf("accel: instance custom index %d overflows 24 bits", index))
	}
	inst.customIndexAndMask = index | (inst.customIndexAndMask & (0xFF << maskShift))
}

// Mask returns the instance's 8-bit visibility mask.
func (inst Instance) Mask() uint32 {
	return inst.customIndexAndMask >> maskShift
}

// SetMask sets the instance's 8-bit visibility mask.
func (inst *Instance) SetMask(mask uint8) {
	inst.customIndexAndMask = (inst.customIndexAndMask & customIndexMask) | (uint32(mask) << maskShift)
}

// SbtRecordOffset returns the 24-bit shader binding table offset.
func (inst Instance) SbtRecordOffset() uint32 {
	return inst.sbtOffsetAndFlags & sbtOffsetMask
}

// SetSbtRecordOffset sets the 24-bit shader binding table offset,
// panicking if it overflows 24 bits.
func (inst *Instance) SetSbtRecordOffset(offset uint32) {
	if offset&^sbtOffsetMask != 0 {
		panic(fmt.Sprintf("accel: instance sbt record offset %d overflows 24 bits", offset))
	}
	inst.sbtOffsetAndFlags = offset | (inst.sbtOffsetAndFlags & (0xFF << instanceFlagsShift))
}

// InstanceFlags returns the instance's 8-bit flag byte.
func (inst Instance) InstanceFlags() uint8 {
	return uint8(inst.sbtOffsetAndFlags >> instanceFlagsShift)
}

// SetInstanceFlags sets the instance's 8-bit flag byte.
func (inst *Instance) SetInstanceFlags(flags uint8) {
	inst.sbtOffsetAndFlags = (inst.sbtOffsetAndFlags & sbtOffsetMask) | (uint32(flags) << instanceFlagsShift)
}

// worldBounds returns the conservative world-space AABB of the
// instance, derived from its BLAS's local bounds and its transform.
func (inst Instance) worldBounds() (min, max vecmath.Vec3) {
	localMin, localMax := inst.Blas.Bounds()
	return inst.Transform.TransformAABB(localMin, localMax)
}

// TLAS is the top-level acceleration structure: a flat list of
// instances, each a transformed reference to a BLAS. Intersect is a
// linear sweep rather than a tree, matching the original design's
// instance-count assumption (tens to low hundreds, not millions).
type TLAS struct {
	Instances []Instance
}

// NewTLAS builds a TLAS over the given instances. The slice is copied
// by reference; later mutation of an instance's Transform is visible
// to subsequent Intersect calls.
func NewTLAS(instances []Instance) *TLAS {
	if len(instances) == 0 {
		panic("accel: TLAS requires at least one instance")
	}
	return &TLAS{Instances: instances}
}

// Intersect sweeps every instance, transforming the ray into each
// instance's local space and delegating to its BLAS. closestT shrinks
// as closer hits are found so later instances are tested against a
// tighter range (not the original tMax), which matters once instances
// overlap in world space. On a hit, Position and Normal in hit are
// reassembled in world space: Position from the original world ray,
// Normal via the inverse-transpose of the instance's linear part.
func (t *TLAS) Intersect(r rtray.Ray, tMin, tMax float32, flags rtray.RayFlags, rayMask uint32) (rtray.Hit, bool) {
	hit := rtray.Miss()
	closestT := tMax
	found := false

	for instIdx := range t.Instances {
		inst := &t.Instances[instIdx]

		if rayMask != 0 && inst.Mask()&rayMask == 0 {
			continue
		}

		worldMin, worldMax := inst.worldBounds()
		if !rtray.IntersectAABB(r, worldMin, worldMax, tMin, closestT) {
			continue
		}

		invTransform := inst.Transform.Invert()
		localOrigin := invTransform.TransformPoint(r.Origin)
		localDirection := invTransform.TransformVector(r.Direction)
		localRay := rtray.NewRay(localOrigin, localDirection)

		var localHit rtray.Hit
		if !inst.Blas.Intersect(localRay, tMin, closestT, flags, &localHit) {
			continue
		}

		closestT = localHit.T
		found = true

		hit = localHit
		hit.InstanceID = uint32(instIdx)
		hit.Position = r.Origin.Add(r.Direction.Mul(localHit.T))
		hit.Normal = inst.Transform.InverseTransposeLinear().Mul3x1(localHit.Normal).Normalize()

		if flags.Has(rtray.RayFlagTerminateOnFirstHit) {
			return hit, true
		}
	}

	return hit, found
}
