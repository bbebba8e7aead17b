// Package collision implements the runtime collision engine: a static
// BVH per triangle mesh, swept sphere/box dynamic bodies, floor
// raycasts, and the per-tick resolution loop. It never imports the
// build or runtime packages — a Transform is the only seam between an
// owning object and the collision core, the same separation the
// original keeps between its Object type and the Coll:: namespace.
package collision

import "github.com/proverbiallemon/pyrite64/math/lin"

// Transform is the minimal view of an owning object the collision
// engine needs: its world position/scale/rotation, and a way to write
// a new position back after a tick.
type Transform interface {
	Position() lin.V3
	SetPosition(lin.V3)
	Scale() lin.V3
	Rotation() lin.Q
}

// BCS flag bits, plus CheckMesh which resolves Open Question 3
//: when any mask bits are configured on a body,
// mesh collision only runs if CheckMesh is included in MaskRead.
const (
	FlagBox uint8 = 1 << iota
	FlagTrigger
	FlagBouncy
	FlagFixedXYZ
)

// CheckMesh is not a Flags bit — it is a MaskRead bit reserved for
// gating static-mesh collision. It is
// defined separately from Flag* because mask bits and shape/behavior
// flags are different bitsets in the wire format.
const CheckMesh uint8 = 1 << 7

// TriType classifies a contact by the struck triangle's slope.
const (
	TriFloor uint8 = 1 << iota
	TriWall
)

// FloorAngle is the minimum normal.Y for a triangle to be classified
// as a floor rather than a wall.
const FloorAngle float32 = 0.7

// MinPenetration is the smallest penetration magnitude worth resolving;
// anything smaller is silently discarded rather than triggering a
// resolution step.
const MinPenetration float32 = 0.00004

// MaxResultCount bounds how many candidate triangle indices a single
// BVH query may return; exceeding it is logged, not
// fatal, and the already-collected candidates are used.
const MaxResultCount = 64

// BCS (Bounded Collision Shape) is a dynamic body: a sphere or an
// axis-aligned box. Spheres read HalfExtent.Y as their
// radius.
//
// OrgScale is the unscaled half-extent recovered from
// `original_source/.../collBody.h`'s CollBody component: the
// distilled spec freezes a body's half-extent at load time, but the
// original re-derives it from the owning object's current scale every
// tick (`halfExtend = orgScale * obj.scale`). RefreshExtent applies
// that rule; callers that never resize their object at runtime can
// leave OrgScale zero and set HalfExtent directly.
type BCS struct {
	Center       lin.V3
	HalfExtent   lin.V3
	OrgScale     lin.V3
	Velocity     lin.V3
	ParentOffset lin.V3

	Object Transform

	MaskRead    uint8
	MaskWrite   uint8
	Flags       uint8
	HitTriTypes uint8
}

// RefreshExtent recomputes HalfExtent from OrgScale and the object's
// current world scale, matching the original's per-tick CollBody
// update. A body that never sets OrgScale is unaffected (product with
// the zero vector would otherwise zero HalfExtent, so this is a no-op
// when OrgScale is the zero value).
func (b *BCS) RefreshExtent(objectScale lin.V3) {
	if b.OrgScale.Eq(lin.V3{}) {
		return
	}
	b.HalfExtent = b.OrgScale.Mul(objectScale)
}

// IsBox reports whether bcs is a box shape rather than a sphere.
func (b *BCS) IsBox() bool { return b.Flags&FlagBox != 0 }

// IsTrigger reports whether bcs only reports contacts without being
// solid.
func (b *BCS) IsTrigger() bool { return b.Flags&FlagTrigger != 0 }

// Radius returns the sphere radius (spheres only read HalfExtent.Y).
func (b *BCS) Radius() float32 { return b.HalfExtent.Y }

// MinAABB and MaxAABB give the body's current world-space bounds.
func (b *BCS) MinAABB() lin.V3 { return b.Center.Sub(b.HalfExtent) }
func (b *BCS) MaxAABB() lin.V3 { return b.Center.Add(b.HalfExtent) }

// CollInfo is the result of a single shape-vs-triangle test.
type CollInfo struct {
	Penetration    lin.V3
	FloorWallAngle lin.V3
	CollCount      int
}

// RaycastRes is the result of a floor raycast.
type RaycastRes struct {
	HitPos lin.V3
	Normal lin.V3
}

// HasResult reports whether the raycast actually struck something,
// matching the original's `normal.y != 0` convention.
func (r RaycastRes) HasResult() bool { return r.Normal.Y != 0 }

// CollEvent is a pairwise dynamic-body contact notification; no automatic resolution is applied, only reported.
type CollEvent struct {
	Self  *BCS
	Other *BCS
}
