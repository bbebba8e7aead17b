package collision

import (
	"log/slog"
	"math"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

// MeshInstance binds a static Mesh to a world Transform, refreshing
// its inverse scale/rotation every tick so the same mesh asset can
// back a moving or rotating piece of level geometry.
type MeshInstance struct {
	Mesh   *Mesh
	Object Transform

	invScale lin.V3
	invRot   lin.Q
}

// refresh recomputes inv-scale and inv-rot from the current object
// transform.
func (mi *MeshInstance) refresh() {
	s := mi.Object.Scale()
	mi.invScale = lin.V3{X: 1 / s.X, Y: 1 / s.Y, Z: 1 / s.Z}
	mi.invRot = mi.Object.Rotation().Conjugate()
}

func (mi *MeshInstance) toLocal(p lin.V3) lin.V3 {
	return mi.invRot.RotateV3(p.Sub(mi.Object.Position())).Mul(mi.invScale)
}

func (mi *MeshInstance) fromLocal(p lin.V3) lin.V3 {
	s := mi.Object.Scale()
	return mi.Object.Rotation().RotateV3(p.Mul(s)).Add(mi.Object.Position())
}

// Scene owns the two registration lists — mesh instances and dynamic
// bodies — and runs the per-tick resolution loop.
// Add/remove calls are deferred to the start of the next Step, since
// "add/remove must not happen while a tick is in progress".
type Scene struct {
	log *slog.Logger

	meshInstances []*MeshInstance
	bodies        []*BCS

	pendingAddMesh    []*MeshInstance
	pendingRemoveMesh []*MeshInstance
	pendingAddBody    []*BCS
	pendingRemoveBody []*BCS

	Events []CollEvent
}

// NewScene returns an empty collision scene. A nil logger defaults to
// slog.Default().
func NewScene(log *slog.Logger) *Scene {
	if log == nil {
		log = slog.Default()
	}
	return &Scene{log: log}
}

// AddMeshInstance registers mi, effective at the start of the next
// Step.
func (s *Scene) AddMeshInstance(mi *MeshInstance) { s.pendingAddMesh = append(s.pendingAddMesh, mi) }

// RemoveMeshInstance deregisters mi, effective at the start of the
// next Step.
func (s *Scene) RemoveMeshInstance(mi *MeshInstance) {
	s.pendingRemoveMesh = append(s.pendingRemoveMesh, mi)
}

// AddBody registers a dynamic BCS, effective at the start of the next
// Step.
func (s *Scene) AddBody(b *BCS) { s.pendingAddBody = append(s.pendingAddBody, b) }

// RemoveBody deregisters a dynamic BCS, effective at the start of the
// next Step.
func (s *Scene) RemoveBody(b *BCS) { s.pendingRemoveBody = append(s.pendingRemoveBody, b) }

// EnableBody and DisableBody support CollBody's enable/disable
// lifecycle (`original_source/.../collBody.cpp`'s onEvent): a body can
// be pulled out of and back into collision without destroying it, the
// same BCS value re-registered rather than rebuilt. They are aliases
// of AddBody/RemoveBody — the original's onEvent handler does exactly
// register/unregister, nothing more.
func (s *Scene) EnableBody(b *BCS)  { s.AddBody(b) }
func (s *Scene) DisableBody(b *BCS) { s.RemoveBody(b) }

// EnableMeshInstance and DisableMeshInstance are the mesh-instance
// counterpart of EnableBody/DisableBody.
func (s *Scene) EnableMeshInstance(mi *MeshInstance)  { s.AddMeshInstance(mi) }
func (s *Scene) DisableMeshInstance(mi *MeshInstance) { s.RemoveMeshInstance(mi) }

func (s *Scene) drainPending() {
	if len(s.pendingAddMesh) > 0 {
		s.meshInstances = append(s.meshInstances, s.pendingAddMesh...)
		s.pendingAddMesh = nil
	}
	if len(s.pendingRemoveMesh) > 0 {
		s.meshInstances = removeAll(s.meshInstances, s.pendingRemoveMesh)
		s.pendingRemoveMesh = nil
	}
	if len(s.pendingAddBody) > 0 {
		s.bodies = append(s.bodies, s.pendingAddBody...)
		s.pendingAddBody = nil
	}
	if len(s.pendingRemoveBody) > 0 {
		s.bodies = removeAll(s.bodies, s.pendingRemoveBody)
		s.pendingRemoveBody = nil
	}
}

func removeAll[T comparable](list []T, drop []T) []T {
	if len(drop) == 0 {
		return list
	}
	dropSet := make(map[T]bool, len(drop))
	for _, d := range drop {
		dropSet[d] = true
	}
	out := list[:0]
	for _, v := range list {
		if !dropSet[v] {
			out = append(out, v)
		}
	}
	return out
}

// Step advances the collision scene by dt seconds, running the full
// per-frame resolution pipeline.
func (s *Scene) Step(dt float32) {
	s.drainPending()
	s.Events = s.Events[:0]

	for _, mi := range s.meshInstances {
		mi.refresh()
	}
	for _, b := range s.bodies {
		b.HitTriTypes = 0
		b.RefreshExtent(b.Object.Scale())
	}

	for _, b := range s.bodies {
		s.stepBody(b, dt)
	}

	s.resolveDynamicPairs()

	for _, b := range s.bodies {
		b.Object.SetPosition(b.Center.Sub(b.ParentOffset))
	}
}

// stepBody sub-steps bcs against every registered mesh instance.
func (s *Scene) stepBody(b *BCS, dt float32) {
	speed2 := b.Velocity.Len2()
	steps := int(math.Round(float64(speed2) * 0.8))
	if steps < 1 {
		steps = 1
	}
	if steps > 10 {
		steps = 10
	}
	d := b.Velocity.Scale(dt / float32(steps))

	var contactNormal lin.V3
	var contacts int

	// Resolves Open Question 3: a body with no
	// mask bits configured checks static-mesh collision by default; a
	// body with mask bits configured only checks it if CheckMesh is
	// explicitly included in MaskRead.
	checkMesh := b.MaskRead == 0 || b.MaskRead&CheckMesh != 0

	for step := 0; step < steps; step++ {
		b.Center = b.Center.Add(d)
		if !checkMesh {
			continue
		}

		for _, mi := range s.meshInstances {
			local := mi.toLocal(b.Center)
			penetration, floorWall, hit := s.queryMesh(mi, b, local)
			if !hit {
				continue
			}
			if penetration.Len() <= MinPenetration {
				continue
			}
			if floorWall.Y > FloorAngle {
				b.HitTriTypes |= TriFloor
			} else {
				b.HitTriTypes |= TriWall
			}
			contactNormal = contactNormal.Add(floorWall)
			contacts++
			local = local.Sub(penetration)
			b.Center = mi.fromLocal(local)
		}
	}

	if contacts == 0 {
		return
	}
	contactNormal = contactNormal.Unit()

	switch {
	case b.HitTriTypes&TriFloor != 0 && b.Flags&FlagBouncy == 0 && b.Velocity.Y < 0:
		b.Velocity.Y = 0
	case b.Flags&FlagBouncy != 0:
		b.Velocity = reflect(b.Velocity, contactNormal).Scale(0.8)
	}
}

// queryMesh runs the BVH query and the matching shape primitive
// against every candidate triangle, returning the largest-penetration
// contact found this call.
func (s *Scene) queryMesh(mi *MeshInstance, b *BCS, localCenter lin.V3) (penetration, floorWall lin.V3, hit bool) {
	var bounds AABB
	if b.IsBox() {
		halfExtent := b.HalfExtent.Mul(mi.invScale).Abs()
		bounds = AABB{Min: localCenter.Sub(halfExtent), Max: localCenter.Add(halfExtent)}
	} else {
		r := b.Radius()
		bounds = AABB{Min: localCenter, Max: localCenter}.Expand(r)
	}

	var candidates [MaxResultCount]int32
	tris := mi.Mesh.BVH.QueryShape(bounds, candidates[:0], s.log)

	best := float32(-1)
	for _, ti := range tris {
		tri := mi.Mesh.Tris[ti]
		var info CollInfo
		var ok bool
		if b.IsBox() {
			info, ok = VsBox(tri, localCenter, b.HalfExtent.Mul(mi.invScale).Abs())
		} else {
			info, ok = VsSphere(tri, localCenter, b.Radius())
		}
		if !ok {
			continue
		}
		mag := info.Penetration.Len()
		if mag > best {
			best = mag
			penetration = info.Penetration
			floorWall = info.FloorWallAngle
			hit = true
		}
	}
	return
}

func reflect(v, normal lin.V3) lin.V3 {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// resolveDynamicPairs dispatches every unordered body pair whose masks
// match, enqueuing an event for each contact without resolving it.
func (s *Scene) resolveDynamicPairs() {
	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := s.bodies[j]
			if a.MaskRead&b.MaskWrite == 0 && b.MaskRead&a.MaskWrite == 0 {
				continue
			}
			if !bodiesOverlap(a, b) {
				continue
			}
			s.Events = append(s.Events, CollEvent{Self: a, Other: b})
		}
	}
}

func bodiesOverlap(a, b *BCS) bool {
	switch {
	case !a.IsBox() && !b.IsBox():
		r := a.Radius() + b.Radius()
		return a.Center.Sub(b.Center).Len2() <= r*r
	case a.IsBox() && b.IsBox():
		return a.MinAABB().X <= b.MaxAABB().X && a.MaxAABB().X >= b.MinAABB().X &&
			a.MinAABB().Y <= b.MaxAABB().Y && a.MaxAABB().Y >= b.MinAABB().Y &&
			a.MinAABB().Z <= b.MaxAABB().Z && a.MaxAABB().Z >= b.MinAABB().Z
	default:
		sphere, box := a, b
		if a.IsBox() {
			sphere, box = b, a
		}
		closest := sphere.Center.Max(box.MinAABB()).Min(box.MaxAABB())
		d := sphere.Center.Sub(closest)
		return d.Len2() <= sphere.Radius()*sphere.Radius()
	}
}

// RaycastFloor casts a vertical ray downward from worldPos, keeping
// the highest hit across every registered mesh instance and box body.
func (s *Scene) RaycastFloor(worldPos lin.V3) (RaycastRes, bool) {
	var best RaycastRes
	found := false

	for _, mi := range s.meshInstances {
		local := mi.toLocal(worldPos)
		var candidates [MaxResultCount]int32
		tris := mi.Mesh.BVH.QueryFloorColumn(local, candidates[:0], s.log)
		for _, ti := range tris {
			tri := mi.Mesh.Tris[ti]
			if !tri.IsFloor() {
				continue
			}
			res, ok := VsFloorRay(tri, local)
			if !ok {
				continue
			}
			worldHit := mi.fromLocal(res.HitPos)
			if !found || worldHit.Y > best.HitPos.Y {
				best = RaycastRes{HitPos: worldHit, Normal: mi.Object.Rotation().RotateV3(res.Normal)}
				found = true
			}
		}
	}

	for _, b := range s.bodies {
		if !b.IsBox() {
			continue
		}
		min, max := b.MinAABB(), b.MaxAABB()
		if worldPos.X < min.X || worldPos.X > max.X || worldPos.Z < min.Z || worldPos.Z > max.Z {
			continue
		}
		top := lin.V3{X: worldPos.X, Y: max.Y, Z: worldPos.Z}
		if !found || top.Y > best.HitPos.Y {
			best = RaycastRes{HitPos: top, Normal: lin.V3{Y: 1}}
			found = true
		}
	}

	return best, found
}
