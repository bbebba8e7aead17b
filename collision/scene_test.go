package collision

import (
	"testing"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

// fakeTransform is a minimal Transform for tests, standing in for an
// owning object the way a scripted entity would in the full runtime.
type fakeTransform struct {
	pos   lin.V3
	scale lin.V3
	rot   lin.Q
}

func newFakeTransform() *fakeTransform {
	return &fakeTransform{scale: lin.V3{X: 1, Y: 1, Z: 1}, rot: lin.QI}
}

func (f *fakeTransform) Position() lin.V3     { return f.pos }
func (f *fakeTransform) SetPosition(p lin.V3) { f.pos = p }
func (f *fakeTransform) Scale() lin.V3        { return f.scale }
func (f *fakeTransform) Rotation() lin.Q      { return f.rot }

func flatFloorMesh(t *testing.T) *Mesh {
	t.Helper()
	verts := []lin.V3{
		{X: -50, Y: 0, Z: -50},
		{X: 50, Y: 0, Z: -50},
		{X: 50, Y: 0, Z: 50},
		{X: -50, Y: 0, Z: 50},
	}
	// Wound so each triangle's cross(e1,e2) normal points +Y (up).
	indices := []int32{0, 2, 1, 0, 3, 2}
	m, err := BuildMesh(verts, indices, 1)
	if err != nil {
		t.Fatalf("BuildMesh: %v", err)
	}
	return m
}

// TestSceneFloorSnapsFallingBody checks that a sphere falling onto a
// floor mesh stops penetrating and its downward velocity is zeroed.
func TestSceneFloorSnapsFallingBody(t *testing.T) {
	scene := NewScene(nil)
	meshObj := newFakeTransform()
	scene.AddMeshInstance(&MeshInstance{Mesh: flatFloorMesh(t), Object: meshObj})

	bodyObj := newFakeTransform()
	bodyObj.pos = lin.V3{X: 0, Y: 1, Z: 0}
	body := &BCS{
		Center:     lin.V3{X: 0, Y: 1, Z: 0},
		HalfExtent: lin.V3{Y: 0.5},
		Velocity:   lin.V3{Y: -20},
		Object:     bodyObj,
	}
	scene.AddBody(body)

	for i := 0; i < 30; i++ {
		scene.Step(1.0 / 30.0)
		if body.Velocity.Y == 0 {
			break
		}
	}

	if body.Velocity.Y != 0 {
		t.Fatalf("expected resting body's downward velocity to be zeroed, got %v", body.Velocity.Y)
	}
	if body.Center.Y < 0.5-0.01 {
		t.Errorf("expected the body to rest at y>=radius above the floor, got %v", body.Center.Y)
	}
	if body.HitTriTypes&TriFloor == 0 {
		t.Error("expected HitTriTypes to record a floor contact")
	}
}

// TestSceneMeshMaskGating resolves Open Question 3: a body with mask bits configured skips mesh collision unless
// CheckMesh is explicitly set in MaskRead.
func TestSceneMeshMaskGating(t *testing.T) {
	scene := NewScene(nil)
	scene.AddMeshInstance(&MeshInstance{Mesh: flatFloorMesh(t), Object: newFakeTransform()})

	bodyObj := newFakeTransform()
	bodyObj.pos = lin.V3{X: 0, Y: 1, Z: 0}
	body := &BCS{
		Center:     lin.V3{X: 0, Y: 1, Z: 0},
		HalfExtent: lin.V3{Y: 0.5},
		Velocity:   lin.V3{Y: -20},
		Object:     bodyObj,
		MaskRead:   1, // mask configured, CheckMesh not included
	}
	scene.AddBody(body)

	scene.Step(1.0 / 30.0)
	if body.HitTriTypes&TriFloor != 0 {
		t.Fatal("expected mesh collision to be skipped when MaskRead omits CheckMesh")
	}
	if body.Velocity.Y == 0 {
		t.Fatal("expected velocity to remain unaffected when mesh collision is gated off")
	}

	// Put the body back at rest height and re-enable CheckMesh: the
	// same contact should now be detected.
	body.Center = lin.V3{X: 0, Y: 0.6, Z: 0}
	body.MaskRead |= CheckMesh
	scene.Step(1.0 / 30.0)
	if body.HitTriTypes&TriFloor == 0 {
		t.Error("expected mesh collision to resume once CheckMesh is included in MaskRead")
	}
}

func TestSceneRaycastFloorPicksHighest(t *testing.T) {
	scene := NewScene(nil)
	lowFloor := newFakeTransform()
	scene.AddMeshInstance(&MeshInstance{Mesh: flatFloorMesh(t), Object: lowFloor})

	highFloor := newFakeTransform()
	highFloor.pos = lin.V3{Y: 5}
	scene.AddMeshInstance(&MeshInstance{Mesh: flatFloorMesh(t), Object: highFloor})

	scene.Step(0) // drain pending registrations

	res, ok := scene.RaycastFloor(lin.V3{X: 0, Y: 50, Z: 0})
	if !ok {
		t.Fatal("expected a floor hit")
	}
	if res.HitPos.Y < 4.9 {
		t.Errorf("expected the raycast to report the higher floor, got y=%v", res.HitPos.Y)
	}
}

func TestSceneDeferredRemoveTakesEffectNextStep(t *testing.T) {
	scene := NewScene(nil)
	mi := &MeshInstance{Mesh: flatFloorMesh(t), Object: newFakeTransform()}
	scene.AddMeshInstance(mi)
	scene.Step(0)
	if len(scene.meshInstances) != 1 {
		t.Fatalf("expected mesh instance to be registered after a step, got %d", len(scene.meshInstances))
	}
	scene.RemoveMeshInstance(mi)
	if len(scene.meshInstances) != 1 {
		t.Fatal("expected removal to be deferred until the next Step")
	}
	scene.Step(0)
	if len(scene.meshInstances) != 0 {
		t.Fatalf("expected mesh instance removed after the deferred step, got %d", len(scene.meshInstances))
	}
}

// TestSceneDynamicPairMaskGating checks that a contact is only
// reported when the read/write masks actually match.
func TestSceneDynamicPairMaskGating(t *testing.T) {
	scene := NewScene(nil)
	a := &BCS{Center: lin.V3{}, HalfExtent: lin.V3{Y: 1}, Object: newFakeTransform(), MaskRead: 1, MaskWrite: 1}
	b := &BCS{Center: lin.V3{X: 0.1}, HalfExtent: lin.V3{Y: 1}, Object: newFakeTransform(), MaskRead: 2, MaskWrite: 2}
	scene.AddBody(a)
	scene.AddBody(b)
	scene.Step(0)

	if len(scene.Events) != 0 {
		t.Fatalf("expected no collision events when masks do not overlap, got %d", len(scene.Events))
	}

	b.MaskWrite = 1
	scene.Step(0)
	if len(scene.Events) != 1 {
		t.Fatalf("expected a collision event once masks overlap, got %d", len(scene.Events))
	}
}

func TestSceneDynamicPairStableOrdering(t *testing.T) {
	scene := NewScene(nil)
	a := &BCS{Center: lin.V3{}, HalfExtent: lin.V3{Y: 1}, Object: newFakeTransform(), MaskRead: 1, MaskWrite: 1}
	b := &BCS{Center: lin.V3{X: 0.1}, HalfExtent: lin.V3{Y: 1}, Object: newFakeTransform(), MaskRead: 1, MaskWrite: 1}
	scene.AddBody(a)
	scene.AddBody(b)
	scene.Step(0)
	if len(scene.Events) != 1 {
		t.Fatalf("expected exactly one event for a single overlapping pair, got %d", len(scene.Events))
	}
	if scene.Events[0].Self != a || scene.Events[0].Other != b {
		t.Error("expected the event to report (index_a < index_b) ordering")
	}
}

func TestBCSRefreshExtentScalesWithObject(t *testing.T) {
	obj := newFakeTransform()
	obj.scale = lin.V3{X: 2, Y: 3, Z: 4}
	b := &BCS{OrgScale: lin.V3{X: 1, Y: 1, Z: 1}, Object: obj}

	b.RefreshExtent(obj.Scale())
	if !b.HalfExtent.Eq(lin.V3{X: 2, Y: 3, Z: 4}) {
		t.Fatalf("expected HalfExtent to track object scale, got %+v", b.HalfExtent)
	}
}

func TestBCSRefreshExtentNoOpWithoutOrgScale(t *testing.T) {
	obj := newFakeTransform()
	obj.scale = lin.V3{X: 2, Y: 2, Z: 2}
	b := &BCS{HalfExtent: lin.V3{X: 1, Y: 1, Z: 1}, Object: obj}

	b.RefreshExtent(obj.Scale())
	if !b.HalfExtent.Eq(lin.V3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("expected HalfExtent unchanged when OrgScale is unset, got %+v", b.HalfExtent)
	}
}

func TestSceneEnableDisableBodyRoundTrips(t *testing.T) {
	scene := NewScene(nil)
	scene.AddMeshInstance(&MeshInstance{Mesh: flatFloorMesh(t), Object: newFakeTransform()})

	bodyObj := newFakeTransform()
	bodyObj.pos = lin.V3{X: 0, Y: 0.6, Z: 0}
	body := &BCS{Center: lin.V3{X: 0, Y: 0.6, Z: 0}, HalfExtent: lin.V3{Y: 0.5}, Object: bodyObj}
	scene.EnableBody(body)
	scene.Step(0)
	if len(scene.bodies) != 1 {
		t.Fatalf("expected EnableBody to register the body, got %d bodies", len(scene.bodies))
	}

	scene.DisableBody(body)
	scene.Step(0)
	if len(scene.bodies) != 0 {
		t.Fatalf("expected DisableBody to deregister the body, got %d bodies", len(scene.bodies))
	}
}
