package collision

import (
	"math"
	"testing"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

func flatFloorTri() Triangle {
	// Wound so the cross product of the edges points +Y (up).
	v0 := lin.V3{X: -5, Y: 0, Z: -5}
	v1 := lin.V3{X: 0, Y: 0, Z: 5}
	v2 := lin.V3{X: 5, Y: 0, Z: -5}
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Unit()
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: n, Bounds: triBounds(v0, v1, v2)}
}

func TestTriangleIsFloor(t *testing.T) {
	tri := flatFloorTri()
	if !tri.IsFloor() {
		t.Fatalf("flat upward triangle should classify as floor, normal=%+v", tri.Normal)
	}
}

func TestVsSpherePenetrates(t *testing.T) {
	tri := flatFloorTri()
	info, hit := VsSphere(tri, lin.V3{X: 0, Y: 0.5, Z: 0}, 1.0)
	if !hit {
		t.Fatal("expected sphere resting on the plane to register a hit")
	}
	if info.Penetration.Y >= 0 {
		t.Errorf("expected penetration to point into the floor (negative Y), got %+v", info.Penetration)
	}
	if info.FloorWallAngle.Y <= FloorAngle {
		t.Errorf("expected floor classification, angle=%+v", info.FloorWallAngle)
	}
}

func TestVsSphereNoPenetration(t *testing.T) {
	tri := flatFloorTri()
	_, hit := VsSphere(tri, lin.V3{X: 0, Y: 10, Z: 0}, 1.0)
	if hit {
		t.Fatal("a sphere far above the plane should not register a hit")
	}
}

func TestVsBoxOverlapping(t *testing.T) {
	tri := flatFloorTri()
	info, hit := VsBox(tri, lin.V3{X: 0, Y: 0.5, Z: 0}, lin.V3{X: 1, Y: 1, Z: 1})
	if !hit {
		t.Fatal("expected a box straddling the plane to overlap")
	}
	if info.Penetration.Len() <= 0 {
		t.Errorf("expected a non-zero MTV, got %+v", info.Penetration)
	}
}

func TestVsBoxSeparated(t *testing.T) {
	tri := flatFloorTri()
	_, hit := VsBox(tri, lin.V3{X: 0, Y: 20, Z: 0}, lin.V3{X: 1, Y: 1, Z: 1})
	if hit {
		t.Fatal("a box far above the plane should not overlap")
	}
}

func TestVsFloorRayHits(t *testing.T) {
	tri := flatFloorTri()
	res, hit := VsFloorRay(tri, lin.V3{X: 0, Y: 10, Z: -2})
	if !hit {
		t.Fatal("expected the downward ray to strike the floor triangle")
	}
	if math.Abs(float64(res.HitPos.Y)) > 1e-5 {
		t.Errorf("expected hit at y=0, got %+v", res.HitPos)
	}
	if !res.HasResult() {
		t.Error("expected HasResult to be true for a floor hit")
	}
}

func TestVsFloorRayMissesOutsideTriangle(t *testing.T) {
	tri := flatFloorTri()
	_, hit := VsFloorRay(tri, lin.V3{X: 100, Y: 10, Z: 100})
	if hit {
		t.Fatal("a ray outside the triangle's footprint should not hit")
	}
}

func TestBuildMeshRejectsBadIndexCount(t *testing.T) {
	_, err := BuildMesh([]lin.V3{{}}, []int32{0, 1}, 1)
	if err == nil {
		t.Fatal("expected an error for a non-multiple-of-3 index list")
	}
}

func TestBuildMeshRejectsOutOfRangeIndex(t *testing.T) {
	_, err := BuildMesh([]lin.V3{{}, {}, {}}, []int32{0, 1, 5}, 1)
	if err == nil {
		t.Fatal("expected an error for an out-of-range vertex index")
	}
}

func TestDecodeMeshRoundTrip(t *testing.T) {
	// Build a tiny encoded payload by hand: 1 triangle, 3 verts, no
	// scale, matching the collision mesh payload layout.
	verts := []lin.V3{{X: -1, Y: 0, Z: -1}, {X: 1, Y: 0, Z: -1}, {X: 0, Y: 0, Z: 1}}
	indices := []int32{0, 1, 2}

	data := make([]byte, 0, 64)
	data = appendU32(data, 1) // triCount
	data = appendU32(data, 3) // vertCount
	data = appendF32(data, 32767)
	for _, i := range indices {
		data = appendI16(data, int16(i))
	}
	data = appendI16(data, 0) // placeholder normal (1 tri), ignored by the decoder
	data = appendI16(data, 0)
	data = appendI16(data, 0)
	for _, v := range verts {
		data = appendI16(data, int16(v.X))
		data = appendI16(data, int16(v.Y))
		data = appendI16(data, int16(v.Z))
	}

	m, err := DecodeMesh(data)
	if err != nil {
		t.Fatalf("DecodeMesh: %v", err)
	}
	if len(m.Tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(m.Tris))
	}
	if !m.Tris[0].V0.Aeq(lin.V3{X: -1, Y: 0, Z: -1}) {
		t.Errorf("V0 = %+v", m.Tris[0].V0)
	}
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendI16(b []byte, v int16) []byte {
	u := uint16(v)
	return append(b, byte(u>>8), byte(u))
}

func appendF32(b []byte, v float32) []byte {
	u := math.Float32bits(v)
	return appendU32(b, u)
}
