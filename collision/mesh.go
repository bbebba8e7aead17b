package collision

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

// i16Frac is the fixed-point scale for quantized vertices and normals:
// 15-bit signed fraction.
const i16Frac = 1.0 / 32767.0

// Triangle is a single mesh face in local space, with its precomputed
// face normal and bounds cached for the BVH build.
type Triangle struct {
	V0, V1, V2 lin.V3
	Normal     lin.V3
	Bounds     AABB
}

// IsFloor classifies the triangle by its normal's vertical component.
func (t Triangle) IsFloor() bool { return t.Normal.Y > FloorAngle }

func (t Triangle) centroid() lin.V3 {
	return t.V0.Add(t.V1).Add(t.V2).Scale(1.0 / 3.0)
}

func triBounds(v0, v1, v2 lin.V3) AABB {
	min := v0.Min(v1).Min(v2)
	max := v0.Max(v1).Max(v2)
	return AABB{Min: min, Max: max}
}

// Mesh is a static triangle mesh in local (mesh instance) space,
// loaded from a built asset.
type Mesh struct {
	CollScale float32
	Verts     []lin.V3
	Tris      []Triangle
	BVH       *BVH
}

// BuildMesh constructs a Mesh (and its BVH) from dequantized vertex
// positions and a triangle index list, the in-memory counterpart of
// the offline asset build that would quantize and write this data to
// disk. Index triples reference verts
// by position.
func BuildMesh(verts []lin.V3, indices []int32, collScale float32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("collision: index count %d is not a multiple of 3", len(indices))
	}
	triCount := len(indices) / 3
	m := &Mesh{CollScale: collScale, Verts: verts, Tris: make([]Triangle, triCount)}

	centroids := make([]lin.V3, triCount)
	bounds := make([]AABB, triCount)
	for i := 0; i < triCount; i++ {
		ia, ib, ic := indices[i*3], indices[i*3+1], indices[i*3+2]
		if int(ia) >= len(verts) || int(ib) >= len(verts) || int(ic) >= len(verts) {
			return nil, fmt.Errorf("collision: triangle %d references out-of-range vertex", i)
		}
		v0, v1, v2 := verts[ia], verts[ib], verts[ic]
		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Unit()
		tri := Triangle{V0: v0, V1: v1, V2: v2, Normal: normal, Bounds: triBounds(v0, v1, v2)}
		m.Tris[i] = tri
		centroids[i] = tri.centroid()
		bounds[i] = tri.Bounds
	}
	m.BVH = BuildBVH(centroids, bounds)
	return m, nil
}

// DecodeMesh parses the collision mesh payload format embedded in a
// model asset: `u32 tri-count, u32 vert-count, f32
// coll-scale, indices[3·tri-count]: i16, normals[tri-count]: i16×3,
// verts[vert-count]: i16×3, bvh-nodes[…]`. Normals are re-derived from
// vertex positions at load time rather than trusted from disk, since a
// mesh's BVH is rebuilt from its decoded triangles in any case.
func DecodeMesh(data []byte) (*Mesh, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("collision: mesh payload too short (%d bytes)", len(data))
	}
	triCount := int(binary.BigEndian.Uint32(data[0:4]))
	vertCount := int(binary.BigEndian.Uint32(data[4:8]))
	collScale := math.Float32frombits(binary.BigEndian.Uint32(data[8:12]))

	cursor := 12
	indicesEnd := cursor + triCount*3*2
	if indicesEnd > len(data) {
		return nil, fmt.Errorf("collision: mesh payload truncated indices")
	}
	indices := make([]int32, triCount*3)
	for i := range indices {
		indices[i] = int32(int16(binary.BigEndian.Uint16(data[cursor+i*2 : cursor+i*2+2])))
	}
	cursor = indicesEnd

	// Skip the on-disk normals; DecodeMesh recomputes them from
	// geometry (see doc comment above).
	normalsEnd := cursor + triCount*3*2
	if normalsEnd > len(data) {
		return nil, fmt.Errorf("collision: mesh payload truncated normals")
	}
	cursor = normalsEnd

	vertsEnd := cursor + vertCount*3*2
	if vertsEnd > len(data) {
		return nil, fmt.Errorf("collision: mesh payload truncated verts")
	}
	verts := make([]lin.V3, vertCount)
	for i := 0; i < vertCount; i++ {
		base := cursor + i*6
		x := int16(binary.BigEndian.Uint16(data[base : base+2]))
		y := int16(binary.BigEndian.Uint16(data[base+2 : base+4]))
		z := int16(binary.BigEndian.Uint16(data[base+4 : base+6]))
		verts[i] = lin.V3{
			X: float32(x) * i16Frac * collScale,
			Y: float32(y) * i16Frac * collScale,
			Z: float32(z) * i16Frac * collScale,
		}
	}

	return BuildMesh(verts, indices, collScale)
}

// VsSphere is the closest-point-on-triangle sphere test. center/radius are in the mesh's local space.
func VsSphere(tri Triangle, center lin.V3, radius float32) (CollInfo, bool) {
	closest := closestPointOnTriangle(center, tri.V0, tri.V1, tri.V2)
	d := center.Sub(closest)
	dist2 := d.Dot(d)
	if dist2 >= radius*radius {
		return CollInfo{}, false
	}
	dist := float32(math.Sqrt(float64(dist2)))
	normal := tri.Normal
	if dist > 1e-8 {
		// Ties break toward the face normal, so only use the
		// closest-point direction when it is well defined.
		normal = d.Scale(1 / dist)
		if normal.Dot(tri.Normal) < 0 {
			normal = tri.Normal
		}
	}
	return CollInfo{
		// Penetration points into the surface, so resolution (scene.go)
		// can subtract it from the shape's center to push it back out.
		Penetration:    normal.Scale(-(radius - dist)),
		FloorWallAngle: tri.Normal,
		CollCount:      1,
	}, true
}

// closestPointOnTriangle is the standard Ericson-style closest point
// query (barycentric region test), grounded on the same triangle-math
// shape the broader pack's SAT/clipping code uses for convex features.
func closestPointOnTriangle(p, a, b, c lin.V3) lin.V3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// VsBox is the 13-axis SAT test between an axis-aligned box and a
// triangle. halfExtent and
// center describe the box in the mesh's local space.
func VsBox(tri Triangle, center, halfExtent lin.V3) (CollInfo, bool) {
	v0 := tri.V0.Sub(center)
	v1 := tri.V1.Sub(center)
	v2 := tri.V2.Sub(center)

	e0 := v1.Sub(v0)
	e1 := v2.Sub(v1)
	e2 := v0.Sub(v2)

	boxAxes := [3]lin.V3{{X: 1}, {Y: 1}, {Z: 1}}
	edges := [3]lin.V3{e0, e1, e2}

	var axes []lin.V3
	for _, a := range boxAxes {
		axes = append(axes, a)
	}
	axes = append(axes, tri.Normal)
	for _, a := range boxAxes {
		for _, e := range edges {
			cr := a.Cross(e)
			if cr.AeqZ() {
				continue
			}
			axes = append(axes, cr.Unit())
		}
	}

	var (
		best     float32 = math.MaxFloat32
		bestAxis lin.V3
	)
	for _, axis := range axes {
		boxMin, boxMax := projectBox(halfExtent, axis)
		triMin, triMax := projectTri(v0, v1, v2, axis)
		// Penetration depth along axis: the shorter of the two
		// push-out distances.
		overlap := math.Min(float64(boxMax-triMin), float64(triMax-boxMin))
		if overlap <= 0 {
			return CollInfo{}, false
		}
		if float32(overlap) < best {
			best = float32(overlap)
			bestAxis = axis
			// Orient the MTV to push the box away from the triangle.
			boxCenterProj := float32(0)
			triCenterProj := ((triMin + triMax) / 2)
			if boxCenterProj < triCenterProj {
				bestAxis = axis.Neg()
			}
		}
	}

	mtv := bestAxis.Scale(best)
	return CollInfo{
		// mtv points away from the triangle (the resolution direction);
		// Penetration is the inward vector so scene.go's subtract-to-
		// resolve convention pushes the box back out, matching VsSphere.
		Penetration:    mtv.Neg(),
		FloorWallAngle: mtv.Unit(),
		CollCount:      1,
	}, true
}

func projectBox(halfExtent, axis lin.V3) (min, max float32) {
	r := halfExtent.X*absf(axis.X) + halfExtent.Y*absf(axis.Y) + halfExtent.Z*absf(axis.Z)
	return -r, r
}

func projectTri(v0, v1, v2, axis lin.V3) (min, max float32) {
	p0, p1, p2 := v0.Dot(axis), v1.Dot(axis), v2.Dot(axis)
	min = minf(p0, minf(p1, p2))
	max = maxf(p0, maxf(p1, p2))
	return
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// VsFloorRay casts a vertical ray downward from p and tests it against
// tri.
func VsFloorRay(tri Triangle, p lin.V3) (RaycastRes, bool) {
	if tri.Normal.Y <= 0 {
		return RaycastRes{}, false
	}
	// Moller-Trumbore-style vertical-ray intersection, specialized
	// since the ray direction is always (0,-1,0).
	denom := tri.Normal.Y
	if absf(denom) < 1e-8 {
		return RaycastRes{}, false
	}
	t := tri.Normal.Dot(tri.V0.Sub(p)) / denom
	hit := lin.V3{X: p.X, Y: p.Y + t, Z: p.Z}
	if !pointInTriangleXZ(hit, tri.V0, tri.V1, tri.V2) {
		return RaycastRes{}, false
	}
	return RaycastRes{HitPos: hit, Normal: tri.Normal}, true
}

func pointInTriangleXZ(p, a, b, c lin.V3) bool {
	sign := func(p1, p2, p3 lin.V3) float32 {
		return (p1.X-p3.X)*(p2.Z-p3.Z) - (p2.X-p3.X)*(p1.Z-p3.Z)
	}
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
