package collision

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/proverbiallemon/pyrite64/math/lin"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min lin.V3
	Max lin.V3
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Expand returns a grown by r along every axis: sphere-vs-AABB
// pruning works by expanding the node AABB by the sphere's radius.
func (a AABB) Expand(r float32) AABB {
	pad := lin.V3{X: r, Y: r, Z: r}
	return AABB{Min: a.Min.Sub(pad), Max: a.Max.Add(pad)}
}

// Overlaps reports whether a and b intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// ContainsXZ reports whether the 2D (XZ) projection of p falls inside
// a's footprint, used by raycastFloor descent.
func (a AABB) ContainsXZ(p lin.V3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// bvhMaxLeafSize bounds how many triangles a leaf node may hold before
// the median-split builder keeps subdividing.
const bvhMaxLeafSize = 8

// Node is a single BVH node: either internal (Left/Right index other
// nodes) or a leaf (TriStart/TriCount index into BVH.Tris). Leaf is
// distinguished by TriCount > 0, matching the original's flat
// tagged-node array.
type Node struct {
	Bounds   AABB
	Left     int32
	Right    int32
	TriStart int32
	TriCount int32
}

// IsLeaf reports whether n is a leaf node.
func (n Node) IsLeaf() bool { return n.TriCount > 0 }

// BVH is a static, offline-built bounding volume hierarchy over a
// mesh's triangles. It is read-only after Build; any
// number of goroutines may query it concurrently.
type BVH struct {
	Nodes []Node
	// Tris is the leaf-referenced triangle index permutation: leaf
	// node i covers Tris[TriStart : TriStart+TriCount].
	Tris []int32
	root int32
}

// BuildBVH constructs a BVH over the given triangle centroids and
// bounds via top-down median-split on the centroid's widest axis
//. centroids and bounds must be parallel slices, one entry
// per triangle.
func BuildBVH(centroids []lin.V3, bounds []AABB) *BVH {
	b := &BVH{Tris: make([]int32, len(centroids))}
	for i := range b.Tris {
		b.Tris[i] = int32(i)
	}
	if len(centroids) == 0 {
		// No nodes at all: Root reports -1 and every query returns
		// immediately.
		b.root = -1
		return b
	}
	b.root = b.build(0, len(b.Tris), centroids, bounds)
	return b
}

// build recursively splits tris[lo:hi] and appends the resulting node,
// returning its index. This mirrors the original engine's offline
// builder shape (recursive top-down split, written once at asset-build
// time), adapted to Go's slice-of-structs node array instead of raw
// pointer patching.
func (b *BVH) build(lo, hi int, centroids []lin.V3, bounds []AABB) int32 {
	bound := bounds[b.Tris[lo]]
	for i := lo + 1; i < hi; i++ {
		bound = bound.Union(bounds[b.Tris[i]])
	}

	count := hi - lo
	if count <= bvhMaxLeafSize {
		idx := int32(len(b.Nodes))
		b.Nodes = append(b.Nodes, Node{Bounds: bound, TriStart: int32(lo), TriCount: int32(count)})
		return idx
	}

	extent := bound.Max.Sub(bound.Min)
	axis := 0
	if extent.Y > axisOf(extent, axis) {
		axis = 1
	}
	if extent.Z > axisOf(extent, axis) {
		axis = 2
	}

	sort.Slice(b.Tris[lo:hi], func(i, j int) bool {
		return axisOf(centroids[b.Tris[lo+i]], axis) < axisOf(centroids[b.Tris[lo+j]], axis)
	})

	mid := lo + count/2
	idx := int32(len(b.Nodes))
	b.Nodes = append(b.Nodes, Node{Bounds: bound})
	left := b.build(lo, mid, centroids, bounds)
	right := b.build(mid, hi, centroids, bounds)
	b.Nodes[idx].Left = left
	b.Nodes[idx].Right = right
	return idx
}

func axisOf(v lin.V3, axis int) float32 {
	switch axis {
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		return v.X
	}
}

// Root returns the index of the tree's root node.
func (b *BVH) Root() int32 {
	if len(b.Nodes) == 0 {
		return -1
	}
	return b.root
}

// QueryShape descends the tree pruning by AABB overlap against
// shapeBounds, appending every candidate triangle index from
// intersected leaves into out. Every triangle of an intersected leaf
// is a candidate; triangles are not tested individually. Collection
// stops once out holds MaxResultCount-1 indices; the rest are dropped
// and the overflow is logged, and the already-collected candidates are
// returned.
func (b *BVH) QueryShape(shapeBounds AABB, out []int32, log *slog.Logger) []int32 {
	root := b.Root()
	if root < 0 {
		return out
	}
	return b.queryShapeNode(root, shapeBounds, out, log)
}

func (b *BVH) queryShapeNode(nodeIdx int32, shapeBounds AABB, out []int32, log *slog.Logger) []int32 {
	n := &b.Nodes[nodeIdx]
	if !n.Bounds.Overlaps(shapeBounds) {
		return out
	}
	if n.IsLeaf() {
		for i := n.TriStart; i < n.TriStart+n.TriCount; i++ {
			if len(out) >= MaxResultCount-1 {
				if log != nil {
					log.Warn("bvh query result overflow, truncating", "limit", MaxResultCount)
				}
				return out
			}
			out = append(out, b.Tris[i])
		}
		return out
	}
	out = b.queryShapeNode(n.Left, shapeBounds, out, log)
	out = b.queryShapeNode(n.Right, shapeBounds, out, log)
	return out
}

// QueryFloorColumn descends nodes whose footprint contains the (X,Z)
// of posLocal, appending candidate triangle indices.
func (b *BVH) QueryFloorColumn(posLocal lin.V3, out []int32, log *slog.Logger) []int32 {
	root := b.Root()
	if root < 0 {
		return out
	}
	return b.queryColumnNode(root, posLocal, out, log)
}

func (b *BVH) queryColumnNode(nodeIdx int32, posLocal lin.V3, out []int32, log *slog.Logger) []int32 {
	n := &b.Nodes[nodeIdx]
	if !n.Bounds.ContainsXZ(posLocal) {
		return out
	}
	if n.IsLeaf() {
		for i := n.TriStart; i < n.TriStart+n.TriCount; i++ {
			if len(out) >= MaxResultCount-1 {
				if log != nil {
					log.Warn("bvh floor query result overflow, truncating", "limit", MaxResultCount)
				}
				return out
			}
			out = append(out, b.Tris[i])
		}
		return out
	}
	out = b.queryColumnNode(n.Left, posLocal, out, log)
	out = b.queryColumnNode(n.Right, posLocal, out, log)
	return out
}

// validateLeafCoverage is a debug helper asserting every triangle is
// covered by exactly one leaf; used by tests, not the hot path.
func (b *BVH) validateLeafCoverage(triCount int) error {
	seen := make([]bool, triCount)
	for _, n := range b.Nodes {
		if !n.IsLeaf() {
			continue
		}
		for i := n.TriStart; i < n.TriStart+n.TriCount; i++ {
			t := b.Tris[i]
			if int(t) >= triCount {
				return fmt.Errorf("leaf references out-of-range triangle %d", t)
			}
			if seen[t] {
				return fmt.Errorf("triangle %d covered by more than one leaf", t)
			}
			seen[t] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("triangle %d not covered by any leaf", i)
		}
	}
	return nil
}
