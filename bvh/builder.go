package bvh

import (
	"math"
	"sort"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a flat tree node. Interior nodes have Left/Right set and LeafCount 0; leaves
// have Left = Right = -1 and reference Tree.Order[LeafFirst : LeafFirst+LeafCount].
type Node struct {
	Min       mgl64.Vec3
	Max       mgl64.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

func (n *Node) Bounds() geom.AABB {
	return geom.NewAABB(n.Min, n.Max)
}

type Item struct {
	Min      mgl64.Vec3
	Max      mgl64.Vec3
	Centroid mgl64.Vec3
	Index    int
}

// Tree is an immutable bounding volume hierarchy over item bounds.
type Tree struct {
	Nodes []Node
	Order []int
}

const DefaultMaxLeafItems = 4

type Builder struct {
	MaxLeafItems int
}

// Build creates a median split hierarchy over the given [min, max] bounds. The item
// index reported by queries is the position in bounds.
func (b *Builder) Build(bounds [][2]mgl64.Vec3) *Tree {
	tree := &Tree{}
	if len(bounds) == 0 {
		return tree
	}

	items := make([]Item, len(bounds))
	for i, bb := range bounds {
		items[i] = Item{
			Min:      bb[0],
			Max:      bb[1],
			Centroid: bb[0].Add(bb[1]).Mul(0.5),
			Index:    i,
		}
	}

	maxLeaf := b.MaxLeafItems
	if maxLeaf <= 0 {
		maxLeaf = DefaultMaxLeafItems
	}
	tree.Order = make([]int, 0, len(items))
	b.recursiveBuild(items, maxLeaf, tree)
	return tree
}

func (b *Builder) recursiveBuild(items []Item, maxLeaf int, tree *Tree) int32 {
	idx := int32(len(tree.Nodes))
	tree.Nodes = append(tree.Nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	minB := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxB := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, it := range items {
		minB = geom.MinVec(minB, it.Min)
		maxB = geom.MaxVec(maxB, it.Max)
	}
	tree.Nodes[idx].Min = minB
	tree.Nodes[idx].Max = maxB

	if len(items) <= maxLeaf {
		tree.Nodes[idx].LeafFirst = int32(len(tree.Order))
		tree.Nodes[idx].LeafCount = int32(len(items))
		for _, it := range items {
			tree.Order = append(tree.Order, it.Index)
		}
		return idx
	}

	// Split on the longest axis at the centroid median.
	extent := maxB.Sub(minB)
	axis := 0
	if extent[1] > extent[0] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := len(items) / 2
	left := b.recursiveBuild(items[:mid], maxLeaf, tree)
	right := b.recursiveBuild(items[mid:], maxLeaf, tree)
	tree.Nodes[idx].Left = left
	tree.Nodes[idx].Right = right
	return idx
}

// QueryAABB appends the indices of items whose bounds overlap box.
func (t *Tree) QueryAABB(box geom.AABB, out []int) []int {
	if len(t.Nodes) == 0 {
		return out
	}
	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &t.Nodes[stack[sp]]
		if !n.Bounds().Overlaps(box) {
			continue
		}
		if n.IsLeaf() {
			out = append(out, t.Order[n.LeafFirst:n.LeafFirst+n.LeafCount]...)
			continue
		}
		stack[sp] = n.Left
		sp++
		stack[sp] = n.Right
		sp++
	}
	return out
}

// QueryRay appends the indices of items whose bounds are hit by the ray. Items are
// candidates only; exact tests are up to the caller.
func (t *Tree) QueryRay(origin, direction mgl64.Vec3, out []int) []int {
	if len(t.Nodes) == 0 {
		return out
	}
	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &t.Nodes[stack[sp]]
		if !n.Bounds().OverlapsRay(origin, direction) {
			continue
		}
		if n.IsLeaf() {
			out = append(out, t.Order[n.LeafFirst:n.LeafFirst+n.LeafCount]...)
			continue
		}
		stack[sp] = n.Left
		sp++
		stack[sp] = n.Right
		sp++
	}
	return out
}

// Bounds returns the root box, or an empty box for an empty tree.
func (t *Tree) Bounds() geom.AABB {
	if len(t.Nodes) == 0 {
		return geom.AABB{}
	}
	return t.Nodes[0].Bounds()
}
