package shapes

import (
	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

type Box struct {
	Base
	HalfExtents mgl64.Vec3
	// ConvexRepresentation is the hull used by the convex algorithms. It is rebuilt by
	// UpdateConvexRepresentation.
	ConvexRepresentation *ConvexPolyhedron
}

func NewBox(halfExtents mgl64.Vec3) *Box {
	if halfExtents[0] < 0 || halfExtents[1] < 0 || halfExtents[2] < 0 {
		panic("shapes: box half extents cannot be negative")
	}
	b := &Box{Base: newBase(KindBox), HalfExtents: halfExtents}
	b.UpdateConvexRepresentation()
	b.UpdateBoundingSphereRadius()
	return b
}

func (b *Box) UpdateConvexRepresentation() {
	sx, sy, sz := b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]
	vertices := []mgl64.Vec3{
		{-sx, -sy, -sz},
		{sx, -sy, -sz},
		{sx, sy, -sz},
		{-sx, sy, -sz},
		{-sx, -sy, sz},
		{sx, -sy, sz},
		{sx, sy, sz},
		{-sx, sy, sz},
	}
	faces := [][]int{
		{3, 2, 1, 0}, // -z
		{4, 5, 6, 7}, // +z
		{5, 4, 0, 1}, // -y
		{2, 3, 7, 6}, // +y
		{0, 4, 7, 3}, // -x
		{1, 2, 6, 5}, // +x
	}
	h := NewConvexPolyhedron(vertices, faces)
	h.UniqueAxes = []mgl64.Vec3{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}
	b.ConvexRepresentation = h
	b.syncConvex()
}

// syncConvex copies the mutable common fields onto the convex representation.
func (b *Box) syncConvex() *ConvexPolyhedron {
	h := b.ConvexRepresentation
	h.CollisionFilterGroup = b.CollisionFilterGroup
	h.CollisionFilterMask = b.CollisionFilterMask
	h.CollisionResponse = b.CollisionResponse
	h.Material = b.Material
	return h
}

// Convex returns the box hull with its common fields in sync with the box.
func (b *Box) Convex() *ConvexPolyhedron {
	return b.syncConvex()
}

func (b *Box) UpdateBoundingSphereRadius() {
	b.boundingSphereRadius = b.HalfExtents.Len()
	if b.ConvexRepresentation != nil {
		b.ConvexRepresentation.boundingSphereRadius = b.boundingSphereRadius
	}
}

func (b *Box) Volume() float64 {
	return 8.0 * b.HalfExtents[0] * b.HalfExtents[1] * b.HalfExtents[2]
}

func (b *Box) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	return boxInertia(geom.NewAABB(b.HalfExtents.Mul(-1), b.HalfExtents), mass)
}

// SideNormals returns the six face normals scaled by the half extent on their axis and
// rotated by q: +x, +y, +z, -x, -y, -z.
func (b *Box) SideNormals(q mgl64.Quat) [6]mgl64.Vec3 {
	e := b.HalfExtents
	sides := [6]mgl64.Vec3{
		{e[0], 0, 0},
		{0, e[1], 0},
		{0, 0, e[2]},
		{-e[0], 0, 0},
		{0, -e[1], 0},
		{0, 0, -e[2]},
	}
	for i := range sides {
		sides[i] = q.Rotate(sides[i])
	}
	return sides
}

func (b *Box) CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB {
	local := geom.NewAABB(b.HalfExtents.Mul(-1), b.HalfExtents)
	return local.ToWorldFrame(geom.NewTransform(pos, q))
}
