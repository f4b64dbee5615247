package shapes

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// ConvexPolyhedron is a closed convex hull. Faces list vertex indices counter clockwise
// when seen from outside, so face normals point out of the hull.
type ConvexPolyhedron struct {
	Base

	Vertices    []mgl64.Vec3
	Faces       [][]int
	FaceNormals []mgl64.Vec3
	UniqueEdges []mgl64.Vec3
	// UniqueAxes, when set, replaces the face normals as candidate separating axes.
	UniqueAxes []mgl64.Vec3

	adjacent [][]int
}

func NewConvexPolyhedron(vertices []mgl64.Vec3, faces [][]int) *ConvexPolyhedron {
	c := &ConvexPolyhedron{
		Base:     newBase(KindConvex),
		Vertices: vertices,
		Faces:    faces,
	}
	c.UpdateGeometry()
	return c
}

// UpdateGeometry recomputes everything derived from Vertices and Faces. Existing slices
// are reused.
func (c *ConvexPolyhedron) UpdateGeometry() {
	c.computeNormals()
	c.computeEdges()
	c.computeAdjacency()
	c.UpdateBoundingSphereRadius()
}

func (c *ConvexPolyhedron) computeNormals() {
	c.FaceNormals = c.FaceNormals[:0]
	for i := range c.Faces {
		c.FaceNormals = append(c.FaceNormals, c.faceNormal(i))
	}
}

func (c *ConvexPolyhedron) faceNormal(i int) mgl64.Vec3 {
	f := c.Faces[i]
	va, vb, vc := c.Vertices[f[0]], c.Vertices[f[1]], c.Vertices[f[2]]
	return geom.Unit(vb.Sub(va).Cross(vc.Sub(va)))
}

func (c *ConvexPolyhedron) computeEdges() {
	c.UniqueEdges = c.UniqueEdges[:0]
	for _, face := range c.Faces {
		n := len(face)
		for j := 0; j < n; j++ {
			edge := geom.Unit(c.Vertices[face[j]].Sub(c.Vertices[face[(j+1)%n]]))
			found := false
			for _, e := range c.UniqueEdges {
				if geom.AlmostEquals(e, edge, 1e-6) || geom.AlmostEquals(e, edge.Mul(-1), 1e-6) {
					found = true
					break
				}
			}
			if !found {
				c.UniqueEdges = append(c.UniqueEdges, edge)
			}
		}
	}
}

// computeAdjacency records, per face, the other faces sharing at least one vertex.
func (c *ConvexPolyhedron) computeAdjacency() {
	if cap(c.adjacent) >= len(c.Faces) {
		c.adjacent = c.adjacent[:len(c.Faces)]
	} else {
		c.adjacent = make([][]int, len(c.Faces))
	}
	for i, fi := range c.Faces {
		c.adjacent[i] = c.adjacent[i][:0]
		for j, fj := range c.Faces {
			if i == j {
				continue
			}
			if sharesVertex(fi, fj) {
				c.adjacent[i] = append(c.adjacent[i], j)
			}
		}
	}
}

func sharesVertex(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (c *ConvexPolyhedron) UpdateBoundingSphereRadius() {
	maxSq := 0.0
	for _, v := range c.Vertices {
		if l := v.Dot(v); l > maxSq {
			maxSq = l
		}
	}
	c.boundingSphereRadius = math.Sqrt(maxSq)
}

// PlaneConstantOfFace returns d such that n·p + d = 0 on face i.
func (c *ConvexPolyhedron) PlaneConstantOfFace(i int) float64 {
	return -c.FaceNormals[i].Dot(c.Vertices[c.Faces[i][0]])
}

func (c *ConvexPolyhedron) AveragePointLocal() mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(c.Vertices) == 0 {
		return sum
	}
	for _, v := range c.Vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(c.Vertices)))
}

func (c *ConvexPolyhedron) LocalAABB() geom.AABB {
	var box geom.AABB
	box.SetFromPoints(c.Vertices, geom.IdentityTransform(), 0)
	return box
}

// Volume is that of the local bounding box.
func (c *ConvexPolyhedron) Volume() float64 {
	return c.LocalAABB().Volume()
}

// CalculateLocalInertia approximates the hull by its local bounding box.
func (c *ConvexPolyhedron) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	return boxInertia(c.LocalAABB(), mass)
}

func boxInertia(box geom.AABB, mass float64) mgl64.Vec3 {
	d := box.UpperBound.Sub(box.LowerBound)
	x, y, z := d[0], d[1], d[2]
	return mgl64.Vec3{
		mass * (y*y + z*z) / 12.0,
		mass * (x*x + z*z) / 12.0,
		mass * (x*x + y*y) / 12.0,
	}
}

func (c *ConvexPolyhedron) CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB {
	var box geom.AABB
	box.SetFromPoints(c.Vertices, geom.NewTransform(pos, q), 0)
	return box
}

// PointIsInside reports whether the local point p is on the inner side of every face.
func (c *ConvexPolyhedron) PointIsInside(p mgl64.Vec3) bool {
	inside := c.AveragePointLocal()
	for i, face := range c.Faces {
		n := c.FaceNormals[i]
		v := c.Vertices[face[0]]
		r1 := n.Dot(p.Sub(v))
		r2 := n.Dot(inside.Sub(v))
		if (r1 < 0 && r2 > 0) || (r1 > 0 && r2 < 0) {
			return false
		}
	}
	return true
}

// Project returns the extent of the hull, placed at pos/q, along a world axis.
func (c *ConvexPolyhedron) Project(axis, pos mgl64.Vec3, q mgl64.Quat) (lo, hi float64) {
	localAxis := q.Conjugate().Rotate(axis)
	add := pos.Dot(axis)
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range c.Vertices {
		d := v.Dot(localAxis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo + add, hi + add
}

// TestSepAxis returns the overlap depth of the two hulls along axis, or false when the
// axis separates them.
func (c *ConvexPolyhedron) TestSepAxis(axis mgl64.Vec3, hullB *ConvexPolyhedron, posA mgl64.Vec3, quatA mgl64.Quat, posB mgl64.Vec3, quatB mgl64.Quat) (float64, bool) {
	minA, maxA := c.Project(axis, posA, quatA)
	minB, maxB := hullB.Project(axis, posB, quatB)
	if maxA < minB || maxB < minA {
		return 0, false
	}
	d0 := maxA - minB
	d1 := maxB - minA
	return math.Min(d0, d1), true
}

// FindSeparatingAxis searches face normals (or unique axes) of both hulls and the cross
// products of their edges for the axis of least penetration. It returns false when
// the hulls are separated. The axis points from B towards A.
func (c *ConvexPolyhedron) FindSeparatingAxis(hullB *ConvexPolyhedron, posA mgl64.Vec3, quatA mgl64.Quat, posB mgl64.Vec3, quatB mgl64.Quat) (mgl64.Vec3, bool) {
	dmin := math.MaxFloat64
	var target mgl64.Vec3

	test := func(axis mgl64.Vec3) bool {
		d, ok := c.TestSepAxis(axis, hullB, posA, quatA, posB, quatB)
		if !ok {
			return false
		}
		if d < dmin {
			dmin = d
			target = axis
		}
		return true
	}

	for _, axis := range c.candidateAxes() {
		if !test(quatA.Rotate(axis)) {
			return target, false
		}
	}
	for _, axis := range hullB.candidateAxes() {
		if !test(quatB.Rotate(axis)) {
			return target, false
		}
	}

	for _, e0 := range c.UniqueEdges {
		worldEdge0 := quatA.Rotate(e0)
		for _, e1 := range hullB.UniqueEdges {
			cross := worldEdge0.Cross(quatB.Rotate(e1))
			if geom.AlmostZero(cross, 1e-6) {
				continue
			}
			if !test(geom.Unit(cross)) {
				return target, false
			}
		}
	}

	if posB.Sub(posA).Dot(target) > 0 {
		target = target.Mul(-1)
	}
	return target, true
}

func (c *ConvexPolyhedron) candidateAxes() []mgl64.Vec3 {
	if len(c.UniqueAxes) > 0 {
		return c.UniqueAxes
	}
	return c.FaceNormals
}

// WorldVertex returns vertex i placed at pos/q.
func (c *ConvexPolyhedron) WorldVertex(i int, pos mgl64.Vec3, q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(c.Vertices[i]).Add(pos)
}
