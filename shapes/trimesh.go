package shapes

import (
	"math"

	"github.com/gekko3d/impulse/bvh"
	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Trimesh is a triangle soup, typically used for static level geometry. Triangles are
// indexed by Indices[3*t : 3*t+3].
type Trimesh struct {
	Base

	Vertices []mgl64.Vec3
	Indices  []int
	Normals  []mgl64.Vec3

	localAABB geom.AABB
	tree      *bvh.Tree
}

func NewTrimesh(vertices []mgl64.Vec3, indices []int) *Trimesh {
	if len(indices)%3 != 0 {
		panic("shapes: trimesh index count must be a multiple of 3")
	}
	t := &Trimesh{
		Base:     newBase(KindTrimesh),
		Vertices: vertices,
		Indices:  indices,
	}
	t.UpdateTree()
	return t
}

// UpdateTree recomputes normals, bounds and the triangle hierarchy after the vertex or
// index data changed.
func (t *Trimesh) UpdateTree() {
	n := t.NumTriangles()
	t.Normals = t.Normals[:0]
	bounds := make([][2]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		a, b, c := t.TriangleVertices(i)
		t.Normals = append(t.Normals, geom.Unit(b.Sub(a).Cross(c.Sub(a))))
		bounds[i] = [2]mgl64.Vec3{
			geom.MinVec(a, geom.MinVec(b, c)),
			geom.MaxVec(a, geom.MaxVec(b, c)),
		}
	}
	t.tree = (&bvh.Builder{}).Build(bounds)
	t.localAABB.SetFromPoints(t.Vertices, geom.IdentityTransform(), 0)
	t.UpdateBoundingSphereRadius()
}

func (t *Trimesh) NumTriangles() int {
	return len(t.Indices) / 3
}

func (t *Trimesh) Vertex(i int) mgl64.Vec3 {
	return t.Vertices[i]
}

func (t *Trimesh) TriangleVertices(tri int) (a, b, c mgl64.Vec3) {
	return t.Vertices[t.Indices[3*tri]], t.Vertices[t.Indices[3*tri+1]], t.Vertices[t.Indices[3*tri+2]]
}

func (t *Trimesh) Normal(tri int) mgl64.Vec3 {
	return t.Normals[tri]
}

// TrianglesInAABB appends the triangles whose bounds overlap the local box.
func (t *Trimesh) TrianglesInAABB(box geom.AABB, out []int) []int {
	return t.tree.QueryAABB(box, out)
}

// TrianglesOnRay appends the triangles whose bounds the local ray crosses.
func (t *Trimesh) TrianglesOnRay(origin, direction mgl64.Vec3, out []int) []int {
	return t.tree.QueryRay(origin, direction, out)
}

func (t *Trimesh) LocalAABB() geom.AABB {
	return t.localAABB
}

func (t *Trimesh) UpdateBoundingSphereRadius() {
	maxSq := 0.0
	for _, v := range t.Vertices {
		maxSq = math.Max(maxSq, v.Dot(v))
	}
	t.boundingSphereRadius = math.Sqrt(maxSq)
}

func (t *Trimesh) Volume() float64 {
	return t.localAABB.Volume()
}

// CalculateLocalInertia approximates the mesh by its local bounding box.
func (t *Trimesh) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	return boxInertia(t.localAABB, mass)
}

func (t *Trimesh) CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB {
	return t.localAABB.ToWorldFrame(geom.NewTransform(pos, q))
}
