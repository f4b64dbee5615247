package shapes

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvex_PointIsInside(t *testing.T) {
	hull := NewBox(mgl64.Vec3{1, 1, 1}).Convex()

	assert.True(t, hull.PointIsInside(mgl64.Vec3{0.5, -0.5, 0.9}))
	assert.False(t, hull.PointIsInside(mgl64.Vec3{1.5, 0, 0}))
	assert.False(t, hull.PointIsInside(mgl64.Vec3{0, 0, -2}))
}

func TestConvex_Adjacency(t *testing.T) {
	hull := NewBox(mgl64.Vec3{1, 1, 1}).Convex()
	// The +z face touches the four sides but not the -z face.
	assert.ElementsMatch(t, []int{2, 3, 4, 5}, hull.adjacent[1])
}

func TestConvex_FindSeparatingAxis(t *testing.T) {
	a := NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex()
	b := NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex()
	id := mgl64.QuatIdent()

	axis, ok := a.FindSeparatingAxis(b, mgl64.Vec3{}, id, mgl64.Vec3{0, 0, 0.9}, id)
	require.True(t, ok)
	assertVec(t, mgl64.Vec3{0, 0, -1}, axis, 1e-12)

	_, ok = a.FindSeparatingAxis(b, mgl64.Vec3{}, id, mgl64.Vec3{0, 0, 1.1}, id)
	assert.False(t, ok)
}

func TestConvex_TestSepAxisDepth(t *testing.T) {
	a := NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex()
	id := mgl64.QuatIdent()

	depth, ok := a.TestSepAxis(mgl64.Vec3{1, 0, 0}, a, mgl64.Vec3{}, id, mgl64.Vec3{0.75, 0, 0}, id)
	require.True(t, ok)
	assert.InDelta(t, 0.25, depth, 1e-12)
}

func TestClipFaceAgainstPlane(t *testing.T) {
	square := []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}

	out := ClipFaceAgainstPlane(square, nil, mgl64.Vec3{1, 0, 0}, -0.5)
	require.Len(t, out, 4)
	for _, p := range out {
		assert.LessOrEqual(t, p.X(), 0.5+1e-12)
	}

	assert.Empty(t, ClipFaceAgainstPlane(square, nil, mgl64.Vec3{1, 0, 0}, 5))
	assert.Len(t, ClipFaceAgainstPlane(square, nil, mgl64.Vec3{1, 0, 0}, -5), 4)
}

func TestClipper_StackedBoxes(t *testing.T) {
	a := NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex()
	b := NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex()
	id := mgl64.QuatIdent()
	posB := mgl64.Vec3{0, 0, 0.9}

	var cl Clipper
	points := cl.ClipAgainstHull(a, mgl64.Vec3{}, id, b, posB, id, mgl64.Vec3{0, 0, -1}, -100, 100, nil)

	require.Len(t, points, 4)
	for _, p := range points {
		assert.InDelta(t, -0.1, p.Depth, 1e-12)
		assert.InDelta(t, 0.4, p.Point.Z(), 1e-12)
		assertVec(t, mgl64.Vec3{0, 0, 1}, p.Normal, 1e-12)
	}
}

func TestCylinder_Hull(t *testing.T) {
	c := NewCylinder(1, 1, 2, 8)
	hull := c.Hull()

	assert.Equal(t, KindCylinder, c.Kind())
	require.Len(t, hull.Vertices, 16)
	require.Len(t, hull.Faces, 10)
	// Opposite sides share an axis, plus the shared cap axis.
	assert.Len(t, hull.UniqueAxes, 5)
	for i, n := range hull.FaceNormals {
		var center mgl64.Vec3
		for _, vi := range hull.Faces[i] {
			center = center.Add(hull.Vertices[vi])
		}
		center = center.Mul(1 / float64(len(hull.Faces[i])))
		assert.Greater(t, n.Dot(center), 0.0, "face %d points inwards", i)
	}
	assert.InDelta(t, mgl64.Vec3{1, 1, 0}.Len(), c.BoundingSphereRadius(), 1e-12)
	assert.Panics(t, func() { NewCylinder(1, 1, 1, 2) })
}
