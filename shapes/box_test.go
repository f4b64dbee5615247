package shapes

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], delta)
	}
}

func TestBox_ConvexRepresentation(t *testing.T) {
	half := mgl64.Vec3{1, 2, 3}
	b := NewBox(half)
	hull := b.Convex()

	require.Len(t, hull.Vertices, 8)
	require.Len(t, hull.Faces, 6)
	require.Len(t, hull.FaceNormals, 6)
	for i, n := range hull.FaceNormals {
		assert.InDelta(t, 1, n.Len(), 1e-12)
		// Every face lies on the outer side of its own normal.
		for _, vi := range hull.Faces[i] {
			assert.Greater(t, n.Dot(hull.Vertices[vi]), 0.0)
		}
	}
	assert.Len(t, hull.UniqueEdges, 3)
	assert.InDelta(t, half.Len(), b.BoundingSphereRadius(), 1e-12)
	assert.Equal(t, 48.0, b.Volume())
}

func TestBox_ConvexFollowsCommonFields(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 1, 1})
	b.CollisionFilterGroup = 4
	b.CollisionResponse = false

	hull := b.Convex()
	assert.Equal(t, 4, hull.CollisionFilterGroup)
	assert.False(t, hull.CollisionResponse)
}

func TestBox_Inertia(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 1, 1})
	assertVec(t, mgl64.Vec3{8, 8, 8}, b.CalculateLocalInertia(12), 1e-12)
}

func TestBox_SideNormals(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 2, 3})
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	sides := b.SideNormals(q)

	assertVec(t, mgl64.Vec3{0, 1, 0}, sides[0], 1e-12)
	assertVec(t, mgl64.Vec3{-2, 0, 0}, sides[1], 1e-12)
	assertVec(t, mgl64.Vec3{0, 0, 3}, sides[2], 1e-12)
	for i := 0; i < 3; i++ {
		assertVec(t, sides[i].Mul(-1), sides[i+3], 1e-12)
	}
}

func TestBox_WorldAABBRotated(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 1, 1})
	q := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
	box := b.CalculateWorldAABB(mgl64.Vec3{10, 0, 0}, q)

	assertVec(t, mgl64.Vec3{10 - math.Sqrt2, -math.Sqrt2, -1}, box.LowerBound, 1e-9)
	assertVec(t, mgl64.Vec3{10 + math.Sqrt2, math.Sqrt2, 1}, box.UpperBound, 1e-9)
}

func TestNewBox_NegativeExtentsPanic(t *testing.T) {
	assert.Panics(t, func() { NewBox(mgl64.Vec3{1, -1, 1}) })
}
