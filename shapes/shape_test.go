package shapes

import (
	"math"
	"testing"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_IDsAreUnique(t *testing.T) {
	a, b := NewSphere(1), NewPlane()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, KindSphere, a.Kind())
	assert.Equal(t, "plane", b.Kind().String())
	assert.Equal(t, 1, a.CollisionFilterGroup)
	assert.Equal(t, -1, a.CollisionFilterMask)
	assert.True(t, a.CollisionResponse)
}

func TestSphere(t *testing.T) {
	s := NewSphere(2)
	assert.InDelta(t, 32*math.Pi/3, s.Volume(), 1e-9)
	assertVec(t, mgl64.Vec3{8, 8, 8}, s.CalculateLocalInertia(5), 1e-12)

	box := s.CalculateWorldAABB(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent())
	assertVec(t, mgl64.Vec3{-1, -2, -2}, box.LowerBound, 1e-12)
	assertVec(t, mgl64.Vec3{3, 2, 2}, box.UpperBound, 1e-12)
	assert.Panics(t, func() { NewSphere(-1) })
}

func TestPlane_WorldAABB(t *testing.T) {
	p := NewPlane()
	box := p.CalculateWorldAABB(mgl64.Vec3{0, 0, 2}, mgl64.QuatIdent())
	assert.Equal(t, 2.0, box.UpperBound.Z())
	assert.Equal(t, -math.MaxFloat64, box.LowerBound.Z())
	assert.Equal(t, math.MaxFloat64, box.UpperBound.X())

	flipped := mgl64.QuatRotate(math.Pi, mgl64.Vec3{1, 0, 0})
	assertVec(t, mgl64.Vec3{0, 0, -1}, p.WorldNormal(flipped), 1e-12)
	box = p.CalculateWorldAABB(mgl64.Vec3{0, 0, 2}, flipped)
	assert.Equal(t, 2.0, box.LowerBound.Z())
}

func TestParticle(t *testing.T) {
	p := NewParticle()
	assert.Zero(t, p.BoundingSphereRadius())
	assert.Zero(t, p.Volume())
	box := p.CalculateWorldAABB(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	assert.Equal(t, box.LowerBound, box.UpperBound)
}

func TestTrimesh_Queries(t *testing.T) {
	mesh := NewTrimesh([]mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{5, 0, 0}, {6, 0, 0}, {5, 1, 0},
	}, []int{0, 1, 2, 3, 4, 5})

	require.Equal(t, 2, mesh.NumTriangles())
	assertVec(t, mgl64.Vec3{0, 0, 1}, mesh.Normal(0), 1e-12)
	assertVec(t, mgl64.Vec3{0, 0, 1}, mesh.Normal(1), 1e-12)

	near := geom.NewAABB(mgl64.Vec3{0.2, 0.2, -0.1}, mgl64.Vec3{0.4, 0.4, 0.1})
	assert.Equal(t, []int{0}, mesh.TrianglesInAABB(near, nil))

	hits := mesh.TrianglesOnRay(mgl64.Vec3{5.2, 0.2, 1}, mgl64.Vec3{0, 0, -1}, nil)
	assert.Equal(t, []int{1}, hits)

	box := mesh.LocalAABB()
	assertVec(t, mgl64.Vec3{0, 0, 0}, box.LowerBound, 1e-12)
	assertVec(t, mgl64.Vec3{6, 1, 0}, box.UpperBound, 1e-12)
	assert.InDelta(t, 6, mesh.BoundingSphereRadius(), 1e-12)

	assert.Panics(t, func() { NewTrimesh(nil, []int{0, 1}) })
}
