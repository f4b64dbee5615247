package impulse

import (
	"testing"

	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGSSolver_NoEquations(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	s := NewGSSolver()
	assert.Zero(t, s.Solve(testDt, w))
}

func TestGSSolver_ContactStopsApproach(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	sphere := bodyWith(1, shapes.NewSphere(1), mgl64.Vec3{0, 0, 0.9})
	sphere.Velocity = mgl64.Vec3{0, 0, -1}
	ground := bodyWith(0, shapes.NewPlane(), mgl64.Vec3{})
	w.AddBody(sphere)
	w.AddBody(ground)

	c := NewContactEquation(sphere, ground)
	c.NI = mgl64.Vec3{0, 0, -1}
	c.RI = mgl64.Vec3{0, 0, -1}
	c.RJ = mgl64.Vec3{}

	s := NewGSSolver()
	s.AddEquation(c)
	require.Equal(t, 1, s.NumEquations())

	iterations := s.Solve(testDt, w)

	assert.LessOrEqual(t, iterations, 2)
	assert.Greater(t, sphere.Velocity.Z(), 0.0)
	assert.Equal(t, mgl64.Vec3{}, ground.Velocity)
	assert.Greater(t, c.Multiplier, 0.0)

	s.RemoveAllEquations()
	assert.Zero(t, s.NumEquations())
}

func TestGSSolver_IgnoresDisabledEquations(t *testing.T) {
	a, b := NewBody(1), NewBody(1)
	c := NewContactEquation(a, b)
	c.Enabled = false

	s := NewGSSolver()
	s.AddEquation(c)
	assert.Zero(t, s.NumEquations())
}

func TestGSSolver_RemoveEquation(t *testing.T) {
	a, b := NewBody(1), NewBody(1)
	c1, c2 := NewContactEquation(a, b), NewContactEquation(a, b)

	s := NewGSSolver()
	s.AddEquation(c1)
	s.AddEquation(c2)
	s.RemoveEquation(c1)

	assert.Equal(t, 1, s.NumEquations())
	assert.NotEqual(t, c1.ID(), c2.ID())
}
