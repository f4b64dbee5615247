package impulse

import (
	"testing"

	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceConstraint_CurrentDistance(t *testing.T) {
	a := NewBody(1)
	b := NewBody(1)
	b.Position = mgl64.Vec3{0, 3, 4}

	c := NewDistanceConstraint(a, b, -1, 1e6, DefaultConstraintOptions())
	assert.Equal(t, 5.0, c.Distance)
	require.Len(t, c.Equations(), 1)
	assert.Same(t, a, c.BodyA())
	assert.Same(t, b, c.BodyB())
	assert.True(t, c.CollideConnected())
}

func TestDistanceConstraint_PullsBodiesTogether(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	a := NewBody(1)
	b := NewBody(1)
	b.Position = mgl64.Vec3{3, 0, 0}
	w.AddBody(a)
	w.AddBody(b)
	w.AddConstraint(NewDistanceConstraint(a, b, 2, 1e6, DefaultConstraintOptions()))

	for i := 0; i < 120; i++ {
		w.StepFixed(testDt)
	}

	assert.InDelta(t, 2, b.Position.Sub(a.Position).Len(), 0.05)
	// Equal masses move symmetrically about the initial midpoint.
	assert.InDelta(t, 1.5, a.Position.Add(b.Position).Mul(0.5).X(), 1e-6)
}

func TestDistanceConstraint_Disable(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	a := NewBody(1)
	b := NewBody(1)
	b.Position = mgl64.Vec3{3, 0, 0}
	w.AddBody(a)
	w.AddBody(b)
	c := NewDistanceConstraint(a, b, 2, 1e6, DefaultConstraintOptions())
	c.Disable()
	w.AddConstraint(c)

	for i := 0; i < 10; i++ {
		w.StepFixed(testDt)
	}
	assert.Equal(t, 3.0, b.Position.Sub(a.Position).Len())

	c.Enable()
	w.StepFixed(testDt)
	assert.Less(t, b.Position.Sub(a.Position).Len(), 3.0)

	w.RemoveConstraint(c)
	assert.Empty(t, w.Constraints)
}

func TestPointToPointConstraint_HoldsHangingBody(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{0, 0, -10})
	anchor := NewBody(0)
	bob := bodyWith(1, shapes.NewSphere(0.2), mgl64.Vec3{0, 0, -1})
	w.AddBody(anchor)
	w.AddBody(bob)
	c := NewPointToPointConstraint(anchor, mgl64.Vec3{}, bob, mgl64.Vec3{0, 0, 1}, 1e6, DefaultConstraintOptions())
	require.Len(t, c.Equations(), 3)
	w.AddConstraint(c)

	for i := 0; i < 60; i++ {
		w.StepFixed(testDt)
	}

	assertVecInDelta(t, mgl64.Vec3{0, 0, -1}, bob.Position, 0.05)
}

func TestConstraint_WakesBodies(t *testing.T) {
	a := NewBody(1)
	b := NewBody(1)
	a.Sleep()
	b.Sleep()

	NewDistanceConstraint(a, b, 1, 1e6, DefaultConstraintOptions())
	assert.Equal(t, Awake, a.SleepState)
	assert.Equal(t, Awake, b.SleepState)

	a.Sleep()
	opts := DefaultConstraintOptions()
	opts.WakeUpBodies = false
	NewDistanceConstraint(a, b, 1, 1e6, opts)
	assert.Equal(t, Sleeping, a.SleepState)
}
