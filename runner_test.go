package impulse

import (
	"context"
	"testing"
	"time"

	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_TickAppliesSubmittedChanges(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{0, 0, -10})
	r := NewRunner(w)
	b := bodyWith(1, shapes.NewSphere(1), mgl64.Vec3{0, 0, 10})

	assert.Nil(t, r.Latest())
	r.Submit(func(w *World) { w.AddBody(b) })
	r.tick(20 * time.Millisecond)

	snap := r.Latest()
	require.NotNil(t, snap)
	assert.Equal(t, w.UUID, snap.WorldID)
	assert.Equal(t, 1, snap.StepNumber)
	assert.InDelta(t, 0.02, snap.Time, 1e-12)

	got, ok := snap.Body(b.ID())
	require.True(t, ok)
	assert.Less(t, got.Position.Z(), 10.0)
	assert.Equal(t, Awake, got.SleepState)

	_, ok = snap.Body(-1)
	assert.False(t, ok)
}

func TestRunner_ZeroElapsedOnlyPublishes(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	r := NewRunner(w)

	r.tick(0)

	require.NotNil(t, r.Latest())
	assert.Zero(t, r.Latest().StepNumber)
	assert.Empty(t, r.Latest().Bodies)
}

func TestRunner_SnapshotsAreIndependent(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{0, 0, -10})
	r := NewRunner(w)
	b := bodyWith(1, shapes.NewSphere(1), mgl64.Vec3{0, 0, 10})
	w.AddBody(b)

	r.tick(20 * time.Millisecond)
	first := r.Latest()
	firstZ := first.Bodies[0].Position.Z()
	r.tick(20 * time.Millisecond)

	assert.Equal(t, firstZ, first.Bodies[0].Position.Z())
	assert.NotSame(t, first, r.Latest())
	assert.Less(t, r.Latest().Bodies[0].Position.Z(), firstZ)
}

func TestRunner_RunStopsWithContext(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{0, 0, -10})
	r := NewRunner(w)
	r.Submit(func(w *World) {
		w.AddBody(bodyWith(1, shapes.NewSphere(1), mgl64.Vec3{}))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	snap := r.Latest()
	require.NotNil(t, snap)
	assert.Len(t, snap.Bodies, 1)
	assert.Positive(t, snap.StepNumber)
}
