package impulse

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestClock_Tick(t *testing.T) {
	now := time.Unix(100, 0)
	c := newClockFunc(func() time.Time { return now })

	now = now.Add(25 * time.Millisecond)
	assert.Equal(t, 25*time.Millisecond, c.Tick())
	assert.Equal(t, 25*time.Millisecond, c.Dt)

	assert.Zero(t, c.Tick())
}

func TestWorld_StepElapsed(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	now := time.Unix(0, 0)
	c := newClockFunc(func() time.Time { return now })

	w.StepElapsed(testDt, c, 10)
	assert.Zero(t, w.StepNumber())

	now = now.Add(60 * time.Millisecond)
	w.StepElapsed(testDt, c, 10)
	assert.Equal(t, 3, w.StepNumber())
	assert.InDelta(t, 0.06, w.Time(), 1e-9)
}
