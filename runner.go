package impulse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// BodySnapshot is the published state of one body. Poses are the interpolated ones.
type BodySnapshot struct {
	ID              int
	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	SleepState      SleepState
}

// Snapshot is an immutable copy of a world taken after a runner tick.
type Snapshot struct {
	WorldID    uuid.UUID
	Time       float64
	StepNumber int
	Bodies     []BodySnapshot
}

// Body returns the snapshot of the body with the given id.
func (s *Snapshot) Body(id int) (BodySnapshot, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodySnapshot{}, false
}

// Runner steps a world on its own goroutine at a fixed frequency. Other goroutines
// change the world only through Submit and read it only through Latest.
type Runner struct {
	world *World

	// UpdateFrequency is the tick rate in Hz; each tick steps by 1/UpdateFrequency.
	UpdateFrequency float64
	MaxSubSteps     int

	mu      sync.Mutex
	pending []func(*World)

	latest  atomic.Pointer[Snapshot]
	running atomic.Bool
	clock   *Clock
}

func NewRunner(w *World) *Runner {
	return &Runner{
		world:           w,
		UpdateFrequency: 60,
		MaxSubSteps:     DefaultMaxSubSteps,
	}
}

// Submit queues fn to run on the runner goroutine before the next step.
func (r *Runner) Submit(fn func(*World)) {
	r.mu.Lock()
	r.pending = append(r.pending, fn)
	r.mu.Unlock()
}

// Latest returns the most recent snapshot, or nil before the first tick.
func (r *Runner) Latest() *Snapshot {
	return r.latest.Load()
}

// Run ticks until ctx is cancelled and returns the context error.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		panic("impulse: Runner.Run called twice")
	}
	defer r.running.Store(false)

	period := time.Duration(float64(time.Second) / r.UpdateFrequency)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	r.clock = NewClock()
	r.world.Logger.Infof("runner started at %g Hz", r.UpdateFrequency)
	for {
		select {
		case <-ctx.Done():
			r.world.Logger.Infof("runner stopped after %d steps", r.world.StepNumber())
			return ctx.Err()
		case <-ticker.C:
			r.tick(r.clock.Tick())
		}
	}
}

func (r *Runner) tick(elapsed time.Duration) {
	// 1. Apply submitted changes
	r.mu.Lock()
	cmds := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, fn := range cmds {
		fn(r.world)
	}

	// 2. Step
	if elapsed > 0 {
		r.world.Step(1/r.UpdateFrequency, elapsed.Seconds(), r.MaxSubSteps)
	}

	// 3. Publish
	r.latest.Store(r.snapshot())
}

func (r *Runner) snapshot() *Snapshot {
	w := r.world
	snap := &Snapshot{
		WorldID:    w.UUID,
		Time:       w.Time(),
		StepNumber: w.StepNumber(),
		Bodies:     make([]BodySnapshot, 0, len(w.Bodies)),
	}
	for _, b := range w.Bodies {
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			ID:              b.id,
			Position:        b.InterpolatedPosition,
			Quaternion:      b.InterpolatedQuaternion,
			Velocity:        b.Velocity,
			AngularVelocity: b.AngularVelocity,
			SleepState:      b.SleepState,
		})
	}
	return snap
}
