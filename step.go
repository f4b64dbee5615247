package impulse

import (
	"math"
	"time"

	"github.com/gekko3d/impulse/geom"
)

// DefaultMaxSubSteps is used by Step when maxSubSteps is not positive.
const DefaultMaxSubSteps = 10

// StepFixed advances the world by exactly one internal step of dt.
func (w *World) StepFixed(dt float64) {
	w.Step(dt, 0, 0)
}

// Step advances the world. With timeSinceLastCalled <= 0 it takes a single internal
// step of dt. Otherwise the elapsed time is accumulated and consumed in fixed dt
// substeps, at most maxSubSteps of them, and the interpolated body poses are updated
// with the remainder.
func (w *World) Step(dt, timeSinceLastCalled float64, maxSubSteps int) {
	if timeSinceLastCalled <= 0 {
		w.internalStep(dt)
		return
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}

	t0 := w.time
	w.accumulator += timeSinceLastCalled
	substeps := 0
	for w.accumulator >= dt && substeps < maxSubSteps {
		w.internalStep(dt)
		w.accumulator -= dt
		substeps++
	}

	t := math.Mod(w.accumulator, dt) / dt
	for _, b := range w.Bodies {
		b.InterpolatedPosition = geom.Lerp(b.PreviousPosition, b.Position, t)
		b.InterpolatedQuaternion = geom.Slerp(b.PreviousQuaternion, b.Quaternion, t).Normalize()
	}
	w.time = t0 + timeSinceLastCalled
}

// StepElapsed steps by the wall time measured by clock since its last tick.
func (w *World) StepElapsed(dt float64, clock *Clock, maxSubSteps int) {
	elapsed := clock.Tick().Seconds()
	if elapsed <= 0 {
		return
	}
	w.Step(dt, elapsed, maxSubSteps)
}

func (w *World) internalStep(dt float64) {
	w.dt = dt
	w.locked = true

	bodies := w.Bodies
	solver := w.Solver
	doProfiling := w.DoProfiling
	var profilingStart time.Time
	if doProfiling {
		w.Profile.Reset()
	}

	// 1. Gravity
	for _, b := range bodies {
		if b.Type == Dynamic {
			b.Force = b.Force.Add(w.Gravity.Mul(b.Mass))
		}
	}

	// 2. Subsystems
	for _, s := range w.Subsystems {
		s.Update()
	}

	// 3. Broadphase
	if doProfiling {
		profilingStart = time.Now()
	}
	clear(w.p1)
	clear(w.p2)
	w.p1, w.p2 = w.Broadphase.CollisionPairs(w, w.p1[:0], w.p2[:0])
	if doProfiling {
		w.Profile.Broadphase = time.Since(profilingStart)
	}

	// 4. Drop pairs joined by a constraint that does not collide connected bodies
	w.removeConstrainedPairs()

	// 5. Tick collision bookkeeping
	w.collisionMatrixTick()

	// 6. Narrowphase
	if doProfiling {
		profilingStart = time.Now()
	}
	w.Narrowphase.Recycle(w.Contacts, w.frictionEquations)
	clear(w.Contacts)
	clear(w.frictionEquations)
	w.Contacts, w.frictionEquations = w.Narrowphase.GetContacts(w.p1, w.p2, w.Contacts[:0], w.frictionEquations[:0])
	if doProfiling {
		w.Profile.Narrowphase = time.Since(profilingStart)
		profilingStart = time.Now()
	}

	// 7. Feed the solver and record contacts
	for _, f := range w.frictionEquations {
		solver.AddEquation(f)
	}
	for _, c := range w.Contacts {
		w.registerContact(c)
	}

	// 8. Contact events
	w.emitContactEvents()
	if doProfiling {
		w.Profile.MakeContactConstraints = time.Since(profilingStart)
		profilingStart = time.Now()
	}

	// 9. Wake bodies hit by awake bodies
	for _, b := range bodies {
		if b.wakeUpAfterNarrowphase {
			b.WakeUp()
			b.wakeUpAfterNarrowphase = false
		}
	}

	// 10. Constraints
	for _, c := range w.Constraints {
		c.Update()
		for _, eq := range c.Equations() {
			solver.AddEquation(eq)
		}
	}

	// 11. Solve
	solver.Solve(dt, w)
	if doProfiling {
		w.Profile.Solve = time.Since(profilingStart)
	}
	solver.RemoveAllEquations()

	// 12. Damping
	for _, b := range bodies {
		if b.Type&Dynamic == 0 {
			continue
		}
		b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
		b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
	}

	// 13. Pre step
	w.DispatchEvent(&w.preStepEvent)
	for _, b := range bodies {
		if b.PreStep != nil {
			b.PreStep(b)
		}
	}

	// 14. Integrate
	if doProfiling {
		profilingStart = time.Now()
	}
	quatNormalize := w.stepnumber%(w.QuatNormalizeSkip+1) == 0
	for _, b := range bodies {
		b.Integrate(dt, quatNormalize, w.QuatNormalizeFast)
	}

	// 15. Reset accumulators
	w.ClearForces()
	w.Broadphase.SetDirty()
	if doProfiling {
		w.Profile.Integrate = time.Since(profilingStart)
	}

	// 16. Advance time
	w.time += dt
	w.stepnumber++
	w.DispatchEvent(&w.postStepEvent)
	for _, b := range bodies {
		if b.PostStep != nil {
			b.PostStep(b)
		}
	}

	// 17. Sleep
	if w.AllowSleep {
		for _, b := range bodies {
			b.SleepTick(w.time)
		}
	}

	w.locked = false
	if doProfiling && w.Logger.DebugEnabled() {
		p := &w.Profile
		w.Logger.Debugf("step %d: broadphase %v narrowphase %v contacts %v solve %v integrate %v",
			w.stepnumber, p.Broadphase, p.Narrowphase, p.MakeContactConstraints, p.Solve, p.Integrate)
	}
	w.FlushCommands()
}

func (w *World) removeConstrainedPairs() {
	for _, c := range w.Constraints {
		if c.CollideConnected() {
			continue
		}
		a, b := c.BodyA(), c.BodyB()
		n := 0
		for k := range w.p1 {
			p, q := w.p1[k], w.p2[k]
			if (p == a && q == b) || (p == b && q == a) {
				continue
			}
			w.p1[n], w.p2[n] = p, q
			n++
		}
		clear(w.p1[n:])
		clear(w.p2[n:])
		w.p1, w.p2 = w.p1[:n], w.p2[:n]
	}
}

// registerContact adds c to the solver, flags sleeping bodies for waking and updates
// the collision matrix and overlap keepers.
func (w *World) registerContact(c *ContactEquation) {
	bi, bj := c.BI, c.BJ
	w.Solver.AddEquation(c)

	markWakeUp(bi, bj)
	markWakeUp(bj, bi)

	// Only the first contact of a pair that did not touch last step is a new touch.
	firstThisStep := !w.collisionMatrix.Get(bi, bj)
	w.collisionMatrix.Set(bi, bj, true)
	if firstThisStep && !w.collisionMatrixPrevious.Get(bi, bj) {
		ev := &w.collideEvent
		ev.Contact = c
		ev.Target, ev.Body = bi, bj
		bi.DispatchEvent(ev)
		ev.Target, ev.Body = bj, bi
		bj.DispatchEvent(ev)
		ev.Target, ev.Body, ev.Contact = nil, nil, nil
	}

	w.bodyOverlapKeeper.Set(bi.id, bj.id)
	w.shapeOverlapKeeper.Set(c.SI.ID(), c.SJ.ID())
}

// markWakeUp flags a sleeping dynamic body touched by a fast enough awake body.
func markWakeUp(sleeper, other *Body) {
	if !sleeper.AllowSleep || sleeper.Type != Dynamic || sleeper.SleepState != Sleeping {
		return
	}
	if other.SleepState != Awake || other.Type == Static {
		return
	}
	speedSq := other.Velocity.Dot(other.Velocity) + other.AngularVelocity.Dot(other.AngularVelocity)
	limitSq := other.SleepSpeedLimit * other.SleepSpeedLimit
	if speedSq >= 2*limitSq {
		sleeper.wakeUpAfterNarrowphase = true
	}
}

// collisionMatrixTick makes the current contact state the previous one.
func (w *World) collisionMatrixTick() {
	w.collisionMatrix, w.collisionMatrixPrevious = w.collisionMatrixPrevious, w.collisionMatrix
	w.collisionMatrix.Reset()

	w.bodyOverlapKeeper.Tick()
	w.shapeOverlapKeeper.Tick()
}

// emitContactEvents reports body and shape pairs that started or stopped touching. The
// diffs are only computed when someone listens.
func (w *World) emitContactEvents() {
	if w.HasAnyEventListener(EventBeginContact, EventEndContact) {
		w.additions, w.removals = w.bodyOverlapKeeper.GetDiff(w.additions[:0], w.removals[:0])
		w.dispatchBodyPairs(&w.beginContactEvent, w.additions)
		w.dispatchBodyPairs(&w.endContactEvent, w.removals)
	}

	if w.HasAnyEventListener(EventBeginShapeContact, EventEndShapeContact) {
		w.additions, w.removals = w.shapeOverlapKeeper.GetDiff(w.additions[:0], w.removals[:0])
		w.dispatchShapePairs(&w.beginShapeContactEvent, w.additions)
		w.dispatchShapePairs(&w.endShapeContactEvent, w.removals)
	}
}

func (w *World) dispatchBodyPairs(ev *Event, ids []int) {
	if !w.HasEventListener(ev.Type) {
		return
	}
	ev.Target = w
	for i := 0; i+1 < len(ids); i += 2 {
		ev.BodyA = w.BodyByID(ids[i])
		ev.BodyB = w.BodyByID(ids[i+1])
		w.DispatchEvent(ev)
	}
	ev.BodyA, ev.BodyB = nil, nil
}

// dispatchShapePairs skips pairs whose shapes left the world since they last touched.
func (w *World) dispatchShapePairs(ev *Event, ids []int) {
	if !w.HasEventListener(ev.Type) {
		return
	}
	ev.Target = w
	for i := 0; i+1 < len(ids); i += 2 {
		shapeA, bodyA := w.ShapeByID(ids[i])
		shapeB, bodyB := w.ShapeByID(ids[i+1])
		if shapeA == nil || shapeB == nil {
			continue
		}
		ev.ShapeA, ev.ShapeB = shapeA, shapeB
		ev.BodyA, ev.BodyB = bodyA, bodyB
		w.DispatchEvent(ev)
	}
	ev.ShapeA, ev.ShapeB, ev.BodyA, ev.BodyB = nil, nil, nil, nil
}
