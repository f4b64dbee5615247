package impulse

import (
	"slices"

	"github.com/gekko3d/impulse/material"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Subsystem is updated once per internal step, after gravity is applied and before
// collision detection.
type Subsystem interface {
	Update()
}

// World owns bodies, constraints and the collision pipeline, and steps them through
// time. A World must only be used from one goroutine; see Runner for driving one from
// another.
type World struct {
	EventTarget

	UUID   uuid.UUID
	Logger Logger

	Gravity mgl64.Vec3
	// AllowSleep enables the body sleep state machine.
	AllowSleep bool
	// QuatNormalizeSkip renormalizes orientations every QuatNormalizeSkip+1 steps.
	QuatNormalizeSkip int
	QuatNormalizeFast bool

	Broadphase  Broadphase
	Solver      Solver
	Narrowphase *Narrowphase

	ContactMaterials       *material.Table
	DefaultMaterial        *material.Material
	DefaultContactMaterial *material.ContactMaterial

	DoProfiling bool
	Profile     Profile

	Bodies      []*Body
	Constraints []Constraint
	Subsystems  []Subsystem

	// Contacts generated by the last step.
	Contacts          []*ContactEquation
	frictionEquations []*FrictionEquation

	collisionMatrix         *CollisionMatrix
	collisionMatrixPrevious *CollisionMatrix
	bodyOverlapKeeper       OverlapKeeper
	shapeOverlapKeeper      OverlapKeeper

	idToBody map[int]*Body

	time        float64
	stepnumber  int
	dt          float64
	defaultDt   float64
	accumulator float64

	locked  bool
	pending []mutation

	// Step scratch
	p1, p2              []*Body
	additions, removals []int
	raycaster           raycaster

	addBodyEvent           Event
	removeBodyEvent        Event
	collideEvent           Event
	preStepEvent           Event
	postStepEvent          Event
	beginContactEvent      Event
	endContactEvent        Event
	beginShapeContactEvent Event
	endShapeContactEvent   Event
}

func NewWorld() *World {
	id := uuid.New()
	w := &World{
		UUID:                    id,
		Logger:                  NewDefaultLogger("impulse "+id.String()[:8], false),
		Broadphase:              NewNaiveBroadphase(),
		Solver:                  NewGSSolver(),
		ContactMaterials:        material.NewTable(),
		DefaultMaterial:         material.NewMaterial("default"),
		collisionMatrix:         &CollisionMatrix{},
		collisionMatrixPrevious: &CollisionMatrix{},
		idToBody:                make(map[int]*Body),
		dt:                      -1,
		defaultDt:               1.0 / 60.0,
	}
	opts := material.DefaultContactMaterialOptions()
	opts.Friction = 0.3
	opts.Restitution = 0
	w.DefaultContactMaterial = material.NewContactMaterial(w.DefaultMaterial, w.DefaultMaterial, opts)
	w.Narrowphase = NewNarrowphase(w)

	w.addBodyEvent = Event{Type: EventAddBody, Target: w}
	w.removeBodyEvent = Event{Type: EventRemoveBody, Target: w}
	w.collideEvent = Event{Type: EventCollide}
	w.preStepEvent = Event{Type: EventPreStep, Target: w}
	w.postStepEvent = Event{Type: EventPostStep, Target: w}
	w.beginContactEvent = Event{Type: EventBeginContact}
	w.endContactEvent = Event{Type: EventEndContact}
	w.beginShapeContactEvent = Event{Type: EventBeginShapeContact}
	w.endShapeContactEvent = Event{Type: EventEndShapeContact}
	return w
}

// SetLogger replaces the world logger, including the one narrowphase warnings go to.
func (w *World) SetLogger(l Logger) {
	w.Logger = l
	w.Narrowphase.warner = newRateLimitedLogger(l)
}

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// StepNumber counts internal steps taken.
func (w *World) StepNumber() int { return w.stepnumber }

// Dt is the last internal step size, or -1 before the first step.
func (w *World) Dt() float64 { return w.dt }

func (w *World) NumObjects() int { return len(w.Bodies) }

// ContactMaterial returns the contact material registered for the pair, or nil.
func (w *World) ContactMaterial(m1, m2 *material.Material) *material.ContactMaterial {
	return w.ContactMaterials.Get(m1, m2)
}

func (w *World) AddContactMaterial(cm *material.ContactMaterial) {
	w.ContactMaterials.Set(cm)
}

// AddBody adds b to the world. During a step the addition is deferred until the step
// completes.
func (w *World) AddBody(b *Body) {
	if w.locked {
		w.enqueue(mutation{kind: mutAddBody, body: b})
		return
	}
	w.addBody(b)
}

func (w *World) addBody(b *Body) {
	if slices.Contains(w.Bodies, b) {
		return
	}
	b.index = len(w.Bodies)
	w.Bodies = append(w.Bodies, b)
	b.world = w
	b.InitPosition = b.Position
	b.InitVelocity = b.Velocity
	b.InitAngularVelocity = b.AngularVelocity
	b.InitQuaternion = b.Quaternion
	b.PreviousPosition = b.Position
	b.InterpolatedPosition = b.Position
	b.PreviousQuaternion = b.Quaternion
	b.InterpolatedQuaternion = b.Quaternion
	b.timeLastSleepy = w.time
	b.aabbNeedsUpdate = true

	w.resizeCollisionMatrices()
	w.idToBody[b.id] = b
	w.Broadphase.SetDirty()
	w.Logger.Debugf("added body %d (%s, %d shapes)", b.id, b.Type, len(b.Shapes))

	w.addBodyEvent.Body = b
	w.DispatchEvent(&w.addBodyEvent)
	w.addBodyEvent.Body = nil
}

// RemoveBody removes b from the world. During a step the removal is deferred until the
// step completes.
func (w *World) RemoveBody(b *Body) {
	if w.locked {
		w.enqueue(mutation{kind: mutRemoveBody, body: b})
		return
	}
	w.removeBody(b)
}

func (w *World) removeBody(b *Body) {
	idx := slices.Index(w.Bodies, b)
	if idx < 0 {
		return
	}
	b.world = nil
	b.index = -1
	n := len(w.Bodies)
	w.Bodies = slices.Delete(w.Bodies, idx, idx+1)
	for i, other := range w.Bodies {
		other.index = i
	}

	w.collisionMatrix.RemoveObject(idx, n)
	w.collisionMatrixPrevious.RemoveObject(idx, n)
	delete(w.idToBody, b.id)
	w.Broadphase.SetDirty()
	w.Logger.Debugf("removed body %d", b.id)

	w.removeBodyEvent.Body = b
	w.DispatchEvent(&w.removeBodyEvent)
	w.removeBodyEvent.Body = nil
}

// resizeCollisionMatrices keeps both matrices addressable by the current body indices.
// Pairs that already touched keep their state, so growing does not refire collide.
func (w *World) resizeCollisionMatrices() {
	w.collisionMatrix.SetNumObjects(len(w.Bodies))
	w.collisionMatrixPrevious.SetNumObjects(len(w.Bodies))
}

// AddConstraint adds c to the world, deferred while stepping.
func (w *World) AddConstraint(c Constraint) {
	if w.locked {
		w.enqueue(mutation{kind: mutAddConstraint, constraint: c})
		return
	}
	w.Constraints = append(w.Constraints, c)
}

// RemoveConstraint removes c from the world, deferred while stepping.
func (w *World) RemoveConstraint(c Constraint) {
	if w.locked {
		w.enqueue(mutation{kind: mutRemoveConstraint, constraint: c})
		return
	}
	if idx := slices.Index(w.Constraints, c); idx >= 0 {
		w.Constraints = slices.Delete(w.Constraints, idx, idx+1)
	}
}

func (w *World) AddSubsystem(s Subsystem) {
	w.Subsystems = append(w.Subsystems, s)
}

// BodyByID returns the body with the given id, or nil if it is not in the world.
func (w *World) BodyByID(id int) *Body {
	return w.idToBody[id]
}

// ShapeByID returns the shape with the given id and the body carrying it.
func (w *World) ShapeByID(id int) (shapes.Shape, *Body) {
	for _, b := range w.Bodies {
		for _, s := range b.Shapes {
			if s.ID() == id {
				return s, b
			}
		}
	}
	return nil, nil
}

// ClearForces zeroes the force and torque accumulators of every body.
func (w *World) ClearForces() {
	for _, b := range w.Bodies {
		b.clearForces()
	}
}
