package impulse

import (
	"math"
	"sync/atomic"

	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/material"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType is a bit flag so that type tests can be combined.
type BodyType int

const (
	Dynamic   BodyType = 1
	Static    BodyType = 2
	Kinematic BodyType = 4
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	}
	return "unknown"
}

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

var bodyIDCounter atomic.Int64

// Body is a rigid body made of one or more shapes.
type Body struct {
	EventTarget

	id    int
	index int
	world *World

	Type BodyType

	Shapes            []shapes.Shape
	ShapeOffsets      []mgl64.Vec3
	ShapeOrientations []mgl64.Quat

	Position             mgl64.Vec3
	PreviousPosition     mgl64.Vec3
	InterpolatedPosition mgl64.Vec3
	InitPosition         mgl64.Vec3

	Quaternion             mgl64.Quat
	PreviousQuaternion     mgl64.Quat
	InterpolatedQuaternion mgl64.Quat
	InitQuaternion         mgl64.Quat

	Velocity            mgl64.Vec3
	AngularVelocity     mgl64.Vec3
	InitVelocity        mgl64.Vec3
	InitAngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	Mass            float64
	InvMass         float64
	Inertia         mgl64.Vec3
	InvInertia      mgl64.Vec3
	InvInertiaWorld mgl64.Mat3

	invMassSolve         float64
	invInertiaSolve      mgl64.Vec3
	invInertiaWorldSolve mgl64.Mat3

	Material *material.Material

	LinearDamping  float64
	AngularDamping float64
	LinearFactor   mgl64.Vec3
	AngularFactor  mgl64.Vec3
	FixedRotation  bool

	AllowSleep      bool
	SleepState      SleepState
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	timeLastSleepy  float64

	wakeUpAfterNarrowphase bool

	CollisionFilterGroup int
	CollisionFilterMask  int
	CollisionResponse    bool

	BoundingRadius  float64
	aabb            geom.AABB
	aabbNeedsUpdate bool

	// PreStep and PostStep run once per internal step, after the world events of the
	// same name.
	PreStep  func(b *Body)
	PostStep func(b *Body)

	// Solver accumulators.
	vlambda mgl64.Vec3
	wlambda mgl64.Vec3
}

// NewBody creates a body of the given mass: dynamic when mass > 0, static otherwise.
// Set Type to Kinematic and call UpdateMassProperties for a kinematic body.
func NewBody(mass float64) *Body {
	b := &Body{
		id:                     int(bodyIDCounter.Add(1)) - 1,
		index:                  -1,
		Type:                   Static,
		Quaternion:             mgl64.QuatIdent(),
		PreviousQuaternion:     mgl64.QuatIdent(),
		InterpolatedQuaternion: mgl64.QuatIdent(),
		InitQuaternion:         mgl64.QuatIdent(),
		Mass:                   mass,
		LinearDamping:          0.01,
		AngularDamping:         0.01,
		LinearFactor:           mgl64.Vec3{1, 1, 1},
		AngularFactor:          mgl64.Vec3{1, 1, 1},
		AllowSleep:             true,
		SleepSpeedLimit:        0.1,
		SleepTimeLimit:         1,
		CollisionFilterGroup:   1,
		CollisionFilterMask:    -1,
		CollisionResponse:      true,
		aabbNeedsUpdate:        true,
	}
	if mass > 0 {
		b.Type = Dynamic
	}
	b.UpdateMassProperties()
	return b
}

func (b *Body) ID() int { return b.id }

// Index is the slot of the body in its world, or -1. It changes when earlier bodies are
// removed.
func (b *Body) Index() int { return b.index }

func (b *Body) World() *World { return b.world }

// AddShape attaches a shape at the body origin.
func (b *Body) AddShape(s shapes.Shape) *Body {
	return b.AddShapeAt(s, mgl64.Vec3{}, mgl64.QuatIdent())
}

// AddShapeAt attaches a shape with a local offset and orientation.
func (b *Body) AddShapeAt(s shapes.Shape, offset mgl64.Vec3, orientation mgl64.Quat) *Body {
	b.Shapes = append(b.Shapes, s)
	b.ShapeOffsets = append(b.ShapeOffsets, offset)
	b.ShapeOrientations = append(b.ShapeOrientations, orientation)
	b.UpdateMassProperties()
	b.UpdateBoundingRadius()
	b.aabbNeedsUpdate = true
	return b
}

// RemoveShape detaches s. It reports false when s is not attached.
func (b *Body) RemoveShape(s shapes.Shape) bool {
	for i, other := range b.Shapes {
		if other != s {
			continue
		}
		b.Shapes = append(b.Shapes[:i], b.Shapes[i+1:]...)
		b.ShapeOffsets = append(b.ShapeOffsets[:i], b.ShapeOffsets[i+1:]...)
		b.ShapeOrientations = append(b.ShapeOrientations[:i], b.ShapeOrientations[i+1:]...)
		b.UpdateMassProperties()
		b.UpdateBoundingRadius()
		b.aabbNeedsUpdate = true
		return true
	}
	return false
}

// ShapeWorldTransform returns the world pose of shape i.
func (b *Body) ShapeWorldTransform(i int) (mgl64.Vec3, mgl64.Quat) {
	return b.Quaternion.Rotate(b.ShapeOffsets[i]).Add(b.Position), b.Quaternion.Mul(b.ShapeOrientations[i])
}

func (b *Body) UpdateBoundingRadius() {
	radius := 0.0
	for i, s := range b.Shapes {
		s.UpdateBoundingSphereRadius()
		r := b.ShapeOffsets[i].Len() + s.BoundingSphereRadius()
		radius = math.Max(radius, r)
	}
	b.BoundingRadius = radius
}

// localAABB is the union of the shape bounds in the body frame.
func (b *Body) localAABB() geom.AABB {
	var box geom.AABB
	for i, s := range b.Shapes {
		shapeBox := s.CalculateWorldAABB(b.ShapeOffsets[i], b.ShapeOrientations[i])
		if i == 0 {
			box = shapeBox
		} else {
			box.Extend(shapeBox)
		}
	}
	return box
}

// UpdateAABB recomputes the world bounds from the shapes.
func (b *Body) UpdateAABB() {
	for i, s := range b.Shapes {
		pos, q := b.ShapeWorldTransform(i)
		shapeBox := s.CalculateWorldAABB(pos, q)
		if i == 0 {
			b.aabb = shapeBox
		} else {
			b.aabb.Extend(shapeBox)
		}
	}
	if len(b.Shapes) == 0 {
		b.aabb = geom.NewAABB(b.Position, b.Position)
	}
	b.aabbNeedsUpdate = false
}

// AABB returns the world bounds, updating them when the body moved.
func (b *Body) AABB() geom.AABB {
	if b.aabbNeedsUpdate {
		b.UpdateAABB()
	}
	return b.aabb
}

// UpdateMassProperties recomputes inverse mass and inertia. A single shape at the body
// origin uses its own inertia; compounds are approximated by their local bounding box.
func (b *Body) UpdateMassProperties() {
	if b.Mass > 0 && b.Type == Dynamic {
		b.InvMass = 1 / b.Mass
	} else {
		b.InvMass = 0
	}

	switch {
	case b.Mass <= 0 || len(b.Shapes) == 0:
		b.Inertia = mgl64.Vec3{}
	case len(b.Shapes) == 1 && b.ShapeOffsets[0] == (mgl64.Vec3{}) && b.ShapeOrientations[0] == mgl64.QuatIdent():
		b.Inertia = b.Shapes[0].CalculateLocalInertia(b.Mass)
	default:
		box := b.localAABB()
		d := box.UpperBound.Sub(box.LowerBound)
		x, y, z := d[0], d[1], d[2]
		b.Inertia = mgl64.Vec3{
			b.Mass * (y*y + z*z) / 12,
			b.Mass * (x*x + z*z) / 12,
			b.Mass * (x*x + y*y) / 12,
		}
	}

	for i := 0; i < 3; i++ {
		if b.Inertia[i] > 0 && !b.FixedRotation && b.Type == Dynamic {
			b.InvInertia[i] = 1 / b.Inertia[i]
		} else {
			b.InvInertia[i] = 0
		}
	}
	b.UpdateInertiaWorld()
	b.UpdateSolveMassProperties()
}

func (b *Body) UpdateInertiaWorld() {
	b.InvInertiaWorld = geom.ScaleInertia(b.Quaternion, b.InvInertia)
}

// UpdateSolveMassProperties sets the masses seen by the solver. Sleeping and kinematic
// bodies behave as if infinitely heavy.
func (b *Body) UpdateSolveMassProperties() {
	if b.SleepState == Sleeping || b.Type == Kinematic {
		b.invMassSolve = 0
		b.invInertiaSolve = mgl64.Vec3{}
		b.invInertiaWorldSolve = mgl64.Mat3{}
		return
	}
	b.invMassSolve = b.InvMass
	b.invInertiaSolve = b.InvInertia
	b.invInertiaWorldSolve = b.InvInertiaWorld
}

// Integrate advances the pose by dt with semi-implicit Euler. Static and sleeping
// bodies only record their current pose as the previous one.
func (b *Body) Integrate(dt float64, quatNormalize, quatNormalizeFast bool) {
	b.PreviousPosition = b.Position
	b.PreviousQuaternion = b.Quaternion
	if b.Type&(Dynamic|Kinematic) == 0 || b.SleepState == Sleeping {
		return
	}

	iMdt := b.InvMass * dt
	b.Velocity = b.Velocity.Add(geom.MulElem(b.Force.Mul(iMdt), b.LinearFactor))

	torque := geom.MulElem(b.Torque, b.AngularFactor)
	dw := b.InvInertiaWorld.Mul3x1(torque).Mul(dt)
	b.AngularVelocity = b.AngularVelocity.Add(geom.MulElem(dw, b.AngularFactor))

	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Quaternion = geom.IntegrateQuat(b.Quaternion, b.AngularVelocity, dt, b.AngularFactor)
	if quatNormalize {
		if quatNormalizeFast {
			b.Quaternion = geom.NormalizeFast(b.Quaternion)
		} else {
			b.Quaternion = b.Quaternion.Normalize()
		}
	}

	b.aabbNeedsUpdate = true
	b.UpdateInertiaWorld()
}

// WakeUp makes the body awake, emitting a wakeup event if it was sleeping.
func (b *Body) WakeUp() {
	prev := b.SleepState
	b.SleepState = Awake
	b.wakeUpAfterNarrowphase = false
	if prev == Sleeping {
		b.dispatchSleepEvent(EventWakeUp)
	}
}

// Sleep puts the body to sleep and zeroes its velocities.
func (b *Body) Sleep() {
	b.SleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.wakeUpAfterNarrowphase = false
}

func (b *Body) dispatchSleepEvent(name string) {
	if b.HasEventListener(name) {
		b.DispatchEvent(&Event{Type: name, Target: b, Body: b})
	}
}

// SleepTick advances the sleep state machine to world time t.
func (b *Body) SleepTick(t float64) {
	if !b.AllowSleep {
		return
	}
	speedSq := b.Velocity.Dot(b.Velocity) + b.AngularVelocity.Dot(b.AngularVelocity)
	limitSq := b.SleepSpeedLimit * b.SleepSpeedLimit
	switch {
	case b.SleepState == Awake && speedSq < limitSq:
		b.SleepState = Sleepy
		b.timeLastSleepy = t
		b.dispatchSleepEvent(EventSleepy)
	case b.SleepState == Sleepy && speedSq > limitSq:
		b.WakeUp()
	case b.SleepState == Sleepy && t-b.timeLastSleepy > b.SleepTimeLimit:
		b.Sleep()
		b.dispatchSleepEvent(EventSleep)
	}
}

// ApplyForce adds force at a point relative to the center of mass, in world axes.
func (b *Body) ApplyForce(force, relativePoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.SleepState == Sleeping {
		b.WakeUp()
	}
	b.Force = b.Force.Add(force)
	b.Torque = b.Torque.Add(relativePoint.Cross(force))
}

// ApplyLocalForce is ApplyForce with force and point in the body frame.
func (b *Body) ApplyLocalForce(localForce, localPoint mgl64.Vec3) {
	b.ApplyForce(b.VectorToWorldFrame(localForce), b.VectorToWorldFrame(localPoint))
}

func (b *Body) ApplyTorque(torque mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.SleepState == Sleeping {
		b.WakeUp()
	}
	b.Torque = b.Torque.Add(torque)
}

// ApplyImpulse changes the velocities as if impulse hit the body at relativePoint.
func (b *Body) ApplyImpulse(impulse, relativePoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.SleepState == Sleeping {
		b.WakeUp()
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))
	rot := b.InvInertiaWorld.Mul3x1(relativePoint.Cross(impulse))
	b.AngularVelocity = b.AngularVelocity.Add(rot)
}

func (b *Body) ApplyLocalImpulse(localImpulse, localPoint mgl64.Vec3) {
	b.ApplyImpulse(b.VectorToWorldFrame(localImpulse), b.VectorToWorldFrame(localPoint))
}

// VelocityAtWorldPoint returns the velocity of the body material at worldPoint.
func (b *Body) VelocityAtWorldPoint(worldPoint mgl64.Vec3) mgl64.Vec3 {
	r := worldPoint.Sub(b.Position)
	return b.AngularVelocity.Cross(r).Add(b.Velocity)
}

func (b *Body) PointToLocalFrame(worldPoint mgl64.Vec3) mgl64.Vec3 {
	return geom.PointToLocalFrame(b.Position, b.Quaternion, worldPoint)
}

func (b *Body) PointToWorldFrame(localPoint mgl64.Vec3) mgl64.Vec3 {
	return geom.PointToWorldFrame(b.Position, b.Quaternion, localPoint)
}

func (b *Body) VectorToLocalFrame(worldVector mgl64.Vec3) mgl64.Vec3 {
	return geom.VectorToLocalFrame(b.Quaternion, worldVector)
}

func (b *Body) VectorToWorldFrame(localVector mgl64.Vec3) mgl64.Vec3 {
	return geom.VectorToWorldFrame(b.Quaternion, localVector)
}

func (b *Body) clearForces() {
	b.Force = mgl64.Vec3{}
	b.Torque = mgl64.Vec3{}
}
