package impulse

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// Constraint ties two bodies together through one or more equations. Update is called
// once per step before the equations are handed to the solver.
type Constraint interface {
	Update()
	Equations() []Equation
	BodyA() *Body
	BodyB() *Body
	// CollideConnected reports whether the joined bodies still collide with each other.
	CollideConnected() bool
	Enable()
	Disable()
}

type ConstraintOptions struct {
	CollideConnected bool
	WakeUpBodies     bool
}

func DefaultConstraintOptions() ConstraintOptions {
	return ConstraintOptions{
		CollideConnected: true,
		WakeUpBodies:     true,
	}
}

var constraintIDCounter atomic.Int64

// ConstraintBase implements the bookkeeping part of Constraint. Concrete constraints
// embed it and provide Update.
type ConstraintBase struct {
	id               int
	bodyA, bodyB     *Body
	equations        []Equation
	collideConnected bool
}

func newConstraintBase(bodyA, bodyB *Body, opts ConstraintOptions) ConstraintBase {
	if opts.WakeUpBodies {
		if bodyA != nil {
			bodyA.WakeUp()
		}
		if bodyB != nil {
			bodyB.WakeUp()
		}
	}
	return ConstraintBase{
		id:               int(constraintIDCounter.Add(1)) - 1,
		bodyA:            bodyA,
		bodyB:            bodyB,
		collideConnected: opts.CollideConnected,
	}
}

func (c *ConstraintBase) ID() int                { return c.id }
func (c *ConstraintBase) Equations() []Equation  { return c.equations }
func (c *ConstraintBase) BodyA() *Body           { return c.bodyA }
func (c *ConstraintBase) BodyB() *Body           { return c.bodyB }
func (c *ConstraintBase) CollideConnected() bool { return c.collideConnected }

func (c *ConstraintBase) Enable() {
	for _, eq := range c.equations {
		eq.Base().Enabled = true
	}
}

func (c *ConstraintBase) Disable() {
	for _, eq := range c.equations {
		eq.Base().Enabled = false
	}
}

// DistanceConstraint keeps the centers of two bodies at a fixed distance.
type DistanceConstraint struct {
	ConstraintBase

	Distance float64
	eq       *ContactEquation
}

// NewDistanceConstraint joins bodyA and bodyB at distance, limiting the force used to
// maxForce. A negative distance keeps the current distance.
func NewDistanceConstraint(bodyA, bodyB *Body, distance, maxForce float64, opts ConstraintOptions) *DistanceConstraint {
	if distance < 0 {
		distance = bodyA.Position.Sub(bodyB.Position).Len()
	}
	eq := NewContactEquation(bodyA, bodyB)
	eq.MinForce = -maxForce
	eq.MaxForce = maxForce

	c := &DistanceConstraint{
		ConstraintBase: newConstraintBase(bodyA, bodyB, opts),
		Distance:       distance,
		eq:             eq,
	}
	c.equations = []Equation{eq}
	return c
}

func (c *DistanceConstraint) Update() {
	halfDist := c.Distance * 0.5
	normal := c.bodyB.Position.Sub(c.bodyA.Position)
	if normal.Len() == 0 {
		normal = mgl64.Vec3{1, 0, 0}
	}
	normal = normal.Normalize()

	c.eq.NI = normal
	c.eq.RI = normal.Mul(halfDist)
	c.eq.RJ = normal.Mul(-halfDist)
}

// PointToPointConstraint pins a point of bodyA to a point of bodyB. Pivots are given in
// the local frame of each body.
type PointToPointConstraint struct {
	ConstraintBase

	PivotA, PivotB mgl64.Vec3

	eqX, eqY, eqZ *ContactEquation
}

func NewPointToPointConstraint(bodyA *Body, pivotA mgl64.Vec3, bodyB *Body, pivotB mgl64.Vec3, maxForce float64, opts ConstraintOptions) *PointToPointConstraint {
	c := &PointToPointConstraint{
		ConstraintBase: newConstraintBase(bodyA, bodyB, opts),
		PivotA:         pivotA,
		PivotB:         pivotB,
	}
	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	eqs := [3]**ContactEquation{&c.eqX, &c.eqY, &c.eqZ}
	for i, axis := range axes {
		eq := NewContactEquation(bodyA, bodyB)
		eq.MinForce = -maxForce
		eq.MaxForce = maxForce
		eq.NI = axis
		*eqs[i] = eq
		c.equations = append(c.equations, eq)
	}
	return c
}

func (c *PointToPointConstraint) Update() {
	ri := c.bodyA.Quaternion.Rotate(c.PivotA)
	rj := c.bodyB.Quaternion.Rotate(c.PivotB)
	for _, eq := range [3]*ContactEquation{c.eqX, c.eqY, c.eqZ} {
		eq.RI = ri
		eq.RJ = rj
	}
}
