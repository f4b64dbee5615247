package impulse

import (
	"sync/atomic"

	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// Equation is one scalar constraint row handled by the solver.
type Equation interface {
	Base() *EquationBase
	// ComputeB returns the right hand side of the row for step size h. It also refreshes
	// the Jacobian.
	ComputeB(h float64) float64
}

// JacobianElement is one body's block of a constraint Jacobian row.
type JacobianElement struct {
	Spatial    mgl64.Vec3
	Rotational mgl64.Vec3
}

func (j JacobianElement) MultiplyVectors(spatial, rotational mgl64.Vec3) float64 {
	return j.Spatial.Dot(spatial) + j.Rotational.Dot(rotational)
}

var equationIDCounter atomic.Int64

// EquationBase holds the SPOOK parameters and the Jacobian shared by all equations.
type EquationBase struct {
	id int

	MinForce float64
	MaxForce float64
	BI, BJ   *Body

	a, b, eps float64

	JeA, JeB JacobianElement

	Enabled bool
	// Multiplier is the constraint force of the last solve.
	Multiplier float64
}

func newEquationBase(bi, bj *Body, minForce, maxForce float64) EquationBase {
	e := EquationBase{
		id:       int(equationIDCounter.Add(1)) - 1,
		MinForce: minForce,
		MaxForce: maxForce,
		BI:       bi,
		BJ:       bj,
		Enabled:  true,
	}
	e.SetSpookParams(1e7, 4, 1.0/60.0)
	return e
}

func (e *EquationBase) Base() *EquationBase { return e }

func (e *EquationBase) ID() int { return e.id }

// SetSpookParams derives a, b and eps from stiffness, relaxation (in steps) and the
// step size.
func (e *EquationBase) SetSpookParams(stiffness, relaxation, timeStep float64) {
	d := relaxation
	k := stiffness
	h := timeStep
	e.a = 4.0 / (h * (1 + 4*d))
	e.b = (4.0 * d) / (1 + 4*d)
	e.eps = 4.0 / (h * h * k * (1 + 4*d))
}

// computeGW is G·W, the relative velocity along the row.
func (e *EquationBase) computeGW() float64 {
	bi, bj := e.BI, e.BJ
	return e.JeA.MultiplyVectors(bi.Velocity, bi.AngularVelocity) + e.JeB.MultiplyVectors(bj.Velocity, bj.AngularVelocity)
}

// computeGWlambda is G·Wlambda, the row velocity produced so far by the solver.
func (e *EquationBase) computeGWlambda() float64 {
	bi, bj := e.BI, e.BJ
	return e.JeA.MultiplyVectors(bi.vlambda, bi.wlambda) + e.JeB.MultiplyVectors(bj.vlambda, bj.wlambda)
}

// computeGiMf is G·M⁻¹·f for the external forces.
func (e *EquationBase) computeGiMf() float64 {
	bi, bj := e.BI, e.BJ
	iMfi := bi.Force.Mul(bi.invMassSolve)
	iMfj := bj.Force.Mul(bj.invMassSolve)
	invIti := bi.invInertiaWorldSolve.Mul3x1(bi.Torque)
	invItj := bj.invInertiaWorldSolve.Mul3x1(bj.Torque)
	return e.JeA.MultiplyVectors(iMfi, invIti) + e.JeB.MultiplyVectors(iMfj, invItj)
}

// computeGiMGt is G·M⁻¹·Gᵀ.
func (e *EquationBase) computeGiMGt() float64 {
	bi, bj := e.BI, e.BJ
	result := bi.invMassSolve*e.JeA.Spatial.Dot(e.JeA.Spatial) + bj.invMassSolve*e.JeB.Spatial.Dot(e.JeB.Spatial)
	result += bi.invInertiaWorldSolve.Mul3x1(e.JeA.Rotational).Dot(e.JeA.Rotational)
	result += bj.invInertiaWorldSolve.Mul3x1(e.JeB.Rotational).Dot(e.JeB.Rotational)
	return result
}

// addToWlambda applies a multiplier increment to the solver velocities of both bodies.
func (e *EquationBase) addToWlambda(deltalambda float64) {
	bi, bj := e.BI, e.BJ
	bi.vlambda = bi.vlambda.Add(e.JeA.Spatial.Mul(bi.invMassSolve * deltalambda))
	bj.vlambda = bj.vlambda.Add(e.JeB.Spatial.Mul(bj.invMassSolve * deltalambda))
	bi.wlambda = bi.wlambda.Add(bi.invInertiaWorldSolve.Mul3x1(e.JeA.Rotational).Mul(deltalambda))
	bj.wlambda = bj.wlambda.Add(bj.invInertiaWorldSolve.Mul3x1(e.JeB.Rotational).Mul(deltalambda))
}

// computeC is the regularized diagonal entry of the system matrix.
func (e *EquationBase) computeC() float64 {
	return e.computeGiMGt() + e.eps
}

// ContactEquation keeps two bodies from interpenetrating along NI.
type ContactEquation struct {
	EquationBase

	SI, SJ shapes.Shape

	Restitution float64
	// RI and RJ are the contact points relative to the body centers, in world axes.
	RI, RJ mgl64.Vec3
	// NI is the contact normal pointing out of BI.
	NI mgl64.Vec3
}

func NewContactEquation(bi, bj *Body) *ContactEquation {
	return &ContactEquation{EquationBase: newEquationBase(bi, bj, 0, 1e6)}
}

func (c *ContactEquation) ComputeB(h float64) float64 {
	bi, bj := c.BI, c.BJ
	n := c.NI

	rixn := c.RI.Cross(n)
	rjxn := c.RJ.Cross(n)
	c.JeA = JacobianElement{Spatial: n.Mul(-1), Rotational: rixn.Mul(-1)}
	c.JeB = JacobianElement{Spatial: n, Rotational: rjxn}

	penetration := bj.Position.Add(c.RJ).Sub(bi.Position).Sub(c.RI)
	g := n.Dot(penetration)

	ePlusOne := c.Restitution + 1
	gw := ePlusOne*bj.Velocity.Dot(n) - ePlusOne*bi.Velocity.Dot(n) + bj.AngularVelocity.Dot(rjxn) - bi.AngularVelocity.Dot(rixn)
	giMf := c.computeGiMf()

	return -g*c.a - gw*c.b - h*giMf
}

// ImpactVelocityAlongNormal returns the relative velocity of the contact points along
// the normal.
func (c *ContactEquation) ImpactVelocityAlongNormal() float64 {
	xi := c.BI.Position.Add(c.RI)
	xj := c.BJ.Position.Add(c.RJ)
	vi := c.BI.VelocityAtWorldPoint(xi)
	vj := c.BJ.VelocityAtWorldPoint(xj)
	return c.NI.Dot(vi.Sub(vj))
}

// FrictionEquation resists sliding along the tangent T.
type FrictionEquation struct {
	EquationBase

	RI, RJ mgl64.Vec3
	T      mgl64.Vec3
}

func NewFrictionEquation(bi, bj *Body, slipForce float64) *FrictionEquation {
	return &FrictionEquation{EquationBase: newEquationBase(bi, bj, -slipForce, slipForce)}
}

func (f *FrictionEquation) ComputeB(h float64) float64 {
	rixt := f.RI.Cross(f.T)
	rjxt := f.RJ.Cross(f.T)
	f.JeA = JacobianElement{Spatial: f.T.Mul(-1), Rotational: rixt.Mul(-1)}
	f.JeB = JacobianElement{Spatial: f.T, Rotational: rjxt}

	gw := f.computeGW()
	giMf := f.computeGiMf()
	return -gw*f.b - h*giMf
}
