package impulse

import (
	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/material"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// shapePose is one side of a shape pair: the geometry to test, its world pose and its
// body.
type shapePose struct {
	shape shapes.Shape
	pos   mgl64.Vec3
	quat  mgl64.Quat
	body  *Body
	// recorded replaces shape on the generated contacts when shape is a stand-in,
	// such as a heightfield pillar.
	recorded shapes.Shape
}

func (p *shapePose) contactShape() shapes.Shape {
	if p.recorded != nil {
		return p.recorded
	}
	return p.shape
}

// pairHandler generates contacts for a pair whose first shape has the smaller kind.
// With justTest set it only reports whether the shapes overlap.
type pairHandler func(n *Narrowphase, a, b *shapePose, justTest bool) bool

// flip adapts a handler written for the opposite argument order.
func flip(h pairHandler) pairHandler {
	return func(n *Narrowphase, a, b *shapePose, justTest bool) bool {
		return h(n, b, a, justTest)
	}
}

type kindPair [2]shapes.Kind

var pairHandlers map[kindPair]pairHandler

func init() {
	pairHandlers = map[kindPair]pairHandler{
		{shapes.KindSphere, shapes.KindSphere}:      (*Narrowphase).sphereSphere,
		{shapes.KindSphere, shapes.KindPlane}:       (*Narrowphase).spherePlane,
		{shapes.KindSphere, shapes.KindBox}:         (*Narrowphase).sphereBox,
		{shapes.KindSphere, shapes.KindConvex}:      (*Narrowphase).sphereConvex,
		{shapes.KindSphere, shapes.KindCylinder}:    (*Narrowphase).sphereConvex,
		{shapes.KindSphere, shapes.KindHeightfield}: (*Narrowphase).sphereHeightfield,
		{shapes.KindSphere, shapes.KindParticle}:    (*Narrowphase).sphereParticle,
		{shapes.KindSphere, shapes.KindTrimesh}:     (*Narrowphase).sphereTrimesh,

		{shapes.KindPlane, shapes.KindBox}:      (*Narrowphase).planeConvex,
		{shapes.KindPlane, shapes.KindConvex}:   (*Narrowphase).planeConvex,
		{shapes.KindPlane, shapes.KindCylinder}: (*Narrowphase).planeConvex,
		{shapes.KindPlane, shapes.KindParticle}: (*Narrowphase).planeParticle,
		{shapes.KindPlane, shapes.KindTrimesh}:  (*Narrowphase).planeTrimesh,

		{shapes.KindBox, shapes.KindBox}:            (*Narrowphase).convexConvex,
		{shapes.KindBox, shapes.KindConvex}:         (*Narrowphase).convexConvex,
		{shapes.KindBox, shapes.KindCylinder}:       (*Narrowphase).convexConvex,
		{shapes.KindBox, shapes.KindHeightfield}:    (*Narrowphase).convexHeightfield,
		{shapes.KindBox, shapes.KindParticle}:       (*Narrowphase).convexParticle,
		{shapes.KindConvex, shapes.KindConvex}:      (*Narrowphase).convexConvex,
		{shapes.KindConvex, shapes.KindCylinder}:    (*Narrowphase).convexConvex,
		{shapes.KindConvex, shapes.KindHeightfield}: (*Narrowphase).convexHeightfield,
		{shapes.KindConvex, shapes.KindParticle}:    (*Narrowphase).convexParticle,
		{shapes.KindCylinder, shapes.KindCylinder}:  (*Narrowphase).convexConvex,

		{shapes.KindHeightfield, shapes.KindCylinder}: flip((*Narrowphase).convexHeightfield),
		{shapes.KindParticle, shapes.KindCylinder}:    flip((*Narrowphase).convexParticle),
	}
}

// hullOf returns the polyhedron the convex algorithms use for s, or nil.
func hullOf(s shapes.Shape) *shapes.ConvexPolyhedron {
	switch v := s.(type) {
	case *shapes.ConvexPolyhedron:
		return v
	case *shapes.Box:
		return v.Convex()
	case *shapes.Cylinder:
		return v.Hull()
	}
	return nil
}

// Narrowphase turns body pairs into contact and friction equations. It owns the
// equation pools and every scratch buffer its algorithms use, so one Narrowphase
// serves exactly one World.
type Narrowphase struct {
	world *World

	// EnableFrictionReduction replaces the per point friction of multi point
	// manifolds by two averaged equations.
	EnableFrictionReduction bool

	contactPool  []*ContactEquation
	frictionPool []*FrictionEquation

	result         []*ContactEquation
	frictionResult []*FrictionEquation

	currentContactMaterial *material.ContactMaterial

	warner *rateLimitedLogger

	clipper    shapes.Clipper
	clipPoints []shapes.ClipPoint
	pillar     *shapes.ConvexPolyhedron
	triangles  []int
	polygon    []mgl64.Vec3
	a, b       shapePose
}

func NewNarrowphase(world *World) *Narrowphase {
	n := &Narrowphase{
		world:  world,
		pillar: shapes.NewConvexPolyhedron(nil, nil),
	}
	if world != nil {
		n.warner = newRateLimitedLogger(world.Logger)
	} else {
		n.warner = newRateLimitedLogger(NewNopLogger())
	}
	return n
}

// Recycle returns equations of a finished step to the pools.
func (n *Narrowphase) Recycle(contacts []*ContactEquation, friction []*FrictionEquation) {
	n.contactPool = append(n.contactPool, contacts...)
	n.frictionPool = append(n.frictionPool, friction...)
}

// GetContacts generates the contacts of every pair (p1[k], p2[k]) and appends them to
// contacts, with their friction equations appended to friction.
func (n *Narrowphase) GetContacts(p1, p2 []*Body, contacts []*ContactEquation, friction []*FrictionEquation) ([]*ContactEquation, []*FrictionEquation) {
	n.result = contacts
	n.frictionResult = friction
	w := n.world

	for k := range p1 {
		bi, bj := p1[k], p2[k]

		var bodyContactMaterial *material.ContactMaterial
		if bi.Material != nil && bj.Material != nil {
			bodyContactMaterial = w.ContactMaterials.Get(bi.Material, bj.Material)
		}

		justTest := (bi.Type&Kinematic != 0 && bj.Type&Static != 0) ||
			(bi.Type&Static != 0 && bj.Type&Kinematic != 0) ||
			(bi.Type&Kinematic != 0 && bj.Type&Kinematic != 0)

		for i, si := range bi.Shapes {
			xi, qi := bi.ShapeWorldTransform(i)
			ci := si.Common()

			for j, sj := range bj.Shapes {
				xj, qj := bj.ShapeWorldTransform(j)
				cj := sj.Common()

				if ci.CollisionFilterMask&cj.CollisionFilterGroup == 0 || cj.CollisionFilterMask&ci.CollisionFilterGroup == 0 {
					continue
				}
				if xi.Sub(xj).Len() > si.BoundingSphereRadius()+sj.BoundingSphereRadius() {
					continue
				}

				var shapeContactMaterial *material.ContactMaterial
				if ci.Material != nil && cj.Material != nil {
					shapeContactMaterial = w.ContactMaterials.Get(ci.Material, cj.Material)
				}
				switch {
				case shapeContactMaterial != nil:
					n.currentContactMaterial = shapeContactMaterial
				case bodyContactMaterial != nil:
					n.currentContactMaterial = bodyContactMaterial
				default:
					n.currentContactMaterial = w.DefaultContactMaterial
				}

				n.a = shapePose{shape: si, pos: xi, quat: qi, body: bi}
				n.b = shapePose{shape: sj, pos: xj, quat: qj, body: bj}
				if n.dispatch(&n.a, &n.b, justTest) && justTest {
					w.shapeOverlapKeeper.Set(si.ID(), sj.ID())
					w.bodyOverlapKeeper.Set(bi.id, bj.id)
				}
			}
		}
	}

	contacts, friction = n.result, n.frictionResult
	n.result, n.frictionResult = nil, nil
	return contacts, friction
}

// dispatch calls the handler registered for the pair, smaller kind first.
func (n *Narrowphase) dispatch(a, b *shapePose, justTest bool) bool {
	ka, kb := a.shape.Kind(), b.shape.Kind()
	if ka > kb {
		a, b = b, a
		ka, kb = kb, ka
	}
	h, ok := pairHandlers[kindPair{ka, kb}]
	if !ok {
		return false
	}
	return h(n, a, b, justTest)
}

func shapeOrBodyMaterial(s shapes.Shape, b *Body) *material.Material {
	if m := s.Common().Material; m != nil {
		return m
	}
	return b.Material
}

// createContactEquation takes a contact from the pool, or allocates one, and fills in
// everything but the geometry.
func (n *Narrowphase) createContactEquation(a, b *shapePose) *ContactEquation {
	var c *ContactEquation
	if last := len(n.contactPool) - 1; last >= 0 {
		c = n.contactPool[last]
		n.contactPool[last] = nil
		n.contactPool = n.contactPool[:last]
		c.BI, c.BJ = a.body, b.body
	} else {
		c = NewContactEquation(a.body, b.body)
	}

	si, sj := a.contactShape(), b.contactShape()
	c.SI, c.SJ = si, sj
	c.Enabled = a.body.CollisionResponse && b.body.CollisionResponse &&
		si.Common().CollisionResponse && sj.Common().CollisionResponse

	cm := n.currentContactMaterial
	c.Restitution = cm.Restitution
	matA, matB := shapeOrBodyMaterial(si, a.body), shapeOrBodyMaterial(sj, b.body)
	if matA != nil && matB != nil && matA.Restitution >= 0 && matB.Restitution >= 0 {
		c.Restitution = matA.Restitution * matB.Restitution
	}
	c.SetSpookParams(cm.ContactEquationStiffness, cm.ContactEquationRelaxation, n.world.dt)
	return c
}

func (n *Narrowphase) popFrictionEquation(bi, bj *Body) *FrictionEquation {
	if last := len(n.frictionPool) - 1; last >= 0 {
		f := n.frictionPool[last]
		n.frictionPool[last] = nil
		n.frictionPool = n.frictionPool[:last]
		f.BI, f.BJ = bi, bj
		return f
	}
	return NewFrictionEquation(bi, bj, 0)
}

// addContact stores c and gives it its own friction equations.
func (n *Narrowphase) addContact(c *ContactEquation) {
	n.result = append(n.result, c)
	n.createFrictionEquationsFromContact(c)
}

// createFrictionEquationsFromContact appends two friction equations along the contact
// tangents. It reports false when the pair has no friction.
func (n *Narrowphase) createFrictionEquationsFromContact(c *ContactEquation) bool {
	bodyA, bodyB := c.BI, c.BJ
	cm := n.currentContactMaterial

	mu := cm.Friction
	matA, matB := shapeOrBodyMaterial(c.SI, bodyA), shapeOrBodyMaterial(c.SJ, bodyB)
	if matA != nil && matB != nil && matA.Friction >= 0 && matB.Friction >= 0 {
		mu = matA.Friction * matB.Friction
	}
	if mu <= 0 {
		return false
	}

	mug := mu * n.world.Gravity.Len()
	reducedMass := bodyA.InvMass + bodyB.InvMass
	if reducedMass > 0 {
		reducedMass = 1 / reducedMass
	}
	slip := mug * reducedMass

	t1, t2 := geom.Tangents(c.NI)
	for _, t := range [2]mgl64.Vec3{t1, t2} {
		f := n.popFrictionEquation(bodyA, bodyB)
		f.MinForce, f.MaxForce = -slip, slip
		f.RI, f.RJ = c.RI, c.RJ
		f.T = t
		f.SetSpookParams(cm.FrictionEquationStiffness, cm.FrictionEquationRelaxation, n.world.dt)
		f.Enabled = c.Enabled
		n.frictionResult = append(n.frictionResult, f)
	}
	return true
}

// createFrictionFromAverage gives the last numContacts contacts, all between the same
// bodies, a single pair of friction equations at their averaged point and normal.
func (n *Narrowphase) createFrictionFromAverage(numContacts int) {
	c := n.result[len(n.result)-1]
	if !n.createFrictionEquationsFromContact(c) || numContacts == 1 {
		return
	}
	f1 := n.frictionResult[len(n.frictionResult)-2]
	f2 := n.frictionResult[len(n.frictionResult)-1]

	var averageNormal, averageA, averageB mgl64.Vec3
	bodyA := c.BI
	for i := 0; i < numContacts; i++ {
		c = n.result[len(n.result)-1-i]
		if c.BI == bodyA {
			averageNormal = averageNormal.Add(c.NI)
			averageA = averageA.Add(c.RI)
			averageB = averageB.Add(c.RJ)
		} else {
			averageNormal = averageNormal.Sub(c.NI)
			averageA = averageA.Add(c.RJ)
			averageB = averageB.Add(c.RI)
		}
	}

	inv := 1 / float64(numContacts)
	f1.RI = averageA.Mul(inv)
	f1.RJ = averageB.Mul(inv)
	f2.RI, f2.RJ = f1.RI, f1.RJ
	f1.T, f2.T = geom.Tangents(geom.Unit(averageNormal))
}

// finishManifold adds friction for the numContacts contacts just stored by a handler
// that defers friction.
func (n *Narrowphase) finishManifold(numContacts int) {
	if n.EnableFrictionReduction && numContacts > 0 {
		n.createFrictionFromAverage(numContacts)
	}
}

// storeManifoldContact stores c, with its own friction unless friction reduction is on.
func (n *Narrowphase) storeManifoldContact(c *ContactEquation) {
	n.result = append(n.result, c)
	if !n.EnableFrictionReduction {
		n.createFrictionEquationsFromContact(c)
	}
}
