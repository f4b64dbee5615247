package impulse

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// Particle contacts put the particle first, so the normal points out of the particle.

func (n *Narrowphase) planeParticle(a, b *shapePose, justTest bool) bool {
	normal := a.quat.Rotate(localZ)
	relpos := b.pos.Sub(a.pos)
	dot := relpos.Dot(normal)
	if dot > 0 {
		return false
	}
	if justTest {
		return true
	}
	c := n.createContactEquation(b, a)
	c.NI = normal.Mul(-1)
	c.RI = relativeTo(b.pos, b.body)
	c.RJ = relativeTo(b.pos.Sub(normal.Mul(dot)), a.body)
	n.addContact(c)
	return true
}

func (n *Narrowphase) sphereParticle(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius
	normal := b.pos.Sub(a.pos)
	if normal.Dot(normal) > radius*radius {
		return false
	}
	if justTest {
		return true
	}
	c := n.createContactEquation(b, a)
	normal = geom.Unit(normal)
	c.RJ = relativeTo(normal.Mul(radius).Add(a.pos), a.body)
	c.NI = normal.Mul(-1)
	c.RI = relativeTo(b.pos, b.body)
	n.addContact(c)
	return true
}

// convexParticle pushes a particle inside the hull out through the nearest face.
func (n *Narrowphase) convexParticle(a, b *shapePose, justTest bool) bool {
	hull := hullOf(a.shape)
	local := geom.PointToLocalFrame(a.pos, a.quat, b.pos)
	if !hull.PointIsInside(local) {
		return false
	}

	minPenetration := math.Inf(1)
	found := false
	var penetratedNormal mgl64.Vec3
	for i, face := range hull.Faces {
		worldNormal := a.quat.Rotate(hull.FaceNormals[i])
		vertex := hull.WorldVertex(face[0], a.pos, a.quat)
		penetration := -worldNormal.Dot(b.pos.Sub(vertex))
		if abs(penetration) < minPenetration {
			if justTest {
				return true
			}
			minPenetration = abs(penetration)
			penetratedNormal = worldNormal
			found = true
		}
	}
	if !found {
		n.warner.Warnf("point found inside convex, but no penetrating face")
		return false
	}

	c := n.createContactEquation(b, a)
	c.RJ = relativeTo(penetratedNormal.Mul(minPenetration).Add(b.pos), a.body)
	c.NI = penetratedNormal.Mul(-1)
	c.RI = relativeTo(b.pos, b.body)
	n.addContact(c)
	return true
}
