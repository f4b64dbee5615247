package impulse

import (
	"github.com/gekko3d/impulse/shapes"
)

// clipDistance bounds the clipping of hull faces during convex manifold generation.
const clipDistance = 100

// planeConvex adds a contact for every hull vertex below the plane.
func (n *Narrowphase) planeConvex(a, b *shapePose, justTest bool) bool {
	hull := hullOf(b.shape)
	worldNormal := a.quat.Rotate(localZ)

	numContacts := 0
	for i := range hull.Vertices {
		worldVertex := hull.WorldVertex(i, b.pos, b.quat)
		relpos := worldVertex.Sub(a.pos)
		dot := worldNormal.Dot(relpos)
		if dot > 0 {
			continue
		}
		if justTest {
			return true
		}
		c := n.createContactEquation(a, b)
		// Vertex projected onto the plane.
		onPlane := worldVertex.Sub(worldNormal.Mul(dot))
		c.RI = relativeTo(onPlane, a.body)
		c.NI = worldNormal
		c.RJ = relativeTo(worldVertex, b.body)
		n.storeManifoldContact(c)
		numContacts++
	}
	n.finishManifold(numContacts)
	return numContacts > 0
}

func (n *Narrowphase) planeTrimesh(a, b *shapePose, justTest bool) bool {
	mesh := b.shape.(*shapes.Trimesh)
	worldNormal := a.quat.Rotate(localZ)

	found := false
	for i := range mesh.Vertices {
		v := b.quat.Rotate(mesh.Vertex(i)).Add(b.pos)
		dot := v.Sub(a.pos).Dot(worldNormal)
		if dot > 0 {
			continue
		}
		if justTest {
			return true
		}
		c := n.createContactEquation(a, b)
		c.NI = worldNormal
		c.RI = relativeTo(v.Sub(worldNormal.Mul(dot)), a.body)
		c.RJ = relativeTo(v, b.body)
		n.addContact(c)
		found = true
	}
	return found
}

// convexConvex finds the axis of least penetration and clips the hulls against each
// other to build the manifold.
func (n *Narrowphase) convexConvex(a, b *shapePose, justTest bool) bool {
	reach := a.shape.BoundingSphereRadius() + b.shape.BoundingSphereRadius()
	if a.pos.Sub(b.pos).Len() > reach {
		return false
	}
	hullA, hullB := hullOf(a.shape), hullOf(b.shape)

	sepAxis, ok := hullA.FindSeparatingAxis(hullB, a.pos, a.quat, b.pos, b.quat)
	if !ok {
		return false
	}
	n.clipPoints = n.clipper.ClipAgainstHull(hullA, a.pos, a.quat, hullB, b.pos, b.quat, sepAxis, -clipDistance, clipDistance, n.clipPoints[:0])

	numContacts := 0
	for _, p := range n.clipPoints {
		if justTest {
			return true
		}
		c := n.createContactEquation(a, b)
		c.NI = sepAxis.Mul(-1)
		c.RI = relativeTo(p.Point.Sub(p.Normal.Mul(p.Depth)), a.body)
		c.RJ = relativeTo(p.Point, b.body)
		n.storeManifoldContact(c)
		numContacts++
	}
	n.finishManifold(numContacts)
	return numContacts > 0
}
