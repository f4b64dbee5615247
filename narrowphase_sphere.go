package impulse

import (
	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

var localZ = mgl64.Vec3{0, 0, 1}

// relativeTo turns the world point p into an offset from the center of b.
func relativeTo(p mgl64.Vec3, b *Body) mgl64.Vec3 {
	return p.Sub(b.Position)
}

func (n *Narrowphase) sphereSphere(a, b *shapePose, justTest bool) bool {
	ra := a.shape.(*shapes.Sphere).Radius
	rb := b.shape.(*shapes.Sphere).Radius
	if justTest {
		d := a.pos.Sub(b.pos)
		r := ra + rb
		return d.Dot(d) < r*r
	}

	c := n.createContactEquation(a, b)
	c.NI = geom.Unit(b.pos.Sub(a.pos))
	c.RI = relativeTo(c.NI.Mul(ra).Add(a.pos), a.body)
	c.RJ = relativeTo(c.NI.Mul(-rb).Add(b.pos), b.body)
	n.addContact(c)
	return true
}

func (n *Narrowphase) spherePlane(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius

	// Normal points out of the sphere, into the plane.
	ni := b.quat.Rotate(localZ).Mul(-1)
	planeToSphere := a.pos.Sub(b.pos)
	if -planeToSphere.Dot(ni) > radius {
		return false
	}
	if justTest {
		return true
	}

	c := n.createContactEquation(a, b)
	c.NI = ni
	c.RI = relativeTo(ni.Mul(radius).Add(a.pos), a.body)
	// Sphere center projected onto the plane.
	onPlane := planeToSphere.Sub(ni.Mul(ni.Dot(planeToSphere)))
	c.RJ = relativeTo(onPlane.Add(b.pos), b.body)
	n.addContact(c)
	return true
}

// sphereBox tests the box faces, then corners, then edges, and emits at most one
// contact.
func (n *Narrowphase) sphereBox(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius
	box := b.shape.(*shapes.Box)
	xi, xj := a.pos, b.pos
	boxToSphere := xi.Sub(xj)
	sides := box.SideNormals(b.quat)

	var (
		sideFound                bool
		sideDistance, sideH      float64
		sideDot1, sideDot2       float64
		sideNs, sideNs1, sideNs2 mgl64.Vec3
	)
	for idx := range sides {
		h := sides[idx].Len()
		ns := geom.Unit(sides[idx])
		dot := boxToSphere.Dot(ns)
		if dot >= h+radius || dot <= 0 {
			continue
		}
		// Within the slab of this face; check the other two axes.
		ns1 := sides[(idx+1)%3]
		ns2 := sides[(idx+2)%3]
		h1, h2 := ns1.Len(), ns2.Len()
		ns1, ns2 = geom.Unit(ns1), geom.Unit(ns2)
		dot1 := boxToSphere.Dot(ns1)
		dot2 := boxToSphere.Dot(ns2)
		if dot1 < h1 && dot1 > -h1 && dot2 < h2 && dot2 > -h2 {
			dist := abs(dot - h - radius)
			if !sideFound || dist < sideDistance {
				if justTest {
					return true
				}
				sideFound = true
				sideDistance = dist
				sideDot1, sideDot2 = dot1, dot2
				sideH = h
				sideNs, sideNs1, sideNs2 = ns, ns1, ns2
			}
		}
	}
	if sideFound {
		c := n.createContactEquation(a, b)
		c.RI = relativeTo(sideNs.Mul(-radius).Add(xi), a.body)
		c.NI = sideNs.Mul(-1)
		rj := sideNs.Mul(sideH).Add(sideNs1.Mul(sideDot1)).Add(sideNs2.Mul(sideDot2))
		c.RJ = relativeTo(rj.Add(xj), b.body)
		n.addContact(c)
		return true
	}

	// Corners
	r2 := radius * radius
	for j := 0; j < 2; j++ {
		for k := 0; k < 2; k++ {
			for l := 0; l < 2; l++ {
				corner := signed(sides[0], j).Add(signed(sides[1], k)).Add(signed(sides[2], l))
				sphereToCorner := xj.Add(corner).Sub(xi)
				if sphereToCorner.Dot(sphereToCorner) >= r2 {
					continue
				}
				if justTest {
					return true
				}
				c := n.createContactEquation(a, b)
				c.NI = geom.Unit(sphereToCorner)
				c.RI = relativeTo(c.NI.Mul(radius).Add(xi), a.body)
				c.RJ = relativeTo(corner.Add(xj), b.body)
				n.addContact(c)
				return true
			}
		}
	}

	// Edges
	for j := range sides {
		for k := range sides {
			if j%3 == k%3 {
				continue
			}
			edgeTangent := geom.Unit(sides[k].Cross(sides[j]))
			edgeCenter := sides[j].Add(sides[k])
			r := xi.Sub(edgeCenter).Sub(xj)
			orthonorm := r.Dot(edgeTangent)
			orthogonal := edgeTangent.Mul(orthonorm)

			l := 0
			for l == j%3 || l == k%3 {
				l++
			}

			// Edge center to sphere, in the plane orthogonal to the edge.
			dist := xi.Sub(orthogonal).Sub(edgeCenter).Sub(xj)
			if abs(orthonorm) >= sides[l].Len() || dist.Len() >= radius {
				continue
			}
			if justTest {
				return true
			}
			c := n.createContactEquation(a, b)
			rj := edgeCenter.Add(orthogonal)
			c.NI = geom.Unit(dist.Mul(-1))
			ri := geom.Unit(rj.Add(xj).Sub(xi)).Mul(radius)
			c.RI = relativeTo(ri.Add(xi), a.body)
			c.RJ = relativeTo(rj.Add(xj), b.body)
			n.addContact(c)
			return true
		}
	}
	return false
}

func signed(v mgl64.Vec3, positive int) mgl64.Vec3 {
	if positive != 0 {
		return v
	}
	return v.Mul(-1)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// sphereConvex tests hull vertices, then faces, then face edges, and emits at most one
// contact.
func (n *Narrowphase) sphereConvex(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius
	hull := hullOf(b.shape)
	xi, xj, qj := a.pos, b.pos, b.quat
	r2 := radius * radius

	for i := range hull.Vertices {
		worldCorner := hull.WorldVertex(i, xj, qj)
		sphereToCorner := worldCorner.Sub(xi)
		if sphereToCorner.Dot(sphereToCorner) >= r2 {
			continue
		}
		if justTest {
			return true
		}
		c := n.createContactEquation(a, b)
		c.NI = geom.Unit(sphereToCorner)
		c.RI = relativeTo(c.NI.Mul(radius).Add(xi), a.body)
		c.RJ = relativeTo(worldCorner, b.body)
		n.addContact(c)
		return true
	}

	for i, face := range hull.Faces {
		worldNormal := qj.Rotate(hull.FaceNormals[i])
		worldPoint := hull.WorldVertex(face[0], xj, qj)
		closest := worldNormal.Mul(-radius).Add(xi)
		penetration := closest.Sub(worldPoint).Dot(worldNormal)
		if penetration >= 0 || xi.Sub(worldPoint).Dot(worldNormal) <= 0 {
			continue
		}

		n.polygon = n.polygon[:0]
		for _, vi := range face {
			n.polygon = append(n.polygon, hull.WorldVertex(vi, xj, qj))
		}

		if pointInPolygon(n.polygon, worldNormal, xi) {
			if justTest {
				return true
			}
			c := n.createContactEquation(a, b)
			c.RI = relativeTo(worldNormal.Mul(-radius).Add(xi), a.body)
			c.NI = worldNormal.Mul(-1)
			onFace := xi.Sub(worldNormal.Mul(radius)).Sub(worldNormal.Mul(penetration))
			c.RJ = relativeTo(onFace, b.body)
			n.addContact(c)
			return true
		}

		nv := len(face)
		for j := 0; j < nv; j++ {
			v1 := n.polygon[(j+1)%nv]
			v2 := n.polygon[(j+2)%nv]
			edge := v2.Sub(v1)
			edgeUnit := geom.Unit(edge)
			dot := xi.Sub(v1).Dot(edgeUnit)
			p := edgeUnit.Mul(dot).Add(v1)
			xiToP := p.Sub(xi)
			if dot > 0 && dot*dot < edge.Dot(edge) && xiToP.Dot(xiToP) < r2 {
				if justTest {
					return true
				}
				c := n.createContactEquation(a, b)
				c.NI = geom.Unit(xiToP)
				c.RI = relativeTo(c.NI.Mul(radius).Add(xi), a.body)
				c.RJ = relativeTo(p, b.body)
				n.addContact(c)
				return true
			}
		}
	}
	return false
}

// pointInPolygon reports whether p projects inside the convex polygon verts with the
// given normal.
func pointInPolygon(verts []mgl64.Vec3, normal, p mgl64.Vec3) bool {
	var positive, decided bool
	nv := len(verts)
	for i, v := range verts {
		edge := verts[(i+1)%nv].Sub(v)
		side := edge.Cross(normal).Dot(p.Sub(v))
		if !decided {
			positive = side > 0
			decided = true
			continue
		}
		if (side > 0) != positive {
			return false
		}
	}
	return true
}

// sphereTrimesh tests the triangles near the sphere against their vertices, edges and
// faces. Every feature within reach produces a contact.
func (n *Narrowphase) sphereTrimesh(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius
	mesh := b.shape.(*shapes.Trimesh)
	spherePos := a.pos
	frame := geom.NewTransform(b.pos, b.quat)
	local := frame.PointToLocal(spherePos)
	r2 := radius * radius
	found := false

	rv := mgl64.Vec3{radius, radius, radius}
	n.triangles = mesh.TrianglesInAABB(geom.NewAABB(local.Sub(rv), local.Add(rv)), n.triangles[:0])

	// contactAt emits a contact towards the local mesh point p.
	contactAt := func(p mgl64.Vec3) {
		c := n.createContactEquation(a, b)
		worldP := frame.PointToWorld(p)
		c.NI = geom.Unit(worldP.Sub(spherePos))
		c.RI = relativeTo(c.NI.Mul(radius).Add(spherePos), a.body)
		c.RJ = relativeTo(worldP, b.body)
		n.addContact(c)
		found = true
	}

	for _, tri := range n.triangles {
		for j := 0; j < 3; j++ {
			v := mesh.Vertex(mesh.Indices[3*tri+j])
			rel := v.Sub(local)
			if rel.Dot(rel) <= r2 {
				if justTest {
					return true
				}
				contactAt(v)
			}
		}
	}

	for _, tri := range n.triangles {
		for j := 0; j < 3; j++ {
			va := mesh.Vertex(mesh.Indices[3*tri+j])
			vb := mesh.Vertex(mesh.Indices[3*tri+(j+1)%3])
			edge := vb.Sub(va)
			alongB := local.Sub(vb).Dot(edge)
			alongA := local.Sub(va).Dot(edge)
			if alongA <= 0 || alongB >= 0 {
				continue
			}
			edgeUnit := geom.Unit(edge)
			onEdge := edgeUnit.Mul(local.Sub(va).Dot(edgeUnit)).Add(va)
			if onEdge.Sub(local).Len() < radius {
				if justTest {
					return true
				}
				contactAt(onEdge)
			}
		}
	}

	for _, tri := range n.triangles {
		va, vb, vc := mesh.TriangleVertices(tri)
		normal := mesh.Normal(tri)
		onPlane := local.Sub(normal.Mul(local.Sub(va).Dot(normal)))
		if geom.PointInTriangle(onPlane, va, vb, vc) && onPlane.Sub(local).Len() < radius {
			if justTest {
				return true
			}
			contactAt(onPlane)
		}
	}
	return found
}

// sphereHeightfield recurses into sphereConvex for the pillars under the sphere.
func (n *Narrowphase) sphereHeightfield(a, b *shapePose, justTest bool) bool {
	radius := a.shape.(*shapes.Sphere).Radius
	hf := b.shape.(*shapes.Heightfield)
	frame := geom.NewTransform(b.pos, b.quat)
	local := frame.PointToLocal(a.pos)

	iMinX, iMinY, iMaxX, iMaxY, ok := hf.CellRange(local[0], local[1], radius)
	if !ok {
		return false
	}
	lo, hi := hf.RectMinMax(iMinX, iMinY, iMaxX, iMaxY)
	if local[2]-radius > hi || local[2]+radius < lo {
		return false
	}

	pillar := shapePose{shape: n.pillar, quat: b.quat, body: b.body, recorded: hf}
	for i := iMinX; i < iMaxX; i++ {
		for j := iMinY; j < iMaxY; j++ {
			before := len(n.result)
			for _, upper := range [2]bool{false, true} {
				offset := hf.TrianglePillar(i, j, upper, n.pillar)
				pillar.pos = frame.PointToWorld(offset)
				if a.pos.Sub(pillar.pos).Len() >= n.pillar.BoundingSphereRadius()+a.shape.BoundingSphereRadius() {
					continue
				}
				if n.sphereConvex(a, &pillar, justTest) && justTest {
					return true
				}
			}
			if len(n.result)-before > 2 {
				return true
			}
		}
	}
	return false
}
