package shapes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ClipPoint is one point of a contact manifold: Point lies on the clipped face of hull B,
// Normal is the world normal of the reference face of hull A and Depth the signed
// distance of Point to that face (negative inside).
type ClipPoint struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

// Clipper owns the polygon buffers used while clipping hull faces. A Clipper must not be
// shared between goroutines.
type Clipper struct {
	in  []mgl64.Vec3
	out []mgl64.Vec3
}

// ClipAgainstHull clips the face of hullB most aligned with sepNormal against hullA and
// appends the resulting manifold to result. sepNormal points from B towards A.
func (cl *Clipper) ClipAgainstHull(hullA *ConvexPolyhedron, posA mgl64.Vec3, quatA mgl64.Quat, hullB *ConvexPolyhedron, posB mgl64.Vec3, quatB mgl64.Quat, sepNormal mgl64.Vec3, minDist, maxDist float64, result []ClipPoint) []ClipPoint {
	closestFaceB := -1
	dmax := -math.MaxFloat64
	for face, n := range hullB.FaceNormals {
		d := quatB.Rotate(n).Dot(sepNormal)
		if d > dmax {
			dmax = d
			closestFaceB = face
		}
	}
	if closestFaceB < 0 {
		return result
	}

	cl.in = cl.in[:0]
	for _, vi := range hullB.Faces[closestFaceB] {
		cl.in = append(cl.in, hullB.WorldVertex(vi, posB, quatB))
	}
	return cl.clipFaceAgainstHull(sepNormal, hullA, posA, quatA, minDist, maxDist, result)
}

// clipFaceAgainstHull clips the polygon in cl.in against the side planes of the face of
// hullA facing away from sepNormal, then keeps the points below that face.
func (cl *Clipper) clipFaceAgainstHull(sepNormal mgl64.Vec3, hullA *ConvexPolyhedron, posA mgl64.Vec3, quatA mgl64.Quat, minDist, maxDist float64, result []ClipPoint) []ClipPoint {
	closestFaceA := -1
	dmin := math.MaxFloat64
	for face, n := range hullA.FaceNormals {
		d := quatA.Rotate(n).Dot(sepNormal)
		if d < dmin {
			dmin = d
			closestFaceA = face
		}
	}
	if closestFaceA < 0 {
		return result
	}

	for _, other := range hullA.adjacent[closestFaceA] {
		planeNormalWS := quatA.Rotate(hullA.FaceNormals[other])
		planeEqWS := hullA.PlaneConstantOfFace(other) - planeNormalWS.Dot(posA)
		cl.out = ClipFaceAgainstPlane(cl.in, cl.out[:0], planeNormalWS, planeEqWS)
		cl.in, cl.out = cl.out, cl.in
		if len(cl.in) == 0 {
			return result
		}
	}

	planeNormalWS := quatA.Rotate(hullA.FaceNormals[closestFaceA])
	planeEqWS := hullA.PlaneConstantOfFace(closestFaceA) - planeNormalWS.Dot(posA)
	for _, p := range cl.in {
		depth := planeNormalWS.Dot(p) + planeEqWS
		if depth <= minDist {
			depth = minDist
		}
		if depth <= maxDist && depth <= 1e-6 {
			result = append(result, ClipPoint{Point: p, Normal: planeNormalWS, Depth: depth})
		}
	}
	return result
}

// ClipFaceAgainstPlane keeps the part of polygon in lying where n·p + c < 0 and appends
// it to out (Sutherland-Hodgman).
func ClipFaceAgainstPlane(in, out []mgl64.Vec3, n mgl64.Vec3, c float64) []mgl64.Vec3 {
	num := len(in)
	if num < 2 {
		return out
	}
	first := in[num-1]
	dotFirst := n.Dot(first) + c
	for _, last := range in {
		dotLast := n.Dot(last) + c
		if dotFirst < 0 {
			if dotLast < 0 {
				out = append(out, last)
			} else {
				out = append(out, lerp(first, last, dotFirst/(dotFirst-dotLast)))
			}
		} else if dotLast < 0 {
			out = append(out, lerp(first, last, dotFirst/(dotFirst-dotLast)))
			out = append(out, last)
		}
		first = last
		dotFirst = dotLast
	}
	return out
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
