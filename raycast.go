package impulse

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// rayPrecision is the smallest |normal·direction| for which a ray is not considered
// parallel to a face.
const rayPrecision = 0.0001

type rayMode int

const (
	rayClosest rayMode = iota
	rayAny
	rayAll
)

// RayOptions filters what a ray can hit. A zero mask or group means all bits, so the
// zero value hits everything with any collision response.
type RayOptions struct {
	CollisionFilterMask  int
	CollisionFilterGroup int
	// SkipBackfaces ignores hits on faces whose normal points along the ray.
	SkipBackfaces bool
	// CheckCollisionResponse ignores bodies and shapes with collision response off.
	CheckCollisionResponse bool
}

func DefaultRayOptions() RayOptions {
	return RayOptions{
		CollisionFilterMask:    -1,
		CollisionFilterGroup:   -1,
		CheckCollisionResponse: true,
	}
}

// RaycastResult describes one ray hit.
type RaycastResult struct {
	RayFromWorld   mgl64.Vec3
	RayToWorld     mgl64.Vec3
	HitNormalWorld mgl64.Vec3
	HitPointWorld  mgl64.Vec3
	HasHit         bool
	Shape          shapes.Shape
	Body           *Body
	// HitFaceIndex is the face or triangle hit, or -1 when the shape has none.
	HitFaceIndex int
	Distance     float64

	shouldStop bool
}

func (r *RaycastResult) Reset() {
	*r = RaycastResult{HitFaceIndex: -1, Distance: -1}
}

// Abort stops a RaycastAll query after the current callback.
func (r *RaycastResult) Abort() {
	r.shouldStop = true
}

func (r *RaycastResult) ShouldStop() bool { return r.shouldStop }

func (r *RaycastResult) set(from, to, normal, point mgl64.Vec3, shape shapes.Shape, body *Body, distance float64) {
	r.RayFromWorld = from
	r.RayToWorld = to
	r.HitNormalWorld = normal
	r.HitPointWorld = point
	r.Shape = shape
	r.Body = body
	r.Distance = distance
}

// raycaster runs one query; the world keeps one so that its buffers are reused.
type raycaster struct {
	from, to  mgl64.Vec3
	direction mgl64.Vec3
	opts      RayOptions
	mode      rayMode
	result    *RaycastResult
	callback  func(*RaycastResult)
	hasHit    bool

	bodies    []*Body
	triangles []int
	pillar    *shapes.ConvexPolyhedron
	topFace   []int
}

// RaycastAll calls callback for every hit along the segment from-to. It reports whether
// anything was hit.
func (w *World) RaycastAll(from, to mgl64.Vec3, opts RayOptions, callback func(*RaycastResult)) bool {
	var result RaycastResult
	result.Reset()
	return w.intersectWorld(from, to, opts, rayAll, &result, callback)
}

// RaycastAny stops at the first hit found, which is not necessarily the closest.
func (w *World) RaycastAny(from, to mgl64.Vec3, opts RayOptions, result *RaycastResult) bool {
	return w.intersectWorld(from, to, opts, rayAny, result, nil)
}

// RaycastClosest stores the hit closest to from in result.
func (w *World) RaycastClosest(from, to mgl64.Vec3, opts RayOptions, result *RaycastResult) bool {
	return w.intersectWorld(from, to, opts, rayClosest, result, nil)
}

func (w *World) intersectWorld(from, to mgl64.Vec3, opts RayOptions, mode rayMode, result *RaycastResult, callback func(*RaycastResult)) bool {
	r := &w.raycaster
	if r.pillar == nil {
		r.pillar = shapes.NewConvexPolyhedron(nil, nil)
	}
	r.from, r.to = from, to
	r.direction = geom.Unit(to.Sub(from))
	r.opts = opts
	if r.opts.CollisionFilterMask == 0 {
		r.opts.CollisionFilterMask = -1
	}
	if r.opts.CollisionFilterGroup == 0 {
		r.opts.CollisionFilterGroup = -1
	}
	r.mode = mode
	r.result = result
	r.callback = callback
	r.hasHit = false
	result.Reset()

	box := geom.NewAABB(geom.MinVec(from, to), geom.MaxVec(from, to))
	clear(r.bodies)
	r.bodies = w.Broadphase.AABBQuery(w, box, r.bodies[:0])
	for _, b := range r.bodies {
		if result.shouldStop {
			break
		}
		r.intersectBody(b)
	}
	r.result, r.callback = nil, nil
	return r.hasHit
}

func (r *raycaster) intersectBody(b *Body) {
	if r.opts.CheckCollisionResponse && !b.CollisionResponse {
		return
	}
	if r.opts.CollisionFilterGroup&b.CollisionFilterMask == 0 || b.CollisionFilterGroup&r.opts.CollisionFilterMask == 0 {
		return
	}
	for i, s := range b.Shapes {
		pos, quat := b.ShapeWorldTransform(i)
		r.intersectShape(s, quat, pos, b)
		if r.result.shouldStop {
			return
		}
	}
}

func (r *raycaster) intersectShape(s shapes.Shape, q mgl64.Quat, x mgl64.Vec3, b *Body) {
	common := s.Common()
	if r.opts.CheckCollisionResponse && !common.CollisionResponse {
		return
	}
	if r.opts.CollisionFilterGroup&common.CollisionFilterMask == 0 || common.CollisionFilterGroup&r.opts.CollisionFilterMask == 0 {
		return
	}
	if s.Kind() != shapes.KindPlane && distanceFromLine(r.from, r.direction, x) > s.BoundingSphereRadius() {
		return
	}

	switch v := s.(type) {
	case *shapes.Sphere:
		r.intersectSphere(v, x, b)
	case *shapes.Plane:
		r.intersectPlane(v, q, x, b)
	case *shapes.Box:
		r.intersectConvex(v.Convex(), s, q, x, b, nil)
	case *shapes.Cylinder:
		r.intersectConvex(v.Hull(), s, q, x, b, nil)
	case *shapes.ConvexPolyhedron:
		r.intersectConvex(v, s, q, x, b, nil)
	case *shapes.Trimesh:
		r.intersectTrimesh(v, q, x, b)
	case *shapes.Heightfield:
		r.intersectHeightfield(v, q, x, b)
	}
}

// distanceFromLine is the distance from p to the line through from along the unit
// direction.
func distanceFromLine(from, direction, p mgl64.Vec3) float64 {
	onLine := from.Add(direction.Mul(p.Sub(from).Dot(direction)))
	return p.Sub(onLine).Len()
}

func (r *raycaster) intersectSphere(s *shapes.Sphere, x mgl64.Vec3, b *Body) {
	from, to := r.from, r.to
	d := to.Sub(from)
	fx := from.Sub(x)

	a := d.Dot(d)
	bb := 2 * d.Dot(fx)
	c := fx.Dot(fx) - s.Radius*s.Radius
	delta := bb*bb - 4*a*c

	switch {
	case delta < 0:
		return
	case delta == 0:
		point := from.Add(d.Mul(-bb / (2 * a)))
		r.reportIntersection(geom.Unit(point.Sub(x)), point, s, b, -1)
	default:
		sq := math.Sqrt(delta)
		d1 := (-bb - sq) / (2 * a)
		d2 := (-bb + sq) / (2 * a)
		if d1 >= 0 && d1 <= 1 {
			point := from.Add(d.Mul(d1))
			r.reportIntersection(geom.Unit(point.Sub(x)), point, s, b, -1)
		}
		if r.result.shouldStop {
			return
		}
		if d2 >= 0 && d2 <= 1 {
			point := from.Add(d.Mul(d2))
			r.reportIntersection(geom.Unit(point.Sub(x)), point, s, b, -1)
		}
	}
}

func (r *raycaster) intersectPlane(p *shapes.Plane, q mgl64.Quat, x mgl64.Vec3, b *Body) {
	from, to := r.from, r.to
	normal := p.WorldNormal(q)

	dotFrom := from.Sub(x).Dot(normal)
	dotTo := to.Sub(x).Dot(normal)
	if dotFrom*dotTo > 0 {
		// Both ends on the same side.
		return
	}
	if from.Sub(to).Len() < dotFrom {
		return
	}
	nDotDir := normal.Dot(r.direction)
	if math.Abs(nDotDir) < rayPrecision {
		return
	}
	t := -dotFrom / nDotDir
	point := from.Add(r.direction.Mul(t))
	r.reportIntersection(normal, point, p, b, -1)
}

// intersectConvex tests the faces of hull placed at x/q, or only those in faceList when
// it is set. Hits are reported on the reported shape.
func (r *raycaster) intersectConvex(hull *shapes.ConvexPolyhedron, reported shapes.Shape, q mgl64.Quat, x mgl64.Vec3, b *Body, faceList []int) {
	from := r.from
	direction := r.direction
	fromToDistance := r.to.Sub(from).Len()

	nFaces := len(hull.Faces)
	if faceList != nil {
		nFaces = len(faceList)
	}
	for k := 0; !r.result.shouldStop && k < nFaces; k++ {
		fi := k
		if faceList != nil {
			fi = faceList[k]
		}
		face := hull.Faces[fi]
		normal := q.Rotate(hull.FaceNormals[fi])

		dot := direction.Dot(normal)
		if math.Abs(dot) < rayPrecision {
			continue
		}
		a := hull.WorldVertex(face[0], x, q)
		scalar := normal.Dot(a.Sub(from)) / dot
		if scalar < 0 {
			// Plane behind the ray origin.
			continue
		}
		point := from.Add(direction.Mul(scalar))
		if point.Sub(from).Len() > fromToDistance {
			continue
		}

		for i := 1; !r.result.shouldStop && i < len(face)-1; i++ {
			bv := hull.WorldVertex(face[i], x, q)
			cv := hull.WorldVertex(face[i+1], x, q)
			if geom.PointInTriangle(point, a, bv, cv) || geom.PointInTriangle(point, bv, a, cv) {
				r.reportIntersection(normal, point, reported, b, fi)
				break
			}
		}
	}
}

func (r *raycaster) intersectTrimesh(mesh *shapes.Trimesh, q mgl64.Quat, x mgl64.Vec3, b *Body) {
	frame := geom.NewTransform(x, q)
	localFrom := frame.PointToLocal(r.from)
	localTo := frame.PointToLocal(r.to)
	localDirection := frame.VectorToLocal(r.direction)
	maxDistSq := localTo.Sub(localFrom).Dot(localTo.Sub(localFrom))

	r.triangles = mesh.TrianglesOnRay(localFrom, localDirection, r.triangles[:0])
	for _, tri := range r.triangles {
		if r.result.shouldStop {
			return
		}
		normal := mesh.Normal(tri)
		a, bv, cv := mesh.TriangleVertices(tri)

		dot := localDirection.Dot(normal)
		if math.Abs(dot) < rayPrecision {
			continue
		}
		scalar := normal.Dot(a.Sub(localFrom)) / dot
		if scalar < 0 {
			continue
		}
		point := localFrom.Add(localDirection.Mul(scalar))
		if point.Sub(localFrom).Dot(point.Sub(localFrom)) > maxDistSq {
			continue
		}
		if !geom.PointInTriangle(point, bv, a, cv) && !geom.PointInTriangle(point, a, bv, cv) {
			continue
		}
		r.reportIntersection(frame.VectorToWorld(normal), frame.PointToWorld(point), mesh, b, tri)
	}
}

// intersectHeightfield tests the top faces of the pillars under the ray.
func (r *raycaster) intersectHeightfield(hf *shapes.Heightfield, q mgl64.Quat, x mgl64.Vec3, b *Body) {
	frame := geom.NewTransform(x, q)
	localFrom := frame.PointToLocal(r.from)
	localTo := frame.PointToLocal(r.to)

	center := localFrom.Add(localTo).Mul(0.5)
	half := math.Max(math.Abs(localTo[0]-localFrom[0]), math.Abs(localTo[1]-localFrom[1])) / 2
	iMinX, iMinY, iMaxX, iMaxY, ok := hf.CellRange(center[0], center[1], half)
	if !ok {
		return
	}
	if r.topFace == nil {
		r.topFace = []int{0}
	}

	for i := iMinX; i < iMaxX; i++ {
		for j := iMinY; j < iMaxY; j++ {
			for _, upper := range [2]bool{false, true} {
				if r.result.shouldStop {
					return
				}
				offset := hf.TrianglePillar(i, j, upper, r.pillar)
				r.intersectConvex(r.pillar, hf, q, frame.PointToWorld(offset), b, r.topFace)
			}
		}
	}
}

func (r *raycaster) reportIntersection(normal, point mgl64.Vec3, s shapes.Shape, b *Body, faceIndex int) {
	if r.opts.SkipBackfaces && normal.Dot(r.direction) > 0 {
		return
	}
	result := r.result
	distance := point.Sub(r.from).Len()

	switch r.mode {
	case rayAll:
		r.hasHit = true
		result.set(r.from, r.to, normal, point, s, b, distance)
		result.HitFaceIndex = faceIndex
		result.HasHit = true
		r.callback(result)
	case rayClosest:
		if !result.HasHit || distance < result.Distance {
			r.hasHit = true
			result.HasHit = true
			result.set(r.from, r.to, normal, point, s, b, distance)
			result.HitFaceIndex = faceIndex
		}
	case rayAny:
		r.hasHit = true
		result.HasHit = true
		result.set(r.from, r.to, normal, point, s, b, distance)
		result.HitFaceIndex = faceIndex
		result.shouldStop = true
	}
}
