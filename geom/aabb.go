package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis aligned bounding box. Bounds are inclusive.
type AABB struct {
	LowerBound mgl64.Vec3
	UpperBound mgl64.Vec3
}

func NewAABB(lower, upper mgl64.Vec3) AABB {
	return AABB{LowerBound: lower, UpperBound: upper}
}

// InfiniteAABB bounds all of space; planes use it.
func InfiniteAABB() AABB {
	inf := math.MaxFloat64
	return AABB{
		LowerBound: mgl64.Vec3{-inf, -inf, -inf},
		UpperBound: mgl64.Vec3{inf, inf, inf},
	}
}

// SetFromPoints bounds the given points, first rotated and translated by tf, then grown
// by margin on every face. An empty point list leaves the box unchanged.
func (a *AABB) SetFromPoints(points []mgl64.Vec3, tf Transform, margin float64) *AABB {
	if len(points) == 0 {
		return a
	}
	rotate := tf.Quaternion != (mgl64.Quat{}) && tf.Quaternion != mgl64.QuatIdent()

	first := points[0]
	if rotate {
		first = tf.Quaternion.Rotate(first)
	}
	lo, hi := first, first
	for _, p := range points[1:] {
		if rotate {
			p = tf.Quaternion.Rotate(p)
		}
		lo = MinVec(lo, p)
		hi = MaxVec(hi, p)
	}

	lo = lo.Add(tf.Position)
	hi = hi.Add(tf.Position)

	m := mgl64.Vec3{margin, margin, margin}
	a.LowerBound = lo.Sub(m)
	a.UpperBound = hi.Add(m)
	return a
}

// Overlaps reports whether the closed boxes intersect on every axis.
func (a AABB) Overlaps(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.LowerBound[i] > b.UpperBound[i] || b.LowerBound[i] > a.UpperBound[i] {
			return false
		}
	}
	return true
}

// Contains reports whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	for i := 0; i < 3; i++ {
		if b.LowerBound[i] < a.LowerBound[i] || b.UpperBound[i] > a.UpperBound[i] {
			return false
		}
	}
	return true
}

// Extend grows a in place to the union of a and b.
func (a *AABB) Extend(b AABB) {
	a.LowerBound = MinVec(a.LowerBound, b.LowerBound)
	a.UpperBound = MaxVec(a.UpperBound, b.UpperBound)
}

func (a AABB) Volume() float64 {
	d := a.UpperBound.Sub(a.LowerBound)
	return d[0] * d[1] * d[2]
}

func (a AABB) Center() mgl64.Vec3 {
	return a.LowerBound.Add(a.UpperBound).Mul(0.5)
}

// Corners returns the eight corners, one per combination of (lower, upper) on each axis.
func (a AABB) Corners() [8]mgl64.Vec3 {
	l, u := a.LowerBound, a.UpperBound
	return [8]mgl64.Vec3{
		{l[0], l[1], l[2]},
		{u[0], l[1], l[2]},
		{u[0], u[1], l[2]},
		{l[0], u[1], l[2]},
		{l[0], l[1], u[2]},
		{u[0], l[1], u[2]},
		{u[0], u[1], u[2]},
		{l[0], u[1], u[2]},
	}
}

// ToLocalFrame bounds the box after moving its corners into the local space of frame.
func (a AABB) ToLocalFrame(frame Transform) AABB {
	corners := a.Corners()
	for i := range corners {
		corners[i] = frame.PointToLocal(corners[i])
	}
	var out AABB
	out.SetFromPoints(corners[:], IdentityTransform(), 0)
	return out
}

// ToWorldFrame bounds the box after moving its corners out of the local space of frame.
func (a AABB) ToWorldFrame(frame Transform) AABB {
	corners := a.Corners()
	for i := range corners {
		corners[i] = frame.PointToWorld(corners[i])
	}
	var out AABB
	out.SetFromPoints(corners[:], IdentityTransform(), 0)
	return out
}

// OverlapsRay is a slab test of the ray starting at origin along direction. Hits
// entirely behind the origin do not count.
func (a AABB) OverlapsRay(origin, direction mgl64.Vec3) bool {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for i := 0; i < 3; i++ {
		if direction[i] == 0 {
			if origin[i] < a.LowerBound[i] || origin[i] > a.UpperBound[i] {
				return false
			}
			continue
		}
		inv := 1 / direction[i]
		t1 := (a.LowerBound[i] - origin[i]) * inv
		t2 := (a.UpperBound[i] - origin[i]) * inv
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
	}
	if tmax < 0 {
		return false
	}
	if tmin > tmax {
		return false
	}
	return true
}
