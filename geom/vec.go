package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unit returns v scaled to length 1, or the zero vector when v has no length.
func Unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

func AlmostZero(v mgl64.Vec3, precision float64) bool {
	return math.Abs(v[0]) <= precision && math.Abs(v[1]) <= precision && math.Abs(v[2]) <= precision
}

func AlmostEquals(a, b mgl64.Vec3, precision float64) bool {
	return AlmostZero(a.Sub(b), precision)
}

// Tangents builds two unit vectors orthogonal to n and to each other.
// A zero n yields the x and y axes.
func Tangents(n mgl64.Vec3) (t1, t2 mgl64.Vec3) {
	norm := n.Len()
	if norm == 0 {
		return mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}
	}
	n = n.Mul(1 / norm)
	if math.Abs(n[0]) < 0.9 {
		t1 = n.Cross(mgl64.Vec3{1, 0, 0})
	} else {
		t1 = n.Cross(mgl64.Vec3{0, 1, 0})
	}
	t1 = Unit(t1)
	t2 = n.Cross(t1)
	return t1, t2
}

// PointInTriangle reports whether p, assumed to lie in the triangle's plane, is inside abc.
func PointInTriangle(p, a, b, c mgl64.Vec3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	u := dot11*dot02 - dot01*dot12
	v := dot00*dot12 - dot01*dot02
	return u >= 0 && v >= 0 && u+v < dot00*dot11-dot01*dot01
}

// MulElem is the component-wise product.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func MinVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func MaxVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
