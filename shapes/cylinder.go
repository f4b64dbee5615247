package shapes

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cylinder is a convex prism approximating a (possibly tapered) cylinder along local y.
type Cylinder struct {
	ConvexPolyhedron

	RadiusTop    float64
	RadiusBottom float64
	Height       float64
	NumSegments  int
}

func NewCylinder(radiusTop, radiusBottom, height float64, numSegments int) *Cylinder {
	if numSegments < 3 {
		panic("shapes: cylinder needs at least 3 segments")
	}
	n := numSegments
	var vertices []mgl64.Vec3
	var axes []mgl64.Vec3
	var faces [][]int
	var bottom, top []int

	vertex := func(r, y, theta float64) mgl64.Vec3 {
		return mgl64.Vec3{-r * math.Sin(theta), y, r * math.Cos(theta)}
	}

	vertices = append(vertices, vertex(radiusBottom, -height*0.5, 0))
	bottom = append(bottom, 0)
	vertices = append(vertices, vertex(radiusTop, height*0.5, 0))
	top = append(top, 1)

	for i := 0; i < n; i++ {
		theta := 2 * math.Pi / float64(n) * float64(i+1)
		thetaN := 2 * math.Pi / float64(n) * (float64(i) + 0.5)
		if i < n-1 {
			vertices = append(vertices, vertex(radiusBottom, -height*0.5, theta))
			bottom = append(bottom, 2*i+2)
			vertices = append(vertices, vertex(radiusTop, height*0.5, theta))
			top = append(top, 2*i+3)
			faces = append(faces, []int{2 * i, 2*i + 1, 2*i + 3, 2*i + 2})
		} else {
			faces = append(faces, []int{2 * i, 2*i + 1, 1, 0})
		}
		// Opposite side faces share an axis when the segment count is even.
		if n%2 == 1 || i < n/2 {
			axes = append(axes, mgl64.Vec3{-math.Sin(thetaN), 0, math.Cos(thetaN)})
		}
	}
	faces = append(faces, bottom)
	axes = append(axes, mgl64.Vec3{0, 1, 0})

	reversed := make([]int, len(top))
	for i := range top {
		reversed[i] = top[len(top)-1-i]
	}
	faces = append(faces, reversed)

	c := &Cylinder{
		RadiusTop:    radiusTop,
		RadiusBottom: radiusBottom,
		Height:       height,
		NumSegments:  numSegments,
	}
	c.ConvexPolyhedron = ConvexPolyhedron{
		Base:       newBase(KindCylinder),
		Vertices:   vertices,
		Faces:      faces,
		UniqueAxes: axes,
	}
	c.UpdateGeometry()
	return c
}

// Hull returns the polyhedron the convex algorithms operate on.
func (c *Cylinder) Hull() *ConvexPolyhedron {
	return &c.ConvexPolyhedron
}
