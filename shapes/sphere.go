package shapes

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

type Sphere struct {
	Base
	Radius float64
}

func NewSphere(radius float64) *Sphere {
	if radius < 0 {
		panic("shapes: sphere radius cannot be negative")
	}
	s := &Sphere{Base: newBase(KindSphere), Radius: radius}
	s.UpdateBoundingSphereRadius()
	return s
}

func (s *Sphere) UpdateBoundingSphereRadius() {
	s.boundingSphereRadius = s.Radius
}

func (s *Sphere) Volume() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius * s.Radius / 3.0
}

func (s *Sphere) CalculateLocalInertia(mass float64) mgl64.Vec3 {
	i := 2.0 * mass * s.Radius * s.Radius / 5.0
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) CalculateWorldAABB(pos mgl64.Vec3, _ mgl64.Quat) geom.AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return geom.NewAABB(pos.Sub(r), pos.Add(r))
}

// Particle is a point with no extent.
type Particle struct {
	Base
}

func NewParticle() *Particle {
	return &Particle{Base: newBase(KindParticle)}
}

func (p *Particle) UpdateBoundingSphereRadius() {
	p.boundingSphereRadius = 0
}

func (p *Particle) Volume() float64 { return 0 }

func (p *Particle) CalculateLocalInertia(float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

func (p *Particle) CalculateWorldAABB(pos mgl64.Vec3, _ mgl64.Quat) geom.AABB {
	return geom.NewAABB(pos, pos)
}

// Plane is the infinite half space below local z = 0; its normal is local +z.
type Plane struct {
	Base
}

func NewPlane() *Plane {
	p := &Plane{Base: newBase(KindPlane)}
	p.UpdateBoundingSphereRadius()
	return p
}

func (p *Plane) UpdateBoundingSphereRadius() {
	p.boundingSphereRadius = math.MaxFloat64
}

func (p *Plane) Volume() float64 { return math.MaxFloat64 }

func (p *Plane) CalculateLocalInertia(float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

// WorldNormal returns the plane normal rotated by q.
func (p *Plane) WorldNormal(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(mgl64.Vec3{0, 0, 1})
}

// CalculateWorldAABB is unbounded except along an axis the normal is aligned with.
func (p *Plane) CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB {
	out := geom.InfiniteAABB()
	n := p.WorldNormal(q)
	for i := 0; i < 3; i++ {
		switch {
		case n[i] >= 1-1e-12:
			out.UpperBound[i] = pos[i]
		case n[i] <= -1+1e-12:
			out.LowerBound[i] = pos[i]
		}
	}
	return out
}
