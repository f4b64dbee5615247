package shapes

import (
	"sync/atomic"

	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/material"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind is a power of two per shape type, so two kinds can be combined into one mask.
type Kind int

const (
	KindSphere      Kind = 1
	KindPlane       Kind = 2
	KindBox         Kind = 4
	KindCompound    Kind = 8
	KindConvex      Kind = 16
	KindHeightfield Kind = 32
	KindParticle    Kind = 64
	KindCylinder    Kind = 128
	KindTrimesh     Kind = 256
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindBox:
		return "box"
	case KindCompound:
		return "compound"
	case KindConvex:
		return "convex"
	case KindHeightfield:
		return "heightfield"
	case KindParticle:
		return "particle"
	case KindCylinder:
		return "cylinder"
	case KindTrimesh:
		return "trimesh"
	}
	return "unknown"
}

// Shape is the geometry attached to a body.
type Shape interface {
	Kind() Kind
	ID() int
	Common() *Base
	BoundingSphereRadius() float64
	UpdateBoundingSphereRadius()
	Volume() float64
	CalculateLocalInertia(mass float64) mgl64.Vec3
	CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB
}

var shapeIDCounter atomic.Int64

// Base holds what every shape has in common. Shapes embed it.
type Base struct {
	id                   int
	kind                 Kind
	boundingSphereRadius float64

	CollisionFilterGroup int
	CollisionFilterMask  int
	CollisionResponse    bool
	Material             *material.Material
}

func newBase(kind Kind) Base {
	return Base{
		id:                   int(shapeIDCounter.Add(1)) - 1,
		kind:                 kind,
		CollisionFilterGroup: 1,
		CollisionFilterMask:  -1,
		CollisionResponse:    true,
	}
}

func (b *Base) ID() int                       { return b.id }
func (b *Base) Kind() Kind                    { return b.kind }
func (b *Base) Common() *Base                 { return b }
func (b *Base) BoundingSphereRadius() float64 { return b.boundingSphereRadius }
