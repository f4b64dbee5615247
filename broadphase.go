package impulse

import (
	"github.com/gekko3d/impulse/geom"
)

// Broadphase produces the candidate body pairs handed to the narrowphase.
type Broadphase interface {
	// CollisionPairs appends candidate pairs to p1 and p2; p1[k] pairs with p2[k].
	CollisionPairs(world *World, p1, p2 []*Body) ([]*Body, []*Body)
	// AABBQuery appends the bodies whose bounds overlap box.
	AABBQuery(world *World, box geom.AABB, result []*Body) []*Body
	// SetDirty tells the broadphase that bodies moved since the last query.
	SetDirty()
}

// needBroadphaseCollision applies the body filters. Pairs where neither body can move
// are skipped.
func needBroadphaseCollision(a, b *Body) bool {
	if a.CollisionFilterGroup&b.CollisionFilterMask == 0 || b.CollisionFilterGroup&a.CollisionFilterMask == 0 {
		return false
	}
	if (a.Type&Static != 0 || a.SleepState == Sleeping) && (b.Type&Static != 0 || b.SleepState == Sleeping) {
		return false
	}
	return true
}

// pairTester holds the overlap test shared by the broadphase implementations.
type pairTester struct {
	// UseBoundingBoxes tests body AABBs instead of bounding spheres.
	UseBoundingBoxes bool
}

func (t pairTester) intersects(a, b *Body) bool {
	if t.UseBoundingBoxes {
		return a.AABB().Overlaps(b.AABB())
	}
	r := a.BoundingRadius + b.BoundingRadius
	d := b.Position.Sub(a.Position)
	return d.Dot(d) < r*r
}

func (t pairTester) testPair(a, b *Body, p1, p2 []*Body) ([]*Body, []*Body) {
	if !needBroadphaseCollision(a, b) {
		return p1, p2
	}
	if t.intersects(a, b) {
		p1 = append(p1, a)
		p2 = append(p2, b)
	}
	return p1, p2
}

// NaiveBroadphase tests every pair of bodies.
type NaiveBroadphase struct {
	pairTester
}

func NewNaiveBroadphase() *NaiveBroadphase {
	return &NaiveBroadphase{}
}

func (bp *NaiveBroadphase) CollisionPairs(world *World, p1, p2 []*Body) ([]*Body, []*Body) {
	bodies := world.Bodies
	for i := 0; i < len(bodies); i++ {
		for j := 0; j < i; j++ {
			p1, p2 = bp.testPair(bodies[i], bodies[j], p1, p2)
		}
	}
	return p1, p2
}

func (bp *NaiveBroadphase) AABBQuery(world *World, box geom.AABB, result []*Body) []*Body {
	for _, b := range world.Bodies {
		if b.AABB().Overlaps(box) {
			result = append(result, b)
		}
	}
	return result
}

func (bp *NaiveBroadphase) SetDirty() {}
