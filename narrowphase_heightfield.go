package impulse

import (
	"github.com/gekko3d/impulse/geom"
	"github.com/gekko3d/impulse/shapes"
)

// convexHeightfield tests the hull against the triangular pillars of every heightfield
// cell under its bounding sphere.
func (n *Narrowphase) convexHeightfield(a, b *shapePose, justTest bool) bool {
	hf := b.shape.(*shapes.Heightfield)
	radius := a.shape.BoundingSphereRadius()
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

	found := false
	pillar := shapePose{shape: n.pillar, quat: b.quat, body: b.body, recorded: hf}
	for i := iMinX; i < iMaxX; i++ {
		for j := iMinY; j < iMaxY; j++ {
			for _, upper := range [2]bool{false, true} {
				offset := hf.TrianglePillar(i, j, upper, n.pillar)
				pillar.pos = frame.PointToWorld(offset)
				if a.pos.Sub(pillar.pos).Len() >= n.pillar.BoundingSphereRadius()+radius {
					continue
				}
				if n.convexConvex(a, &pillar, justTest) {
					if justTest {
						return true
					}
					found = true
				}
			}
		}
	}
	return found
}
