package impulse

import (
	"math"
	"slices"

	"github.com/gekko3d/impulse/geom"
)

// maxCellsPerAxis bounds how many cells one box may cover on an axis. Larger boxes are
// kept out of the grid and tested against everything.
const maxCellsPerAxis = 64

// maxGridCoordinate keeps cell indices well inside the int range. Boxes reaching past
// it, such as the unbounded box of a plane, are treated as too large.
const maxGridCoordinate = 1e15

// SpatialHashGrid buckets integer ids by the cells their boxes cover.
type SpatialHashGrid struct {
	cellSize float64
	// Map from cell hash to the ids touching that cell
	cells map[uint64][]int
}

func NewSpatialHashGrid(cellSize float64) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]int),
	}
}

func (grid *SpatialHashGrid) CellSize() float64 { return grid.cellSize }

// Clear empties the grid, keeping the bucket slices for reuse.
func (grid *SpatialHashGrid) Clear() {
	for k, ids := range grid.cells {
		grid.cells[k] = ids[:0]
	}
}

// cellRange returns the inclusive cell range of box, or false if it is too large or not
// finite.
func (grid *SpatialHashGrid) cellRange(box geom.AABB) (lo, hi [3]int, ok bool) {
	for axis := 0; axis < 3; axis++ {
		minV, maxV := box.LowerBound[axis], box.UpperBound[axis]
		if math.IsNaN(minV) || math.IsNaN(maxV) {
			return lo, hi, false
		}
		// Checked in float space; huge bounds would overflow the int conversion.
		if math.Abs(minV) > maxGridCoordinate || math.Abs(maxV) > maxGridCoordinate ||
			(maxV-minV)/grid.cellSize >= maxCellsPerAxis {
			return lo, hi, false
		}
		lo[axis] = grid.getCellIndex(minV)
		hi[axis] = grid.getCellIndex(maxV)
		if hi[axis]-lo[axis] >= maxCellsPerAxis {
			return lo, hi, false
		}
	}
	return lo, hi, true
}

// Insert adds id to every cell box covers. It reports false, inserting nothing, when
// the box is unbounded or too large for the grid.
func (grid *SpatialHashGrid) Insert(id int, box geom.AABB) bool {
	lo, hi, ok := grid.cellRange(box)
	if !ok {
		return false
	}
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				key := grid.hashKey(x, y, z)
				grid.cells[key] = append(grid.cells[key], id)
			}
		}
	}
	return true
}

// QueryAABB appends the ids sharing a cell with box, each once, in ascending order.
// Results are candidates only; the grid does not keep the boxes themselves.
func (grid *SpatialHashGrid) QueryAABB(box geom.AABB, out []int) []int {
	lo, hi, ok := grid.cellRange(box)
	if !ok {
		// Too large to walk cell by cell; every stored id is a candidate.
		start := len(out)
		for _, ids := range grid.cells {
			out = append(out, ids...)
		}
		return sortUnique(out, start)
	}
	start := len(out)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				out = append(out, grid.cells[grid.hashKey(x, y, z)]...)
			}
		}
	}
	return sortUnique(out, start)
}

func sortUnique(out []int, start int) []int {
	tail := out[start:]
	slices.Sort(tail)
	tail = slices.Compact(tail)
	return out[:start+len(tail)]
}

func (grid *SpatialHashGrid) getCellIndex(pos float64) int {
	return int(math.Floor(pos / grid.cellSize))
}

// Simple hash function for 3D coordinates
func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

// GridBroadphase hashes body AABBs into a uniform grid and only tests bodies sharing a
// cell. Bodies with unbounded or very large boxes, planes for instance, are tested
// against every other body.
type GridBroadphase struct {
	pairTester

	grid      *SpatialHashGrid
	dirty     bool
	unbounded []int
	pairs     []uint64
	ids       []int
}

func NewGridBroadphase(cellSize float64) *GridBroadphase {
	return &GridBroadphase{
		grid:  NewSpatialHashGrid(cellSize),
		dirty: true,
	}
}

func (bp *GridBroadphase) SetDirty() { bp.dirty = true }

func (bp *GridBroadphase) rebuild(world *World) {
	bp.grid.Clear()
	bp.unbounded = bp.unbounded[:0]
	for i, b := range world.Bodies {
		if !bp.grid.Insert(i, b.AABB()) {
			bp.unbounded = append(bp.unbounded, i)
		}
	}
	bp.dirty = false
}

// CollisionPairs emits pairs ordered by body index so that results do not depend on
// map iteration order.
func (bp *GridBroadphase) CollisionPairs(world *World, p1, p2 []*Body) ([]*Body, []*Body) {
	bp.rebuild(world)
	bp.pairs = bp.pairs[:0]

	for _, ids := range bp.grid.cells {
		for a := 0; a < len(ids); a++ {
			for b := 0; b < a; b++ {
				if ids[a] != ids[b] {
					bp.pairs = append(bp.pairs, overlapKey(ids[a], ids[b]))
				}
			}
		}
	}
	n := len(world.Bodies)
	for _, u := range bp.unbounded {
		for other := 0; other < n; other++ {
			if other != u {
				bp.pairs = append(bp.pairs, overlapKey(u, other))
			}
		}
	}

	slices.Sort(bp.pairs)
	bp.pairs = slices.Compact(bp.pairs)

	bodies := world.Bodies
	for _, key := range bp.pairs {
		i, j := unpackOverlapKey(key)
		p1, p2 = bp.testPair(bodies[j], bodies[i], p1, p2)
	}
	return p1, p2
}

func (bp *GridBroadphase) AABBQuery(world *World, box geom.AABB, result []*Body) []*Body {
	if bp.dirty {
		bp.rebuild(world)
	}
	bp.ids = bp.grid.QueryAABB(box, bp.ids[:0])
	bp.ids = append(bp.ids, bp.unbounded...)
	bp.ids = sortUnique(bp.ids, 0)
	for _, i := range bp.ids {
		if i >= len(world.Bodies) {
			continue
		}
		if b := world.Bodies[i]; b.AABB().Overlaps(box) {
			result = append(result, b)
		}
	}
	return result
}
