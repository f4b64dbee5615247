package shapes

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Heightfield is a regular grid of heights. Data[xi][yi] is the local z of the sample at
// local (xi*ElementSize, yi*ElementSize).
type Heightfield struct {
	Base

	Data        [][]float64
	ElementSize float64
	MinValue    float64
	MaxValue    float64
}

func NewHeightfield(data [][]float64, elementSize float64) *Heightfield {
	if len(data) < 2 || len(data[0]) < 2 {
		panic("shapes: heightfield needs at least 2x2 samples")
	}
	h := &Heightfield{
		Base:        newBase(KindHeightfield),
		Data:        data,
		ElementSize: elementSize,
	}
	h.Update()
	return h
}

// Update recomputes the height range and bounding radius after Data changed.
func (h *Heightfield) Update() {
	h.MinValue = math.Inf(1)
	h.MaxValue = math.Inf(-1)
	for _, row := range h.Data {
		for _, v := range row {
			h.MinValue = math.Min(h.MinValue, v)
			h.MaxValue = math.Max(h.MaxValue, v)
		}
	}
	h.UpdateBoundingSphereRadius()
}

func (h *Heightfield) SizeX() int { return len(h.Data) }
func (h *Heightfield) SizeY() int { return len(h.Data[0]) }

func (h *Heightfield) UpdateBoundingSphereRadius() {
	s := h.ElementSize
	v := mgl64.Vec3{
		float64(len(h.Data)) * s,
		float64(len(h.Data[0])) * s,
		math.Max(math.Abs(h.MaxValue), math.Abs(h.MinValue)),
	}
	h.boundingSphereRadius = v.Len()
}

// RectMinMax returns the global minimum and the maximum height over the inclusive
// sample rectangle.
func (h *Heightfield) RectMinMax(iMinX, iMinY, iMaxX, iMaxY int) (lo, hi float64) {
	hi = h.MinValue
	for i := iMinX; i <= iMaxX; i++ {
		for j := iMinY; j <= iMaxY; j++ {
			hi = math.Max(hi, h.Data[i][j])
		}
	}
	return h.MinValue, hi
}

// CellRange returns the clamped cell index range covering a local circle of the given
// radius around (x, y), padded by one cell. ok is false when the circle is off the grid.
func (h *Heightfield) CellRange(x, y, radius float64) (iMinX, iMinY, iMaxX, iMaxY int, ok bool) {
	w := h.ElementSize
	iMinX = int(math.Floor((x-radius)/w)) - 1
	iMaxX = int(math.Ceil((x+radius)/w)) + 1
	iMinY = int(math.Floor((y-radius)/w)) - 1
	iMaxY = int(math.Ceil((y+radius)/w)) + 1

	nx, ny := len(h.Data), len(h.Data[0])
	if iMaxX < 0 || iMaxY < 0 || iMinX > nx || iMinY > ny {
		return 0, 0, 0, 0, false
	}
	iMinX = clampInt(iMinX, 0, nx-1)
	iMaxX = clampInt(iMaxX, 0, nx-1)
	iMinY = clampInt(iMinY, 0, ny-1)
	iMaxY = clampInt(iMaxY, 0, ny-1)
	return iMinX, iMinY, iMaxX, iMaxY, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var pillarFaces = [][]int{
	{0, 1, 2},    // top
	{5, 4, 3},    // bottom
	{0, 2, 5, 3}, // side
	{1, 0, 3, 4}, // side
	{4, 5, 2, 1}, // diagonal side
}

// TrianglePillar writes into out the prism under one of the two triangles of cell
// (xi, yi) and returns its local offset; out's vertices are relative to that offset.
// The lower triangle covers the cell corner (xi, yi), the upper one (xi+1, yi+1).
// Pillars reach down to one unit below the lowest sample.
func (h *Heightfield) TrianglePillar(xi, yi int, upper bool, out *ConvexPolyhedron) mgl64.Vec3 {
	d := h.Data
	s := h.ElementSize
	hc := (math.Min(math.Min(d[xi][yi], d[xi+1][yi]), math.Min(d[xi][yi+1], d[xi+1][yi+1]))-h.MinValue)/2 + h.MinValue
	bottom := h.MinValue - 1 - hc

	if cap(out.Vertices) < 6 {
		out.Vertices = make([]mgl64.Vec3, 6)
	}
	out.Vertices = out.Vertices[:6]
	v := out.Vertices

	var offset mgl64.Vec3
	if !upper {
		offset = mgl64.Vec3{(float64(xi) + 0.25) * s, (float64(yi) + 0.25) * s, hc}
		v[0] = mgl64.Vec3{-0.25 * s, -0.25 * s, d[xi][yi] - hc}
		v[1] = mgl64.Vec3{0.75 * s, -0.25 * s, d[xi+1][yi] - hc}
		v[2] = mgl64.Vec3{-0.25 * s, 0.75 * s, d[xi][yi+1] - hc}
		v[3] = mgl64.Vec3{-0.25 * s, -0.25 * s, bottom}
		v[4] = mgl64.Vec3{0.75 * s, -0.25 * s, bottom}
		v[5] = mgl64.Vec3{-0.25 * s, 0.75 * s, bottom}
	} else {
		offset = mgl64.Vec3{(float64(xi) + 0.75) * s, (float64(yi) + 0.75) * s, hc}
		v[0] = mgl64.Vec3{0.25 * s, 0.25 * s, d[xi+1][yi+1] - hc}
		v[1] = mgl64.Vec3{-0.75 * s, 0.25 * s, d[xi][yi+1] - hc}
		v[2] = mgl64.Vec3{0.25 * s, -0.75 * s, d[xi+1][yi] - hc}
		v[3] = mgl64.Vec3{0.25 * s, 0.25 * s, bottom}
		v[4] = mgl64.Vec3{-0.75 * s, 0.25 * s, bottom}
		v[5] = mgl64.Vec3{0.25 * s, -0.75 * s, bottom}
	}

	// Both triangles are a half turn of each other about z, so one winding fits both.
	out.Faces = pillarFaces
	out.UpdateGeometry()
	return offset
}

// HeightAt interpolates the surface height at local (x, y) on the triangle containing
// it. ok is false outside the grid.
func (h *Heightfield) HeightAt(x, y float64) (float64, bool) {
	s := h.ElementSize
	fx, fy := x/s, y/s
	xi, yi := int(math.Floor(fx)), int(math.Floor(fy))
	if xi < 0 || yi < 0 || xi >= len(h.Data)-1 || yi >= len(h.Data[0])-1 {
		return 0, false
	}
	u, v := fx-float64(xi), fy-float64(yi)
	d := h.Data
	if u+v <= 1 {
		return d[xi][yi] + u*(d[xi+1][yi]-d[xi][yi]) + v*(d[xi][yi+1]-d[xi][yi]), true
	}
	return d[xi+1][yi+1] + (1-u)*(d[xi][yi+1]-d[xi+1][yi+1]) + (1-v)*(d[xi+1][yi]-d[xi+1][yi+1]), true
}

func (h *Heightfield) Volume() float64 { return math.MaxFloat64 }

func (h *Heightfield) CalculateLocalInertia(float64) mgl64.Vec3 {
	return mgl64.Vec3{}
}

func (h *Heightfield) LocalAABB() geom.AABB {
	s := h.ElementSize
	return geom.NewAABB(
		mgl64.Vec3{0, 0, h.MinValue},
		mgl64.Vec3{float64(len(h.Data)-1) * s, float64(len(h.Data[0])-1) * s, h.MaxValue},
	)
}

func (h *Heightfield) CalculateWorldAABB(pos mgl64.Vec3, q mgl64.Quat) geom.AABB {
	return h.LocalAABB().ToWorldFrame(geom.NewTransform(pos, q))
}
