package impulse

import (
	"math"
	"strings"
	"testing"

	"github.com/gekko3d/impulse/shapes"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upright turns a cylinder's local y axis onto world z.
var upright = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})

func TestNarrowphase_Handlers(t *testing.T) {
	invSqrt2 := 1 / math.Sqrt2
	invSqrt3 := 1 / math.Sqrt(3)

	tests := []struct {
		name string
		// build returns the pair in the order it is passed to GetContacts, and the body
		// expected as BI.
		build      func() (first, second, wantBI *Body)
		wantCount  int // -1 means at least one
		wantNormal mgl64.Vec3
	}{
		{
			name: "sphere on convex face",
			build: func() (*Body, *Body, *Body) {
				hull := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).Convex(), mgl64.Vec3{})
				sphere := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0, 0, 0.9})
				return hull, sphere, sphere
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{0, 0, -1},
		},
		{
			name: "sphere on box corner",
			build: func() (*Body, *Body, *Body) {
				box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
				sphere := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0.7, 0.7, 0.7})
				return box, sphere, sphere
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{-invSqrt3, -invSqrt3, -invSqrt3},
		},
		{
			name: "sphere on box edge",
			build: func() (*Body, *Body, *Body) {
				box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
				sphere := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0.8, 0.8, 0})
				return box, sphere, sphere
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{-invSqrt2, -invSqrt2, 0},
		},
		{
			name: "sphere on cylinder cap",
			build: func() (*Body, *Body, *Body) {
				cyl := bodyWith(1, shapes.NewCylinder(0.5, 0.5, 1, 8), mgl64.Vec3{})
				sphere := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0, 0.9, 0})
				return cyl, sphere, sphere
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{0, -1, 0},
		},
		{
			name: "particle inside sphere",
			build: func() (*Body, *Body, *Body) {
				sphere := bodyWith(1, shapes.NewSphere(1), mgl64.Vec3{})
				particle := bodyWith(1, shapes.NewParticle(), mgl64.Vec3{0.5, 0, 0})
				return sphere, particle, particle
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{-1, 0, 0},
		},
		{
			name: "particle inside box",
			build: func() (*Body, *Body, *Body) {
				box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
				particle := bodyWith(1, shapes.NewParticle(), mgl64.Vec3{0, 0, 0.4})
				return box, particle, particle
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{0, 0, -1},
		},
		{
			name: "particle inside cylinder",
			build: func() (*Body, *Body, *Body) {
				cyl := bodyWith(1, shapes.NewCylinder(0.5, 0.5, 1, 8), mgl64.Vec3{})
				particle := bodyWith(1, shapes.NewParticle(), mgl64.Vec3{0, 0.4, 0})
				return cyl, particle, particle
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{0, -1, 0},
		},
		{
			name: "trimesh vertex below plane",
			build: func() (*Body, *Body, *Body) {
				mesh := shapes.NewTrimesh(
					[]mgl64.Vec3{{0, 0, -0.1}, {1, 0, 0.2}, {0, 1, 0.2}},
					[]int{0, 1, 2},
				)
				ground := bodyWith(0, shapes.NewPlane(), mgl64.Vec3{})
				return bodyWith(0, mesh, mgl64.Vec3{}), ground, ground
			},
			wantCount:  1,
			wantNormal: mgl64.Vec3{0, 0, 1},
		},
		{
			name: "upright cylinder on plane",
			build: func() (*Body, *Body, *Body) {
				ground := bodyWith(0, shapes.NewPlane(), mgl64.Vec3{})
				cyl := bodyWith(1, shapes.NewCylinder(0.5, 0.5, 1, 8), mgl64.Vec3{0, 0, 0.45})
				cyl.Quaternion = upright
				return cyl, ground, ground
			},
			wantCount:  8,
			wantNormal: mgl64.Vec3{0, 0, 1},
		},
		{
			name: "upright cylinder on box",
			build: func() (*Body, *Body, *Body) {
				box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
				cyl := bodyWith(1, shapes.NewCylinder(0.4, 0.4, 1, 8), mgl64.Vec3{0, 0, 0.95})
				cyl.Quaternion = upright
				return cyl, box, box
			},
			wantCount:  -1,
			wantNormal: mgl64.Vec3{0, 0, 1},
		},
		{
			name: "box on heightfield",
			build: func() (*Body, *Body, *Body) {
				hf := shapes.NewHeightfield([][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, 1)
				box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.2, 0.2, 0.2}), mgl64.Vec3{0.25, 0.25, 0.15})
				return bodyWith(0, hf, mgl64.Vec3{}), box, box
			},
			wantCount:  4,
			wantNormal: mgl64.Vec3{0, 0, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(mgl64.Vec3{})
			first, second, wantBI := tt.build()
			w.AddBody(first)
			w.AddBody(second)

			contacts, friction := contactsOf(w, first, second)
			if tt.wantCount < 0 {
				require.NotEmpty(t, contacts)
			} else {
				require.Len(t, contacts, tt.wantCount)
			}
			assert.Len(t, friction, 2*len(contacts))
			for _, c := range contacts {
				assert.Same(t, wantBI, c.BI)
				assertVecInDelta(t, tt.wantNormal, c.NI, 1e-9)
			}
		})
	}
}

func TestNarrowphase_SphereBoxContactPoints(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})

	corner := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0.7, 0.7, 0.7})
	contacts, _ := contactsOf(w, box, corner)
	require.Len(t, contacts, 1)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0.5, 0.5}, contacts[0].RJ, 1e-12)

	edge := bodyWith(1, shapes.NewSphere(0.5), mgl64.Vec3{0.8, 0.8, 0})
	contacts, _ = contactsOf(w, box, edge)
	require.Len(t, contacts, 1)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0.5, 0}, contacts[0].RJ, 1e-12)
}

func TestNarrowphase_ParticleContactPoints(t *testing.T) {
	w := newTestWorld(mgl64.Vec3{})
	box := bodyWith(1, shapes.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), mgl64.Vec3{})
	particle := bodyWith(1, shapes.NewParticle(), mgl64.Vec3{0, 0, 0.4})

	contacts, _ := contactsOf(w, box, particle)
	require.Len(t, contacts, 1)
	assertVecInDelta(t, mgl64.Vec3{}, contacts[0].RI, 1e-12)
	// Pushed out through the top face.
	assertVecInDelta(t, mgl64.Vec3{0, 0, 0.5}, contacts[0].RJ, 1e-12)
}

func TestNarrowphase_UnregisteredPairsAreSilent(t *testing.T) {
	newMesh := func() shapes.Shape {
		return shapes.NewTrimesh([]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1, 2})
	}
	newField := func() shapes.Shape {
		return shapes.NewHeightfield([][]float64{{0, 0}, {0, 0}}, 1)
	}

	tests := []struct {
		name string
		a, b shapes.Shape
	}{
		{"trimesh trimesh", newMesh(), newMesh()},
		{"heightfield heightfield", newField(), newField()},
		{"heightfield trimesh", newField(), newMesh()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingLogger{}
			w := newTestWorld(mgl64.Vec3{})
			w.SetLogger(rec)
			a := bodyWith(1, tt.a, mgl64.Vec3{})
			b := bodyWith(1, tt.b, mgl64.Vec3{0, 0, 0.1})

			contacts, friction := contactsOf(w, a, b)
			assert.Empty(t, contacts)
			assert.Empty(t, friction)
			assert.Empty(t, rec.warnings)
		})
	}
}

func TestNarrowphase_FacelessHullWarns(t *testing.T) {
	rec := &recordingLogger{}
	w := newTestWorld(mgl64.Vec3{})
	w.SetLogger(rec)

	// A hull without faces contains every point but has no face to push out through.
	hull := shapes.NewConvexPolyhedron([]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}}, nil)
	a := bodyWith(1, hull, mgl64.Vec3{})
	particle := bodyWith(1, shapes.NewParticle(), mgl64.Vec3{})

	contacts, _ := contactsOf(w, a, particle)
	assert.Empty(t, contacts)
	require.Len(t, rec.warnings, 1)
	assert.True(t, strings.Contains(rec.warnings[0], "no penetrating face"), rec.warnings[0])
	assert.Equal(t, 1, w.Narrowphase.warner.Warnings())
}
