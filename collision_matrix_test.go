package impulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexedBodies(n int) []*Body {
	bodies := make([]*Body, n)
	for i := range bodies {
		bodies[i] = &Body{index: i}
	}
	return bodies
}

func TestCollisionMatrix_Symmetric(t *testing.T) {
	var m CollisionMatrix
	m.SetNumObjects(4)
	b := indexedBodies(4)

	m.Set(b[0], b[3], true)
	assert.True(t, m.Get(b[0], b[3]))
	assert.True(t, m.Get(b[3], b[0]))
	assert.False(t, m.Get(b[1], b[2]))
	assert.False(t, m.Get(b[0], b[0]))

	m.Set(b[3], b[0], false)
	assert.False(t, m.Get(b[0], b[3]))
}

func TestCollisionMatrix_SlotsAreDistinct(t *testing.T) {
	const n = 6
	var m CollisionMatrix
	m.SetNumObjects(n)
	b := indexedBodies(n)

	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			slot := pairSlot(i, j)
			assert.False(t, seen[slot], "slot %d reused by (%d,%d)", slot, i, j)
			seen[slot] = true
		}
	}
	assert.Len(t, seen, n*(n-1)/2)

	m.Set(b[5], b[4], true)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			assert.Equal(t, i == 5 && j == 4, m.Get(b[i], b[j]))
		}
	}
}

func TestCollisionMatrix_ResetAndResize(t *testing.T) {
	var m CollisionMatrix
	m.SetNumObjects(3)
	b := indexedBodies(5)

	m.Set(b[1], b[2], true)
	m.Reset()
	assert.False(t, m.Get(b[1], b[2]))

	// Out of range indices are ignored until the matrix grows.
	m.Set(b[4], b[0], true)
	assert.False(t, m.Get(b[4], b[0]))
	m.SetNumObjects(5)
	m.Set(b[4], b[0], true)
	assert.True(t, m.Get(b[4], b[0]))
}

func TestCollisionMatrix_GrowKeepsPairs(t *testing.T) {
	var m CollisionMatrix
	m.SetNumObjects(3)
	b := indexedBodies(4)

	m.Set(b[2], b[1], true)
	m.SetNumObjects(4)
	assert.True(t, m.Get(b[2], b[1]))
	assert.False(t, m.Get(b[3], b[0]))

	// Slots reused after shrinking start out clear.
	m.Set(b[3], b[0], true)
	m.SetNumObjects(3)
	m.SetNumObjects(4)
	assert.False(t, m.Get(b[3], b[0]))
	assert.True(t, m.Get(b[2], b[1]))
}

func TestCollisionMatrix_RemoveObjectShiftsIndices(t *testing.T) {
	var m CollisionMatrix
	m.SetNumObjects(4)
	b := indexedBodies(4)
	m.Set(b[3], b[2], true)
	m.Set(b[1], b[0], true)
	m.Set(b[3], b[1], true)

	m.RemoveObject(1, 4)

	// Old indices 0, 2 and 3 are now 0, 1 and 2.
	nb := indexedBodies(3)
	assert.Len(t, m.matrix, 3)
	assert.True(t, m.Get(nb[2], nb[1]))
	assert.False(t, m.Get(nb[1], nb[0]))
	assert.False(t, m.Get(nb[2], nb[0]))
}
