package impulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlapKey_RoundTripsOrdered(t *testing.T) {
	i, j := unpackOverlapKey(overlapKey(9, 2))
	assert.Equal(t, 2, i)
	assert.Equal(t, 9, j)
	assert.Equal(t, overlapKey(2, 9), overlapKey(9, 2))
}

func TestOverlapKeeper_Diff(t *testing.T) {
	var k OverlapKeeper

	k.Set(1, 2)
	k.Set(4, 3)
	k.Set(2, 1)
	additions, removals := k.GetDiff(nil, nil)
	assert.Equal(t, []int{1, 2, 3, 4}, additions)
	assert.Empty(t, removals)

	k.Tick()
	k.Set(2, 1)
	k.Set(5, 6)
	additions, removals = k.GetDiff(additions[:0], removals[:0])
	assert.Equal(t, []int{5, 6}, additions)
	assert.Equal(t, []int{3, 4}, removals)

	k.Tick()
	additions, removals = k.GetDiff(additions[:0], removals[:0])
	assert.Empty(t, additions)
	assert.Equal(t, []int{1, 2, 5, 6}, removals)
}
