package impulse

import "slices"

// OverlapKeeper tracks id pairs across two consecutive steps so that begin and end
// transitions can be reported.
type OverlapKeeper struct {
	current  []uint64
	previous []uint64
}

func overlapKey(i, j int) uint64 {
	if j < i {
		i, j = j, i
	}
	return uint64(uint32(i))<<32 | uint64(uint32(j))
}

func unpackOverlapKey(key uint64) (int, int) {
	return int(uint32(key >> 32)), int(uint32(key))
}

// Set records that i and j overlap in the current step.
func (k *OverlapKeeper) Set(i, j int) {
	key := overlapKey(i, j)
	idx, found := slices.BinarySearch(k.current, key)
	if found {
		return
	}
	k.current = slices.Insert(k.current, idx, key)
}

// Tick starts a new step: the current pairs become the previous ones.
func (k *OverlapKeeper) Tick() {
	k.current, k.previous = k.previous[:0], k.current
}

// GetDiff appends the pairs that started overlapping to additions and the pairs that
// stopped to removals, each as flat (idA, idB) sequences with idA < idB.
func (k *OverlapKeeper) GetDiff(additions, removals []int) ([]int, []int) {
	additions = appendMissing(additions, k.current, k.previous)
	removals = appendMissing(removals, k.previous, k.current)
	return additions, removals
}

// appendMissing appends the keys of a that are not in b; both are sorted.
func appendMissing(out []int, a, b []uint64) []int {
	j := 0
	for _, key := range a {
		for j < len(b) && b[j] < key {
			j++
		}
		if j < len(b) && b[j] == key {
			continue
		}
		i, jj := unpackOverlapKey(key)
		out = append(out, i, jj)
	}
	return out
}
