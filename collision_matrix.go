package impulse

// CollisionMatrix records which body pairs touched during a step. Pairs are addressed
// by body index, so the matrix must be resized whenever bodies are added or removed.
type CollisionMatrix struct {
	matrix []bool
}

func pairSlot(i, j int) int {
	if j > i {
		i, j = j, i
	}
	return i*(i-1)/2 + j
}

func (m *CollisionMatrix) Get(bi, bj *Body) bool {
	i, j := bi.index, bj.index
	if i == j {
		return false
	}
	slot := pairSlot(i, j)
	if slot >= len(m.matrix) {
		return false
	}
	return m.matrix[slot]
}

func (m *CollisionMatrix) Set(bi, bj *Body, value bool) {
	i, j := bi.index, bj.index
	if i == j {
		return
	}
	slot := pairSlot(i, j)
	if slot >= len(m.matrix) {
		return
	}
	m.matrix[slot] = value
}

func (m *CollisionMatrix) Reset() {
	clear(m.matrix)
}

// SetNumObjects resizes the matrix for n bodies. Appending a body does not move any
// existing slot, so pairs among the first n bodies keep their state.
func (m *CollisionMatrix) SetNumObjects(n int) {
	size := max(n*(n-1)/2, 0)
	old := len(m.matrix)
	if cap(m.matrix) >= size {
		m.matrix = m.matrix[:size]
	} else {
		grown := make([]bool, size)
		copy(grown, m.matrix)
		m.matrix = grown
	}
	if size > old {
		clear(m.matrix[old:])
	}
}

// RemoveObject drops body index k from a matrix of n bodies. Indices above k move down
// by one and keep their pair state.
func (m *CollisionMatrix) RemoveObject(k, n int) {
	if k < 0 || k >= n || len(m.matrix) < n*(n-1)/2 {
		m.SetNumObjects(n - 1)
		return
	}
	// Retained pairs land on slots at or below their old ones, in the same order, so
	// the compaction can run in place.
	next := 0
	for i := 1; i < n; i++ {
		if i == k {
			continue
		}
		for j := 0; j < i; j++ {
			if j == k {
				continue
			}
			m.matrix[next] = m.matrix[pairSlot(i, j)]
			next++
		}
	}
	m.matrix = m.matrix[:next]
}
