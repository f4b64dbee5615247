package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialUnsetCoefficients(t *testing.T) {
	m := NewMaterial("ice")
	assert.Equal(t, "ice", m.Name)
	assert.Equal(t, -1.0, m.Friction)
	assert.Equal(t, -1.0, m.Restitution)

	other := NewMaterial("rock")
	assert.NotEqual(t, m.ID, other.ID)
}

func TestTableLookupIsOrderIndependent(t *testing.T) {
	ice := NewMaterial("ice")
	rock := NewMaterial("rock")
	wood := NewMaterial("wood")

	opts := DefaultContactMaterialOptions()
	opts.Friction = 0.05
	cm := NewContactMaterial(ice, rock, opts)

	table := NewTable()
	table.Set(cm)

	require.Same(t, cm, table.Get(ice, rock))
	require.Same(t, cm, table.Get(rock, ice))
	assert.Nil(t, table.Get(ice, wood))
	assert.Nil(t, table.Get(nil, rock))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 0.05, table.Get(rock, ice).Friction)
	assert.Equal(t, 1e7, cm.ContactEquationStiffness)
}
