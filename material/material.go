package material

import (
	"sync/atomic"
)

var materialIDCounter atomic.Int64

// Material tags bodies and shapes. Friction and Restitution are used for a contact when
// both sides set them to a non-negative value; -1 means unset.
type Material struct {
	ID          int
	Name        string
	Friction    float64
	Restitution float64
}

func NewMaterial(name string) *Material {
	return &Material{
		ID:          int(materialIDCounter.Add(1)) - 1,
		Name:        name,
		Friction:    -1,
		Restitution: -1,
	}
}

var contactMaterialIDCounter atomic.Int64

// ContactMaterial defines what happens when two materials meet.
type ContactMaterial struct {
	ID        int
	Materials [2]*Material

	Friction    float64
	Restitution float64

	ContactEquationStiffness   float64
	ContactEquationRelaxation  float64
	FrictionEquationStiffness  float64
	FrictionEquationRelaxation float64
}

type ContactMaterialOptions struct {
	Friction                   float64
	Restitution                float64
	ContactEquationStiffness   float64
	ContactEquationRelaxation  float64
	FrictionEquationStiffness  float64
	FrictionEquationRelaxation float64
}

func DefaultContactMaterialOptions() ContactMaterialOptions {
	return ContactMaterialOptions{
		Friction:                   0.3,
		Restitution:                0.3,
		ContactEquationStiffness:   1e7,
		ContactEquationRelaxation:  3,
		FrictionEquationStiffness:  1e7,
		FrictionEquationRelaxation: 3,
	}
}

func NewContactMaterial(m1, m2 *Material, opts ContactMaterialOptions) *ContactMaterial {
	return &ContactMaterial{
		ID:                         int(contactMaterialIDCounter.Add(1)) - 1,
		Materials:                  [2]*Material{m1, m2},
		Friction:                   opts.Friction,
		Restitution:                opts.Restitution,
		ContactEquationStiffness:   opts.ContactEquationStiffness,
		ContactEquationRelaxation:  opts.ContactEquationRelaxation,
		FrictionEquationStiffness:  opts.FrictionEquationStiffness,
		FrictionEquationRelaxation: opts.FrictionEquationRelaxation,
	}
}

type pairKey struct {
	lo, hi int
}

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Table maps unordered material pairs to the contact material registered for them.
type Table struct {
	entries map[pairKey]*ContactMaterial
}

func NewTable() *Table {
	return &Table{entries: make(map[pairKey]*ContactMaterial)}
}

func (t *Table) Set(cm *ContactMaterial) {
	t.entries[keyOf(cm.Materials[0].ID, cm.Materials[1].ID)] = cm
}

// Get returns nil when either material is nil or no contact material was registered.
func (t *Table) Get(m1, m2 *Material) *ContactMaterial {
	if m1 == nil || m2 == nil {
		return nil
	}
	return t.entries[keyOf(m1.ID, m2.ID)]
}

func (t *Table) Len() int {
	return len(t.entries)
}
