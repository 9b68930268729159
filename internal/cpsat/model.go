// Package cpsat is a small deterministic 0/1 constraint engine for coverage
// selection problems: at-most-one selection groups whose options cover day
// slots, concave per-slot value curves, per-slot capacity families and
// optional coverage floors. The scheduling adapter formulates its model here
// and interprets the solution back into the shared data model.
package cpsat

import "fmt"

// Option is one selectable alternative inside a group. Selecting it adds one
// unit of coverage at each listed slot, contributes Utility to the objective
// and consumes the listed capacities.
type Option struct {
	Name    string
	Slots   []int
	Utility int64
	Uses    []CapUse
}

// CapUse consumes one unit of a capacity family at each listed slot.
type CapUse struct {
	Family int
	Slots  []int
}

// Group is an at-most-one selection: zero or one of its options is chosen.
type Group struct {
	Name    string
	Options []Option
}

// Capacity is a per-slot limited resource (e.g. a role cap).
type Capacity struct {
	Name   string
	Limits []int
}

// Model is the full problem instance. SlotValues[s][c] is the cumulative
// objective value of coverage c at slot s; each row must be concave in c
// (non-increasing marginal gains), which the branch-and-bound bound relies
// on. Floors, when set, are hard per-slot minimum coverage.
type Model struct {
	NumSlots   int
	Groups     []Group
	SlotValues [][]int64
	Capacities []Capacity
	Floors     []int
}

// NewModel allocates a model with zero-valued slot curves sized for up to
// maxCoverage simultaneous selections per slot.
func NewModel(numSlots, maxCoverage int) *Model {
	values := make([][]int64, numSlots)
	for s := range values {
		values[s] = make([]int64, maxCoverage+1)
	}
	return &Model{NumSlots: numSlots, SlotValues: values}
}

// AddGroup appends a selection group and returns its index.
func (m *Model) AddGroup(g Group) int {
	m.Groups = append(m.Groups, g)
	return len(m.Groups) - 1
}

// AddCapacity appends a capacity family and returns its index.
func (m *Model) AddCapacity(name string, limits []int) int {
	m.Capacities = append(m.Capacities, Capacity{Name: name, Limits: limits})
	return len(m.Capacities) - 1
}

// SetSlotValue sets the cumulative value of coverage c at slot s.
func (m *Model) SetSlotValue(slot, coverage int, value int64) {
	m.SlotValues[slot][coverage] = value
}

// Check verifies structural sanity before solving.
func (m *Model) Check() error {
	for gi, g := range m.Groups {
		for oi, o := range g.Options {
			for _, s := range o.Slots {
				if s < 0 || s >= m.NumSlots {
					return fmt.Errorf("group %d option %d: slot %d out of range", gi, oi, s)
				}
			}
			for _, u := range o.Uses {
				if u.Family < 0 || u.Family >= len(m.Capacities) {
					return fmt.Errorf("group %d option %d: unknown capacity family %d", gi, oi, u.Family)
				}
			}
		}
	}
	if m.Floors != nil && len(m.Floors) != m.NumSlots {
		return fmt.Errorf("floors length %d does not match %d slots", len(m.Floors), m.NumSlots)
	}
	return nil
}

// marginal returns the value delta of raising coverage at slot from c to c+1.
// Coverage beyond the table's last column is worth the final marginal step,
// which for a concave curve never overstates the gain.
func (m *Model) marginal(slot, c int) int64 {
	row := m.SlotValues[slot]
	last := len(row) - 1
	if c >= last {
		if last == 0 {
			return 0
		}
		return row[last] - row[last-1]
	}
	return row[c+1] - row[c]
}
