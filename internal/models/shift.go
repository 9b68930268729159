package models

import "time"

// Block is a contiguous half-open run of slots within a day.
type Block struct {
	StartSlot int `json:"start_slot"`
	EndSlot   int `json:"end_slot"`
}

func (b Block) Slots() int {
	return b.EndSlot - b.StartSlot
}

func (b Block) Contains(slot int) bool {
	return b.StartSlot <= slot && slot < b.EndSlot
}

func (b Block) Overlaps(other Block) bool {
	return b.StartSlot < other.EndSlot && other.StartSlot < b.EndSlot
}

// JobAssignment binds a role to one work period of a shift.
type JobAssignment struct {
	Role  JobRole `json:"role"`
	Block Block   `json:"block"`
}

// ShiftAssignment is a complete shift for one associate on one day.
type ShiftAssignment struct {
	AssociateID string          `json:"associate_id"`
	Date        time.Time       `json:"date"`
	StartSlot   int             `json:"start_slot"`
	EndSlot     int             `json:"end_slot"`
	Lunch       *Block          `json:"lunch,omitempty"`
	Breaks      []Block         `json:"breaks,omitempty"`
	Jobs        []JobAssignment `json:"jobs,omitempty"`
	SlotMinutes int             `json:"slot_minutes"`
}

// TotalShiftMinutes is the full span including lunch.
func (s *ShiftAssignment) TotalShiftMinutes() int {
	return (s.EndSlot - s.StartSlot) * s.SlotMinutes
}

func (s *ShiftAssignment) LunchMinutes() int {
	if s.Lunch == nil {
		return 0
	}
	return s.Lunch.Slots() * s.SlotMinutes
}

func (s *ShiftAssignment) BreakMinutes() int {
	total := 0
	for _, b := range s.Breaks {
		total += b.Slots()
	}
	return total * s.SlotMinutes
}

// WorkMinutes is time on duty: span minus lunch. Breaks count as work.
func (s *ShiftAssignment) WorkMinutes() int {
	return s.TotalShiftMinutes() - s.LunchMinutes()
}

// OnFloorMinutes is time actually on the floor: work minus breaks.
func (s *ShiftAssignment) OnFloorMinutes() int {
	return s.WorkMinutes() - s.BreakMinutes()
}

func (s *ShiftAssignment) ShiftBlock() Block {
	return Block{StartSlot: s.StartSlot, EndSlot: s.EndSlot}
}

// OnFloor reports whether the associate is working the floor at a slot: in
// shift and not on lunch or a break.
func (s *ShiftAssignment) OnFloor(slot int) bool {
	if !s.ShiftBlock().Contains(slot) {
		return false
	}
	if s.Lunch != nil && s.Lunch.Contains(slot) {
		return false
	}
	for _, b := range s.Breaks {
		if b.Contains(slot) {
			return false
		}
	}
	return true
}

// RoleAt returns the role held at a slot, or "" if none is assigned there.
func (s *ShiftAssignment) RoleAt(slot int) JobRole {
	for _, j := range s.Jobs {
		if j.Block.Contains(slot) {
			return j.Role
		}
	}
	return ""
}

// WorkPeriods returns the contiguous on-floor periods of the shift, in order,
// splitting around lunch and breaks.
func (s *ShiftAssignment) WorkPeriods() []Block {
	var off []Block
	if s.Lunch != nil {
		off = append(off, *s.Lunch)
	}
	off = append(off, s.Breaks...)
	for i := 1; i < len(off); i++ {
		for j := i; j > 0 && off[j].StartSlot < off[j-1].StartSlot; j-- {
			off[j], off[j-1] = off[j-1], off[j]
		}
	}

	var periods []Block
	cur := s.StartSlot
	for _, b := range off {
		if cur < b.StartSlot {
			periods = append(periods, Block{StartSlot: cur, EndSlot: b.StartSlot})
		}
		if b.EndSlot > cur {
			cur = b.EndSlot
		}
	}
	if cur < s.EndSlot {
		periods = append(periods, Block{StartSlot: cur, EndSlot: s.EndSlot})
	}
	return periods
}
