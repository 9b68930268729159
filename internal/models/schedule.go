package models

import (
	"encoding/json"
	"time"
)

// DaySchedule is the solved output for one day. It is produced by a solver
// and then only read.
type DaySchedule struct {
	Date            time.Time                   `json:"date"`
	Assignments     map[string]*ShiftAssignment `json:"assignments"`
	Unscheduled     map[string]string           `json:"unscheduled,omitempty"` // associate id -> reason
	SlotMinutes     int                         `json:"slot_minutes"`
	DayStartMinutes int                         `json:"day_start_minutes"`
	DayEndMinutes   int                         `json:"day_end_minutes"`
}

// NewDaySchedule builds an empty schedule matching the request's window.
func NewDaySchedule(r *ScheduleRequest) *DaySchedule {
	return &DaySchedule{
		Date:            r.Date,
		Assignments:     make(map[string]*ShiftAssignment),
		Unscheduled:     make(map[string]string),
		SlotMinutes:     r.SlotMinutes,
		DayStartMinutes: r.DayStartMinutes,
		DayEndMinutes:   r.DayEndMinutes,
	}
}

func (s *DaySchedule) TotalSlots() int {
	return (s.DayEndMinutes - s.DayStartMinutes) / s.SlotMinutes
}

// CoverageAt counts associates on floor at a slot.
func (s *DaySchedule) CoverageAt(slot int) int {
	count := 0
	for _, a := range s.Assignments {
		if a.OnFloor(slot) {
			count++
		}
	}
	return count
}

// RoleCoverageAt counts associates holding a role at a slot.
func (s *DaySchedule) RoleCoverageAt(slot int, role JobRole) int {
	count := 0
	for _, a := range s.Assignments {
		if a.OnFloor(slot) && a.RoleAt(slot) == role {
			count++
		}
	}
	return count
}

// CoverageTimeline returns on-floor coverage for every slot.
func (s *DaySchedule) CoverageTimeline() []int {
	timeline := make([]int, s.TotalSlots())
	for slot := range timeline {
		timeline[slot] = s.CoverageAt(slot)
	}
	return timeline
}

// MarkUnscheduled records that an associate could not be given a shift.
func (s *DaySchedule) MarkUnscheduled(id, reason string) {
	if s.Unscheduled == nil {
		s.Unscheduled = make(map[string]string)
	}
	s.Unscheduled[id] = reason
}

// Encode serializes the schedule in its canonical exchange form: slot
// indices, independent of the operating window's wall-clock anchor.
func (s *DaySchedule) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// DecodeDaySchedule parses the canonical exchange form.
func DecodeDaySchedule(data []byte) (*DaySchedule, error) {
	var s DaySchedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Assignments == nil {
		s.Assignments = make(map[string]*ShiftAssignment)
	}
	return &s, nil
}
