package models

import (
	"fmt"
	"time"
)

// Defaults for the operating window: 05:00-22:00 at 15-minute resolution.
const (
	DefaultDayStartMinutes = 300
	DefaultDayEndMinutes   = 1320
	DefaultSlotMinutes     = 15

	// PickingOverflowCap is effectively unlimited; picking absorbs everyone
	// the capped roles cannot take.
	PickingOverflowCap = 999
)

// DefaultJobCaps returns the per-role simultaneous-assignment caps.
func DefaultJobCaps() map[JobRole]int {
	return map[JobRole]int{
		RolePicking:     PickingOverflowCap,
		RoleGMDSM:       2,
		RoleExceptionSM: 2,
		RoleStaging:     2,
		RoleBackroom:    8,
		RoleSR:          2,
	}
}

// SlotRangeCaps overrides the global job caps for part of the day, e.g. a
// lighter specialized staffing at open.
type SlotRangeCaps struct {
	StartSlot int             `json:"start_slot"`
	EndSlot   int             `json:"end_slot"`
	Caps      map[JobRole]int `json:"caps"`
}

func (c SlotRangeCaps) ContainsSlot(slot int) bool {
	return c.StartSlot <= slot && slot < c.EndSlot
}

// CapFor returns the override for a role, falling back to the overflow cap
// when the range does not mention the role.
func (c SlotRangeCaps) CapFor(role JobRole) int {
	if cap, ok := c.Caps[role]; ok {
		return cap
	}
	return PickingOverflowCap
}

// ShiftStartConfig targets a number of shift starts at one slot, with an
// optional hard maximum. MaxCount < 0 means unlimited.
type ShiftStartConfig struct {
	StartSlot   int    `json:"start_slot"`
	Label       string `json:"label"`
	TargetCount int    `json:"target_count"`
	MaxCount    int    `json:"max_count"`
}

// StandardStartDistribution is the observed distribution of shift starts for
// a typical 47-head day: heavy at open, tapering through the afternoon.
func StandardStartDistribution() []ShiftStartConfig {
	return []ShiftStartConfig{
		{StartSlot: 0, Label: "05:00", TargetCount: 12, MaxCount: 12},
		{StartSlot: 4, Label: "06:00", TargetCount: 6, MaxCount: 6},
		{StartSlot: 8, Label: "07:00", TargetCount: 5, MaxCount: 5},
		{StartSlot: 12, Label: "08:00", TargetCount: 5, MaxCount: 5},
		{StartSlot: 20, Label: "10:00", TargetCount: 5, MaxCount: 5},
		{StartSlot: 28, Label: "12:00", TargetCount: 5, MaxCount: 5},
		{StartSlot: 36, Label: "14:00", TargetCount: 5, MaxCount: 5},
		{StartSlot: 44, Label: "16:00", TargetCount: 4, MaxCount: 4},
	}
}

// ScaleStartDistribution scales the target counts to a new headcount,
// keeping the proportions and making sure every start keeps at least one.
func ScaleStartDistribution(base []ShiftStartConfig, total int) []ShiftStartConfig {
	baseTotal := 0
	for _, cfg := range base {
		baseTotal += cfg.TargetCount
	}
	if baseTotal == 0 || total <= 0 {
		return base
	}

	scaled := make([]ShiftStartConfig, len(base))
	assigned := 0
	for i, cfg := range base {
		count := cfg.TargetCount * total / baseTotal
		if count < 1 {
			count = 1
		}
		scaled[i] = cfg
		scaled[i].TargetCount = count
		scaled[i].MaxCount = count
		assigned += count
	}
	// Distribute the rounding remainder over the busiest starts first.
	for i := 0; assigned < total; i = (i + 1) % len(scaled) {
		scaled[i].TargetCount++
		scaled[i].MaxCount++
		assigned++
	}
	for i := 0; assigned > total && i < len(scaled); {
		if scaled[i].TargetCount > 1 {
			scaled[i].TargetCount--
			scaled[i].MaxCount--
			assigned--
		} else {
			i++
		}
	}
	return scaled
}

// ScheduleRequest is the input for a single-day solve.
type ScheduleRequest struct {
	Date            time.Time          `json:"date"`
	Associates      []*Associate       `json:"associates"`
	DayStartMinutes int                `json:"day_start_minutes"`
	DayEndMinutes   int                `json:"day_end_minutes"`
	SlotMinutes     int                `json:"slot_minutes"`
	JobCaps         map[JobRole]int    `json:"job_caps"`
	SlotCaps        []SlotRangeCaps    `json:"slot_caps,omitempty"`
	ShiftStarts     []ShiftStartConfig `json:"shift_starts,omitempty"`
	BusyDay         bool               `json:"busy_day"`
	Seed            int64              `json:"seed"`
}

// NewScheduleRequest builds a request with the default operating window and
// job caps.
func NewScheduleRequest(date time.Time, associates []*Associate) *ScheduleRequest {
	return &ScheduleRequest{
		Date:            date,
		Associates:      associates,
		DayStartMinutes: DefaultDayStartMinutes,
		DayEndMinutes:   DefaultDayEndMinutes,
		SlotMinutes:     DefaultSlotMinutes,
		JobCaps:         DefaultJobCaps(),
	}
}

// TotalSlots is the number of slots in the operating window.
func (r *ScheduleRequest) TotalSlots() int {
	return (r.DayEndMinutes - r.DayStartMinutes) / r.SlotMinutes
}

// CapAt returns the cap for a role at a slot, honoring slot-range overrides.
func (r *ScheduleRequest) CapAt(slot int, role JobRole) int {
	for _, rc := range r.SlotCaps {
		if rc.ContainsSlot(slot) {
			return rc.CapFor(role)
		}
	}
	if cap, ok := r.JobCaps[role]; ok {
		return cap
	}
	return PickingOverflowCap
}

// SlotClock renders a slot index as a wall-clock time.
func (r *ScheduleRequest) SlotClock(slot int) string {
	minutes := r.DayStartMinutes + slot*r.SlotMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Validate reports fatal configuration errors.
func (r *ScheduleRequest) Validate() error {
	if r.SlotMinutes <= 0 {
		return fmt.Errorf("%w: slot_minutes must be positive, got %d", ErrConfiguration, r.SlotMinutes)
	}
	if r.DayEndMinutes <= r.DayStartMinutes {
		return fmt.Errorf("%w: day_end %d must be after day_start %d", ErrConfiguration, r.DayEndMinutes, r.DayStartMinutes)
	}
	if len(r.JobCaps) == 0 {
		return fmt.Errorf("%w: job caps must not be empty", ErrConfiguration)
	}
	return nil
}
