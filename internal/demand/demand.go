// Package demand models per-slot staffing targets and how well a schedule
// meets them.
package demand

import (
	"encoding/json"
	"time"

	"workforce-scheduler/internal/models"
)

// Priority ranks demand periods for the optimizer.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityNormal   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// Point is the staffing demand at one slot. Min is a hard floor when
// enforced, Target the optimization goal, Max the point of diminishing
// returns.
type Point struct {
	Slot     int      `json:"slot"`
	MinStaff int      `json:"min_staff"`
	Target   int      `json:"target"`
	MaxStaff int      `json:"max_staff"`
	Priority Priority `json:"priority"`
}

// Normalize repairs inverted bounds in place.
func (p *Point) Normalize() {
	if p.MinStaff < 0 {
		p.MinStaff = 0
	}
	if p.Target < p.MinStaff {
		p.Target = p.MinStaff
	}
	if p.MaxStaff < p.Target {
		p.MaxStaff = p.Target
	}
	if p.Priority == 0 {
		p.Priority = PriorityNormal
	}
}

// PriorityPeriod marks a high-priority window of slots.
type PriorityPeriod struct {
	StartSlot int      `json:"start_slot"`
	EndSlot   int      `json:"end_slot"`
	Priority  Priority `json:"priority"`
}

// Curve is the staffing demand for one day, per slot, optionally per role.
type Curve struct {
	Date            time.Time                        `json:"date"`
	Points          map[int]Point                    `json:"points"`
	RolePoints      map[int]map[models.JobRole]Point `json:"role_points,omitempty"`
	PriorityPeriods []PriorityPeriod                 `json:"priority_periods,omitempty"`
	SlotMinutes     int                              `json:"slot_minutes"`
	DayStartMinutes int                              `json:"day_start_minutes"`
	DayEndMinutes   int                              `json:"day_end_minutes"`
}

// NewCurve builds an empty curve over the default operating window.
func NewCurve(date time.Time) *Curve {
	return &Curve{
		Date:            date,
		Points:          make(map[int]Point),
		SlotMinutes:     models.DefaultSlotMinutes,
		DayStartMinutes: models.DefaultDayStartMinutes,
		DayEndMinutes:   models.DefaultDayEndMinutes,
	}
}

func (c *Curve) TotalSlots() int {
	return (c.DayEndMinutes - c.DayStartMinutes) / c.SlotMinutes
}

// At returns the demand point for a slot, defaulting to a target of one.
func (c *Curve) At(slot int) Point {
	if p, ok := c.Points[slot]; ok {
		return p
	}
	return Point{Slot: slot, Target: 1, MaxStaff: 99, Priority: PriorityNormal}
}

func (c *Curve) TargetAt(slot int) int { return c.At(slot).Target }
func (c *Curve) MinAt(slot int) int    { return c.At(slot).MinStaff }
func (c *Curve) MaxAt(slot int) int    { return c.At(slot).MaxStaff }

// PriorityAt resolves priority periods first, then the slot's own point.
func (c *Curve) PriorityAt(slot int) Priority {
	for _, pp := range c.PriorityPeriods {
		if pp.StartSlot <= slot && slot < pp.EndSlot {
			return pp.Priority
		}
	}
	if p, ok := c.Points[slot]; ok {
		return p.Priority
	}
	return PriorityNormal
}

// Set records demand for a single slot.
func (c *Curve) Set(slot, minStaff, target, maxStaff int, priority Priority) {
	p := Point{Slot: slot, MinStaff: minStaff, Target: target, MaxStaff: maxStaff, Priority: priority}
	p.Normalize()
	c.Points[slot] = p
}

// SetRange records demand for a half-open slot range.
func (c *Curve) SetRange(startSlot, endSlot, minStaff, target, maxStaff int, priority Priority) {
	for slot := startSlot; slot < endSlot; slot++ {
		c.Set(slot, minStaff, target, maxStaff, priority)
	}
}

// SetRoleDemand records per-role demand for a slot.
func (c *Curve) SetRoleDemand(slot int, role models.JobRole, minStaff, target, maxStaff int) {
	if c.RolePoints == nil {
		c.RolePoints = make(map[int]map[models.JobRole]Point)
	}
	if c.RolePoints[slot] == nil {
		c.RolePoints[slot] = make(map[models.JobRole]Point)
	}
	p := Point{Slot: slot, MinStaff: minStaff, Target: target, MaxStaff: maxStaff, Priority: PriorityNormal}
	p.Normalize()
	c.RolePoints[slot][role] = p
}

// AddPriorityPeriod marks a window of slots as higher priority.
func (c *Curve) AddPriorityPeriod(startSlot, endSlot int, priority Priority) {
	c.PriorityPeriods = append(c.PriorityPeriods, PriorityPeriod{
		StartSlot: startSlot, EndSlot: endSlot, Priority: priority,
	})
}

// TargetTimeline returns per-slot targets as a vector of length TotalSlots.
func (c *Curve) TargetTimeline() []int {
	targets := make([]int, c.TotalSlots())
	for slot := range targets {
		targets[slot] = c.TargetAt(slot)
	}
	return targets
}

// FromHourlyPattern expands hour->target staffing into a per-slot curve with
// min at 60% of target and max at 150% of target plus one.
func FromHourlyPattern(date time.Time, hourlyTargets map[int]int, slotMinutes, dayStartMinutes int) *Curve {
	c := NewCurve(date)
	c.SlotMinutes = slotMinutes
	c.DayStartMinutes = dayStartMinutes

	startHour := dayStartMinutes / 60
	for slot := 0; slot < c.TotalSlots(); slot++ {
		hour := startHour + (slot*slotMinutes)/60
		target, ok := hourlyTargets[hour]
		if !ok {
			target = 1
		}
		c.Set(slot, target*6/10, target, target*3/2+1, PriorityNormal)
	}
	return c
}

// Flat builds a curve with the same target at every slot.
func Flat(date time.Time, target int) *Curve {
	c := NewCurve(date)
	c.SetRange(0, c.TotalSlots(), 0, target, target, PriorityNormal)
	return c
}

// Encode serializes the curve in its canonical exchange form.
func (c *Curve) Encode() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// DecodeCurve parses the canonical exchange form.
func DecodeCurve(data []byte) (*Curve, error) {
	var c Curve
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Points == nil {
		c.Points = make(map[int]Point)
	}
	return &c, nil
}

// WeeklyDemand maps dates to curves, with an optional fallback profile.
type WeeklyDemand struct {
	Curves         map[string]*Curve `json:"curves"` // keyed by models.DateKey
	DefaultProfile *Profile          `json:"default_profile,omitempty"`
}

func NewWeeklyDemand() *WeeklyDemand {
	return &WeeklyDemand{Curves: make(map[string]*Curve)}
}

// ForDate resolves the curve for a date: explicit curve, then profile, then a
// minimal default.
func (w *WeeklyDemand) ForDate(date time.Time, slotMinutes int) *Curve {
	if c, ok := w.Curves[models.DateKey(date)]; ok {
		return c
	}
	if w.DefaultProfile != nil {
		return w.DefaultProfile.ToCurve(date, slotMinutes, models.DefaultDayStartMinutes)
	}
	return DefaultCurve(date)
}

// SetCurve records a curve for its date.
func (w *WeeklyDemand) SetCurve(c *Curve) {
	w.Curves[models.DateKey(c.Date)] = c
}

// ApplyProfile expands a profile into a curve for a date.
func (w *WeeklyDemand) ApplyProfile(date time.Time, p *Profile, slotMinutes int) {
	w.Curves[models.DateKey(date)] = p.ToCurve(date, slotMinutes, models.DefaultDayStartMinutes)
}

// StandardWeek fills seven days starting at startDate with weekday and
// weekend profiles.
func StandardWeek(startDate time.Time, weekday, weekend *Profile) *WeeklyDemand {
	if weekday == nil {
		weekday = WeekdayProfile()
	}
	if weekend == nil {
		weekend = WeekendProfile()
	}
	w := NewWeeklyDemand()
	for i := 0; i < 7; i++ {
		d := startDate.AddDate(0, 0, i)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			w.ApplyProfile(d, weekend, models.DefaultSlotMinutes)
		} else {
			w.ApplyProfile(d, weekday, models.DefaultSlotMinutes)
		}
	}
	return w
}

// DefaultCurve is a modest single-peak curve used when nothing is configured.
func DefaultCurve(date time.Time) *Curve {
	c := NewCurve(date)
	startHour := c.DayStartMinutes / 60
	for slot := 0; slot < c.TotalSlots(); slot++ {
		hour := startHour + (slot*c.SlotMinutes)/60
		target := 5
		priority := PriorityNormal
		if hour >= 10 && hour < 14 {
			target = 10
			priority = PriorityHigh
		}
		c.Set(slot, target*6/10, target, target*3/2+1, priority)
	}
	return c
}
