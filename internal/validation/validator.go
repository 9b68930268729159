// Package validation checks finished schedules against every hard rule. It
// is the single source of truth for constraint semantics: solvers aim never
// to produce violations, the validator confirms it.
package validation

import (
	"fmt"
	"sort"
	"time"

	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// ViolationKind categorizes a constraint breach.
type ViolationKind string

const (
	KindWindow          ViolationKind = "WINDOW"
	KindAvailability    ViolationKind = "AVAILABILITY"
	KindShiftBounds     ViolationKind = "SHIFT_BOUNDS"
	KindLunch           ViolationKind = "LUNCH"
	KindBreak           ViolationKind = "BREAK"
	KindRoleEligibility ViolationKind = "ROLE_ELIGIBILITY"
	KindRoleCap         ViolationKind = "ROLE_CAP"
	KindDailyHours      ViolationKind = "DAILY_HOURS"
	KindWeeklyHours     ViolationKind = "WEEKLY_HOURS"
	KindDaysOff         ViolationKind = "DAYS_OFF"
)

// Violation is one constraint breach. AssociateID and Slot are optional;
// a nil Slot means the violation is not tied to one slot.
type Violation struct {
	Kind        ViolationKind `json:"kind"`
	AssociateID string        `json:"associate_id,omitempty"`
	Slot        *int          `json:"slot,omitempty"`
	Message     string        `json:"message"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("[%s]", v.Kind)
	if v.AssociateID != "" {
		s += " associate " + v.AssociateID + ":"
	}
	s += " " + v.Message
	if v.Slot != nil {
		s += fmt.Sprintf(" (slot %d)", *v.Slot)
	}
	return s
}

// Result collects every violation found; it never short-circuits.
type Result struct {
	IsValid    bool        `json:"is_valid"`
	Violations []Violation `json:"violations"`
	Warnings   []string    `json:"warnings,omitempty"`
}

func (r *Result) add(v Violation) {
	r.Violations = append(r.Violations, v)
	r.IsValid = false
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func slotRef(slot int) *int {
	s := slot
	return &s
}

// Validator checks schedules against the shared policy set.
type Validator struct {
	Policies policies.Set
}

func New(p policies.Set) *Validator {
	return &Validator{Policies: p}
}

// Validate checks a day schedule. Checks run in a fixed order and all
// violations are reported.
func (v *Validator) Validate(
	schedule *models.DaySchedule,
	req *models.ScheduleRequest,
	associatesByID map[string]*models.Associate,
) Result {
	result := Result{IsValid: true}

	ids := make([]string, 0, len(schedule.Assignments))
	for id := range schedule.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		assignment := schedule.Assignments[id]
		associate, ok := associatesByID[id]
		if !ok {
			result.add(Violation{
				Kind:        KindAvailability,
				AssociateID: id,
				Message:     "unknown associate id",
			})
			continue
		}
		v.validateAssignment(assignment, associate, req, &result)
	}

	v.validateRoleCaps(schedule, req, &result)
	return result
}

func (v *Validator) validateAssignment(
	a *models.ShiftAssignment,
	associate *models.Associate,
	req *models.ScheduleRequest,
	result *Result,
) {
	id := a.AssociateID
	totalSlots := req.TotalSlots()

	// Window: everything inside [0, S).
	if a.StartSlot < 0 {
		result.add(Violation{Kind: KindWindow, AssociateID: id, Slot: slotRef(a.StartSlot),
			Message: "shift starts before the operating window"})
	}
	if a.EndSlot > totalSlots {
		result.add(Violation{Kind: KindWindow, AssociateID: id, Slot: slotRef(a.EndSlot),
			Message: "shift ends after the operating window"})
	}
	if a.Lunch != nil && (a.Lunch.StartSlot < 0 || a.Lunch.EndSlot > totalSlots) {
		result.add(Violation{Kind: KindWindow, AssociateID: id,
			Message: "lunch outside the operating window"})
	}
	for i, b := range a.Breaks {
		if b.StartSlot < 0 || b.EndSlot > totalSlots {
			result.add(Violation{Kind: KindWindow, AssociateID: id,
				Message: fmt.Sprintf("break %d outside the operating window", i+1)})
		}
	}

	// Availability.
	avail := associate.AvailabilityOn(req.Date)
	if avail.IsOff() {
		result.add(Violation{Kind: KindAvailability, AssociateID: id,
			Message: "associate is off this day"})
	} else {
		if a.StartSlot < avail.StartSlot {
			result.add(Violation{Kind: KindAvailability, AssociateID: id,
				Message: fmt.Sprintf("shift starts at slot %d before availability %d", a.StartSlot, avail.StartSlot)})
		}
		if a.EndSlot > avail.EndSlot {
			result.add(Violation{Kind: KindAvailability, AssociateID: id,
				Message: fmt.Sprintf("shift ends at slot %d after availability %d", a.EndSlot, avail.EndSlot)})
		}
	}

	// Shift bounds.
	work := a.WorkMinutes()
	if work < v.Policies.Shift.MinWorkMinutes() {
		result.add(Violation{Kind: KindShiftBounds, AssociateID: id,
			Message: fmt.Sprintf("work time %d min below minimum %d min", work, v.Policies.Shift.MinWorkMinutes())})
	}
	if work > v.Policies.Shift.MaxWorkMinutes() {
		result.add(Violation{Kind: KindShiftBounds, AssociateID: id,
			Message: fmt.Sprintf("work time %d min above maximum %d min", work, v.Policies.Shift.MaxWorkMinutes())})
	}

	v.validateLunch(a, req, result)
	v.validateBreaks(a, req, result)
	v.validateRoles(a, associate, result)

	// Daily hours.
	if work > associate.MaxMinutesPerDay {
		result.add(Violation{Kind: KindDailyHours, AssociateID: id,
			Message: fmt.Sprintf("work time %d min exceeds daily max %d min", work, associate.MaxMinutesPerDay)})
	}
}

func (v *Validator) validateLunch(a *models.ShiftAssignment, req *models.ScheduleRequest, result *Result) {
	id := a.AssociateID
	expected := v.Policies.Lunch.LunchDuration(a.WorkMinutes())
	actual := a.LunchMinutes()
	if actual != expected {
		result.add(Violation{Kind: KindLunch, AssociateID: id,
			Message: fmt.Sprintf("lunch %d min does not match required %d min for %d min work", actual, expected, a.WorkMinutes())})
	}
	if a.Lunch == nil {
		return
	}
	if a.Lunch.StartSlot < a.StartSlot || a.Lunch.EndSlot > a.EndSlot {
		result.add(Violation{Kind: KindLunch, AssociateID: id,
			Message: "lunch extends outside the shift"})
	}
	lunchSlots := a.Lunch.Slots()
	earliest, latest := v.Policies.Lunch.LunchWindow(a.StartSlot, a.EndSlot, lunchSlots, req.BusyDay, req.SlotMinutes)
	if a.Lunch.StartSlot < earliest || a.Lunch.StartSlot > latest {
		result.add(Violation{Kind: KindLunch, AssociateID: id, Slot: slotRef(a.Lunch.StartSlot),
			Message: fmt.Sprintf("lunch start %d outside placement window [%d,%d]", a.Lunch.StartSlot, earliest, latest)})
	}
}

func (v *Validator) validateBreaks(a *models.ShiftAssignment, req *models.ScheduleRequest, result *Result) {
	id := a.AssociateID
	expectedCount := v.Policies.Break.BreakCount(a.WorkMinutes())
	if len(a.Breaks) != expectedCount {
		result.add(Violation{Kind: KindBreak, AssociateID: id,
			Message: fmt.Sprintf("break count %d does not match required %d for %d min work", len(a.Breaks), expectedCount, a.WorkMinutes())})
	}

	expectedDuration := v.Policies.Break.BreakDuration()
	gap := v.Policies.Break.MinLunchGapSlots()
	targets := v.Policies.Break.BreakTargets(a.StartSlot, a.EndSlot, len(a.Breaks), a.Lunch, req.SlotMinutes)
	maxVariance := v.Policies.Break.MaxVarianceSlots()

	for i, b := range a.Breaks {
		if b.Slots()*req.SlotMinutes != expectedDuration {
			result.add(Violation{Kind: KindBreak, AssociateID: id,
				Message: fmt.Sprintf("break %d is %d min, required %d min", i+1, b.Slots()*req.SlotMinutes, expectedDuration)})
		}
		if b.StartSlot < a.StartSlot || b.EndSlot > a.EndSlot {
			result.add(Violation{Kind: KindBreak, AssociateID: id,
				Message: fmt.Sprintf("break %d extends outside the shift", i+1)})
		}
		if a.Lunch != nil {
			padded := models.Block{StartSlot: a.Lunch.StartSlot - gap, EndSlot: a.Lunch.EndSlot + gap}
			if b.Overlaps(padded) {
				result.add(Violation{Kind: KindBreak, AssociateID: id,
					Message: fmt.Sprintf("break %d overlaps or touches lunch", i+1)})
			}
		}
		for j := i + 1; j < len(a.Breaks); j++ {
			if b.Overlaps(a.Breaks[j]) {
				result.add(Violation{Kind: KindBreak, AssociateID: id,
					Message: fmt.Sprintf("break %d overlaps break %d", i+1, j+1)})
			}
		}
		if i < len(targets) && abs(b.StartSlot-targets[i]) > maxVariance {
			result.add(Violation{Kind: KindBreak, AssociateID: id, Slot: slotRef(b.StartSlot),
				Message: fmt.Sprintf("break %d start %d outside band %d±%d", i+1, b.StartSlot, targets[i], maxVariance)})
		}
	}
}

func (v *Validator) validateRoles(a *models.ShiftAssignment, associate *models.Associate, result *Result) {
	id := a.AssociateID
	for _, j := range a.Jobs {
		if !associate.AllowedRoles[j.Role] {
			result.add(Violation{Kind: KindRoleEligibility, AssociateID: id,
				Message: fmt.Sprintf("role %s not approved by supervisor", j.Role)})
		}
		if associate.CannotDoRoles[j.Role] {
			result.add(Violation{Kind: KindRoleEligibility, AssociateID: id,
				Message: fmt.Sprintf("associate cannot perform role %s", j.Role)})
		}
	}
	// Every on-floor slot needs exactly one role.
	for slot := a.StartSlot; slot < a.EndSlot; slot++ {
		if a.OnFloor(slot) && a.RoleAt(slot) == "" {
			result.add(Violation{Kind: KindRoleEligibility, AssociateID: id, Slot: slotRef(slot),
				Message: "no role assigned for on-floor slot"})
		}
	}
}

// validateRoleCaps checks per-slot role counts against the caps. A finite
// picking cap is enforced like any other.
func (v *Validator) validateRoleCaps(schedule *models.DaySchedule, req *models.ScheduleRequest, result *Result) {
	for slot := 0; slot < schedule.TotalSlots(); slot++ {
		for _, role := range models.AllRoles() {
			cap := req.CapAt(slot, role)
			if cap >= models.PickingOverflowCap {
				continue
			}
			count := schedule.RoleCoverageAt(slot, role)
			if count > cap {
				result.add(Violation{Kind: KindRoleCap, Slot: slotRef(slot),
					Message: fmt.Sprintf("role %s has %d assigned but cap is %d", role, count, cap)})
			}
		}
	}
}

// ValidateWeekly validates every day plus the weekly constraints: weekly
// hour caps, required days off and the days-off pattern.
func (v *Validator) ValidateWeekly(
	weekly *models.WeeklySchedule,
	req *models.WeeklyScheduleRequest,
	associatesByID map[string]*models.Associate,
) Result {
	result := Result{IsValid: true}

	for _, day := range weekly.Days {
		dayResult := v.Validate(day, req.DayRequest(day.Date), associatesByID)
		for _, violation := range dayResult.Violations {
			violation.Message = models.DateKey(day.Date) + ": " + violation.Message
			result.add(violation)
		}
		result.Warnings = append(result.Warnings, dayResult.Warnings...)
	}

	ids := make([]string, 0, len(associatesByID))
	for id := range associatesByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	totalDays := req.NumDays()
	for _, id := range ids {
		associate := associatesByID[id]

		total := weekly.WeeklyMinutes(id)
		if total > associate.MaxMinutesPerWeek {
			result.add(Violation{Kind: KindWeeklyHours, AssociateID: id,
				Message: fmt.Sprintf("weekly work %d min exceeds max %d min", total, associate.MaxMinutesPerWeek)})
		}
		if req.Fairness.MinWeeklyMinutes > 0 && total < req.Fairness.MinWeeklyMinutes {
			if availableDays(associate, req) > 0 {
				result.warn(fmt.Sprintf("associate %s has only %d min scheduled (minimum target %d min)",
					id, total, req.Fairness.MinWeeklyMinutes))
			}
		}

		daysOff := totalDays - weekly.DaysWorked(id)
		if daysOff < req.RequiredDaysOff {
			result.add(Violation{Kind: KindDaysOff, AssociateID: id,
				Message: fmt.Sprintf("has %d days off, requires %d", daysOff, req.RequiredDaysOff)})
		}

		v.validatePattern(weekly, req, id, &result)
	}

	return result
}

func (v *Validator) validatePattern(weekly *models.WeeklySchedule, req *models.WeeklyScheduleRequest, id string, result *Result) {
	offDays := weekly.DaysOff(id)

	switch req.Pattern {
	case models.PatternTwoConsecutive:
		if !hasConsecutive(offDays, 2) {
			result.add(Violation{Kind: KindDaysOff, AssociateID: id,
				Message: "does not have two consecutive days off"})
		}
	case models.PatternOneWeekendDay:
		for _, d := range offDays {
			if wd := d.Weekday(); wd == 0 || wd == 6 {
				return
			}
		}
		result.add(Violation{Kind: KindDaysOff, AssociateID: id,
			Message: "does not have a weekend day off"})
	case models.PatternEveryOtherDay:
		var worked []int
		offSet := make(map[string]bool, len(offDays))
		for _, d := range offDays {
			offSet[models.DateKey(d)] = true
		}
		for i, d := range req.Dates() {
			if !offSet[models.DateKey(d)] {
				worked = append(worked, i)
			}
		}
		for i := 1; i < len(worked); i++ {
			if worked[i] == worked[i-1]+1 {
				result.add(Violation{Kind: KindDaysOff, AssociateID: id,
					Message: "works two consecutive days under every-other-day pattern"})
				return
			}
		}
	}
}

// hasConsecutive reports whether the dates contain a run of the required
// length of calendar-adjacent days.
func hasConsecutive(days []time.Time, required int) bool {
	if len(days) < required {
		return false
	}
	sorted := append([]time.Time(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
			if run >= required {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func availableDays(a *models.Associate, req *models.WeeklyScheduleRequest) int {
	count := 0
	for _, d := range req.Dates() {
		if !a.AvailabilityOn(d).IsOff() {
			count++
		}
	}
	return count
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
