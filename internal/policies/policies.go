// Package policies holds the configurable labor rules for shifts, lunches and
// rest breaks. The validator and every solver consume the same policy set, so
// the rules live here and nowhere else.
package policies

import (
	"fmt"

	"workforce-scheduler/internal/models"
)

// MinutesToSlots converts a policy duration to whole slots, rounding up so a
// value that is not a slot multiple still covers the full duration.
func MinutesToSlots(minutes, slotMinutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + slotMinutes - 1) / slotMinutes
}

// SlotsToMinutes converts slots back to minutes.
func SlotsToMinutes(slots, slotMinutes int) int {
	return slots * slotMinutes
}

// ShiftPolicy bounds the work minutes of a shift (lunch excluded).
type ShiftPolicy interface {
	MinWorkMinutes() int
	MaxWorkMinutes() int
	IsValidWorkDuration(workMinutes int) bool
}

// LunchPolicy derives the required lunch from work minutes and bounds where
// the lunch may start within a shift.
type LunchPolicy interface {
	LunchDuration(workMinutes int) int
	// LunchWindow returns the inclusive [earliest, latest] start slots for a
	// lunch of lunchSlots within [shiftStart, shiftEnd). Busy days widen the
	// window.
	LunchWindow(shiftStart, shiftEnd, lunchSlots int, busyDay bool, slotMinutes int) (int, int)
}

// BreakPolicy derives break count and duration from work minutes and anchors
// break positions within the shift.
type BreakPolicy interface {
	BreakCount(workMinutes int) int
	BreakDuration() int
	// BreakTargets returns the anchor start slots for the required breaks,
	// avoiding the lunch block when present.
	BreakTargets(shiftStart, shiftEnd, breakCount int, lunch *models.Block, slotMinutes int) []int
	// MaxVarianceSlots bounds how far a break may move from its anchor.
	MaxVarianceSlots() int
	// MinLunchGapSlots is the minimum separation between a break and the
	// lunch block.
	MinLunchGapSlots() int
}

// Set bundles the three policies a solve needs.
type Set struct {
	Shift ShiftPolicy
	Lunch LunchPolicy
	Break BreakPolicy
}

// Defaults returns the standard policy set.
func Defaults() Set {
	return Set{
		Shift: DefaultShiftPolicy{MinWork: 240, MaxWork: 480},
		Lunch: DefaultLunchPolicy{
			NoLunchThreshold:    360,
			ShortLunchThreshold: 390,
			ShortLunchDuration:  30,
			LongLunchDuration:   60,
			NormalDayWindow:     30,
			BusyDayWindow:       60,
		},
		Break: DefaultBreakPolicy{
			OneBreakThreshold: 300,
			TwoBreakThreshold: 480,
			Duration:          15,
			MaxVariance:       2,
			MinLunchGap:       1,
		},
	}
}

// Validate reports inconsistent policy thresholds as configuration errors.
func (s Set) Validate() error {
	if s.Shift.MinWorkMinutes() > s.Shift.MaxWorkMinutes() {
		return fmt.Errorf("%w: shift min_work %d exceeds max_work %d",
			models.ErrConfiguration, s.Shift.MinWorkMinutes(), s.Shift.MaxWorkMinutes())
	}
	if lp, ok := s.Lunch.(DefaultLunchPolicy); ok {
		if lp.ShortLunchThreshold < lp.NoLunchThreshold {
			return fmt.Errorf("%w: short_lunch_threshold %d below no_lunch_threshold %d",
				models.ErrConfiguration, lp.ShortLunchThreshold, lp.NoLunchThreshold)
		}
		if lp.ShortLunchDuration <= 0 || lp.LongLunchDuration <= 0 {
			return fmt.Errorf("%w: lunch durations must be positive", models.ErrConfiguration)
		}
	}
	if bp, ok := s.Break.(DefaultBreakPolicy); ok {
		if bp.TwoBreakThreshold < bp.OneBreakThreshold {
			return fmt.Errorf("%w: two_break_threshold %d below one_break_threshold %d",
				models.ErrConfiguration, bp.TwoBreakThreshold, bp.OneBreakThreshold)
		}
		if bp.Duration <= 0 {
			return fmt.Errorf("%w: break duration must be positive", models.ErrConfiguration)
		}
	}
	return nil
}

// DefaultShiftPolicy bounds work between 4 and 8 hours. Lunch does not count
// toward the maximum.
type DefaultShiftPolicy struct {
	MinWork int
	MaxWork int
}

func (p DefaultShiftPolicy) MinWorkMinutes() int { return p.MinWork }
func (p DefaultShiftPolicy) MaxWorkMinutes() int { return p.MaxWork }

func (p DefaultShiftPolicy) IsValidWorkDuration(workMinutes int) bool {
	return p.MinWork <= workMinutes && workMinutes <= p.MaxWork
}

// DefaultLunchPolicy: under 6h no lunch, 6h-6.5h a 30-minute lunch, 6.5h and
// up a 60-minute lunch. Lunch is placed around the shift midpoint with a
// ±30-minute window, ±60 on busy days.
type DefaultLunchPolicy struct {
	NoLunchThreshold    int
	ShortLunchThreshold int
	ShortLunchDuration  int
	LongLunchDuration   int
	NormalDayWindow     int
	BusyDayWindow       int
}

func (p DefaultLunchPolicy) LunchDuration(workMinutes int) int {
	switch {
	case workMinutes < p.NoLunchThreshold:
		return 0
	case workMinutes < p.ShortLunchThreshold:
		return p.ShortLunchDuration
	default:
		return p.LongLunchDuration
	}
}

func (p DefaultLunchPolicy) LunchWindow(shiftStart, shiftEnd, lunchSlots int, busyDay bool, slotMinutes int) (int, int) {
	if lunchSlots == 0 {
		return 0, 0
	}

	shiftLength := shiftEnd - shiftStart
	midPoint := shiftStart + shiftLength/2
	targetStart := midPoint - lunchSlots/2

	windowMinutes := p.NormalDayWindow
	if busyDay {
		windowMinutes = p.BusyDayWindow
	}
	windowSlots := windowMinutes / slotMinutes

	// Keep lunch at least an hour clear of each end of the shift.
	edgeGap := MinutesToSlots(60, slotMinutes)
	earliest := max(shiftStart+edgeGap, targetStart-windowSlots)
	latest := min(shiftEnd-lunchSlots-edgeGap, targetStart+windowSlots)

	earliest = max(shiftStart, earliest)
	latest = max(earliest, latest)
	return earliest, latest
}

// DefaultBreakPolicy: one 15-minute break from 5 hours of work, two from 8.
// Breaks anchor at segment midpoints and may move at most two slots.
type DefaultBreakPolicy struct {
	OneBreakThreshold int
	TwoBreakThreshold int
	Duration          int
	MaxVariance       int
	MinLunchGap       int
}

func (p DefaultBreakPolicy) BreakCount(workMinutes int) int {
	switch {
	case workMinutes >= p.TwoBreakThreshold:
		return 2
	case workMinutes >= p.OneBreakThreshold:
		return 1
	default:
		return 0
	}
}

func (p DefaultBreakPolicy) BreakDuration() int    { return p.Duration }
func (p DefaultBreakPolicy) MaxVarianceSlots() int { return p.MaxVariance }
func (p DefaultBreakPolicy) MinLunchGapSlots() int { return p.MinLunchGap }

func (p DefaultBreakPolicy) BreakTargets(shiftStart, shiftEnd, breakCount int, lunch *models.Block, slotMinutes int) []int {
	if breakCount == 0 {
		return nil
	}

	breakSlots := MinutesToSlots(p.Duration, slotMinutes)
	shiftLength := shiftEnd - shiftStart

	var targets []int
	switch breakCount {
	case 1:
		if lunch != nil {
			// Anchor in the longer work segment.
			seg1 := lunch.StartSlot - shiftStart
			seg2 := shiftEnd - lunch.EndSlot
			if seg1 >= seg2 {
				targets = append(targets, shiftStart+seg1/2)
			} else {
				targets = append(targets, lunch.EndSlot+seg2/2)
			}
		} else {
			targets = append(targets, shiftStart+shiftLength/2)
		}
	default:
		if lunch != nil {
			seg1 := lunch.StartSlot - shiftStart
			seg2 := shiftEnd - lunch.EndSlot
			targets = append(targets, shiftStart+seg1/2, lunch.EndSlot+seg2/2)
		} else {
			targets = append(targets, shiftStart+shiftLength/3, shiftStart+2*shiftLength/3)
		}
	}

	// Pull anchors out of the lunch block and back inside the shift.
	for i, t := range targets {
		if lunch != nil && lunch.Contains(t) {
			if t-shiftStart < shiftEnd-t {
				t = lunch.StartSlot - breakSlots - p.MinLunchGap
			} else {
				t = lunch.EndSlot + p.MinLunchGap
			}
		}
		t = max(shiftStart, t)
		t = min(shiftEnd-breakSlots, t)
		targets[i] = t
	}
	return targets
}
