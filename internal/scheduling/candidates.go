// Package scheduling contains the candidate generator, the greedy heuristic
// solver, the constraint-programming adapter and the weekly coordinator.
package scheduling

import (
	"fmt"
	"sort"

	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// ShiftCandidate is one feasible shift option for an associate on a date.
// Base candidates carry only the lunch length and break count; the heuristic
// places lunch and breaks against live coverage state. Placed candidates
// (used by the CP adapter) fix both, so their on-floor mask is known.
type ShiftCandidate struct {
	AssociateID string
	StartSlot   int
	EndSlot     int
	WorkMinutes int
	LunchSlots  int
	BreakCount  int
	SlotMinutes int
	Lunch       *models.Block
	Breaks      []models.Block
}

func (c *ShiftCandidate) TotalShiftSlots() int {
	return c.EndSlot - c.StartSlot
}

// Placed reports whether lunch and breaks are fixed.
func (c *ShiftCandidate) Placed() bool {
	return c.LunchSlots == 0 || c.Lunch != nil
}

// OnFloorSlots lists the slots a placed candidate covers on the floor.
func (c *ShiftCandidate) OnFloorSlots() []int {
	slots := make([]int, 0, c.TotalShiftSlots())
	for s := c.StartSlot; s < c.EndSlot; s++ {
		if c.Lunch != nil && c.Lunch.Contains(s) {
			continue
		}
		onBreak := false
		for _, b := range c.Breaks {
			if b.Contains(s) {
				onBreak = true
				break
			}
		}
		if !onBreak {
			slots = append(slots, s)
		}
	}
	return slots
}

// Assignment materializes the candidate into a shift assignment.
func (c *ShiftCandidate) Assignment(req *models.ScheduleRequest) *models.ShiftAssignment {
	a := &models.ShiftAssignment{
		AssociateID: c.AssociateID,
		Date:        req.Date,
		StartSlot:   c.StartSlot,
		EndSlot:     c.EndSlot,
		SlotMinutes: c.SlotMinutes,
	}
	if c.Lunch != nil {
		lunch := *c.Lunch
		a.Lunch = &lunch
	}
	a.Breaks = append(a.Breaks, c.Breaks...)
	return a
}

// Generator enumerates feasible shift candidates under the policy set.
type Generator struct {
	Policies policies.Set
}

func NewGenerator(p policies.Set) *Generator {
	return &Generator{Policies: p}
}

// Generate produces every feasible base candidate for one associate,
// stepping start slots and work lengths by stepSlots. Candidates come back
// sorted by decreasing work minutes, ties by earlier start.
func (g *Generator) Generate(a *models.Associate, req *models.ScheduleRequest, stepSlots int) []*ShiftCandidate {
	avail := a.AvailabilityOn(req.Date)
	if avail.IsOff() {
		return nil
	}
	if stepSlots < 1 {
		stepSlots = 1
	}

	slotMinutes := req.SlotMinutes
	minWorkSlots := policies.MinutesToSlots(g.Policies.Shift.MinWorkMinutes(), slotMinutes)
	maxWorkSlots := g.Policies.Shift.MaxWorkMinutes() / slotMinutes

	daySlots := req.TotalSlots()
	availStart := max(0, avail.StartSlot)
	availEnd := min(daySlots, avail.EndSlot)

	if availEnd-availStart < minWorkSlots {
		return nil
	}

	var candidates []*ShiftCandidate
	for start := availStart; start < availEnd; start += stepSlots {
		for workSlots := minWorkSlots; workSlots <= maxWorkSlots; workSlots += stepSlots {
			workMinutes := workSlots * slotMinutes
			if workMinutes > a.MaxMinutesPerDay {
				continue
			}

			lunchSlots := policies.MinutesToSlots(g.Policies.Lunch.LunchDuration(workMinutes), slotMinutes)
			end := start + workSlots + lunchSlots
			if end > availEnd || end > daySlots {
				continue
			}

			candidates = append(candidates, &ShiftCandidate{
				AssociateID: a.ID,
				StartSlot:   start,
				EndSlot:     end,
				WorkMinutes: workMinutes,
				LunchSlots:  lunchSlots,
				BreakCount:  g.Policies.Break.BreakCount(workMinutes),
				SlotMinutes: slotMinutes,
			})
		}
	}

	for _, c := range candidates {
		if c.StartSlot < avail.StartSlot || c.EndSlot > avail.EndSlot {
			panic(fmt.Sprintf("candidate %s [%d,%d) outside availability [%d,%d)",
				c.AssociateID, c.StartSlot, c.EndSlot, avail.StartSlot, avail.EndSlot))
		}
	}

	sortCandidates(candidates)
	return candidates
}

// GenerateAll produces base candidates for every associate that has any.
func (g *Generator) GenerateAll(req *models.ScheduleRequest, stepSlots int) map[string][]*ShiftCandidate {
	all := make(map[string][]*ShiftCandidate)
	for _, a := range req.Associates {
		if candidates := g.Generate(a, req, stepSlots); len(candidates) > 0 {
			all[a.ID] = candidates
		}
	}
	return all
}

// GeneratePlaced expands base candidates with every admissible lunch start
// and deterministic break placement, deduplicated. The CP adapter selects
// over these, so a lunch position is part of the decision.
func (g *Generator) GeneratePlaced(a *models.Associate, req *models.ScheduleRequest, stepSlots int) []*ShiftCandidate {
	base := g.Generate(a, req, stepSlots)
	seen := make(map[string]bool)
	var placed []*ShiftCandidate

	emit := func(c *ShiftCandidate) {
		key := fmt.Sprintf("%d:%d:%d", c.StartSlot, c.EndSlot, -1)
		if c.Lunch != nil {
			key = fmt.Sprintf("%d:%d:%d", c.StartSlot, c.EndSlot, c.Lunch.StartSlot)
		}
		if !seen[key] {
			seen[key] = true
			placed = append(placed, c)
		}
	}

	for _, c := range base {
		if c.LunchSlots == 0 {
			pc := *c
			pc.Breaks = g.placeBreaksStatic(&pc, nil)
			emit(&pc)
			continue
		}
		earliest, latest := g.Policies.Lunch.LunchWindow(c.StartSlot, c.EndSlot, c.LunchSlots, req.BusyDay, req.SlotMinutes)
		for lunchStart := earliest; lunchStart <= latest; lunchStart++ {
			if lunchStart+c.LunchSlots > c.EndSlot {
				break
			}
			pc := *c
			pc.Lunch = &models.Block{StartSlot: lunchStart, EndSlot: lunchStart + c.LunchSlots}
			pc.Breaks = g.placeBreaksStatic(&pc, pc.Lunch)
			emit(&pc)
		}
	}

	sortCandidates(placed)
	return placed
}

// GenerateAllPlaced produces placed candidates for every associate.
func (g *Generator) GenerateAllPlaced(req *models.ScheduleRequest, stepSlots int) map[string][]*ShiftCandidate {
	all := make(map[string][]*ShiftCandidate)
	for _, a := range req.Associates {
		if candidates := g.GeneratePlaced(a, req, stepSlots); len(candidates) > 0 {
			all[a.ID] = candidates
		}
	}
	return all
}

// placeBreaksStatic puts each break as close to its policy anchor as
// possible, respecting the variance band, the lunch gap and earlier breaks.
func (g *Generator) placeBreaksStatic(c *ShiftCandidate, lunch *models.Block) []models.Block {
	if c.BreakCount == 0 {
		return nil
	}
	breakSlots := policies.MinutesToSlots(g.Policies.Break.BreakDuration(), c.SlotMinutes)
	targets := g.Policies.Break.BreakTargets(c.StartSlot, c.EndSlot, c.BreakCount, lunch, c.SlotMinutes)
	maxVariance := g.Policies.Break.MaxVarianceSlots()
	gap := g.Policies.Break.MinLunchGapSlots()

	var breaks []models.Block
	for _, target := range targets {
		placedAt := -1
		for _, offset := range searchOffsets(maxVariance) {
			start := target + offset
			block := models.Block{StartSlot: start, EndSlot: start + breakSlots}
			if breakPlacementOK(block, c.StartSlot, c.EndSlot, lunch, breaks, gap) {
				placedAt = start
				break
			}
		}
		if placedAt < 0 {
			placedAt = target
		}
		breaks = append(breaks, models.Block{StartSlot: placedAt, EndSlot: placedAt + breakSlots})
	}
	return breaks
}

// searchOffsets yields 0, +1, -1, +2, -2, ... out to the variance bound.
func searchOffsets(maxVariance int) []int {
	offsets := []int{0}
	for d := 1; d <= maxVariance; d++ {
		offsets = append(offsets, d, -d)
	}
	return offsets
}

// breakPlacementOK checks the hard placement rules for one break block.
func breakPlacementOK(b models.Block, shiftStart, shiftEnd int, lunch *models.Block, others []models.Block, lunchGap int) bool {
	if b.StartSlot < shiftStart || b.EndSlot > shiftEnd {
		return false
	}
	if lunch != nil {
		padded := models.Block{StartSlot: lunch.StartSlot - lunchGap, EndSlot: lunch.EndSlot + lunchGap}
		if b.Overlaps(padded) {
			return false
		}
	}
	for _, o := range others {
		if b.Overlaps(o) {
			return false
		}
	}
	return true
}

func sortCandidates(candidates []*ShiftCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].WorkMinutes != candidates[j].WorkMinutes {
			return candidates[i].WorkMinutes > candidates[j].WorkMinutes
		}
		if candidates[i].StartSlot != candidates[j].StartSlot {
			return candidates[i].StartSlot < candidates[j].StartSlot
		}
		li := -1
		if candidates[i].Lunch != nil {
			li = candidates[i].Lunch.StartSlot
		}
		lj := -1
		if candidates[j].Lunch != nil {
			lj = candidates[j].Lunch.StartSlot
		}
		return li < lj
	})
}

// sortedIDs returns candidate map keys in a fixed order. Map iteration order
// must never leak into solver decisions.
func sortedIDs[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
