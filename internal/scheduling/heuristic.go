package scheduling

import (
	"sort"

	"workforce-scheduler/internal/demand"
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// SolveOptions carries the optional inputs a day solve can take.
type SolveOptions struct {
	// Demand switches the slot weight from 1 to the slot's target staffing
	// and enables the overstaffing penalty.
	Demand *demand.Curve
	// Biases add a per-associate, per-work-minute term to the selection
	// objective. The weekly coordinator uses this for fairness targeting.
	Biases map[string]float64
}

// HeuristicSolver is the greedy coverage-driven day solver. Three phases:
// shift selection, lunch/break placement with role assignment, and a local
// improvement pass over lunch and break positions.
type HeuristicSolver struct {
	Policies policies.Set
	// OverstaffPenalty is the weight on coverage beyond the demand target.
	// It only applies when a demand curve is present.
	OverstaffPenalty float64
	// LocalImprovement enables the phase-C slide pass.
	LocalImprovement bool
}

func NewHeuristicSolver(p policies.Set) *HeuristicSolver {
	return &HeuristicSolver{Policies: p, OverstaffPenalty: 1.0, LocalImprovement: true}
}

// Solve generates a complete day schedule from pre-generated candidates.
func (h *HeuristicSolver) Solve(
	req *models.ScheduleRequest,
	candidates map[string][]*ShiftCandidate,
	associates map[string]*models.Associate,
) *models.DaySchedule {
	return h.SolveWithOptions(req, candidates, associates, SolveOptions{})
}

// SolveWithOptions is Solve with demand weighting and fairness biases.
func (h *HeuristicSolver) SolveWithOptions(
	req *models.ScheduleRequest,
	candidates map[string][]*ShiftCandidate,
	associates map[string]*models.Associate,
	opts SolveOptions,
) *models.DaySchedule {
	schedule := models.NewDaySchedule(req)
	totalSlots := req.TotalSlots()
	states := newSlotStates(totalSlots)

	weights := make([]float64, totalSlots)
	targets := make([]int, totalSlots)
	for s := range weights {
		if opts.Demand != nil {
			targets[s] = opts.Demand.TargetAt(s)
			weights[s] = float64(targets[s])
			if weights[s] == 0 {
				weights[s] = 0.1 // zero-demand slots still carry a sliver of value
			}
		} else {
			weights[s] = 1
			targets[s] = int(^uint(0) >> 1) // no overstaffing without demand
		}
	}

	selected := h.selectShifts(req, candidates, states, weights, targets, opts.Biases)

	// Associates with availability but no workable candidate are left
	// unscheduled; that is a warning, not a violation.
	selectedIDs := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedIDs[c.AssociateID] = true
	}
	for _, a := range req.Associates {
		if selectedIDs[a.ID] {
			continue
		}
		if a.AvailabilityOn(req.Date).IsOff() {
			continue
		}
		if len(candidates[a.ID]) == 0 {
			schedule.MarkUnscheduled(a.ID, "no feasible shift within availability and hour limits")
		} else {
			schedule.MarkUnscheduled(a.ID, "no positive-gain shift remained")
		}
	}

	// Earlier starters get lunches, breaks and specialized roles first.
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].StartSlot != selected[j].StartSlot {
			return selected[i].StartSlot < selected[j].StartSlot
		}
		return selected[i].AssociateID < selected[j].AssociateID
	})

	// Place lunches and breaks for everyone before assigning roles, so the
	// improvement pass can still slide blocks without invalidating roles.
	for _, cand := range selected {
		assignment := cand.Assignment(req)
		if cand.LunchSlots > 0 && cand.Lunch == nil {
			lunch := h.placeLunch(cand, states, req)
			assignment.Lunch = &lunch
		}
		if cand.BreakCount > 0 && len(cand.Breaks) == 0 {
			assignment.Breaks = h.placeBreaks(cand, assignment.Lunch, states)
		}
		h.commitOffFloor(assignment, states)
		schedule.Assignments[cand.AssociateID] = assignment
	}

	if h.LocalImprovement {
		h.improvePlacements(schedule, req, weights)
	}

	for _, cand := range selected {
		assignment := schedule.Assignments[cand.AssociateID]
		jobs, ok := assignShiftRoles(assignment, associates[cand.AssociateID], states, req)
		if !ok {
			// Every role at some work period is saturated or ineligible;
			// keeping the shift would only validate as a violation.
			delete(schedule.Assignments, cand.AssociateID)
			schedule.MarkUnscheduled(cand.AssociateID, "no eligible role capacity for the shift")
			continue
		}
		assignment.Jobs = jobs
		commitRoles(jobs, states)
	}
	return schedule
}

// selectShifts is phase A: repeatedly commit the (associate, candidate) pair
// with the best marginal gain per work-minute. Ties break on raw gain,
// longer shift, earlier start, then associate id.
func (h *HeuristicSolver) selectShifts(
	req *models.ScheduleRequest,
	candidates map[string][]*ShiftCandidate,
	states []slotState,
	weights []float64,
	targets []int,
	biases map[string]float64,
) []*ShiftCandidate {
	ids := sortedIDs(candidates)
	assigned := make(map[string]bool, len(ids))

	startCfg := make(map[int]models.ShiftStartConfig)
	startCount := make(map[int]int)
	for _, cfg := range req.ShiftStarts {
		startCfg[cfg.StartSlot] = cfg
	}

	var selected []*ShiftCandidate
	for {
		var best *ShiftCandidate
		var bestScore, bestGain float64

		for _, id := range ids {
			if assigned[id] {
				continue
			}
			for _, cand := range candidates[id] {
				if cfg, ok := startCfg[cand.StartSlot]; ok && cfg.MaxCount >= 0 &&
					startCount[cand.StartSlot] >= cfg.MaxCount {
					continue
				}

				gain := 0.0
				for s := cand.StartSlot; s < cand.EndSlot; s++ {
					if states[s].onFloor < targets[s] {
						gain += weights[s]
					} else {
						gain -= h.OverstaffPenalty
					}
				}
				if cfg, ok := startCfg[cand.StartSlot]; ok &&
					startCount[cand.StartSlot] < cfg.TargetCount {
					gain += 10 * float64(cfg.TargetCount-startCount[cand.StartSlot])
				}
				if biases != nil {
					gain += biases[cand.AssociateID] * float64(cand.WorkMinutes)
				}

				score := gain / float64(cand.WorkMinutes)
				if best == nil || score > bestScore ||
					(score == bestScore && (gain > bestGain ||
						(gain == bestGain && (cand.WorkMinutes > best.WorkMinutes ||
							(cand.WorkMinutes == best.WorkMinutes && (cand.StartSlot < best.StartSlot ||
								(cand.StartSlot == best.StartSlot && cand.AssociateID < best.AssociateID))))))) {
					best = cand
					bestScore = score
					bestGain = gain
				}
			}
		}

		if best == nil || bestGain <= 0 {
			break
		}
		selected = append(selected, best)
		assigned[best.AssociateID] = true
		startCount[best.StartSlot]++
		for s := best.StartSlot; s < best.EndSlot; s++ {
			states[s].onFloor++
		}
	}
	return selected
}

// placeLunch staggers lunch starts: fewest lunches already starting at the
// slot, then least overlap with lunches in progress, then distance to the
// midpoint target. Openers never take lunch before the target so a 05:00
// start does not eat at 08:00.
func (h *HeuristicSolver) placeLunch(cand *ShiftCandidate, states []slotState, req *models.ScheduleRequest) models.Block {
	earliest, latest := h.Policies.Lunch.LunchWindow(
		cand.StartSlot, cand.EndSlot, cand.LunchSlots, req.BusyDay, req.SlotMinutes)

	shiftLength := cand.EndSlot - cand.StartSlot
	target := cand.StartSlot + shiftLength/2 - cand.LunchSlots/2

	loopStart := earliest
	if cand.StartSlot < earlyCutoffSlot(req) && target > earliest {
		loopStart = min(target, latest)
	}

	bestStart := -1
	bestScore := 0.0
	for start := loopStart; start <= latest; start++ {
		end := start + cand.LunchSlots
		if end > cand.EndSlot {
			break
		}
		score := -float64(states[start].lunchStartCount) * 100
		for s := start; s < end; s++ {
			score -= float64(states[s].onLunch)
		}
		score -= float64(abs(start-target)) * 0.5

		if bestStart < 0 || score > bestScore {
			bestStart = start
			bestScore = score
		}
	}
	if bestStart < 0 {
		bestStart = min(earliest, cand.EndSlot-cand.LunchSlots)
	}
	return models.Block{StartSlot: bestStart, EndSlot: bestStart + cand.LunchSlots}
}

// placeBreaks anchors breaks per policy and staggers them against breaks
// already placed, within the variance band.
func (h *HeuristicSolver) placeBreaks(cand *ShiftCandidate, lunch *models.Block, states []slotState) []models.Block {
	breakSlots := policies.MinutesToSlots(h.Policies.Break.BreakDuration(), cand.SlotMinutes)
	targets := h.Policies.Break.BreakTargets(cand.StartSlot, cand.EndSlot, cand.BreakCount, lunch, cand.SlotMinutes)
	maxVariance := h.Policies.Break.MaxVarianceSlots()
	gap := h.Policies.Break.MinLunchGapSlots()

	var breaks []models.Block
	for _, target := range targets {
		bestStart := -1
		bestScore := 0.0
		for offset := -maxVariance; offset <= maxVariance; offset++ {
			start := target + offset
			block := models.Block{StartSlot: start, EndSlot: start + breakSlots}
			if !breakPlacementOK(block, cand.StartSlot, cand.EndSlot, lunch, breaks, gap) {
				continue
			}
			score := 0.0
			for s := start; s < start+breakSlots; s++ {
				score += float64(states[s].onFloor) * 0.1
				score -= float64(states[s].onBreak) * 5
			}
			score -= float64(abs(offset)) * 2
			if bestStart < 0 || score > bestScore {
				bestStart = start
				bestScore = score
			}
		}
		if bestStart < 0 {
			bestStart = target
		}
		breaks = append(breaks, models.Block{StartSlot: bestStart, EndSlot: bestStart + breakSlots})
	}
	return breaks
}

// commitOffFloor moves lunch and break slots out of the on-floor counts.
func (h *HeuristicSolver) commitOffFloor(a *models.ShiftAssignment, states []slotState) {
	if a.Lunch != nil {
		for s := a.Lunch.StartSlot; s < a.Lunch.EndSlot; s++ {
			states[s].onLunch++
			states[s].onFloor--
		}
		states[a.Lunch.StartSlot].lunchStartCount++
	}
	for _, b := range a.Breaks {
		for s := b.StartSlot; s < b.EndSlot; s++ {
			states[s].onBreak++
			states[s].onFloor--
		}
	}
}

// improvePlacements is phase C: slide a lunch or break by one slot when the
// move strictly increases weighted coverage and stays legal.
func (h *HeuristicSolver) improvePlacements(schedule *models.DaySchedule, req *models.ScheduleRequest, weights []float64) {
	coverage := schedule.CoverageTimeline()

	blockDelta := func(old, next models.Block) float64 {
		delta := 0.0
		for s := old.StartSlot; s < old.EndSlot; s++ {
			if !next.Contains(s) {
				delta += weights[s] // slot returns to the floor
			}
		}
		for s := next.StartSlot; s < next.EndSlot; s++ {
			if !old.Contains(s) {
				delta -= weights[s]
			}
		}
		return delta
	}

	for _, id := range sortedAssignmentIDs(schedule) {
		a := schedule.Assignments[id]

		if a.Lunch != nil {
			earliest, latest := h.Policies.Lunch.LunchWindow(
				a.StartSlot, a.EndSlot, a.Lunch.Slots(), req.BusyDay, req.SlotMinutes)
			for _, shift := range []int{-1, 1} {
				start := a.Lunch.StartSlot + shift
				if start < earliest || start > latest {
					continue
				}
				next := models.Block{StartSlot: start, EndSlot: start + a.Lunch.Slots()}
				if overlapsAny(next, a.Breaks, h.Policies.Break.MinLunchGapSlots()) {
					continue
				}
				// Break anchors follow the lunch; a slid lunch must not push
				// existing breaks out of their bands.
				newTargets := h.Policies.Break.BreakTargets(a.StartSlot, a.EndSlot, len(a.Breaks), &next, req.SlotMinutes)
				bandsOK := true
				for i, b := range a.Breaks {
					if i < len(newTargets) && abs(b.StartSlot-newTargets[i]) > h.Policies.Break.MaxVarianceSlots() {
						bandsOK = false
						break
					}
				}
				if !bandsOK {
					continue
				}
				if blockDelta(*a.Lunch, next) > 0 {
					applyBlockMove(coverage, *a.Lunch, next)
					*a.Lunch = next
					break
				}
			}
		}

		targets := h.Policies.Break.BreakTargets(a.StartSlot, a.EndSlot, len(a.Breaks), a.Lunch, req.SlotMinutes)
		for i := range a.Breaks {
			if i >= len(targets) {
				break
			}
			for _, shift := range []int{-1, 1} {
				start := a.Breaks[i].StartSlot + shift
				if abs(start-targets[i]) > h.Policies.Break.MaxVarianceSlots() {
					continue
				}
				next := models.Block{StartSlot: start, EndSlot: start + a.Breaks[i].Slots()}
				others := otherBreaks(a.Breaks, i)
				if !breakPlacementOK(next, a.StartSlot, a.EndSlot, a.Lunch, others, h.Policies.Break.MinLunchGapSlots()) {
					continue
				}
				if blockDelta(a.Breaks[i], next) > 0 {
					applyBlockMove(coverage, a.Breaks[i], next)
					a.Breaks[i] = next
					break
				}
			}
		}
	}
}

func sortedAssignmentIDs(schedule *models.DaySchedule) []string {
	ids := make([]string, 0, len(schedule.Assignments))
	for id := range schedule.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func otherBreaks(breaks []models.Block, skip int) []models.Block {
	var others []models.Block
	for i, b := range breaks {
		if i != skip {
			others = append(others, b)
		}
	}
	return others
}

func overlapsAny(b models.Block, blocks []models.Block, gap int) bool {
	padded := models.Block{StartSlot: b.StartSlot - gap, EndSlot: b.EndSlot + gap}
	for _, o := range blocks {
		if padded.Overlaps(o) {
			return true
		}
	}
	return false
}

func applyBlockMove(coverage []int, old, next models.Block) {
	for s := old.StartSlot; s < old.EndSlot; s++ {
		if !next.Contains(s) && s >= 0 && s < len(coverage) {
			coverage[s]++
		}
	}
	for s := next.StartSlot; s < next.EndSlot; s++ {
		if !old.Contains(s) && s >= 0 && s < len(coverage) {
			coverage[s]--
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
