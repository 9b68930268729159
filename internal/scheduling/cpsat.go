package scheduling

import (
	"context"
	"sort"
	"time"

	"workforce-scheduler/internal/cpsat"
	"workforce-scheduler/internal/demand"
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// OptimizationMode selects the objective weighting for the CP solve.
type OptimizationMode string

const (
	ModeMaximizeCoverage      OptimizationMode = "maximize_coverage"
	ModeMatchDemand           OptimizationMode = "match_demand"
	ModeMinimizeUndercoverage OptimizationMode = "minimize_undercoverage"
	ModeBalanced              OptimizationMode = "balanced"
)

// SolverConfig tunes the CP solve.
type SolverConfig struct {
	TimeLimitSeconds     float64          `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	Mode                 OptimizationMode `json:"optimization_mode" yaml:"optimization_mode"`
	CoverageWeight       int              `json:"coverage_weight" yaml:"coverage_weight"`
	DemandWeight         int              `json:"demand_weight" yaml:"demand_weight"`
	UndercoverageWeight  int              `json:"undercoverage_weight" yaml:"undercoverage_weight"`
	OvercoverageWeight   int              `json:"overcoverage_weight" yaml:"overcoverage_weight"`
	SoftPreferenceWeight int              `json:"soft_preference_weight" yaml:"soft_preference_weight"`
	EnforceMinDemand     bool             `json:"enforce_min_demand" yaml:"enforce_min_demand"`
}

// DefaultSolverConfig is the balanced profile with a 30-second budget.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		TimeLimitSeconds:     30,
		Mode:                 ModeBalanced,
		CoverageWeight:       30,
		DemandWeight:         40,
		UndercoverageWeight:  100,
		OvercoverageWeight:   10,
		SoftPreferenceWeight: 10,
	}
}

// resolvedWeights holds the concrete objective weights that resolve maps an
// optimization mode onto.
type resolvedWeights struct {
	coverage int64
	demand   int64
	under    int64
	over     int64
	pref     int64
}

func (c SolverConfig) resolve() resolvedWeights {
	w := resolvedWeights{
		coverage: int64(c.CoverageWeight),
		demand:   int64(c.DemandWeight),
		under:    int64(c.UndercoverageWeight),
		over:     int64(c.OvercoverageWeight),
		pref:     int64(c.SoftPreferenceWeight),
	}
	switch c.Mode {
	case ModeMaximizeCoverage:
		w.demand, w.under, w.over = 0, 0, 0
		if w.coverage == 0 {
			w.coverage = 1
		}
	case ModeMatchDemand:
		w.coverage, w.over = 0, 0
	case ModeMinimizeUndercoverage:
		w.coverage, w.over = 0, 0
		w.under *= 10
	}
	return w
}

// SolverResult is a CP solve outcome with the interpreted schedule.
type SolverResult struct {
	Schedule  *models.DaySchedule
	Status    cpsat.Status
	Objective int64
	SolveTime time.Duration
	Branches  int64
}

// IsSolution reports whether the result carries a usable schedule.
func (r SolverResult) IsSolution() bool {
	return r.Status.IsSolution() && r.Schedule != nil
}

// CPSolver formulates shift selection over placed candidates as a 0/1 model
// for the constraint engine: at-most-one candidate per associate, concave
// per-slot coverage value, capacity families guarding capped roles, and
// optional hard demand floors. Role layering reuses the shared role
// assigner after extraction.
type CPSolver struct {
	Policies policies.Set
	Config   SolverConfig
}

func NewCPSolver(p policies.Set, cfg SolverConfig) *CPSolver {
	return &CPSolver{Policies: p, Config: cfg}
}

// Solve runs the CP formulation. Candidates must be placed (lunch and breaks
// fixed); use Generator.GenerateAllPlaced.
func (s *CPSolver) Solve(
	ctx context.Context,
	req *models.ScheduleRequest,
	candidates map[string][]*ShiftCandidate,
	associates map[string]*models.Associate,
	curve *demand.Curve,
) SolverResult {
	totalSlots := req.TotalSlots()
	ids := sortedIDs(candidates)

	model := cpsat.NewModel(totalSlots, max(1, len(ids)))
	weights := s.Config.resolve()

	// Slot value curves. The marginal value of the k-th head at a slot is
	// constant up to the demand target and drops past it, which keeps every
	// row concave (the engine's bound depends on that).
	for slot := 0; slot < totalSlots; slot++ {
		var target int64 = -1
		var mult int64 = 1
		if curve != nil {
			target = int64(curve.TargetAt(slot))
			mult = int64(curve.PriorityAt(slot))
		}
		var cumulative int64
		if target >= 0 {
			cumulative = -weights.under * mult * target // value at zero coverage
		}
		model.SetSlotValue(slot, 0, cumulative)
		for c := 1; c <= len(ids); c++ {
			marginal := weights.coverage
			if target >= 0 {
				if int64(c) <= target {
					marginal += (weights.demand + weights.under) * mult
				} else {
					marginal -= weights.over
				}
			}
			cumulative += marginal
			model.SetSlotValue(slot, c, cumulative)
		}
	}

	// Capacity families keep capped-role-only associates within their caps:
	// one family per role for associates eligible for exactly that role, and
	// an aggregate family for associates with no picking overflow.
	soleFamily := make(map[models.JobRole]int)
	var cappedRoles []models.JobRole
	for _, role := range models.AllRoles() {
		if req.JobCaps[role] < models.PickingOverflowCap {
			cappedRoles = append(cappedRoles, role)
			limits := make([]int, totalSlots)
			for slot := range limits {
				limits[slot] = req.CapAt(slot, role)
			}
			soleFamily[role] = model.AddCapacity("sole:"+string(role), limits)
		}
	}
	noOverflowLimits := make([]int, totalSlots)
	for slot := range noOverflowLimits {
		total := 0
		for _, role := range cappedRoles {
			total += req.CapAt(slot, role)
		}
		noOverflowLimits[slot] = total
	}
	noOverflowFamily := model.AddCapacity("no-overflow", noOverflowLimits)

	var groups []candidateGroup

	for _, id := range ids {
		associate := associates[id]
		if associate == nil {
			continue
		}
		eligible := associate.EligibleRoles()

		var capUses []cpsat.CapUse
		if len(eligible) == 1 {
			if fam, ok := soleFamily[eligible[0]]; ok {
				capUses = append(capUses, cpsat.CapUse{Family: fam})
			}
		}
		if !associate.CanDoRole(models.RolePicking) {
			capUses = append(capUses, cpsat.CapUse{Family: noOverflowFamily})
		}

		prefScore := int64(0)
		for _, role := range eligible {
			switch associate.PreferenceFor(role) {
			case models.PreferencePrefer:
				prefScore++
			case models.PreferenceAvoid:
				prefScore--
			}
		}

		group := cpsat.Group{Name: id}
		for _, cand := range candidates[id] {
			onFloor := cand.OnFloorSlots()
			uses := make([]cpsat.CapUse, len(capUses))
			for i, u := range capUses {
				uses[i] = cpsat.CapUse{Family: u.Family, Slots: onFloor}
			}
			group.Options = append(group.Options, cpsat.Option{
				Name:    cand.AssociateID,
				Slots:   onFloor,
				Utility: int64(cand.WorkMinutes/60) + prefScore*weights.pref,
				Uses:    uses,
			})
		}
		model.AddGroup(group)
		groups = append(groups, candidateGroup{id: id, candidates: candidates[id]})
	}

	if s.Config.EnforceMinDemand && curve != nil {
		floors := make([]int, totalSlots)
		for slot := range floors {
			floors[slot] = curve.MinAt(slot)
		}
		model.Floors = floors
	}

	engine := &cpsat.Solver{TimeLimit: time.Duration(s.Config.TimeLimitSeconds * float64(time.Second))}
	result := engine.Solve(ctx, model)

	out := SolverResult{
		Status:    result.Status,
		Objective: result.Objective,
		SolveTime: result.Elapsed,
		Branches:  result.Branches,
	}
	if !result.Status.IsSolution() {
		return out
	}

	out.Schedule = s.extract(req, groups, result.Selected, associates)
	return out
}

// candidateGroup pairs an associate with their candidate list in the fixed
// model order.
type candidateGroup struct {
	id         string
	candidates []*ShiftCandidate
}

// extract materializes the selected candidates and layers roles on top.
func (s *CPSolver) extract(
	req *models.ScheduleRequest,
	groups []candidateGroup,
	selected []int,
	associates map[string]*models.Associate,
) *models.DaySchedule {
	schedule := models.NewDaySchedule(req)
	states := newSlotStates(req.TotalSlots())

	var chosen []*ShiftCandidate
	for gi, g := range groups {
		if gi >= len(selected) || selected[gi] < 0 {
			if a := associates[g.id]; a != nil && !a.AvailabilityOn(req.Date).IsOff() {
				schedule.MarkUnscheduled(g.id, "not selected by the optimizer")
			}
			continue
		}
		cand := g.candidates[selected[gi]]
		chosen = append(chosen, cand)
		for slot := cand.StartSlot; slot < cand.EndSlot; slot++ {
			states[slot].onFloor++
		}
	}
	for _, a := range req.Associates {
		if _, ok := schedule.Unscheduled[a.ID]; ok {
			continue
		}
		found := false
		for _, c := range chosen {
			if c.AssociateID == a.ID {
				found = true
				break
			}
		}
		if !found && !a.AvailabilityOn(req.Date).IsOff() {
			schedule.MarkUnscheduled(a.ID, "no feasible shift within availability and hour limits")
		}
	}

	sort.SliceStable(chosen, func(i, j int) bool {
		if chosen[i].StartSlot != chosen[j].StartSlot {
			return chosen[i].StartSlot < chosen[j].StartSlot
		}
		return chosen[i].AssociateID < chosen[j].AssociateID
	})

	for _, cand := range chosen {
		assignment := cand.Assignment(req)
		jobs, ok := assignShiftRoles(assignment, associates[cand.AssociateID], states, req)
		if !ok {
			schedule.MarkUnscheduled(cand.AssociateID, "no eligible role capacity for the shift")
			continue
		}
		assignment.Jobs = jobs
		commitRoles(jobs, states)
		schedule.Assignments[cand.AssociateID] = assignment
	}
	return schedule
}
