package scheduling

import "workforce-scheduler/internal/models"

// DaySolver generates a day schedule from pre-generated candidates. The
// heuristic solver satisfies it; the CP-backed solver has its own Solve with
// placed candidates and a demand curve and does not.
type DaySolver interface {
	SolveWithOptions(
		req *models.ScheduleRequest,
		candidates map[string][]*ShiftCandidate,
		associates map[string]*models.Associate,
		opts SolveOptions,
	) *models.DaySchedule
}

var _ DaySolver = (*HeuristicSolver)(nil)
