package scheduling

import (
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// Scheduler is the high-level single-day entry point: candidate generation
// plus the heuristic solver under one policy set.
type Scheduler struct {
	Policies  policies.Set
	Generator *Generator
	Solver    *HeuristicSolver
	StepSlots int
}

func NewScheduler(p policies.Set) *Scheduler {
	return &Scheduler{
		Policies:  p,
		Generator: NewGenerator(p),
		Solver:    NewHeuristicSolver(p),
		StepSlots: 2,
	}
}

// GenerateSchedule produces a complete schedule for one day.
func (s *Scheduler) GenerateSchedule(req *models.ScheduleRequest) (*models.DaySchedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.Policies.Validate(); err != nil {
		return nil, err
	}

	associatesByID := make(map[string]*models.Associate, len(req.Associates))
	for _, a := range req.Associates {
		associatesByID[a.ID] = a
	}
	candidates := s.Generator.GenerateAll(req, s.StepSlots)
	return s.Solver.Solve(req, candidates, associatesByID), nil
}

// DayStats summarizes a single-day schedule.
type DayStats struct {
	TotalAssociates   int     `json:"total_associates"`
	Scheduled         int     `json:"scheduled"`
	Unscheduled       int     `json:"unscheduled"`
	TotalWorkMinutes  int     `json:"total_work_minutes"`
	TotalLunchMinutes int     `json:"total_lunch_minutes"`
	TotalBreakMinutes int     `json:"total_break_minutes"`
	MinCoverage       int     `json:"min_coverage"`
	MaxCoverage       int     `json:"max_coverage"`
	AvgCoverage       float64 `json:"avg_coverage"`
}

// GenerateScheduleWithStats also returns summary statistics.
func (s *Scheduler) GenerateScheduleWithStats(req *models.ScheduleRequest) (*models.DaySchedule, DayStats, error) {
	schedule, err := s.GenerateSchedule(req)
	if err != nil {
		return nil, DayStats{}, err
	}
	return schedule, ComputeDayStats(schedule, req), nil
}

// ComputeDayStats derives reporting statistics from a finished day.
func ComputeDayStats(schedule *models.DaySchedule, req *models.ScheduleRequest) DayStats {
	stats := DayStats{
		TotalAssociates: len(req.Associates),
		Scheduled:       len(schedule.Assignments),
	}
	stats.Unscheduled = stats.TotalAssociates - stats.Scheduled
	for _, a := range schedule.Assignments {
		stats.TotalWorkMinutes += a.WorkMinutes()
		stats.TotalLunchMinutes += a.LunchMinutes()
		stats.TotalBreakMinutes += a.BreakMinutes()
	}

	timeline := schedule.CoverageTimeline()
	if len(timeline) > 0 {
		stats.MinCoverage = timeline[0]
		sum := 0
		for _, c := range timeline {
			stats.MinCoverage = min(stats.MinCoverage, c)
			stats.MaxCoverage = max(stats.MaxCoverage, c)
			sum += c
		}
		stats.AvgCoverage = float64(sum) / float64(len(timeline))
	}
	return stats
}
