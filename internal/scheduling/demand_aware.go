package scheduling

import (
	"context"

	"go.uber.org/zap"

	"workforce-scheduler/internal/demand"
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// SolverType selects the engine for demand-aware solves.
type SolverType string

const (
	SolverHeuristic SolverType = "heuristic"
	SolverCPSAT     SolverType = "cpsat"
	SolverHybrid    SolverType = "hybrid"
)

// DemandAwareConfig configures the demand-aware weekly scheduler.
type DemandAwareConfig struct {
	SolverType         SolverType
	SolverConfig       SolverConfig
	AutoGenerateDemand bool
	WeekdayProfile     *demand.Profile
	WeekendProfile     *demand.Profile
	TrackMetrics       bool
}

// DefaultDemandAwareConfig runs hybrid with metrics tracking and
// auto-generated demand scaled to the workforce.
func DefaultDemandAwareConfig() DemandAwareConfig {
	return DemandAwareConfig{
		SolverType:         SolverHybrid,
		SolverConfig:       DefaultSolverConfig(),
		AutoGenerateDemand: true,
		TrackMetrics:       true,
	}
}

// DaySolverStats records which engine produced a day and how it went.
type DaySolverStats struct {
	Method    string `json:"method"`
	Status    string `json:"status,omitempty"`
	Objective int64  `json:"objective,omitempty"`
	SolveMs   int64  `json:"solve_ms,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// WeeklyResult is the outcome of a demand-aware weekly solve.
type WeeklyResult struct {
	Schedule          *models.WeeklySchedule     `json:"schedule"`
	DemandMetrics     map[string]*demand.Metrics `json:"demand_metrics"` // keyed by DateKey
	SolverStats       map[string]DaySolverStats  `json:"solver_stats"`
	OverallMatchScore float64                    `json:"overall_match_score"`
}

// DemandAwareScheduler is the weekly coordinator with demand matching and a
// CP engine option. The hybrid strategy runs CP first and falls back to the
// heuristic when the engine returns no usable incumbent.
type DemandAwareScheduler struct {
	Policies  policies.Set
	Config    DemandAwareConfig
	Generator *Generator
	Heuristic *HeuristicSolver
	CP        *CPSolver
	StepSlots int
	Logger    *zap.Logger
}

func NewDemandAwareScheduler(p policies.Set, cfg DemandAwareConfig) *DemandAwareScheduler {
	return &DemandAwareScheduler{
		Policies:  p,
		Config:    cfg,
		Generator: NewGenerator(p),
		Heuristic: NewHeuristicSolver(p),
		CP:        NewCPSolver(p, cfg.SolverConfig),
		StepSlots: 2,
		Logger:    zap.NewNop(),
	}
}

// Generate runs the demand-aware weekly solve. A nil weeklyDemand uses the
// configured demand or an auto-generated one scaled to the workforce size.
func (d *DemandAwareScheduler) Generate(
	ctx context.Context,
	req *models.WeeklyScheduleRequest,
	weeklyDemand *demand.WeeklyDemand,
) (*WeeklyResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := d.Policies.Validate(); err != nil {
		return nil, err
	}

	if weeklyDemand == nil && d.Config.AutoGenerateDemand {
		weeklyDemand = d.autoDemand(req)
	}

	associatesByID := make(map[string]*models.Associate, len(req.Associates))
	for _, a := range req.Associates {
		associatesByID[a.ID] = a
	}
	states := initWeekStates(req.Associates)
	enforcer := &PatternEnforcer{Pattern: req.Pattern, RequiredDaysOff: req.RequiredDaysOff}
	balancer := &FairnessBalancer{Config: req.Fairness}
	weeklyScheduler := &WeeklyScheduler{Policies: d.Policies}

	result := &WeeklyResult{
		Schedule:      &models.WeeklySchedule{StartDate: req.StartDate, EndDate: req.EndDate},
		DemandMetrics: make(map[string]*demand.Metrics),
		SolverStats:   make(map[string]DaySolverStats),
	}

	allDates := req.Dates()
	for i, date := range allDates {
		remaining := allDates[i:]
		key := models.DateKey(date)

		var curve *demand.Curve
		if weeklyDemand != nil {
			curve = weeklyDemand.ForDate(date, req.SlotMinutes)
		}

		working := weeklyScheduler.workingAssociates(req, date, states, remaining, allDates, enforcer, balancer)
		dayReq := req.DayRequest(date)

		if len(working) == 0 {
			result.Schedule.Days = append(result.Schedule.Days, models.NewDaySchedule(dayReq))
			continue
		}
		dayReq.Associates = weeklyScheduler.adjustForWeeklyLimits(working, states)

		biases := make(map[string]float64, len(dayReq.Associates))
		for _, a := range dayReq.Associates {
			biases[a.ID] = balancer.BiasFor(states[a.ID], req.RequiredDaysOff)
		}

		day, stats := d.solveDay(ctx, dayReq, associatesByID, curve, biases)
		result.SolverStats[key] = stats

		if curve != nil && d.Config.TrackMetrics {
			result.DemandMetrics[key] = demand.CalculateMetrics(curve, day.CoverageTimeline(), req.SlotMinutes)
		}

		weeklyScheduler.updateStates(day, date, states, working)
		result.Schedule.Days = append(result.Schedule.Days, day)

		d.Logger.Info("day solved",
			zap.String("date", key),
			zap.String("method", stats.Method),
			zap.Int("scheduled", len(day.Assignments)),
		)
	}

	result.Schedule.Fairness = fairnessFromStates(states, req.Fairness)

	if len(result.DemandMetrics) > 0 {
		var sum float64
		for _, m := range result.DemandMetrics {
			sum += m.MatchScore
		}
		result.OverallMatchScore = sum / float64(len(result.DemandMetrics))
	}
	return result, nil
}

// solveDay runs one day through the configured engine.
func (d *DemandAwareScheduler) solveDay(
	ctx context.Context,
	dayReq *models.ScheduleRequest,
	associatesByID map[string]*models.Associate,
	curve *demand.Curve,
	biases map[string]float64,
) (*models.DaySchedule, DaySolverStats) {
	heuristicSolve := func() *models.DaySchedule {
		candidates := d.Generator.GenerateAll(dayReq, d.StepSlots)
		return d.Heuristic.SolveWithOptions(dayReq, candidates, associatesByID, SolveOptions{
			Demand: curve,
			Biases: biases,
		})
	}

	switch d.Config.SolverType {
	case SolverHeuristic:
		return heuristicSolve(), DaySolverStats{Method: "heuristic"}

	case SolverCPSAT:
		placed := d.Generator.GenerateAllPlaced(dayReq, d.StepSlots)
		res := d.CP.Solve(ctx, dayReq, placed, associatesByID, curve)
		stats := DaySolverStats{
			Method:    "cpsat",
			Status:    string(res.Status),
			Objective: res.Objective,
			SolveMs:   res.SolveTime.Milliseconds(),
		}
		if res.IsSolution() {
			return res.Schedule, stats
		}
		// Pure cpsat without a solution still reports the status; the
		// schedule comes back empty rather than falling back.
		empty := models.NewDaySchedule(dayReq)
		for _, a := range dayReq.Associates {
			empty.MarkUnscheduled(a.ID, "solver returned "+string(res.Status))
		}
		return empty, stats

	default: // hybrid
		placed := d.Generator.GenerateAllPlaced(dayReq, d.StepSlots)
		res := d.CP.Solve(ctx, dayReq, placed, associatesByID, curve)
		stats := DaySolverStats{
			Method:    "hybrid",
			Status:    string(res.Status),
			Objective: res.Objective,
			SolveMs:   res.SolveTime.Milliseconds(),
		}
		if res.IsSolution() {
			return res.Schedule, stats
		}
		stats.Fallback = true
		return heuristicSolve(), stats
	}
}

// autoDemand scales the default profiles to the workforce size.
func (d *DemandAwareScheduler) autoDemand(req *models.WeeklyScheduleRequest) *demand.WeeklyDemand {
	weekday := d.Config.WeekdayProfile
	if weekday == nil {
		weekday = demand.WeekdayProfile()
	}
	weekend := d.Config.WeekendProfile
	if weekend == nil {
		weekend = demand.WeekendProfile()
	}

	scale := float64(len(req.Associates)) / 10
	if scale < 0.5 {
		scale = 0.5
	}
	if scale > 2 {
		scale = 2
	}

	w := demand.NewWeeklyDemand()
	for _, date := range req.Dates() {
		profile := weekday
		if isWeekend(date) {
			profile = weekend
		}
		w.ApplyProfile(date, profile.Scale(scale), req.SlotMinutes)
	}
	return w
}
