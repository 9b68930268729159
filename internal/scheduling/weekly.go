package scheduling

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

// WeekState tracks one associate's running totals through a weekly solve.
type WeekState struct {
	AssociateID      string
	MinutesScheduled int
	DaysWorked       []time.Time
	DaysOff          []time.Time
	MaxWeeklyMinutes int
}

func (s *WeekState) RemainingMinutes() int {
	if s.MinutesScheduled >= s.MaxWeeklyMinutes {
		return 0
	}
	return s.MaxWeeklyMinutes - s.MinutesScheduled
}

func (s *WeekState) AddShift(d time.Time, workMinutes int) {
	s.MinutesScheduled += workMinutes
	for _, w := range s.DaysWorked {
		if w.Equal(d) {
			return
		}
	}
	s.DaysWorked = append(s.DaysWorked, d)
}

func (s *WeekState) AddDayOff(d time.Time) {
	for _, o := range s.DaysOff {
		if o.Equal(d) {
			return
		}
	}
	s.DaysOff = append(s.DaysOff, d)
}

func (s *WeekState) workedOn(d time.Time) bool {
	for _, w := range s.DaysWorked {
		if w.Equal(d) {
			return true
		}
	}
	return false
}

// PatternEnforcer decides which days must be rest days to satisfy the
// configured days-off pattern and the required rest-day count.
type PatternEnforcer struct {
	Pattern         models.DaysOffPattern
	RequiredDaysOff int
}

// ShouldBeDayOff reports whether scheduling the associate on this date would
// make the pattern unsatisfiable with the days that remain.
func (e *PatternEnforcer) ShouldBeDayOff(state *WeekState, d time.Time, remaining, all []time.Time) bool {
	if e.Pattern == models.PatternNone {
		return e.mustRestForQuota(state, remaining)
	}
	if e.mustRestForQuota(state, remaining) {
		return true
	}

	switch e.Pattern {
	case models.PatternTwoConsecutive:
		return e.checkTwoConsecutive(state, d, remaining)
	case models.PatternOneWeekendDay:
		return e.checkWeekendDay(state, d, remaining)
	case models.PatternEveryOtherDay:
		return state.workedOn(d.AddDate(0, 0, -1))
	}
	return false
}

// mustRestForQuota forces rest when the remaining days are all needed to
// reach the required count.
func (e *PatternEnforcer) mustRestForQuota(state *WeekState, remaining []time.Time) bool {
	needed := e.RequiredDaysOff - len(state.DaysOff)
	return needed > 0 && len(remaining) <= needed
}

func (e *PatternEnforcer) checkTwoConsecutive(state *WeekState, d time.Time, remaining []time.Time) bool {
	if hasConsecutivePair(state.DaysOff) {
		return false
	}
	// A day adjacent to an existing rest day completes the pair.
	for _, off := range state.DaysOff {
		diff := int(d.Sub(off).Hours() / 24)
		if diff == 1 || diff == -1 {
			return true
		}
	}
	// Out of runway: the last two days must both be rest days.
	if len(state.DaysOff) == 0 && len(remaining) <= 2 {
		return true
	}
	return false
}

func (e *PatternEnforcer) checkWeekendDay(state *WeekState, d time.Time, remaining []time.Time) bool {
	for _, off := range state.DaysOff {
		if isWeekend(off) {
			return false
		}
	}
	if !isWeekend(d) {
		return false
	}
	weekendsLeft := 0
	for _, r := range remaining {
		if isWeekend(r) {
			weekendsLeft++
		}
	}
	return weekendsLeft == 1
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func hasConsecutivePair(days []time.Time) bool {
	for i := range days {
		for j := range days {
			if i != j && days[j].Sub(days[i]) == 24*time.Hour {
				return true
			}
		}
	}
	return false
}

// FairnessBalancer turns running weekly totals into per-associate selection
// biases and skip decisions.
type FairnessBalancer struct {
	Config models.FairnessConfig
}

// BiasFor is the fairness term added per work-minute in phase A:
// alpha*(target-minutes)/target + beta*(required_off-days_worked), with the
// weights as alpha and beta, scaled down to stay a tie-breaker.
func (b *FairnessBalancer) BiasFor(state *WeekState, requiredDaysOff int) float64 {
	target := b.Config.TargetWeeklyMinutes
	if target <= 0 {
		target = state.MaxWeeklyMinutes
	}
	if target <= 0 {
		return 0
	}
	hoursTerm := b.Config.WeightHoursBalance * float64(target-state.MinutesScheduled) / float64(target)
	daysTerm := b.Config.WeightDaysBalance * float64(requiredDaysOff-len(state.DaysWorked))
	return (hoursTerm + daysTerm) / 100
}

// ShouldSkip holds an associate out for a day when they are far ahead on
// hours and someone else is far behind.
func (b *FairnessBalancer) ShouldSkip(state *WeekState, all map[string]*WeekState, remainingDays int) bool {
	if len(all) == 0 || remainingDays <= 0 {
		return false
	}
	total, minMinutes := 0, int(^uint(0)>>1)
	for _, s := range all {
		total += s.MinutesScheduled
		if s.MinutesScheduled < minMinutes {
			minMinutes = s.MinutesScheduled
		}
	}
	avg := float64(total) / float64(len(all))

	if float64(state.MinutesScheduled) > avg+b.Config.MaxHoursVariance {
		if avg-float64(minMinutes) > b.Config.MaxHoursVariance/2 {
			return true
		}
	}
	return false
}

// WeeklyScheduler coordinates day solves across a period under weekly hour
// caps, days-off patterns and fairness targeting. Days are solved in order
// because weekly caps couple them.
type WeeklyScheduler struct {
	Policies  policies.Set
	Generator *Generator
	Solver    *HeuristicSolver
	StepSlots int
	Logger    *zap.Logger
}

func NewWeeklyScheduler(p policies.Set) *WeeklyScheduler {
	return &WeeklyScheduler{
		Policies:  p,
		Generator: NewGenerator(p),
		Solver:    NewHeuristicSolver(p),
		StepSlots: 2,
		Logger:    zap.NewNop(),
	}
}

// Generate produces the full weekly schedule.
func (w *WeeklyScheduler) Generate(req *models.WeeklyScheduleRequest) (*models.WeeklySchedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := w.Policies.Validate(); err != nil {
		return nil, err
	}

	associatesByID := make(map[string]*models.Associate, len(req.Associates))
	for _, a := range req.Associates {
		associatesByID[a.ID] = a
	}
	states := initWeekStates(req.Associates)

	enforcer := &PatternEnforcer{Pattern: req.Pattern, RequiredDaysOff: req.RequiredDaysOff}
	balancer := &FairnessBalancer{Config: req.Fairness}

	weekly := &models.WeeklySchedule{StartDate: req.StartDate, EndDate: req.EndDate}
	allDates := req.Dates()

	for i, d := range allDates {
		remaining := allDates[i:]

		working := w.workingAssociates(req, d, states, remaining, allDates, enforcer, balancer)
		dayReq := req.DayRequest(d)

		if len(working) == 0 {
			weekly.Days = append(weekly.Days, models.NewDaySchedule(dayReq))
			continue
		}

		adjusted := w.adjustForWeeklyLimits(working, states)
		dayReq.Associates = adjusted

		candidates := w.Generator.GenerateAll(dayReq, w.StepSlots)
		biases := make(map[string]float64, len(adjusted))
		for _, a := range adjusted {
			biases[a.ID] = balancer.BiasFor(states[a.ID], req.RequiredDaysOff)
		}

		day := w.Solver.SolveWithOptions(dayReq, candidates, associatesByID, SolveOptions{Biases: biases})
		w.updateStates(day, d, states, working)
		weekly.Days = append(weekly.Days, day)

		w.Logger.Debug("day solved",
			zap.String("date", models.DateKey(d)),
			zap.Int("working", len(working)),
			zap.Int("scheduled", len(day.Assignments)),
		)
	}

	weekly.Fairness = fairnessFromStates(states, req.Fairness)
	return weekly, nil
}

func initWeekStates(associates []*models.Associate) map[string]*WeekState {
	states := make(map[string]*WeekState, len(associates))
	for _, a := range associates {
		states[a.ID] = &WeekState{AssociateID: a.ID, MaxWeeklyMinutes: a.MaxMinutesPerWeek}
	}
	return states
}

// workingAssociates filters to those who can and should work the date.
func (w *WeeklyScheduler) workingAssociates(
	req *models.WeeklyScheduleRequest,
	d time.Time,
	states map[string]*WeekState,
	remaining, all []time.Time,
	enforcer *PatternEnforcer,
	balancer *FairnessBalancer,
) []*models.Associate {
	var working []*models.Associate
	for _, a := range req.Associates {
		state := states[a.ID]

		if a.AvailabilityOn(d).IsOff() {
			state.AddDayOff(d)
			continue
		}
		if state.RemainingMinutes() < w.Policies.Shift.MinWorkMinutes() {
			state.AddDayOff(d)
			continue
		}
		if enforcer.ShouldBeDayOff(state, d, remaining, all) {
			state.AddDayOff(d)
			continue
		}
		if balancer.ShouldSkip(state, states, len(remaining)) {
			// Not a committed rest day, just held out today.
			continue
		}
		working = append(working, a)
	}
	return working
}

// adjustForWeeklyLimits folds remaining weekly minutes into the daily cap so
// the candidate generator drops anything that would breach the weekly limit.
func (w *WeeklyScheduler) adjustForWeeklyLimits(working []*models.Associate, states map[string]*WeekState) []*models.Associate {
	var adjusted []*models.Associate
	for _, a := range working {
		dailyMax := min(a.MaxMinutesPerDay, states[a.ID].RemainingMinutes())
		if dailyMax < w.Policies.Shift.MinWorkMinutes() {
			continue
		}
		adjusted = append(adjusted, a.WithDailyMax(dailyMax))
	}
	return adjusted
}

func (w *WeeklyScheduler) updateStates(day *models.DaySchedule, d time.Time, states map[string]*WeekState, working []*models.Associate) {
	for id, assignment := range day.Assignments {
		if state, ok := states[id]; ok {
			state.AddShift(d, assignment.WorkMinutes())
		}
	}
	for _, a := range working {
		if _, ok := day.Assignments[a.ID]; !ok {
			states[a.ID].AddDayOff(d)
		}
	}
}

func fairnessFromStates(states map[string]*WeekState, cfg models.FairnessConfig) *models.FairnessMetrics {
	minutes := make(map[string]int, len(states))
	days := make(map[string]int, len(states))
	for id, s := range states {
		minutes[id] = s.MinutesScheduled
		days[id] = len(s.DaysWorked)
	}
	return models.ComputeFairness(minutes, days, cfg)
}

// Stats summarizes a weekly schedule for reporting.
type WeeklyStats struct {
	TotalAssociates int
	TotalShifts     int
	TotalWorkHours  float64
	CoverageByDay   map[string]CoverageStats
}

// CoverageStats is the coverage envelope for one day.
type CoverageStats struct {
	Min int
	Max int
	Avg float64
}

// Summarize computes reporting statistics for a finished weekly schedule.
func Summarize(schedule *models.WeeklySchedule, req *models.WeeklyScheduleRequest) WeeklyStats {
	stats := WeeklyStats{
		TotalAssociates: len(req.Associates),
		CoverageByDay:   make(map[string]CoverageStats, len(schedule.Days)),
	}
	var totalMinutes int
	for _, day := range schedule.Days {
		stats.TotalShifts += len(day.Assignments)
		for _, a := range day.Assignments {
			totalMinutes += a.WorkMinutes()
		}
		timeline := day.CoverageTimeline()
		if len(timeline) == 0 {
			continue
		}
		cs := CoverageStats{Min: timeline[0], Max: timeline[0]}
		sum := 0
		for _, c := range timeline {
			cs.Min = min(cs.Min, c)
			cs.Max = max(cs.Max, c)
			sum += c
		}
		cs.Avg = float64(sum) / float64(len(timeline))
		stats.CoverageByDay[models.DateKey(day.Date)] = cs
	}
	stats.TotalWorkHours = float64(totalMinutes) / 60
	return stats
}

// String renders the one-line summary used in logs.
func (s WeeklyStats) String() string {
	return fmt.Sprintf("%d shifts, %.1f work hours across %d days",
		s.TotalShifts, s.TotalWorkHours, len(s.CoverageByDay))
}
