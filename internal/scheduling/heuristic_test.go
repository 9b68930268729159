package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-scheduler/internal/demo"
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
	"workforce-scheduler/internal/validation"
)

func solveDay(t *testing.T, req *models.ScheduleRequest) (*models.DaySchedule, validation.Result) {
	t.Helper()
	set := policies.Defaults()
	scheduler := NewScheduler(set)
	schedule, err := scheduler.GenerateSchedule(req)
	require.NoError(t, err)

	byID := make(map[string]*models.Associate, len(req.Associates))
	for _, a := range req.Associates {
		byID[a.ID] = a
	}
	return schedule, validation.New(set).Validate(schedule, req, byID)
}

func TestSingleAssociateSixHourShift(t *testing.T) {
	a := fullTimeAssociate("A001", 0, 68)
	a.MaxMinutesPerDay = 360
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid, "violations: %v", result.Violations)

	require.Contains(t, schedule.Assignments, "A001")
	s := schedule.Assignments["A001"]

	// 360 minutes of work sits exactly at the short-lunch edge: 30-minute
	// lunch and one 15-minute break, so 345 minutes on the floor.
	assert.Equal(t, 360, s.WorkMinutes())
	assert.Equal(t, 30, s.LunchMinutes())
	require.Len(t, s.Breaks, 1)
	assert.Equal(t, 15, s.BreakMinutes())
	assert.Equal(t, 345, s.OnFloorMinutes())
}

func TestTwoAssociatesRoleCapTie(t *testing.T) {
	gmdOnly := func(id string) *models.Associate {
		a := fullTimeAssociate(id, 0, 68)
		a.AllowedRoles = map[models.JobRole]bool{
			models.RoleGMDSM:   true,
			models.RolePicking: true,
		}
		return a
	}
	a1, a2 := gmdOnly("A001"), gmdOnly("A002")
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a1, a2})
	req.JobCaps[models.RoleGMDSM] = 1

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid, "violations: %v", result.Violations)
	require.Len(t, schedule.Assignments, 2)

	// At every slot where both are on floor, exactly one holds GMD and the
	// other overflows into picking.
	for slot := 0; slot < req.TotalSlots(); slot++ {
		gmd := schedule.RoleCoverageAt(slot, models.RoleGMDSM)
		assert.LessOrEqual(t, gmd, 1, "slot %d", slot)
		if schedule.CoverageAt(slot) == 2 {
			assert.Equal(t, 1, schedule.RoleCoverageAt(slot, models.RolePicking), "slot %d", slot)
		}
	}
}

func TestRoleCapWithoutOverflowDropsSecond(t *testing.T) {
	gmdStrict := func(id string) *models.Associate {
		a := fullTimeAssociate(id, 0, 68)
		a.AllowedRoles = map[models.JobRole]bool{models.RoleGMDSM: true}
		return a
	}
	a1, a2 := gmdStrict("A001"), gmdStrict("A002")
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a1, a2})
	req.JobCaps[models.RoleGMDSM] = 1

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid, "violations: %v", result.Violations)
	assert.Len(t, schedule.Assignments, 1)
	assert.Len(t, schedule.Unscheduled, 1)
}

func TestOffDayAssociate(t *testing.T) {
	a := models.NewAssociate("A001", "Alice")
	a.Availability[models.DateKey(testDate())] = models.OffDay()
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid)
	assert.Empty(t, schedule.Assignments)
	assert.Empty(t, schedule.Unscheduled, "an off day is not an infeasibility")
}

func TestInfeasibleAvailabilityWarnsNotViolates(t *testing.T) {
	a := fullTimeAssociate("A001", 0, 15) // 3.75 h < 4 h minimum
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid)
	assert.Empty(t, schedule.Assignments)
	assert.Contains(t, schedule.Unscheduled, "A001")
}

func TestSmokeSchedulesValidate(t *testing.T) {
	for _, count := range []int{10, 30, 80} {
		associates := demo.SampleAssociates(count, []time.Time{testDate()}, 42)
		req := models.NewScheduleRequest(testDate(), associates)

		schedule, result := solveDay(t, req)
		assert.True(t, result.IsValid, "count=%d violations: %v", count, result.Violations)
		assert.NotEmpty(t, schedule.Assignments, "count=%d", count)
	}
}

func TestBusyDaySmoke(t *testing.T) {
	associates := demo.SampleAssociates(20, []time.Time{testDate()}, 42)
	req := models.NewScheduleRequest(testDate(), associates)
	req.BusyDay = true

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid, "violations: %v", result.Violations)
	assert.NotEmpty(t, schedule.Assignments)
}

func TestSolveDeterministic(t *testing.T) {
	solveOnce := func() []byte {
		associates := demo.SampleAssociates(12, []time.Time{testDate()}, 7)
		req := models.NewScheduleRequest(testDate(), associates)
		req.Seed = 7
		schedule, _ := solveDay(t, req)
		data, err := schedule.Encode()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, solveOnce(), solveOnce(), "same seed must reproduce byte-identical output")
}

func TestShiftStartCapsRespected(t *testing.T) {
	var associates []*models.Associate
	for i := 0; i < 6; i++ {
		associates = append(associates, fullTimeAssociate(fmt.Sprintf("A%03d", i+1), 0, 68))
	}
	req := models.NewScheduleRequest(testDate(), associates)
	req.ShiftStarts = []models.ShiftStartConfig{
		{StartSlot: 0, Label: "05:00", TargetCount: 2, MaxCount: 2},
	}

	schedule, result := solveDay(t, req)
	assert.True(t, result.IsValid, "violations: %v", result.Violations)

	startsAtOpen := 0
	for _, a := range schedule.Assignments {
		if a.StartSlot == 0 {
			startsAtOpen++
		}
	}
	assert.LessOrEqual(t, startsAtOpen, 2)
}

func TestRoleCapMonotonicity(t *testing.T) {
	run := func(cap int) int {
		gmdStrict := func(id string) *models.Associate {
			a := fullTimeAssociate(id, 0, 68)
			a.AllowedRoles = map[models.JobRole]bool{models.RoleGMDSM: true}
			return a
		}
		req := models.NewScheduleRequest(testDate(), []*models.Associate{gmdStrict("A001"), gmdStrict("A002")})
		req.JobCaps[models.RoleGMDSM] = cap
		schedule, result := solveDay(t, req)
		require.True(t, result.IsValid)

		total := 0
		for _, c := range schedule.CoverageTimeline() {
			total += c
		}
		return total
	}

	assert.GreaterOrEqual(t, run(2), run(1), "raising a role cap never lowers coverage")
}
