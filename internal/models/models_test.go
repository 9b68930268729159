package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func TestAvailabilityOffDay(t *testing.T) {
	off := OffDay()
	assert.True(t, off.IsOff())
	assert.Equal(t, 0, off.SlotCount())

	window := Availability{StartSlot: 4, EndSlot: 36}
	assert.False(t, window.IsOff())
	assert.Equal(t, 32, window.SlotCount())

	degenerate := Availability{StartSlot: 10, EndSlot: 10}
	assert.True(t, degenerate.IsOff())
}

func TestAssociateEligibleRoles(t *testing.T) {
	a := NewAssociate("A001", "Alice")
	a.CannotDoRoles[RoleBackroom] = true
	delete(a.AllowedRoles, RoleSR)

	roles := a.EligibleRoles()
	assert.NotContains(t, roles, RoleBackroom)
	assert.NotContains(t, roles, RoleSR)
	assert.Contains(t, roles, RolePicking)
	assert.Contains(t, roles, RoleGMDSM)

	assert.False(t, a.CanDoRole(RoleBackroom))
	assert.True(t, a.CanDoRole(RolePicking))
}

func TestAssociateAvailabilityLookup(t *testing.T) {
	a := NewAssociate("A001", "Alice")
	a.Availability[DateKey(testDate())] = Availability{StartSlot: 0, EndSlot: 40}

	assert.Equal(t, 40, a.AvailabilityOn(testDate()).EndSlot)
	assert.True(t, a.AvailabilityOn(testDate().AddDate(0, 0, 1)).IsOff(), "unknown date is a day off")
}

func newShift(start, end int, lunch *Block, breaks ...Block) *ShiftAssignment {
	return &ShiftAssignment{
		AssociateID: "A001",
		Date:        testDate(),
		StartSlot:   start,
		EndSlot:     end,
		Lunch:       lunch,
		Breaks:      breaks,
		SlotMinutes: 15,
	}
}

func TestShiftMinuteArithmetic(t *testing.T) {
	// 26-slot span, 2-slot lunch, 1-slot break:
	// span 390 = work 360 + lunch 30; on floor 345.
	s := newShift(0, 26, &Block{StartSlot: 12, EndSlot: 14}, Block{StartSlot: 6, EndSlot: 7})

	assert.Equal(t, 390, s.TotalShiftMinutes())
	assert.Equal(t, 30, s.LunchMinutes())
	assert.Equal(t, 15, s.BreakMinutes())
	assert.Equal(t, 360, s.WorkMinutes())
	assert.Equal(t, 345, s.OnFloorMinutes())

	// Work + lunch always equals the span.
	assert.Equal(t, s.TotalShiftMinutes(), s.WorkMinutes()+s.LunchMinutes())
}

func TestOnFloor(t *testing.T) {
	s := newShift(4, 30, &Block{StartSlot: 16, EndSlot: 18}, Block{StartSlot: 10, EndSlot: 11})

	assert.False(t, s.OnFloor(3), "before shift")
	assert.True(t, s.OnFloor(4))
	assert.False(t, s.OnFloor(16), "on lunch")
	assert.False(t, s.OnFloor(10), "on break")
	assert.True(t, s.OnFloor(18), "back from lunch")
	assert.False(t, s.OnFloor(30), "after shift")
}

func TestWorkPeriodsSplitAroundOffBlocks(t *testing.T) {
	s := newShift(0, 26, &Block{StartSlot: 12, EndSlot: 14}, Block{StartSlot: 6, EndSlot: 7})

	periods := s.WorkPeriods()
	require.Len(t, periods, 3)
	assert.Equal(t, Block{StartSlot: 0, EndSlot: 6}, periods[0])
	assert.Equal(t, Block{StartSlot: 7, EndSlot: 12}, periods[1])
	assert.Equal(t, Block{StartSlot: 14, EndSlot: 26}, periods[2])

	// Period slots equal on-floor slots.
	total := 0
	for _, p := range periods {
		total += p.Slots()
	}
	assert.Equal(t, s.OnFloorMinutes()/15, total)
}

func TestRoleAt(t *testing.T) {
	s := newShift(0, 26, nil)
	s.Jobs = []JobAssignment{
		{Role: RoleGMDSM, Block: Block{StartSlot: 0, EndSlot: 10}},
		{Role: RolePicking, Block: Block{StartSlot: 10, EndSlot: 26}},
	}
	assert.Equal(t, RoleGMDSM, s.RoleAt(5))
	assert.Equal(t, RolePicking, s.RoleAt(20))
	assert.Equal(t, JobRole(""), s.RoleAt(30))
}

func TestDayScheduleCoverage(t *testing.T) {
	req := NewScheduleRequest(testDate(), nil)
	schedule := NewDaySchedule(req)
	assert.Equal(t, 68, schedule.TotalSlots())

	schedule.Assignments["A001"] = newShift(0, 20, nil)
	schedule.Assignments["A002"] = newShift(10, 30, nil)

	assert.Equal(t, 1, schedule.CoverageAt(5))
	assert.Equal(t, 2, schedule.CoverageAt(15))
	assert.Equal(t, 1, schedule.CoverageAt(25))
	assert.Equal(t, 0, schedule.CoverageAt(40))

	timeline := schedule.CoverageTimeline()
	require.Len(t, timeline, 68)
	assert.Equal(t, 2, timeline[15])
}

func TestDayScheduleRoundTrip(t *testing.T) {
	req := NewScheduleRequest(testDate(), nil)
	schedule := NewDaySchedule(req)
	s := newShift(0, 26, &Block{StartSlot: 12, EndSlot: 14}, Block{StartSlot: 6, EndSlot: 7})
	s.Jobs = []JobAssignment{{Role: RolePicking, Block: Block{StartSlot: 0, EndSlot: 6}}}
	schedule.Assignments["A001"] = s
	schedule.MarkUnscheduled("A002", "no feasible shift")

	data, err := schedule.Encode()
	require.NoError(t, err)

	decoded, err := DecodeDaySchedule(data)
	require.NoError(t, err)
	assert.Equal(t, schedule.SlotMinutes, decoded.SlotMinutes)
	require.Contains(t, decoded.Assignments, "A001")
	assert.Equal(t, s.StartSlot, decoded.Assignments["A001"].StartSlot)
	assert.Equal(t, s.Lunch.StartSlot, decoded.Assignments["A001"].Lunch.StartSlot)
	assert.Equal(t, s.Jobs, decoded.Assignments["A001"].Jobs)
	assert.Equal(t, "no feasible shift", decoded.Unscheduled["A002"])
	assert.True(t, schedule.Date.Equal(decoded.Date))
}

func TestWeeklyScheduleTotals(t *testing.T) {
	start := testDate()
	weekly := &WeeklySchedule{StartDate: start, EndDate: start.AddDate(0, 0, 2)}

	for i := 0; i < 3; i++ {
		req := NewScheduleRequest(start.AddDate(0, 0, i), nil)
		day := NewDaySchedule(req)
		if i < 2 {
			s := newShift(0, 26, &Block{StartSlot: 12, EndSlot: 14})
			s.Date = req.Date
			day.Assignments["A001"] = s
		}
		weekly.Days = append(weekly.Days, day)
	}

	assert.Equal(t, 720, weekly.WeeklyMinutes("A001"))
	assert.Equal(t, 2, weekly.DaysWorked("A001"))
	require.Len(t, weekly.DaysOff("A001"), 1)
	assert.True(t, weekly.DaysOff("A001")[0].Equal(start.AddDate(0, 0, 2)))
	assert.Equal(t, 2, weekly.TotalShifts())
}

func TestComputeFairnessPerfectBalance(t *testing.T) {
	m := ComputeFairness(
		map[string]int{"A": 2400, "B": 2400},
		map[string]int{"A": 5, "B": 5},
		DefaultFairnessConfig(),
	)
	assert.InDelta(t, 100, m.FairnessScore, 0.001)
	assert.InDelta(t, 40, m.AvgHours, 0.001)
	assert.InDelta(t, 0, m.HoursStdDev, 0.001)
}

func TestComputeFairnessPenalizesSpread(t *testing.T) {
	m := ComputeFairness(
		map[string]int{"A": 2400, "B": 1200},
		map[string]int{"A": 5, "B": 3},
		DefaultFairnessConfig(),
	)
	assert.Less(t, m.FairnessScore, 100.0)
	assert.GreaterOrEqual(t, m.FairnessScore, 0.0)
	assert.InDelta(t, 30, m.AvgHours, 0.001)
}

func TestComputeFairnessEmpty(t *testing.T) {
	m := ComputeFairness(nil, nil, DefaultFairnessConfig())
	assert.Equal(t, 100.0, m.FairnessScore)
}

func TestScheduleRequestValidate(t *testing.T) {
	req := NewScheduleRequest(testDate(), nil)
	require.NoError(t, req.Validate())

	bad := NewScheduleRequest(testDate(), nil)
	bad.SlotMinutes = 0
	assert.Error(t, bad.Validate())

	inverted := NewScheduleRequest(testDate(), nil)
	inverted.DayEndMinutes = inverted.DayStartMinutes
	assert.Error(t, inverted.Validate())

	noCaps := NewScheduleRequest(testDate(), nil)
	noCaps.JobCaps = nil
	assert.Error(t, noCaps.Validate())
}

func TestWeeklyRequestDatesAndValidate(t *testing.T) {
	start := testDate()
	req := NewWeeklyScheduleRequest(start, start.AddDate(0, 0, 6), nil)
	require.NoError(t, req.Validate())
	assert.Equal(t, 7, req.NumDays())
	assert.True(t, req.Dates()[6].Equal(start.AddDate(0, 0, 6)))

	inverted := NewWeeklyScheduleRequest(start, start.AddDate(0, 0, -1), nil)
	assert.Error(t, inverted.Validate())
}

func TestSlotRangeCaps(t *testing.T) {
	req := NewScheduleRequest(testDate(), nil)
	req.SlotCaps = []SlotRangeCaps{{
		StartSlot: 0,
		EndSlot:   12,
		Caps:      map[JobRole]int{RoleGMDSM: 1},
	}}

	assert.Equal(t, 1, req.CapAt(0, RoleGMDSM), "override before 08:00")
	assert.Equal(t, 2, req.CapAt(12, RoleGMDSM), "global cap after")
	assert.Equal(t, PickingOverflowCap, req.CapAt(0, RolePicking), "unlisted role in range falls back to overflow")
}

func TestScaleStartDistribution(t *testing.T) {
	base := StandardStartDistribution()
	total := 0
	for _, cfg := range base {
		total += cfg.TargetCount
	}
	assert.Equal(t, 47, total)

	scaled := ScaleStartDistribution(base, 20)
	scaledTotal := 0
	for _, cfg := range scaled {
		assert.GreaterOrEqual(t, cfg.TargetCount, 1)
		scaledTotal += cfg.TargetCount
	}
	assert.Equal(t, 20, scaledTotal)
}
