package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-scheduler/internal/models"
)

func testDate() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func sampleSchedule() (*models.DaySchedule, *models.ScheduleRequest, map[string]*models.Associate) {
	a := models.NewAssociate("A001", "Alice")
	a.Availability[models.DateKey(testDate())] = models.Availability{StartSlot: 0, EndSlot: 68}
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	schedule := models.NewDaySchedule(req)
	schedule.Assignments["A001"] = &models.ShiftAssignment{
		AssociateID: "A001",
		Date:        testDate(),
		StartSlot:   0,
		EndSlot:     26,
		Lunch:       &models.Block{StartSlot: 12, EndSlot: 14},
		Breaks:      []models.Block{{StartSlot: 6, EndSlot: 7}},
		Jobs: []models.JobAssignment{
			{Role: models.RoleGMDSM, Block: models.Block{StartSlot: 0, EndSlot: 6}},
			{Role: models.RoleGMDSM, Block: models.Block{StartSlot: 7, EndSlot: 12}},
			{Role: models.RoleGMDSM, Block: models.Block{StartSlot: 14, EndSlot: 26}},
		},
		SlotMinutes: 15,
	}
	schedule.MarkUnscheduled("A002", "no feasible shift")

	return schedule, req, map[string]*models.Associate{"A001": a}
}

func TestWriteText(t *testing.T) {
	schedule, req, byID := sampleSchedule()

	var buf strings.Builder
	require.NoError(t, WriteText(&buf, schedule, req, byID))
	out := buf.String()

	assert.Contains(t, out, "2024-01-15")
	assert.Contains(t, out, "Alice (A001)")
	assert.Contains(t, out, "05:00-11:30", "slot 0 to slot 26 in wall-clock form")
	assert.Contains(t, out, "lunch 08:00-08:30")
	assert.Contains(t, out, "gmd_sm")
	assert.Contains(t, out, "Unscheduled:")
	assert.Contains(t, out, "A002")
	assert.Contains(t, out, "Coverage:")
}

func TestWriteHTML(t *testing.T) {
	schedule, req, byID := sampleSchedule()

	var buf strings.Builder
	require.NoError(t, WriteHTML(&buf, []*models.DaySchedule{schedule}, req, byID))
	out := buf.String()

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Schedule 2024-01-15")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, `class="lunch"`)
	assert.Contains(t, out, `class="brk"`)
	assert.Contains(t, out, ">G<", "GMD role code in a work cell")
}

func TestRoleCodes(t *testing.T) {
	assert.Equal(t, "P", roleCode(models.RolePicking))
	assert.Equal(t, "G", roleCode(models.RoleGMDSM))
	assert.Equal(t, "E", roleCode(models.RoleExceptionSM))
	assert.Equal(t, "S", roleCode(models.RoleStaging))
	assert.Equal(t, "B", roleCode(models.RoleBackroom))
	assert.Equal(t, "R", roleCode(models.RoleSR))
}

func TestWriteXLSX(t *testing.T) {
	schedule, req, byID := sampleSchedule()
	_ = req

	weekly := &models.WeeklySchedule{
		StartDate: testDate(),
		EndDate:   testDate(),
		Days:      []*models.DaySchedule{schedule},
	}
	weeklyReq := models.NewWeeklyScheduleRequest(testDate(), testDate(), []*models.Associate{byID["A001"]})

	path := t.TempDir() + "/roster.xlsx"
	require.NoError(t, WriteXLSX(path, weekly, weeklyReq, byID))
	assert.FileExists(t, path)
}
