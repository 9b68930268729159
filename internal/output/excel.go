package output

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"workforce-scheduler/internal/models"
)

// WriteXLSX writes an XLSX workbook with one roster sheet per day and a
// weekly summary sheet.
func WriteXLSX(path string, weekly *models.WeeklySchedule, req *models.WeeklyScheduleRequest, associatesByID map[string]*models.Associate) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	f.SetCellValue(summary, "A1", "Associate")
	f.SetCellValue(summary, "B1", "Days worked")
	f.SetCellValue(summary, "C1", "Weekly hours")

	ids := make([]string, 0, len(associatesByID))
	for id := range associatesByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for row, id := range ids {
		name := id
		if a, ok := associatesByID[id]; ok {
			name = fmt.Sprintf("%s (%s)", a.Name, id)
		}
		f.SetCellValue(summary, fmt.Sprintf("A%d", row+2), name)
		f.SetCellValue(summary, fmt.Sprintf("B%d", row+2), weekly.DaysWorked(id))
		f.SetCellValue(summary, fmt.Sprintf("C%d", row+2), float64(weekly.WeeklyMinutes(id))/60)
	}
	if weekly.Fairness != nil {
		base := len(ids) + 3
		f.SetCellValue(summary, fmt.Sprintf("A%d", base), "Fairness score")
		f.SetCellValue(summary, fmt.Sprintf("B%d", base), weekly.Fairness.FairnessScore)
	}

	for _, day := range weekly.Days {
		if err := writeDaySheet(f, day, req.DayRequest(day.Date), associatesByID); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeDaySheet(f *excelize.File, schedule *models.DaySchedule, req *models.ScheduleRequest, associatesByID map[string]*models.Associate) error {
	sheet := models.DateKey(schedule.Date)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Associate")
	for slot := 0; slot < req.TotalSlots(); slot++ {
		col, err := excelize.ColumnNumberToName(slot + 2)
		if err != nil {
			return err
		}
		if slot%(60/req.SlotMinutes) == 0 {
			f.SetCellValue(sheet, col+"1", req.SlotClock(slot))
		}
	}

	ids := make([]string, 0, len(schedule.Assignments))
	for id := range schedule.Assignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ai, aj := schedule.Assignments[ids[i]], schedule.Assignments[ids[j]]
		if ai.StartSlot != aj.StartSlot {
			return ai.StartSlot < aj.StartSlot
		}
		return ids[i] < ids[j]
	})

	for row, id := range ids {
		a := schedule.Assignments[id]
		name := id
		if assoc, ok := associatesByID[id]; ok {
			name = assoc.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), name)

		for slot := 0; slot < req.TotalSlots(); slot++ {
			col, err := excelize.ColumnNumberToName(slot + 2)
			if err != nil {
				return err
			}
			cell := col + fmt.Sprint(row+2)
			switch {
			case a.Lunch != nil && a.Lunch.Contains(slot):
				f.SetCellValue(sheet, cell, "L")
			case onBreak(a, slot):
				f.SetCellValue(sheet, cell, "b")
			case a.OnFloor(slot):
				f.SetCellValue(sheet, cell, roleCode(a.RoleAt(slot)))
			}
		}
	}

	covRow := len(ids) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", covRow), "Coverage")
	for slot, c := range schedule.CoverageTimeline() {
		col, err := excelize.ColumnNumberToName(slot + 2)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, col+fmt.Sprint(covRow), c)
	}
	return nil
}
