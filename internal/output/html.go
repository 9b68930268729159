package output

import (
	"fmt"
	"html/template"
	"io"
	"sort"

	"workforce-scheduler/internal/models"
)

const rosterTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; margin: 16px; }
h1 { font-size: 16px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
th, td { border: 1px solid #999; padding: 2px 4px; text-align: center; }
th { background: #eee; }
td.name { text-align: left; white-space: nowrap; }
td.work { background: #cfe8cf; }
td.lunch { background: #f5d78e; }
td.brk { background: #a8c7e8; }
.cov { font-weight: bold; }
</style>
</head>
<body>
{{range .Days}}
<h1>Schedule {{.Date}}</h1>
<table>
<tr><th>Associate</th>{{range .Hours}}<th colspan="4">{{.}}</th>{{end}}</tr>
{{range .Rows}}
<tr><td class="name">{{.Name}}</td>{{range .Cells}}<td class="{{.Class}}">{{.Text}}</td>{{end}}</tr>
{{end}}
<tr><td class="name cov">Coverage</td>{{range .Coverage}}<td class="cov">{{.}}</td>{{end}}</tr>
</table>
{{end}}
</body>
</html>`

type rosterCell struct {
	Class string
	Text  string
}

type rosterRow struct {
	Name  string
	Cells []rosterCell
}

type rosterDay struct {
	Date     string
	Hours    []string
	Rows     []rosterRow
	Coverage []int
}

type rosterPage struct {
	Days []rosterDay
}

func roleCode(role models.JobRole) string {
	switch role {
	case models.RolePicking:
		return "P"
	case models.RoleGMDSM:
		return "G"
	case models.RoleExceptionSM:
		return "E"
	case models.RoleStaging:
		return "S"
	case models.RoleBackroom:
		return "B"
	case models.RoleSR:
		return "R"
	}
	return "?"
}

func buildRosterDay(schedule *models.DaySchedule, req *models.ScheduleRequest, associatesByID map[string]*models.Associate) rosterDay {
	day := rosterDay{Date: models.DateKey(schedule.Date)}

	slotsPerHour := 60 / req.SlotMinutes
	for slot := 0; slot < req.TotalSlots(); slot += slotsPerHour {
		day.Hours = append(day.Hours, req.SlotClock(slot))
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

	for _, id := range ids {
		a := schedule.Assignments[id]
		name := id
		if assoc, ok := associatesByID[id]; ok {
			name = assoc.Name
		}
		row := rosterRow{Name: fmt.Sprintf("%s %s-%s", name, req.SlotClock(a.StartSlot), req.SlotClock(a.EndSlot))}
		for slot := 0; slot < req.TotalSlots(); slot++ {
			cell := rosterCell{}
			switch {
			case a.Lunch != nil && a.Lunch.Contains(slot):
				cell = rosterCell{Class: "lunch", Text: "L"}
			case onBreak(a, slot):
				cell = rosterCell{Class: "brk", Text: "b"}
			case a.OnFloor(slot):
				cell = rosterCell{Class: "work", Text: roleCode(a.RoleAt(slot))}
			}
			row.Cells = append(row.Cells, cell)
		}
		day.Rows = append(day.Rows, row)
	}

	day.Coverage = schedule.CoverageTimeline()
	return day
}

func onBreak(a *models.ShiftAssignment, slot int) bool {
	for _, b := range a.Breaks {
		if b.Contains(slot) {
			return true
		}
	}
	return false
}

// WriteHTML renders one or more day schedules as an HTML roster grid.
func WriteHTML(w io.Writer, schedules []*models.DaySchedule, req *models.ScheduleRequest, associatesByID map[string]*models.Associate) error {
	tmpl, err := template.New("roster").Parse(rosterTemplate)
	if err != nil {
		return fmt.Errorf("parse roster template: %w", err)
	}
	page := rosterPage{}
	for _, s := range schedules {
		page.Days = append(page.Days, buildRosterDay(s, req, associatesByID))
	}
	return tmpl.Execute(w, page)
}
