// Package output renders finished schedules: plain-text timelines, HTML,
// PDF via headless Chrome, and XLSX rosters. It consumes validated
// schedules and contains no constraint logic.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"workforce-scheduler/internal/models"
)

// WriteText writes a human-readable roster and coverage timeline.
func WriteText(w io.Writer, schedule *models.DaySchedule, req *models.ScheduleRequest, associatesByID map[string]*models.Associate) error {
	fmt.Fprintf(w, "Schedule for %s\n", models.DateKey(schedule.Date))
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 40))

	ids := make([]string, 0, len(schedule.Assignments))
	for id := range schedule.Assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := schedule.Assignments[id]
		name := id
		if assoc, ok := associatesByID[id]; ok {
			name = fmt.Sprintf("%s (%s)", assoc.Name, id)
		}
		fmt.Fprintf(w, "%-24s %s-%s  work %dm", name,
			req.SlotClock(a.StartSlot), req.SlotClock(a.EndSlot), a.WorkMinutes())
		if a.Lunch != nil {
			fmt.Fprintf(w, "  lunch %s-%s", req.SlotClock(a.Lunch.StartSlot), req.SlotClock(a.Lunch.EndSlot))
		}
		for _, b := range a.Breaks {
			fmt.Fprintf(w, "  break %s", req.SlotClock(b.StartSlot))
		}
		fmt.Fprintln(w)
		for _, j := range a.Jobs {
			fmt.Fprintf(w, "    %-14s %s-%s\n", j.Role, req.SlotClock(j.Block.StartSlot), req.SlotClock(j.Block.EndSlot))
		}
	}

	if len(schedule.Unscheduled) > 0 {
		fmt.Fprintln(w, "\nUnscheduled:")
		unscheduled := make([]string, 0, len(schedule.Unscheduled))
		for id := range schedule.Unscheduled {
			unscheduled = append(unscheduled, id)
		}
		sort.Strings(unscheduled)
		for _, id := range unscheduled {
			fmt.Fprintf(w, "  %s: %s\n", id, schedule.Unscheduled[id])
		}
	}

	fmt.Fprintln(w, "\nCoverage:")
	timeline := schedule.CoverageTimeline()
	for slot, c := range timeline {
		if slot%4 == 0 {
			fmt.Fprintf(w, "  %s %2d %s\n", req.SlotClock(slot), c, strings.Repeat("#", c))
		}
	}
	return nil
}
