package scheduling

import (
	"workforce-scheduler/internal/models"
)

// slotState tracks what is happening at one slot while a solve is underway.
type slotState struct {
	onFloor         int
	onLunch         int
	onBreak         int
	lunchStartCount int
	roleCounts      map[models.JobRole]int
}

func newSlotStates(totalSlots int) []slotState {
	states := make([]slotState, totalSlots)
	for i := range states {
		states[i].roleCounts = make(map[models.JobRole]int)
	}
	return states
}

// earlyCutoffSlot is the first slot at or after 08:00; shifts starting
// before it are "openers" with special lunch and role handling.
func earlyCutoffSlot(req *models.ScheduleRequest) int {
	return (480 - req.DayStartMinutes) / req.SlotMinutes
}

// assignShiftRoles picks a role for every work period of a shift without
// mutating state; the caller commits via commitRoles on success. Specialized
// roles persist for the whole shift once taken, and openers keep their very
// first role all day because specialized slots are scarce at open. Returns
// false when some period cannot receive any eligible under-cap role.
func assignShiftRoles(
	assignment *models.ShiftAssignment,
	associate *models.Associate,
	states []slotState,
	req *models.ScheduleRequest,
) ([]models.JobAssignment, bool) {
	eligible := associate.EligibleRoles()
	if len(eligible) == 0 {
		return nil, false
	}
	eligibleSet := make(map[models.JobRole]bool, len(eligible))
	for _, r := range eligible {
		eligibleSet[r] = true
	}

	periods := assignment.WorkPeriods()
	isOpener := assignment.StartSlot < earlyCutoffSlot(req)
	persistent := models.PersistentRoles()

	// Pending counts layer on top of committed state so multi-period caps
	// see this shift's own earlier periods.
	pending := make(map[models.JobRole]map[int]int)
	underCap := func(role models.JobRole, period models.Block) bool {
		for s := period.StartSlot; s < period.EndSlot; s++ {
			used := states[s].roleCounts[role]
			if p, ok := pending[role]; ok {
				used += p[s]
			}
			if used >= req.CapAt(s, role) {
				return false
			}
		}
		return true
	}
	take := func(role models.JobRole, period models.Block) {
		if pending[role] == nil {
			pending[role] = make(map[int]int)
		}
		for s := period.StartSlot; s < period.EndSlot; s++ {
			pending[role][s]++
		}
	}

	var jobs []models.JobAssignment
	var initialRole models.JobRole

	for _, period := range periods {
		var role models.JobRole

		// Continuity: keep the held role across lunch and break boundaries.
		if initialRole != "" && (isOpener || persistent[initialRole]) &&
			eligibleSet[initialRole] && underCap(initialRole, period) {
			role = initialRole
		}

		// Preferred roles next, then constrained roles by priority.
		if role == "" {
			for _, r := range eligible {
				if associate.PreferenceFor(r) == models.PreferencePrefer && underCap(r, period) {
					role = r
					break
				}
			}
		}
		if role == "" {
			for _, r := range models.ConstrainedRolePriority() {
				if !eligibleSet[r] {
					continue
				}
				if associate.PreferenceFor(r) == models.PreferenceAvoid {
					continue
				}
				if underCap(r, period) {
					role = r
					break
				}
			}
		}
		if role == "" && eligibleSet[models.RolePicking] && underCap(models.RolePicking, period) {
			role = models.RolePicking
		}
		if role == "" {
			for _, r := range eligible {
				if underCap(r, period) {
					role = r
					break
				}
			}
		}
		if role == "" {
			return nil, false
		}

		jobs = append(jobs, models.JobAssignment{Role: role, Block: period})
		take(role, period)
		if initialRole == "" {
			initialRole = role
		}
	}

	return jobs, true
}

// commitRoles applies a successful role assignment to the slot states.
func commitRoles(jobs []models.JobAssignment, states []slotState) {
	for _, j := range jobs {
		for s := j.Block.StartSlot; s < j.Block.EndSlot; s++ {
			states[s].roleCounts[j.Role]++
		}
	}
}
