package demand

import (
	"time"

	"workforce-scheduler/internal/models"
)

// Profile is a reusable hourly demand pattern ("weekday", "weekend", ...).
type Profile struct {
	Name            string                         `json:"name"`
	Description     string                         `json:"description,omitempty"`
	HourlyPattern   map[int]int                    `json:"hourly_pattern"`
	RolePatterns    map[models.JobRole]map[int]int `json:"role_patterns,omitempty"`
	PriorityWindows []PriorityWindow               `json:"priority_windows,omitempty"`
}

// PriorityWindow is an hour range with elevated priority.
type PriorityWindow struct {
	StartHour int      `json:"start_hour"`
	EndHour   int      `json:"end_hour"`
	Priority  Priority `json:"priority"`
}

// ToCurve expands the profile into a per-slot curve for one date.
func (p *Profile) ToCurve(date time.Time, slotMinutes, dayStartMinutes int) *Curve {
	c := FromHourlyPattern(date, p.HourlyPattern, slotMinutes, dayStartMinutes)

	slotsPerHour := 60 / slotMinutes
	startHour := dayStartMinutes / 60

	for _, role := range models.AllRoles() {
		pattern, ok := p.RolePatterns[role]
		if !ok {
			continue
		}
		for hour, target := range pattern {
			offset := hour - startHour
			if offset < 0 {
				continue
			}
			for i := 0; i < slotsPerHour; i++ {
				slot := offset*slotsPerHour + i
				if slot < c.TotalSlots() {
					c.SetRoleDemand(slot, role, target*6/10, target, target*3/2+1)
				}
			}
		}
	}

	for _, w := range p.PriorityWindows {
		c.AddPriorityPeriod((w.StartHour-startHour)*slotsPerHour, (w.EndHour-startHour)*slotsPerHour, w.Priority)
	}
	return c
}

// Scale multiplies the hourly pattern, keeping at least one head per hour.
func (p *Profile) Scale(factor float64) *Profile {
	scaled := &Profile{
		Name:            p.Name,
		Description:     p.Description,
		HourlyPattern:   make(map[int]int, len(p.HourlyPattern)),
		PriorityWindows: p.PriorityWindows,
	}
	for hour, target := range p.HourlyPattern {
		v := int(float64(target) * factor)
		if v < 1 {
			v = 1
		}
		scaled.HourlyPattern[hour] = v
	}
	return scaled
}

func flatRoleHours(level int) map[int]int {
	pattern := make(map[int]int, 17)
	for hour := 5; hour <= 21; hour++ {
		pattern[hour] = level
	}
	return pattern
}

// WeekdayProfile is the standard weekday pattern: morning ramp, mid-morning
// and afternoon peaks, single heads on the specialized roles all day.
func WeekdayProfile() *Profile {
	return &Profile{
		Name:        "weekday",
		Description: "Standard weekday pattern with gradual role ramp-up",
		HourlyPattern: map[int]int{
			5: 2, 6: 3, 7: 5, 8: 7, 9: 9, 10: 10, 11: 10, 12: 8,
			13: 9, 14: 10, 15: 9, 16: 8, 17: 7, 18: 6, 19: 5, 20: 4, 21: 3,
		},
		RolePatterns: map[models.JobRole]map[int]int{
			models.RoleGMDSM:       flatRoleHours(1),
			models.RoleExceptionSM: flatRoleHours(1),
			models.RoleSR:          flatRoleHours(1),
			models.RoleStaging:     flatRoleHours(0),
			models.RoleBackroom:    flatRoleHours(0),
		},
		PriorityWindows: []PriorityWindow{
			{StartHour: 10, EndHour: 12, Priority: PriorityHigh},
			{StartHour: 14, EndHour: 16, Priority: PriorityHigh},
		},
	}
}

// WeekendProfile peaks later in the day.
func WeekendProfile() *Profile {
	return &Profile{
		Name:        "weekend",
		Description: "Weekend pattern with a later midday peak",
		HourlyPattern: map[int]int{
			5: 1, 6: 2, 7: 3, 8: 5, 9: 7, 10: 9, 11: 11, 12: 12,
			13: 12, 14: 11, 15: 10, 16: 9, 17: 8, 18: 7, 19: 6, 20: 4, 21: 2,
		},
		RolePatterns: map[models.JobRole]map[int]int{
			models.RoleGMDSM:       flatRoleHours(1),
			models.RoleExceptionSM: flatRoleHours(1),
			models.RoleSR:          flatRoleHours(1),
			models.RoleStaging:     flatRoleHours(0),
			models.RoleBackroom:    flatRoleHours(0),
		},
		PriorityWindows: []PriorityWindow{
			{StartHour: 11, EndHour: 15, Priority: PriorityHigh},
		},
	}
}

// HighVolumeProfile covers holiday-rush days with extended critical hours.
func HighVolumeProfile() *Profile {
	return &Profile{
		Name:        "high_volume",
		Description: "High volume day with extended peak hours",
		HourlyPattern: map[int]int{
			5: 4, 6: 6, 7: 8, 8: 12, 9: 15, 10: 18, 11: 20, 12: 18,
			13: 20, 14: 20, 15: 18, 16: 16, 17: 14, 18: 12, 19: 10, 20: 8, 21: 5,
		},
		PriorityWindows: []PriorityWindow{
			{StartHour: 9, EndHour: 16, Priority: PriorityCritical},
		},
	}
}
