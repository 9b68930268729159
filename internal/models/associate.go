package models

import "time"

// Associate is a schedulable worker. Immutable during a solve.
type Associate struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Availability      map[string]Availability `json:"availability"` // keyed by DateKey
	MaxMinutesPerDay  int                     `json:"max_minutes_per_day"`
	MaxMinutesPerWeek int                     `json:"max_minutes_per_week"`
	AllowedRoles      map[JobRole]bool        `json:"allowed_roles"` // supervisor-approved
	CannotDoRoles     map[JobRole]bool        `json:"cannot_do_roles"`
	Preferences       map[JobRole]Preference  `json:"preferences"`
}

// NewAssociate builds an associate with all roles allowed and default
// full-time limits (8 h/day, 40 h/week).
func NewAssociate(id, name string) *Associate {
	allowed := make(map[JobRole]bool, len(AllRoles()))
	for _, r := range AllRoles() {
		allowed[r] = true
	}
	return &Associate{
		ID:                id,
		Name:              name,
		Availability:      make(map[string]Availability),
		MaxMinutesPerDay:  480,
		MaxMinutesPerWeek: 2400,
		AllowedRoles:      allowed,
		CannotDoRoles:     make(map[JobRole]bool),
		Preferences:       make(map[JobRole]Preference),
	}
}

// AvailabilityOn returns the availability window for a date; a date with no
// entry is a day off.
func (a *Associate) AvailabilityOn(d time.Time) Availability {
	if av, ok := a.Availability[DateKey(d)]; ok {
		return av
	}
	return OffDay()
}

// CanDoRole checks hard eligibility only.
func (a *Associate) CanDoRole(role JobRole) bool {
	if a.CannotDoRoles[role] {
		return false
	}
	return a.AllowedRoles[role]
}

// EligibleRoles returns allowed minus cannot-do, in the fixed role order.
func (a *Associate) EligibleRoles() []JobRole {
	var roles []JobRole
	for _, r := range AllRoles() {
		if a.CanDoRole(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// PreferenceFor returns the soft preference for a role, NEUTRAL by default.
func (a *Associate) PreferenceFor(role JobRole) Preference {
	if p, ok := a.Preferences[role]; ok {
		return p
	}
	return PreferenceNeutral
}

// WithDailyMax returns a copy with a tightened daily limit. The weekly
// coordinator uses this to fold remaining weekly minutes into the daily cap.
func (a *Associate) WithDailyMax(maxMinutes int) *Associate {
	clone := *a
	clone.MaxMinutesPerDay = maxMinutes
	return &clone
}
