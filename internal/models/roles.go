package models

// JobRole is a floor role an associate can hold for a block of slots.
type JobRole string

const (
	RolePicking     JobRole = "picking"
	RoleGMDSM       JobRole = "gmd_sm"
	RoleExceptionSM JobRole = "exception_sm"
	RoleStaging     JobRole = "staging"
	RoleBackroom    JobRole = "backroom"
	RoleSR          JobRole = "sr"
)

// AllRoles returns the closed role set in a fixed order. Iteration order
// matters for determinism, so callers must not range over role maps directly.
func AllRoles() []JobRole {
	return []JobRole{
		RolePicking,
		RoleGMDSM,
		RoleExceptionSM,
		RoleStaging,
		RoleBackroom,
		RoleSR,
	}
}

// ConstrainedRolePriority is the order in which capped roles are staffed.
// Picking is absent: it is the overflow role.
func ConstrainedRolePriority() []JobRole {
	return []JobRole{RoleGMDSM, RoleExceptionSM, RoleStaging, RoleBackroom, RoleSR}
}

// PersistentRoles are specialized roles that stay with an associate for the
// whole shift once assigned; switching them against picking mid-shift is
// disruptive on the floor.
func PersistentRoles() map[JobRole]bool {
	return map[JobRole]bool{
		RoleGMDSM:       true,
		RoleExceptionSM: true,
		RoleSR:          true,
		RoleBackroom:    true,
	}
}

// Preference is an associate's soft preference for a role. It never affects
// feasibility, only objectives and tie-breaking.
type Preference int

const (
	PreferenceAvoid   Preference = -1
	PreferenceNeutral Preference = 0
	PreferencePrefer  Preference = 1
)
