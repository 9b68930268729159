package models

import "errors"

// ErrConfiguration marks fatal configuration errors: inconsistent policy
// thresholds, empty role sets, inverted date ranges. Constraint-level
// conditions are never errors; they surface as validation violations or
// unscheduled associates.
var ErrConfiguration = errors.New("configuration error")
