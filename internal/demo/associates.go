// Package demo synthesizes associate populations for the demo commands.
// Everything is driven by the seed so runs reproduce exactly.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"workforce-scheduler/internal/models"
)

var sampleNames = []string{
	"Alice", "Bob", "Carol", "David", "Eve", "Frank", "Grace", "Henry",
	"Ivy", "Jack", "Kate", "Leo", "Mia", "Noah", "Olivia", "Paul",
	"Quinn", "Rose", "Sam", "Tina", "Uma", "Victor", "Wendy", "Xavier",
	"Yara", "Zach", "Amy", "Ben", "Chloe", "Dan", "Emma", "Finn",
	"Gina", "Hugo", "Iris", "Jake", "Kim", "Luke", "Maya", "Nate",
}

type shiftPattern struct {
	startSlot int
	endSlot   int
}

// Slot anchors: 0=05:00, 12=08:00, 28=12:00, 44=16:00, 68=22:00.
var shiftPatterns = []shiftPattern{
	{0, 32}, {0, 40}, {4, 36}, {8, 40}, {12, 44}, {16, 48}, {20, 52},
	{24, 56}, {28, 60}, {32, 64}, {36, 68}, {40, 68}, {44, 68},
	{0, 68}, {12, 52}, {0, 24}, {48, 68},
}

// Weekday sets that should be off; 0=Monday ... 6=Sunday to match the
// common staffing-sheet convention.
var daysOffPatterns = [][]int{
	{5, 6}, {0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {6, 0},
	{0, 3}, {2, 5}, {1, 4}, {0, 4}, {2, 6}, {5}, {6}, {4}, {},
}

type hourTarget struct {
	maxDaily  int
	maxWeekly int
}

var hourTargets = []hourTarget{
	{480, 2400}, {480, 2000}, {360, 1800}, {480, 1600},
	{360, 1200}, {480, 2400}, {420, 2100},
}

var roleRestrictions = [][]models.JobRole{
	{}, {models.RoleBackroom}, {models.RoleGMDSM}, {models.RoleExceptionSM},
	{models.RoleStaging}, {models.RoleBackroom, models.RoleGMDSM},
	{models.RoleStaging, models.RoleBackroom}, {models.RoleGMDSM, models.RoleExceptionSM},
}

var preferenceCombos = []map[models.JobRole]models.Preference{
	{},
	{models.RolePicking: models.PreferencePrefer},
	{models.RoleBackroom: models.PreferencePrefer},
	{models.RoleStaging: models.PreferencePrefer},
	{models.RoleBackroom: models.PreferenceAvoid},
	{models.RoleStaging: models.PreferenceAvoid},
	{models.RolePicking: models.PreferenceAvoid},
	{models.RoleGMDSM: models.PreferencePrefer},
	{models.RoleExceptionSM: models.PreferencePrefer},
	{models.RolePicking: models.PreferencePrefer, models.RoleBackroom: models.PreferenceAvoid},
	{models.RoleStaging: models.PreferencePrefer, models.RolePicking: models.PreferenceAvoid},
	{models.RoleGMDSM: models.PreferenceAvoid, models.RoleExceptionSM: models.PreferenceAvoid},
	{models.RoleBackroom: models.PreferencePrefer, models.RoleStaging: models.PreferencePrefer},
}

func associateName(i int) string {
	name := sampleNames[i%len(sampleNames)]
	if i >= len(sampleNames) {
		name = fmt.Sprintf("%s%d", name, i/len(sampleNames)+1)
	}
	return name
}

// staffingWeekday maps Go's Sunday-first weekday to the Monday-first index
// the patterns use.
func staffingWeekday(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// SampleAssociates creates a varied population: mixed shift windows, hour
// targets, restrictions and preferences, with a sprinkle of random days off.
func SampleAssociates(count int, dates []time.Time, seed int64) []*models.Associate {
	rng := rand.New(rand.NewSource(seed))
	associates := make([]*models.Associate, 0, count)

	for i := 0; i < count; i++ {
		pattern := shiftPatterns[rng.Intn(len(shiftPatterns))]
		offPattern := daysOffPatterns[rng.Intn(len(daysOffPatterns))]
		target := hourTargets[rng.Intn(len(hourTargets))]
		cannotDo := roleRestrictions[rng.Intn(len(roleRestrictions))]
		prefs := preferenceCombos[rng.Intn(len(preferenceCombos))]

		startSlot := pattern.startSlot + rng.Intn(5)*2 - 4
		endSlot := pattern.endSlot + rng.Intn(5)*2 - 4
		startSlot = max(0, min(52, startSlot)) // leave room for a minimum shift
		endSlot = min(68, max(startSlot+16, endSlot))

		a := models.NewAssociate(fmt.Sprintf("A%03d", i+1), associateName(i))
		a.MaxMinutesPerDay = target.maxDaily
		a.MaxMinutesPerWeek = target.maxWeekly
		for _, r := range cannotDo {
			a.CannotDoRoles[r] = true
		}
		for r, p := range prefs {
			a.Preferences[r] = p
		}

		for _, d := range dates {
			dayOff := false
			for _, wd := range offPattern {
				if staffingWeekday(d) == wd {
					dayOff = true
					break
				}
			}
			if !dayOff && rng.Float64() < 0.15 {
				dayOff = true
			}
			if dayOff {
				a.Availability[models.DateKey(d)] = models.OffDay()
				continue
			}
			if rng.Float64() < 0.2 {
				ds := max(0, min(52, startSlot+rng.Intn(9)-4))
				de := min(68, max(ds+16, endSlot+rng.Intn(9)-4))
				a.Availability[models.DateKey(d)] = models.Availability{StartSlot: ds, EndSlot: de}
			} else {
				a.Availability[models.DateKey(d)] = models.Availability{StartSlot: startSlot, EndSlot: endSlot}
			}
		}
		associates = append(associates, a)
	}
	return associates
}

// RealisticAssociates builds a population whose availability matches a shift
// start distribution: one associate per target headcount slot, 8-hour
// windows, closers extended to end of day, and, when more than one date is
// given, days off from a rotating pattern of zero, one or two days.
func RealisticAssociates(starts []models.ShiftStartConfig, dates []time.Time, seed int64) []*models.Associate {
	rng := rand.New(rand.NewSource(seed))
	var associates []*models.Associate
	idx := 0

	for _, cfg := range starts {
		for n := 0; n < cfg.TargetCount; n++ {
			startSlot := cfg.StartSlot
			endSlot := min(startSlot+36, 68) // 8h work + 1h lunch
			if startSlot >= 36 {
				endSlot = 68 // closers stay to the end
			}

			var offPattern []int
			if len(dates) > 1 {
				offPattern = daysOffPatterns[idx%len(daysOffPatterns)]
			}
			cannotDo := roleRestrictions[rng.Intn(len(roleRestrictions))]
			prefs := preferenceCombos[rng.Intn(len(preferenceCombos))]

			a := models.NewAssociate(fmt.Sprintf("A%03d", idx+1), associateName(idx))
			for _, r := range cannotDo {
				a.CannotDoRoles[r] = true
			}
			for r, p := range prefs {
				a.Preferences[r] = p
			}

			for _, d := range dates {
				dayOff := false
				for _, wd := range offPattern {
					if staffingWeekday(d) == wd {
						dayOff = true
						break
					}
				}
				if dayOff {
					a.Availability[models.DateKey(d)] = models.OffDay()
				} else {
					a.Availability[models.DateKey(d)] = models.Availability{StartSlot: startSlot, EndSlot: endSlot}
				}
			}
			associates = append(associates, a)
			idx++
		}
	}
	return associates
}
