package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/policies"
)

func testDate() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func fullTimeAssociate(id string, start, end int) *models.Associate {
	a := models.NewAssociate(id, "Associate "+id)
	a.Availability[models.DateKey(testDate())] = models.Availability{StartSlot: start, EndSlot: end}
	return a
}

func TestGenerateOffDayYieldsNothing(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	a := models.NewAssociate("A001", "Alice")
	a.Availability[models.DateKey(testDate())] = models.OffDay()
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	assert.Empty(t, g.Generate(a, req, 1))
}

func TestGenerateTooNarrowAvailability(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	// 15 slots is 3.75 hours, below the 4-hour minimum.
	a := fullTimeAssociate("A001", 0, 15)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	assert.Empty(t, g.Generate(a, req, 1))
}

func TestGenerateLunchFixpoint(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	a := fullTimeAssociate("A001", 0, 68)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})
	set := policies.Defaults()

	candidates := g.Generate(a, req, 2)
	require.NotEmpty(t, candidates)

	for _, c := range candidates {
		// Span equals work plus the policy lunch for that work.
		wantLunch := set.Lunch.LunchDuration(c.WorkMinutes) / 15
		assert.Equal(t, wantLunch, c.LunchSlots)
		assert.Equal(t, c.WorkMinutes/15+c.LunchSlots, c.TotalShiftSlots())
		assert.Equal(t, set.Break.BreakCount(c.WorkMinutes), c.BreakCount)
		assert.GreaterOrEqual(t, c.WorkMinutes, 240)
		assert.LessOrEqual(t, c.WorkMinutes, 480)
	}
}

func TestGenerateRespectsDailyMax(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	a := fullTimeAssociate("A001", 0, 68)
	a.MaxMinutesPerDay = 300
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	for _, c := range g.Generate(a, req, 1) {
		assert.LessOrEqual(t, c.WorkMinutes, 300)
	}
}

func TestGenerateSortOrder(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	a := fullTimeAssociate("A001", 0, 68)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	candidates := g.Generate(a, req, 2)
	require.NotEmpty(t, candidates)

	for i := 1; i < len(candidates); i++ {
		prev, cur := candidates[i-1], candidates[i]
		if prev.WorkMinutes == cur.WorkMinutes {
			assert.LessOrEqual(t, prev.StartSlot, cur.StartSlot)
		} else {
			assert.Greater(t, prev.WorkMinutes, cur.WorkMinutes)
		}
	}
}

func TestGenerateAllSkipsInfeasible(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	feasible := fullTimeAssociate("A001", 0, 68)
	infeasible := fullTimeAssociate("A002", 0, 10)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{feasible, infeasible})

	all := g.GenerateAll(req, 2)
	assert.Contains(t, all, "A001")
	assert.NotContains(t, all, "A002")
}

func TestGeneratePlacedLunchInsideWindow(t *testing.T) {
	set := policies.Defaults()
	g := NewGenerator(set)
	a := fullTimeAssociate("A001", 0, 68)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})

	placed := g.GeneratePlaced(a, req, 4)
	require.NotEmpty(t, placed)

	seen := make(map[[3]int]bool)
	for _, c := range placed {
		require.True(t, c.Placed())
		if c.LunchSlots > 0 {
			require.NotNil(t, c.Lunch)
			earliest, latest := set.Lunch.LunchWindow(c.StartSlot, c.EndSlot, c.LunchSlots, false, 15)
			assert.GreaterOrEqual(t, c.Lunch.StartSlot, earliest)
			assert.LessOrEqual(t, c.Lunch.StartSlot, latest)
			assert.LessOrEqual(t, c.Lunch.EndSlot, c.EndSlot)
		}
		assert.Len(t, c.Breaks, c.BreakCount)

		key := [3]int{c.StartSlot, c.EndSlot, -1}
		if c.Lunch != nil {
			key[2] = c.Lunch.StartSlot
		}
		assert.False(t, seen[key], "placed candidates must be deduplicated")
		seen[key] = true
	}
}

func TestGeneratePlacedBreaksLegal(t *testing.T) {
	set := policies.Defaults()
	g := NewGenerator(set)
	a := fullTimeAssociate("A001", 0, 68)
	req := models.NewScheduleRequest(testDate(), []*models.Associate{a})
	gap := set.Break.MinLunchGapSlots()

	for _, c := range g.GeneratePlaced(a, req, 4) {
		for i, b := range c.Breaks {
			assert.GreaterOrEqual(t, b.StartSlot, c.StartSlot)
			assert.LessOrEqual(t, b.EndSlot, c.EndSlot)
			if c.Lunch != nil {
				padded := models.Block{StartSlot: c.Lunch.StartSlot - gap, EndSlot: c.Lunch.EndSlot + gap}
				assert.False(t, b.Overlaps(padded), "break may not touch lunch")
			}
			for j := i + 1; j < len(c.Breaks); j++ {
				assert.False(t, b.Overlaps(c.Breaks[j]))
			}
		}
	}
}

func TestOnFloorSlotsExcludesLunchAndBreaks(t *testing.T) {
	c := &ShiftCandidate{
		AssociateID: "A001",
		StartSlot:   0,
		EndSlot:     10,
		WorkMinutes: 120,
		SlotMinutes: 15,
		Lunch:       &models.Block{StartSlot: 4, EndSlot: 6},
		Breaks:      []models.Block{{StartSlot: 8, EndSlot: 9}},
	}
	slots := c.OnFloorSlots()
	assert.Equal(t, []int{0, 1, 2, 3, 6, 7, 9}, slots)
}

func TestBusyDayWidensPlacedLunchChoices(t *testing.T) {
	g := NewGenerator(policies.Defaults())
	a := fullTimeAssociate("A001", 0, 40)

	normal := models.NewScheduleRequest(testDate(), []*models.Associate{a})
	busy := models.NewScheduleRequest(testDate(), []*models.Associate{a})
	busy.BusyDay = true

	assert.Greater(t, len(g.GeneratePlaced(a, busy, 4)), len(g.GeneratePlaced(a, normal, 4)))
}
