package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-scheduler/internal/models"
)

func demoDates(days int) []time.Time {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func TestSampleAssociatesShape(t *testing.T) {
	dates := demoDates(7)
	associates := SampleAssociates(25, dates, 42)
	require.Len(t, associates, 25)

	seen := make(map[string]bool)
	for _, a := range associates {
		assert.False(t, seen[a.ID], "ids must be unique")
		seen[a.ID] = true
		assert.NotEmpty(t, a.Name)
		assert.Positive(t, a.MaxMinutesPerDay)
		assert.Positive(t, a.MaxMinutesPerWeek)
		require.Len(t, a.Availability, 7)

		for _, avail := range a.Availability {
			if avail.IsOff() {
				continue
			}
			assert.GreaterOrEqual(t, avail.StartSlot, 0)
			assert.LessOrEqual(t, avail.EndSlot, 68)
			assert.GreaterOrEqual(t, avail.SlotCount(), 16, "windows fit at least a minimum shift")
		}
		// Picking is never restricted away.
		assert.True(t, a.CanDoRole(models.RolePicking))
	}
}

func TestSampleAssociatesDeterministic(t *testing.T) {
	dates := demoDates(3)
	first := SampleAssociates(10, dates, 7)
	second := SampleAssociates(10, dates, 7)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Availability, second[i].Availability)
		assert.Equal(t, first[i].MaxMinutesPerWeek, second[i].MaxMinutesPerWeek)
	}
}

func TestSampleAssociatesSeedVariation(t *testing.T) {
	dates := demoDates(3)
	a := SampleAssociates(10, dates, 1)
	b := SampleAssociates(10, dates, 2)

	different := false
	for i := range a {
		if a[i].MaxMinutesPerWeek != b[i].MaxMinutesPerWeek {
			different = true
			break
		}
		for key := range a[i].Availability {
			if a[i].Availability[key] != b[i].Availability[key] {
				different = true
				break
			}
		}
	}
	assert.True(t, different, "different seeds should vary the population")
}

func TestRealisticAssociatesMatchDistribution(t *testing.T) {
	starts := models.StandardStartDistribution()
	dates := demoDates(1)
	associates := RealisticAssociates(starts, dates, 42)
	require.Len(t, associates, 47)

	counts := make(map[int]int)
	for _, a := range associates {
		avail := a.AvailabilityOn(dates[0])
		require.False(t, avail.IsOff(), "single-day populations skip days off")
		counts[avail.StartSlot]++
	}
	for _, cfg := range starts {
		assert.Equal(t, cfg.TargetCount, counts[cfg.StartSlot], "start %s", cfg.Label)
	}
}

func TestRealisticAssociatesClosersExtendToClose(t *testing.T) {
	starts := []models.ShiftStartConfig{{StartSlot: 44, Label: "16:00", TargetCount: 3, MaxCount: 3}}
	associates := RealisticAssociates(starts, demoDates(1), 42)
	require.Len(t, associates, 3)
	for _, a := range associates {
		assert.Equal(t, 68, a.AvailabilityOn(demoDates(1)[0]).EndSlot)
	}
}
