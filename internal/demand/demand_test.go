package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-scheduler/internal/models"
)

func testDate() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func TestCurveDefaults(t *testing.T) {
	c := NewCurve(testDate())
	assert.Equal(t, 68, c.TotalSlots())

	p := c.At(10)
	assert.Equal(t, 1, p.Target)
	assert.Equal(t, PriorityNormal, c.PriorityAt(10))
}

func TestCurveSetAndRange(t *testing.T) {
	c := NewCurve(testDate())
	c.SetRange(10, 20, 2, 5, 8, PriorityHigh)

	assert.Equal(t, 5, c.TargetAt(15))
	assert.Equal(t, 2, c.MinAt(15))
	assert.Equal(t, 8, c.MaxAt(15))
	assert.Equal(t, PriorityHigh, c.PriorityAt(15))
	assert.Equal(t, 1, c.TargetAt(25), "outside the range")
}

func TestPointNormalize(t *testing.T) {
	p := Point{Slot: 0, MinStaff: 5, Target: 2, MaxStaff: 1}
	p.Normalize()
	assert.Equal(t, 5, p.MinStaff)
	assert.GreaterOrEqual(t, p.Target, p.MinStaff)
	assert.GreaterOrEqual(t, p.MaxStaff, p.Target)
}

func TestPriorityPeriodsWin(t *testing.T) {
	c := NewCurve(testDate())
	c.Set(5, 0, 2, 4, PriorityLow)
	c.AddPriorityPeriod(0, 10, PriorityCritical)
	assert.Equal(t, PriorityCritical, c.PriorityAt(5))
	assert.Equal(t, PriorityNormal, c.PriorityAt(20))
}

func TestFromHourlyPattern(t *testing.T) {
	c := FromHourlyPattern(testDate(), map[int]int{5: 2, 6: 4}, 15, 300)

	// Slots 0-3 cover 05:00-06:00, slots 4-7 cover 06:00-07:00.
	assert.Equal(t, 2, c.TargetAt(0))
	assert.Equal(t, 2, c.TargetAt(3))
	assert.Equal(t, 4, c.TargetAt(4))
	assert.Equal(t, 1, c.TargetAt(10), "hours without a target default to 1")
}

func TestFlatCurve(t *testing.T) {
	c := Flat(testDate(), 2)
	for slot := 0; slot < c.TotalSlots(); slot++ {
		assert.Equal(t, 2, c.TargetAt(slot))
	}
}

func TestCurveRoundTrip(t *testing.T) {
	c := NewCurve(testDate())
	c.SetRange(0, 68, 1, 3, 5, PriorityNormal)
	c.SetRoleDemand(10, models.RoleGMDSM, 1, 1, 2)
	c.AddPriorityPeriod(20, 28, PriorityHigh)

	data, err := c.Encode()
	require.NoError(t, err)

	decoded, err := DecodeCurve(data)
	require.NoError(t, err)
	assert.Equal(t, c.TotalSlots(), decoded.TotalSlots())
	assert.Equal(t, c.TargetAt(30), decoded.TargetAt(30))
	assert.Equal(t, c.PriorityAt(25), decoded.PriorityAt(25))
	require.Contains(t, decoded.RolePoints, 10)
	assert.Equal(t, 1, decoded.RolePoints[10][models.RoleGMDSM].Target)
	assert.True(t, c.Date.Equal(decoded.Date))
}

func TestProfileToCurve(t *testing.T) {
	p := WeekdayProfile()
	c := p.ToCurve(testDate(), 15, 300)

	// 10:00 is slot 20: the mid-morning peak.
	assert.Equal(t, 10, c.TargetAt(20))
	assert.Equal(t, PriorityHigh, c.PriorityAt(20))

	// Specialized roles hold a single head all day.
	require.NotNil(t, c.RolePoints[20])
	assert.Equal(t, 1, c.RolePoints[20][models.RoleGMDSM].Target)
}

func TestProfileScale(t *testing.T) {
	p := WeekdayProfile().Scale(2)
	assert.Equal(t, 20, p.HourlyPattern[10])

	tiny := WeekdayProfile().Scale(0.01)
	for _, v := range tiny.HourlyPattern {
		assert.GreaterOrEqual(t, v, 1)
	}
}

func TestWeeklyDemandResolution(t *testing.T) {
	w := NewWeeklyDemand()
	explicit := Flat(testDate(), 7)
	w.SetCurve(explicit)

	assert.Equal(t, 7, w.ForDate(testDate(), 15).TargetAt(0))

	// Unconfigured date without a profile gets the minimal default.
	fallback := w.ForDate(testDate().AddDate(0, 0, 1), 15)
	assert.NotNil(t, fallback)

	w.DefaultProfile = WeekendProfile()
	profiled := w.ForDate(testDate().AddDate(0, 0, 2), 15)
	assert.Equal(t, 12, profiled.TargetAt(28), "weekend midday peak at 12:00")
}

func TestStandardWeekUsesWeekendProfile(t *testing.T) {
	// 2024-01-15 is a Monday.
	w := StandardWeek(testDate(), nil, nil)
	require.Len(t, w.Curves, 7)

	monday := w.ForDate(testDate(), 15)
	saturday := w.ForDate(testDate().AddDate(0, 0, 5), 15)
	assert.Equal(t, 10, monday.TargetAt(20), "weekday 10:00 peak")
	assert.Equal(t, 12, saturday.TargetAt(28), "weekend 12:00 peak")
}

func TestMetricsPerfectMatch(t *testing.T) {
	c := Flat(testDate(), 2)
	coverage := make([]int, c.TotalSlots())
	for i := range coverage {
		coverage[i] = 2
	}

	m := CalculateMetrics(c, coverage, 15)
	assert.InDelta(t, 100, m.MatchScore, 0.001)
	assert.Zero(t, m.UndercoverageMinutes)
	assert.Zero(t, m.OvercoverageMinutes)
	assert.Empty(t, m.SlotDeficits)
}

func TestMetricsUndercoverage(t *testing.T) {
	c := NewCurve(testDate())
	c.SetRange(0, 68, 2, 4, 6, PriorityNormal)
	coverage := make([]int, c.TotalSlots())
	for i := range coverage {
		coverage[i] = 1 // below the min of 2
	}

	m := CalculateMetrics(c, coverage, 15)
	assert.InDelta(t, 25, m.MatchScore, 0.001)
	assert.Equal(t, float64(68*15), m.UndercoverageMinutes)
	assert.Len(t, m.SlotDeficits, 68)
}

func TestMetricsOvercoverageClipped(t *testing.T) {
	c := NewCurve(testDate())
	c.SetRange(0, 68, 0, 2, 3, PriorityNormal)
	coverage := make([]int, c.TotalSlots())
	for i := range coverage {
		coverage[i] = 5 // above max useful staff of 3
	}

	m := CalculateMetrics(c, coverage, 15)
	assert.InDelta(t, 100, m.MatchScore, 0.001, "extra heads beyond max do not raise the score")
	assert.Equal(t, float64(68*2*15), m.OvercoverageMinutes)
	assert.Len(t, m.SlotSurpluses, 68)
}

func TestMetricsPriorityBreakdown(t *testing.T) {
	c := NewCurve(testDate())
	c.SetRange(0, 34, 0, 2, 4, PriorityNormal)
	c.SetRange(34, 68, 0, 2, 4, PriorityHigh)
	coverage := make([]int, c.TotalSlots())
	for i := 34; i < 68; i++ {
		coverage[i] = 2 // only the high-priority half is covered
	}

	m := CalculateMetrics(c, coverage, 15)
	assert.InDelta(t, 0, m.PriorityMatchScores[PriorityNormal], 0.001)
	assert.InDelta(t, 100, m.PriorityMatchScores[PriorityHigh], 0.001)
}
