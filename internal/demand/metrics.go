package demand

// Metrics scores how well a coverage timeline matches a demand curve.
type Metrics struct {
	TotalDemandMinutes   float64              `json:"total_demand_minutes"`
	TotalCoverageMinutes float64              `json:"total_coverage_minutes"`
	UndercoverageMinutes float64              `json:"undercoverage_minutes"`
	OvercoverageMinutes  float64              `json:"overcoverage_minutes"`
	MatchScore           float64              `json:"match_score"` // 0-100
	PriorityMatchScores  map[Priority]float64 `json:"priority_match_scores,omitempty"`
	SlotDeficits         []int                `json:"slot_deficits,omitempty"`
	SlotSurpluses        []int                `json:"slot_surpluses,omitempty"`
}

// CalculateMetrics compares a per-slot coverage timeline against the curve.
// Coverage above a slot's useful maximum does not improve the match score.
func CalculateMetrics(curve *Curve, coverage []int, slotMinutes int) *Metrics {
	m := &Metrics{PriorityMatchScores: make(map[Priority]float64)}

	var totalDemand, totalCoverage float64
	priorityDemand := make(map[Priority]float64)
	priorityCoverage := make(map[Priority]float64)

	for slot, cov := range coverage {
		point := curve.At(slot)
		priority := curve.PriorityAt(slot)

		priorityDemand[priority] += float64(point.Target)
		priorityCoverage[priority] += float64(min(cov, point.Target))

		totalDemand += float64(point.Target)
		totalCoverage += float64(min(cov, point.Target))

		if cov < point.MinStaff {
			m.UndercoverageMinutes += float64((point.MinStaff - cov) * slotMinutes)
			m.SlotDeficits = append(m.SlotDeficits, slot)
		} else if cov > point.MaxStaff {
			m.OvercoverageMinutes += float64((cov - point.MaxStaff) * slotMinutes)
			m.SlotSurpluses = append(m.SlotSurpluses, slot)
		}
	}

	m.TotalDemandMinutes = totalDemand * float64(slotMinutes)
	m.TotalCoverageMinutes = totalCoverage * float64(slotMinutes)

	if totalDemand > 0 {
		m.MatchScore = totalCoverage / totalDemand * 100
	} else {
		m.MatchScore = 100
	}

	for priority, demandSum := range priorityDemand {
		if demandSum > 0 {
			m.PriorityMatchScores[priority] = priorityCoverage[priority] / demandSum * 100
		}
	}
	return m
}
