package cpsat

import (
	"context"
	"sort"
	"time"
)

// Status reports how a solve ended.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeout    Status = "TIMEOUT"
	StatusUnknown    Status = "UNKNOWN"
)

// IsSolution reports whether the status carries a usable assignment.
func (s Status) IsSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Result is the outcome of a solve. Selected maps group index to the chosen
// option index, -1 when the group selects nothing.
type Result struct {
	Status    Status
	Objective int64
	Selected  []int
	Branches  int64
	Elapsed   time.Duration
}

// Solver runs a deterministic branch and bound: greedy incumbent first, then
// depth-first search over groups in descending root-gain order with an
// admissible marginal-gain bound. The deadline is checked cooperatively.
type Solver struct {
	TimeLimit time.Duration
}

const deadlineCheckInterval = 256

type searchState struct {
	model    *Model
	coverage []int
	capUsed  [][]int
	selected []int
	value    int64
}

func newSearchState(m *Model) *searchState {
	st := &searchState{
		model:    m,
		coverage: make([]int, m.NumSlots),
		capUsed:  make([][]int, len(m.Capacities)),
		selected: make([]int, len(m.Groups)),
	}
	for i, c := range m.Capacities {
		st.capUsed[i] = make([]int, len(c.Limits))
	}
	for i := range st.selected {
		st.selected[i] = -1
	}
	return st
}

func (st *searchState) fits(o *Option) bool {
	for _, u := range o.Uses {
		limits := st.model.Capacities[u.Family].Limits
		used := st.capUsed[u.Family]
		for _, s := range u.Slots {
			if s < len(limits) && used[s] >= limits[s] {
				return false
			}
		}
	}
	return true
}

// gain is the objective delta of applying the option at the current state.
func (st *searchState) gain(o *Option) int64 {
	g := o.Utility
	for _, s := range o.Slots {
		g += st.model.marginal(s, st.coverage[s])
	}
	return g
}

func (st *searchState) apply(group, option int) {
	o := &st.model.Groups[group].Options[option]
	st.selected[group] = option
	st.value += o.Utility
	for _, s := range o.Slots {
		st.value += st.model.marginal(s, st.coverage[s])
		st.coverage[s]++
	}
	for _, u := range o.Uses {
		for _, s := range u.Slots {
			st.capUsed[u.Family][s]++
		}
	}
}

func (st *searchState) unapply(group, option int) {
	o := &st.model.Groups[group].Options[option]
	st.selected[group] = -1
	for _, u := range o.Uses {
		for _, s := range u.Slots {
			st.capUsed[u.Family][s]--
		}
	}
	for _, s := range o.Slots {
		st.coverage[s]--
		st.value -= st.model.marginal(s, st.coverage[s])
	}
	st.value -= o.Utility
}

func (st *searchState) meetsFloors() bool {
	if st.model.Floors == nil {
		return true
	}
	for s, floor := range st.model.Floors {
		if st.coverage[s] < floor {
			return false
		}
	}
	return true
}

// Solve runs the search. The context deadline and TimeLimit both bound the
// wall clock; whichever is earlier wins.
func (s *Solver) Solve(ctx context.Context, m *Model) Result {
	start := time.Now()
	if err := m.Check(); err != nil {
		return Result{Status: StatusUnknown, Elapsed: time.Since(start)}
	}

	deadline := time.Time{}
	if s.TimeLimit > 0 {
		deadline = start.Add(s.TimeLimit)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	st := newSearchState(m)
	if len(m.Groups) == 0 {
		status := StatusOptimal
		if !st.meetsFloors() {
			status = StatusInfeasible
		}
		return Result{Status: status, Selected: st.selected, Elapsed: time.Since(start)}
	}

	// Group exploration order: descending best standalone gain at the root.
	order := make([]int, len(m.Groups))
	rootGain := make([]int64, len(m.Groups))
	for gi := range m.Groups {
		order[gi] = gi
		best := int64(0)
		for oi := range m.Groups[gi].Options {
			if g := st.gain(&m.Groups[gi].Options[oi]); g > best {
				best = g
			}
		}
		rootGain[gi] = best
	}
	sort.SliceStable(order, func(i, j int) bool {
		if rootGain[order[i]] != rootGain[order[j]] {
			return rootGain[order[i]] > rootGain[order[j]]
		}
		return order[i] < order[j]
	})

	search := &bnbSearch{
		model:    m,
		state:    st,
		order:    order,
		deadline: deadline,
	}

	// Greedy incumbent: only valid when it meets the floors.
	search.greedyIncumbent()

	search.dfs(0)

	elapsed := time.Since(start)
	switch {
	case search.timedOut && search.hasIncumbent:
		return Result{Status: StatusFeasible, Objective: search.bestValue, Selected: search.bestSelected, Branches: search.branches, Elapsed: elapsed}
	case search.timedOut:
		return Result{Status: StatusTimeout, Branches: search.branches, Elapsed: elapsed}
	case search.hasIncumbent:
		return Result{Status: StatusOptimal, Objective: search.bestValue, Selected: search.bestSelected, Branches: search.branches, Elapsed: elapsed}
	default:
		return Result{Status: StatusInfeasible, Branches: search.branches, Elapsed: elapsed}
	}
}

type bnbSearch struct {
	model    *Model
	state    *searchState
	order    []int
	deadline time.Time

	bestValue    int64
	bestSelected []int
	hasIncumbent bool
	branches     int64
	timedOut     bool
}

func (b *bnbSearch) record() {
	if !b.state.meetsFloors() {
		return
	}
	if !b.hasIncumbent || b.state.value > b.bestValue {
		b.bestValue = b.state.value
		b.bestSelected = append([]int(nil), b.state.selected...)
		b.hasIncumbent = true
	}
}

// greedyIncumbent repeatedly applies the best positive-gain option until none
// remains, producing the starting incumbent and a strong pruning baseline.
func (b *bnbSearch) greedyIncumbent() {
	assigned := make([]bool, len(b.model.Groups))
	for {
		bestGroup, bestOption := -1, -1
		var bestGain int64
		for _, gi := range b.order {
			if assigned[gi] {
				continue
			}
			for oi := range b.model.Groups[gi].Options {
				o := &b.model.Groups[gi].Options[oi]
				if !b.state.fits(o) {
					continue
				}
				if g := b.state.gain(o); g > bestGain {
					bestGain = g
					bestGroup, bestOption = gi, oi
				}
			}
		}
		if bestGroup < 0 {
			break
		}
		assigned[bestGroup] = true
		b.state.apply(bestGroup, bestOption)
	}
	b.record()
	// Rewind to the empty state for the exact search.
	for gi, oi := range append([]int(nil), b.state.selected...) {
		if oi >= 0 {
			b.state.unapply(gi, oi)
		}
	}
}

// bound is an optimistic completion estimate: current value plus each
// remaining group's best standalone gain (clipped at zero). Admissible
// because concave slot curves make marginal gains non-increasing as
// coverage grows.
func (b *bnbSearch) bound(depth int) int64 {
	est := b.state.value
	for _, gi := range b.order[depth:] {
		var best int64
		for oi := range b.model.Groups[gi].Options {
			o := &b.model.Groups[gi].Options[oi]
			if !b.state.fits(o) {
				continue
			}
			if g := b.state.gain(o); g > best {
				best = g
			}
		}
		est += best
	}
	return est
}

func (b *bnbSearch) dfs(depth int) {
	if b.timedOut {
		return
	}
	b.branches++
	if b.branches%deadlineCheckInterval == 0 && !b.deadline.IsZero() && time.Now().After(b.deadline) {
		b.timedOut = true
		return
	}

	if depth == len(b.order) {
		b.record()
		return
	}
	if b.hasIncumbent && b.bound(depth) <= b.bestValue && b.model.Floors == nil {
		return
	}

	gi := b.order[depth]
	group := &b.model.Groups[gi]

	// Options in descending current gain; ties keep input order.
	type scored struct {
		idx  int
		gain int64
	}
	opts := make([]scored, 0, len(group.Options))
	for oi := range group.Options {
		o := &group.Options[oi]
		if !b.state.fits(o) {
			continue
		}
		opts = append(opts, scored{idx: oi, gain: b.state.gain(o)})
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].gain > opts[j].gain })

	for _, sc := range opts {
		b.state.apply(gi, sc.idx)
		b.dfs(depth + 1)
		b.state.unapply(gi, sc.idx)
		if b.timedOut {
			return
		}
	}

	// Skip branch: the group selects nothing.
	b.dfs(depth + 1)
}
