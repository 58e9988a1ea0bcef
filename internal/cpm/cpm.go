// Package cpm implements the critical path method solver (component C4):
// working-day duration resolution, the forward and backward passes, slack
// and criticality, date-constraint application, and container date
// rollup. It runs purely over a flattened dag.LeafDAG and never mutates
// the input Project.
package cpm

import (
	"fmt"
	"sort"
	"time"

	"projectplan/internal/calendar"
	"projectplan/internal/dag"
	"projectplan/internal/diagnostics"
	"projectplan/model"
	"projectplan/schedule"
)

const hoursPerDay = 24.0

// Run executes the full CPM solve: leaf durations, forward pass, backward
// pass, slack, container rollup. It returns the published Schedule (with
// RunID left blank — the orchestrator stamps it) and every diagnostic the
// solve itself produces (W005, H004, R001, E003).
func Run(p *model.Project, g *dag.LeafDAG, reg *calendar.Registry, sm *model.SourceMap) (*schedule.Schedule, []schedule.Diagnostic) {
	sch := schedule.NewSchedule("")
	var diags []schedule.Diagnostic

	projectStart := p.Start

	order := g.Order(func(id string) int {
		if t, ok := g.Leaves[id]; ok {
			return t.EffectivePriority()
		}
		return model.DefaultPriority
	})

	durations := make(map[string]int, len(order))
	for _, id := range order {
		leaf := g.Leaves[id]
		durationDays, warn := leafDurationDays(p, leaf, reg.ForTask(leaf))
		durations[id] = durationDays
		if warn != nil {
			diags = append(diags, diagnostics.WithLocation(*warn, sm, id))
		}
	}

	es, ef := forwardPass(order, g, reg, projectStart, durations)
	ls, lf, projectEnd := backwardPass(order, g, reg, durations, es, ef)

	for _, id := range order {
		leaf := g.Leaves[id]
		wc := reg.ForTask(leaf)

		totalSlack := ls[id].Sub(es[id])
		freeSlack := freeSlackFor(id, g, es, ef, wc)

		ts := &schedule.TaskSchedule{
			ID:          id,
			Start:       es[id],
			Finish:      ef[id],
			Duration:    ef[id].Sub(es[id]),
			TotalSlack:  totalSlack,
			FreeSlack:   freeSlack,
			Critical:    totalSlack <= 0,
			Assignments: assignmentCosts(p, leaf, wc),
			IsContainer: false,
		}
		sch.Put(ts)

		if totalSlack < 0 || ef[id].After(lf[id]) {
			diags = append(diags, diagnostics.WithLocation(
				diagnostics.New(diagnostics.CodeInfeasible,
					fmt.Sprintf("task %q cannot satisfy its constraints: earliest finish falls after latest finish", id), id),
				sm, id))
		} else if totalSlack == 0 {
			if effect := bindingConstraint(leaf, es[id], ef[id]); effect {
				diags = append(diags, diagnostics.WithLocation(
					diagnostics.New(diagnostics.CodeConstraintZeroSlack,
						fmt.Sprintf("task %q has zero slack because of an explicit date constraint", id), id),
					sm, id))
			}
		}

		if len(leaf.Dependencies) == 0 && len(leaf.Constraints) == 0 && len(g.Successors(id)) == 0 {
			diags = append(diags, diagnostics.WithLocation(
				diagnostics.New(diagnostics.CodeUnconstrainedLeaf,
					fmt.Sprintf("task %q has no predecessors, successors, or constraints", id), id),
				sm, id))
		}

		if leaf.EffectiveRegime() == model.RegimeEvent && durations[id] > 0 {
			diags = append(diags, diagnostics.WithLocation(
				diagnostics.New(diagnostics.CodeEventNonZeroDuration,
					fmt.Sprintf("event task %q resolved a non-zero duration; events are instantaneous", id), id),
				sm, id))
		}
	}

	rollupContainers(p, g, sch)

	sch.ProjectStart = projectStart
	sch.ProjectEnd = projectEnd
	sch.CriticalPath = criticalPath(sch)

	diagnostics.Sort(diags)
	return sch, diags
}

// leafDurationDays resolves a leaf's working-day duration: a fixed Duration
// wins over Effort; effort-driven duration is
// ceil(effort_days / Σ(units × efficiency)) across its assignments;
// milestones and Event-regime tasks are always zero-duration.
func leafDurationDays(p *model.Project, t *model.Task, wc *calendar.WorkCalendar) (int, *schedule.Diagnostic) {
	if t.Milestone || t.EffectiveRegime() == model.RegimeEvent {
		return 0, nil
	}

	if t.HasFixedDuration() {
		days := int(t.Duration.Hours() / hoursPerDay)
		if days < 1 {
			days = 1
		}
		return days, nil
	}

	if t.HasEffort() {
		capacity := 0.0
		for _, a := range t.Assignments {
			efficiency := 1.0
			if res, ok := p.FindResource(a.ResourceID); ok {
				efficiency = res.EffectiveEfficiency()
			}
			capacity += a.EffectiveUnits() * efficiency
		}
		if capacity == 0 {
			capacity = 1.0
		}
		effortDays := t.Effort.Hours() / wc.StandardWorkdayHours()
		days := int(effortDays/capacity + 0.999999)
		if days < 1 {
			days = 1
		}
		return days, nil
	}

	return 1, nil
}

// forwardPass computes earliest start/finish per leaf in topological order.
func forwardPass(order []string, g *dag.LeafDAG, reg *calendar.Registry, projectStart time.Time, durations map[string]int) (map[string]time.Time, map[string]time.Time) {
	es := make(map[string]time.Time, len(order))
	ef := make(map[string]time.Time, len(order))

	for _, id := range order {
		leaf := g.Leaves[id]
		wc := reg.ForTask(leaf)

		start := wc.NextWorkingDay(projectStart)
		for _, e := range g.Predecessors(id) {
			predFinish, predStart := ef[e.From], es[e.From]
			var boundary time.Time
			switch e.Kind {
			case model.StartToStart:
				// ES(successor) >= ES(predecessor) + lag
				boundary = applyLag(wc, predStart, e.Lag)
			case model.FinishToFinish:
				// EF(successor) >= EF(predecessor) + lag, translated to a
				// start bound by backing off this task's own duration.
				boundary = wc.PlaceBackward(applyLag(wc, predFinish, e.Lag), maxInt(durations[id]-1, 0))
			case model.StartToFinish:
				// EF(successor) >= ES(predecessor) + lag
				boundary = wc.PlaceBackward(applyLag(wc, predStart, e.Lag), maxInt(durations[id]-1, 0))
			default: // FinishToStart: ES(successor) >= EF(predecessor) + 1 working day + lag
				boundary = applyLag(wc, wc.AddWorkingDays(predFinish, 1), e.Lag)
			}
			if boundary.After(start) {
				start = boundary
			}
		}

		for _, c := range leaf.Constraints {
			start = applyFloorConstraint(wc, c, start, durations[id])
		}

		start = wc.NextWorkingDay(start)
		finish := wc.Place(start, maxInt(durations[id]-1, 0))

		es[id] = start
		ef[id] = finish
	}

	return es, ef
}

// backwardPass computes latest start/finish, working in reverse topological
// order, and returns the project's overall end date.
func backwardPass(order []string, g *dag.LeafDAG, reg *calendar.Registry, durations map[string]int, es, ef map[string]time.Time) (map[string]time.Time, map[string]time.Time, time.Time) {
	ls := make(map[string]time.Time, len(order))
	lf := make(map[string]time.Time, len(order))

	projectEnd := time.Time{}
	for _, f := range ef {
		if f.After(projectEnd) {
			projectEnd = f
		}
	}

	rev := g.ReverseOrder(func(id string) int {
		if t, ok := g.Leaves[id]; ok {
			return t.EffectivePriority()
		}
		return model.DefaultPriority
	})

	for _, id := range rev {
		leaf := g.Leaves[id]
		wc := reg.ForTask(leaf)

		finish := projectEnd
		successors := g.Successors(id)
		if len(successors) > 0 {
			finish = time.Time{}
			for i, e := range successors {
				succLS, succLF := ls[e.To], lf[e.To]
				var boundary time.Time
				switch e.Kind {
				case model.StartToStart:
					// LS(id) <= LS(successor) - lag
					boundary = wc.Place(applyLag(wc, succLS, -e.Lag), maxInt(durations[id]-1, 0))
				case model.FinishToFinish:
					// LF(id) <= LF(successor) - lag
					boundary = applyLag(wc, succLF, -e.Lag)
				case model.StartToFinish:
					// LS(id) <= LF(successor) - lag
					boundary = wc.Place(applyLag(wc, succLF, -e.Lag), maxInt(durations[id]-1, 0))
				default: // FinishToStart: LF(id) <= LS(successor) - 1 working day - lag
					boundary = applyLag(wc, wc.AddWorkingDays(succLS, -1), -e.Lag)
				}
				if i == 0 || boundary.Before(finish) {
					finish = boundary
				}
			}
		}

		for _, c := range leaf.Constraints {
			finish = applyCeilingConstraint(wc, c, finish, durations[id])
		}

		finish = wc.PrevWorkingDay(finish)
		start := wc.PlaceBackward(finish, maxInt(durations[id]-1, 0))

		ls[id] = start
		lf[id] = finish
	}

	return ls, lf, projectEnd
}

func applyLag(wc *calendar.WorkCalendar, boundary time.Time, lag time.Duration) time.Time {
	if lag == 0 {
		return boundary
	}
	days := int(lag.Hours() / hoursPerDay)
	return wc.AddWorkingDays(boundary, days)
}

// applyFloorConstraint pushes a leaf's earliest start later to satisfy a
// date constraint. MustStartOn/StartNoEarlierThan bound the start directly;
// MustFinishOn/FinishNoEarlierThan bound the finish and are translated to an
// equivalent start floor by backing off the leaf's own duration, the same
// way a FinishToFinish dependency is translated in forwardPass.
// StartNoLaterThan/FinishNoLaterThan are ceiling-only and never push ES.
func applyFloorConstraint(wc *calendar.WorkCalendar, c model.Constraint, start time.Time, durationDays int) time.Time {
	span := maxInt(durationDays-1, 0)
	switch c.Kind {
	case model.MustStartOn, model.StartNoEarlierThan:
		if c.Date.After(start) {
			return c.Date
		}
	case model.MustFinishOn, model.FinishNoEarlierThan:
		floor := wc.PlaceBackward(c.Date, span)
		if floor.After(start) {
			return floor
		}
	case model.StartNoLaterThan, model.FinishNoLaterThan:
	}
	return start
}

// applyCeilingConstraint caps a leaf's latest finish earlier to satisfy a
// date constraint. MustFinishOn/FinishNoLaterThan bound the finish directly;
// MustStartOn/StartNoLaterThan bound the start and are translated to an
// equivalent finish ceiling by placing the leaf's duration forward from the
// constraint date. FinishNoEarlierThan/StartNoEarlierThan are floor-only and
// never cap LF.
func applyCeilingConstraint(wc *calendar.WorkCalendar, c model.Constraint, finish time.Time, durationDays int) time.Time {
	span := maxInt(durationDays-1, 0)
	switch c.Kind {
	case model.MustFinishOn, model.FinishNoLaterThan:
		if c.Date.Before(finish) {
			return c.Date
		}
	case model.MustStartOn, model.StartNoLaterThan:
		ceiling := wc.Place(c.Date, span)
		if ceiling.Before(finish) {
			return ceiling
		}
	case model.FinishNoEarlierThan, model.StartNoEarlierThan:
	}
	return finish
}

func bindingConstraint(t *model.Task, start, finish time.Time) bool {
	for _, c := range t.Constraints {
		if c.Kind.IsPin() {
			return true
		}
		if (c.Kind == model.StartNoLaterThan || c.Kind == model.FinishNoLaterThan) &&
			(sameDate(c.Date, start) || sameDate(c.Date, finish)) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// freeSlackFor is the time this task can slip without delaying the
// earliest start of any of its successors.
func freeSlackFor(id string, g *dag.LeafDAG, es, ef map[string]time.Time, wc *calendar.WorkCalendar) time.Duration {
	successors := g.Successors(id)
	if len(successors) == 0 {
		return 0
	}
	var min time.Duration
	for i, e := range successors {
		// Compare the successor's date that this edge bounds with the bound
		// this task imposes on it, as in forwardPass.
		var slack time.Duration
		switch e.Kind {
		case model.StartToStart:
			slack = es[e.To].Sub(applyLag(wc, es[id], e.Lag))
		case model.FinishToFinish:
			slack = ef[e.To].Sub(applyLag(wc, ef[id], e.Lag))
		case model.StartToFinish:
			slack = ef[e.To].Sub(applyLag(wc, es[id], e.Lag))
		default: // FinishToStart
			slack = es[e.To].Sub(applyLag(wc, wc.AddWorkingDays(ef[id], 1), e.Lag))
		}
		if i == 0 || slack < min {
			min = slack
		}
	}
	if min < 0 {
		min = 0
	}
	return min
}

func assignmentCosts(p *model.Project, t *model.Task, wc *calendar.WorkCalendar) []schedule.AssignmentCost {
	var out []schedule.AssignmentCost
	for _, a := range t.Assignments {
		res, ok := p.FindResource(a.ResourceID)
		if !ok {
			continue
		}
		out = append(out, schedule.AssignmentCost{
			ResourceID: a.ResourceID,
			Cost:       res.Rate * a.EffectiveUnits() * float64(a.EffectiveQuantity()),
		})
	}
	return out
}

// rollupContainers derives every container's Start/Finish as the min/max of
// its descendant leaves, in qualified-id order (post-order is not required
// since the computation only reads leaf schedules already published).
func rollupContainers(p *model.Project, g *dag.LeafDAG, sch *schedule.Schedule) {
	ids := make([]string, 0, len(g.ContainerLeaves))
	for id := range g.ContainerLeaves {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		leaves := g.ContainerLeaves[id]
		if len(leaves) == 0 {
			continue
		}
		var start, finish time.Time
		for i, leafID := range leaves {
			ts := sch.Tasks[leafID]
			if ts == nil {
				continue
			}
			if i == 0 || ts.Start.Before(start) {
				start = ts.Start
			}
			if i == 0 || ts.Finish.After(finish) {
				finish = ts.Finish
			}
		}
		sch.Put(&schedule.TaskSchedule{
			ID:          id,
			Start:       start,
			Finish:      finish,
			Duration:    finish.Sub(start),
			IsContainer: true,
		})
	}
}

func criticalPath(sch *schedule.Schedule) []string {
	var out []string
	for _, ts := range sch.Ordered() {
		if !ts.IsContainer && ts.Critical {
			out = append(out, ts.ID)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
