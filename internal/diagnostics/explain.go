package diagnostics

import (
	"fmt"
	"sort"
	"time"

	"projectplan/internal/calendar"
	"projectplan/internal/dag"
	"projectplan/model"
	"projectplan/schedule"
)

// Explain derives a pure, on-demand view of why a task's schedule looks the
// way it does. It never mutates sch and may be called repeatedly against
// the same published Schedule. shifts is the leveling audit trail for the
// run (nil if leveling never ran); statusDate is the run's status date
// (nil if none was supplied).
func Explain(taskID string, p *model.Project, g *dag.LeafDAG, reg *calendar.Registry, sch *schedule.Schedule, shifts []schedule.ShiftRecord, statusDate *time.Time, related []schedule.Diagnostic) (schedule.Explanation, error) {
	task, ok := g.Leaves[taskID]
	if !ok {
		return schedule.Explanation{}, fmt.Errorf("explain: %q is not a leaf task in this run", taskID)
	}
	ts, ok := sch.Tasks[taskID]
	if !ok {
		return schedule.Explanation{}, fmt.Errorf("explain: %q has no published schedule entry", taskID)
	}

	expl := schedule.Explanation{TaskID: taskID}
	expl.Primary = primaryReason(taskID, task, g, sch, ts, shifts, statusDate)
	expl.CalendarImpact = calendarImpact(reg, task, ts)
	expl.ConstraintEffects = constraintEffects(task, ts)
	expl.RelatedDiagnosticCodes = relatedCodes(taskID, related)

	return expl, nil
}

// primaryReason picks the dominant cause of a task's start date by the
// fixed precedence: progress lock, constraint pin, predecessor, leveling
// shift, status-date floor, project start, calendar advance.
func primaryReason(taskID string, task *model.Task, g *dag.LeafDAG, sch *schedule.Schedule, ts *schedule.TaskSchedule, shifts []schedule.ShiftRecord, statusDate *time.Time) schedule.PrimaryReason {
	if task.ActualStart != nil && (task.Status == model.StatusInProgress || task.Status == model.StatusCompleted) {
		return schedule.PrimaryReason{Kind: schedule.ReasonProgressLock}
	}

	for _, c := range task.Constraints {
		if c.Kind.IsPin() && sameDay(c.Date, ts.Start) {
			return schedule.PrimaryReason{Kind: schedule.ReasonConstraint, ConstraintKind: c.Kind, ConstraintDate: c.Date}
		}
	}

	if reason, ok := drivingPredecessor(taskID, g, sch, ts); ok {
		return reason
	}

	if shift, ok := lastShiftFor(taskID, shifts); ok {
		return schedule.PrimaryReason{Kind: schedule.ReasonLevelingShift, PredecessorID: shift.DisplacedBy}
	}

	if statusDate != nil && sameDay(*statusDate, ts.Start) {
		return schedule.PrimaryReason{Kind: schedule.ReasonStatusDateFloor}
	}

	if len(g.Predecessors(taskID)) == 0 {
		return schedule.PrimaryReason{Kind: schedule.ReasonProjectStart}
	}

	return schedule.PrimaryReason{Kind: schedule.ReasonCalendarAdvance}
}

// drivingPredecessor finds the predecessor edge whose boundary (adjusted by
// its kind and lag) matches the task's actual start, among possibly several
// predecessors — CPM's forward pass always takes the latest-resulting one,
// so ties are broken by qualified predecessor id for determinism.
func drivingPredecessor(taskID string, g *dag.LeafDAG, sch *schedule.Schedule, ts *schedule.TaskSchedule) (schedule.PrimaryReason, bool) {
	edges := g.Predecessors(taskID)
	if len(edges) == 0 {
		return schedule.PrimaryReason{}, false
	}

	sorted := append([]dag.Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	for _, e := range sorted {
		predTS, ok := sch.Tasks[e.From]
		if !ok {
			continue
		}
		var boundary time.Time
		switch e.Kind {
		case model.StartToStart, model.StartToFinish:
			boundary = predTS.Start
		default: // FinishToStart, FinishToFinish
			boundary = predTS.Finish
		}
		if sameDay(boundary.Add(e.Lag), ts.Start) {
			return schedule.PrimaryReason{
				Kind:           schedule.ReasonPredecessor,
				PredecessorID:  e.From,
				DependencyKind: e.Kind,
				Lag:            e.Lag,
			}, true
		}
	}

	// None matched exactly (likely driven by a calendar roll-forward on top
	// of the binding predecessor); report the first as the best guess.
	return schedule.PrimaryReason{
		Kind:           schedule.ReasonPredecessor,
		PredecessorID:  sorted[0].From,
		DependencyKind: sorted[0].Kind,
		Lag:            sorted[0].Lag,
	}, true
}

func lastShiftFor(taskID string, shifts []schedule.ShiftRecord) (schedule.ShiftRecord, bool) {
	var found schedule.ShiftRecord
	ok := false
	for _, s := range shifts {
		if s.TaskID == taskID {
			found = s
			ok = true
		}
	}
	return found, ok
}

func calendarImpact(reg *calendar.Registry, task *model.Task, ts *schedule.TaskSchedule) schedule.CalendarImpact {
	if reg == nil {
		return schedule.CalendarImpact{}
	}
	wc := reg.ForTask(task)
	working, weekend, holiday := wc.DaySpan(ts.Start, ts.Finish)
	return schedule.CalendarImpact{WorkingDays: working, WeekendDays: weekend, HolidayDays: holiday}
}

// constraintEffects classifies what each of a task's constraints actually
// did once the schedule was resolved: Pinned (an exact-date constraint that
// held), Pushed (a floor that moved the date later than it would otherwise
// land), Capped (a ceiling that held the date down), or Redundant (never
// binding against the date the rest of the graph already produced).
func constraintEffects(task *model.Task, ts *schedule.TaskSchedule) []schedule.ConstraintEffect {
	var out []schedule.ConstraintEffect
	for _, c := range task.Constraints {
		effect := schedule.ConstraintEffect{Kind: c.Kind, Date: c.Date}
		switch c.Kind {
		case model.MustStartOn:
			effect.Label = labelFor(sameDay(c.Date, ts.Start))
		case model.MustFinishOn:
			effect.Label = labelFor(sameDay(c.Date, ts.Finish))
		case model.StartNoEarlierThan:
			effect.Label = floorLabel(c.Date, ts.Start)
		case model.FinishNoEarlierThan:
			effect.Label = floorLabel(c.Date, ts.Finish)
		case model.StartNoLaterThan:
			effect.Label = ceilingLabel(c.Date, ts.Start)
		case model.FinishNoLaterThan:
			effect.Label = ceilingLabel(c.Date, ts.Finish)
		}
		out = append(out, effect)
	}
	return out
}

func labelFor(held bool) schedule.ConstraintEffectLabel {
	if held {
		return schedule.EffectPinned
	}
	return schedule.EffectRedundant
}

func floorLabel(constraintDate, actual time.Time) schedule.ConstraintEffectLabel {
	if sameDay(constraintDate, actual) {
		return schedule.EffectPushed
	}
	return schedule.EffectRedundant
}

func ceilingLabel(constraintDate, actual time.Time) schedule.ConstraintEffectLabel {
	if sameDay(constraintDate, actual) {
		return schedule.EffectCapped
	}
	return schedule.EffectRedundant
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func relatedCodes(taskID string, diags []schedule.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		for _, r := range d.Related {
			if r == taskID {
				out = append(out, d.Code)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
