// Package leveling implements the resource leveling engine (component C6):
// it builds a per-resource daily commitment timeline from a published
// Schedule, aggregates over-allocation intervals into Conflicts classified
// by shape and severity (grounded on the teacher's legacy overlap-detection
// modules), and runs a deterministic, priority-ordered shift resolution
// loop that applies at most horizonDays shifts. Each shift moves one task
// to the first working day after the conflict's end; no forward search for
// a conflict-free slot is made.
package leveling

import (
	"sort"
	"time"

	"projectplan/internal/calendar"
	"projectplan/internal/dag"
	"projectplan/internal/diagnostics"
	"projectplan/model"
	"projectplan/schedule"
)

const dateKeyLayout = "2006-01-02"

// DetectConflicts reports every resource over-allocation interval in sch
// without attempting to resolve any of them — the read-only counterpart to
// Run, used by a caller that wants visibility without committing to a
// leveling pass's date changes.
func DetectConflicts(p *model.Project, g *dag.LeafDAG, reg *calendar.Registry, sch *schedule.Schedule) []schedule.Conflict {
	resourceByID := make(map[string]model.Resource, len(p.Resources))
	for _, r := range p.Resources {
		resourceByID[r.ID] = r
	}
	timeline := buildTimeline(p, g, sch)
	return detectConflicts(resourceByID, reg, timeline)
}

// Run levels every over-capacity resource against sch in place, returning
// the full audit trail plus any diagnostics produced: L001 per applied
// shift, L002 when no contributing task of a conflict can be moved, and
// W004 when over-allocations remain after the loop. horizonDays caps the
// number of shifts applied.
func Run(p *model.Project, g *dag.LeafDAG, reg *calendar.Registry, sch *schedule.Schedule, horizonDays int) (*schedule.LevelingResult, []schedule.Diagnostic) {
	result := &schedule.LevelingResult{PreLevelingSchedule: snapshot(sch)}
	var diags []schedule.Diagnostic

	originalEnd := sch.ProjectEnd

	resourceByID := make(map[string]model.Resource, len(p.Resources))
	for _, r := range p.Resources {
		resourceByID[r.ID] = r
	}

	iterations := 0
	for iterations < horizonDays {
		timeline := buildTimeline(p, g, sch)
		conflicts := detectConflicts(resourceByID, reg, timeline)
		if len(conflicts) == 0 {
			break
		}

		shifted := resolveOneConflict(g, reg, sch, conflicts[0])
		if shifted == nil {
			// Nothing in this conflict could be moved further; leave it for
			// the unresolved list rather than looping forever on it.
			result.UnresolvedConflicts = append(result.UnresolvedConflicts, conflicts[0])
			diags = append(diags, diagnostics.New(diagnostics.CodeLevelingNoSlot,
				"no slot found for a contributing task within the leveling search horizon", conflicts[0].ResourceID))
			break
		}

		result.Shifts = append(result.Shifts, *shifted)
		diags = append(diags, diagnostics.New(diagnostics.CodeLevelingShiftApplied,
			"task moved to relieve a resource over-allocation", shifted.TaskID))
		iterations++
	}

	finalTimeline := buildTimeline(p, g, sch)
	result.UnresolvedConflicts = detectConflicts(resourceByID, reg, finalTimeline)
	if len(result.UnresolvedConflicts) > 0 {
		diags = append(diags, diagnostics.New(diagnostics.CodeLevelingUnresolved,
			"leveling finished with over-allocations remaining"))
	}

	newEnd := time.Time{}
	for _, ts := range sch.Ordered() {
		if ts.Finish.After(newEnd) {
			newEnd = ts.Finish
		}
	}
	result.Extended = newEnd.After(originalEnd)

	diagnostics.Sort(diags)
	return result, diags
}

func snapshot(sch *schedule.Schedule) *schedule.Schedule {
	clone := schedule.NewSchedule(sch.RunID)
	clone.ProjectStart = sch.ProjectStart
	clone.ProjectEnd = sch.ProjectEnd
	clone.CriticalPath = append([]string(nil), sch.CriticalPath...)
	for _, ts := range sch.Ordered() {
		copied := *ts
		clone.Put(&copied)
	}
	return clone
}

type dayCommitment struct {
	total float64
	tasks []string
}

// buildTimeline maps resource id -> date key -> committed units from every
// leaf's assignments across its scheduled span.
func buildTimeline(p *model.Project, g *dag.LeafDAG, sch *schedule.Schedule) map[string]map[string]*dayCommitment {
	timeline := make(map[string]map[string]*dayCommitment)

	for _, leafID := range g.LeafOrder {
		leaf := g.Leaves[leafID]
		ts := sch.Tasks[leafID]
		if ts == nil || len(leaf.Assignments) == 0 {
			continue
		}
		for _, a := range leaf.Assignments {
			res, ok := p.FindResource(a.ResourceID)
			if !ok || res.IsProfile {
				continue
			}
			committed := a.EffectiveUnits() * float64(a.EffectiveQuantity())
			byDate, ok := timeline[a.ResourceID]
			if !ok {
				byDate = make(map[string]*dayCommitment)
				timeline[a.ResourceID] = byDate
			}
			for d := dateOnly(ts.Start); !d.After(dateOnly(ts.Finish)); d = d.AddDate(0, 0, 1) {
				key := d.Format(dateKeyLayout)
				dc, ok := byDate[key]
				if !ok {
					dc = &dayCommitment{}
					byDate[key] = dc
				}
				dc.total += committed
				dc.tasks = append(dc.tasks, leafID)
			}
		}
	}

	return timeline
}

// detectConflicts aggregates contiguous over-capacity days per resource
// into Conflict intervals, sorted deterministically by (resource id,
// start date) so the resolution loop always picks the same first conflict.
func detectConflicts(resourceByID map[string]model.Resource, reg *calendar.Registry, timeline map[string]map[string]*dayCommitment) []schedule.Conflict {
	var out []schedule.Conflict

	resourceIDs := make([]string, 0, len(timeline))
	for id := range timeline {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	for _, resID := range resourceIDs {
		res := resourceByID[resID]
		capacity := res.EffectiveCapacity()

		days := make([]string, 0, len(timeline[resID]))
		for k := range timeline[resID] {
			days = append(days, k)
		}
		sort.Strings(days)

		var current *schedule.Conflict
		for _, key := range days {
			dc := timeline[resID][key]
			if dc.total <= capacity {
				current = nil
				continue
			}
			d, _ := time.Parse(dateKeyLayout, key)
			if current == nil {
				current = &schedule.Conflict{ResourceID: resID, Start: d, End: d, Capacity: capacity}
				out = append(out, *current)
				current = &out[len(out)-1]
			} else {
				current.End = d
			}
			if dc.total > current.PeakCommitted {
				current.PeakCommitted = dc.total
			}
			current.ContributingTasks = mergeTasks(current.ContributingTasks, dc.tasks)
		}
	}

	for i := range out {
		out[i].Shape = classifyShape(out[i])
		out[i].Severity = classifySeverity(out[i])
	}

	return out
}

func mergeTasks(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range add {
		if !seen[t] {
			seen[t] = true
			existing = append(existing, t)
		}
	}
	sort.Strings(existing)
	return existing
}

func classifyShape(c schedule.Conflict) schedule.OverlapShape {
	switch {
	case len(c.ContributingTasks) <= 1:
		return schedule.OverlapIdentical
	case c.Start.Equal(c.End):
		return schedule.OverlapComplete
	case len(c.ContributingTasks) == 2:
		return schedule.OverlapNested
	default:
		return schedule.OverlapPartial
	}
}

func classifySeverity(c schedule.Conflict) schedule.OverlapSeverity {
	over := c.OverAllocationUnits()
	ratio := 0.0
	if c.Capacity > 0 {
		ratio = over / c.Capacity
	}
	switch {
	case ratio <= 0.25:
		return schedule.SeverityLow
	case ratio <= 0.5:
		return schedule.SeverityMedium
	case ratio <= 1.0:
		return schedule.SeverityHigh
	default:
		return schedule.SeverityCritical
	}
}

// resolveOneConflict moves the first unpinned contributing task, in the
// order non-critical before critical, larger total slack first, lower
// priority first, then qualified id, so that it starts on the first working
// day after the conflict's end. Returns nil if every contributing task is
// pinned by a hard constraint and none can move.
func resolveOneConflict(g *dag.LeafDAG, reg *calendar.Registry, sch *schedule.Schedule, c schedule.Conflict) *schedule.ShiftRecord {
	candidates := append([]string(nil), c.ContributingTasks...)
	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := sch.Tasks[candidates[i]], sch.Tasks[candidates[j]]
		if ti.Critical != tj.Critical {
			return !ti.Critical // non-critical moves before critical
		}
		if ti.TotalSlack != tj.TotalSlack {
			return ti.TotalSlack > tj.TotalSlack // larger slack moves first
		}
		pi, pj := g.Leaves[candidates[i]].EffectivePriority(), g.Leaves[candidates[j]].EffectivePriority()
		if pi != pj {
			return pi < pj // lowest priority moves first
		}
		return candidates[i] < candidates[j] // qualified id ascending, ties broken deterministically
	})

	for _, taskID := range candidates {
		leaf := g.Leaves[taskID]
		if hasPinningConstraint(leaf) {
			continue
		}
		ts := sch.Tasks[taskID]
		wc := reg.ForTask(leaf)

		oldStart := ts.Start
		durationDays := workingDaySpan(wc, ts.Start, ts.Finish)
		newStart := wc.AddWorkingDays(c.End, 1)
		newFinish := wc.Place(newStart, durationDays-1)

		var displacedBy string
		for _, other := range candidates {
			if other != taskID {
				displacedBy = other
				break
			}
		}

		ts.Start = newStart
		ts.Finish = newFinish
		ts.Duration = newFinish.Sub(newStart)

		return &schedule.ShiftRecord{
			TaskID:      taskID,
			OldStart:    oldStart,
			NewStart:    newStart,
			Reason:      schedule.ReasonResourceConflict,
			ResourceID:  c.ResourceID,
			DisplacedBy: displacedBy,
		}
	}

	return nil
}

func hasPinningConstraint(t *model.Task) bool {
	for _, c := range t.Constraints {
		if c.Kind.IsPin() {
			return true
		}
	}
	return false
}

func workingDaySpan(wc *calendar.WorkCalendar, start, finish time.Time) int {
	return wc.WorkingDaysBetween(start, finish)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
