// Package progress implements the progress overlay (component C5): given a
// status date, it classifies every task as NotStarted/InProgress/Complete,
// derives its remaining work, and rolls containers up from their leaves. It
// never changes a task's CPM dates — progress is a read-only lens over an
// already-published Schedule.
package progress

import (
	"fmt"
	"sort"
	"time"

	"projectplan/internal/dag"
	"projectplan/internal/diagnostics"
	"projectplan/model"
	"projectplan/schedule"
)

// remainingTolerance is one working day in Duration units (24h per day).
const remainingTolerance = 24 * time.Hour

// Run applies the progress overlay to every task already present in sch,
// mutating each TaskSchedule's Progress field in place, and returns any
// diagnostics the overlay produces (P005, P006). statusDate may be nil, in
// which case every leaf is classified purely from its own declared fields.
func Run(p *model.Project, g *dag.LeafDAG, sch *schedule.Schedule, statusDate *time.Time) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	for _, leafID := range g.LeafOrder {
		leaf := g.Leaves[leafID]
		ts := sch.Tasks[leafID]
		if ts == nil {
			continue
		}

		overlay, warn := classifyLeaf(leaf, ts, statusDate)
		ts.Progress = overlay
		if warn != nil {
			diags = append(diags, *warn)
		}
	}

	diags = append(diags, rollupContainers(p, g, sch)...)

	diagnostics.Sort(diags)
	return diags
}

// containerTasks indexes every container task by qualified id, for the
// P006 cross-check against a caller-declared container status.
func containerTasks(p *model.Project) map[string]*model.Task {
	out := make(map[string]*model.Task)
	p.Walk(func(ancestors []string, t *model.Task) {
		if t.IsContainer() {
			out[model.QualifiedID(ancestors, t.ID)] = t
		}
	})
	return out
}

func classifyLeaf(t *model.Task, ts *schedule.TaskSchedule, statusDate *time.Time) (schedule.ProgressOverlay, *schedule.Diagnostic) {
	classification := classify(t, ts, statusDate)

	percentFromFraction := t.CompleteFraction() * 100

	var remaining time.Duration
	var warn *schedule.Diagnostic

	switch classification {
	case schedule.Complete:
		remaining = 0
		percentFromFraction = 100
	case schedule.NotStarted:
		remaining = ts.Duration
		percentFromFraction = 0
	default: // InProgress
		derived := time.Duration(float64(ts.Duration) * (1 - t.CompleteFraction()))
		remaining = derived
		if t.ExplicitRemaining != nil {
			diff := *t.ExplicitRemaining - derived
			if diff < 0 {
				diff = -diff
			}
			if diff > remainingTolerance {
				d := diagnostics.New(diagnostics.CodeRemainingVsCompleteConflict,
					fmt.Sprintf("task %q: explicit remaining work disagrees with percent-complete-derived remaining", ts.ID), ts.ID)
				warn = &d
			}
			// Explicit remaining wins over the percent-complete derivation.
			remaining = *t.ExplicitRemaining
		}
	}

	return schedule.ProgressOverlay{
		Classification:    classification,
		PercentComplete:   percentFromFraction,
		RemainingDuration: remaining,
	}, warn
}

func classify(t *model.Task, ts *schedule.TaskSchedule, statusDate *time.Time) schedule.ProgressClassification {
	if t.Status == model.StatusCompleted || t.ActualFinish != nil || t.CompleteFraction() >= 1 {
		return schedule.Complete
	}

	if t.Milestone {
		// Milestones are stamped purely by completion; they never sit
		// "in progress" since they have zero duration.
		if statusDate != nil && !statusDate.Before(ts.Finish) {
			return schedule.Complete
		}
		return schedule.NotStarted
	}

	if t.Status == model.StatusInProgress || t.ActualStart != nil || (t.CompleteFraction() > 0 && t.CompleteFraction() < 1) {
		return schedule.InProgress
	}

	if statusDate != nil {
		if !statusDate.Before(ts.Finish) {
			return schedule.Complete
		}
		if statusDate.After(ts.Start) {
			return schedule.InProgress
		}
	}

	return schedule.NotStarted
}

// rollupContainers derives each container's classification and percent
// complete from its descendant leaves, weighted by each leaf's scheduled
// duration, and flags a container declared Completed whose leaves are not
// all Complete (P006). Other declared statuses and a container's declared
// PercentComplete are not compared against the rollup.
func rollupContainers(p *model.Project, g *dag.LeafDAG, sch *schedule.Schedule) []schedule.Diagnostic {
	var diags []schedule.Diagnostic
	containers := containerTasks(p)

	ids := make([]string, 0, len(g.ContainerLeaves))
	for id := range g.ContainerLeaves {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, containerID := range ids {
		leaves := g.ContainerLeaves[containerID]
		ts := sch.Tasks[containerID]
		if ts == nil || len(leaves) == 0 {
			continue
		}

		var totalDuration, weightedRemaining time.Duration
		allComplete, allNotStarted := true, true

		for _, leafID := range leaves {
			leafTS := sch.Tasks[leafID]
			if leafTS == nil {
				continue
			}
			totalDuration += leafTS.Duration
			weightedRemaining += leafTS.Progress.RemainingDuration

			if leafTS.Progress.Classification != schedule.Complete {
				allComplete = false
			}
			if leafTS.Progress.Classification != schedule.NotStarted {
				allNotStarted = false
			}
		}

		classification := schedule.InProgress
		switch {
		case allComplete:
			classification = schedule.Complete
		case allNotStarted:
			classification = schedule.NotStarted
		}

		percent := 0.0
		if totalDuration > 0 {
			percent = 100 * (1 - float64(weightedRemaining)/float64(totalDuration))
		} else if classification == schedule.Complete {
			percent = 100
		}

		ts.Progress = schedule.ProgressOverlay{
			Classification:    classification,
			PercentComplete:   percent,
			RemainingDuration: weightedRemaining,
		}

		if container := containers[containerID]; container != nil && container.Status == model.StatusCompleted && classification != schedule.Complete {
			diags = append(diags, diagnostics.New(diagnostics.CodeContainerProgressMismatch,
				fmt.Sprintf("container %q is declared Completed but its leaves are not all complete", containerID), containerID))
		}
	}

	return diags
}
