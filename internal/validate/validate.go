// Package validate implements model & invariants checking (component C2):
// id uniqueness, reference resolution, profile specialization cycles, and
// cost-bearing profiles without an inheritable rate. Every finding is
// accumulated into the diagnostic log; E-severity structural findings make
// the orchestrator return diagnostics only, with an empty Schedule. There
// is no best-effort mode that schedules such a project anyway.
package validate

import (
	"fmt"
	"sort"

	"projectplan/internal/diagnostics"
	"projectplan/model"
	"projectplan/schedule"
)

// Run validates a Project and returns every diagnostic found, in no
// particular order (the caller sorts via diagnostics.Sort before
// publishing). Run never mutates the project.
func Run(p *model.Project) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	idToTask := make(map[string]*model.Task)
	diags = append(diags, checkSiblingUniqueness(p, idToTask)...)
	diags = append(diags, checkCalendarReferences(p)...)
	diags = append(diags, checkDependencyReferences(p, idToTask)...)
	diags = append(diags, checkAssignmentReferences(p, idToTask)...)
	diags = append(diags, checkProfileCycles(p)...)
	diags = append(diags, checkProfileRates(p, idToTask)...)
	diags = append(diags, checkUnknownTraits(p)...)

	return diags
}

func checkSiblingUniqueness(p *model.Project, idToTask map[string]*model.Task) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	var walk func(ancestors []string, siblings []*model.Task)
	walk = func(ancestors []string, siblings []*model.Task) {
		seen := make(map[string]bool)
		for _, t := range siblings {
			qid := model.QualifiedID(ancestors, t.ID)
			idToTask[qid] = t
			if seen[t.ID] {
				diags = append(diags, diagnostics.New(diagnostics.CodeDuplicateSiblingID,
					fmt.Sprintf("task id %q is declared more than once among its siblings", t.ID), qid))
			}
			seen[t.ID] = true
			walk(append(append([]string{}, ancestors...), t.ID), t.Children)
		}
	}
	walk(nil, p.Tasks)

	return diags
}

func checkCalendarReferences(p *model.Project) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	knownCalendars := make(map[string]bool)
	for _, c := range p.Calendars {
		knownCalendars[c.ID] = true
	}

	if !knownCalendars[p.DefaultCalendarID] {
		diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
			fmt.Sprintf("project default calendar %q does not resolve", p.DefaultCalendarID)))
	}

	p.Walk(func(ancestors []string, t *model.Task) {
		if t.CalendarID != "" && !knownCalendars[t.CalendarID] {
			qid := model.QualifiedID(ancestors, t.ID)
			diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
				fmt.Sprintf("task %q references unknown calendar %q", qid, t.CalendarID), qid))
		}
	})

	for _, r := range p.Resources {
		if r.CalendarID != "" && !knownCalendars[r.CalendarID] {
			diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
				fmt.Sprintf("resource %q references unknown calendar %q", r.ID, r.CalendarID), r.ID))
		}
	}

	return diags
}

func checkDependencyReferences(p *model.Project, idToTask map[string]*model.Task) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	p.Walk(func(ancestors []string, t *model.Task) {
		qid := model.QualifiedID(ancestors, t.ID)
		for _, dep := range t.Dependencies {
			if _, ok := idToTask[dep.PredecessorID]; !ok {
				diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
					fmt.Sprintf("task %q depends on unresolved id %q", qid, dep.PredecessorID), qid))
			}
		}
	})

	for _, pc := range p.Constraints {
		if _, ok := idToTask[pc.TaskID]; !ok {
			diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
				fmt.Sprintf("project-level constraint references unresolved task id %q", pc.TaskID), pc.TaskID))
		}
	}

	return diags
}

func checkAssignmentReferences(p *model.Project, idToTask map[string]*model.Task) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	knownResources := make(map[string]bool)
	for _, r := range p.Resources {
		knownResources[r.ID] = true
	}

	p.Walk(func(ancestors []string, t *model.Task) {
		qid := model.QualifiedID(ancestors, t.ID)
		for _, a := range t.Assignments {
			if !knownResources[a.ResourceID] {
				diags = append(diags, diagnostics.New(diagnostics.CodeUnresolvedReference,
					fmt.Sprintf("task %q assigns unresolved resource %q", qid, a.ResourceID), qid))
			}
		}
	})

	return diags
}

// checkProfileCycles detects cycles in the SpecializationParent chain
// among resources/profiles (E001).
func checkProfileCycles(p *model.Project) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	byID := make(map[string]model.Resource)
	for _, r := range p.Resources {
		byID[r.ID] = r
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)
	reported := make(map[string]bool)

	var visit func(id string, path []string) bool
	visit = func(id string, path []string) bool {
		switch state[id] {
		case done:
			return false
		case visiting:
			return true
		}
		state[id] = visiting
		path = append(path, id)

		r, ok := byID[id]
		if ok && r.SpecializationParent != "" {
			if visit(r.SpecializationParent, path) {
				cycleKey := id
				if !reported[cycleKey] {
					reported[cycleKey] = true
					diags = append(diags, diagnostics.New(diagnostics.CodeProfileCycle,
						fmt.Sprintf("profile specialization cycle involving %q", id), id))
				}
				return true
			}
		}
		state[id] = done
		return false
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		visit(id, nil)
	}

	return diags
}

// checkProfileRates flags an assigned profile resource that has no
// inheritable rate, walking the specialization chain for an ancestor point
// rate or rate range (E002, downgraded to Warning unless strict).
func checkProfileRates(p *model.Project, idToTask map[string]*model.Task) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	byID := make(map[string]model.Resource)
	for _, r := range p.Resources {
		byID[r.ID] = r
	}

	assignedProfiles := make(map[string]bool)
	p.Walk(func(_ []string, t *model.Task) {
		for _, a := range t.Assignments {
			if r, ok := byID[a.ResourceID]; ok && r.IsProfile {
				assignedProfiles[r.ID] = true
			}
		}
	})

	ids := make([]string, 0, len(assignedProfiles))
	for id := range assignedProfiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !hasInheritableRate(byID, id, make(map[string]bool)) {
			diags = append(diags, diagnostics.New(diagnostics.CodeProfileWithoutRate,
				fmt.Sprintf("profile %q is assigned but has no inheritable rate", id), id))
		}
	}

	_ = idToTask
	return diags
}

func hasInheritableRate(byID map[string]model.Resource, id string, seen map[string]bool) bool {
	if seen[id] {
		return false // cycle; checkProfileCycles already reports it
	}
	seen[id] = true

	r, ok := byID[id]
	if !ok {
		return false
	}
	if r.Rate != 0 || r.HasRateRange() {
		return true
	}
	if r.SpecializationParent == "" {
		return false
	}
	return hasInheritableRate(byID, r.SpecializationParent, seen)
}

// checkUnknownTraits flags a resource referencing a trait id the project
// never declares (W003).
func checkUnknownTraits(p *model.Project) []schedule.Diagnostic {
	var diags []schedule.Diagnostic

	known := make(map[string]bool)
	for _, tr := range p.Traits {
		known[tr.ID] = true
	}

	for _, r := range p.Resources {
		for _, t := range r.Traits {
			if !known[t] {
				diags = append(diags, diagnostics.New(diagnostics.CodeUnknownTrait,
					fmt.Sprintf("resource %q references unknown trait %q", r.ID, t), r.ID))
			}
		}
	}

	return diags
}
