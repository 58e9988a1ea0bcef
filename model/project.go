package model

import "time"

// Project is the root of the WBS tree and the sole input to the engine.
// The engine borrows it read-only during a run; it is never mutated.
type Project struct {
	ID      string
	Name    string
	Start   time.Time // inclusive
	End     *time.Time

	DefaultCurrency   string
	DefaultCalendarID string

	StatusDate *time.Time

	Tasks []*Task // ordered top-level tasks

	Resources []Resource // concrete resources and profiles (IsProfile flags profiles)
	Traits    []Trait
	Calendars []Calendar

	// Constraints declared at the project level rather than inline on a
	// task; each names the task it binds by qualified id. Most constraints
	// are expected inline on Task.Constraints; this exists for callers
	// (e.g. a surface syntax with a separate "constraints:" block) that
	// prefer to declare them out of line.
	Constraints []ProjectConstraint
}

// ProjectConstraint binds a Constraint to a task by qualified id, for
// constraints declared outside the task tree.
type ProjectConstraint struct {
	TaskID     string
	Constraint Constraint
}

// FindCalendar returns the calendar with the given id, or false if absent.
func (p *Project) FindCalendar(id string) (Calendar, bool) {
	for _, c := range p.Calendars {
		if c.ID == id {
			return c, true
		}
	}
	return Calendar{}, false
}

// DefaultCalendar returns the project's default calendar, or false if it
// cannot be resolved (a fatal configuration error per the model invariant
// that exactly one default calendar must be resolvable).
func (p *Project) DefaultCalendar() (Calendar, bool) {
	return p.FindCalendar(p.DefaultCalendarID)
}

// FindResource returns the resource or profile with the given id.
func (p *Project) FindResource(id string) (Resource, bool) {
	for _, r := range p.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// FindTrait returns the trait with the given id.
func (p *Project) FindTrait(id string) (Trait, bool) {
	for _, tr := range p.Traits {
		if tr.ID == id {
			return tr, true
		}
	}
	return Trait{}, false
}

// Walk invokes fn for every task in the tree in pre-order (the task itself,
// then each child subtree in order), passing the chain of ancestor ids from
// root to immediate parent. Walk is the canonical traversal used by the
// flattener (C3) to produce its reproducible leaf ordering.
func (p *Project) Walk(fn func(ancestors []string, task *Task)) {
	for _, t := range p.Tasks {
		walkTask(nil, t, fn)
	}
}

func walkTask(ancestors []string, t *Task, fn func([]string, *Task)) {
	fn(ancestors, t)
	childAncestors := append(append([]string{}, ancestors...), t.ID)
	for _, c := range t.Children {
		walkTask(childAncestors, c, fn)
	}
}
