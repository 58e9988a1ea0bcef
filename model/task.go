package model

import "time"

// DefaultPriority is the priority a task carries when none is declared.
const DefaultPriority = 500

// Task is a single node in the WBS tree. A Task with no Children is a
// leaf and participates directly in the precedence graph; a Task with
// Children is a container whose dates are always derived, never scheduled.
type Task struct {
	ID   string // unique among siblings
	Name string

	Effort   *time.Duration // intent: duration derived from effort + assignments
	Duration *time.Duration // intent: fixed duration; wins over Effort if both set

	Assignments []Assignment
	Children    []*Task
	Dependencies []Dependency

	Priority int // default 500, higher sorts first in tie-breaks

	PercentComplete   *float64       // 0-100
	ActualStart       *time.Time
	ActualFinish      *time.Time
	ExplicitRemaining *time.Duration

	Status Status
	Regime Regime

	Constraints []Constraint

	Milestone bool

	CalendarID string // overrides the project/resource default calendar
}

// IsLeaf reports whether this task has no children.
func (t *Task) IsLeaf() bool { return len(t.Children) == 0 }

// IsContainer reports whether this task has children.
func (t *Task) IsContainer() bool { return len(t.Children) > 0 }

// EffectivePriority returns Priority with its documented default applied.
func (t *Task) EffectivePriority() int {
	if t.Priority == 0 {
		return DefaultPriority
	}
	return t.Priority
}

// EffectiveRegime resolves Regime using the documented default: a milestone
// defaults to Event, any other task defaults to Work.
func (t *Task) EffectiveRegime() Regime {
	if t.Regime != "" {
		return t.Regime
	}
	if t.Milestone {
		return RegimeEvent
	}
	return RegimeWork
}

// HasFixedDuration reports whether Duration should win over Effort, per the
// documented override: when both are present, Duration wins.
func (t *Task) HasFixedDuration() bool {
	return t.Duration != nil
}

// HasEffort reports whether an effort intent is declared.
func (t *Task) HasEffort() bool {
	return t.Effort != nil
}

// QualifiedID builds the fully-qualified dotted path from a root-relative
// ancestor chain (ancestors excluding this task, in root-to-parent order)
// down to this task's own ID. Fully-qualified ids are the engine's stable
// identity: baselines remain comparable across WBS reorganization as long
// as leaf ids (the ID field at each level) are preserved.
func QualifiedID(ancestors []string, id string) string {
	out := id
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = ancestors[i] + "." + out
	}
	return out
}

// CompleteFraction returns PercentComplete normalized to [0,1], defaulting
// to 0 when unset.
func (t *Task) CompleteFraction() float64 {
	if t.PercentComplete == nil {
		return 0
	}
	return *t.PercentComplete / 100.0
}
