// Package model defines the canonical project entities the scheduling
// engine consumes: Project, Task, Dependency, Constraint, Assignment,
// Resource, Trait and Calendar, as described in the data model (project
// graph in, nothing else). The engine borrows a Project read-only during a
// run; nothing in this package is mutated by the engine.
package model

import "time"

// DependencyKind is one of the four precedence relations between a
// predecessor and a successor task.
type DependencyKind string

const (
	FinishToStart  DependencyKind = "FS"
	StartToStart   DependencyKind = "SS"
	FinishToFinish DependencyKind = "FF"
	StartToFinish  DependencyKind = "SF"
)

// ConstraintKind is one of the six date constraint kinds a task may carry.
type ConstraintKind string

const (
	MustStartOn          ConstraintKind = "MustStartOn"
	MustFinishOn         ConstraintKind = "MustFinishOn"
	StartNoEarlierThan   ConstraintKind = "StartNoEarlierThan"
	StartNoLaterThan     ConstraintKind = "StartNoLaterThan"
	FinishNoEarlierThan  ConstraintKind = "FinishNoEarlierThan"
	FinishNoLaterThan    ConstraintKind = "FinishNoLaterThan"
)

// IsPin reports whether this constraint kind pins an exact boundary rather
// than acting as a floor or ceiling.
func (k ConstraintKind) IsPin() bool {
	return k == MustStartOn || k == MustFinishOn
}

// Regime is a task's temporal category.
type Regime string

const (
	RegimeWork     Regime = "Work"
	RegimeEvent    Regime = "Event"
	RegimeDeadline Regime = "Deadline"
)

// Status is the caller-declared progress status of a task. It is distinct
// from the engine-derived Complete/InProgress/NotStarted classification
// computed by the progress overlay (component C5), which is authoritative.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "OnHold"
	StatusCancelled  Status = "Cancelled"
)

// Dependency points from a task to one of its predecessors.
type Dependency struct {
	PredecessorID string // qualified id; may address a container
	Kind          DependencyKind
	Lag           time.Duration // signed; positive delays the successor
}

// EffectiveKind returns the dependency kind, defaulting to FinishToStart
// when unset.
func (d Dependency) EffectiveKind() DependencyKind {
	if d.Kind == "" {
		return FinishToStart
	}
	return d.Kind
}

// Constraint is a single date constraint applied to a task.
type Constraint struct {
	Kind ConstraintKind
	Date time.Time
}

// Assignment binds a task to a resource or resource profile.
type Assignment struct {
	ResourceID string
	Units      float64 // allocation fraction; default 1.0
	Quantity   int      // multiplier, e.g. "developers x 2"; default 1
}

// EffectiveUnits returns Units with its documented default applied.
func (a Assignment) EffectiveUnits() float64 {
	if a.Units == 0 {
		return 1.0
	}
	return a.Units
}

// EffectiveQuantity returns Quantity with its documented default applied.
func (a Assignment) EffectiveQuantity() int {
	if a.Quantity == 0 {
		return 1
	}
	return a.Quantity
}
