package schedule

import (
	"time"

	"projectplan/model"
)

// PrimaryReasonKind is the dominant causal reason for a task's start date,
// selected by the precedence order in Explain (progress lock > constraint
// pin > predecessor > leveling shift > status-date floor > project start >
// calendar advance).
type PrimaryReasonKind string

const (
	ReasonProjectStart   PrimaryReasonKind = "ProjectStart"
	ReasonPredecessor    PrimaryReasonKind = "Predecessor"
	ReasonConstraint     PrimaryReasonKind = "Constraint"
	ReasonCalendarAdvance PrimaryReasonKind = "CalendarAdvance"
	ReasonLevelingShift  PrimaryReasonKind = "LevelingShift"
	ReasonProgressLock   PrimaryReasonKind = "ProgressLock"
	ReasonStatusDateFloor PrimaryReasonKind = "StatusDateFloor"
)

// PrimaryReason is the chosen explanation for why a task starts when it
// does.
type PrimaryReason struct {
	Kind PrimaryReasonKind

	// Detail fields are populated according to Kind; zero values mean "not
	// applicable to this kind".
	PredecessorID   string
	DependencyKind  model.DependencyKind
	Lag             time.Duration
	ConstraintKind  model.ConstraintKind
	ConstraintDate  time.Time
}

// CalendarImpact breaks down the working/weekend/holiday composition of a
// task's span.
type CalendarImpact struct {
	WorkingDays int
	WeekendDays int
	HolidayDays int
}

// ConstraintEffectLabel classifies what a constraint actually did once
// dates were resolved.
type ConstraintEffectLabel string

const (
	EffectPinned    ConstraintEffectLabel = "Pinned"
	EffectPushed    ConstraintEffectLabel = "Pushed"
	EffectCapped    ConstraintEffectLabel = "Capped"
	EffectRedundant ConstraintEffectLabel = "Redundant"
)

// ConstraintEffect is one constraint's resolved effect on a task.
type ConstraintEffect struct {
	Kind  model.ConstraintKind
	Date  time.Time
	Label ConstraintEffectLabel
}

// Explanation is a pure view over a published Schedule: it never modifies
// it. Explain(task_id) derives one of these on demand.
type Explanation struct {
	TaskID string

	Primary PrimaryReason

	CalendarImpact CalendarImpact

	ConstraintEffects []ConstraintEffect

	RelatedDiagnosticCodes []string
}
