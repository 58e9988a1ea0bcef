package schedule

import "time"

// OverlapShape classifies the temporal shape of a resource over-allocation
// interval's contributing tasks, a richer taxonomy than a bare
// over/under-capacity boolean, adapted from the host planner's legacy
// conflict-detection modules.
type OverlapShape string

const (
	OverlapPartial   OverlapShape = "PARTIAL"
	OverlapNested    OverlapShape = "NESTED"
	OverlapAdjacent  OverlapShape = "ADJACENT"
	OverlapIdentical OverlapShape = "IDENTICAL"
	OverlapComplete  OverlapShape = "COMPLETE"
)

// OverlapSeverity grades how serious an over-allocation interval is.
type OverlapSeverity string

const (
	SeverityLow      OverlapSeverity = "LOW"
	SeverityMedium   OverlapSeverity = "MEDIUM"
	SeverityHigh     OverlapSeverity = "HIGH"
	SeverityCritical OverlapSeverity = "CRITICAL"
)

// Conflict is one contiguous interval where a resource's committed units
// exceeded its capacity.
type Conflict struct {
	ResourceID       string
	Start, End       time.Time // inclusive working-day span
	ContributingTasks []string
	PeakCommitted    float64
	Capacity         float64

	Shape    OverlapShape
	Severity OverlapSeverity
}

// OverAllocationUnits is how far PeakCommitted exceeds Capacity.
func (c Conflict) OverAllocationUnits() float64 {
	if c.PeakCommitted <= c.Capacity {
		return 0
	}
	return c.PeakCommitted - c.Capacity
}

// ShiftReason names why a task was moved during leveling.
type ShiftReason string

const ReasonResourceConflict ShiftReason = "ResourceConflict"

// ShiftRecord audits one task move made by the leveling engine.
type ShiftRecord struct {
	TaskID      string
	OldStart    time.Time
	NewStart    time.Time
	Reason      ShiftReason
	ResourceID  string
	DisplacedBy string // id of the task this shift yielded priority to
}

// LevelingResult is the full audit trail of a leveling pass: the schedule
// snapshot from before leveling ran, every shift applied, any conflicts
// that remained unresolved within the search horizon, and whether the
// project's end date was pushed out as a result.
type LevelingResult struct {
	PreLevelingSchedule *Schedule
	Shifts              []ShiftRecord
	UnresolvedConflicts []Conflict
	Extended            bool
}
