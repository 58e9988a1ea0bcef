package schedule

import "time"

// TaskSchedule is the dated outcome for a single task (leaf or container).
type TaskSchedule struct {
	ID       string
	Start    time.Time
	Finish   time.Time
	Duration time.Duration // actual duration used, in calendar time

	TotalSlack time.Duration
	FreeSlack  time.Duration
	Critical   bool

	Assignments []AssignmentCost

	IsContainer bool

	// Progress is the overlay (component C5) classification and remaining
	// work, left zero-valued until the progress pass runs.
	Progress ProgressOverlay
}

// ProgressClassification is the engine-derived (authoritative) progress
// state of a task, distinct from the caller-declared model.Status.
type ProgressClassification string

const (
	NotStarted ProgressClassification = "NotStarted"
	InProgress ProgressClassification = "InProgress"
	Complete   ProgressClassification = "Complete"
)

// ProgressOverlay is the result of applying a status date to a task's CPM
// dates: its classification, percent complete, and remaining duration.
type ProgressOverlay struct {
	Classification    ProgressClassification
	PercentComplete   float64       // 0-100
	RemainingDuration time.Duration // unworked portion of Duration
}

// AssignmentCost is the allocated time and cost contribution of one
// assignment on a scheduled task.
type AssignmentCost struct {
	ResourceID    string
	AllocatedTime time.Duration
	Cost          float64
}

// Schedule is the fully-dated output of a run: one TaskSchedule per task
// (leaf and container), the critical path, and project-wide bounds.
// Produced fresh per run; the engine holds nothing between runs.
type Schedule struct {
	RunID string

	ProjectStart time.Time
	ProjectEnd   time.Time

	// TaskOrder is the stable iteration order (leaves in topological order,
	// then containers by qualified id) used whenever Tasks is walked,
	// guaranteeing determinism independent of Go's randomized map iteration.
	TaskOrder []string
	Tasks     map[string]*TaskSchedule

	CriticalPath []string // task ids with zero total slack

	CostPoint    *float64
	CostRangeMin *float64
	CostRangeMax *float64
}

// NewSchedule creates an empty Schedule for the given run.
func NewSchedule(runID string) *Schedule {
	return &Schedule{
		RunID: runID,
		Tasks: make(map[string]*TaskSchedule),
	}
}

// Put records a TaskSchedule, appending to TaskOrder only on first insert so
// re-publishing (e.g. after a re-CPM pass following leveling) never
// duplicates the order.
func (s *Schedule) Put(ts *TaskSchedule) {
	if _, exists := s.Tasks[ts.ID]; !exists {
		s.TaskOrder = append(s.TaskOrder, ts.ID)
	}
	s.Tasks[ts.ID] = ts
}

// Ordered returns every TaskSchedule in TaskOrder.
func (s *Schedule) Ordered() []*TaskSchedule {
	out := make([]*TaskSchedule, 0, len(s.TaskOrder))
	for _, id := range s.TaskOrder {
		out = append(out, s.Tasks[id])
	}
	return out
}
