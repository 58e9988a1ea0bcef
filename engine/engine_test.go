package engine

import (
	"testing"
	"time"

	"projectplan/model"
	"projectplan/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func days(n int) *time.Duration {
	d := time.Duration(n) * 24 * time.Hour
	return &d
}

func fiveDayProject(tasks ...*model.Task) *model.Project {
	return &model.Project{
		Start:             date(2025, 1, 6),
		DefaultCalendarID: "standard",
		Tasks:             tasks,
		Calendars: []model.Calendar{
			{
				ID: "standard",
				WorkingWeekdays: map[time.Weekday]bool{
					time.Monday: true, time.Tuesday: true, time.Wednesday: true,
					time.Thursday: true, time.Friday: true,
				},
				WorkingRanges: map[time.Weekday][]model.TimeRange{
					time.Monday:    {{StartMinute: 0, EndMinute: 480}},
					time.Tuesday:   {{StartMinute: 0, EndMinute: 480}},
					time.Wednesday: {{StartMinute: 0, EndMinute: 480}},
					time.Thursday:  {{StartMinute: 0, EndMinute: 480}},
					time.Friday:    {{StartMinute: 0, EndMinute: 480}},
				},
			},
		},
	}
}

func TestScheduleEndToEndFinishToStart(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "A", Duration: days(5)},
		&model.Task{ID: "B", Duration: days(3), Dependencies: []model.Dependency{{PredecessorID: "A"}}},
	)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	a, b := run.Schedule.Tasks["A"], run.Schedule.Tasks["B"]
	if !a.Finish.Equal(date(2025, 1, 10)) {
		t.Errorf("A finish = %s, want 2025-01-10", a.Finish)
	}
	if !b.Start.Equal(date(2025, 1, 13)) {
		t.Errorf("B start = %s, want 2025-01-13", b.Start)
	}

	for _, d := range run.Diagnostics.Diagnostics {
		if d.Severity == schedule.SeverityError {
			t.Errorf("unexpected error diagnostic: %+v", d)
		}
	}
}

func TestContainerDependencyDoesNotPropagateWithoutExplicitChildDependency(t *testing.T) {
	design := &model.Task{ID: "design", Duration: days(5)}
	featureX := &model.Task{ID: "feature_x", Duration: days(3)}
	development := &model.Task{
		ID:           "development",
		Dependencies: []model.Dependency{{PredecessorID: "design"}},
		Children:     []*model.Task{featureX},
	}
	p := fiveDayProject(design, development)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	fx := run.Schedule.Tasks["development.feature_x"]
	if fx == nil {
		t.Fatalf("expected development.feature_x in the published schedule")
	}
	if !fx.Start.Equal(date(2025, 1, 6)) {
		t.Errorf("feature_x start = %s, want 2025-01-06 (container dependency must not propagate)", fx.Start)
	}

	found := false
	for _, d := range run.Diagnostics.Diagnostics {
		if d.Code == "W014" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected W014 for the non-propagated container dependency, got %+v", run.Diagnostics.Diagnostics)
	}
}

func TestContainerDependencyPropagatesWithExplicitChildDependency(t *testing.T) {
	design := &model.Task{ID: "design", Duration: days(5)}
	featureX := &model.Task{ID: "feature_x", Duration: days(3), Dependencies: []model.Dependency{{PredecessorID: "design"}}}
	development := &model.Task{
		ID:           "development",
		Dependencies: []model.Dependency{{PredecessorID: "design"}},
		Children:     []*model.Task{featureX},
	}
	p := fiveDayProject(design, development)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	fx := run.Schedule.Tasks["development.feature_x"]
	if fx == nil {
		t.Fatalf("expected development.feature_x in the published schedule")
	}
	if !fx.Start.Equal(date(2025, 1, 13)) {
		t.Errorf("feature_x start = %s, want 2025-01-13", fx.Start)
	}

	for _, d := range run.Diagnostics.Diagnostics {
		if d.Code == "W014" {
			t.Errorf("did not expect W014 once the child repeats the dependency explicitly")
		}
	}
}

func TestInfeasibleConstraintWindowEmitsE003AndNoTrustedSchedule(t *testing.T) {
	tenWorkingDays := 10 * 8 * time.Hour
	p := fiveDayProject(&model.Task{
		ID:     "bounded",
		Effort: &tenWorkingDays,
		Constraints: []model.Constraint{
			{Kind: model.StartNoEarlierThan, Date: date(2025, 2, 1)},
			{Kind: model.FinishNoLaterThan, Date: date(2025, 2, 7)},
		},
	})

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	found := false
	for _, d := range run.Diagnostics.Diagnostics {
		if d.Code == "E003" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E003 for the infeasible constraint window, got %+v", run.Diagnostics.Diagnostics)
	}
	if !run.Diagnostics.HasErrorsStrict(false) {
		t.Errorf("expected HasErrorsStrict(false) to report true for an E003-level error")
	}
}

func TestScheduleWithLevelingAppliesDeterministicShift(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "a", Duration: days(5), Priority: 1000, Assignments: []model.Assignment{{ResourceID: "dev", Units: 1.0}}},
		&model.Task{ID: "b", Duration: days(5), Priority: 500, Assignments: []model.Assignment{{ResourceID: "dev", Units: 1.0}}},
	)
	p.Resources = []model.Resource{{ID: "dev", Capacity: 1.0}}

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{EnableLeveling: true})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	a, b := run.Schedule.Tasks["a"], run.Schedule.Tasks["b"]
	if !a.Start.Equal(date(2025, 1, 6)) {
		t.Errorf("a start = %s, want 2025-01-06", a.Start)
	}
	if !b.Start.Equal(date(2025, 1, 13)) {
		t.Errorf("b start = %s, want 2025-01-13 (shifted behind a by leveling)", b.Start)
	}
	if run.Leveling == nil || len(run.Leveling.Shifts) != 1 {
		t.Fatalf("expected exactly one leveling shift, got %+v", run.Leveling)
	}
}

func TestExplainReturnsPredecessorReason(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "A", Duration: days(5)},
		&model.Task{ID: "B", Duration: days(3), Dependencies: []model.Dependency{{PredecessorID: "A"}}},
	)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	expl, err := eng.Explain(run, "B")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if expl.Primary.Kind != schedule.ReasonPredecessor {
		t.Errorf("primary reason = %v, want Predecessor", expl.Primary.Kind)
	}
}

func TestDetectOverallocationsSeesUnresolvedConflictsWithoutLeveling(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "a", Duration: days(5), Assignments: []model.Assignment{{ResourceID: "dev", Units: 1.0}}},
		&model.Task{ID: "b", Duration: days(5), Assignments: []model.Assignment{{ResourceID: "dev", Units: 1.0}}},
	)
	p.Resources = []model.Resource{{ID: "dev", Capacity: 1.0}}

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	conflicts, err := eng.DetectOverallocations(run)
	if err != nil {
		t.Fatalf("DetectOverallocations: %v", err)
	}
	if len(conflicts) == 0 {
		t.Errorf("expected at least one over-allocation conflict when leveling never ran")
	}
}

func TestDependencyCycleShortCircuitsScheduling(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "a", Dependencies: []model.Dependency{{PredecessorID: "b"}}},
		&model.Task{ID: "b", Dependencies: []model.Dependency{{PredecessorID: "a"}}},
	)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if len(run.Schedule.Tasks) != 0 {
		t.Errorf("expected an empty schedule when a dependency cycle is present, got %+v", run.Schedule.Tasks)
	}

	found := false
	for _, d := range run.Diagnostics.Diagnostics {
		if d.Code == "E001" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a dependency-cycle diagnostic, got %+v", run.Diagnostics.Diagnostics)
	}
}

func TestStructuralErrorShortCircuitsScheduling(t *testing.T) {
	p := fiveDayProject(
		&model.Task{ID: "a", Dependencies: []model.Dependency{{PredecessorID: "ghost"}}},
	)

	eng := NewDefault()
	run, err := eng.Schedule(p, nil, schedule.Options{})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if len(run.Schedule.Tasks) != 0 {
		t.Errorf("expected an empty best-effort schedule after a structural validation failure")
	}

	found := false
	for _, d := range run.Diagnostics.Diagnostics {
		if d.Code == "E004" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected E004 for the unresolved dependency, got %+v", run.Diagnostics.Diagnostics)
	}
}
