package validate

import (
	"testing"

	"projectplan/model"
	"projectplan/schedule"
)

func hasCode(diags []schedule.Diagnostic, code string) bool {
	for _, d := range diags {
		if string(d.Code) == code {
			return true
		}
	}
	return false
}

func TestDuplicateSiblingIDEmitsE005(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a"},
			{ID: "a"},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "E005") {
		t.Errorf("expected E005 for duplicate sibling ids, got %+v", diags)
	}
}

func TestUnresolvedDependencyEmitsE004(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a", Dependencies: []model.Dependency{{PredecessorID: "ghost"}}},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "E004") {
		t.Errorf("expected E004 for unresolved dependency, got %+v", diags)
	}
}

func TestUnresolvedCalendarEmitsE004(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "missing",
		Tasks:             []*model.Task{{ID: "a"}},
	}

	diags := Run(p)
	if !hasCode(diags, "E004") {
		t.Errorf("expected E004 for an unresolved default calendar, got %+v", diags)
	}
}

func TestUnresolvedAssignmentEmitsE004(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a", Assignments: []model.Assignment{{ResourceID: "ghost"}}},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "E004") {
		t.Errorf("expected E004 for an unresolved assignment, got %+v", diags)
	}
}

func TestProfileSpecializationCycleEmitsE001(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks:             []*model.Task{{ID: "a"}},
		Resources: []model.Resource{
			{ID: "senior", IsProfile: true, SpecializationParent: "junior"},
			{ID: "junior", IsProfile: true, SpecializationParent: "senior"},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "E001") {
		t.Errorf("expected E001 for a profile specialization cycle, got %+v", diags)
	}
}

func TestAssignedProfileWithoutInheritableRateEmitsE002(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a", Assignments: []model.Assignment{{ResourceID: "ghostwriter"}}},
		},
		Resources: []model.Resource{
			{ID: "ghostwriter", IsProfile: true},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "E002") {
		t.Errorf("expected E002 for a rateless assigned profile, got %+v", diags)
	}
}

func TestProfileInheritsRateFromAncestor(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a", Assignments: []model.Assignment{{ResourceID: "junior"}}},
		},
		Resources: []model.Resource{
			{ID: "senior", IsProfile: true, Rate: 120},
			{ID: "junior", IsProfile: true, SpecializationParent: "senior"},
		},
	}

	diags := Run(p)
	if hasCode(diags, "E002") {
		t.Errorf("did not expect E002 when a rate is inherited from an ancestor, got %+v", diags)
	}
}

func TestUnknownTraitEmitsW003(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks:             []*model.Task{{ID: "a"}},
		Resources: []model.Resource{
			{ID: "dev", Traits: []string{"ghost-trait"}},
		},
	}

	diags := Run(p)
	if !hasCode(diags, "W003") {
		t.Errorf("expected W003 for an unknown trait reference, got %+v", diags)
	}
}

func TestCleanProjectHasNoDiagnostics(t *testing.T) {
	p := &model.Project{
		DefaultCalendarID: "standard",
		Calendars:         []model.Calendar{{ID: "standard"}},
		Tasks: []*model.Task{
			{ID: "a", Assignments: []model.Assignment{{ResourceID: "dev"}}},
		},
		Resources: []model.Resource{
			{ID: "dev", Rate: 100},
		},
	}

	diags := Run(p)
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics for a clean project, got %+v", diags)
	}
}
