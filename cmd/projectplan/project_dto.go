package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"projectplan/model"
)

// These DTOs exist only so a project file on disk can use plain JSON
// (weekday names, ISO dates, hour counts) instead of Go's native
// time.Duration/time.Weekday encodings. They are a loader concern, not
// part of the engine's contract.

type projectDTO struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Start             string        `json:"start"`
	DefaultCalendarID string        `json:"default_calendar_id"`
	StatusDate        string        `json:"status_date,omitempty"`
	Tasks             []taskDTO     `json:"tasks"`
	Resources         []resourceDTO `json:"resources,omitempty"`
	Calendars         []calendarDTO `json:"calendars"`
}

type taskDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	EffortDays      float64          `json:"effort_days,omitempty"`
	DurationDays    float64          `json:"duration_days,omitempty"`
	Assignments     []assignmentDTO  `json:"assignments,omitempty"`
	Children        []taskDTO        `json:"children,omitempty"`
	Dependencies    []dependencyDTO  `json:"dependencies,omitempty"`
	Priority        int              `json:"priority,omitempty"`
	PercentComplete *float64         `json:"percent_complete,omitempty"`
	Status          string           `json:"status,omitempty"`
	Milestone       bool             `json:"milestone,omitempty"`
}

type dependencyDTO struct {
	PredecessorID string `json:"predecessor_id"`
	Kind          string `json:"kind,omitempty"`
	LagDays       int    `json:"lag_days,omitempty"`
}

type assignmentDTO struct {
	ResourceID string  `json:"resource_id"`
	Units      float64 `json:"units,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
}

type resourceDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Rate       float64 `json:"rate,omitempty"`
	Capacity   float64 `json:"capacity,omitempty"`
	Efficiency float64 `json:"efficiency,omitempty"`
	IsProfile  bool    `json:"is_profile,omitempty"`
}

type calendarDTO struct {
	ID              string   `json:"id"`
	WorkingWeekdays []string `json:"working_weekdays"`
	HoursPerDay     float64  `json:"hours_per_day"`
}

var weekdayByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func loadProject(path string) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var dto projectDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parsing project JSON: %w", err)
	}

	return dto.toModel()
}

func (dto projectDTO) toModel() (*model.Project, error) {
	start, err := parseDate(dto.Start)
	if err != nil {
		return nil, fmt.Errorf("project start: %w", err)
	}

	p := &model.Project{
		ID:                dto.ID,
		Name:              dto.Name,
		Start:             start,
		DefaultCalendarID: dto.DefaultCalendarID,
	}

	if dto.StatusDate != "" {
		sd, err := parseDate(dto.StatusDate)
		if err != nil {
			return nil, fmt.Errorf("status date: %w", err)
		}
		p.StatusDate = &sd
	}

	for _, c := range dto.Calendars {
		p.Calendars = append(p.Calendars, c.toModel())
	}
	for _, r := range dto.Resources {
		p.Resources = append(p.Resources, r.toModel())
	}
	// effort_days counts working days of the default calendar.
	workdayHours := 24.0
	for _, c := range dto.Calendars {
		if c.ID == dto.DefaultCalendarID && c.HoursPerDay > 0 {
			workdayHours = c.HoursPerDay
		}
	}
	for _, t := range dto.Tasks {
		converted, err := t.toModel(workdayHours)
		if err != nil {
			return nil, err
		}
		p.Tasks = append(p.Tasks, converted)
	}

	return p, nil
}

func (dto taskDTO) toModel(workdayHours float64) (*model.Task, error) {
	t := &model.Task{
		ID:              dto.ID,
		Name:            dto.Name,
		Priority:        dto.Priority,
		PercentComplete: dto.PercentComplete,
		Status:          model.Status(dto.Status),
		Milestone:       dto.Milestone,
	}

	if dto.EffortDays > 0 {
		d := time.Duration(dto.EffortDays * workdayHours * float64(time.Hour))
		t.Effort = &d
	}
	if dto.DurationDays > 0 {
		d := time.Duration(dto.DurationDays * 24 * float64(time.Hour))
		t.Duration = &d
	}

	for _, a := range dto.Assignments {
		t.Assignments = append(t.Assignments, model.Assignment{
			ResourceID: a.ResourceID, Units: a.Units, Quantity: a.Quantity,
		})
	}
	for _, d := range dto.Dependencies {
		t.Dependencies = append(t.Dependencies, model.Dependency{
			PredecessorID: d.PredecessorID,
			Kind:          model.DependencyKind(d.Kind),
			Lag:           time.Duration(d.LagDays) * 24 * time.Hour,
		})
	}
	for _, c := range dto.Children {
		child, err := c.toModel(workdayHours)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, child)
	}

	return t, nil
}

func (dto resourceDTO) toModel() model.Resource {
	return model.Resource{
		ID:         dto.ID,
		Name:       dto.Name,
		Rate:       dto.Rate,
		Capacity:   dto.Capacity,
		Efficiency: dto.Efficiency,
		IsProfile:  dto.IsProfile,
	}
}

func (dto calendarDTO) toModel() model.Calendar {
	working := make(map[time.Weekday]bool)
	ranges := make(map[time.Weekday][]model.TimeRange)
	minutes := int(dto.HoursPerDay * 60)
	for _, name := range dto.WorkingWeekdays {
		wd, ok := weekdayByName[name]
		if !ok {
			continue
		}
		working[wd] = true
		ranges[wd] = []model.TimeRange{{StartMinute: 0, EndMinute: minutes}}
	}
	return model.Calendar{ID: dto.ID, WorkingWeekdays: working, WorkingRanges: ranges}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
