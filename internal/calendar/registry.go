package calendar

import (
	"fmt"

	"projectplan/model"
)

// Registry holds every calendar declared on a Project, built once per run,
// and resolves the effective calendar for a task or resource considering
// overrides.
type Registry struct {
	byID    map[string]*WorkCalendar
	default_ *WorkCalendar
}

// BuildRegistry builds a WorkCalendar for every model.Calendar on the
// project and resolves the project default. It returns the first fatal
// calendar error encountered (C001/C002), or an error if the default
// calendar id does not resolve.
func BuildRegistry(p *model.Project) (*Registry, error) {
	reg := &Registry{byID: make(map[string]*WorkCalendar)}

	for _, c := range p.Calendars {
		wc, err := Build(c)
		if err != nil {
			return nil, err
		}
		reg.byID[c.ID] = wc
	}

	def, ok := reg.byID[p.DefaultCalendarID]
	if !ok {
		return nil, fmt.Errorf("default calendar %q does not resolve to any declared calendar", p.DefaultCalendarID)
	}
	reg.default_ = def

	return reg, nil
}

// Default returns the project's default calendar.
func (r *Registry) Default() *WorkCalendar { return r.default_ }

// Resolve returns the calendar for the given override id, falling back to
// the default when override is empty or names no known calendar.
func (r *Registry) Resolve(override string) *WorkCalendar {
	if override == "" {
		return r.default_
	}
	if wc, ok := r.byID[override]; ok {
		return wc
	}
	return r.default_
}

// ForTask returns the effective calendar for a task, honoring its
// CalendarID override.
func (r *Registry) ForTask(t *model.Task) *WorkCalendar {
	return r.Resolve(t.CalendarID)
}

// ForResource returns the effective calendar for a resource, honoring its
// CalendarID override.
func (r *Registry) ForResource(res model.Resource) *WorkCalendar {
	return r.Resolve(res.CalendarID)
}
