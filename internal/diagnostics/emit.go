package diagnostics

import (
	"sort"
	"strings"

	"projectplan/model"
	"projectplan/schedule"
)

// New builds a Diagnostic for the given code with its fixed severity,
// applying strict-mode escalation only to the return-status computation
// (schedule.DiagnosticLog.HasErrorsStrict), never to the stored Severity.
func New(code Code, message string, related ...string) schedule.Diagnostic {
	return schedule.Diagnostic{
		Code:     string(code),
		Severity: Severity(code),
		Message:  message,
		Related:  related,
	}
}

// WithLocation attaches a source location (when the caller's SourceMap has
// one) to a diagnostic.
func WithLocation(d schedule.Diagnostic, sm *model.SourceMap, id string) schedule.Diagnostic {
	if sm == nil {
		return d
	}
	if loc, ok := sm.TaskLocation(id); ok {
		d.Location = &loc
		return d
	}
	if loc, ok := sm.ResourceLocation(id); ok {
		d.Location = &loc
	}
	return d
}

// Sort orders diagnostics by bucket first (structural errors, calendar
// errors, cost warnings, assignment warnings, calendar warnings,
// compatibility warnings, hints, info), then within each bucket by
// (source_location, code, related_ids).
func Sort(diags []schedule.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		ba, bb := bucketOf(Code(a.Code)), bucketOf(Code(b.Code))
		if ba != bb {
			return ba < bb
		}
		la, lb := locationKey(a), locationKey(b)
		if la != lb {
			return la < lb
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return strings.Join(a.Related, ",") < strings.Join(b.Related, ",")
	})
}

func locationKey(d schedule.Diagnostic) string {
	if d.Location == nil {
		return ""
	}
	return d.Location.File
}

// Filter restricts a diagnostic slice to the C-family (calendar) codes
// only, honoring schedule.Options.CalendarsOnly.
func Filter(diags []schedule.Diagnostic, calendarsOnly bool) []schedule.Diagnostic {
	if !calendarsOnly {
		return diags
	}
	var out []schedule.Diagnostic
	for _, d := range diags {
		if strings.HasPrefix(d.Code, "C") {
			out = append(out, d)
		}
	}
	return out
}
