package schedule

import "time"

// Options configures a single Schedule() invocation. The zero value runs
// the plain CPM/progress pipeline with no leveling, default severities,
// and the full diagnostic catalog.
type Options struct {
	// EnableLeveling runs the leveling engine (C6) after CPM, re-running
	// CPM once more if leveling extends the project.
	EnableLeveling bool

	// StatusDate overrides project.StatusDate for this run only.
	StatusDate *time.Time

	// MaxLevelingShiftFactor scales the leveling engine's shift cap
	// (runconfig's LevelingHorizonDays, 2000 by default). Zero means 1.0
	// (no scaling).
	MaxLevelingShiftFactor float64

	// Strict treats Warning diagnostics as Errors for return status only;
	// the log and Schedule contents are unchanged.
	Strict bool

	// CalendarsOnly restricts diagnostic emission to the C-family (calendar
	// diagnostics) when set, suppressing all other families.
	CalendarsOnly bool
}

// EffectiveHorizonDays returns the leveling shift cap after applying
// MaxLevelingShiftFactor to base.
func (o Options) EffectiveHorizonDays(base int) int {
	factor := o.MaxLevelingShiftFactor
	if factor == 0 {
		factor = 1.0
	}
	scaled := int(float64(base) * factor)
	if scaled <= 0 {
		return base
	}
	return scaled
}
