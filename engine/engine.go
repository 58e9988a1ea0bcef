// Package engine is the public entry point for the scheduling engine
// (component C8): it wires the flattener, validator, CPM solver, progress
// overlay, leveling engine, and diagnostics catalog into a single
// deterministic Schedule() call, plus the on-demand Explain() and
// DetectOverallocations() views layered over an already-published run.
package engine

import (
	"fmt"

	"github.com/google/uuid"

	"projectplan/internal/calendar"
	"projectplan/internal/cpm"
	"projectplan/internal/dag"
	"projectplan/internal/diagnostics"
	"projectplan/internal/leveling"
	"projectplan/internal/progress"
	"projectplan/internal/validate"
	"projectplan/logging"
	"projectplan/model"
	"projectplan/runconfig"
	"projectplan/schedule"
)

// Engine holds the run-level configuration (leveling horizon, default
// strictness) resolved once and reused across Schedule() calls.
type Engine struct {
	cfg runconfig.Config
	log *logging.Logger
}

// New builds an Engine from a resolved Config. Callers typically obtain cfg
// via runconfig.Load.
func New(cfg runconfig.Config) *Engine {
	return &Engine{cfg: cfg, log: logging.NewDefault()}
}

// NewDefault builds an Engine with runconfig.Default() and no file/env
// overrides applied.
func NewDefault() *Engine {
	return New(runconfig.Default())
}

// Run is the full output of a Schedule() call: the dated Schedule, the
// complete diagnostic log, the flattened graph and calendar registry (kept
// around so Explain/DetectOverallocations can be called against this same
// run without re-flattening), and the leveling audit trail when leveling
// ran.
type Run struct {
	Schedule   *schedule.Schedule
	Diagnostics *schedule.DiagnosticLog
	Leveling   *schedule.LevelingResult

	project *model.Project
	graph   *dag.LeafDAG
	calendars *calendar.Registry
}

// Schedule validates, flattens, and solves a Project, returning the
// published Schedule and its DiagnosticLog. If validation finds an
// Error-severity structural problem, or the dependency graph has a cycle,
// Schedule returns an empty Schedule alongside the log; no best-effort
// dates are computed. Errors found by the CPM solve itself (such as E003)
// leave the computed dates in place, so it is the caller's responsibility
// to check DiagnosticLog.HasErrorsStrict(opts.Strict) before trusting them.
func (e *Engine) Schedule(p *model.Project, sm *model.SourceMap, opts schedule.Options) (*Run, error) {
	runID := uuid.NewString()
	diagLog := schedule.NewDiagnosticLog(runID)

	strict := opts.Strict || e.cfg.StrictByDefault

	modelDiags := validate.Run(p)
	for _, d := range modelDiags {
		diagLog.Add(diagnostics.WithLocation(d, sm, relatedSubject(d)))
	}

	if hasStructuralError(modelDiags) {
		e.log.Warn("project failed structural validation; returning diagnostics only")
		diagnostics.Sort(diagLog.Diagnostics)
		diagLog.Diagnostics = diagnostics.Filter(diagLog.Diagnostics, opts.CalendarsOnly)
		return &Run{Schedule: schedule.NewSchedule(runID), Diagnostics: diagLog, project: p}, nil
	}

	reg, err := calendar.BuildRegistry(p)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	g, err := dag.Flatten(p)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	cycles := g.DetectCycles()
	for _, cycle := range cycles {
		diagLog.Add(diagnostics.New(diagnostics.CodeProfileCycle,
			fmt.Sprintf("dependency cycle detected among tasks: %v", cycle.Members), cycle.Members...))
	}
	if len(cycles) > 0 {
		e.log.Warn("project contains a dependency cycle; returning diagnostics only")
		diagnostics.Sort(diagLog.Diagnostics)
		diagLog.Diagnostics = diagnostics.Filter(diagLog.Diagnostics, opts.CalendarsOnly)
		return &Run{Schedule: schedule.NewSchedule(runID), Diagnostics: diagLog, project: p}, nil
	}
	for _, orphan := range g.OrphanContainerDependencies() {
		diagLog.Add(diagnostics.WithLocation(
			diagnostics.New(diagnostics.CodeContainerDependencyOrphan,
				fmt.Sprintf("container %q depends on a predecessor but child %q does not repeat the dependency", orphan.ContainerID, orphan.ChildID),
				orphan.ContainerID, orphan.ChildID),
			sm, orphan.ChildID))
	}

	sch, cpmDiags := cpm.Run(p, g, reg, sm)
	for _, d := range cpmDiags {
		diagLog.Add(d)
	}

	effectiveStatusDate := p.StatusDate
	if opts.StatusDate != nil {
		effectiveStatusDate = opts.StatusDate
	}
	for _, d := range progress.Run(p, g, sch, effectiveStatusDate) {
		diagLog.Add(d)
	}

	var levelingResult *schedule.LevelingResult
	if opts.EnableLeveling {
		horizon := opts.EffectiveHorizonDays(e.cfg.LevelingHorizonDays)
		var levelDiags []schedule.Diagnostic
		levelingResult, levelDiags = leveling.Run(p, g, reg, sch, horizon)
		for _, d := range levelDiags {
			diagLog.Add(d)
		}

		if levelingResult.Extended {
			e.log.Info("leveling extended the project; re-running CPM for the final dates")
			resch, recpmDiags := cpm.Run(p, g, reg, sm)
			sch = resch
			for _, d := range recpmDiags {
				diagLog.Add(d)
			}
			for _, d := range progress.Run(p, g, sch, effectiveStatusDate) {
				diagLog.Add(d)
			}
		}
	}

	sch.RunID = runID

	diagnostics.Sort(diagLog.Diagnostics)
	diagLog.Diagnostics = diagnostics.Filter(diagLog.Diagnostics, opts.CalendarsOnly)

	if diagLog.HasErrorsStrict(strict) {
		e.log.Warn("run %s completed with %d error-level diagnostic(s)", runID, len(diagLog.BySeverity(schedule.SeverityError)))
	}

	return &Run{
		Schedule:    sch,
		Diagnostics: diagLog,
		Leveling:    levelingResult,
		project:     p,
		graph:       g,
		calendars:   reg,
	}, nil
}

// Explain derives the on-demand explanation view for one task from an
// already-published Run.
func (e *Engine) Explain(r *Run, taskID string) (schedule.Explanation, error) {
	if r.graph == nil {
		return schedule.Explanation{}, fmt.Errorf("engine: Explain requires a Run produced by a successful Schedule() call")
	}
	var shifts []schedule.ShiftRecord
	if r.Leveling != nil {
		shifts = r.Leveling.Shifts
	}
	return diagnostics.Explain(taskID, r.project, r.graph, r.calendars, r.Schedule, shifts, r.project.StatusDate, r.Diagnostics.Diagnostics)
}

// DetectOverallocations runs the leveling engine's conflict detection alone
// (no shifting), useful for a caller that wants to inspect over-allocations
// without committing to leveling's date changes.
func (e *Engine) DetectOverallocations(r *Run) ([]schedule.Conflict, error) {
	if r.graph == nil {
		return nil, fmt.Errorf("engine: DetectOverallocations requires a Run produced by a successful Schedule() call")
	}
	return leveling.DetectConflicts(r.project, r.graph, r.calendars, r.Schedule), nil
}

// LevelResources re-runs the leveling engine against the Run's current
// Schedule on demand, mutating r.Schedule in place — useful for a caller
// that obtained a Run without Options.EnableLeveling and now wants to apply
// it explicitly.
func (e *Engine) LevelResources(r *Run) (*schedule.LevelingResult, error) {
	if r.graph == nil {
		return nil, fmt.Errorf("engine: LevelResources requires a Run produced by a successful Schedule() call")
	}
	horizon := e.cfg.LevelingHorizonDays
	result, diags := leveling.Run(r.project, r.graph, r.calendars, r.Schedule, horizon)
	for _, d := range diags {
		r.Diagnostics.Add(d)
	}
	diagnostics.Sort(r.Diagnostics.Diagnostics)
	r.Leveling = result
	return result, nil
}

func hasStructuralError(diags []schedule.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == schedule.SeverityError {
			return true
		}
	}
	return false
}

func relatedSubject(d schedule.Diagnostic) string {
	if len(d.Related) > 0 {
		return d.Related[0]
	}
	return ""
}
