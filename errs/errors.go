// Package errs provides the contextual error types used across the
// scheduling engine, plus an aggregator for collecting the errors and
// warnings produced during a run.
package errs

import (
	"fmt"
	"strings"
)

// ConfigError represents an error encountered while loading or validating
// engine tuning configuration (env vars, YAML tuning file).
type ConfigError struct {
	Source  string // config file or "env"
	Field   string // offending field, if known
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s, field %q: %s", e.Source, e.Field, e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Source, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func NewConfigError(source, field, message string, err error) *ConfigError {
	return &ConfigError{Source: source, Field: field, Message: message, Err: err}
}

// ModelError represents a structural defect in a Project graph discovered
// during validation or flattening (id collisions, unresolved references,
// dependency cycles, infeasible constraints).
type ModelError struct {
	Code    string // stable diagnostic code, e.g. "E003"
	Subject string // task or resource id the error concerns
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ModelError) Unwrap() error { return e.Err }

func NewModelError(code, subject, message string, err error) *ModelError {
	return &ModelError{Code: code, Subject: subject, Message: message, Err: err}
}

// InternalError marks a programmer error: a date overflow, a reference that
// passed validation but was missing at use time, or any other condition the
// engine's own invariants should have prevented. These never surface as a
// normal E-series diagnostic; callers see them as a distinguished failure.
type InternalError struct {
	Where   string // package/function where the fault was detected
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.Where, e.Message)
}

func (e *InternalError) Unwrap() error { return e.Err }

func NewInternalError(where, message string, err error) *InternalError {
	return &InternalError{Where: where, Message: message, Err: err}
}

// Aggregator collects errors and warnings encountered over the course of a
// single run and renders a combined summary. It never itself decides
// whether a run should stop; callers inspect HasErrors() explicitly.
type Aggregator struct {
	Errors   []error
	Warnings []error
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		Errors:   make([]error, 0),
		Warnings: make([]error, 0),
	}
}

func (a *Aggregator) AddError(err error) {
	if err != nil {
		a.Errors = append(a.Errors, err)
	}
}

func (a *Aggregator) AddWarning(err error) {
	if err != nil {
		a.Warnings = append(a.Warnings, err)
	}
}

func (a *Aggregator) HasErrors() bool   { return len(a.Errors) > 0 }
func (a *Aggregator) HasWarnings() bool { return len(a.Warnings) > 0 }
func (a *Aggregator) ErrorCount() int   { return len(a.Errors) }
func (a *Aggregator) WarningCount() int { return len(a.Warnings) }

// Error implements the error interface so an Aggregator can itself be
// returned as an error; it reports the first error with a count.
func (a *Aggregator) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred (first: %v)", len(a.Errors), a.Errors[0])
}

// Summary renders every error and warning collected so far.
func (a *Aggregator) Summary() string {
	if !a.HasErrors() && !a.HasWarnings() {
		return "no errors or warnings"
	}

	var b strings.Builder
	if a.HasErrors() {
		fmt.Fprintf(&b, "errors (%d):\n", len(a.Errors))
		for i, err := range a.Errors {
			fmt.Fprintf(&b, "  %d. %v\n", i+1, err)
		}
	}
	if a.HasWarnings() {
		if a.HasErrors() {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "warnings (%d):\n", len(a.Warnings))
		for i, err := range a.Warnings {
			fmt.Fprintf(&b, "  %d. %v\n", i+1, err)
		}
	}
	return b.String()
}
