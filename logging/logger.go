// Package logging provides centralized, level-based logging for the
// scheduling engine, adapted from the host application's own logger.
//
// Three levels are supported: silent, info (default), debug. Control via:
//
//	PROJECTPLAN_SILENT=1            suppress all output
//	PROJECTPLAN_LOG_LEVEL=silent|info|debug
//
// The logger narrates what the engine is doing (e.g. leveling progress); it
// is never a substitute for the DiagnosticLog returned from a run.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

const (
	LevelSilent = "silent"
	LevelInfo   = "info"
	LevelDebug  = "debug"

	envSilent   = "PROJECTPLAN_SILENT"
	envLogLevel = "PROJECTPLAN_LOG_LEVEL"
)

// Logger wraps a standard library logger with level gating.
type Logger struct {
	logger *log.Logger
	level  string
}

// New creates a logger with the given prefix, honoring the environment.
func New(prefix string) *Logger {
	level := currentLevel()

	var out io.Writer = os.Stderr
	if level == LevelSilent {
		out = io.Discard
	}

	return &Logger{
		logger: log.New(out, prefix, log.LstdFlags),
		level:  level,
	}
}

// NewDefault creates the engine's standard logger.
func NewDefault() *Logger {
	return New("[projectplan] ")
}

func currentLevel() string {
	if os.Getenv(envSilent) == "1" {
		return LevelSilent
	}
	switch strings.ToLower(os.Getenv(envLogLevel)) {
	case LevelSilent, LevelInfo, LevelDebug:
		return strings.ToLower(os.Getenv(envLogLevel))
	default:
		return LevelInfo
	}
}

// IsSilent reports whether logging is currently suppressed.
func IsSilent() bool { return currentLevel() == LevelSilent }

func (l *Logger) Info(format string, v ...interface{}) {
	if l.level != LevelSilent {
		_ = l.logger.Output(2, fmt.Sprintf("[INFO] "+format, v...))
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level == LevelDebug {
		_ = l.logger.Output(2, fmt.Sprintf("[DEBUG] "+format, v...))
	}
}

func (l *Logger) Warn(format string, v ...interface{}) {
	if l.level != LevelSilent {
		_ = l.logger.Output(2, fmt.Sprintf("[WARN] "+format, v...))
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.level != LevelSilent {
		_ = l.logger.Output(2, fmt.Sprintf("[ERROR] "+format, v...))
	}
}
