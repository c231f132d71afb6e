// Package logging initializes the application wide slog loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	structuredLogger *slog.Logger
	levelVar         slog.LevelVar
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init initializes the logging system. Structured JSON output goes to w
// (stderr when nil) and becomes the slog default.
func Init(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	levelVar.Set(slog.LevelInfo)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       &levelVar,
		ReplaceAttr: replaceLevelNames,
	})
	structuredLogger = slog.New(handler)
	slog.SetDefault(structuredLogger)
}

// InitText configures a human-readable text handler instead of JSON,
// used by the interactive commands.
func InitText(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	levelVar.Set(slog.LevelInfo)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       &levelVar,
		ReplaceAttr: replaceLevelNames,
	})
	structuredLogger = slog.New(handler)
	slog.SetDefault(structuredLogger)
}

// SetLevel sets the minimum logging level for all loggers created by
// this package.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// ForService returns a logger with a service attribute attached. Callers
// must handle a nil return before Init has run.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return nil
	}
	return structuredLogger.With("service", serviceName)
}
