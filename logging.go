package settings

import (
	"context"
	"log/slog"
)

// Op names the collection or store operation a LogEvent describes.
type Op string

const (
	OpAdd     Op = "add"
	OpCopy    Op = "copy"
	OpDiscard Op = "discard"
	OpRepair  Op = "repair"
	OpApply   Op = "apply"
	OpForce   Op = "force"
	OpUndo    Op = "undo"
	OpMerge   Op = "merge"
	OpReplace Op = "replace"
	OpReject  Op = "reject"
	OpLoad    Op = "load"
	OpSave    Op = "save"
	OpReset   Op = "reset"
)

// LogEvent describes one notable change for logging.
type LogEvent struct {
	Collection string
	Key        string
	Op         Op
	Kind       Kind
	Count      int
	Err        error
}

// Logger records change events.
type Logger interface {
	LogChange(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogChange implements Logger.
func (f LoggerFunc) LogChange(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogChange(LogEvent) {}

// NopLogger returns a Logger that discards every event.
func NopLogger() Logger {
	return noopLogger{}
}

type slogLogger struct {
	logger *slog.Logger
}

// SlogLogger writes events to logger as structured records. Events carrying an
// error log at warn level, everything else at debug.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

func (l slogLogger) LogChange(event LogEvent) {
	attrs := []slog.Attr{
		slog.String("op", string(event.Op)),
	}
	if event.Collection != "" {
		attrs = append(attrs, slog.String("collection", event.Collection))
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key), slog.String("kind", event.Kind.String()))
	}
	if event.Count > 0 {
		attrs = append(attrs, slog.Int("count", event.Count))
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "settings change", attrs...)
}
