package observability

// Logger is the structured logging surface used across decotree. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return noopLogger{} }

// OrNop returns l, or a discarding Logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// LogRecorder logs each event at debug level.
type LogRecorder struct {
	logger Logger
}

// NewLogRecorder wraps logger; nil logs nothing.
func NewLogRecorder(logger Logger) *LogRecorder {
	return &LogRecorder{logger: OrNop(logger)}
}

// Record implements Recorder.
func (r *LogRecorder) Record(e Event) {
	args := []any{"kind", string(e.Kind), "hook", string(e.Hook), "entity", uint64(e.Entity)}
	if e.Node != 0 {
		args = append(args, "node", uint64(e.Node))
	}
	if e.Target != 0 {
		args = append(args, "target", uint64(e.Target))
	}
	if e.Index >= 0 {
		args = append(args, "index", e.Index)
	}
	r.logger.Debug("tree hook", args...)
}
