package types

// Logger is the structured logger used by the coordinator and store adapters.
//
// Arguments after msg are alternating keys and values. Keys are snake_case
// (user_id, phase, item, op). zap.SugaredLogger satisfies this interface
// directly; slog loggers are adapted with slogeval.NewSlogLogger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	// Fatal logs and terminates the process. Nothing in this module calls it.
	Fatal(msg string, keysAndValues ...any)
}
