package log

// ILogger is the leveled logging surface exposed to callers that want an
// injectable logger instead of the package globals. The zap-backed logger
// in this package satisfies it.
type ILogger interface {
	Info(args ...any)
	Infow(msg string, keysAndValues ...any)

	Debug(args ...any)
	Debugw(msg string, keysAndValues ...any)

	Warn(args ...any)
	Warnw(msg string, keysAndValues ...any)

	Error(args ...any)
	Errorw(msg string, keysAndValues ...any)
}
