package arbor

import "log/slog"

// logger is the package logger used for handler failures and debug output.
var logger = slog.Default()

// SetLogger replaces the package logger. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return logger
}
