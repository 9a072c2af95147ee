// Package logger provides the shared structured logger for the optimizer.
// All packages log through the package-level Log instance so that the CLI
// shell can set verbosity once, before the pipeline starts.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It defaults to info level; the CLI shell
// reconfigures it via SetLevel before running the pipeline.
var Log = New(zapcore.InfoLevel)

// Logger wraps a zap sugared logger with loosely-typed key/value logging.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// New creates a logger writing human-readable output to stderr at the given level.
func New(level zapcore.Level) *Logger {
	atomic := zap.NewAtomicLevelAt(level)
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomic
	cfg.DisableStacktrace = true
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// The development config only fails on invalid output paths, which
		// are hardcoded here.
		panic(err)
	}
	return &Logger{sugar: z.Sugar(), level: atomic}
}

// SetLevel changes the minimum level of emitted logs.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// Debug logs a message with key/value pairs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs a message with key/value pairs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a message with key/value pairs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs an error with a message and key/value pairs.
func (l *Logger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
