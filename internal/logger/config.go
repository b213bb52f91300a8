package logger

import (
	"io"

	"go.uber.org/zap/zapcore"
)

// Level is a log level.
type Level = zapcore.Level

const (
	// DebugLevel is a debug log level.
	DebugLevel = zapcore.DebugLevel
	// InfoLevel is an info log level, used for the crawl progress.
	InfoLevel = zapcore.InfoLevel
	// WarnLevel is a warning log level, used for the broken links.
	WarnLevel = zapcore.WarnLevel
	// ErrorLevel is an error log level.
	ErrorLevel = zapcore.ErrorLevel
)

// Config is the configuration for the logger.
type Config struct {
	Output io.Writer
	Level  Level
	// JSON switches from the human-readable console encoding to JSON lines.
	JSON bool
	// StripTime disables time variance in logger.
	StripTime bool
}
