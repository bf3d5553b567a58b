// Package logger provides the process-wide structured logger: a rotating log
// file, optionally mirrored to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the log file inside the log directory.
const FileName = "quorum.log"

// Logger is the global logger. It discards everything until Init is called.
var Logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "quorum"})

var rotator *lumberjack.Logger

// Config holds logger configuration.
type Config struct {
	Dir    string // directory for quorum.log; empty disables the file
	Debug  bool   // log at debug level and report callers
	Stderr bool   // mirror to stderr; keep false while the TUI owns the screen
}

// Init replaces the global logger according to cfg.
func Init(cfg Config) error {
	var writers []io.Writer

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writers = append(writers, rotator)
	}
	if cfg.Stderr {
		writers = append(writers, os.Stderr)
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "quorum",
	})
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// With returns a child logger carrying keyvals on every line.
func With(keyvals ...any) *log.Logger {
	return Logger.With(keyvals...)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	Logger.Error(msg, keyvals...)
}
