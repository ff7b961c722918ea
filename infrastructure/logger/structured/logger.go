// ABOUTME: Structured logger implementation backed by logrus
// ABOUTME: Supports JSON output and optional size-based log rotation

package structured

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"blogforge-app-api/core/interfaces"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit (debug/info/warn/error)
	Level string

	// JSONFormat switches output to JSON (text otherwise)
	JSONFormat bool

	// File enables rotation-backed file output when non-empty
	File string

	// MaxSizeMB is the rotation threshold, in megabytes
	MaxSizeMB int

	// MaxBackups is how many rotated files to keep
	MaxBackups int
}

// Logger implements interfaces.Logger on top of logrus.
type Logger struct {
	log *logrus.Logger
}

// NewLogger creates a structured logger from config.
func NewLogger(cfg Config) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.JSONFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		backups := cfg.MaxBackups
		if backups <= 0 {
			backups = 3
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: backups,
			Compress:   true,
		})
	}
	log.SetOutput(out)

	return &Logger{log: log}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Error(msg)
}

var _ interfaces.Logger = (*Logger)(nil)
