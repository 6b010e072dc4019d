// Package logging provides config-driven categorized file-based logging for
// VoxMate. Logs are written to .voxmate/logs/ with a separate file per
// category. When debug mode is off, every call is a no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup, capability resolution
	CategoryCommands   Category = "commands"   // Command matching, classification, dispatch
	CategoryReading    Category = "reading"    // Reading engine state machine
	CategoryBroker     Category = "broker"     // Cross-context request/response
	CategoryCapability Category = "capability" // Model/translator/summarizer calls
	CategoryVoice      Category = "voice"      // Recognition lifecycle, utterance queue
	CategoryBrowser    Category = "browser"    // Page collection, highlighting, DevTools
	CategoryStore      Category = "store"      // Preference store operations
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Options mirrors config.LoggingConfig to avoid a circular import.
type Options struct {
	DebugMode  bool
	Categories map[string]bool
	Level      string
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	opts      Options
	optsMu    sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory from the given options.
// Should be called once at startup with the workspace path.
func Initialize(workspace string, o Options) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	optsMu.Lock()
	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	optsMu.Unlock()

	if !o.DebugMode {
		return nil // Silent no-op in production mode
	}

	logsDir = filepath.Join(workspace, ".voxmate", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== VoxMate logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", o.Level)
	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix for easy rotation
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions: quick logging without getting a logger first.
// These are no-ops if the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// Commands logs to the commands category.
func Commands(format string, args ...interface{}) {
	Get(CategoryCommands).Info(format, args...)
}

// CommandsDebug logs debug to the commands category.
func CommandsDebug(format string, args ...interface{}) {
	Get(CategoryCommands).Debug(format, args...)
}

// CommandsWarn logs warning to the commands category.
func CommandsWarn(format string, args ...interface{}) {
	Get(CategoryCommands).Warn(format, args...)
}

// Reading logs to the reading category.
func Reading(format string, args ...interface{}) {
	Get(CategoryReading).Info(format, args...)
}

// ReadingDebug logs debug to the reading category.
func ReadingDebug(format string, args ...interface{}) {
	Get(CategoryReading).Debug(format, args...)
}

// ReadingError logs error to the reading category.
func ReadingError(format string, args ...interface{}) {
	Get(CategoryReading).Error(format, args...)
}

// Broker logs to the broker category.
func Broker(format string, args ...interface{}) {
	Get(CategoryBroker).Info(format, args...)
}

// BrokerWarn logs warning to the broker category.
func BrokerWarn(format string, args ...interface{}) {
	Get(CategoryBroker).Warn(format, args...)
}

// Capability logs to the capability category.
func Capability(format string, args ...interface{}) {
	Get(CategoryCapability).Info(format, args...)
}

// CapabilityWarn logs warning to the capability category.
func CapabilityWarn(format string, args ...interface{}) {
	Get(CategoryCapability).Warn(format, args...)
}

// Voice logs to the voice category.
func Voice(format string, args ...interface{}) {
	Get(CategoryVoice).Info(format, args...)
}

// VoiceError logs error to the voice category.
func VoiceError(format string, args ...interface{}) {
	Get(CategoryVoice).Error(format, args...)
}

// Browser logs to the browser category.
func Browser(format string, args ...interface{}) {
	Get(CategoryBrowser).Info(format, args...)
}

// BrowserDebug logs debug to the browser category.
func BrowserDebug(format string, args ...interface{}) {
	Get(CategoryBrowser).Debug(format, args...)
}

// Store logs to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}
