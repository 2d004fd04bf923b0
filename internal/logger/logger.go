package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	mu           sync.Mutex
)

// Get returns a singleton console logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		globalLogger = New(level, FormatConsole)
	}
	return globalLogger
}

// Init replaces the singleton with a logger built from configuration.
// Call it once at startup, before handing the logger to other packages.
func Init(level, format string) *Logger {
	l := New(level, format)
	mu.Lock()
	globalLogger = l
	mu.Unlock()
	return l
}
