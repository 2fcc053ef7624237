package logger

import (
	"os"
	"strings"
)

var globalLogger *Logger

func init() {
	globalLogger = NewDefault()
	configureFromEnv()
}

// configureFromEnv configures the global logger from environment variables
func configureFromEnv() {
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level := ParseLogLevel(levelStr); level != -1 {
			globalLogger.SetLevel(level)
		}
	}

	if formatStr := os.Getenv("LOG_FORMAT"); formatStr != "" {
		if format := ParseLogFormat(formatStr); format != -1 {
			globalLogger.SetFormat(format)
		}
	}
}

// ParseLogLevel parses a log level string, returning -1 when unknown
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return -1
	}
}

// ParseLogFormat parses a log format string, returning -1 when unknown
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(format) {
	case "json":
		return JSONFormat
	case "text":
		return TextFormat
	default:
		return -1
	}
}

// Global returns the process-wide logger
func Global() *Logger {
	return globalLogger
}

// SetGlobal replaces the process-wide logger
func SetGlobal(l *Logger) {
	if l != nil {
		globalLogger = l
	}
}
