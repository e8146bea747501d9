// Package logger provides leveled logging for the dashboard agent. All
// functions are safe to call before Init; they are no-ops until then.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

type leveledLogger struct {
	level  Level
	logger *log.Logger
}

var defaultLogger *leveledLogger

// Init initializes the default logger with the specified level and format.
func Init(level string, format string) {
	l := InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		l = DebugLevel
	case "info":
		l = InfoLevel
	case "warn":
		l = WarnLevel
	case "error":
		l = ErrorLevel
	}

	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}

	defaultLogger = &leveledLogger{
		level:  l,
		logger: log.New(os.Stderr, "", flags),
	}
}

func logAt(level Level, tag, format string, args ...interface{}) {
	if defaultLogger == nil || defaultLogger.level > level {
		return
	}
	msg := fmt.Sprintf(tag+" "+format, args...)
	_ = defaultLogger.logger.Output(3, msg)
}

func Debug(format string, args ...interface{}) {
	logAt(DebugLevel, "[DEBUG]", format, args...)
}

func Info(format string, args ...interface{}) {
	logAt(InfoLevel, "[INFO]", format, args...)
}

func Warn(format string, args ...interface{}) {
	logAt(WarnLevel, "[WARN]", format, args...)
}

func Error(format string, args ...interface{}) {
	logAt(ErrorLevel, "[ERROR]", format, args...)
}

func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		msg := fmt.Sprintf("[FATAL] "+format, args...)
		_ = defaultLogger.logger.Output(2, msg)
	}
	os.Exit(1)
}
