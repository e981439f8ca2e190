package logx

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging severity level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var (
	mu       sync.Mutex
	minLevel = LevelInfo
	output   = os.Stderr
)

// SetLevel sets the minimum level that will be written
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Fields attaches structured key/value context to a log entry
type Fields map[string]any

// Entry is a log entry carrying structured fields
type Entry struct {
	fields Fields
}

// WithFields returns an entry that logs with the given fields appended
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) Debugf(format string, args ...any) { logf(LevelDebug, e.fields, format, args...) }
func (e *Entry) Infof(format string, args ...any)  { logf(LevelInfo, e.fields, format, args...) }
func (e *Entry) Warnf(format string, args ...any)  { logf(LevelWarn, e.fields, format, args...) }
func (e *Entry) Errorf(format string, args ...any) { logf(LevelError, e.fields, format, args...) }

func Debug(msg string)                    { logf(LevelDebug, nil, "%s", msg) }
func Debugf(format string, args ...any)   { logf(LevelDebug, nil, format, args...) }
func Info(msg string)                     { logf(LevelInfo, nil, "%s", msg) }
func Infof(format string, args ...any)    { logf(LevelInfo, nil, format, args...) }
func Warn(msg string)                     { logf(LevelWarn, nil, "%s", msg) }
func Warnf(format string, args ...any)    { logf(LevelWarn, nil, format, args...) }
func Error(msg string)                    { logf(LevelError, nil, "%s", msg) }
func Errorf(format string, args ...any)   { logf(LevelError, nil, format, args...) }

// Fatalf logs at error level and exits the process
func Fatalf(format string, args ...any) {
	logf(LevelError, nil, format, args...)
	os.Exit(1)
}

func logf(level Level, fields Fields, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" | ")
	b.WriteString(fmt.Sprintf("%-5s", levelNames[level]))
	b.WriteString(" | ")
	b.WriteString(fmt.Sprintf(format, args...))

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
		}
	}

	fmt.Fprintln(output, b.String())
}
