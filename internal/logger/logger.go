// Package logger writes leveled diagnostics to stderr. By default only
// warnings and errors are shown; --verbose or CORPUS_LOG_LEVEL lowers
// the threshold.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders message severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case. "warning" is an alias.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

var (
	mu        sync.Mutex
	threshold           = LevelWarn
	output    io.Writer = os.Stderr
)

// SetLevel hides messages below l.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	threshold = l
}

// SetVerbose shows everything when v is true and only warnings and
// errors otherwise.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose reports whether debug messages are shown.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return threshold <= LevelDebug
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if l < threshold {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", l, fmt.Sprintf(format, args...))
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args) }

func Info(format string, args ...any) { logf(LevelInfo, format, args) }

func Warn(format string, args ...any) { logf(LevelWarn, format, args) }

func Error(format string, args ...any) { logf(LevelError, format, args) }

// Timed logs at debug level how long a stage took:
//
//	defer logger.Timed("ingest")()
func Timed(name string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", name, time.Since(start).Round(time.Microsecond))
	}
}
