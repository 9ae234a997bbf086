// Package logger provides level-gated logging on top of the standard log
// package.
//
// Verbosity levels (in increasing order):
//
//	Error < Warn < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(logger.Debug)
//	logger.Infof("pricing %s", ticker)
//	logger.Debugf("spot=%f vol=%f", spot, vol)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only failures.
	Warn               // Warn logs recoverable problems such as provider fallbacks.
	Info               // Info logs high-level progress.
	Debug              // Debug logs resolved inputs and intermediate values.
	Trace              // Trace logs per-request details.
)

var names = [...]string{"error", "warn", "info", "debug", "trace"}

func (l Level) String() string {
	if l >= Error && int(l) < len(names) {
		return names[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts a level name ("info") or its number ("2").
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if s == n || s == fmt.Sprint(i) {
			return Level(i), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

var current atomic.Int32

func init() {
	log.SetOutput(os.Stderr)
	// 2026/01/25 15:42:10 engine.go:87 [INFO]  pricing started
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	current.Store(int32(Info))
}

// SetVerbosity sets the global logging verbosity. Out-of-range values are
// clamped to [Error, Trace].
func SetVerbosity(l Level) {
	if l < Error {
		l = Error
	}
	if l > Trace {
		l = Trace
	}
	current.Store(int32(l))
}

// Verbosity returns the active level.
func Verbosity() Level {
	return Level(current.Load())
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func logf(l Level, prefix, format string, args ...any) {
	if Level(current.Load()) >= l {
		// calldepth 3 reports the caller of Errorf/Infof/...
		_ = log.Output(3, fmt.Sprintf(prefix+format, args...))
	}
}

func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

func Warnf(format string, args ...any) {
	logf(Warn, "[WARN]  ", format, args...)
}

func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
